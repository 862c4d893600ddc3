package catalog

import (
	"context"

	applog "patisserie/internal/log"
	"patisserie/internal/store"
	"patisserie/internal/tenant"
	"patisserie/models"
)

// IngredientInput carries the editable fields of an ingredient.
type IngredientInput struct {
	Name      string           `json:"name"`
	Price     float64          `json:"price"`
	Nutrition models.Nutrition `json:"nutrition"`
	UnitID    uint             `json:"unit_id"`
}

func (in IngredientInput) apply(ingredient *models.Ingredient) error {
	name, err := cleanName(in.Name)
	if err != nil {
		return err
	}
	if !finite(in.Price) || in.Price < 0 {
		return ErrInvalidPrice
	}
	for _, value := range []float64{
		in.Nutrition.Kcal, in.Nutrition.Fat, in.Nutrition.SaturatedAcids, in.Nutrition.Carbohydrates,
		in.Nutrition.Sugar, in.Nutrition.Protein, in.Nutrition.Salt,
	} {
		if !finite(value) || value < 0 {
			return ErrInvalidQuantity
		}
	}
	ingredient.Name = name
	ingredient.Price = in.Price
	ingredient.Nutrition = in.Nutrition
	ingredient.UnitID = in.UnitID
	return nil
}

// Ingredients lists the firm's ingredients in id order.
func (s *Service) Ingredients(ctx context.Context, scope tenant.Scope) ([]models.Ingredient, error) {
	if err := requireScope(scope); err != nil {
		return nil, err
	}
	return s.repo.IngredientsByOwner(ctx, scope.OwnerID)
}

func (s *Service) Ingredient(ctx context.Context, scope tenant.Scope, id uint) (*models.Ingredient, error) {
	if err := requireScope(scope); err != nil {
		return nil, err
	}
	return ownedIngredient(ctx, s.repo, scope, id)
}

func (s *Service) CreateIngredient(ctx context.Context, scope tenant.Scope, in IngredientInput) (*models.Ingredient, error) {
	if err := requireEditor(scope); err != nil {
		return nil, err
	}
	ingredient := &models.Ingredient{}
	if err := in.apply(ingredient); err != nil {
		return nil, err
	}
	scope.Stamp(&ingredient.OwnerID)

	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		if _, err := referencedUnit(ctx, tx, scope, ingredient.UnitID); err != nil {
			return err
		}
		return tx.AddIngredient(ctx, ingredient)
	})
	if err != nil {
		return nil, err
	}

	applog.Debug(ctx, "ingredient created", "ingredient_id", ingredient.ID, "name", ingredient.Name)
	return ingredient, nil
}

// UpdateIngredient changes an ingredient. Moving it to another unit is only
// allowed when every record using it stays convertible.
func (s *Service) UpdateIngredient(ctx context.Context, scope tenant.Scope, id uint, in IngredientInput) (*models.Ingredient, error) {
	if err := requireEditor(scope); err != nil {
		return nil, err
	}

	var updated *models.Ingredient
	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		ingredient, err := ownedIngredient(ctx, tx, scope, id)
		if err != nil {
			return err
		}
		previousUnit := ingredient.UnitID
		if err := in.apply(ingredient); err != nil {
			return err
		}
		if _, err := referencedUnit(ctx, tx, scope, ingredient.UnitID); err != nil {
			return err
		}
		if ingredient.UnitID != previousUnit {
			forest, err := loadForest(ctx, tx, scope)
			if err != nil {
				return err
			}
			if err := checkRecords(ctx, tx, scope, forest, ingredient); err != nil {
				return err
			}
		}
		if err := tx.UpdateIngredient(ctx, ingredient); err != nil {
			return err
		}
		updated = ingredient
		return nil
	})
	if err != nil {
		return nil, err
	}

	applog.Debug(ctx, "ingredient updated", "ingredient_id", updated.ID)
	return updated, nil
}

// DeleteIngredient removes an ingredient no recipe uses.
func (s *Service) DeleteIngredient(ctx context.Context, scope tenant.Scope, id uint) error {
	if err := requireEditor(scope); err != nil {
		return err
	}
	if _, err := ownedIngredient(ctx, s.repo, scope, id); err != nil {
		return err
	}
	if err := s.guard.DeleteIngredient(ctx, id); err != nil {
		return err
	}
	applog.Debug(ctx, "ingredient deleted", "ingredient_id", id)
	return nil
}
