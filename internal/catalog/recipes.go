package catalog

import (
	"context"
	"fmt"
	"strings"

	applog "patisserie/internal/log"
	"patisserie/internal/store"
	"patisserie/internal/tenant"
	"patisserie/models"
)

// RecordInput carries the editable fields of an ingredient record.
type RecordInput struct {
	IngredientID uint    `json:"ingredient_id"`
	UnitID       uint    `json:"unit_id"`
	Quantity     float64 `json:"quantity"`
}

// Recipes lists the firm's recipes whose name contains filter, ignoring case.
// A blank filter lists every recipe.
func (s *Service) Recipes(ctx context.Context, scope tenant.Scope, filter string) ([]models.Recipe, error) {
	if err := requireScope(scope); err != nil {
		return nil, err
	}
	recipes, err := s.repo.RecipesByOwner(ctx, scope.OwnerID)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(filter))
	if needle == "" {
		return recipes, nil
	}
	matched := make([]models.Recipe, 0, len(recipes))
	for _, recipe := range recipes {
		if strings.Contains(strings.ToLower(recipe.Name), needle) {
			matched = append(matched, recipe)
		}
	}
	return matched, nil
}

// Recipe loads a recipe with its ingredient records.
func (s *Service) Recipe(ctx context.Context, scope tenant.Scope, id uint) (*models.Recipe, error) {
	if err := requireScope(scope); err != nil {
		return nil, err
	}
	return ownedRecipe(ctx, s.repo, scope, id)
}

func (s *Service) CreateRecipe(ctx context.Context, scope tenant.Scope, name string) (*models.Recipe, error) {
	if err := requireEditor(scope); err != nil {
		return nil, err
	}
	trimmed, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	recipe := &models.Recipe{Name: trimmed}
	scope.Stamp(&recipe.OwnerID)
	if err := s.repo.AddRecipe(ctx, recipe); err != nil {
		return nil, err
	}
	applog.Debug(ctx, "recipe created", "recipe_id", recipe.ID, "name", recipe.Name)
	return recipe, nil
}

func (s *Service) RenameRecipe(ctx context.Context, scope tenant.Scope, id uint, name string) (*models.Recipe, error) {
	if err := requireEditor(scope); err != nil {
		return nil, err
	}
	trimmed, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	var renamed *models.Recipe
	err = s.repo.Transaction(ctx, func(tx store.Repository) error {
		recipe, err := ownedRecipe(ctx, tx, scope, id)
		if err != nil {
			return err
		}
		recipe.Name = trimmed
		if err := tx.UpdateRecipe(ctx, recipe); err != nil {
			return err
		}
		renamed = recipe
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renamed, nil
}

// DeleteRecipe removes the recipe and its records. It is never blocked.
func (s *Service) DeleteRecipe(ctx context.Context, scope tenant.Scope, id uint) error {
	if err := requireEditor(scope); err != nil {
		return err
	}
	if _, err := ownedRecipe(ctx, s.repo, scope, id); err != nil {
		return err
	}
	if err := s.guard.DeleteRecipe(ctx, id); err != nil {
		return err
	}
	applog.Debug(ctx, "recipe deleted", "recipe_id", id)
	return nil
}

// CopyRecipe duplicates a recipe and its records under the first free
// "<name> (Copy)" or "<name> (Copy N)" name.
func (s *Service) CopyRecipe(ctx context.Context, scope tenant.Scope, id uint) (*models.Recipe, error) {
	if err := requireEditor(scope); err != nil {
		return nil, err
	}

	var created *models.Recipe
	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		source, err := ownedRecipe(ctx, tx, scope, id)
		if err != nil {
			return err
		}
		existing, err := tx.RecipesByOwner(ctx, scope.OwnerID)
		if err != nil {
			return err
		}

		recipe := &models.Recipe{Name: copyName(source.Name, existing)}
		scope.Stamp(&recipe.OwnerID)
		if err := tx.AddRecipe(ctx, recipe); err != nil {
			return err
		}
		for _, record := range source.IngredientRecords {
			clone := models.IngredientRecord{
				RecipeID:     recipe.ID,
				IngredientID: record.IngredientID,
				UnitID:       record.UnitID,
				Quantity:     record.Quantity,
			}
			if err := tx.AddIngredientRecord(ctx, &clone); err != nil {
				return err
			}
			recipe.IngredientRecords = append(recipe.IngredientRecords, clone)
		}
		created = recipe
		return nil
	})
	if err != nil {
		return nil, err
	}

	applog.Debug(ctx, "recipe copied", "source_id", id, "recipe_id", created.ID)
	return created, nil
}

func copyName(base string, existing []models.Recipe) string {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = "Unnamed Recipe"
	}

	used := make(map[string]struct{}, len(existing))
	for _, recipe := range existing {
		used[strings.ToLower(strings.TrimSpace(recipe.Name))] = struct{}{}
	}

	candidate := fmt.Sprintf("%s (Copy)", trimmed)
	if _, ok := used[strings.ToLower(candidate)]; !ok {
		return candidate
	}
	for i := 2; ; i++ {
		candidate = fmt.Sprintf("%s (Copy %d)", trimmed, i)
		if _, ok := used[strings.ToLower(candidate)]; !ok {
			return candidate
		}
	}
}

// AddRecord appends an ingredient to a recipe. The record's unit must share
// a branch with the ingredient's unit.
func (s *Service) AddRecord(ctx context.Context, scope tenant.Scope, recipeID uint, in RecordInput) (*models.IngredientRecord, error) {
	if err := requireEditor(scope); err != nil {
		return nil, err
	}

	record := &models.IngredientRecord{RecipeID: recipeID}
	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		if _, err := ownedRecipe(ctx, tx, scope, recipeID); err != nil {
			return err
		}
		if err := validateRecord(ctx, tx, scope, in); err != nil {
			return err
		}
		record.IngredientID = in.IngredientID
		record.UnitID = in.UnitID
		record.Quantity = in.Quantity
		return tx.AddIngredientRecord(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	applog.Debug(ctx, "ingredient record added", "recipe_id", recipeID, "record_id", record.ID)
	return record, nil
}

func (s *Service) UpdateRecord(ctx context.Context, scope tenant.Scope, recipeID, recordID uint, in RecordInput) (*models.IngredientRecord, error) {
	if err := requireEditor(scope); err != nil {
		return nil, err
	}

	var updated *models.IngredientRecord
	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		record, err := ownedRecord(ctx, tx, scope, recipeID, recordID)
		if err != nil {
			return err
		}
		if err := validateRecord(ctx, tx, scope, in); err != nil {
			return err
		}
		record.IngredientID = in.IngredientID
		record.UnitID = in.UnitID
		record.Quantity = in.Quantity
		if err := tx.UpdateIngredientRecord(ctx, record); err != nil {
			return err
		}
		updated = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) RemoveRecord(ctx context.Context, scope tenant.Scope, recipeID, recordID uint) error {
	if err := requireEditor(scope); err != nil {
		return err
	}
	return s.repo.Transaction(ctx, func(tx store.Repository) error {
		if _, err := ownedRecord(ctx, tx, scope, recipeID, recordID); err != nil {
			return err
		}
		return tx.RemoveIngredientRecord(ctx, recordID)
	})
}

func ownedRecord(ctx context.Context, repo store.Repository, scope tenant.Scope, recipeID, recordID uint) (*models.IngredientRecord, error) {
	if _, err := ownedRecipe(ctx, repo, scope, recipeID); err != nil {
		return nil, err
	}
	record, err := repo.IngredientRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record.RecipeID != recipeID {
		return nil, notFound("ingredient record", recordID)
	}
	return record, nil
}

func validateRecord(ctx context.Context, repo store.Repository, scope tenant.Scope, in RecordInput) error {
	if !finite(in.Quantity) || in.Quantity < 0 {
		return ErrInvalidQuantity
	}
	ingredient, err := referencedIngredient(ctx, repo, scope, in.IngredientID)
	if err != nil {
		return err
	}
	if _, err := referencedUnit(ctx, repo, scope, in.UnitID); err != nil {
		return err
	}
	forest, err := loadForest(ctx, repo, scope)
	if err != nil {
		return err
	}
	if !forest.SameBranch(in.UnitID, ingredient.UnitID) {
		return fmt.Errorf("%w: %q cannot be measured in unit %d", models.ErrIncompatibleUnits, ingredient.Name, in.UnitID)
	}
	return nil
}
