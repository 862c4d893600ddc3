// Package integrity blocks deletions that would leave dangling references
// between units, ingredients and recipes.
package integrity

import (
	"context"
	"errors"
	"fmt"

	"patisserie/internal/metrics"
	"patisserie/internal/store"
	"patisserie/models"
)

const (
	targetUnit       = "unit"
	targetIngredient = "ingredient"
	targetRecipe     = "recipe"
)

// Guard checks and performs deletions. The checks scan complete entity sets,
// so references held by any firm block. Names of referencing entities owned
// by another firm than the target's are left out of the conflict.
type Guard struct {
	repo store.Repository
}

func New(repo store.Repository) *Guard {
	return &Guard{repo: repo}
}

// CanDeleteUnit returns a *models.ConflictError naming the first entity that
// still references the unit. Child units are checked first, then recipe
// records, then ingredients; each set in id order.
func (g *Guard) CanDeleteUnit(ctx context.Context, id uint) error {
	return canDeleteUnit(ctx, g.repo, id)
}

// CanDeleteIngredient returns a *models.ConflictError naming the first recipe
// whose records use the ingredient.
func (g *Guard) CanDeleteIngredient(ctx context.Context, id uint) error {
	return canDeleteIngredient(ctx, g.repo, id)
}

// DeleteUnit removes the unit when nothing references it. A blocked deletion
// changes nothing.
func (g *Guard) DeleteUnit(ctx context.Context, id uint) error {
	err := g.repo.Transaction(ctx, func(tx store.Repository) error {
		if err := canDeleteUnit(ctx, tx, id); err != nil {
			return err
		}
		return tx.RemoveUnit(ctx, id)
	})
	metrics.ObserveDeletion(targetUnit, err)
	return err
}

// DeleteIngredient removes the ingredient when no recipe uses it.
func (g *Guard) DeleteIngredient(ctx context.Context, id uint) error {
	err := g.repo.Transaction(ctx, func(tx store.Repository) error {
		if err := canDeleteIngredient(ctx, tx, id); err != nil {
			return err
		}
		return tx.RemoveIngredient(ctx, id)
	})
	metrics.ObserveDeletion(targetIngredient, err)
	return err
}

// DeleteRecipe removes the recipe together with its ingredient records. It is
// never blocked.
func (g *Guard) DeleteRecipe(ctx context.Context, id uint) error {
	err := g.repo.Transaction(ctx, func(tx store.Repository) error {
		records, err := tx.RecordsByRecipe(ctx, id)
		if err != nil {
			return err
		}
		for _, record := range records {
			if err := tx.RemoveIngredientRecord(ctx, record.ID); err != nil {
				return err
			}
		}
		return tx.RemoveRecipe(ctx, id)
	})
	metrics.ObserveDeletion(targetRecipe, err)
	return err
}

func canDeleteUnit(ctx context.Context, repo store.Repository, id uint) error {
	units, err := repo.AllUnits(ctx)
	if err != nil {
		return fmt.Errorf("scan units: %w", err)
	}
	var owner uint
	for _, unit := range units {
		if unit.ID == id {
			owner = unit.OwnerID
		}
	}
	for _, unit := range units {
		if unit.ID != id && unit.BaseUnitID != nil && *unit.BaseUnitID == id {
			return &models.ConflictError{Target: targetUnit, Kind: models.ReferenceUnit, Name: visibleName(owner, unit.OwnerID, unit.Name)}
		}
	}

	if name, found, err := firstRecipeUsing(ctx, repo, owner, func(record models.IngredientRecord) bool {
		return record.UnitID == id
	}); err != nil {
		return err
	} else if found {
		return &models.ConflictError{Target: targetUnit, Kind: models.ReferenceRecipe, Name: name}
	}

	ingredients, err := repo.AllIngredients(ctx)
	if err != nil {
		return fmt.Errorf("scan ingredients: %w", err)
	}
	for _, ingredient := range ingredients {
		if ingredient.UnitID == id {
			return &models.ConflictError{Target: targetUnit, Kind: models.ReferenceIngredient, Name: visibleName(owner, ingredient.OwnerID, ingredient.Name)}
		}
	}
	return nil
}

func canDeleteIngredient(ctx context.Context, repo store.Repository, id uint) error {
	var owner uint
	target, err := repo.Ingredient(ctx, id)
	switch {
	case err == nil:
		owner = target.OwnerID
	case !errors.Is(err, models.ErrMissingReference):
		return fmt.Errorf("load ingredient %d: %w", id, err)
	}

	name, found, err := firstRecipeUsing(ctx, repo, owner, func(record models.IngredientRecord) bool {
		return record.IngredientID == id
	})
	if err != nil {
		return err
	}
	if found {
		return &models.ConflictError{Target: targetIngredient, Kind: models.ReferenceRecipe, Name: name}
	}
	return nil
}

// firstRecipeUsing scans all ingredient records in id order and returns the
// name of the recipe owning the first match. A recipe that no longer exists
// is named by its id.
func firstRecipeUsing(ctx context.Context, repo store.Repository, owner uint, match func(models.IngredientRecord) bool) (string, bool, error) {
	records, err := repo.AllIngredientRecords(ctx)
	if err != nil {
		return "", false, fmt.Errorf("scan ingredient records: %w", err)
	}
	for _, record := range records {
		if !match(record) {
			continue
		}
		recipe, err := repo.Recipe(ctx, record.RecipeID)
		if errors.Is(err, models.ErrMissingReference) {
			return fmt.Sprintf("#%d", record.RecipeID), true, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("load recipe %d: %w", record.RecipeID, err)
		}
		return visibleName(owner, recipe.OwnerID, recipe.Name), true, nil
	}
	return "", false, nil
}

func visibleName(owner, holder uint, name string) string {
	if owner != holder {
		return ""
	}
	return name
}
