// Package catalog is the application service behind the HTTP API. It checks
// tenant ownership and access, validates input, keeps every ingredient
// record on its ingredient's unit branch and delegates deletions and
// valuation to the integrity and valuation packages.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"patisserie/internal/integrity"
	"patisserie/internal/store"
	"patisserie/internal/tenant"
	"patisserie/internal/units"
	"patisserie/internal/valuation"
	"patisserie/models"
)

var (
	ErrInvalidName     = errors.New("catalog: name must not be empty")
	ErrInvalidQuantity = errors.New("catalog: quantity is out of range")
	ErrInvalidPrice    = errors.New("catalog: price must not be negative")
	ErrUnknownField    = errors.New("catalog: unknown valuation field")
	ErrForbidden       = errors.New("catalog: access level does not permit this operation")
)

// Service exposes catalog operations for one repository.
type Service struct {
	repo   store.Repository
	guard  *integrity.Guard
	engine *valuation.Engine
}

func New(repo store.Repository) *Service {
	return &Service{
		repo:   repo,
		guard:  integrity.New(repo),
		engine: valuation.NewEngine(repo),
	}
}

func requireScope(scope tenant.Scope) error {
	if !scope.Valid() {
		return tenant.ErrNoScope
	}
	return nil
}

func requireEditor(scope tenant.Scope) error {
	if err := requireScope(scope); err != nil {
		return err
	}
	if !scope.CanEdit() {
		return ErrForbidden
	}
	return nil
}

func cleanName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func finite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

// notFound hides entities of other firms behind the same error as rows that
// do not exist.
func notFound(kind string, id uint) error {
	return fmt.Errorf("%w: %s %d", models.ErrMissingReference, kind, id)
}

func ownedUnit(ctx context.Context, repo store.Repository, scope tenant.Scope, id uint) (*models.Unit, error) {
	unit, err := repo.Unit(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.Owns(unit.OwnerID) {
		return nil, notFound("unit", id)
	}
	return unit, nil
}

func ownedIngredient(ctx context.Context, repo store.Repository, scope tenant.Scope, id uint) (*models.Ingredient, error) {
	ingredient, err := repo.Ingredient(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.Owns(ingredient.OwnerID) {
		return nil, notFound("ingredient", id)
	}
	return ingredient, nil
}

func ownedRecipe(ctx context.Context, repo store.Repository, scope tenant.Scope, id uint) (*models.Recipe, error) {
	recipe, err := repo.Recipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.Owns(recipe.OwnerID) {
		return nil, notFound("recipe", id)
	}
	return recipe, nil
}

// referencedUnit resolves a unit named by another entity being written.
// Units of other firms are reported as cross-tenant references.
func referencedUnit(ctx context.Context, repo store.Repository, scope tenant.Scope, id uint) (*models.Unit, error) {
	if id == 0 {
		return nil, notFound("unit", id)
	}
	unit, err := repo.Unit(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.Owns(unit.OwnerID) {
		return nil, fmt.Errorf("%w: unit %d", models.ErrCrossTenant, id)
	}
	return unit, nil
}

func referencedIngredient(ctx context.Context, repo store.Repository, scope tenant.Scope, id uint) (*models.Ingredient, error) {
	if id == 0 {
		return nil, notFound("ingredient", id)
	}
	ingredient, err := repo.Ingredient(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.Owns(ingredient.OwnerID) {
		return nil, fmt.Errorf("%w: ingredient %d", models.ErrCrossTenant, id)
	}
	return ingredient, nil
}

func loadForest(ctx context.Context, repo store.Repository, scope tenant.Scope) (*units.Forest, error) {
	list, err := repo.UnitsByOwner(ctx, scope.OwnerID)
	if err != nil {
		return nil, err
	}
	return units.NewForest(list), nil
}

// checkRecords verifies that every record of the firm stays on its
// ingredient's branch in forest. override replaces stored ingredients by id,
// so a pending ingredient change can be validated before it is written.
func checkRecords(ctx context.Context, repo store.Repository, scope tenant.Scope, forest *units.Forest, override *models.Ingredient) error {
	ingredients, err := repo.IngredientsByOwner(ctx, scope.OwnerID)
	if err != nil {
		return err
	}
	byID := make(map[uint]models.Ingredient, len(ingredients))
	for _, ingredient := range ingredients {
		byID[ingredient.ID] = ingredient
	}
	if override != nil {
		byID[override.ID] = *override
	}

	recipes, err := repo.RecipesByOwner(ctx, scope.OwnerID)
	if err != nil {
		return err
	}
	for _, recipe := range recipes {
		for _, record := range recipe.IngredientRecords {
			ingredient, ok := byID[record.IngredientID]
			if !ok {
				continue
			}
			if !forest.SameBranch(record.UnitID, ingredient.UnitID) {
				return fmt.Errorf("%w: recipe %q measures %q in a unit outside its branch",
					models.ErrIncompatibleUnits, recipe.Name, ingredient.Name)
			}
		}
	}
	return nil
}
