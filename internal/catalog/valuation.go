package catalog

import (
	"context"
	"fmt"

	"patisserie/internal/tenant"
	"patisserie/internal/valuation"
)

// RecipeSummary values every record and field of a recipe. Viewers receive
// the summary too; hiding cost fields is left to the presentation layer.
func (s *Service) RecipeSummary(ctx context.Context, scope tenant.Scope, recipeID uint) (valuation.Summary, error) {
	if err := requireScope(scope); err != nil {
		return valuation.Summary{}, err
	}
	recipe, err := ownedRecipe(ctx, s.repo, scope, recipeID)
	if err != nil {
		return valuation.Summary{}, err
	}
	return s.engine.Summarize(ctx, scope, *recipe)
}

// RecipeTotal sums one field over a recipe.
func (s *Service) RecipeTotal(ctx context.Context, scope tenant.Scope, recipeID uint, field string) (float64, error) {
	selector, err := selectorFor(scope, field)
	if err != nil {
		return 0, err
	}
	recipe, err := ownedRecipe(ctx, s.repo, scope, recipeID)
	if err != nil {
		return 0, err
	}
	return s.engine.TotalValue(ctx, scope, *recipe, selector)
}

// RecordValue values one field of a single ingredient record.
func (s *Service) RecordValue(ctx context.Context, scope tenant.Scope, recipeID, recordID uint, field string) (float64, error) {
	selector, err := selectorFor(scope, field)
	if err != nil {
		return 0, err
	}
	record, err := ownedRecord(ctx, s.repo, scope, recipeID, recordID)
	if err != nil {
		return 0, err
	}
	return s.engine.ScaledValue(ctx, scope, *record, selector)
}

func selectorFor(scope tenant.Scope, field string) (valuation.Selector, error) {
	if err := requireScope(scope); err != nil {
		return valuation.Selector{}, err
	}
	selector, ok := valuation.Lookup(field)
	if !ok {
		return valuation.Selector{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if selector.Cost && !scope.CanViewCosts() {
		return valuation.Selector{}, ErrForbidden
	}
	return selector, nil
}
