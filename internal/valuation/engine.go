// Package valuation converts ingredient record quantities into the unit basis
// of their ingredients and aggregates prices and nutrition per recipe.
package valuation

import (
	"context"
	"errors"
	"fmt"

	"patisserie/internal/metrics"
	"patisserie/internal/tenant"
	"patisserie/internal/units"
	"patisserie/models"
)

// Source is the read side of the repository used by the engine.
type Source interface {
	Ingredient(ctx context.Context, id uint) (*models.Ingredient, error)
	UnitsByOwner(ctx context.Context, ownerID uint) ([]models.Unit, error)
}

// Engine computes scaled values on demand. It holds no state between calls.
type Engine struct {
	source Source
}

func NewEngine(source Source) *Engine {
	return &Engine{source: source}
}

// ScaledValue returns how much of the selected field record.Quantity units of
// record.UnitID amount to:
//
//	selector(ingredient) / factor(ingredient.UnitID) * factor(record.UnitID) * record.Quantity
func (e *Engine) ScaledValue(ctx context.Context, scope tenant.Scope, record models.IngredientRecord, selector Selector) (float64, error) {
	p, err := e.newPass(ctx, scope)
	if err != nil {
		return 0, err
	}
	value, err := p.scaled(record, selector)
	observe(selector, err)
	return value, err
}

// TotalValue sums ScaledValue over the recipe's records. The first failing
// record fails the whole total.
func (e *Engine) TotalValue(ctx context.Context, scope tenant.Scope, recipe models.Recipe, selector Selector) (float64, error) {
	p, err := e.newPass(ctx, scope)
	if err != nil {
		return 0, err
	}
	total, err := p.total(recipe, selector)
	observe(selector, err)
	return total, err
}

// Row holds every valued field of a single ingredient record. Err is set when
// the row cannot be valued; Values is then empty.
type Row struct {
	Record     models.IngredientRecord
	Ingredient *models.Ingredient
	Values     map[string]float64
	Err        error
}

// Summary is the valuation of a whole recipe across all fields.
type Summary struct {
	Recipe models.Recipe
	Rows   []Row
	Totals map[string]float64
	Err    error // first row failure; Totals is empty when set
}

// Summarize values every record and field of the recipe in one pass.
// Ingredient lookups and conversion factors are shared across fields. Rows
// that cannot be valued because of the catalog data carry their error; any
// other failure, such as a store error, aborts the summary.
func (e *Engine) Summarize(ctx context.Context, scope tenant.Scope, recipe models.Recipe) (Summary, error) {
	p, err := e.newPass(ctx, scope)
	if err != nil {
		return Summary{}, err
	}

	fields := Fields()
	summary := Summary{Recipe: recipe, Rows: make([]Row, 0, len(recipe.IngredientRecords))}
	totals := make(map[string]float64, len(fields))

	for _, record := range recipe.IngredientRecords {
		row := Row{Record: record}
		if ingredient, err := p.ingredient(record.IngredientID); err == nil {
			row.Ingredient = ingredient
		}

		values := make(map[string]float64, len(fields))
		for _, field := range fields {
			value, err := p.scaled(record, field)
			observe(field, err)
			if err != nil && !rowError(err) {
				return Summary{}, fmt.Errorf("record %d: %w", record.ID, err)
			}
			if err != nil {
				row.Err = err
				values = nil
				break
			}
			values[field.Name] = value
		}
		row.Values = values

		if row.Err != nil && summary.Err == nil {
			summary.Err = fmt.Errorf("record %d: %w", record.ID, row.Err)
		}
		if summary.Err == nil {
			for name, value := range values {
				totals[name] += value
			}
		}
		summary.Rows = append(summary.Rows, row)
	}

	if summary.Err == nil {
		summary.Totals = totals
	}
	return summary, nil
}

func rowError(err error) bool {
	return errors.Is(err, models.ErrMissingReference) ||
		errors.Is(err, models.ErrIncompatibleUnits) ||
		errors.Is(err, models.ErrCrossTenant) ||
		errors.Is(err, models.ErrCyclicUnitGraph)
}

// pass memoizes lookups for the duration of one evaluation.
type pass struct {
	ctx         context.Context
	engine      *Engine
	scope       tenant.Scope
	forest      *units.Forest
	ingredients map[uint]*models.Ingredient
	factors     map[uint]float64
}

func (e *Engine) newPass(ctx context.Context, scope tenant.Scope) (*pass, error) {
	if !scope.Valid() {
		return nil, tenant.ErrNoScope
	}
	list, err := e.source.UnitsByOwner(ctx, scope.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}
	return &pass{
		ctx:         ctx,
		engine:      e,
		scope:       scope,
		forest:      units.NewForest(list),
		ingredients: make(map[uint]*models.Ingredient),
		factors:     make(map[uint]float64),
	}, nil
}

func (p *pass) ingredient(id uint) (*models.Ingredient, error) {
	if cached, ok := p.ingredients[id]; ok {
		return cached, nil
	}
	ingredient, err := p.engine.source.Ingredient(p.ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.scope.Owns(ingredient.OwnerID) {
		return nil, fmt.Errorf("%w: ingredient %d", models.ErrCrossTenant, id)
	}
	p.ingredients[id] = ingredient
	return ingredient, nil
}

func (p *pass) factor(unitID uint) (float64, error) {
	if cached, ok := p.factors[unitID]; ok {
		return cached, nil
	}
	factor, err := p.forest.ConversionFactorToRoot(unitID)
	if err != nil {
		return 0, err
	}
	p.factors[unitID] = factor
	return factor, nil
}

func (p *pass) scaled(record models.IngredientRecord, selector Selector) (float64, error) {
	ingredient, err := p.ingredient(record.IngredientID)
	if err != nil {
		return 0, err
	}
	if !p.forest.SameBranch(record.UnitID, ingredient.UnitID) {
		if _, ok := p.forest.Unit(record.UnitID); !ok {
			return 0, fmt.Errorf("%w: unit %d", models.ErrMissingReference, record.UnitID)
		}
		if _, ok := p.forest.Unit(ingredient.UnitID); !ok {
			return 0, fmt.Errorf("%w: unit %d", models.ErrMissingReference, ingredient.UnitID)
		}
		return 0, fmt.Errorf("%w: record %d measures %q in unit %d, ingredient uses unit %d",
			models.ErrIncompatibleUnits, record.ID, ingredient.Name, record.UnitID, ingredient.UnitID)
	}

	ingredientFactor, err := p.factor(ingredient.UnitID)
	if err != nil {
		return 0, err
	}
	recordFactor, err := p.factor(record.UnitID)
	if err != nil {
		return 0, err
	}

	return selector.Value(*ingredient) / ingredientFactor * recordFactor * record.Quantity, nil
}

func (p *pass) total(recipe models.Recipe, selector Selector) (float64, error) {
	total := 0.0
	for _, record := range recipe.IngredientRecords {
		value, err := p.scaled(record, selector)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", record.ID, err)
		}
		total += value
	}
	return total, nil
}

func observe(selector Selector, err error) {
	metrics.ObserveValuation(selector.Name, err)
}
