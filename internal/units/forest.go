// Package units models measurement units as a forest of conversion
// relationships. Every unit points at an optional base unit and states how
// many of the base unit it equals; roots have no base.
package units

import (
	"fmt"
	"sort"
	"strings"

	"patisserie/models"
)

// Forest is an arena of units indexed by id. It never touches the database;
// callers load the units once and walk them by repeated lookups.
type Forest struct {
	units map[uint]models.Unit
}

// NewForest indexes the given units. Later duplicates of an id replace
// earlier ones.
func NewForest(list []models.Unit) *Forest {
	index := make(map[uint]models.Unit, len(list))
	for _, unit := range list {
		if unit.ID == 0 {
			continue
		}
		index[unit.ID] = unit
	}
	return &Forest{units: index}
}

// Len returns the number of indexed units.
func (f *Forest) Len() int {
	return len(f.units)
}

// Unit returns the unit with the given id.
func (f *Forest) Unit(id uint) (models.Unit, bool) {
	unit, ok := f.units[id]
	return unit, ok
}

// With returns a copy of the forest in which unit replaces the entry with the
// same id. It is used to evaluate a mutation before it is persisted.
func (f *Forest) With(unit models.Unit) *Forest {
	index := make(map[uint]models.Unit, len(f.units)+1)
	for id, existing := range f.units {
		index[id] = existing
	}
	if unit.ID != 0 {
		index[unit.ID] = unit
	}
	return &Forest{units: index}
}

// PathToRoot returns the unit itself followed by its ancestors, root last.
// The walk stops at the first base id that does not resolve and the partial
// path is returned. A base chain that revisits a unit yields
// models.ErrCyclicUnitGraph.
func (f *Forest) PathToRoot(id uint) ([]models.Unit, error) {
	var path []models.Unit
	visited := make(map[uint]struct{})

	current := id
	for current != 0 {
		if _, seen := visited[current]; seen {
			return path, fmt.Errorf("%w: unit %d is its own ancestor", models.ErrCyclicUnitGraph, current)
		}
		visited[current] = struct{}{}

		unit, ok := f.units[current]
		if !ok {
			return path, nil
		}
		path = append(path, unit)
		current = baseOf(unit)
	}

	return path, nil
}

// ConversionFactorToRoot returns how many root units one unit of id equals:
// the product of Quantity along PathToRoot, 1 for a root. A root's own
// Quantity never enters the product.
func (f *Forest) ConversionFactorToRoot(id uint) (float64, error) {
	if _, ok := f.units[id]; !ok {
		return 0, fmt.Errorf("%w: unit %d", models.ErrMissingReference, id)
	}

	path, err := f.PathToRoot(id)
	if err != nil {
		return 0, err
	}

	factor := 1.0
	for _, unit := range path {
		if unit.IsRoot() {
			break
		}
		factor *= unit.Quantity
	}
	return factor, nil
}

// IsDescendant reports whether walking base units from child reaches parent.
// A unit counts as a descendant of itself.
func (f *Forest) IsDescendant(child, parent uint) bool {
	if child == 0 || parent == 0 {
		return false
	}
	if child == parent {
		return true
	}

	visited := map[uint]struct{}{child: {}}
	unit, ok := f.units[child]
	for ok {
		next := baseOf(unit)
		if next == 0 {
			return false
		}
		if next == parent {
			return true
		}
		if _, seen := visited[next]; seen {
			return false
		}
		visited[next] = struct{}{}
		unit, ok = f.units[next]
	}
	return false
}

// SameBranch reports whether a and b lie on one root-to-leaf path, which is
// the condition for converting quantities between them.
func (f *Forest) SameBranch(a, b uint) bool {
	return f.IsDescendant(a, b) || f.IsDescendant(b, a)
}

// ConversionFactor returns the multiplier turning a quantity in from into a
// quantity in to.
func (f *Forest) ConversionFactor(from, to uint) (float64, error) {
	if !f.SameBranch(from, to) {
		return 0, fmt.Errorf("%w: unit %d cannot be converted to unit %d", models.ErrIncompatibleUnits, from, to)
	}

	fromFactor, err := f.ConversionFactorToRoot(from)
	if err != nil {
		return 0, err
	}
	toFactor, err := f.ConversionFactorToRoot(to)
	if err != nil {
		return 0, err
	}
	return fromFactor / toFactor, nil
}

// Convert expresses quantity, given in from, in the unit to.
func (f *Forest) Convert(quantity float64, from, to uint) (float64, error) {
	factor, err := f.ConversionFactor(from, to)
	if err != nil {
		return 0, err
	}
	return quantity * factor, nil
}

// Compatible lists every unit sharing a branch with id, id included, ordered
// by name.
func (f *Forest) Compatible(id uint) []models.Unit {
	if _, ok := f.units[id]; !ok {
		return nil
	}

	result := make([]models.Unit, 0)
	for candidateID, candidate := range f.units {
		if f.SameBranch(candidateID, id) {
			result = append(result, candidate)
		}
	}
	sortUnits(result)
	return result
}

// ValidateBase checks that unitID may use baseID as its base unit. A nil base
// turns the unit into a root and is always accepted.
func (f *Forest) ValidateBase(unitID uint, baseID *uint) error {
	if baseID == nil || *baseID == 0 {
		return nil
	}
	if *baseID == unitID {
		return fmt.Errorf("%w: unit %d cannot be its own base", models.ErrCyclicUnitGraph, unitID)
	}
	if _, ok := f.units[*baseID]; !ok {
		return fmt.Errorf("%w: base unit %d", models.ErrMissingReference, *baseID)
	}
	if _, err := f.PathToRoot(*baseID); err != nil {
		return err
	}
	if unitID != 0 && f.IsDescendant(*baseID, unitID) {
		return fmt.Errorf("%w: unit %d is an ancestor of its proposed base %d", models.ErrCyclicUnitGraph, unitID, *baseID)
	}
	return nil
}

func baseOf(unit models.Unit) uint {
	if unit.IsRoot() {
		return 0
	}
	return *unit.BaseUnitID
}

func sortUnits(list []models.Unit) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := strings.ToLower(list[i].Name), strings.ToLower(list[j].Name)
		if a != b {
			return a < b
		}
		return list[i].ID < list[j].ID
	})
}
