package catalog

import (
	"context"

	applog "patisserie/internal/log"
	"patisserie/internal/store"
	"patisserie/internal/tenant"
	"patisserie/models"
)

// UnitInput carries the editable fields of a unit.
type UnitInput struct {
	Name       string  `json:"name"`
	BaseUnitID *uint   `json:"base_unit_id"`
	Quantity   float64 `json:"quantity"`
}

// UnitPath is a unit's chain of base units with its factor to the root.
type UnitPath struct {
	Units  []models.Unit `json:"units"`
	Factor float64       `json:"factor"`
}

func (in UnitInput) apply(unit *models.Unit) error {
	name, err := cleanName(in.Name)
	if err != nil {
		return err
	}
	base := in.BaseUnitID
	if base != nil && *base == 0 {
		base = nil
	}
	// a root is its own measure
	quantity := in.Quantity
	if base == nil {
		quantity = 1
	}
	if !finite(quantity) || quantity <= 0 {
		return ErrInvalidQuantity
	}
	unit.Name = name
	unit.BaseUnitID = base
	unit.Quantity = quantity
	return nil
}

// Units lists the firm's units in id order.
func (s *Service) Units(ctx context.Context, scope tenant.Scope) ([]models.Unit, error) {
	if err := requireScope(scope); err != nil {
		return nil, err
	}
	return s.repo.UnitsByOwner(ctx, scope.OwnerID)
}

func (s *Service) Unit(ctx context.Context, scope tenant.Scope, id uint) (*models.Unit, error) {
	if err := requireScope(scope); err != nil {
		return nil, err
	}
	return ownedUnit(ctx, s.repo, scope, id)
}

func (s *Service) CreateUnit(ctx context.Context, scope tenant.Scope, in UnitInput) (*models.Unit, error) {
	if err := requireEditor(scope); err != nil {
		return nil, err
	}
	unit := &models.Unit{}
	if err := in.apply(unit); err != nil {
		return nil, err
	}
	scope.Stamp(&unit.OwnerID)

	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		if unit.BaseUnitID != nil {
			if _, err := referencedUnit(ctx, tx, scope, *unit.BaseUnitID); err != nil {
				return err
			}
			forest, err := loadForest(ctx, tx, scope)
			if err != nil {
				return err
			}
			if err := forest.ValidateBase(0, unit.BaseUnitID); err != nil {
				return err
			}
		}
		return tx.AddUnit(ctx, unit)
	})
	if err != nil {
		return nil, err
	}

	applog.Debug(ctx, "unit created", "unit_id", unit.ID, "name", unit.Name)
	return unit, nil
}

// UpdateUnit renames or re-bases a unit. A new base must not create a cycle
// and must keep every recipe record of the firm on its ingredient's branch.
func (s *Service) UpdateUnit(ctx context.Context, scope tenant.Scope, id uint, in UnitInput) (*models.Unit, error) {
	if err := requireEditor(scope); err != nil {
		return nil, err
	}

	var updated *models.Unit
	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		unit, err := ownedUnit(ctx, tx, scope, id)
		if err != nil {
			return err
		}
		if err := in.apply(unit); err != nil {
			return err
		}
		if unit.BaseUnitID != nil {
			if _, err := referencedUnit(ctx, tx, scope, *unit.BaseUnitID); err != nil {
				return err
			}
		}

		forest, err := loadForest(ctx, tx, scope)
		if err != nil {
			return err
		}
		if err := forest.ValidateBase(unit.ID, unit.BaseUnitID); err != nil {
			return err
		}
		if err := checkRecords(ctx, tx, scope, forest.With(*unit), nil); err != nil {
			return err
		}

		if err := tx.UpdateUnit(ctx, unit); err != nil {
			return err
		}
		updated = unit
		return nil
	})
	if err != nil {
		return nil, err
	}

	applog.Debug(ctx, "unit updated", "unit_id", updated.ID)
	return updated, nil
}

// UnitPath returns the unit followed by its ancestors, root last.
func (s *Service) UnitPath(ctx context.Context, scope tenant.Scope, id uint) (UnitPath, error) {
	if err := requireScope(scope); err != nil {
		return UnitPath{}, err
	}
	if _, err := ownedUnit(ctx, s.repo, scope, id); err != nil {
		return UnitPath{}, err
	}
	forest, err := loadForest(ctx, s.repo, scope)
	if err != nil {
		return UnitPath{}, err
	}
	path, err := forest.PathToRoot(id)
	if err != nil {
		return UnitPath{}, err
	}
	factor, err := forest.ConversionFactorToRoot(id)
	if err != nil {
		return UnitPath{}, err
	}
	return UnitPath{Units: path, Factor: factor}, nil
}

// CompatibleUnits lists the units a quantity measured in id can be converted
// to, id included.
func (s *Service) CompatibleUnits(ctx context.Context, scope tenant.Scope, id uint) ([]models.Unit, error) {
	if err := requireScope(scope); err != nil {
		return nil, err
	}
	if _, err := ownedUnit(ctx, s.repo, scope, id); err != nil {
		return nil, err
	}
	forest, err := loadForest(ctx, s.repo, scope)
	if err != nil {
		return nil, err
	}
	return forest.Compatible(id), nil
}

// DeleteUnit removes a unit nothing references. Blocked deletions return a
// *models.ConflictError.
func (s *Service) DeleteUnit(ctx context.Context, scope tenant.Scope, id uint) error {
	if err := requireEditor(scope); err != nil {
		return err
	}
	if _, err := ownedUnit(ctx, s.repo, scope, id); err != nil {
		return err
	}
	if err := s.guard.DeleteUnit(ctx, id); err != nil {
		return err
	}
	applog.Debug(ctx, "unit deleted", "unit_id", id)
	return nil
}
