package models

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingReference reports an ingredient or unit id that no longer resolves.
	ErrMissingReference = errors.New("missing reference")
	// ErrIncompatibleUnits reports a conversion between units of different branches.
	ErrIncompatibleUnits = errors.New("incompatible units")
	// ErrReferentialConflict is matched by every *ConflictError.
	ErrReferentialConflict = errors.New("referential conflict")
	// ErrCyclicUnitGraph reports a base unit change that would make a unit its own ancestor.
	ErrCyclicUnitGraph = errors.New("cyclic unit graph")
	// ErrCrossTenant reports a reference to an entity owned by another firm.
	ErrCrossTenant = errors.New("cross-tenant reference")
)

// ReferenceKind names the kind of entity that still references a deletion target.
type ReferenceKind string

const (
	ReferenceUnit       ReferenceKind = "unit"
	ReferenceRecipe     ReferenceKind = "recipe"
	ReferenceIngredient ReferenceKind = "ingredient"
)

// ConflictError blocks the deletion of a unit or ingredient that is still in use.
type ConflictError struct {
	Target string        // kind of the entity whose deletion was requested
	Kind   ReferenceKind // kind of the first referencing entity found
	Name   string        // display name of the referencing entity; empty when not disclosed
}

func (e *ConflictError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s is still referenced by another firm's %s and cannot be deleted", e.Target, e.Kind)
	}
	switch e.Kind {
	case ReferenceUnit:
		return fmt.Sprintf("%s is used as the base unit of %q and cannot be deleted", e.Target, e.Name)
	case ReferenceRecipe:
		return fmt.Sprintf("%s is used in recipe %q and cannot be deleted", e.Target, e.Name)
	case ReferenceIngredient:
		return fmt.Sprintf("%s is used by ingredient %q and cannot be deleted", e.Target, e.Name)
	default:
		return fmt.Sprintf("%s is still referenced by %q and cannot be deleted", e.Target, e.Name)
	}
}

// Is lets errors.Is(err, ErrReferentialConflict) match any conflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrReferentialConflict
}
