// Package tenant carries the acting firm and access level through every
// catalog operation.
package tenant

import (
	"context"
	"errors"

	"patisserie/models"
)

// ErrNoScope is returned when a request context carries no tenant scope.
var ErrNoScope = errors.New("tenant: no scope in context")

// Scope identifies the firm on whose behalf an operation runs.
type Scope struct {
	OwnerID uint
	Access  models.AccessLevel
}

type scopeKey struct{}

// New builds a Scope for the given firm and access level.
func New(ownerID uint, access models.AccessLevel) Scope {
	return Scope{OwnerID: ownerID, Access: access}
}

// WithScope stores s in ctx.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the scope stored in ctx, if any.
func FromContext(ctx context.Context) (Scope, bool) {
	if ctx == nil {
		return Scope{}, false
	}
	s, ok := ctx.Value(scopeKey{}).(Scope)
	if !ok || !s.Valid() {
		return Scope{}, false
	}
	return s, true
}

// Valid reports whether the scope names a firm.
func (s Scope) Valid() bool {
	return s.OwnerID != 0
}

// Owns reports whether an entity owned by ownerID belongs to this scope.
func (s Scope) Owns(ownerID uint) bool {
	return s.Valid() && s.OwnerID == ownerID
}

// CanEdit reports whether the scope may create, change or delete entities.
func (s Scope) CanEdit() bool {
	return s.Access == models.AccessEditor
}

// CanViewCosts reports whether prices and recipe costs may be shown.
func (s Scope) CanViewCosts() bool {
	return s.Access == models.AccessEditor
}

// Stamp sets the owner field of a newly created entity.
func (s Scope) Stamp(ownerID *uint) {
	if ownerID != nil {
		*ownerID = s.OwnerID
	}
}
