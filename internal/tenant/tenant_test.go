package tenant

import (
	"context"
	"testing"

	"patisserie/models"
)

func TestFromContextRoundTrip(t *testing.T) {
	t.Parallel()

	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("expected no scope in empty context")
	}

	ctx := WithScope(context.Background(), New(12, models.AccessEditor))
	scope, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected scope to be found")
	}
	if scope.OwnerID != 12 || scope.Access != models.AccessEditor {
		t.Fatalf("unexpected scope %+v", scope)
	}
}

func TestFromContextRejectsZeroOwner(t *testing.T) {
	t.Parallel()

	ctx := WithScope(context.Background(), New(0, models.AccessEditor))
	if _, ok := FromContext(ctx); ok {
		t.Fatal("expected scope without owner to be rejected")
	}
}

func TestScopePermissions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		scope    Scope
		owner    uint
		owns     bool
		canEdit  bool
		canCosts bool
	}{
		{"editor owns", New(3, models.AccessEditor), 3, true, true, true},
		{"editor foreign", New(3, models.AccessEditor), 4, false, true, true},
		{"viewer owns", New(3, models.AccessViewer), 3, true, false, false},
		{"empty scope", Scope{}, 0, false, false, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.scope.Owns(tt.owner); got != tt.owns {
				t.Fatalf("Owns(%d) = %t, want %t", tt.owner, got, tt.owns)
			}
			if got := tt.scope.CanEdit(); got != tt.canEdit {
				t.Fatalf("CanEdit() = %t, want %t", got, tt.canEdit)
			}
			if got := tt.scope.CanViewCosts(); got != tt.canCosts {
				t.Fatalf("CanViewCosts() = %t, want %t", got, tt.canCosts)
			}
		})
	}
}

func TestStamp(t *testing.T) {
	t.Parallel()

	unit := models.Unit{Name: "kg"}
	New(9, models.AccessEditor).Stamp(&unit.OwnerID)
	if unit.OwnerID != 9 {
		t.Fatalf("expected owner 9, got %d", unit.OwnerID)
	}
	New(9, models.AccessEditor).Stamp(nil)
}
