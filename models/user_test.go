package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseAccessLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value string
		want  AccessLevel
	}{
		{"editor", "editor", AccessEditor},
		{"editor mixed case", "  Editor ", AccessEditor},
		{"numeric editor", "1", AccessEditor},
		{"viewer", "viewer", AccessViewer},
		{"unknown", "admin", AccessViewer},
		{"empty", "", AccessViewer},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseAccessLevel(tt.value); got != tt.want {
				t.Fatalf("ParseAccessLevel(%q) = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidAccessLevel(t *testing.T) {
	t.Parallel()

	if !ValidAccessLevel(AccessViewer) || !ValidAccessLevel(AccessEditor) {
		t.Fatal("expected known access levels to be valid")
	}
	if ValidAccessLevel(AccessLevel(7)) {
		t.Fatal("expected unknown access level to be invalid")
	}
}

func TestConflictErrorMatchesReferentialConflict(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("delete unit: %w", &ConflictError{Target: "unit", Kind: ReferenceRecipe, Name: "Babka"})
	if !errors.Is(err, ErrReferentialConflict) {
		t.Fatal("expected wrapped conflict to match ErrReferentialConflict")
	}

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatal("expected errors.As to extract the conflict")
	}
	if conflict.Name != "Babka" || conflict.Kind != ReferenceRecipe {
		t.Fatalf("unexpected conflict %+v", conflict)
	}
	if got := conflict.Error(); got != `unit is used in recipe "Babka" and cannot be deleted` {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestUnitIsRoot(t *testing.T) {
	t.Parallel()

	base := uint(4)
	zero := uint(0)
	if !(Unit{}).IsRoot() {
		t.Fatal("expected unit without base to be a root")
	}
	if !(Unit{BaseUnitID: &zero}).IsRoot() {
		t.Fatal("expected zero base id to be treated as a root")
	}
	if (Unit{BaseUnitID: &base}).IsRoot() {
		t.Fatal("expected unit with base to not be a root")
	}
}
