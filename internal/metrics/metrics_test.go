package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"patisserie/models"
)

func TestOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"conflict", &models.ConflictError{Target: "unit", Kind: models.ReferenceUnit, Name: "g"}, "blocked"},
		{"missing", fmt.Errorf("wrap: %w", models.ErrMissingReference), "missing_reference"},
		{"incompatible", models.ErrIncompatibleUnits, "incompatible_units"},
		{"cycle", models.ErrCyclicUnitGraph, "cyclic_unit_graph"},
		{"tenant", models.ErrCrossTenant, "cross_tenant"},
		{"other", errors.New("disk full"), "error"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Outcome(tt.err); got != tt.want {
				t.Fatalf("Outcome(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestObserveDeletionIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(DeletionsTotal.WithLabelValues("ingredient", "blocked"))
	ObserveDeletion("ingredient", &models.ConflictError{Kind: models.ReferenceRecipe})
	after := testutil.ToFloat64(DeletionsTotal.WithLabelValues("ingredient", "blocked"))
	if after != before+1 {
		t.Fatalf("expected blocked deletions to grow by one, got %v -> %v", before, after)
	}
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	handler := Middleware(func(*http.Request) string { return "/teapot" }, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/teapot", "418"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/teapot", nil))
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/teapot", "418"))

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status 418, got %d", rr.Code)
	}
	if after != before+1 {
		t.Fatalf("expected request counter to grow by one, got %v -> %v", before, after)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveValuation("price", nil)

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "patisserie_valuations_total") {
		t.Fatal("expected valuation counter in metrics output")
	}
}
