package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"patisserie/internal/catalog"
	applog "patisserie/internal/log"
	"patisserie/internal/store"
	"patisserie/internal/tenant"
	"patisserie/models"
)

var (
	sessionManager *scs.SessionManager
	database       *gorm.DB
	service        *catalog.Service
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, db *gorm.DB) {
	sessionManager = sm
	database = db
	service = nil
	if db != nil {
		service = catalog.New(store.New(db))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps catalog errors onto HTTP statuses. Only conflict
// messages are shown verbatim; unexpected failures are logged.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var conflict *models.ConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSONError(w, http.StatusConflict, conflict.Error())
	case errors.Is(err, tenant.ErrNoScope):
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, catalog.ErrForbidden):
		writeJSONError(w, http.StatusForbidden, "your access level does not permit this operation")
	case errors.Is(err, models.ErrMissingReference), errors.Is(err, models.ErrCrossTenant):
		applog.Debug(r.Context(), "reference not resolved", "error", err)
		writeJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrIncompatibleUnits):
		writeJSONError(w, http.StatusUnprocessableEntity, "the units cannot be converted into each other")
	case errors.Is(err, models.ErrCyclicUnitGraph):
		writeJSONError(w, http.StatusUnprocessableEntity, "a unit cannot be based on itself or on one of its derived units")
	case errors.Is(err, catalog.ErrInvalidName):
		writeJSONError(w, http.StatusBadRequest, "name is required")
	case errors.Is(err, catalog.ErrInvalidQuantity):
		writeJSONError(w, http.StatusBadRequest, "quantities must be positive numbers")
	case errors.Is(err, catalog.ErrInvalidPrice):
		writeJSONError(w, http.StatusBadRequest, "price must not be negative")
	case errors.Is(err, catalog.ErrUnknownField):
		writeJSONError(w, http.StatusBadRequest, "unknown valuation field")
	case errors.Is(err, gorm.ErrInvalidDB):
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		applog.Error(r.Context(), "catalog operation failed", "action", action, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to "+action)
	}
}

// requestScope returns the tenant scope installed by RequireAuthentication.
func requestScope(w http.ResponseWriter, r *http.Request) (tenant.Scope, bool) {
	if service == nil {
		applog.Debug(r.Context(), "catalog request without database")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return tenant.Scope{}, false
	}
	scope, ok := tenant.FromContext(r.Context())
	if !ok {
		applog.Debug(r.Context(), "catalog request missing tenant scope")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return tenant.Scope{}, false
	}
	return scope, true
}

// resourcePath splits the part of the URL below prefix into segments.
func resourcePath(r *http.Request, prefix string) []string {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func parseID(value string) (uint, bool) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		applog.Debug(r.Context(), "invalid request payload", "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}
	return true
}
