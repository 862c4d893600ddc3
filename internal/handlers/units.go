package handlers

import (
	"net/http"
	"time"

	"patisserie/internal/catalog"
	applog "patisserie/internal/log"
	"patisserie/internal/tenant"
	"patisserie/models"
)

const unitsPrefix = "/app/api/units"

type unitResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	BaseUnitID *uint     `json:"base_unit_id"`
	Quantity   float64   `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	CanEdit    bool      `json:"can_edit"`
}

type unitPathResponse struct {
	Units  []unitResponse `json:"units"`
	Factor float64        `json:"factor"`
}

// UnitResource handles REST-style interactions for measurement units.
func UnitResource(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r)
	if !ok {
		return
	}

	segments := resourcePath(r, unitsPrefix)
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listUnits(w, r, scope)
		case http.MethodPost:
			createUnit(w, r, scope)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	unitID, ok := parseID(segments[0])
	if !ok || len(segments) > 2 {
		applog.Debug(r.Context(), "invalid unit path", "path", r.URL.Path)
		http.NotFound(w, r)
		return
	}

	if len(segments) == 2 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch segments[1] {
		case "path":
			showUnitPath(w, r, scope, unitID)
		case "compatible":
			listCompatibleUnits(w, r, scope, unitID)
		default:
			http.NotFound(w, r)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		showUnit(w, r, scope, unitID)
	case http.MethodPut:
		updateUnit(w, r, scope, unitID)
	case http.MethodDelete:
		deleteUnit(w, r, scope, unitID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listUnits(w http.ResponseWriter, r *http.Request, scope tenant.Scope) {
	list, err := service.Units(r.Context(), scope)
	if err != nil {
		writeServiceError(w, r, err, "load units")
		return
	}
	writeJSON(w, http.StatusOK, projectUnits(list, scope))
}

func showUnit(w http.ResponseWriter, r *http.Request, scope tenant.Scope, id uint) {
	unit, err := service.Unit(r.Context(), scope, id)
	if err != nil {
		writeServiceError(w, r, err, "load unit")
		return
	}
	writeJSON(w, http.StatusOK, projectUnit(*unit, scope))
}

func createUnit(w http.ResponseWriter, r *http.Request, scope tenant.Scope) {
	var payload catalog.UnitInput
	if !decodeJSON(w, r, &payload) {
		return
	}
	unit, err := service.CreateUnit(r.Context(), scope, payload)
	if err != nil {
		writeServiceError(w, r, err, "create unit")
		return
	}
	writeJSON(w, http.StatusCreated, projectUnit(*unit, scope))
}

func updateUnit(w http.ResponseWriter, r *http.Request, scope tenant.Scope, id uint) {
	var payload catalog.UnitInput
	if !decodeJSON(w, r, &payload) {
		return
	}
	unit, err := service.UpdateUnit(r.Context(), scope, id, payload)
	if err != nil {
		writeServiceError(w, r, err, "update unit")
		return
	}
	writeJSON(w, http.StatusOK, projectUnit(*unit, scope))
}

func deleteUnit(w http.ResponseWriter, r *http.Request, scope tenant.Scope, id uint) {
	if err := service.DeleteUnit(r.Context(), scope, id); err != nil {
		writeServiceError(w, r, err, "delete unit")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func showUnitPath(w http.ResponseWriter, r *http.Request, scope tenant.Scope, id uint) {
	path, err := service.UnitPath(r.Context(), scope, id)
	if err != nil {
		writeServiceError(w, r, err, "resolve unit path")
		return
	}
	writeJSON(w, http.StatusOK, unitPathResponse{Units: projectUnits(path.Units, scope), Factor: path.Factor})
}

func listCompatibleUnits(w http.ResponseWriter, r *http.Request, scope tenant.Scope, id uint) {
	list, err := service.CompatibleUnits(r.Context(), scope, id)
	if err != nil {
		writeServiceError(w, r, err, "load compatible units")
		return
	}
	writeJSON(w, http.StatusOK, projectUnits(list, scope))
}

func projectUnit(unit models.Unit, scope tenant.Scope) unitResponse {
	resp := unitResponse{
		ID:        unit.ID,
		Name:      unit.Name,
		Quantity:  unit.Quantity,
		CreatedAt: unit.CreatedAt,
		UpdatedAt: unit.UpdatedAt,
		CanEdit:   scope.CanEdit(),
	}
	if !unit.IsRoot() {
		base := *unit.BaseUnitID
		resp.BaseUnitID = &base
	}
	return resp
}

func projectUnits(list []models.Unit, scope tenant.Scope) []unitResponse {
	responses := make([]unitResponse, 0, len(list))
	for _, unit := range list {
		responses = append(responses, projectUnit(unit, scope))
	}
	return responses
}
