package handlers

import (
	"net/http"
	"time"

	"patisserie/internal/catalog"
	applog "patisserie/internal/log"
	"patisserie/internal/tenant"
	"patisserie/models"
)

const ingredientsPrefix = "/app/api/ingredients"

type ingredientResponse struct {
	ID        uint             `json:"id"`
	Name      string           `json:"name"`
	Price     *float64         `json:"price,omitempty"`
	Nutrition models.Nutrition `json:"nutrition"`
	UnitID    uint             `json:"unit_id"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	CanEdit   bool             `json:"can_edit"`
}

// IngredientResource handles REST-style interactions for ingredients.
// Prices are omitted for viewers.
func IngredientResource(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r)
	if !ok {
		return
	}

	segments := resourcePath(r, ingredientsPrefix)
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r, scope)
		case http.MethodPost:
			createIngredient(w, r, scope)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	ingredientID, ok := parseID(segments[0])
	if !ok || len(segments) > 1 {
		applog.Debug(r.Context(), "invalid ingredient path", "path", r.URL.Path)
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showIngredient(w, r, scope, ingredientID)
	case http.MethodPut:
		updateIngredient(w, r, scope, ingredientID)
	case http.MethodDelete:
		deleteIngredient(w, r, scope, ingredientID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listIngredients(w http.ResponseWriter, r *http.Request, scope tenant.Scope) {
	list, err := service.Ingredients(r.Context(), scope)
	if err != nil {
		writeServiceError(w, r, err, "load ingredients")
		return
	}
	responses := make([]ingredientResponse, 0, len(list))
	for _, ingredient := range list {
		responses = append(responses, projectIngredient(ingredient, scope))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showIngredient(w http.ResponseWriter, r *http.Request, scope tenant.Scope, id uint) {
	ingredient, err := service.Ingredient(r.Context(), scope, id)
	if err != nil {
		writeServiceError(w, r, err, "load ingredient")
		return
	}
	writeJSON(w, http.StatusOK, projectIngredient(*ingredient, scope))
}

func createIngredient(w http.ResponseWriter, r *http.Request, scope tenant.Scope) {
	var payload catalog.IngredientInput
	if !decodeJSON(w, r, &payload) {
		return
	}
	ingredient, err := service.CreateIngredient(r.Context(), scope, payload)
	if err != nil {
		writeServiceError(w, r, err, "create ingredient")
		return
	}
	writeJSON(w, http.StatusCreated, projectIngredient(*ingredient, scope))
}

func updateIngredient(w http.ResponseWriter, r *http.Request, scope tenant.Scope, id uint) {
	var payload catalog.IngredientInput
	if !decodeJSON(w, r, &payload) {
		return
	}
	ingredient, err := service.UpdateIngredient(r.Context(), scope, id, payload)
	if err != nil {
		writeServiceError(w, r, err, "update ingredient")
		return
	}
	writeJSON(w, http.StatusOK, projectIngredient(*ingredient, scope))
}

func deleteIngredient(w http.ResponseWriter, r *http.Request, scope tenant.Scope, id uint) {
	if err := service.DeleteIngredient(r.Context(), scope, id); err != nil {
		writeServiceError(w, r, err, "delete ingredient")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func projectIngredient(ingredient models.Ingredient, scope tenant.Scope) ingredientResponse {
	resp := ingredientResponse{
		ID:        ingredient.ID,
		Name:      ingredient.Name,
		Nutrition: ingredient.Nutrition,
		UnitID:    ingredient.UnitID,
		CreatedAt: ingredient.CreatedAt,
		UpdatedAt: ingredient.UpdatedAt,
		CanEdit:   scope.CanEdit(),
	}
	if scope.CanViewCosts() {
		price := ingredient.Price
		resp.Price = &price
	}
	return resp
}
