package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"patisserie/internal/catalog"
	applog "patisserie/internal/log"
	"patisserie/internal/tenant"
	"patisserie/internal/valuation"
	"patisserie/models"
)

const recipesPrefix = "/app/api/recipes"

type recipeRequest struct {
	Name string `json:"name"`
}

type recordResponse struct {
	ID           uint    `json:"id"`
	IngredientID uint    `json:"ingredient_id"`
	UnitID       uint    `json:"unit_id"`
	Quantity     float64 `json:"quantity"`
}

type recipeResponse struct {
	ID        uint             `json:"id"`
	Name      string           `json:"name"`
	Records   []recordResponse `json:"records"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	CanEdit   bool             `json:"can_edit"`
}

type valuationRowResponse struct {
	RecordID       uint               `json:"record_id"`
	IngredientID   uint               `json:"ingredient_id"`
	IngredientName string             `json:"ingredient_name,omitempty"`
	Values         map[string]float64 `json:"values,omitempty"`
	Error          string             `json:"error,omitempty"`
}

type valuationResponse struct {
	RecipeID uint                   `json:"recipe_id"`
	Fields   []string               `json:"fields"`
	Rows     []valuationRowResponse `json:"rows"`
	Totals   map[string]float64     `json:"totals,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

type fieldValueResponse struct {
	Field string  `json:"field"`
	Value float64 `json:"value"`
}

// RecipeResource handles recipes, their ingredient records and their
// valuation.
func RecipeResource(w http.ResponseWriter, r *http.Request) {
	scope, ok := requestScope(w, r)
	if !ok {
		return
	}

	segments := resourcePath(r, recipesPrefix)
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listRecipes(w, r, scope)
		case http.MethodPost:
			createRecipe(w, r, scope)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	recipeID, ok := parseID(segments[0])
	if !ok {
		applog.Debug(r.Context(), "invalid recipe identifier", "identifier", segments[0])
		http.NotFound(w, r)
		return
	}

	if len(segments) == 1 {
		switch r.Method {
		case http.MethodGet:
			showRecipe(w, r, scope, recipeID)
		case http.MethodPut:
			renameRecipe(w, r, scope, recipeID)
		case http.MethodDelete:
			deleteRecipe(w, r, scope, recipeID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	switch segments[1] {
	case "copy":
		if len(segments) != 2 {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		copyRecipe(w, r, scope, recipeID)
	case "valuation":
		if len(segments) != 2 {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		showValuation(w, r, scope, recipeID)
	case "records":
		recordResource(w, r, scope, recipeID, segments[2:])
	default:
		http.NotFound(w, r)
	}
}

func recordResource(w http.ResponseWriter, r *http.Request, scope tenant.Scope, recipeID uint, segments []string) {
	if len(segments) == 0 {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		addRecord(w, r, scope, recipeID)
		return
	}

	recordID, ok := parseID(segments[0])
	if !ok || len(segments) > 1 {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showRecordValue(w, r, scope, recipeID, recordID)
	case http.MethodPut:
		updateRecord(w, r, scope, recipeID, recordID)
	case http.MethodDelete:
		if err := service.RemoveRecord(r.Context(), scope, recipeID, recordID); err != nil {
			writeServiceError(w, r, err, "remove ingredient record")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipes(w http.ResponseWriter, r *http.Request, scope tenant.Scope) {
	list, err := service.Recipes(r.Context(), scope, r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err, "load recipes")
		return
	}
	responses := make([]recipeResponse, 0, len(list))
	for _, recipe := range list {
		responses = append(responses, projectRecipe(recipe, scope))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showRecipe(w http.ResponseWriter, r *http.Request, scope tenant.Scope, id uint) {
	recipe, err := service.Recipe(r.Context(), scope, id)
	if err != nil {
		writeServiceError(w, r, err, "load recipe")
		return
	}
	writeJSON(w, http.StatusOK, projectRecipe(*recipe, scope))
}

func createRecipe(w http.ResponseWriter, r *http.Request, scope tenant.Scope) {
	var payload recipeRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	recipe, err := service.CreateRecipe(r.Context(), scope, payload.Name)
	if err != nil {
		writeServiceError(w, r, err, "create recipe")
		return
	}
	writeJSON(w, http.StatusCreated, projectRecipe(*recipe, scope))
}

func renameRecipe(w http.ResponseWriter, r *http.Request, scope tenant.Scope, id uint) {
	var payload recipeRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	recipe, err := service.RenameRecipe(r.Context(), scope, id, payload.Name)
	if err != nil {
		writeServiceError(w, r, err, "rename recipe")
		return
	}
	writeJSON(w, http.StatusOK, projectRecipe(*recipe, scope))
}

func deleteRecipe(w http.ResponseWriter, r *http.Request, scope tenant.Scope, id uint) {
	if err := service.DeleteRecipe(r.Context(), scope, id); err != nil {
		writeServiceError(w, r, err, "delete recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func copyRecipe(w http.ResponseWriter, r *http.Request, scope tenant.Scope, id uint) {
	recipe, err := service.CopyRecipe(r.Context(), scope, id)
	if err != nil {
		writeServiceError(w, r, err, "copy recipe")
		return
	}
	writeJSON(w, http.StatusCreated, projectRecipe(*recipe, scope))
}

func addRecord(w http.ResponseWriter, r *http.Request, scope tenant.Scope, recipeID uint) {
	var payload catalog.RecordInput
	if !decodeJSON(w, r, &payload) {
		return
	}
	record, err := service.AddRecord(r.Context(), scope, recipeID, payload)
	if err != nil {
		writeServiceError(w, r, err, "add ingredient record")
		return
	}
	writeJSON(w, http.StatusCreated, projectRecord(*record))
}

func updateRecord(w http.ResponseWriter, r *http.Request, scope tenant.Scope, recipeID, recordID uint) {
	var payload catalog.RecordInput
	if !decodeJSON(w, r, &payload) {
		return
	}
	record, err := service.UpdateRecord(r.Context(), scope, recipeID, recordID, payload)
	if err != nil {
		writeServiceError(w, r, err, "update ingredient record")
		return
	}
	writeJSON(w, http.StatusOK, projectRecord(*record))
}

func showRecordValue(w http.ResponseWriter, r *http.Request, scope tenant.Scope, recipeID, recordID uint) {
	field := fieldParam(r)
	value, err := service.RecordValue(r.Context(), scope, recipeID, recordID, field)
	if err != nil {
		writeServiceError(w, r, err, "value ingredient record")
		return
	}
	writeJSON(w, http.StatusOK, fieldValueResponse{Field: strings.ToLower(field), Value: value})
}

// showValuation returns the full summary, or a single total when the field
// query parameter is present.
func showValuation(w http.ResponseWriter, r *http.Request, scope tenant.Scope, recipeID uint) {
	if r.URL.Query().Has("field") {
		field := fieldParam(r)
		total, err := service.RecipeTotal(r.Context(), scope, recipeID, field)
		if err != nil {
			writeServiceError(w, r, err, "value recipe")
			return
		}
		writeJSON(w, http.StatusOK, fieldValueResponse{Field: strings.ToLower(field), Value: total})
		return
	}

	summary, err := service.RecipeSummary(r.Context(), scope, recipeID)
	if err != nil {
		writeServiceError(w, r, err, "value recipe")
		return
	}
	writeJSON(w, http.StatusOK, projectSummary(summary, scope))
}

func fieldParam(r *http.Request) string {
	field := strings.TrimSpace(r.URL.Query().Get("field"))
	if field == "" {
		return valuation.Price.Name
	}
	return field
}

func projectRecord(record models.IngredientRecord) recordResponse {
	return recordResponse{
		ID:           record.ID,
		IngredientID: record.IngredientID,
		UnitID:       record.UnitID,
		Quantity:     record.Quantity,
	}
}

func projectRecipe(recipe models.Recipe, scope tenant.Scope) recipeResponse {
	records := make([]recordResponse, 0, len(recipe.IngredientRecords))
	for _, record := range recipe.IngredientRecords {
		records = append(records, projectRecord(record))
	}
	return recipeResponse{
		ID:        recipe.ID,
		Name:      recipe.Name,
		Records:   records,
		CreatedAt: recipe.CreatedAt,
		UpdatedAt: recipe.UpdatedAt,
		CanEdit:   scope.CanEdit(),
	}
}

// projectSummary drops cost fields for viewers. Row failures are reported per
// row; totals are only present when every row could be valued.
func projectSummary(summary valuation.Summary, scope tenant.Scope) valuationResponse {
	visible := make([]valuation.Selector, 0, len(valuation.Fields()))
	for _, field := range valuation.Fields() {
		if field.Cost && !scope.CanViewCosts() {
			continue
		}
		visible = append(visible, field)
	}

	resp := valuationResponse{
		RecipeID: summary.Recipe.ID,
		Fields:   make([]string, 0, len(visible)),
		Rows:     make([]valuationRowResponse, 0, len(summary.Rows)),
	}
	for _, field := range visible {
		resp.Fields = append(resp.Fields, field.Name)
	}

	for _, row := range summary.Rows {
		item := valuationRowResponse{RecordID: row.Record.ID, IngredientID: row.Record.IngredientID}
		if row.Ingredient != nil {
			item.IngredientName = row.Ingredient.Name
		}
		if row.Err != nil {
			item.Error = describeValuationError(row.Err)
		} else {
			item.Values = pick(row.Values, visible)
		}
		resp.Rows = append(resp.Rows, item)
	}

	if summary.Err != nil {
		resp.Error = describeValuationError(summary.Err)
	} else {
		resp.Totals = pick(summary.Totals, visible)
	}
	return resp
}

func pick(values map[string]float64, fields []valuation.Selector) map[string]float64 {
	picked := make(map[string]float64, len(fields))
	for _, field := range fields {
		picked[field.Name] = values[field.Name]
	}
	return picked
}

func describeValuationError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, models.ErrIncompatibleUnits):
		return "unit cannot be converted to the ingredient's unit"
	case errors.Is(err, models.ErrMissingReference), errors.Is(err, models.ErrCrossTenant):
		return "ingredient or unit no longer exists"
	default:
		return "value unavailable"
	}
}
