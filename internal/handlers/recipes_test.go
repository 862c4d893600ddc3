package handlers

import (
	"math"
	"net/http"
	"strconv"
	"testing"

	"patisserie/internal/valuation"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestRecipeResourceFilter(t *testing.T) {
	sm := withFixtures(t)

	rr := serve(RecipeResource, sessionRequest(t, sm, viewerUser, http.MethodGet, "/app/api/recipes?q=NALE", ""))
	expectStatus(t, rr, http.StatusOK)
	recipes := decode[[]recipeResponse](t, rr)
	if len(recipes) != 1 || recipes[0].Name != "Naleśniki" {
		t.Fatalf("unexpected filter result %+v", recipes)
	}
	if len(recipes[0].Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recipes[0].Records))
	}

	rr = serve(RecipeResource, sessionRequest(t, sm, viewerUser, http.MethodGet, "/app/api/recipes", ""))
	expectStatus(t, rr, http.StatusOK)
	if all := decode[[]recipeResponse](t, rr); len(all) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(all))
	}
}

func TestRecipeValuation(t *testing.T) {
	sm := withFixtures(t)

	rr := serve(RecipeResource, sessionRequest(t, sm, editorUser, http.MethodGet, "/app/api/recipes/1/valuation?field=price", ""))
	expectStatus(t, rr, http.StatusOK)
	total := decode[fieldValueResponse](t, rr)
	if math.Abs(total.Value-4.55) > 1e-9 {
		t.Fatalf("expected pancake cost 4.55, got %v", total.Value)
	}

	rr = serve(RecipeResource, sessionRequest(t, sm, viewerUser, http.MethodGet, "/app/api/recipes/1/valuation?field=price", ""))
	expectStatus(t, rr, http.StatusForbidden)

	rr = serve(RecipeResource, sessionRequest(t, sm, viewerUser, http.MethodGet, "/app/api/recipes/1/valuation?field=fiber", ""))
	expectStatus(t, rr, http.StatusBadRequest)

	rr = serve(RecipeResource, sessionRequest(t, sm, viewerUser, http.MethodGet, "/app/api/recipes/1/valuation", ""))
	expectStatus(t, rr, http.StatusOK)
	summary := decode[valuationResponse](t, rr)
	if len(summary.Fields) != len(valuation.Fields())-1 {
		t.Fatalf("expected cost fields to be hidden, got %v", summary.Fields)
	}
	if _, ok := summary.Totals[valuation.Price.Name]; ok {
		t.Fatal("expected price total to be hidden from viewers")
	}
	if len(summary.Rows) != 3 || summary.Rows[0].IngredientName == "" {
		t.Fatalf("unexpected rows %+v", summary.Rows)
	}
	// 250 g of flour at 3480 kcal/kg, 500 ml milk at 610 kcal/l, 2 eggs at 80 kcal
	if got := summary.Totals[valuation.Kcal.Name]; math.Abs(got-1335) > 1e-9 {
		t.Fatalf("expected 1335 kcal, got %v", got)
	}

	rr = serve(RecipeResource, sessionRequest(t, sm, editorUser, http.MethodGet, "/app/api/recipes/1/records/1?field=price", ""))
	expectStatus(t, rr, http.StatusOK)
	if value := decode[fieldValueResponse](t, rr); math.Abs(value.Value-0.8) > 1e-9 {
		t.Fatalf("expected flour cost 0.8, got %v", value.Value)
	}

	rr = serve(RecipeResource, sessionRequest(t, sm, rivalUser, http.MethodGet, "/app/api/recipes/1/valuation", ""))
	expectStatus(t, rr, http.StatusNotFound)
}

func TestRecipeRecordLifecycle(t *testing.T) {
	sm := withFixtures(t)

	rr := serve(RecipeResource, sessionRequest(t, sm, editorUser, http.MethodPost, "/app/api/recipes", `{"name":"Kruche ciasto"}`))
	expectStatus(t, rr, http.StatusCreated)
	recipe := decode[recipeResponse](t, rr)
	base := "/app/api/recipes/" + itoa(recipe.ID)

	rr = serve(RecipeResource, sessionRequest(t, sm, editorUser, http.MethodPost, base+"/records", `{"ingredient_id":1,"unit_id":4,"quantity":100}`))
	expectStatus(t, rr, http.StatusUnprocessableEntity)

	rr = serve(RecipeResource, sessionRequest(t, sm, editorUser, http.MethodPost, base+"/records", `{"ingredient_id":5,"unit_id":2,"quantity":100}`))
	expectStatus(t, rr, http.StatusNotFound)

	rr = serve(RecipeResource, sessionRequest(t, sm, editorUser, http.MethodPost, base+"/records", `{"ingredient_id":1,"unit_id":2,"quantity":300}`))
	expectStatus(t, rr, http.StatusCreated)
	record := decode[recordResponse](t, rr)

	rr = serve(RecipeResource, sessionRequest(t, sm, editorUser, http.MethodPut, base+"/records/"+itoa(record.ID), `{"ingredient_id":1,"unit_id":1,"quantity":0.3}`))
	expectStatus(t, rr, http.StatusOK)

	rr = serve(RecipeResource, sessionRequest(t, sm, viewerUser, http.MethodDelete, base+"/records/"+itoa(record.ID), ""))
	expectStatus(t, rr, http.StatusForbidden)

	rr = serve(RecipeResource, sessionRequest(t, sm, editorUser, http.MethodDelete, base+"/records/"+itoa(record.ID), ""))
	expectStatus(t, rr, http.StatusNoContent)

	rr = serve(RecipeResource, sessionRequest(t, sm, editorUser, http.MethodPut, base, `{"name":"Kruche"}`))
	expectStatus(t, rr, http.StatusOK)
	if renamed := decode[recipeResponse](t, rr); renamed.Name != "Kruche" || len(renamed.Records) != 0 {
		t.Fatalf("unexpected recipe %+v", renamed)
	}
}

func TestRecipeCopyAndDelete(t *testing.T) {
	sm := withFixtures(t)

	rr := serve(RecipeResource, sessionRequest(t, sm, editorUser, http.MethodPost, "/app/api/recipes/2/copy", ""))
	expectStatus(t, rr, http.StatusCreated)
	copied := decode[recipeResponse](t, rr)
	if copied.Name != "Biszkopt (Copy)" || len(copied.Records) != 3 {
		t.Fatalf("unexpected copy %+v", copied)
	}

	rr = serve(RecipeResource, sessionRequest(t, sm, editorUser, http.MethodGet, "/app/api/recipes/2/copy", ""))
	expectStatus(t, rr, http.StatusMethodNotAllowed)

	rr = serve(RecipeResource, sessionRequest(t, sm, editorUser, http.MethodDelete, "/app/api/recipes/2", ""))
	expectStatus(t, rr, http.StatusNoContent)

	rr = serve(RecipeResource, sessionRequest(t, sm, editorUser, http.MethodGet, "/app/api/recipes/2", ""))
	expectStatus(t, rr, http.StatusNotFound)

	rr = serve(RecipeResource, sessionRequest(t, sm, editorUser, http.MethodGet, "/app/api/recipes/abc", ""))
	expectStatus(t, rr, http.StatusNotFound)
}
