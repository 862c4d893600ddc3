package mock

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"patisserie/internal/store"
	"patisserie/internal/units"
	"patisserie/models"
)

func TestNewSeedsExpectedRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := New(ctx)
	if err != nil {
		t.Fatalf("mock database initialization failed: %v", err)
	}
	repo := store.New(db)

	unitList, err := repo.UnitsByOwner(ctx, FirmID)
	if err != nil {
		t.Fatalf("list units: %v", err)
	}
	if len(unitList) != 5 {
		t.Fatalf("expected 5 seeded units, got %d", len(unitList))
	}

	recipes, err := repo.RecipesByOwner(ctx, FirmID)
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(recipes) != 2 {
		t.Fatalf("expected 2 seeded recipes, got %d", len(recipes))
	}

	// every seeded record must sit on its ingredient's branch
	forest := units.NewForest(unitList)
	for _, recipe := range recipes {
		for _, record := range recipe.IngredientRecords {
			ingredient, err := repo.Ingredient(ctx, record.IngredientID)
			if err != nil {
				t.Fatalf("load ingredient %d: %v", record.IngredientID, err)
			}
			if !forest.SameBranch(record.UnitID, ingredient.UnitID) {
				t.Fatalf("record %d of %q uses an incompatible unit", record.ID, recipe.Name)
			}
		}
	}

	other, err := repo.RecipesByOwner(ctx, OtherFirmID)
	if err != nil {
		t.Fatalf("list other firm recipes: %v", err)
	}
	if len(other) != 1 {
		t.Fatalf("expected 1 recipe for the second firm, got %d", len(other))
	}

	var user models.User
	if err := db.WithContext(ctx).Where("email = ?", EditorEmail).First(&user).Error; err != nil {
		t.Fatalf("query user: %v", err)
	}
	if user.AccessLevel != models.AccessEditor || user.FirmID != FirmID {
		t.Fatalf("unexpected editor account: %+v", user)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(Password)); err != nil {
		t.Fatalf("unexpected password hash: %v", err)
	}
}

func TestNewReturnsIndependentDatabases(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	first, err := New(ctx)
	if err != nil {
		t.Fatalf("first mock database: %v", err)
	}
	if _, err := New(ctx); err != nil {
		t.Fatalf("second mock database: %v", err)
	}

	var count int64
	if err := first.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 users, got %d", count)
	}
}
