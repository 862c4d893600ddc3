package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/gorm"

	"patisserie/internal/db/mock"
	"patisserie/models"
)

func newMockDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("mock.New returned error: %v", err)
	}
	return database
}

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func findUnit(t *testing.T, database *gorm.DB, ownerID uint, name string) models.Unit {
	t.Helper()
	var unit models.Unit
	if err := database.Where("owner_id = ? AND name = ?", ownerID, name).First(&unit).Error; err != nil {
		t.Fatalf("find unit %q: %v", name, err)
	}
	return unit
}

func TestImportCatalogUpsertsIntoDefaultOwnerFirm(t *testing.T) {
	t.Parallel()

	database := newMockDatabase(t)
	file, err := readCatalog(writeCatalog(t, `{
		"units": [
			{"name": "łyżeczka", "base": "łyżka", "quantity": 0.333},
			{"name": "łyżka", "base": "ml", "quantity": 15},
			{"name": "kg"}
		],
		"ingredients": [
			{"name": "Cukier", "price": 5.2, "unit": "kg", "nutrition": {"kcal": 4000, "sugar": 1000}},
			{"name": "Masło 82%", "price": 32, "unit": "kg", "nutrition": {"kcal": 7400, "fat": 820}}
		]
	}`))
	if err != nil {
		t.Fatalf("readCatalog returned error: %v", err)
	}

	result, err := importCatalog(context.Background(), database, "", file)
	if err != nil {
		t.Fatalf("importCatalog returned error: %v", err)
	}

	want := summary{UnitsCreated: 2, UnitsUpdated: 1, IngredientsCreated: 1, IngredientsUpdated: 1}
	if result != want {
		t.Fatalf("unexpected summary: got %+v want %+v", result, want)
	}

	spoon := findUnit(t, database, mock.FirmID, "łyżka")
	teaspoon := findUnit(t, database, mock.FirmID, "łyżeczka")
	if teaspoon.BaseUnitID == nil || *teaspoon.BaseUnitID != spoon.ID {
		t.Fatalf("expected teaspoon to be based on spoon %d, got %v", spoon.ID, teaspoon.BaseUnitID)
	}
	ml := findUnit(t, database, mock.FirmID, "ml")
	if spoon.BaseUnitID == nil || *spoon.BaseUnitID != ml.ID {
		t.Fatalf("expected spoon to be based on ml %d, got %v", ml.ID, spoon.BaseUnitID)
	}

	var sugar models.Ingredient
	if err := database.Where("owner_id = ? AND name = ?", mock.FirmID, "Cukier").First(&sugar).Error; err != nil {
		t.Fatalf("find sugar: %v", err)
	}
	if sugar.Price != 5.2 {
		t.Fatalf("expected sugar price to be updated, got %v", sugar.Price)
	}

	var butter models.Ingredient
	if err := database.Where("name = ?", "Masło 82%").First(&butter).Error; err != nil {
		t.Fatalf("find butter: %v", err)
	}
	if butter.OwnerID != mock.FirmID || butter.Nutrition.Fat != 820 {
		t.Fatalf("unexpected butter row: %+v", butter)
	}
}

func TestImportCatalogUsesOwnerFromEmail(t *testing.T) {
	t.Parallel()

	database := newMockDatabase(t)
	file := catalogFile{Units: []unitEntry{{Name: "g", Base: "kg", Quantity: 0.001}}}

	result, err := importCatalog(context.Background(), database, strings.ToUpper(mock.OtherEmail), file)
	if err != nil {
		t.Fatalf("importCatalog returned error: %v", err)
	}
	if result.UnitsCreated != 1 {
		t.Fatalf("expected one created unit, got %+v", result)
	}

	gram := findUnit(t, database, mock.OtherFirmID, "g")
	kg := findUnit(t, database, mock.OtherFirmID, "kg")
	if gram.BaseUnitID == nil || *gram.BaseUnitID != kg.ID {
		t.Fatalf("expected gram to be based on the other firm's kg %d, got %v", kg.ID, gram.BaseUnitID)
	}
}

func TestImportCatalogRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		email   string
		file    catalogFile
		wantErr string
	}{
		{
			name:    "viewer account",
			email:   mock.ViewerEmail,
			file:    catalogFile{Units: []unitEntry{{Name: "dag", Base: "kg", Quantity: 0.01}}},
			wantErr: "cannot edit the catalog",
		},
		{
			name:    "unknown account",
			email:   "nobody@example.com",
			file:    catalogFile{Units: []unitEntry{{Name: "dag", Base: "kg", Quantity: 0.01}}},
			wantErr: "find owner by email",
		},
		{
			name: "cyclic bases",
			file: catalogFile{Units: []unitEntry{
				{Name: "a", Base: "b", Quantity: 2},
				{Name: "b", Base: "a", Quantity: 2},
			}},
			wantErr: "unresolvable base unit",
		},
		{
			name:    "missing base",
			file:    catalogFile{Units: []unitEntry{{Name: "oz", Base: "lb", Quantity: 0.0625}}},
			wantErr: "unresolvable base unit",
		},
		{
			name:    "ingredient with unknown unit",
			file:    catalogFile{Ingredients: []ingredientEntry{{Name: "Drożdże", Price: 1, Unit: "kostka"}}},
			wantErr: "unknown unit",
		},
		{
			name:    "negative price",
			file:    catalogFile{Ingredients: []ingredientEntry{{Name: "Drożdże", Price: -1, Unit: "kg"}}},
			wantErr: "create ingredient",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			database := newMockDatabase(t)
			_, err := importCatalog(context.Background(), database, tt.email, tt.file)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestReadCatalogRejectsBadInput(t *testing.T) {
	t.Parallel()

	if _, err := readCatalog(writeCatalog(t, `{"units": []}`)); err == nil {
		t.Fatal("expected empty catalog to be rejected")
	}
	if _, err := readCatalog(writeCatalog(t, `{"units": [`)); err == nil {
		t.Fatal("expected malformed catalog to be rejected")
	}
	if _, err := readCatalog(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected missing file to be rejected")
	}
}

func TestRunRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	if err := run("  "); err == nil {
		t.Fatal("expected empty path to be rejected")
	}
}
