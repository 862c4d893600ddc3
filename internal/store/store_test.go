package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"patisserie/internal/db/dbtest"
	"patisserie/models"
)

func newRepository(t *testing.T) *GormRepository {
	t.Helper()
	return New(dbtest.New(t))
}

func TestUnitLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newRepository(t)

	kg := models.Unit{Name: "kg", Quantity: 1, OwnerID: 1}
	require.NoError(t, repo.AddUnit(ctx, &kg))
	g := models.Unit{Name: "g", Quantity: 0.001, BaseUnitID: &kg.ID, OwnerID: 1}
	require.NoError(t, repo.AddUnit(ctx, &g))
	require.NoError(t, repo.AddUnit(ctx, &models.Unit{Name: "cup", Quantity: 1, OwnerID: 2}))

	loaded, err := repo.Unit(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.BaseUnitID)
	assert.Equal(t, kg.ID, *loaded.BaseUnitID)

	owned, err := repo.UnitsByOwner(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	all, err := repo.AllUnits(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	loaded.BaseUnitID = nil
	loaded.Name = "gram"
	require.NoError(t, repo.UpdateUnit(ctx, loaded))

	reloaded, err := repo.Unit(ctx, g.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.BaseUnitID, "clearing the base must persist NULL")
	assert.Equal(t, "gram", reloaded.Name)

	require.NoError(t, repo.RemoveUnit(ctx, g.ID))
	_, err = repo.Unit(ctx, g.ID)
	require.ErrorIs(t, err, models.ErrMissingReference)
}

func TestMissingRowsReportMissingReference(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newRepository(t)

	_, err := repo.Ingredient(ctx, 99)
	require.ErrorIs(t, err, models.ErrMissingReference)

	_, err = repo.Recipe(ctx, 99)
	require.ErrorIs(t, err, models.ErrMissingReference)

	require.ErrorIs(t, repo.RemoveIngredientRecord(ctx, 99), models.ErrMissingReference)

	ghost := models.Unit{Model: gorm.Model{ID: 42}, Name: "ghost", Quantity: 1, OwnerID: 1}
	require.ErrorIs(t, repo.UpdateUnit(ctx, &ghost), models.ErrMissingReference)
	_, err = repo.Unit(ctx, 42)
	require.ErrorIs(t, err, models.ErrMissingReference, "update must not insert missing rows")
}

func TestRecipePreloadsRecordsInOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newRepository(t)

	recipe := models.Recipe{Name: "Sernik", OwnerID: 1}
	require.NoError(t, repo.AddRecipe(ctx, &recipe))
	for _, quantity := range []float64{3, 1, 2} {
		record := models.IngredientRecord{RecipeID: recipe.ID, IngredientID: 1, UnitID: 1, Quantity: quantity}
		require.NoError(t, repo.AddIngredientRecord(ctx, &record))
	}

	loaded, err := repo.Recipe(ctx, recipe.ID)
	require.NoError(t, err)
	require.Len(t, loaded.IngredientRecords, 3)
	assert.Equal(t, 3.0, loaded.IngredientRecords[0].Quantity)
	assert.Equal(t, 2.0, loaded.IngredientRecords[2].Quantity)

	all, err := repo.AllRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].IngredientRecords, 3)

	records, err := repo.RecordsByRecipe(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	loaded.Name = "Sernik wiedeński"
	require.NoError(t, repo.UpdateRecipe(ctx, loaded))
	records, err = repo.RecordsByRecipe(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Len(t, records, 3, "renaming a recipe must not touch its records")
}

func TestTransactionRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newRepository(t)
	boom := errors.New("boom")

	err := repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.AddIngredient(ctx, &models.Ingredient{Name: "Mąka", UnitID: 1, OwnerID: 1}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	ingredients, err := repo.AllIngredients(ctx)
	require.NoError(t, err)
	assert.Empty(t, ingredients)
}

func TestNilRepositoryReportsInvalidDB(t *testing.T) {
	t.Parallel()

	var repo *GormRepository
	_, err := repo.Unit(context.Background(), 1)
	require.ErrorIs(t, err, gorm.ErrInvalidDB)
}
