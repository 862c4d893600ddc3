package store

import (
	"context"

	"gorm.io/gorm"

	"patisserie/models"
)

const (
	kindUnit       = "unit"
	kindIngredient = "ingredient"
	kindRecipe     = "recipe"
	kindRecord     = "ingredient record"
)

func (r *GormRepository) Unit(ctx context.Context, id uint) (*models.Unit, error) {
	return first[models.Unit](ctx, r, kindUnit, id)
}

func (r *GormRepository) UnitsByOwner(ctx context.Context, ownerID uint) ([]models.Unit, error) {
	return list[models.Unit](ctx, r, kindUnit, byOwner(ownerID))
}

func (r *GormRepository) AllUnits(ctx context.Context) ([]models.Unit, error) {
	return list[models.Unit](ctx, r, kindUnit, everything)
}

func (r *GormRepository) AddUnit(ctx context.Context, unit *models.Unit) error {
	return create(ctx, r, kindUnit, unit)
}

func (r *GormRepository) UpdateUnit(ctx context.Context, unit *models.Unit) error {
	return save(ctx, r, kindUnit, unit.ID, unit)
}

func (r *GormRepository) RemoveUnit(ctx context.Context, id uint) error {
	return remove[models.Unit](ctx, r, kindUnit, id)
}

func (r *GormRepository) Ingredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	return first[models.Ingredient](ctx, r, kindIngredient, id)
}

func (r *GormRepository) IngredientsByOwner(ctx context.Context, ownerID uint) ([]models.Ingredient, error) {
	return list[models.Ingredient](ctx, r, kindIngredient, byOwner(ownerID))
}

func (r *GormRepository) AllIngredients(ctx context.Context) ([]models.Ingredient, error) {
	return list[models.Ingredient](ctx, r, kindIngredient, everything)
}

func (r *GormRepository) AddIngredient(ctx context.Context, ingredient *models.Ingredient) error {
	return create(ctx, r, kindIngredient, ingredient)
}

func (r *GormRepository) UpdateIngredient(ctx context.Context, ingredient *models.Ingredient) error {
	return save(ctx, r, kindIngredient, ingredient.ID, ingredient)
}

func (r *GormRepository) RemoveIngredient(ctx context.Context, id uint) error {
	return remove[models.Ingredient](ctx, r, kindIngredient, id)
}

// Recipe loads a recipe together with its ingredient records.
func (r *GormRepository) Recipe(ctx context.Context, id uint) (*models.Recipe, error) {
	return first[models.Recipe](ctx, r, kindRecipe, id, "IngredientRecords")
}

func (r *GormRepository) RecipesByOwner(ctx context.Context, ownerID uint) ([]models.Recipe, error) {
	return list[models.Recipe](ctx, r, kindRecipe, func(db *gorm.DB) *gorm.DB {
		return preloadRecords(byOwner(ownerID)(db))
	})
}

// AllRecipes lists every recipe of every firm with its records preloaded.
func (r *GormRepository) AllRecipes(ctx context.Context) ([]models.Recipe, error) {
	return list[models.Recipe](ctx, r, kindRecipe, preloadRecords)
}

func (r *GormRepository) AddRecipe(ctx context.Context, recipe *models.Recipe) error {
	return create(ctx, r, kindRecipe, recipe)
}

// UpdateRecipe persists the recipe's own columns; records are written through
// the ingredient record operations.
func (r *GormRepository) UpdateRecipe(ctx context.Context, recipe *models.Recipe) error {
	return save(ctx, r, kindRecipe, recipe.ID, recipe)
}

func (r *GormRepository) RemoveRecipe(ctx context.Context, id uint) error {
	return remove[models.Recipe](ctx, r, kindRecipe, id)
}

func (r *GormRepository) IngredientRecord(ctx context.Context, id uint) (*models.IngredientRecord, error) {
	return first[models.IngredientRecord](ctx, r, kindRecord, id)
}

func (r *GormRepository) RecordsByRecipe(ctx context.Context, recipeID uint) ([]models.IngredientRecord, error) {
	return list[models.IngredientRecord](ctx, r, kindRecord, func(db *gorm.DB) *gorm.DB {
		return db.Where("recipe_id = ?", recipeID)
	})
}

func (r *GormRepository) AllIngredientRecords(ctx context.Context) ([]models.IngredientRecord, error) {
	return list[models.IngredientRecord](ctx, r, kindRecord, everything)
}

func (r *GormRepository) AddIngredientRecord(ctx context.Context, record *models.IngredientRecord) error {
	return create(ctx, r, kindRecord, record)
}

func (r *GormRepository) UpdateIngredientRecord(ctx context.Context, record *models.IngredientRecord) error {
	return save(ctx, r, kindRecord, record.ID, record)
}

func (r *GormRepository) RemoveIngredientRecord(ctx context.Context, id uint) error {
	return remove[models.IngredientRecord](ctx, r, kindRecord, id)
}

func preloadRecords(db *gorm.DB) *gorm.DB {
	return db.Preload("IngredientRecords", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") })
}
