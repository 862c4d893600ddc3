// Package store persists units, ingredients and recipes and exposes them to
// the catalog core through the Repository interface.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"patisserie/models"
)

// Repository offers create/read/update/delete and listing operations per
// entity kind. Implementations translate missing rows into
// models.ErrMissingReference.
type Repository interface {
	Unit(ctx context.Context, id uint) (*models.Unit, error)
	UnitsByOwner(ctx context.Context, ownerID uint) ([]models.Unit, error)
	AllUnits(ctx context.Context) ([]models.Unit, error)
	AddUnit(ctx context.Context, unit *models.Unit) error
	UpdateUnit(ctx context.Context, unit *models.Unit) error
	RemoveUnit(ctx context.Context, id uint) error

	Ingredient(ctx context.Context, id uint) (*models.Ingredient, error)
	IngredientsByOwner(ctx context.Context, ownerID uint) ([]models.Ingredient, error)
	AllIngredients(ctx context.Context) ([]models.Ingredient, error)
	AddIngredient(ctx context.Context, ingredient *models.Ingredient) error
	UpdateIngredient(ctx context.Context, ingredient *models.Ingredient) error
	RemoveIngredient(ctx context.Context, id uint) error

	Recipe(ctx context.Context, id uint) (*models.Recipe, error)
	RecipesByOwner(ctx context.Context, ownerID uint) ([]models.Recipe, error)
	AllRecipes(ctx context.Context) ([]models.Recipe, error)
	AddRecipe(ctx context.Context, recipe *models.Recipe) error
	UpdateRecipe(ctx context.Context, recipe *models.Recipe) error
	RemoveRecipe(ctx context.Context, id uint) error

	IngredientRecord(ctx context.Context, id uint) (*models.IngredientRecord, error)
	RecordsByRecipe(ctx context.Context, recipeID uint) ([]models.IngredientRecord, error)
	AllIngredientRecords(ctx context.Context) ([]models.IngredientRecord, error)
	AddIngredientRecord(ctx context.Context, record *models.IngredientRecord) error
	UpdateIngredientRecord(ctx context.Context, record *models.IngredientRecord) error
	RemoveIngredientRecord(ctx context.Context, id uint) error

	// Transaction runs fn against a repository bound to a single database
	// transaction. Returning an error from fn rolls the transaction back.
	Transaction(ctx context.Context, fn func(Repository) error) error
}

// GormRepository implements Repository on top of GORM.
type GormRepository struct {
	db *gorm.DB
}

var _ Repository = (*GormRepository)(nil)

// New wraps db in a Repository.
func New(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// DB exposes the underlying handle.
func (r *GormRepository) DB() *gorm.DB {
	return r.db
}

func (r *GormRepository) conn(ctx context.Context) (*gorm.DB, error) {
	if r == nil || r.db == nil {
		return nil, gorm.ErrInvalidDB
	}
	return r.db.WithContext(ctx), nil
}

// Transaction implements Repository.
func (r *GormRepository) Transaction(ctx context.Context, fn func(Repository) error) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

func missing(kind string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", models.ErrMissingReference, kind, id)
	}
	return fmt.Errorf("load %s %d: %w", kind, id, err)
}

func first[T any](ctx context.Context, r *GormRepository, kind string, id uint, preload ...string) (*T, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	for _, association := range preload {
		db = db.Preload(association, func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") })
	}
	var entity T
	if err := db.First(&entity, id).Error; err != nil {
		return nil, missing(kind, id, err)
	}
	return &entity, nil
}

func list[T any](ctx context.Context, r *GormRepository, kind string, query func(*gorm.DB) *gorm.DB) ([]T, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var results []T
	if err := query(db).Order("id asc").Find(&results).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return results, nil
}

func create(ctx context.Context, r *GormRepository, kind string, entity any) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if err := db.Create(entity).Error; err != nil {
		return fmt.Errorf("create %s: %w", kind, err)
	}
	return nil
}

// save writes every column of entity, so cleared pointers such as a removed
// base unit are persisted as NULL. Rows that no longer exist are reported
// instead of being re-inserted.
func save(ctx context.Context, r *GormRepository, kind string, id uint, entity any) error {
	if id == 0 {
		return fmt.Errorf("%w: %s without id", models.ErrMissingReference, kind)
	}
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	result := db.Model(entity).Select("*").Omit("CreatedAt", clause.Associations).Updates(entity)
	if result.Error != nil {
		return fmt.Errorf("update %s %d: %w", kind, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s %d", models.ErrMissingReference, kind, id)
	}
	return nil
}

func remove[T any](ctx context.Context, r *GormRepository, kind string, id uint) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	result := db.Delete(new(T), id)
	if result.Error != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s %d", models.ErrMissingReference, kind, id)
	}
	return nil
}

func byOwner(ownerID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", ownerID)
	}
}

func everything(db *gorm.DB) *gorm.DB {
	return db
}
