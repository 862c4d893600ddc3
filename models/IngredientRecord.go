package models

import (
	"gorm.io/gorm"
)

// IngredientRecord is one line of a recipe: a quantity of an ingredient
// measured in a unit from the same branch as the ingredient's own unit.
type IngredientRecord struct {
	gorm.Model
	RecipeID     uint    `gorm:"not null;index" json:"recipe_id"` // Parent Recipe
	IngredientID uint    `gorm:"not null;index" json:"ingredient_id"`
	UnitID       uint    `gorm:"not null;index" json:"unit_id"`
	Quantity     float64 `gorm:"not null;default:0" json:"quantity"`
}
