package models

import (
	"gorm.io/gorm"
)

type Recipe struct {
	gorm.Model
	Name              string             `gorm:"not null" json:"name"`
	OwnerID           uint               `gorm:"not null;index" json:"owner_id"`
	IngredientRecords []IngredientRecord `gorm:"foreignKey:RecipeID" json:"ingredient_records"`
}
