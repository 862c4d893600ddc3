package models

import (
	"gorm.io/gorm"
)

// Nutrition holds nutritional values per one unit of the owning ingredient.
type Nutrition struct {
	Kcal           float64 `json:"kcal"`
	Fat            float64 `json:"fat"`
	SaturatedAcids float64 `json:"saturated_acids"`
	Carbohydrates  float64 `json:"carbohydrates"`
	Sugar          float64 `json:"sugar"`
	Protein        float64 `json:"protein"`
	Salt           float64 `json:"salt"`
}

type Ingredient struct {
	gorm.Model
	Name      string    `gorm:"not null" json:"name"`
	Price     float64   `gorm:"not null;default:0" json:"price"` // per one UnitID
	Nutrition Nutrition `gorm:"embedded;embeddedPrefix:nutrition_" json:"nutrition"`
	UnitID    uint      `gorm:"not null;index" json:"unit_id"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
}
