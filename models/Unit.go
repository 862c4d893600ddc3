package models

import (
	"gorm.io/gorm"
)

// Unit is a measurement unit expressed as a multiple of its base unit. Units
// without a base are roots of the unit forest.
type Unit struct {
	gorm.Model
	Name       string  `gorm:"not null" json:"name"`
	BaseUnitID *uint   `gorm:"index" json:"base_unit_id,omitempty"`
	Quantity   float64 `gorm:"not null;default:1" json:"quantity"`
	OwnerID    uint    `gorm:"not null;index" json:"owner_id"`
}

// IsRoot reports whether the unit has no base unit.
func (u Unit) IsRoot() bool {
	return u.BaseUnitID == nil || *u.BaseUnitID == 0
}
