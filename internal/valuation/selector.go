package valuation

import (
	"strings"

	"patisserie/models"
)

// Selector extracts one scalar field of an ingredient, expressed per one unit
// of the ingredient's own unit.
type Selector struct {
	Name  string
	Cost  bool // price-like fields are hidden from viewers
	Value func(models.Ingredient) float64
}

var (
	Price = Selector{Name: "price", Cost: true, Value: func(i models.Ingredient) float64 { return i.Price }}

	Kcal           = Selector{Name: "kcal", Value: func(i models.Ingredient) float64 { return i.Nutrition.Kcal }}
	Fat            = Selector{Name: "fat", Value: func(i models.Ingredient) float64 { return i.Nutrition.Fat }}
	SaturatedAcids = Selector{Name: "saturated_acids", Value: func(i models.Ingredient) float64 { return i.Nutrition.SaturatedAcids }}
	Carbohydrates  = Selector{Name: "carbohydrates", Value: func(i models.Ingredient) float64 { return i.Nutrition.Carbohydrates }}
	Sugar          = Selector{Name: "sugar", Value: func(i models.Ingredient) float64 { return i.Nutrition.Sugar }}
	Protein        = Selector{Name: "protein", Value: func(i models.Ingredient) float64 { return i.Nutrition.Protein }}
	Salt           = Selector{Name: "salt", Value: func(i models.Ingredient) float64 { return i.Nutrition.Salt }}
)

// Fields returns the eight valued fields, price first.
func Fields() []Selector {
	return []Selector{Price, Kcal, Fat, SaturatedAcids, Carbohydrates, Sugar, Protein, Salt}
}

// Lookup resolves a selector by name, case-insensitively.
func Lookup(name string) (Selector, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, field := range Fields() {
		if field.Name == needle {
			return field, true
		}
	}
	return Selector{}, false
}
