package entity

import "github.com/shopspring/decimal"

// RecipeLink representa una receta (subsistema externo) que usa un ítem como ingrediente,
// con el costo unitario del ingrediente guardado en la receta.
type RecipeLink struct {
	RecipeID       string
	RecipeName     string
	ItemID         string
	IngredientCost decimal.Decimal
}
