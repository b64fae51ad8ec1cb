package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RecipeCatalog lectura del subsistema de recetas (colaborador externo):
// qué recetas usan cada ítem y con qué costo unitario de ingrediente.
type RecipeCatalog interface {
	LinkedRecipes(ctx context.Context, tenantID, itemID string) ([]entity.RecipeLink, error)
	// ItemsWithRecipes devuelve los IDs de ítems referenciados por al menos una receta.
	ItemsWithRecipes(ctx context.Context, tenantID string) (map[string]bool, error)
}
