package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.RecipeCatalog = (*RecipeCatalog)(nil)

// RecipeCatalog lee recipe_ingredients (tabla del subsistema de recetas).
type RecipeCatalog struct {
	q Querier
}

// NewRecipeCatalog construye el adaptador.
func NewRecipeCatalog(q Querier) *RecipeCatalog {
	return &RecipeCatalog{q: q}
}

// LinkedRecipes recetas que usan el ítem, ordenadas por receta.
func (r *RecipeCatalog) LinkedRecipes(ctx context.Context, tenantID, itemID string) ([]entity.RecipeLink, error) {
	rows, err := r.q.Query(ctx, `
		SELECT recipe_id, recipe_name, item_id, ingredient_cost
		FROM recipe_ingredients WHERE tenant_id = $1 AND item_id = $2
		ORDER BY recipe_id`, tenantID, itemID)
	if err != nil {
		return nil, fmt.Errorf("linked recipes: %w", err)
	}
	defer rows.Close()

	links := make([]entity.RecipeLink, 0)
	for rows.Next() {
		var l entity.RecipeLink
		if err := rows.Scan(&l.RecipeID, &l.RecipeName, &l.ItemID, &l.IngredientCost); err != nil {
			return nil, fmt.Errorf("scan recipe link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// ItemsWithRecipes IDs de ítems referenciados por al menos una receta.
func (r *RecipeCatalog) ItemsWithRecipes(ctx context.Context, tenantID string) (map[string]bool, error) {
	rows, err := r.q.Query(ctx,
		`SELECT DISTINCT item_id FROM recipe_ingredients WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("items with recipes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan item id: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}
