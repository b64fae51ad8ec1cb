package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RecipeStore implementa repository.RecipeCatalog en memoria.
type RecipeStore struct{ s *Store }

// Link registra que la receta usa el ítem con el costo indicado. Reemplaza un vínculo
// existente de la misma receta e ítem.
func (r *RecipeStore) Link(tenantID string, link entity.RecipeLink) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byItem, ok := r.s.recipes[tenantID]
	if !ok {
		byItem = map[string][]entity.RecipeLink{}
		r.s.recipes[tenantID] = byItem
	}
	links := byItem[link.ItemID]
	for i := range links {
		if links[i].RecipeID == link.RecipeID {
			links[i] = link
			return
		}
	}
	byItem[link.ItemID] = append(links, link)
}

// LinkedRecipes recetas que usan el ítem.
func (r *RecipeStore) LinkedRecipes(_ context.Context, tenantID, itemID string) ([]entity.RecipeLink, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	links := r.s.recipes[tenantID][itemID]
	out := make([]entity.RecipeLink, len(links))
	copy(out, links)
	return out, nil
}

// ItemsWithRecipes IDs de ítems con al menos una receta.
func (r *RecipeStore) ItemsWithRecipes(_ context.Context, tenantID string) (map[string]bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]bool, len(r.s.recipes[tenantID]))
	for itemID, links := range r.s.recipes[tenantID] {
		if len(links) > 0 {
			out[itemID] = true
		}
	}
	return out, nil
}

// RequestRecalculation registra la solicitud de recálculo (implementa
// inventory.RecipeCostRecalculator cuando no hay cola configurada).
func (r *RecipeStore) RequestRecalculation(_ context.Context, tenantID, recipeID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.recalcs[tenantID] = append(r.s.recalcs[tenantID], recipeID)
	return nil
}

// RecalculationRequests recetas cuyo recálculo se solicitó, en orden.
func (r *RecipeStore) RecalculationRequests(tenantID string) []string {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]string, len(r.s.recalcs[tenantID]))
	copy(out, r.s.recalcs[tenantID])
	return out
}
