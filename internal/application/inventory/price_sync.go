package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// ValidatePriceConsistency compara, para cada ítem usado en recetas, el costo guardado en
// cada receta con el costo promedio de inventario. Ítems con costo 0 se omiten (sin base
// confiable) y solo se reportan diferencias mayores a 0.01.
func (s *LedgerService) ValidatePriceConsistency(ctx context.Context, tenantID string) ([]dto.PriceConsistencyDTO, error) {
	items, err := s.items.ListActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listar ítems: %w", err)
	}
	linked, err := s.recipes.ItemsWithRecipes(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("ítems con recetas: %w", err)
	}

	candidates := make([]*entity.Item, 0, len(items))
	for _, item := range items {
		if linked[item.ID] {
			candidates = append(candidates, item)
		}
	}

	rows := make([]*dto.PriceConsistencyDTO, len(candidates))
	err = s.forEachItem(ctx, candidates, func(ctx context.Context, i int, item *entity.Item) error {
		wac, err := s.WeightedAverageCost(ctx, tenantID, item.ID)
		if err != nil {
			return err
		}
		if wac.IsZero() {
			return nil
		}
		links, err := s.recipes.LinkedRecipes(ctx, tenantID, item.ID)
		if err != nil {
			return fmt.Errorf("recetas del ítem %s: %w", item.ID, err)
		}
		var mismatches []dto.RecipePriceDTO
		for _, link := range links {
			diff, pct, material := inventory.PriceDifference(link.IngredientCost, wac)
			if !material {
				continue
			}
			mismatches = append(mismatches, dto.RecipePriceDTO{
				RecipeID:             link.RecipeID,
				RecipeName:           link.RecipeName,
				RecipePrice:          link.IngredientCost,
				Difference:           diff,
				PercentageDifference: pct.Round(2),
			})
		}
		if len(mismatches) == 0 {
			return nil
		}
		rows[i] = &dto.PriceConsistencyDTO{
			ItemID:         item.ID,
			ItemName:       item.Name,
			InventoryPrice: wac,
			RecipePrices:   mismatches,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := []dto.PriceConsistencyDTO{}
	for _, r := range rows {
		if r != nil {
			report = append(report, *r)
		}
	}
	return report, nil
}

// NotifyPriceChange pide al subsistema de recetas recalcular el costo de cada receta que usa
// el ítem, una a una. La falla de una receta se registra y no detiene las demás (sin rollback).
// Solo devuelve error si no se pudo obtener la lista de recetas.
func (s *LedgerService) NotifyPriceChange(ctx context.Context, tenantID, itemID string, newPrice, oldPrice decimal.Decimal) (dto.PriceChangeResult, error) {
	result := dto.PriceChangeResult{ItemID: itemID}
	links, err := s.recipes.LinkedRecipes(ctx, tenantID, itemID)
	if err != nil {
		return result, fmt.Errorf("recetas del ítem %s: %w", itemID, err)
	}
	result.Recipes = len(links)

	for _, link := range links {
		if err := s.recalc.RequestRecalculation(ctx, tenantID, link.RecipeID); err != nil {
			result.Failed++
			s.log.Error().Err(err).
				Str("tenant_id", tenantID).
				Str("item_id", itemID).
				Str("recipe_id", link.RecipeID).
				Msg("recalcular costo de receta")
			continue
		}
		result.Requested++
	}

	s.log.Info().
		Str("tenant_id", tenantID).
		Str("item_id", itemID).
		Str("old_price", oldPrice.String()).
		Str("new_price", newPrice.String()).
		Int("recipes", result.Recipes).
		Int("failed", result.Failed).
		Msg("cambio de precio notificado")
	return result, nil
}

// publishPriceChange entrega el cambio al dispatcher o, sin dispatcher, notifica en línea.
// Fire-and-forget: los errores solo se registran.
func (s *LedgerService) publishPriceChange(ctx context.Context, change PriceChange) {
	if change.NewPrice.Equal(change.OldPrice) {
		return
	}
	if s.dispatcher != nil {
		if err := s.dispatcher.DispatchPriceChange(ctx, change); err != nil {
			s.log.Error().Err(err).Str("tenant_id", change.TenantID).Str("item_id", change.ItemID).
				Msg("encolar cambio de precio")
		}
		return
	}
	if s.recipes == nil || s.recalc == nil {
		return
	}
	if _, err := s.NotifyPriceChange(ctx, change.TenantID, change.ItemID, change.NewPrice, change.OldPrice); err != nil {
		s.log.Error().Err(err).Str("tenant_id", change.TenantID).Str("item_id", change.ItemID).
			Msg("notificar cambio de precio")
	}
}
