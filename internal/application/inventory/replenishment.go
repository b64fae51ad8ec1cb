package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// LowStockReport devuelve los ítems bajo su mínimo con la cantidad sugerida de pedido
// (stock ideal = ceil(mínimo * 1.5)). Orden: mayor faltante relativo primero.
func (s *LedgerService) LowStockReport(ctx context.Context, tenantID string) ([]dto.LowStockItemDTO, error) {
	items, err := s.items.ListActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listar ítems: %w", err)
	}

	rows := make([]*dto.LowStockItemDTO, len(items))
	err = s.forEachItem(ctx, items, func(ctx context.Context, i int, item *entity.Item) error {
		if item.MinStock == nil || *item.MinStock <= 0 {
			return nil
		}
		stock, err := s.CurrentStock(ctx, tenantID, item.ID, nil, nil)
		if err != nil {
			return err
		}
		if !inventory.IsBelowMinimum(stock, item.MinStock) {
			return nil
		}
		ideal := inventory.IdealStock(*item.MinStock)
		rows[i] = &dto.LowStockItemDTO{
			ItemID:            item.ID,
			ItemName:          item.Name,
			Category:          item.Category,
			Unit:              item.Unit,
			CurrentStock:      stock,
			MinStock:          *item.MinStock,
			IdealStock:        ideal,
			SuggestedOrderQty: ideal - stock,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := []dto.LowStockItemDTO{}
	for _, r := range rows {
		if r != nil {
			report = append(report, *r)
		}
	}

	// (min-a)/minA > (min-b)/minB sin división: multiplicación cruzada.
	sort.SliceStable(report, func(i, j int) bool {
		a, b := report[i], report[j]
		shortA, shortB := a.MinStock-a.CurrentStock, b.MinStock-b.CurrentStock
		if l, r := shortA*b.MinStock, shortB*a.MinStock; l != r {
			return l > r
		}
		if shortA != shortB {
			return shortA > shortB
		}
		return a.ItemName < b.ItemName
	})

	for i := range report {
		report[i].Priority = i + 1
	}
	return report, nil
}

// PriceStatistics estadísticas de precios de entrada por ítem activo. Un ítem cuya lectura
// falla se registra en el log y se omite; el reporte sale con los demás.
func (s *LedgerService) PriceStatistics(ctx context.Context, tenantID string) ([]dto.PriceStatisticsDTO, error) {
	items, err := s.items.ListActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listar ítems: %w", err)
	}

	rows := make([]*dto.PriceStatisticsDTO, len(items))
	err = s.forEachItem(ctx, items, func(ctx context.Context, i int, item *entity.Item) error {
		movs, err := s.pricedEntries(ctx, tenantID, item.ID, true)
		if err != nil {
			s.log.Warn().Err(err).Str("tenant_id", tenantID).Str("item_id", item.ID).
				Msg("estadísticas de precio: ítem omitido")
			return nil
		}
		stats := &dto.PriceStatisticsDTO{
			ItemID:              item.ID,
			ItemName:            item.Name,
			WeightedAverageCost: inventory.WeightedAverageCost(movs),
			EntryCount:          len(movs),
		}
		for _, m := range movs {
			p := *m.UnitPrice
			if stats.LastPrice == nil {
				stats.LastPrice = decimalPtr(p)
			}
			if stats.MinPrice == nil || p.LessThan(*stats.MinPrice) {
				stats.MinPrice = decimalPtr(p)
			}
			if stats.MaxPrice == nil || p.GreaterThan(*stats.MaxPrice) {
				stats.MaxPrice = decimalPtr(p)
			}
		}
		rows[i] = stats
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := []dto.PriceStatisticsDTO{}
	for _, r := range rows {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }
