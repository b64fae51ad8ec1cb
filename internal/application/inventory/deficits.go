package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// StockDeficits devuelve los ítems activos con stock negativo; DeficitAmount = |stock|.
func (s *LedgerService) StockDeficits(ctx context.Context, tenantID string) ([]dto.StockDeficitDTO, error) {
	items, err := s.items.ListActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listar ítems: %w", err)
	}

	rows := make([]*dto.StockDeficitDTO, len(items))
	err = s.forEachItem(ctx, items, func(ctx context.Context, i int, item *entity.Item) error {
		stock, err := s.CurrentStock(ctx, tenantID, item.ID, nil, nil)
		if err != nil {
			return err
		}
		amount, ok := inventory.DeficitAmount(stock)
		if !ok {
			return nil
		}
		rows[i] = &dto.StockDeficitDTO{
			ItemID:        item.ID,
			ItemName:      item.Name,
			Category:      item.Category,
			Unit:          item.Unit,
			CurrentStock:  stock,
			DeficitAmount: amount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	deficits := []dto.StockDeficitDTO{}
	for _, r := range rows {
		if r != nil {
			deficits = append(deficits, *r)
		}
	}
	return deficits, nil
}

// DeficitSummary resume los déficits: valor nocional para cubrirlos al último costo conocido
// y separación crítica (> 10) / moderada.
func (s *LedgerService) DeficitSummary(ctx context.Context, tenantID string) (*dto.DeficitSummaryResponse, error) {
	deficits, err := s.StockDeficits(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	values := make([]decimal.Decimal, len(deficits))
	items := make([]*entity.Item, len(deficits))
	for i, d := range deficits {
		items[i] = &entity.Item{ID: d.ItemID}
	}
	err = s.forEachItem(ctx, items, func(ctx context.Context, i int, item *entity.Item) error {
		wac, err := s.WeightedAverageCost(ctx, tenantID, item.ID)
		if err != nil {
			return err
		}
		values[i] = decimal.NewFromInt(deficits[i].DeficitAmount).Mul(wac)
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := &dto.DeficitSummaryResponse{
		TotalDeficitItems: len(deficits),
		TotalDeficitValue: decimal.Zero,
		CriticalDeficits:  []dto.StockDeficitDTO{},
		ModerateDeficits:  []dto.StockDeficitDTO{},
	}
	for i, d := range deficits {
		summary.TotalDeficitValue = summary.TotalDeficitValue.Add(values[i])
		if inventory.DeficitSeverity(d.DeficitAmount) == inventory.SeverityCritical {
			summary.CriticalDeficits = append(summary.CriticalDeficits, d)
		} else {
			summary.ModerateDeficits = append(summary.ModerateDeficits, d)
		}
	}
	return summary, nil
}
