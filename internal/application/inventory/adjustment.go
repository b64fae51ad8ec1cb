package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// AdjustStockInput entrada de AdjustStock: llevar el stock del ítem a NewQuantity.
type AdjustStockInput struct {
	TenantID    string
	ItemID      string
	UserID      string
	NewQuantity int64
	Reason      string
}

// AdjustStock agrega el movimiento correctivo delta = NewQuantity - stock actual.
// Con delta 0 no crea nada y devuelve domain.ErrNoAdjustmentNeeded.
//
// Las entradas por ajuste llevan precio unitario 0, así que bajan el costo promedio.
func (s *LedgerService) AdjustStock(ctx context.Context, in AdjustStockInput) (*entity.Movement, error) {
	if err := s.requireAvailableItem(ctx, in.TenantID, in.ItemID); err != nil {
		return nil, err
	}
	mov, err := s.appendMovement(ctx, in.TenantID, in.ItemID, func(current []*entity.Movement) (*entity.Movement, error) {
		delta := inventory.AdjustmentDelta(inventory.SumQuantities(current), in.NewQuantity)
		if delta == 0 {
			return nil, domain.ErrNoAdjustmentNeeded
		}
		m := &entity.Movement{
			Type:      inventory.AdjustmentType(delta),
			Quantity:  delta,
			Note:      AdjustmentNote(in.Reason),
			CreatedBy: in.UserID,
		}
		if m.Type == entity.MovementTypeIN {
			zero := decimal.Zero
			m.UnitPrice = &zero
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("tenant_id", in.TenantID).
		Str("item_id", in.ItemID).
		Int64("delta", mov.Quantity).
		Str("reason", in.Reason).
		Msg("stock ajustado")
	return mov, nil
}

// AdjustmentNote nota sintetizada de un movimiento de ajuste.
func AdjustmentNote(reason string) string {
	return "Ajuste de stock: " + reason
}
