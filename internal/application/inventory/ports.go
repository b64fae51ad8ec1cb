package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con el lock del ítem (tenant, item) tomado.
// Todas las escrituras del libro pasan por aquí, así AdjustStock lee y escribe sin que otro
// movimiento del mismo ítem se intercale.
type TxRunner interface {
	Run(ctx context.Context, tenantID, itemID string, fn func(movRepo repository.MovementRepository) error) error
}

// RecipeCostRecalculator solicita al subsistema de recetas recalcular el costo de una receta.
type RecipeCostRecalculator interface {
	RequestRecalculation(ctx context.Context, tenantID, recipeID string) error
}

// PriceChange cambio del costo promedio ponderado de un ítem.
type PriceChange struct {
	TenantID string          `json:"tenant_id"`
	ItemID   string          `json:"item_id"`
	NewPrice decimal.Decimal `json:"new_price"`
	OldPrice decimal.Decimal `json:"old_price"`
}

// PriceChangeDispatcher entrega un PriceChange para procesarlo fuera de la petición (fire-and-forget).
// Si no se configura, el servicio notifica a las recetas en línea.
type PriceChangeDispatcher interface {
	DispatchPriceChange(ctx context.Context, change PriceChange) error
}
