package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// Quantity lleva signo: positiva en IN, negativa en OUT.
type RegisterMovementRequest struct {
	ItemID      string           `json:"item_id"`
	Type        string           `json:"type"`
	Quantity    int64            `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Note        string           `json:"note,omitempty"`
	BatchNumber string           `json:"batch_number,omitempty"`
	ExpiryDate  *time.Time       `json:"expiry_date,omitempty"`
}

// AmendMovementRequest body para PATCH /api/inventory/movements/:id.
// Solo Note y BatchNumber son modificables; enviar Type o Quantity es un error.
type AmendMovementRequest struct {
	Note        *string `json:"note,omitempty"`
	BatchNumber *string `json:"batch_number,omitempty"`
	Type        *string `json:"type,omitempty"`
	Quantity    *int64  `json:"quantity,omitempty"`
}

// CreateItemRequest body para POST /api/inventory/items.
// ID opcional (SKU propio); MinStock ausente toma el umbral por defecto (10).
type CreateItemRequest struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Unit     string `json:"unit,omitempty"`
	MinStock *int64 `json:"min_stock,omitempty"`
}

// ItemResponse ítem de inventario.
type ItemResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Unit      string    `json:"unit,omitempty"`
	MinStock  *int64    `json:"min_stock,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// PriceChangeRequest body para POST /api/inventory/items/:id/price-change.
type PriceChangeRequest struct {
	NewPrice decimal.Decimal `json:"new_price"`
	OldPrice decimal.Decimal `json:"old_price"`
}

// AdjustStockRequest body para POST /api/inventory/items/:id/adjust.
type AdjustStockRequest struct {
	NewQuantity int64  `json:"new_quantity"`
	Reason      string `json:"reason"`
}

// MovementResponse movimiento del libro.
type MovementResponse struct {
	ID          string           `json:"id"`
	ItemID      string           `json:"item_id"`
	Type        string           `json:"type"`
	Quantity    int64            `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Note        string           `json:"note,omitempty"`
	BatchNumber string           `json:"batch_number,omitempty"`
	ExpiryDate  *time.Time       `json:"expiry_date,omitempty"`
	CreatedBy   string           `json:"created_by,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// StockResponse stock actual de un ítem (opcionalmente en una ventana de fechas).
type StockResponse struct {
	ItemID       string     `json:"item_id"`
	CurrentStock int64      `json:"current_stock"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

// CostResponse costo promedio ponderado de un ítem (0 = sin entradas con precio).
type CostResponse struct {
	ItemID              string          `json:"item_id"`
	WeightedAverageCost decimal.Decimal `json:"weighted_average_cost"`
}

// ValuationItemDTO valoración de un ítem con stock positivo.
type ValuationItemDTO struct {
	ItemID       string          `json:"item_id"`
	ItemName     string          `json:"item_name"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	CurrentStock int64           `json:"current_stock"`
	UnitCost     decimal.Decimal `json:"unit_cost"`   // costo promedio ponderado
	TotalValue   decimal.Decimal `json:"total_value"` // CurrentStock * UnitCost
}

// ValuationResponse valoración total del inventario de un tenant.
type ValuationResponse struct {
	TotalValue decimal.Decimal    `json:"total_value"`
	Items      []ValuationItemDTO `json:"items"`
}

// PriceHistoryEntry entrada IN con precio, usada en el historial.
type PriceHistoryEntry struct {
	Date      time.Time       `json:"date"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
}

// InventoryPriceResponse precio de inventario para sincronizar con recetas.
type InventoryPriceResponse struct {
	ItemID       string              `json:"item_id"`
	Price        decimal.Decimal     `json:"price"`
	PriceSource  string              `json:"price_source"` // WAC | NONE
	LastUpdated  time.Time           `json:"last_updated"`
	PriceHistory []PriceHistoryEntry `json:"price_history"` // máximo 10, más reciente primero
}

// StockDeficitDTO ítem con stock negativo.
type StockDeficitDTO struct {
	ItemID        string `json:"item_id"`
	ItemName      string `json:"item_name"`
	Category      string `json:"category"`
	Unit          string `json:"unit"`
	CurrentStock  int64  `json:"current_stock"`
	DeficitAmount int64  `json:"deficit_amount"` // |CurrentStock|
}

// DeficitSummaryResponse resumen de déficits; crítico si DeficitAmount > 10.
type DeficitSummaryResponse struct {
	TotalDeficitItems int               `json:"total_deficit_items"`
	TotalDeficitValue decimal.Decimal   `json:"total_deficit_value"`
	CriticalDeficits  []StockDeficitDTO `json:"critical_deficits"`
	ModerateDeficits  []StockDeficitDTO `json:"moderate_deficits"`
}

// LowStockResponse resultado de IsLowStock.
type LowStockResponse struct {
	ItemID     string `json:"item_id"`
	IsLowStock bool   `json:"is_low_stock"`
}

// RecipePriceDTO diferencia entre el costo guardado en una receta y el costo de inventario.
type RecipePriceDTO struct {
	RecipeID             string          `json:"recipe_id"`
	RecipeName           string          `json:"recipe_name"`
	RecipePrice          decimal.Decimal `json:"recipe_price"`
	Difference           decimal.Decimal `json:"difference"`
	PercentageDifference decimal.Decimal `json:"percentage_difference"`
}

// PriceConsistencyDTO ítem con al menos una receta con costo inconsistente.
type PriceConsistencyDTO struct {
	ItemID         string           `json:"item_id"`
	ItemName       string           `json:"item_name"`
	InventoryPrice decimal.Decimal  `json:"inventory_price"`
	RecipePrices   []RecipePriceDTO `json:"recipe_prices"`
}

// PriceChangeResult resultado de notificar un cambio de precio a las recetas.
type PriceChangeResult struct {
	ItemID    string `json:"item_id"`
	Recipes   int    `json:"recipes"`
	Requested int    `json:"requested"`
	Failed    int    `json:"failed"`
}

// LowStockItemDTO sugerencia de reposición para un ítem bajo su mínimo.
type LowStockItemDTO struct {
	ItemID            string `json:"item_id"`
	ItemName          string `json:"item_name"`
	Category          string `json:"category"`
	Unit              string `json:"unit"`
	CurrentStock      int64  `json:"current_stock"`
	MinStock          int64  `json:"min_stock"`
	IdealStock        int64  `json:"ideal_stock"`         // ceil(MinStock * 1.5)
	SuggestedOrderQty int64  `json:"suggested_order_qty"` // IdealStock - CurrentStock
	Priority          int    `json:"priority"`            // 1 = más urgente
}

// PriceStatisticsDTO estadísticas de precios de entrada de un ítem.
type PriceStatisticsDTO struct {
	ItemID              string           `json:"item_id"`
	ItemName            string           `json:"item_name"`
	WeightedAverageCost decimal.Decimal  `json:"weighted_average_cost"`
	MinPrice            *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice            *decimal.Decimal `json:"max_price,omitempty"`
	LastPrice           *decimal.Decimal `json:"last_price,omitempty"`
	EntryCount          int              `json:"entry_count"`
}

// ImportRowError error de una fila de importación masiva.
type ImportRowError struct {
	Line   int      `json:"line"`
	Errors []string `json:"errors"`
}

// ImportResult resultado de la importación masiva de movimientos.
type ImportResult struct {
	Imported int              `json:"imported"`
	Rejected int              `json:"rejected"`
	Errors   []ImportRowError `json:"errors"`
}

// ValidateEntryRequest body para POST /api/inventory/movements/validate.
type ValidateEntryRequest struct {
	Type       string           `json:"type"`
	Quantity   int64            `json:"quantity"`
	UnitPrice  *decimal.Decimal `json:"unit_price,omitempty"`
	ExpiryDate *time.Time       `json:"expiry_date,omitempty"`
}

// Reject registra una fila rechazada.
func (r *ImportResult) Reject(line int, errs []string) {
	r.Rejected++
	r.Errors = append(r.Errors, ImportRowError{Line: line, Errors: errs})
}

// ValuationReport datos de los reportes exportables (PDF y snapshot XML).
type ValuationReport struct {
	TenantID    string                 `json:"tenant_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Valuation   ValuationResponse      `json:"valuation"`
	Deficits    DeficitSummaryResponse `json:"deficits"`
}
