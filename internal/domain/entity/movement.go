package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MovementTypeIN  = "IN"  // entrada, cantidad positiva
	MovementTypeOUT = "OUT" // salida, cantidad negativa
)

// Movement representa una entrada inmutable del libro de inventario.
// Quantity es con signo: positiva en IN, negativa en OUT.
// Solo Note y BatchNumber pueden modificarse después de creado.
type Movement struct {
	ID          string
	TenantID    string
	ItemID      string
	Type        string
	Quantity    int64
	UnitPrice   *decimal.Decimal // obligatorio en IN, opcional en OUT
	Note        string
	BatchNumber string
	ExpiryDate  *time.Time
	CreatedBy   string
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

// IsPricedIN indica si el movimiento cuenta para el costo promedio ponderado.
func (m *Movement) IsPricedIN() bool {
	return m.Type == MovementTypeIN && m.UnitPrice != nil && m.DeletedAt == nil
}
