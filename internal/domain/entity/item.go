package entity

import "time"

// DefaultMinStock umbral mínimo asignado al crear un ítem sin umbral explícito.
const DefaultMinStock int64 = 10

// Item representa un ítem de inventario (SKU) de un tenant.
// Los ítems inactivos o eliminados no cuentan en stock ni valoración, pero siguen
// referenciados por los movimientos históricos.
type Item struct {
	ID        string
	TenantID  string
	Name      string
	Category  string
	Unit      string
	MinStock  *int64 // nil o 0 = sin seguimiento de stock bajo
	IsActive  bool
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available indica si el ítem participa en las vistas de stock y valoración.
func (i *Item) Available() bool {
	return i != nil && i.IsActive && i.DeletedAt == nil
}
