// Package inventory contiene las reducciones puras sobre el libro de movimientos:
// stock actual, costo promedio ponderado, déficit, stock bajo y consistencia de precios.
// Ninguna función consulta almacenamiento; reciben los movimientos ya filtrados.
package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CriticalDeficitThreshold déficit por encima del cual se considera crítico (fijo).
const CriticalDeficitThreshold int64 = 10

// PriceHistoryLimit entradas IN devueltas en el historial de precios.
const PriceHistoryLimit = 10

// Severidades de déficit.
const (
	SeverityCritical = "critical"
	SeverityModerate = "moderate"
)

// Fuentes de precio de inventario.
const (
	PriceSourceWAC  = "WAC"
	PriceSourceNone = "NONE"
)

// PriceMaterialityThreshold diferencia mínima (en unidades monetarias) para reportar
// una inconsistencia de precio receta vs inventario.
var PriceMaterialityThreshold = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// SumQuantities reduce los movimientos a stock actual (suma de cantidades con signo).
// Los movimientos eliminados se ignoran. Sin movimientos devuelve 0.
func SumQuantities(movs []*entity.Movement) int64 {
	var total int64
	for _, m := range movs {
		if m == nil || m.DeletedAt != nil {
			continue
		}
		total += m.Quantity
	}
	return total
}

// WeightedAverageCost calcula Σ(cantidad·precio)/Σ(cantidad) sobre las entradas IN con precio.
// OUT y entradas sin precio no participan. Sin entradas válidas devuelve 0 (centinela).
func WeightedAverageCost(movs []*entity.Movement) decimal.Decimal {
	totalQty := decimal.Zero
	totalCost := decimal.Zero
	for _, m := range movs {
		if m == nil || !m.IsPricedIN() {
			continue
		}
		qty := decimal.NewFromInt(m.Quantity)
		totalQty = totalQty.Add(qty)
		totalCost = totalCost.Add(qty.Mul(*m.UnitPrice))
	}
	if totalQty.IsZero() {
		return decimal.Zero
	}
	return totalCost.Div(totalQty)
}

// Valuation valor del stock a costo promedio. Posiciones <= 0 no tienen valor.
func Valuation(stock int64, wac decimal.Decimal) decimal.Decimal {
	if stock <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(stock).Mul(wac)
}

// DeficitAmount devuelve |stock| cuando el stock es negativo y si hay déficit.
func DeficitAmount(stock int64) (int64, bool) {
	if stock >= 0 {
		return 0, false
	}
	return -stock, true
}

// DeficitSeverity clasifica un déficit: > CriticalDeficitThreshold es crítico.
func DeficitSeverity(amount int64) string {
	if amount > CriticalDeficitThreshold {
		return SeverityCritical
	}
	return SeverityModerate
}

// IsBelowMinimum indica stock bajo. Un umbral ausente o 0 desactiva el seguimiento.
func IsBelowMinimum(stock int64, minStock *int64) bool {
	if minStock == nil || *minStock == 0 {
		return false
	}
	return stock < *minStock
}

// PriceSource devuelve WAC si hay costo confiable, NONE en caso contrario.
func PriceSource(wac decimal.Decimal) string {
	if wac.GreaterThan(decimal.Zero) {
		return PriceSourceWAC
	}
	return PriceSourceNone
}

// PriceDifference compara el costo de la receta con el costo de inventario.
// Devuelve la diferencia absoluta, el porcentaje relativo al precio de inventario y
// si la diferencia supera el umbral de materialidad.
func PriceDifference(recipeCost, inventoryCost decimal.Decimal) (diff, pct decimal.Decimal, material bool) {
	diff = recipeCost.Sub(inventoryCost).Abs()
	if !inventoryCost.IsZero() {
		pct = diff.Div(inventoryCost).Mul(hundred)
	}
	return diff, pct, diff.GreaterThan(PriceMaterialityThreshold)
}

// AdjustmentDelta cantidad del movimiento correctivo para llevar el stock a target.
func AdjustmentDelta(current, target int64) int64 {
	return target - current
}

// AdjustmentType IN si el ajuste suma, OUT si resta.
func AdjustmentType(delta int64) string {
	if delta > 0 {
		return entity.MovementTypeIN
	}
	return entity.MovementTypeOUT
}

// IdealStock nivel objetivo de reposición: ceil(minStock * 1.5).
func IdealStock(minStock int64) int64 {
	if minStock <= 0 {
		return 0
	}
	return (minStock*3 + 1) / 2
}
