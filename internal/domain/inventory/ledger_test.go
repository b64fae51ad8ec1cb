package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func in(qty int64, p string) *entity.Movement {
	return &entity.Movement{Type: entity.MovementTypeIN, Quantity: qty, UnitPrice: price(p)}
}

func out(qty int64) *entity.Movement {
	return &entity.Movement{Type: entity.MovementTypeOUT, Quantity: -qty}
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock actual
// ──────────────────────────────────────────────────────────────────────────────

func TestSumQuantities_SinMovimientos(t *testing.T) {
	assert.Equal(t, int64(0), inventory.SumQuantities(nil))
}

func TestSumQuantities_IndependienteDelOrden(t *testing.T) {
	movs := []*entity.Movement{in(100, "10"), out(30), in(5, "12"), out(80)}
	reversed := []*entity.Movement{movs[3], movs[2], movs[1], movs[0]}

	assert.Equal(t, int64(-5), inventory.SumQuantities(movs))
	assert.Equal(t, inventory.SumQuantities(movs), inventory.SumQuantities(reversed),
		"la suma no debe depender del orden de inserción")
}

func TestSumQuantities_IgnoraEliminados(t *testing.T) {
	deleted := out(40)
	now := time.Now()
	deleted.DeletedAt = &now

	assert.Equal(t, int64(100), inventory.SumQuantities([]*entity.Movement{in(100, "1"), deleted}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Costo promedio ponderado
// ──────────────────────────────────────────────────────────────────────────────

func TestWeightedAverageCost_DosEntradas(t *testing.T) {
	movs := []*entity.Movement{in(100, "1000"), in(50, "1200")}

	wac := inventory.WeightedAverageCost(movs)

	assert.Equal(t, "1066.67", wac.StringFixed(2))
	assert.Equal(t, "1067", wac.Round(0).String())
}

func TestWeightedAverageCost_IgnoraSalidas(t *testing.T) {
	base := []*entity.Movement{in(100, "1000"), in(50, "1200")}
	withOut := append([]*entity.Movement{out(70)}, base...)

	assert.True(t, inventory.WeightedAverageCost(base).Equal(inventory.WeightedAverageCost(withOut)))
}

func TestWeightedAverageCost_IgnoraEntradasSinPrecio(t *testing.T) {
	noPrice := &entity.Movement{Type: entity.MovementTypeIN, Quantity: 500}
	movs := []*entity.Movement{in(10, "5"), noPrice}

	assert.Equal(t, "5", inventory.WeightedAverageCost(movs).String())
}

func TestWeightedAverageCost_CentinelaCero(t *testing.T) {
	assert.True(t, inventory.WeightedAverageCost(nil).IsZero())
	assert.True(t, inventory.WeightedAverageCost([]*entity.Movement{out(3)}).IsZero())
}

func TestWeightedAverageCost_AjusteConPrecioCeroBajaElCosto(t *testing.T) {
	movs := []*entity.Movement{in(10, "100"), in(10, "0")}

	assert.Equal(t, "50", inventory.WeightedAverageCost(movs).String())
}

func TestValuation_PosicionNoPositivaNoVale(t *testing.T) {
	wac := decimal.NewFromInt(7)
	assert.True(t, inventory.Valuation(0, wac).IsZero())
	assert.True(t, inventory.Valuation(-4, wac).IsZero())
	assert.Equal(t, "21", inventory.Valuation(3, wac).String())
}

// ──────────────────────────────────────────────────────────────────────────────
// Déficit y stock bajo
// ──────────────────────────────────────────────────────────────────────────────

func TestDeficit_MenosDiezEsModerado(t *testing.T) {
	amount, ok := inventory.DeficitAmount(-10)

	assert.True(t, ok)
	assert.Equal(t, int64(10), amount)
	assert.Equal(t, inventory.SeverityModerate, inventory.DeficitSeverity(amount))
	assert.Equal(t, inventory.SeverityCritical, inventory.DeficitSeverity(11))
}

func TestDeficit_StockCeroNoEsDeficit(t *testing.T) {
	_, ok := inventory.DeficitAmount(0)
	assert.False(t, ok)
}

func TestIsBelowMinimum(t *testing.T) {
	zero, five := int64(0), int64(5)

	assert.False(t, inventory.IsBelowMinimum(0, nil), "sin umbral no hay stock bajo")
	assert.False(t, inventory.IsBelowMinimum(0, &zero), "umbral 0 desactiva el seguimiento")
	assert.True(t, inventory.IsBelowMinimum(4, &five))
	assert.False(t, inventory.IsBelowMinimum(5, &five), "igual al mínimo no es stock bajo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Consistencia de precios y ajustes
// ──────────────────────────────────────────────────────────────────────────────

func TestPriceDifference_Materialidad(t *testing.T) {
	inv := decimal.NewFromInt(200)

	diff, pct, material := inventory.PriceDifference(decimal.NewFromInt(220), inv)
	assert.True(t, material)
	assert.Equal(t, "20", diff.String())
	assert.Equal(t, "10", pct.String())

	_, _, material = inventory.PriceDifference(decimal.RequireFromString("200.01"), inv)
	assert.False(t, material, "0.01 exacto no supera el umbral")
}

func TestPriceSource(t *testing.T) {
	assert.Equal(t, inventory.PriceSourceNone, inventory.PriceSource(decimal.Zero))
	assert.Equal(t, inventory.PriceSourceWAC, inventory.PriceSource(decimal.NewFromInt(1)))
}

func TestAdjustment_DeltaYTipo(t *testing.T) {
	delta := inventory.AdjustmentDelta(100, 85)

	assert.Equal(t, int64(-15), delta)
	assert.Equal(t, entity.MovementTypeOUT, inventory.AdjustmentType(delta))
	assert.Equal(t, entity.MovementTypeIN, inventory.AdjustmentType(inventory.AdjustmentDelta(2, 9)))
}

func TestIdealStock_RedondeaHaciaArriba(t *testing.T) {
	assert.Equal(t, int64(15), inventory.IdealStock(10))
	assert.Equal(t, int64(11), inventory.IdealStock(7)) // 10.5 → 11
	assert.Equal(t, int64(2), inventory.IdealStock(1))
	assert.Equal(t, int64(0), inventory.IdealStock(0))
}
