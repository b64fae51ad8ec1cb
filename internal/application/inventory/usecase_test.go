package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Stock y costo
// ──────────────────────────────────────────────────────────────────────────────

func TestCurrentStock_SumaYVentana(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.item(t, "harina", "Harina", nil)
	f.seed(t, "harina", 100, "1000", 5)
	f.seed(t, "harina", -30, "", 3)
	f.seed(t, "harina", 50, "1200", 1)

	stock, err := f.svc.CurrentStock(ctx, tenant, "harina", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(120), stock)

	start := now.Add(-4 * 24 * time.Hour)
	windowed, err := f.svc.CurrentStock(ctx, tenant, "harina", &start, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(20), windowed)
}

func TestCurrentStock_ItemOTenantInexistenteEsCero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.item(t, "harina", "Harina", nil)
	f.seed(t, "harina", 10, "5", 1)

	for _, tc := range []struct{ tenantID, itemID string }{
		{"otro", "harina"}, {tenant, "nada"}, {"", "harina"}, {tenant, ""},
	} {
		stock, err := f.svc.CurrentStock(ctx, tc.tenantID, tc.itemID, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), stock)
	}
}

func TestWeightedAverageCost_Ejemplo(t *testing.T) {
	f := newFixture(t)
	f.item(t, "harina", "Harina", nil)
	f.seed(t, "harina", 100, "1000", 3)
	f.seed(t, "harina", 50, "1200", 2)
	f.seed(t, "harina", -40, "1500", 1) // las salidas no cuentan aunque tengan precio

	wac, err := f.svc.WeightedAverageCost(context.Background(), tenant, "harina")
	require.NoError(t, err)
	assert.Equal(t, "1066.67", wac.StringFixed(2))
}

// ──────────────────────────────────────────────────────────────────────────────
// Valoración
// ──────────────────────────────────────────────────────────────────────────────

func TestInventoryValuation_ExcluyeStockNoPositivo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.item(t, "a", "Aceite", nil)
	f.item(t, "b", "Azúcar", nil)
	f.item(t, "c", "Cacao", nil)
	f.seed(t, "a", 10, "5", 2)   // 10 × 5 = 50
	f.seed(t, "b", 4, "10", 2)   // 4 × 10 = 40
	f.seed(t, "b", -4, "", 1)    // stock 0
	f.seed(t, "c", -3, "", 1)    // déficit
	f.seed(t, "c", 1, "1000", 1) // stock -2, excluido

	val, err := f.svc.InventoryValuation(ctx, tenant)
	require.NoError(t, err)
	require.Len(t, val.Items, 1)
	assert.Equal(t, "a", val.Items[0].ItemID)
	assert.True(t, val.TotalValue.Equal(decimal.NewFromInt(50)))
}

func TestInventoryValuation_TenantVacio(t *testing.T) {
	f := newFixture(t)
	val, err := f.svc.InventoryValuation(context.Background(), tenant)
	require.NoError(t, err)
	assert.NotNil(t, val.Items)
	assert.True(t, val.TotalValue.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Precio de inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestInventoryPrice_SinEntradasEsNone(t *testing.T) {
	f := newFixture(t)
	f.item(t, "harina", "Harina", nil)

	resp := f.svc.InventoryPrice(context.Background(), tenant, "harina")
	assert.Equal(t, domaininv.PriceSourceNone, resp.PriceSource)
	assert.True(t, resp.Price.IsZero())
	assert.Empty(t, resp.PriceHistory)
	assert.Equal(t, now, resp.LastUpdated)
}

func TestInventoryPrice_HistorialLimitadoYOrdenado(t *testing.T) {
	f := newFixture(t)
	f.item(t, "harina", "Harina", nil)
	for i := 12; i >= 1; i-- {
		f.seed(t, "harina", 10, "100", i)
	}
	latest := f.seed(t, "harina", 10, "200", 0)

	resp := f.svc.InventoryPrice(context.Background(), tenant, "harina")
	assert.Equal(t, domaininv.PriceSourceWAC, resp.PriceSource)
	require.Len(t, resp.PriceHistory, domaininv.PriceHistoryLimit)
	assert.True(t, resp.PriceHistory[0].UnitPrice.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, latest.CreatedAt, resp.LastUpdated)
	for i := 1; i < len(resp.PriceHistory); i++ {
		assert.False(t, resp.PriceHistory[i].Date.After(resp.PriceHistory[i-1].Date))
	}
}

func TestInventoryPrice_FallaDeLecturaDegradaANone(t *testing.T) {
	store := newFixture(t).store
	f := newFixture(t, withMovements(failingMovements{MovementRepository: store.Movements()}))

	resp := f.svc.InventoryPrice(context.Background(), tenant, "harina")
	assert.Equal(t, domaininv.PriceSourceNone, resp.PriceSource)
	assert.NotNil(t, resp.PriceHistory)
}

func TestInventoryPrice_OtroTenantEsNone(t *testing.T) {
	f := newFixture(t)
	f.item(t, "harina", "Harina", nil)
	f.seed(t, "harina", 10, "100", 1)

	resp := f.svc.InventoryPrice(context.Background(), "otro", "harina")
	assert.Equal(t, domaininv.PriceSourceNone, resp.PriceSource)
}

// ──────────────────────────────────────────────────────────────────────────────
// Déficits y stock bajo
// ──────────────────────────────────────────────────────────────────────────────

func TestDeficitSummary_ClasificaYValora(t *testing.T) {
	f := newFixture(t)
	f.item(t, "a", "Aceite", nil)
	f.item(t, "b", "Azúcar", nil)
	f.item(t, "c", "Cacao", nil)
	f.seed(t, "a", 5, "2", 3)
	f.seed(t, "a", -15, "", 1) // -10 → moderado
	f.seed(t, "b", 10, "3", 3)
	f.seed(t, "b", -21, "", 1) // -11 → crítico
	f.seed(t, "c", 1, "1", 1)  // sin déficit

	deficits, err := f.svc.StockDeficits(context.Background(), tenant)
	require.NoError(t, err)
	require.Len(t, deficits, 2)

	summary, err := f.svc.DeficitSummary(context.Background(), tenant)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalDeficitItems)
	require.Len(t, summary.CriticalDeficits, 1)
	require.Len(t, summary.ModerateDeficits, 1)
	assert.Equal(t, "b", summary.CriticalDeficits[0].ItemID)
	assert.Equal(t, int64(11), summary.CriticalDeficits[0].DeficitAmount)
	assert.Equal(t, "a", summary.ModerateDeficits[0].ItemID)
	// 10 × 2 + 11 × 3
	assert.True(t, summary.TotalDeficitValue.Equal(decimal.NewFromInt(53)), summary.TotalDeficitValue.String())
}

func TestIsLowStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.item(t, "defecto", "Con mínimo por defecto", nil)
	f.item(t, "cero", "Sin seguimiento", int64Ptr(0))
	f.item(t, "justo", "En el mínimo", int64Ptr(5))
	f.seed(t, "defecto", 9, "1", 1)
	f.seed(t, "cero", -3, "", 1)
	f.seed(t, "justo", 5, "1", 1)

	low, err := f.svc.IsLowStock(ctx, tenant, "defecto")
	require.NoError(t, err)
	assert.True(t, low, "9 < 10 (mínimo asignado al crear)")

	low, err = f.svc.IsLowStock(ctx, tenant, "cero")
	require.NoError(t, err)
	assert.False(t, low, "mínimo 0 desactiva el seguimiento")

	low, err = f.svc.IsLowStock(ctx, tenant, "justo")
	require.NoError(t, err)
	assert.False(t, low, "igual al mínimo no es stock bajo")

	_, err = f.svc.IsLowStock(ctx, tenant, "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas repetidas
// ──────────────────────────────────────────────────────────────────────────────

func TestLecturas_SinEscriturasDevuelvenLoMismo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.item(t, "harina", "Harina", nil)
	f.item(t, "azucar", "Azúcar", nil)
	f.item(t, "sal", "Sal", nil)
	f.seed(t, "harina", 40, "100", 4)
	f.seed(t, "harina", 10, "150", 2)
	f.seed(t, "azucar", 5, "80", 3)
	f.seed(t, "azucar", -20, "", 1)
	f.seed(t, "sal", -3, "", 1)
	f.link("pan", "harina", "90")
	f.link("torta", "azucar", "80")

	valuation1, err := f.svc.InventoryValuation(ctx, tenant)
	require.NoError(t, err)
	summary1, err := f.svc.DeficitSummary(ctx, tenant)
	require.NoError(t, err)
	consistency1, err := f.svc.ValidatePriceConsistency(ctx, tenant)
	require.NoError(t, err)
	price1 := f.svc.InventoryPrice(ctx, tenant, "harina")

	valuation2, err := f.svc.InventoryValuation(ctx, tenant)
	require.NoError(t, err)
	summary2, err := f.svc.DeficitSummary(ctx, tenant)
	require.NoError(t, err)
	consistency2, err := f.svc.ValidatePriceConsistency(ctx, tenant)
	require.NoError(t, err)
	price2 := f.svc.InventoryPrice(ctx, tenant, "harina")

	assert.Equal(t, valuation1, valuation2)
	assert.Equal(t, summary1, summary2)
	assert.Equal(t, consistency1, consistency2)
	assert.Equal(t, price1, price2)

	require.Len(t, consistency1, 1)
	assert.Equal(t, "harina", consistency1[0].ItemID)
	assert.Equal(t, 2, summary1.TotalDeficitItems)
}
