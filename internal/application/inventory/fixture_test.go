package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

const tenant = "tenant-1"

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

var errBoom = errors.New("boom")

// fixture servicio sobre el store en memoria con reloj fijo.
type fixture struct {
	svc        *inventory.LedgerService
	store      *memory.Store
	recalc     *flakyRecalc
	dispatcher *recordingDispatcher
	clock      time.Time
}

type option func(*inventory.LedgerDeps)

func withDispatcher(d inventory.PriceChangeDispatcher) option {
	return func(deps *inventory.LedgerDeps) { deps.Dispatcher = d }
}

// withLockHook ejecuta hook cada vez que se toma el lock de un ítem, antes de fn.
func withLockHook(hook func()) option {
	return func(deps *inventory.LedgerDeps) {
		deps.TxRunner = hookedRunner{inner: deps.TxRunner, hook: hook}
	}
}

func withMovements(repo repository.MovementRepository) option {
	return func(deps *inventory.LedgerDeps) { deps.Movements = repo }
}

func newFixture(t *testing.T, opts ...option) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{store: store, recalc: &flakyRecalc{fail: map[string]bool{}}, dispatcher: &recordingDispatcher{}, clock: now}
	deps := inventory.LedgerDeps{
		Items:     store.Items(),
		Movements: store.Movements(),
		Recipes:   store.Recipes(),
		Recalc:    f.recalc,
		TxRunner:  store.TxRunner(),
	}
	for _, o := range opts {
		o(&deps)
	}
	f.svc = inventory.NewLedgerService(deps, inventory.ServiceConfig{
		ReadConcurrency: 4,
		Clock:           func() time.Time { return f.clock },
	}, zerolog.Nop())
	return f
}

func (f *fixture) item(t *testing.T, id, name string, minStock *int64) {
	t.Helper()
	require.NoError(t, f.store.Items().Create(context.Background(), &entity.Item{
		ID: id, TenantID: tenant, Name: name, Unit: "kg", IsActive: true, MinStock: minStock,
	}))
}

// seed agrega un movimiento directamente al libro, daysAgo días antes de now.
func (f *fixture) seed(t *testing.T, itemID string, qty int64, unitPrice string, daysAgo int) *entity.Movement {
	t.Helper()
	m := &entity.Movement{
		TenantID:  tenant,
		ItemID:    itemID,
		Type:      entity.MovementTypeOUT,
		Quantity:  qty,
		CreatedBy: "seed",
		CreatedAt: now.Add(-time.Duration(daysAgo) * 24 * time.Hour),
	}
	if qty > 0 {
		m.Type = entity.MovementTypeIN
	}
	if unitPrice != "" {
		p := decimal.RequireFromString(unitPrice)
		m.UnitPrice = &p
	}
	require.NoError(t, f.store.Movements().Append(context.Background(), m))
	return m
}

func (f *fixture) link(recipeID, itemID, cost string) {
	f.store.Recipes().Link(tenant, entity.RecipeLink{
		RecipeID:       recipeID,
		RecipeName:     "Receta " + recipeID,
		ItemID:         itemID,
		IngredientCost: decimal.RequireFromString(cost),
	})
}

func int64Ptr(v int64) *int64 { return &v }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// flakyRecalc registra las solicitudes y falla para las recetas marcadas.
type flakyRecalc struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (r *flakyRecalc) RequestRecalculation(_ context.Context, _, recipeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recipeID)
	if r.fail[recipeID] {
		return errBoom
	}
	return nil
}

type recordingDispatcher struct {
	mu      sync.Mutex
	changes []inventory.PriceChange
}

func (d *recordingDispatcher) DispatchPriceChange(_ context.Context, c inventory.PriceChange) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.changes = append(d.changes, c)
	return nil
}

type hookedRunner struct {
	inner inventory.TxRunner
	hook  func()
}

func (r hookedRunner) Run(ctx context.Context, tenantID, itemID string, fn func(movRepo repository.MovementRepository) error) error {
	return r.inner.Run(ctx, tenantID, itemID, func(movRepo repository.MovementRepository) error {
		r.hook()
		return fn(movRepo)
	})
}

// failingMovements falla las lecturas de un ítem concreto (o de todos si failItem es vacío).
type failingMovements struct {
	repository.MovementRepository
	failItem string
}

func (r failingMovements) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	if r.failItem == "" || f.ItemID == r.failItem {
		return nil, errBoom
	}
	return r.MovementRepository.List(ctx, f)
}
