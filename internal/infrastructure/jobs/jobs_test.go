package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func (f *fakeEnqueuer) Close() error { return nil }

type fakeNotifier struct {
	got    PriceChangedPayload
	result dto.PriceChangeResult
	err    error
}

func (f *fakeNotifier) NotifyPriceChange(_ context.Context, tenantID, itemID string, newPrice, oldPrice decimal.Decimal) (dto.PriceChangeResult, error) {
	f.got = PriceChangedPayload{TenantID: tenantID, ItemID: itemID, NewPrice: newPrice, OldPrice: oldPrice}
	return f.result, f.err
}

// ──────────────────────────────────────────────────────────────────────────────
// Client
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_DispatchPriceChange(t *testing.T) {
	enq := &fakeEnqueuer{}
	c := &Client{client: enq}

	err := c.DispatchPriceChange(context.Background(), inventory.PriceChange{
		TenantID: "t1", ItemID: "i1", NewPrice: decimal.RequireFromString("1066.67"), OldPrice: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TaskPriceChanged, enq.tasks[0].Type())

	var p PriceChangedPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &p))
	assert.Equal(t, "i1", p.ItemID)
	assert.True(t, p.NewPrice.Equal(decimal.RequireFromString("1066.67")))
}

func TestClient_RequestRecalculation(t *testing.T) {
	enq := &fakeEnqueuer{}
	c := &Client{client: enq}

	require.NoError(t, c.RequestRecalculation(context.Background(), "t1", "r1"))
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TaskRecipeRecalculate, enq.tasks[0].Type())
	assert.JSONEq(t, `{"tenant_id":"t1","recipe_id":"r1"}`, string(enq.tasks[0].Payload()))

	assert.Error(t, c.RequestRecalculation(context.Background(), "t1", ""))
}

func TestClient_ErrorDeCola(t *testing.T) {
	c := &Client{client: &fakeEnqueuer{err: errors.New("redis caído")}}

	err := c.RequestRecalculation(context.Background(), "t1", "r1")
	assert.ErrorContains(t, err, TaskRecipeRecalculate)
}

// ──────────────────────────────────────────────────────────────────────────────
// Handler
// ──────────────────────────────────────────────────────────────────────────────

func TestPriceChangedHandler_Notifica(t *testing.T) {
	n := &fakeNotifier{result: dto.PriceChangeResult{Recipes: 2, Requested: 1, Failed: 1}}
	h := NewPriceChangedHandler(n, zerolog.Nop())
	task, err := NewPriceChangedTask(PriceChangedPayload{
		TenantID: "t1", ItemID: "i1", NewPrice: decimal.NewFromInt(12), OldPrice: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), task))
	assert.Equal(t, "t1", n.got.TenantID)
	assert.True(t, n.got.OldPrice.Equal(decimal.NewFromInt(10)))
}

func TestPriceChangedHandler_PayloadInvalidoNoSeReintenta(t *testing.T) {
	h := NewPriceChangedHandler(&fakeNotifier{}, zerolog.Nop())

	err := h.Handle(context.Background(), asynq.NewTask(TaskPriceChanged, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestPriceChangedHandler_ErrorSeReintenta(t *testing.T) {
	boom := errors.New("recetas no disponibles")
	h := NewPriceChangedHandler(&fakeNotifier{err: boom}, zerolog.Nop())
	task, _ := NewPriceChangedTask(PriceChangedPayload{TenantID: "t1", ItemID: "i1"})

	err := h.Handle(context.Background(), task)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestNewPriceChangedTask_RequiereIDs(t *testing.T) {
	_, err := NewPriceChangedTask(PriceChangedPayload{ItemID: "i1"})
	assert.Error(t, err)
}
