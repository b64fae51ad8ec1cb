package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestCreateItem_UmbralPorDefecto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.svc.CreateItem(ctx, tenant, dto.CreateItemRequest{ID: "azucar", Name: "  Azúcar ", Unit: "kg"})
	require.NoError(t, err)
	assert.Equal(t, "Azúcar", item.Name)
	require.NotNil(t, item.MinStock)
	assert.Equal(t, entity.DefaultMinStock, *item.MinStock)

	stored, err := f.store.Items().GetByID(ctx, tenant, "azucar")
	require.NoError(t, err)
	assert.True(t, stored.Available())
}

func TestCreateItem_UmbralCeroDesactivaSeguimiento(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateItem(ctx, tenant, dto.CreateItemRequest{ID: "sal", Name: "Sal", MinStock: int64Ptr(0)})
	require.NoError(t, err)

	low, err := f.svc.IsLowStock(ctx, tenant, "sal")
	require.NoError(t, err)
	assert.False(t, low)
}

func TestCreateItem_DatosInvalidos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateItem(ctx, tenant, dto.CreateItemRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.CreateItem(ctx, tenant, dto.CreateItemRequest{Name: "Sal", MinStock: int64Ptr(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.CreateItem(ctx, tenant, dto.CreateItemRequest{ID: "sal", Name: "Sal"})
	require.NoError(t, err)
	_, err = f.svc.CreateItem(ctx, tenant, dto.CreateItemRequest{ID: "sal", Name: "Sal"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateItem_MismoIDEnOtroTenant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateItem(ctx, "tenant-a", dto.CreateItemRequest{ID: "harina", Name: "Harina"})
	require.NoError(t, err)
	_, err = f.svc.CreateItem(ctx, "tenant-b", dto.CreateItemRequest{ID: "harina", Name: "Harina integral", MinStock: int64Ptr(3)})
	require.NoError(t, err)

	a, err := f.store.Items().GetByID(ctx, "tenant-a", "harina")
	require.NoError(t, err)
	b, err := f.store.Items().GetByID(ctx, "tenant-b", "harina")
	require.NoError(t, err)
	assert.Equal(t, "Harina", a.Name)
	assert.Equal(t, "Harina integral", b.Name)

	require.NoError(t, f.svc.DeactivateItem(ctx, "tenant-b", "harina"))
	a, err = f.store.Items().GetByID(ctx, "tenant-a", "harina")
	require.NoError(t, err)
	assert.True(t, a.Available())
}
