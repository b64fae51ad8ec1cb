package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

var base = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func mov(id, tenant, item, typ string, qty int64, at time.Time) *entity.Movement {
	m := &entity.Movement{ID: id, TenantID: tenant, ItemID: item, Type: typ, Quantity: qty, CreatedAt: at}
	if typ == entity.MovementTypeIN {
		p := decimal.NewFromInt(100)
		m.UnitPrice = &p
	}
	return m
}

// ──────────────────────────────────────────────────────────────────────────────
// Ítems
// ──────────────────────────────────────────────────────────────────────────────

func TestItemStore_CreateAsignaMinimoPorDefecto(t *testing.T) {
	ctx := context.Background()
	items := memory.NewStore().Items()

	item := &entity.Item{TenantID: "t1", Name: "Harina", IsActive: true}
	require.NoError(t, items.Create(ctx, item))

	got, err := items.GetByID(ctx, "t1", item.ID)
	require.NoError(t, err)
	require.NotNil(t, got.MinStock)
	assert.Equal(t, entity.DefaultMinStock, *got.MinStock)
}

func TestItemStore_OtroTenantNoLoVe(t *testing.T) {
	ctx := context.Background()
	items := memory.NewStore().Items()
	require.NoError(t, items.Create(ctx, &entity.Item{ID: "i1", TenantID: "t1", Name: "Azúcar", IsActive: true}))

	got, err := items.GetByID(ctx, "t2", "i1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestItemStore_IDUnicoPorTenant(t *testing.T) {
	ctx := context.Background()
	items := memory.NewStore().Items()
	require.NoError(t, items.Create(ctx, &entity.Item{ID: "i1", TenantID: "t1", Name: "Azúcar", IsActive: true}))
	require.NoError(t, items.Create(ctx, &entity.Item{ID: "i1", TenantID: "t2", Name: "Azúcar morena", IsActive: true}))
	assert.ErrorIs(t, items.Create(ctx, &entity.Item{ID: "i1", TenantID: "t1", Name: "Otra", IsActive: true}), domain.ErrConflict)

	got, err := items.GetByID(ctx, "t2", "i1")
	require.NoError(t, err)
	assert.Equal(t, "Azúcar morena", got.Name)
}

func TestItemStore_ListActiveExcluyeDesactivados(t *testing.T) {
	ctx := context.Background()
	items := memory.NewStore().Items()
	require.NoError(t, items.Create(ctx, &entity.Item{ID: "b", TenantID: "t1", Name: "Sal", IsActive: true}))
	require.NoError(t, items.Create(ctx, &entity.Item{ID: "a", TenantID: "t1", Name: "Aceite", IsActive: true}))
	require.NoError(t, items.Create(ctx, &entity.Item{ID: "c", TenantID: "t1", Name: "Cacao", IsActive: true}))
	require.NoError(t, items.Deactivate(ctx, "t1", "c", base))

	list, err := items.ListActive(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)

	assert.ErrorIs(t, items.Deactivate(ctx, "t1", "c", base), domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestMovementStore_ListFiltraYOrdena(t *testing.T) {
	ctx := context.Background()
	movs := memory.NewStore().Movements()
	require.NoError(t, movs.Append(ctx, mov("m2", "t1", "i1", entity.MovementTypeIN, 5, base.Add(2*time.Hour))))
	require.NoError(t, movs.Append(ctx, mov("m1", "t1", "i1", entity.MovementTypeIN, 10, base)))
	require.NoError(t, movs.Append(ctx, mov("m3", "t1", "i1", entity.MovementTypeOUT, -3, base.Add(3*time.Hour))))
	require.NoError(t, movs.Append(ctx, mov("x", "t2", "i1", entity.MovementTypeIN, 99, base)))

	all, err := movs.List(ctx, repository.MovementFilter{TenantID: "t1", ItemID: "i1"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(all))

	priced, err := movs.List(ctx, repository.MovementFilter{
		TenantID: "t1", ItemID: "i1", Type: entity.MovementTypeIN, PricedOnly: true, NewestFirst: true, Limit: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"m2"}, ids(priced))

	to := base.Add(2 * time.Hour)
	window, err := movs.List(ctx, repository.MovementFilter{TenantID: "t1", ItemID: "i1", From: &base, To: &to})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ids(window), "la ventana es inclusiva en ambos extremos")
}

func TestMovementStore_SoftDeleteYEnmienda(t *testing.T) {
	ctx := context.Background()
	movs := memory.NewStore().Movements()
	require.NoError(t, movs.Append(ctx, mov("m1", "t1", "i1", entity.MovementTypeIN, 10, base)))

	require.NoError(t, movs.UpdateDescriptive(ctx, "m1", "nota", "L-01"))
	got, err := movs.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "nota", got.Note)
	assert.Equal(t, "L-01", got.BatchNumber)
	assert.Equal(t, int64(10), got.Quantity)

	require.NoError(t, movs.SoftDelete(ctx, "m1", base.Add(time.Hour)))
	list, err := movs.List(ctx, repository.MovementFilter{TenantID: "t1"})
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, movs.SoftDelete(ctx, "m1", base), domain.ErrNotFound)
	assert.ErrorIs(t, movs.UpdateDescriptive(ctx, "m1", "x", "y"), domain.ErrNotFound)

	deleted, err := movs.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.NotNil(t, deleted.DeletedAt, "GetByID devuelve también los eliminados")
}

func TestMovementStore_DevuelveCopias(t *testing.T) {
	ctx := context.Background()
	movs := memory.NewStore().Movements()
	require.NoError(t, movs.Append(ctx, mov("m1", "t1", "i1", entity.MovementTypeIN, 10, base)))

	got, _ := movs.GetByID(ctx, "m1")
	got.Quantity = 999

	again, _ := movs.GetByID(ctx, "m1")
	assert.Equal(t, int64(10), again.Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// TxRunner
// ──────────────────────────────────────────────────────────────────────────────

func TestTxRunner_SerializaPorItem(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	runner := store.TxRunner()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = runner.Run(ctx, "t1", "i1", func(repo repository.MovementRepository) error {
				current, err := repo.List(ctx, repository.MovementFilter{TenantID: "t1", ItemID: "i1"})
				if err != nil {
					return err
				}
				// lectura-cálculo-escritura: cada escritura ve todas las anteriores
				return repo.Append(ctx, &entity.Movement{
					TenantID: "t1", ItemID: "i1", Type: entity.MovementTypeOUT,
					Quantity: -int64(len(current) + 1),
				})
			})
		}()
	}
	wg.Wait()

	all, err := store.Movements().List(ctx, repository.MovementFilter{TenantID: "t1", ItemID: "i1"})
	require.NoError(t, err)
	require.Len(t, all, 50)
	seen := map[int64]bool{}
	for _, m := range all {
		seen[m.Quantity] = true
	}
	assert.Len(t, seen, 50, "ninguna escritura leyó un estado desactualizado")
}

// ──────────────────────────────────────────────────────────────────────────────
// Recetas
// ──────────────────────────────────────────────────────────────────────────────

func TestRecipeStore_LinkReemplazaYLista(t *testing.T) {
	ctx := context.Background()
	recipes := memory.NewStore().Recipes()
	recipes.Link("t1", entity.RecipeLink{RecipeID: "r1", ItemID: "i1", IngredientCost: decimal.NewFromInt(10)})
	recipes.Link("t1", entity.RecipeLink{RecipeID: "r1", ItemID: "i1", IngredientCost: decimal.NewFromInt(12)})
	recipes.Link("t1", entity.RecipeLink{RecipeID: "r2", ItemID: "i1", IngredientCost: decimal.NewFromInt(11)})

	links, err := recipes.LinkedRecipes(ctx, "t1", "i1")
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.True(t, links[0].IngredientCost.Equal(decimal.NewFromInt(12)))

	withRecipes, err := recipes.ItemsWithRecipes(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"i1": true}, withRecipes)

	none, err := recipes.ItemsWithRecipes(ctx, "t2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func ids(movs []*entity.Movement) []string {
	out := make([]string, len(movs))
	for i, m := range movs {
		out[i] = m.ID
	}
	return out
}
