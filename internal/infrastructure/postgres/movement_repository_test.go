package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

func TestBuildMovementQuery_SoloTenant(t *testing.T) {
	query, args := buildMovementQuery(repository.MovementFilter{TenantID: "t1"})

	assert.Contains(t, query, "WHERE tenant_id = $1 AND deleted_at IS NULL")
	assert.Contains(t, query, "ORDER BY created_at, seq")
	assert.NotContains(t, query, "LIMIT")
	assert.Equal(t, []any{"t1"}, args)
}

func TestBuildMovementQuery_FiltroCompleto(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	query, args := buildMovementQuery(repository.MovementFilter{
		TenantID:    "t1",
		ItemID:      "i1",
		Type:        entity.MovementTypeIN,
		From:        &from,
		To:          &to,
		PricedOnly:  true,
		NewestFirst: true,
		Limit:       10,
	})

	assert.Contains(t, query, "AND item_id = $2")
	assert.Contains(t, query, "AND type = $3")
	assert.Contains(t, query, "AND created_at >= $4")
	assert.Contains(t, query, "AND created_at <= $5")
	assert.Contains(t, query, "AND unit_price IS NOT NULL")
	assert.Contains(t, query, "ORDER BY created_at DESC, seq DESC LIMIT $6")
	assert.Equal(t, []any{"t1", "i1", "IN", from, to, 10}, args)
}

func TestItemLockKey(t *testing.T) {
	assert.Equal(t, "stock-ledger:t1:i1", itemLockKey("t1", "i1"))
	assert.NotEqual(t, itemLockKey("t1", "i1"), itemLockKey("t2", "i1"))
}
