package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementFilter filtro de consulta del libro. TenantID es obligatorio y los movimientos
// eliminados se excluyen siempre.
type MovementFilter struct {
	TenantID    string
	ItemID      string     // vacío = todos los ítems del tenant
	Type        string     // vacío = IN y OUT
	From        *time.Time // inclusivo sobre created_at
	To          *time.Time // inclusivo sobre created_at
	PricedOnly  bool       // solo movimientos con precio unitario
	NewestFirst bool
	Limit       int // 0 = sin límite
}

// MovementRepository define el puerto de persistencia del libro de movimientos (append-only).
type MovementRepository interface {
	Append(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
	// UpdateDescriptive modifica solo nota y lote; cantidad y tipo son inmutables.
	UpdateDescriptive(ctx context.Context, id, note, batchNumber string) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
}
