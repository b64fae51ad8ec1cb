package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para ítems (DIP).
type ItemRepository interface {
	// Create persiste el ítem; MinStock nil toma entity.DefaultMinStock.
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Item, error)
	ListActive(ctx context.Context, tenantID string) ([]*entity.Item, error)
	Deactivate(ctx context.Context, tenantID, id string, at time.Time) error
}
