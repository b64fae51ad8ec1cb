package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ItemStore implementa repository.ItemRepository.
type ItemStore struct{ s *Store }

// Create guarda una copia del ítem. MinStock nil toma entity.DefaultMinStock.
func (r *ItemStore) Create(_ context.Context, item *entity.Item) error {
	if item.TenantID == "" || item.Name == "" {
		return domain.ErrInvalidInput
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.MinStock == nil {
		m := entity.DefaultMinStock
		item.MinStock = &m
	}
	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := itemKey(item.TenantID, item.ID)
	if _, exists := r.s.items[key]; exists {
		return domain.ErrConflict
	}
	r.s.items[key] = cloneItem(item)
	return nil
}

// GetByID devuelve el ítem del tenant o (nil, nil).
func (r *ItemStore) GetByID(_ context.Context, tenantID, id string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	item, ok := r.s.items[itemKey(tenantID, id)]
	if !ok {
		return nil, nil
	}
	return cloneItem(item), nil
}

// ListActive ítems activos y no eliminados del tenant, ordenados por nombre.
func (r *ItemStore) ListActive(_ context.Context, tenantID string) ([]*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Item, 0)
	for _, item := range r.s.items {
		if item.TenantID == tenantID && item.Available() {
			out = append(out, cloneItem(item))
		}
	}
	sortItems(out)
	return out, nil
}

// Deactivate marca el ítem como inactivo y eliminado.
func (r *ItemStore) Deactivate(_ context.Context, tenantID, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[itemKey(tenantID, id)]
	if !ok || item.DeletedAt != nil {
		return domain.ErrNotFound
	}
	item.IsActive = false
	item.DeletedAt = &at
	item.UpdatedAt = at
	return nil
}

// itemKey los IDs de ítem son únicos solo dentro del tenant.
func itemKey(tenantID, id string) string { return tenantID + "/" + id }

func cloneItem(i *entity.Item) *entity.Item {
	c := *i
	if i.MinStock != nil {
		m := *i.MinStock
		c.MinStock = &m
	}
	if i.DeletedAt != nil {
		d := *i.DeletedAt
		c.DeletedAt = &d
	}
	return &c
}
