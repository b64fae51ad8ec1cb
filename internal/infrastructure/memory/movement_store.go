package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// MovementStore implementa repository.MovementRepository (append-only).
type MovementStore struct{ s *Store }

// Append agrega una copia del movimiento; asigna ID y fecha si faltan.
func (r *MovementStore) Append(_ context.Context, m *entity.Movement) error {
	if m.TenantID == "" || m.ItemID == "" {
		return domain.ErrInvalidInput
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.byID[m.ID]; exists {
		return domain.ErrConflict
	}
	r.s.byID[m.ID] = len(r.s.ledger)
	r.s.ledger = append(r.s.ledger, cloneMovement(m))
	return nil
}

// GetByID devuelve el movimiento (incluso eliminado) o (nil, nil).
func (r *MovementStore) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	idx, ok := r.s.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneMovement(r.s.ledger[idx]), nil
}

// List movimientos vigentes del tenant según el filtro, por fecha de creación.
func (r *MovementStore) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	out := make([]*entity.Movement, 0)
	for _, m := range r.s.ledger {
		if matches(m, f) {
			out = append(out, cloneMovement(m))
		}
	}
	r.s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if f.NewestFirst {
		slices.Reverse(out)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// UpdateDescriptive modifica nota y lote.
func (r *MovementStore) UpdateDescriptive(_ context.Context, id, note, batchNumber string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, err := r.s.liveMovement(id)
	if err != nil {
		return err
	}
	m.Note = note
	m.BatchNumber = batchNumber
	return nil
}

// SoftDelete marca el movimiento como eliminado.
func (r *MovementStore) SoftDelete(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, err := r.s.liveMovement(id)
	if err != nil {
		return err
	}
	m.DeletedAt = &at
	return nil
}

func (s *Store) liveMovement(id string) (*entity.Movement, error) {
	idx, ok := s.byID[id]
	if !ok || s.ledger[idx].DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	return s.ledger[idx], nil
}

func matches(m *entity.Movement, f repository.MovementFilter) bool {
	switch {
	case m.DeletedAt != nil, m.TenantID != f.TenantID:
		return false
	case f.ItemID != "" && m.ItemID != f.ItemID:
		return false
	case f.Type != "" && m.Type != f.Type:
		return false
	case f.From != nil && m.CreatedAt.Before(*f.From):
		return false
	case f.To != nil && m.CreatedAt.After(*f.To):
		return false
	case f.PricedOnly && m.UnitPrice == nil:
		return false
	}
	return true
}

func cloneMovement(m *entity.Movement) *entity.Movement {
	c := *m
	if m.UnitPrice != nil {
		p := *m.UnitPrice
		c.UnitPrice = &p
	}
	if m.ExpiryDate != nil {
		e := *m.ExpiryDate
		c.ExpiryDate = &e
	}
	if m.DeletedAt != nil {
		d := *m.DeletedAt
		c.DeletedAt = &d
	}
	return &c
}

func sortItems(items []*entity.Item) {
	sort.Slice(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].ID < items[j].ID
	})
}
