// Package memory implementa los puertos del libro de inventario en memoria.
// Se usa con STORAGE_DRIVER=memory (desarrollo) y como doble en las pruebas.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Store datos compartidos por los repositorios en memoria.
type Store struct {
	mu        sync.RWMutex
	items     map[string]*entity.Item // tenant/ítem
	ledger    []*entity.Movement // orden de inserción
	byID      map[string]int
	recipes   map[string]map[string][]entity.RecipeLink // tenant → ítem → recetas
	recalcs   map[string][]string                       // tenant → recetas a recalcular
	locksMu   sync.Mutex
	itemLocks map[string]*sync.Mutex
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		items:     map[string]*entity.Item{},
		byID:      map[string]int{},
		recipes:   map[string]map[string][]entity.RecipeLink{},
		recalcs:   map[string][]string{},
		itemLocks: map[string]*sync.Mutex{},
	}
}

// Items repositorio de ítems sobre este store.
func (s *Store) Items() *ItemStore { return &ItemStore{s: s} }

// Movements repositorio de movimientos sobre este store.
func (s *Store) Movements() *MovementStore { return &MovementStore{s: s} }

// Recipes catálogo de recetas sobre este store.
func (s *Store) Recipes() *RecipeStore { return &RecipeStore{s: s} }

// TxRunner serializa las escrituras por ítem con un mutex por (tenant, ítem).
// No hay rollback: fn debe dejar la escritura para el final.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// TxRunner implementa inventory.TxRunner en memoria.
type TxRunner struct{ s *Store }

// Run ejecuta fn con el lock del ítem tomado.
func (r *TxRunner) Run(ctx context.Context, tenantID, itemID string, fn func(movRepo repository.MovementRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := r.s.itemLock(itemKey(tenantID, itemID))
	lock.Lock()
	defer lock.Unlock()
	return fn(r.s.Movements())
}

func (s *Store) itemLock(key string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.itemLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.itemLocks[key] = l
	}
	return l
}
