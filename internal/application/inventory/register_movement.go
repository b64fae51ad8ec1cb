package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// MovementInput entrada para registrar un movimiento en el libro.
// Quantity con signo; UnitPrice obligatorio en IN.
type MovementInput struct {
	TenantID    string
	UserID      string
	ItemID      string
	Type        string
	Quantity    int64
	UnitPrice   *decimal.Decimal
	Note        string
	BatchNumber string
	ExpiryDate  *time.Time
}

// ValidateStockEntry valida una entrada antes de persistirla (sin consultar el libro).
func (s *LedgerService) ValidateStockEntry(entry inventory.StockEntry) inventory.ValidationResult {
	return inventory.ValidateStockEntry(entry, s.now())
}

// RegisterMovement valida la entrada, verifica que el ítem exista y esté activo en el tenant
// y agrega el movimiento bajo el lock del ítem. Si una entrada cambia el costo promedio se
// publica el cambio de precio.
func (s *LedgerService) RegisterMovement(ctx context.Context, input MovementInput) (*entity.Movement, error) {
	res := s.ValidateStockEntry(inventory.StockEntry{
		Type:       input.Type,
		Quantity:   input.Quantity,
		UnitPrice:  input.UnitPrice,
		ExpiryDate: input.ExpiryDate,
	})
	if err := res.Err(); err != nil {
		return nil, err
	}
	if err := s.requireAvailableItem(ctx, input.TenantID, input.ItemID); err != nil {
		return nil, err
	}

	return s.appendMovement(ctx, input.TenantID, input.ItemID, func(_ []*entity.Movement) (*entity.Movement, error) {
		return &entity.Movement{
			Type:        input.Type,
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice,
			Note:        input.Note,
			BatchNumber: input.BatchNumber,
			ExpiryDate:  input.ExpiryDate,
			CreatedBy:   input.UserID,
		}, nil
	})
}

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RegisterMovement.
func (s *LedgerService) RegisterMovementFromRequest(ctx context.Context, tenantID, userID string, in dto.RegisterMovementRequest) (*entity.Movement, error) {
	return s.RegisterMovement(ctx, MovementInput{
		TenantID:    tenantID,
		UserID:      userID,
		ItemID:      in.ItemID,
		Type:        in.Type,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Note:        in.Note,
		BatchNumber: in.BatchNumber,
		ExpiryDate:  in.ExpiryDate,
	})
}

// AmendMovement modifica solo la nota y el lote de un movimiento.
// Intentar cambiar tipo o cantidad devuelve domain.ErrImmutableField.
func (s *LedgerService) AmendMovement(ctx context.Context, tenantID, movementID string, in dto.AmendMovementRequest) (*entity.Movement, error) {
	if in.Type != nil || in.Quantity != nil {
		return nil, domain.ErrImmutableField
	}
	mov, err := s.movementOfTenant(ctx, tenantID, movementID)
	if err != nil {
		return nil, err
	}
	if in.Note != nil {
		mov.Note = *in.Note
	}
	if in.BatchNumber != nil {
		mov.BatchNumber = *in.BatchNumber
	}
	if err := s.movements.UpdateDescriptive(ctx, mov.ID, mov.Note, mov.BatchNumber); err != nil {
		return nil, err
	}
	return mov, nil
}

// CanDeleteInventoryEntry aplica la política de eliminación. Un movimiento de otro tenant
// se trata como inexistente.
func (s *LedgerService) CanDeleteInventoryEntry(ctx context.Context, tenantID, entryID, userID, role string) (inventory.DeletePermission, error) {
	entry, err := s.tenantMovement(ctx, s.movements, tenantID, entryID)
	if err != nil {
		return inventory.DeletePermission{}, err
	}
	return inventory.CanDelete(entry, userID, role, s.now()), nil
}

// DeleteInventoryEntry elimina (soft delete) un movimiento si la política lo permite.
// La política se evalúa y la eliminación se aplica bajo el lock del ítem.
// Devuelve el permiso evaluado y domain.ErrDeleteNotAllowed cuando se rechaza.
func (s *LedgerService) DeleteInventoryEntry(ctx context.Context, tenantID, entryID, userID, role string) (inventory.DeletePermission, error) {
	located, err := s.tenantMovement(ctx, s.movements, tenantID, entryID)
	if err != nil {
		return inventory.DeletePermission{}, err
	}
	if located == nil {
		return inventory.CanDelete(nil, userID, role, s.now()), domain.ErrDeleteNotAllowed
	}

	var (
		perm   inventory.DeletePermission
		change *PriceChange
	)
	err = s.txRunner.Run(ctx, tenantID, located.ItemID, func(movRepo repository.MovementRepository) error {
		entry, err := s.tenantMovement(ctx, movRepo, tenantID, entryID)
		if err != nil {
			return err
		}
		perm = inventory.CanDelete(entry, userID, role, s.now())
		if !perm.Allowed {
			return domain.ErrDeleteNotAllowed
		}
		current, err := movRepo.List(ctx, repository.MovementFilter{TenantID: tenantID, ItemID: entry.ItemID})
		if err != nil {
			return fmt.Errorf("listar movimientos: %w", err)
		}
		if err := movRepo.SoftDelete(ctx, entry.ID, s.now()); err != nil {
			return err
		}
		if entry.IsPricedIN() {
			remaining := make([]*entity.Movement, 0, len(current))
			for _, m := range current {
				if m.ID != entry.ID {
					remaining = append(remaining, m)
				}
			}
			change = &PriceChange{
				TenantID: tenantID,
				ItemID:   entry.ItemID,
				OldPrice: inventory.WeightedAverageCost(current),
				NewPrice: inventory.WeightedAverageCost(remaining),
			}
		}
		return nil
	})
	if err != nil {
		return perm, err
	}
	if change != nil {
		s.publishPriceChange(ctx, *change)
	}
	s.log.Info().Str("tenant_id", tenantID).Str("movement_id", entryID).Str("user_id", userID).
		Msg("movimiento eliminado")
	return perm, nil
}

// tenantMovement lee el movimiento; uno de otro tenant se devuelve como nil.
func (s *LedgerService) tenantMovement(ctx context.Context, repo repository.MovementRepository, tenantID, entryID string) (*entity.Movement, error) {
	entry, err := repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("obtener movimiento: %w", err)
	}
	if entry != nil && entry.TenantID != tenantID {
		return nil, nil
	}
	return entry, nil
}

// DeactivateItem desactiva un ítem cuyo stock actual es 0; con stock pendiente devuelve ErrConflict.
func (s *LedgerService) DeactivateItem(ctx context.Context, tenantID, itemID string) error {
	if err := s.requireAvailableItem(ctx, tenantID, itemID); err != nil {
		return err
	}
	return s.txRunner.Run(ctx, tenantID, itemID, func(movRepo repository.MovementRepository) error {
		current, err := movRepo.List(ctx, repository.MovementFilter{TenantID: tenantID, ItemID: itemID})
		if err != nil {
			return fmt.Errorf("listar movimientos: %w", err)
		}
		if inventory.SumQuantities(current) != 0 {
			return domain.ErrConflict
		}
		return s.items.Deactivate(ctx, tenantID, itemID, s.now())
	})
}

// appendMovement agrega un movimiento bajo el lock del ítem. build recibe los movimientos
// vigentes del ítem (lectura dentro del lock) y devuelve el movimiento a insertar.
func (s *LedgerService) appendMovement(
	ctx context.Context,
	tenantID, itemID string,
	build func(current []*entity.Movement) (*entity.Movement, error),
) (*entity.Movement, error) {
	var created *entity.Movement
	var change *PriceChange

	err := s.txRunner.Run(ctx, tenantID, itemID, func(movRepo repository.MovementRepository) error {
		current, err := movRepo.List(ctx, repository.MovementFilter{TenantID: tenantID, ItemID: itemID})
		if err != nil {
			return fmt.Errorf("listar movimientos: %w", err)
		}
		mov, err := build(current)
		if err != nil {
			return err
		}
		mov.TenantID = tenantID
		mov.ItemID = itemID
		if mov.CreatedAt.IsZero() {
			mov.CreatedAt = s.now()
		}
		if err := movRepo.Append(ctx, mov); err != nil {
			return err
		}
		if mov.IsPricedIN() {
			withNew := append(current[:len(current):len(current)], mov)
			change = &PriceChange{
				TenantID: tenantID,
				ItemID:   itemID,
				OldPrice: inventory.WeightedAverageCost(current),
				NewPrice: inventory.WeightedAverageCost(withNew),
			}
		}
		created = mov
		return nil
	})
	if err != nil {
		return nil, err
	}
	if change != nil {
		s.publishPriceChange(ctx, *change)
	}
	return created, nil
}

func (s *LedgerService) requireAvailableItem(ctx context.Context, tenantID, itemID string) error {
	if tenantID == "" || itemID == "" {
		return domain.ErrInvalidInput
	}
	item, err := s.items.GetByID(ctx, tenantID, itemID)
	if err != nil {
		return fmt.Errorf("obtener ítem: %w", err)
	}
	if !item.Available() {
		return domain.ErrNotFound
	}
	return nil
}

func (s *LedgerService) movementOfTenant(ctx context.Context, tenantID, movementID string) (*entity.Movement, error) {
	mov, err := s.movements.GetByID(ctx, movementID)
	if err != nil {
		return nil, fmt.Errorf("obtener movimiento: %w", err)
	}
	if mov == nil || mov.TenantID != tenantID || mov.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	return mov, nil
}
