package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CreateItem da de alta un ítem activo en el tenant. Sin MinStock toma entity.DefaultMinStock;
// MinStock 0 desactiva el seguimiento de stock bajo.
func (s *LedgerService) CreateItem(ctx context.Context, tenantID string, in dto.CreateItemRequest) (*entity.Item, error) {
	name := strings.TrimSpace(in.Name)
	if tenantID == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.MinStock != nil && *in.MinStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	item := &entity.Item{
		ID:       strings.TrimSpace(in.ID),
		TenantID: tenantID,
		Name:     name,
		Category: strings.TrimSpace(in.Category),
		Unit:     strings.TrimSpace(in.Unit),
		MinStock: in.MinStock,
		IsActive: true,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	s.log.Info().Str("tenant_id", tenantID).Str("item_id", item.ID).Msg("ítem creado")
	return item, nil
}
