package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, tenant_id, name, category, unit, min_stock, is_active, deleted_at, created_at, updated_at`

// ItemRepo implementación sobre PostgreSQL.
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador.
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste el ítem; MinStock nil toma entity.DefaultMinStock.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
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

	query := `
		INSERT INTO inventory_items (id, tenant_id, name, category, unit, min_stock, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.TenantID, item.Name, item.Category, item.Unit, item.MinStock,
		item.IsActive, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// GetByID obtiene el ítem del tenant. (nil, nil) si no existe.
func (r *ItemRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE tenant_id = $1 AND id = $2`
	item, err := scanItem(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// ListActive ítems activos y no eliminados del tenant, por nombre.
func (r *ItemRepo) ListActive(ctx context.Context, tenantID string) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items
		WHERE tenant_id = $1 AND is_active AND deleted_at IS NULL
		ORDER BY lower(name), id`
	rows, err := r.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// Deactivate marca el ítem como inactivo y eliminado.
func (r *ItemRepo) Deactivate(ctx context.Context, tenantID, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE inventory_items SET is_active = FALSE, deleted_at = $3, updated_at = $3
		WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL`, tenantID, id, at)
	if err != nil {
		return fmt.Errorf("deactivate item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var item entity.Item
	err := row.Scan(&item.ID, &item.TenantID, &item.Name, &item.Category, &item.Unit, &item.MinStock,
		&item.IsActive, &item.DeletedAt, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
