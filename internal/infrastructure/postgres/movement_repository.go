package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, tenant_id, item_id, type, quantity, unit_price, note, batch_number,
	expiry_date, created_by, created_at, deleted_at`

// MovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append persiste un movimiento.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO inventory_movements (id, tenant_id, item_id, type, quantity, unit_price, note,
			batch_number, expiry_date, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	var unitPrice decimal.NullDecimal
	if m.UnitPrice != nil {
		unitPrice = decimal.NewNullDecimal(*m.UnitPrice)
	}
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TenantID, m.ItemID, m.Type, m.Quantity, unitPrice, m.Note,
		m.BatchNumber, m.ExpiryDate, nullIfEmpty(m.CreatedBy), m.CreatedAt,
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrConflict
	case isForeignKeyViolation(err):
		return domain.ErrNotFound
	default:
		return fmt.Errorf("append movement: %w", err)
	}
}

// GetByID obtiene un movimiento por ID, incluso eliminado. (nil, nil) si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// List movimientos vigentes según el filtro, ordenados por created_at (y orden de inserción).
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	query, args := buildMovementQuery(f)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Movement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// UpdateDescriptive modifica nota y lote de un movimiento vigente.
func (r *MovementRepo) UpdateDescriptive(ctx context.Context, id, note, batchNumber string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE inventory_movements SET note = $2, batch_number = $3 WHERE id = $1 AND deleted_at IS NULL`,
		id, note, batchNumber)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marca el movimiento como eliminado.
func (r *MovementRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE inventory_movements SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// buildMovementQuery arma el SELECT con placeholders posicionales.
func buildMovementQuery(f repository.MovementFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + movementColumns + ` FROM inventory_movements WHERE tenant_id = $1 AND deleted_at IS NULL`)
	args := []any{f.TenantID}
	add := func(cond string, v any) {
		args = append(args, v)
		fmt.Fprintf(&sb, " AND "+cond, len(args))
	}
	if f.ItemID != "" {
		add("item_id = $%d", f.ItemID)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	if f.PricedOnly {
		sb.WriteString(" AND unit_price IS NOT NULL")
	}
	if f.NewestFirst {
		sb.WriteString(" ORDER BY created_at DESC, seq DESC")
	} else {
		sb.WriteString(" ORDER BY created_at, seq")
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	return sb.String(), args
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var (
		m         entity.Movement
		unitPrice decimal.NullDecimal
		createdBy *string
	)
	err := row.Scan(&m.ID, &m.TenantID, &m.ItemID, &m.Type, &m.Quantity, &unitPrice, &m.Note,
		&m.BatchNumber, &m.ExpiryDate, &createdBy, &m.CreatedAt, &m.DeletedAt)
	if err != nil {
		return nil, err
	}
	if unitPrice.Valid {
		p := unitPrice.Decimal
		m.UnitPrice = &p
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}
