package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// ImportRow fila ya decodificada de una importación masiva. ParseErrors trae los errores de
// formato detectados al leer el archivo; si hay alguno la fila no se intenta registrar.
type ImportRow struct {
	Line        int
	Input       MovementInput
	ParseErrors []string
}

// BulkImport registra las filas en orden. Cada fila se valida de forma independiente:
// las válidas se agregan al libro y las inválidas se reportan con su número de línea.
// Solo un error de contexto corta la importación.
func (s *LedgerService) BulkImport(ctx context.Context, tenantID, userID string, rows []ImportRow) (*dto.ImportResult, error) {
	result := &dto.ImportResult{Errors: []dto.ImportRowError{}}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if len(row.ParseErrors) > 0 {
			result.Reject(row.Line, row.ParseErrors)
			continue
		}
		in := row.Input
		in.TenantID = tenantID
		in.UserID = userID
		if _, err := s.RegisterMovement(ctx, in); err != nil {
			result.Reject(row.Line, importErrorMessages(err))
			continue
		}
		result.Imported++
	}
	s.log.Info().
		Str("tenant_id", tenantID).
		Int("imported", result.Imported).
		Int("rejected", result.Rejected).
		Msg("importación de movimientos finalizada")
	return result, nil
}

func importErrorMessages(err error) []string {
	var verr *inventory.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Errors
	case errors.Is(err, domain.ErrNotFound):
		return []string{"ítem no encontrado o inactivo"}
	default:
		return []string{err.Error()}
	}
}
