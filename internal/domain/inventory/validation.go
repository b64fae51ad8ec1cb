package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Mensajes de validación de entradas al libro.
const (
	MsgInvalidType       = "el tipo debe ser IN u OUT"
	MsgZeroQuantity      = "la cantidad no puede ser cero"
	MsgInQuantity        = "las entradas (IN) requieren cantidad positiva"
	MsgOutQuantity       = "las salidas (OUT) requieren cantidad negativa"
	MsgInUnitPrice       = "las entradas (IN) requieren precio unitario mayor a cero"
	MsgNegativeUnitPrice = "el precio unitario no puede ser negativo"
	MsgExpiryNotInFuture = "la fecha de vencimiento debe ser posterior a la fecha actual"
)

// StockEntry datos de un movimiento antes de persistirlo.
type StockEntry struct {
	Type       string
	Quantity   int64
	UnitPrice  *decimal.Decimal
	ExpiryDate *time.Time
}

// ValidationResult resultado de validar una entrada; Errors lista todas las reglas violadas.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// ValidationError error con todas las reglas violadas. errors.Is(err, domain.ErrInvalidInput) es true.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "entrada inválida: " + strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Unwrap() error { return domain.ErrInvalidInput }

// Err devuelve nil si la entrada es válida o un *ValidationError con los errores.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

// ValidateStockEntry aplica todas las reglas sin cortocircuito; no consulta el libro.
func ValidateStockEntry(e StockEntry, now time.Time) ValidationResult {
	errs := []string{}

	if e.Type != entity.MovementTypeIN && e.Type != entity.MovementTypeOUT {
		errs = append(errs, MsgInvalidType)
	}
	if e.Quantity == 0 {
		errs = append(errs, MsgZeroQuantity)
	}
	if e.Type == entity.MovementTypeIN && e.Quantity <= 0 {
		errs = append(errs, MsgInQuantity)
	}
	if e.Type == entity.MovementTypeOUT && e.Quantity >= 0 {
		errs = append(errs, MsgOutQuantity)
	}
	if e.Type == entity.MovementTypeIN && (e.UnitPrice == nil || !e.UnitPrice.GreaterThan(decimal.Zero)) {
		errs = append(errs, MsgInUnitPrice)
	}
	if e.UnitPrice != nil && e.UnitPrice.LessThan(decimal.Zero) {
		errs = append(errs, MsgNegativeUnitPrice)
	}
	if e.ExpiryDate != nil && !e.ExpiryDate.After(now) {
		errs = append(errs, MsgExpiryNotInFuture)
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
