package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrNoAdjustmentNeeded = errors.New("el ajuste no cambia el stock actual")
	ErrDeleteNotAllowed   = errors.New("eliminación no permitida")
	ErrImmutableField     = errors.New("cantidad y tipo de un movimiento son inmutables")
)
