package main

import (
	"context"

	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// noopRecalculator registra la solicitud sin enviarla (PostgreSQL sin Redis).
type noopRecalculator struct {
	log *logger.Logger
}

func (n noopRecalculator) RequestRecalculation(_ context.Context, tenantID, recipeID string) error {
	n.log.Warn().Str("tenant_id", tenantID).Str("recipe_id", recipeID).
		Msg("recálculo de receta no enviado: cola deshabilitada")
	return nil
}
