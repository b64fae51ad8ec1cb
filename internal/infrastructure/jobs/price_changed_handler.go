package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

// PriceChangeNotifier lo que el handler necesita del servicio del libro.
type PriceChangeNotifier interface {
	NotifyPriceChange(ctx context.Context, tenantID, itemID string, newPrice, oldPrice decimal.Decimal) (dto.PriceChangeResult, error)
}

// PriceChangedHandler procesa TaskPriceChanged.
type PriceChangedHandler struct {
	notifier PriceChangeNotifier
	log      zerolog.Logger
}

// NewPriceChangedHandler construye el handler.
func NewPriceChangedHandler(notifier PriceChangeNotifier, log zerolog.Logger) *PriceChangedHandler {
	return &PriceChangedHandler{notifier: notifier, log: log}
}

// Handle notifica a las recetas del ítem. Un payload inválido no se reintenta; si no se pudo
// listar las recetas, asynq reintenta la tarea.
func (h *PriceChangedHandler) Handle(ctx context.Context, t *asynq.Task) error {
	var p PriceChangedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.log.Error().Err(err).Str("task", t.Type()).Msg("payload inválido")
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	res, err := h.notifier.NotifyPriceChange(ctx, p.TenantID, p.ItemID, p.NewPrice, p.OldPrice)
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		h.log.Warn().
			Str("tenant_id", p.TenantID).
			Str("item_id", p.ItemID).
			Int("failed", res.Failed).
			Int("recipes", res.Recipes).
			Msg("recálculo parcial de recetas")
	}
	return nil
}
