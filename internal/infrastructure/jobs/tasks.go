// Package jobs conecta el libro con la cola asynq: publica cambios de precio, solicita
// recálculos de recetas y procesa inventory:price_changed en el worker.
package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

const (
	// QueueDefault cola de las tareas del libro.
	QueueDefault = "default"
	// TaskPriceChanged cambio del costo promedio de un ítem; lo procesa este worker.
	TaskPriceChanged = "inventory:price_changed"
	// TaskRecipeRecalculate solicitud de recálculo de costo; la procesa el subsistema de recetas.
	TaskRecipeRecalculate = "recipe:recalculate_cost"
)

// PriceChangedPayload cuerpo de TaskPriceChanged.
type PriceChangedPayload struct {
	TenantID string          `json:"tenant_id"`
	ItemID   string          `json:"item_id"`
	NewPrice decimal.Decimal `json:"new_price"`
	OldPrice decimal.Decimal `json:"old_price"`
}

// RecipeRecalculatePayload cuerpo de TaskRecipeRecalculate.
type RecipeRecalculatePayload struct {
	TenantID string `json:"tenant_id"`
	RecipeID string `json:"recipe_id"`
}

// NewPriceChangedTask construye la tarea.
func NewPriceChangedTask(p PriceChangedPayload) (*asynq.Task, error) {
	if p.TenantID == "" || p.ItemID == "" {
		return nil, fmt.Errorf("price_changed: tenant e ítem son obligatorios")
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPriceChanged, body, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// NewRecipeRecalculateTask construye la tarea.
func NewRecipeRecalculateTask(p RecipeRecalculatePayload) (*asynq.Task, error) {
	if p.TenantID == "" || p.RecipeID == "" {
		return nil, fmt.Errorf("recalculate_cost: tenant y receta son obligatorios")
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecipeRecalculate, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
