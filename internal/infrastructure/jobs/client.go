package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

var (
	_ inventory.PriceChangeDispatcher  = (*Client)(nil)
	_ inventory.RecipeCostRecalculator = (*Client)(nil)
)

// enqueuer lo que Client usa de *asynq.Client.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Client encola tareas del libro.
type Client struct {
	client enqueuer
}

// NewClient construye el cliente sobre Redis.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// DispatchPriceChange encola inventory:price_changed.
func (c *Client) DispatchPriceChange(ctx context.Context, change inventory.PriceChange) error {
	task, err := NewPriceChangedTask(PriceChangedPayload(change))
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("encolar %s: %w", TaskPriceChanged, err)
	}
	return nil
}

// RequestRecalculation encola recipe:recalculate_cost para el subsistema de recetas.
func (c *Client) RequestRecalculation(ctx context.Context, tenantID, recipeID string) error {
	task, err := NewRecipeRecalculateTask(RecipeRecalculatePayload{TenantID: tenantID, RecipeID: recipeID})
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("encolar %s: %w", TaskRecipeRecalculate, err)
	}
	return nil
}

// Close libera la conexión a Redis.
func (c *Client) Close() error {
	return c.client.Close()
}
