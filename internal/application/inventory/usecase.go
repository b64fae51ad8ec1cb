package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const defaultReadConcurrency = 8

// LedgerDeps colaboradores del servicio del libro.
type LedgerDeps struct {
	Items      repository.ItemRepository
	Movements  repository.MovementRepository
	Recipes    repository.RecipeCatalog
	Recalc     RecipeCostRecalculator
	TxRunner   TxRunner
	Dispatcher PriceChangeDispatcher // opcional
}

// ServiceConfig opciones del servicio.
type ServiceConfig struct {
	ReadConcurrency int              // reducciones por ítem en paralelo (0 = 8)
	Clock           func() time.Time // nil = time.Now
}

// LedgerService motor del libro de inventario: todas las vistas (stock, costo, valoración,
// déficit, consistencia de precios) se recalculan desde los movimientos en cada lectura.
// No guarda estado mutable; puede usarse concurrentemente.
type LedgerService struct {
	items      repository.ItemRepository
	movements  repository.MovementRepository
	recipes    repository.RecipeCatalog
	recalc     RecipeCostRecalculator
	txRunner   TxRunner
	dispatcher PriceChangeDispatcher
	log        zerolog.Logger
	now        func() time.Time
	readLimit  int
}

// NewLedgerService construye el servicio.
func NewLedgerService(deps LedgerDeps, cfg ServiceConfig, log zerolog.Logger) *LedgerService {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	limit := cfg.ReadConcurrency
	if limit <= 0 {
		limit = defaultReadConcurrency
	}
	return &LedgerService{
		items:      deps.Items,
		movements:  deps.Movements,
		recipes:    deps.Recipes,
		recalc:     deps.Recalc,
		txRunner:   deps.TxRunner,
		dispatcher: deps.Dispatcher,
		log:        log.With().Str("component", "ledger").Logger(),
		now:        clock,
		readLimit:  limit,
	}
}

// CurrentStock suma las cantidades con signo de los movimientos del ítem, opcionalmente
// en la ventana [start, end] (inclusiva, cualquier extremo puede omitirse).
// Ítem o tenant inexistente devuelve 0.
func (s *LedgerService) CurrentStock(ctx context.Context, tenantID, itemID string, start, end *time.Time) (int64, error) {
	if tenantID == "" || itemID == "" {
		return 0, nil
	}
	movs, err := s.movements.List(ctx, repository.MovementFilter{
		TenantID: tenantID,
		ItemID:   itemID,
		From:     start,
		To:       end,
	})
	if err != nil {
		return 0, fmt.Errorf("stock actual: %w", err)
	}
	return inventory.SumQuantities(movs), nil
}

// WeightedAverageCost costo promedio ponderado de las entradas IN con precio. 0 si no hay.
func (s *LedgerService) WeightedAverageCost(ctx context.Context, tenantID, itemID string) (decimal.Decimal, error) {
	if tenantID == "" || itemID == "" {
		return decimal.Zero, nil
	}
	movs, err := s.pricedEntries(ctx, tenantID, itemID, false)
	if err != nil {
		return decimal.Zero, fmt.Errorf("costo promedio: %w", err)
	}
	return inventory.WeightedAverageCost(movs), nil
}

// InventoryValuation valora cada ítem activo con stock positivo a su costo promedio.
func (s *LedgerService) InventoryValuation(ctx context.Context, tenantID string) (*dto.ValuationResponse, error) {
	items, err := s.items.ListActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listar ítems: %w", err)
	}

	rows := make([]*dto.ValuationItemDTO, len(items))
	err = s.forEachItem(ctx, items, func(ctx context.Context, i int, item *entity.Item) error {
		stock, err := s.CurrentStock(ctx, tenantID, item.ID, nil, nil)
		if err != nil {
			return err
		}
		if stock <= 0 {
			return nil
		}
		wac, err := s.WeightedAverageCost(ctx, tenantID, item.ID)
		if err != nil {
			return err
		}
		rows[i] = &dto.ValuationItemDTO{
			ItemID:       item.ID,
			ItemName:     item.Name,
			Category:     item.Category,
			Unit:         item.Unit,
			CurrentStock: stock,
			UnitCost:     wac,
			TotalValue:   inventory.Valuation(stock, wac),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.ValuationResponse{TotalValue: decimal.Zero, Items: []dto.ValuationItemDTO{}}
	for _, r := range rows {
		if r == nil {
			continue
		}
		resp.TotalValue = resp.TotalValue.Add(r.TotalValue)
		resp.Items = append(resp.Items, *r)
	}
	return resp, nil
}

// InventoryPrice precio de inventario (WAC) con historial de las 10 entradas más recientes.
// Nunca devuelve error: ante cualquier falla degrada a PriceSource NONE con historial vacío,
// porque alimenta la sincronización de precios con recetas.
func (s *LedgerService) InventoryPrice(ctx context.Context, tenantID, itemID string) (resp dto.InventoryPriceResponse) {
	fallback := dto.InventoryPriceResponse{
		ItemID:       itemID,
		Price:        decimal.Zero,
		PriceSource:  inventory.PriceSourceNone,
		LastUpdated:  s.now(),
		PriceHistory: []dto.PriceHistoryEntry{},
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("tenant_id", tenantID).Str("item_id", itemID).
				Msg("precio de inventario: falla interna, se devuelve NONE")
			resp = fallback
		}
	}()

	if tenantID == "" || itemID == "" {
		return fallback
	}
	movs, err := s.pricedEntries(ctx, tenantID, itemID, true)
	if err != nil {
		s.log.Warn().Err(err).Str("tenant_id", tenantID).Str("item_id", itemID).
			Msg("precio de inventario: no se pudieron leer entradas, se devuelve NONE")
		return fallback
	}

	wac := inventory.WeightedAverageCost(movs)
	resp = fallback
	resp.Price = wac
	resp.PriceSource = inventory.PriceSource(wac)
	if len(movs) > 0 {
		resp.LastUpdated = movs[0].CreatedAt
	}
	for i, m := range movs {
		if i == inventory.PriceHistoryLimit {
			break
		}
		resp.PriceHistory = append(resp.PriceHistory, dto.PriceHistoryEntry{
			Date:      m.CreatedAt,
			UnitPrice: *m.UnitPrice,
			Quantity:  m.Quantity,
		})
	}
	return resp
}

// IsLowStock indica si el stock está por debajo del mínimo del ítem.
// Un mínimo ausente o 0 desactiva el seguimiento (false).
func (s *LedgerService) IsLowStock(ctx context.Context, tenantID, itemID string) (bool, error) {
	item, err := s.items.GetByID(ctx, tenantID, itemID)
	if err != nil {
		return false, fmt.Errorf("obtener ítem: %w", err)
	}
	if item == nil {
		return false, domain.ErrNotFound
	}
	if item.MinStock == nil || *item.MinStock == 0 {
		return false, nil
	}
	stock, err := s.CurrentStock(ctx, tenantID, itemID, nil, nil)
	if err != nil {
		return false, err
	}
	return inventory.IsBelowMinimum(stock, item.MinStock), nil
}

// pricedEntries entradas IN con precio del ítem (no eliminadas).
func (s *LedgerService) pricedEntries(ctx context.Context, tenantID, itemID string, newestFirst bool) ([]*entity.Movement, error) {
	return s.movements.List(ctx, repository.MovementFilter{
		TenantID:    tenantID,
		ItemID:      itemID,
		Type:        entity.MovementTypeIN,
		PricedOnly:  true,
		NewestFirst: newestFirst,
	})
}

// forEachItem ejecuta fn por ítem con concurrencia acotada; fn escribe en su índice.
func (s *LedgerService) forEachItem(ctx context.Context, items []*entity.Item, fn func(ctx context.Context, i int, item *entity.Item) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.readLimit)
	for i, item := range items {
		g.Go(func() error { return fn(gctx, i, item) })
	}
	return g.Wait()
}
