package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *inventory.LedgerService
	Reports   ReportRenderer
	JWTSecret string
	JWTIssuer string
	Logger    zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	managers := RequireRole(entity.RoleAdmin, entity.RoleManager)

	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Logger)
	reportHandler := NewReportHandler(deps.Ledger, deps.Reports, deps.Logger)

	// Movimientos
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Post("/movements/validate", inventoryHandler.ValidateEntry)
	invGroup.Post("/movements/import", managers, inventoryHandler.ImportMovements)
	invGroup.Patch("/movements/:id", inventoryHandler.AmendMovement)
	invGroup.Get("/movements/:id/can-delete", inventoryHandler.CanDeleteMovement)
	invGroup.Delete("/movements/:id", inventoryHandler.DeleteMovement)

	// Ítems
	invGroup.Post("/items", managers, inventoryHandler.CreateItem)
	invGroup.Get("/items/:id/stock", inventoryHandler.GetStock)
	invGroup.Get("/items/:id/cost", inventoryHandler.GetCost)
	invGroup.Get("/items/:id/price", inventoryHandler.GetPrice)
	invGroup.Get("/items/:id/low-stock", inventoryHandler.GetLowStock)
	invGroup.Post("/items/:id/adjust", managers, inventoryHandler.AdjustStock)
	invGroup.Post("/items/:id/price-change", managers, inventoryHandler.NotifyPriceChange)
	invGroup.Delete("/items/:id", managers, inventoryHandler.DeactivateItem)

	// Vistas agregadas y reportes
	invGroup.Get("/valuation", reportHandler.Valuation)
	invGroup.Get("/deficits", reportHandler.Deficits)
	invGroup.Get("/deficits/summary", reportHandler.DeficitSummary)
	invGroup.Get("/price-consistency", reportHandler.PriceConsistency)
	invGroup.Get("/low-stock", reportHandler.LowStockReport)
	invGroup.Get("/price-statistics", reportHandler.PriceStatistics)
	invGroup.Get("/reports/valuation.pdf", reportHandler.ValuationPDF)
	invGroup.Get("/reports/snapshot.xml", reportHandler.Snapshot)
}
