package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/export"
)

// ReportRenderer genera el PDF del reporte de valoración.
type ReportRenderer interface {
	Generate(ctx context.Context, report *dto.ValuationReport, digest string) ([]byte, error)
}

// ReportHandler vistas agregadas del libro y reportes exportables (protegido).
type ReportHandler struct {
	ledger *inventory.LedgerService
	pdf    ReportRenderer
	log    zerolog.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(ledger *inventory.LedgerService, pdf ReportRenderer, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{ledger: ledger, pdf: pdf, log: log}
}

// Valuation godoc
// @Summary      Valoración del inventario
// @Description  Ítems activos con stock positivo valorados a costo promedio ponderado.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ValuationResponse
// @Router       /api/inventory/valuation [get]
func (h *ReportHandler) Valuation(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	resp, err := h.ledger.InventoryValuation(c.Context(), tenantID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(resp)
}

// Deficits godoc
// @Summary      Ítems con stock negativo
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockDeficitDTO
// @Router       /api/inventory/deficits [get]
func (h *ReportHandler) Deficits(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	list, err := h.ledger.StockDeficits(c.Context(), tenantID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total":    len(list),
		"deficits": list,
	})
}

// DeficitSummary godoc
// @Summary      Resumen de déficits (críticos > 10 unidades)
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DeficitSummaryResponse
// @Router       /api/inventory/deficits/summary [get]
func (h *ReportHandler) DeficitSummary(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	resp, err := h.ledger.DeficitSummary(c.Context(), tenantID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(resp)
}

// PriceConsistency godoc
// @Summary      Recetas con costo distinto al de inventario
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PriceConsistencyDTO
// @Router       /api/inventory/price-consistency [get]
func (h *ReportHandler) PriceConsistency(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	list, err := h.ledger.ValidatePriceConsistency(c.Context(), tenantID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total":        len(list),
		"inconsistent": list,
	})
}

// LowStockReport godoc
// @Summary      Lista de reposición
// @Description  Ítems bajo su mínimo con cantidad sugerida, ordenados por faltante relativo.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LowStockItemDTO
// @Router       /api/inventory/low-stock [get]
func (h *ReportHandler) LowStockReport(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	list, err := h.ledger.LowStockReport(c.Context(), tenantID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// PriceStatistics godoc
// @Summary      Estadísticas de precios de entrada por ítem
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PriceStatisticsDTO
// @Router       /api/inventory/price-statistics [get]
func (h *ReportHandler) PriceStatistics(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	list, err := h.ledger.PriceStatistics(c.Context(), tenantID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(list)
}

// ValuationPDF godoc
// @Summary      Reporte de valoración en PDF
// @Description  Incluye el digest del snapshot XML del mismo corte.
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/inventory/reports/valuation.pdf [get]
func (h *ReportHandler) ValuationPDF(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	report, err := h.ledger.BuildValuationReport(c.Context(), tenantID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	snap, err := export.BuildSnapshot(report)
	if err != nil {
		return writeError(c, h.log, err)
	}
	pdfBytes, err := h.pdf.Generate(c.Context(), report, snap.Digest)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="valoracion-%s.pdf"`, report.GeneratedAt.Format("20060102-150405")))
	c.Set("X-Snapshot-Digest", snap.Digest)
	return c.Send(pdfBytes)
}

// Snapshot godoc
// @Summary      Snapshot XML de valoración y déficits
// @Description  El digest SHA-256 de la forma canónica va en el elemento Digest y en X-Snapshot-Digest.
// @Tags         reports
// @Security     Bearer
// @Produce      application/xml
// @Success      200  {file}  binary
// @Router       /api/inventory/reports/snapshot.xml [get]
func (h *ReportHandler) Snapshot(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	report, err := h.ledger.BuildValuationReport(c.Context(), tenantID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	snap, err := export.BuildSnapshot(report)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set("X-Snapshot-Digest", snap.Digest)
	return c.Send(snap.XML)
}
