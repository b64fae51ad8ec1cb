package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/csvimport"
)

const dateLayout = "2006-01-02"

// InventoryHandler maneja movimientos e ítems del libro de inventario (protegido).
type InventoryHandler struct {
	ledger *inventory.LedgerService
	log    zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerService, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, log: log}
}

// ── Movimientos ───────────────────────────────────────────────────────────────

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  IN con cantidad positiva y precio unitario > 0; OUT con cantidad negativa.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "item_id, type, quantity, unit_price (entradas)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	userID := GetUserID(c)
	if tenantID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mov, err := h.ledger.RegisterMovementFromRequest(c.Context(), tenantID, userID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// ValidateEntry godoc
// @Summary      Validar una entrada sin registrarla
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateEntryRequest  true  "type, quantity, unit_price, expiry_date"
// @Success      200   {object}  inventory.ValidationResult
// @Router       /api/inventory/movements/validate [post]
func (h *InventoryHandler) ValidateEntry(c *fiber.Ctx) error {
	var in dto.ValidateEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res := h.ledger.ValidateStockEntry(domaininv.StockEntry{
		Type:       in.Type,
		Quantity:   in.Quantity,
		UnitPrice:  in.UnitPrice,
		ExpiryDate: in.ExpiryDate,
	})
	return c.JSON(res)
}

// AmendMovement godoc
// @Summary      Modificar nota o lote de un movimiento
// @Description  Tipo y cantidad son inmutables (422 si se envían).
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del movimiento"
// @Param        body  body  dto.AmendMovementRequest  true  "note, batch_number"
// @Success      200   {object}  dto.MovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [patch]
func (h *InventoryHandler) AmendMovement(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.AmendMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mov, err := h.ledger.AmendMovement(c.Context(), tenantID, c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toMovementResponse(mov))
}

// CanDeleteMovement godoc
// @Summary      Consultar si el usuario puede eliminar un movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  inventory.DeletePermission
// @Router       /api/inventory/movements/{id}/can-delete [get]
func (h *InventoryHandler) CanDeleteMovement(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	perm, err := h.ledger.CanDeleteInventoryEntry(c.Context(), tenantID, c.Params("id"), GetUserID(c), GetRole(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(perm)
}

// DeleteMovement godoc
// @Summary      Eliminar un movimiento (soft delete)
// @Description  Solo movimientos de hasta 7 días. ADMIN y MANAGER eliminan cualquiera; STAFF solo los propios.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  inventory.DeletePermission
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [delete]
func (h *InventoryHandler) DeleteMovement(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	perm, err := h.ledger.DeleteInventoryEntry(c.Context(), tenantID, c.Params("id"), GetUserID(c), GetRole(c))
	if errors.Is(err, domain.ErrDeleteNotAllowed) {
		status := fiber.StatusForbidden
		if perm.Reason == domaininv.ReasonNotFound {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: "DELETE_NOT_ALLOWED", Message: perm.Reason})
	}
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(perm)
}

// ImportMovements godoc
// @Summary      Importación masiva de movimientos desde CSV
// @Description  Columnas item_id,type,quantity,unit_price,note,batch,expiry. Cada fila se valida
//
//	por separado; las válidas se registran y las inválidas se reportan con su línea.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file     formData  file    true   "Archivo CSV"
// @Param        charset  formData  string  false  "auto | utf-8 | iso-8859-1 | windows-1252"
// @Success      200  {object}  dto.ImportResult
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/import [post]
func (h *InventoryHandler) ImportMovements(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	userID := GetUserID(c)
	if tenantID == "" || userID == "" {
		return unauthorized(c)
	}
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "el campo file es requerido"})
	}
	f, err := header.Open()
	if err != nil {
		return writeError(c, h.log, err)
	}
	defer f.Close()

	rows, err := csvimport.Parse(f, c.FormValue("charset"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	result, err := h.ledger.BulkImport(c.Context(), tenantID, userID, rows)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(result)
}

// ── Ítems ─────────────────────────────────────────────────────────────────────

// CreateItem godoc
// @Summary      Crear ítem de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "id, name, category, unit, min_stock"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/items [post]
func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	item, err := h.ledger.CreateItem(c.Context(), tenantID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toItemResponse(item))
}

// GetStock godoc
// @Summary      Stock actual de un ítem
// @Description  Suma de movimientos; start/end (YYYY-MM-DD o RFC3339) limitan la ventana, inclusiva.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del ítem"
// @Param        start  query  string  false  "Inicio de la ventana"
// @Param        end    query  string  false  "Fin de la ventana"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	start, err := parseDateQuery(c, "start", false)
	if err != nil {
		return writeError(c, h.log, err)
	}
	end, err := parseDateQuery(c, "end", true)
	if err != nil {
		return writeError(c, h.log, err)
	}
	itemID := c.Params("id")
	stock, err := h.ledger.CurrentStock(c.Context(), tenantID, itemID, start, end)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.StockResponse{ItemID: itemID, CurrentStock: stock, StartDate: start, EndDate: end})
}

// GetCost godoc
// @Summary      Costo promedio ponderado de un ítem
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.CostResponse
// @Router       /api/inventory/items/{id}/cost [get]
func (h *InventoryHandler) GetCost(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	itemID := c.Params("id")
	wac, err := h.ledger.WeightedAverageCost(c.Context(), tenantID, itemID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.CostResponse{ItemID: itemID, WeightedAverageCost: wac})
}

// GetPrice godoc
// @Summary      Precio de inventario con historial
// @Description  Nunca falla: ante error devuelve price_source NONE con historial vacío.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.InventoryPriceResponse
// @Router       /api/inventory/items/{id}/price [get]
func (h *InventoryHandler) GetPrice(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	return c.JSON(h.ledger.InventoryPrice(c.Context(), tenantID, c.Params("id")))
}

// GetLowStock godoc
// @Summary      Indica si el ítem está bajo su stock mínimo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.LowStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/low-stock [get]
func (h *InventoryHandler) GetLowStock(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	itemID := c.Params("id")
	low, err := h.ledger.IsLowStock(c.Context(), tenantID, itemID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.LowStockResponse{ItemID: itemID, IsLowStock: low})
}

// AdjustStock godoc
// @Summary      Ajustar el stock a una cantidad contada
// @Description  Registra un movimiento correctivo por la diferencia. 409 si no hay diferencia.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del ítem"
// @Param        body  body  dto.AdjustStockRequest  true  "new_quantity, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/adjust [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	userID := GetUserID(c)
	if tenantID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mov, err := h.ledger.AdjustStock(c.Context(), inventory.AdjustStockInput{
		TenantID:    tenantID,
		ItemID:      c.Params("id"),
		UserID:      userID,
		NewQuantity: in.NewQuantity,
		Reason:      in.Reason,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// NotifyPriceChange godoc
// @Summary      Notificar a las recetas un cambio de precio del ítem
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del ítem"
// @Param        body  body  dto.PriceChangeRequest  true  "new_price, old_price"
// @Success      200   {object}  dto.PriceChangeResult
// @Router       /api/inventory/items/{id}/price-change [post]
func (h *InventoryHandler) NotifyPriceChange(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.PriceChangeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.ledger.NotifyPriceChange(c.Context(), tenantID, c.Params("id"), in.NewPrice, in.OldPrice)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// DeactivateItem godoc
// @Summary      Desactivar un ítem sin stock
// @Tags         inventory
// @Security     Bearer
// @Param        id   path  string  true  "ID del ítem"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id} [delete]
func (h *InventoryHandler) DeactivateItem(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	if err := h.ledger.DeactivateItem(c.Context(), tenantID, c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseDateQuery lee una fecha opcional del query. Con endOfDay una fecha sin hora cubre el día completo.
func parseDateQuery(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	if endOfDay {
		d = d.Add(24*time.Hour - time.Nanosecond)
	}
	return &d, nil
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		ItemID:      m.ItemID,
		Type:        m.Type,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Note:        m.Note,
		BatchNumber: m.BatchNumber,
		ExpiryDate:  m.ExpiryDate,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

func toItemResponse(i *entity.Item) dto.ItemResponse {
	return dto.ItemResponse{
		ID:        i.ID,
		Name:      i.Name,
		Category:  i.Category,
		Unit:      i.Unit,
		MinStock:  i.MinStock,
		IsActive:  i.IsActive,
		CreatedAt: i.CreatedAt,
	}
}
