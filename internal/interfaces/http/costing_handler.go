package http

import (
	"github.com/gofiber/fiber/v2"

	app "github.com/jhoicas/costing-engine/internal/application/costing"
	"github.com/jhoicas/costing-engine/internal/application/dto"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
)

// CostingHandler maneja las peticiones HTTP del motor de costeo (protegido).
type CostingHandler struct {
	movements *app.ApplyMovementUseCase
	queries   *app.ValuationQueryUseCase
}

// NewCostingHandler construye el handler.
func NewCostingHandler(movements *app.ApplyMovementUseCase, queries *app.ValuationQueryUseCase) *CostingHandler {
	return &CostingHandler{movements: movements, queries: queries}
}

func toMovementInput(tenantID string, in dto.ApplyMovementRequest) app.MovementInput {
	return app.MovementInput{
		TenantID:       tenantID,
		ProductID:      in.ProductID,
		LocationID:     in.LocationID,
		CategoryID:     in.CategoryID,
		Quantity:       in.Quantity,
		UnitCost:       in.UnitCostCents,
		MovementRef:    in.MovementRef,
		IdempotencyKey: in.IdempotencyKey,
	}
}

func toEntryDTOs(entries []*entity.ValuationEntry) []dto.ValuationEntryDTO {
	out := make([]dto.ValuationEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ValuationEntryDTO{
			ID:             e.ID,
			MovementRef:    e.MovementRef,
			ProductID:      e.ProductID,
			LocationID:     e.LocationID,
			Quantity:       e.Quantity,
			UnitCostCents:  e.UnitCost,
			TotalCostCents: e.TotalCost,
			Method:         e.Method,
			CreatedAt:      e.CreatedAt,
		})
	}
	return out
}

// ApplyInbound godoc
// @Summary      Valorar una entrada de stock
// @Tags         costing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementRequest  true  "product_id, quantity, unit_cost_cents, movement_ref, idempotency_key"
// @Success      201   {array}   dto.ValuationEntryDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/costing/movements/inbound [post]
func (h *CostingHandler) ApplyInbound(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entries, err := h.movements.ApplyInbound(c.Context(), toMovementInput(tenantID, in))
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toEntryDTOs(entries))
}

// ApplyOutbound godoc
// @Summary      Valorar una salida de stock
// @Tags         costing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementRequest  true  "product_id, quantity, movement_ref, idempotency_key"
// @Success      201   {array}   dto.ValuationEntryDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/costing/movements/outbound [post]
func (h *CostingHandler) ApplyOutbound(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entries, err := h.movements.ApplyOutbound(c.Context(), toMovementInput(tenantID, in))
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toEntryDTOs(entries))
}

// AdjustCost godoc
// @Summary      Ajustar manualmente el valor de un producto
// @Tags         costing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string                 true  "ID del producto"
// @Param        body       body  dto.AdjustCostRequest  true  "amount_cents, reference, idempotency_key"
// @Success      201  {array}   dto.ValuationEntryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/costing/products/{productId}/adjust-cost [post]
func (h *CostingHandler) AdjustCost(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustCostRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entries, err := h.movements.AdjustCost(c.Context(), app.CostAdjustmentInput{
		TenantID:       tenantID,
		ProductID:      c.Params("productId"),
		LocationID:     in.LocationID,
		CategoryID:     in.CategoryID,
		Amount:         in.AmountCents,
		Reference:      in.Reference,
		IdempotencyKey: in.IdempotencyKey,
	})
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toEntryDTOs(entries))
}

// GetValuation godoc
// @Summary      Posición valorada de un producto
// @Tags         costing
// @Security     Bearer
// @Produce      json
// @Param        productId    path   string  true   "ID del producto"
// @Param        location_id  query  string  false  "Ubicación (vacío = global)"
// @Param        category_id  query  string  false  "Categoría para resolver el método"
// @Success      200  {object}  dto.ProductValuationResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/costing/products/{productId}/valuation [get]
func (h *CostingHandler) GetValuation(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	v, err := h.queries.GetValuation(c.Context(), tenantID, c.Params("productId"), c.Query("location_id"), c.Query("category_id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(dto.ProductValuationResponse{
		ProductID:       v.ProductID,
		Method:          v.Method,
		OnHandQty:       v.OnHandQty,
		TotalValueCents: v.TotalValue,
		UnitCostCents:   v.UnitCost,
	})
}

// ListLayers godoc
// @Summary      Capas de costo de un producto
// @Tags         costing
// @Security     Bearer
// @Produce      json
// @Param        productId    path   string  true   "ID del producto"
// @Param        location_id  query  string  false  "Ubicación (vacío = global)"
// @Success      200  {array}  dto.ValuationLayerDTO
// @Router       /api/costing/products/{productId}/layers [get]
func (h *CostingHandler) ListLayers(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	layers, err := h.queries.ListLayers(c.Context(), tenantID, c.Params("productId"), c.Query("location_id"))
	if err != nil {
		return mapError(c, err)
	}
	out := make([]dto.ValuationLayerDTO, 0, len(layers))
	for _, l := range layers {
		out = append(out, dto.ValuationLayerDTO{
			ID:            l.ID,
			ProductID:     l.ProductID,
			LocationID:    l.LocationID,
			MovementRef:   l.MovementRef,
			ReceivedQty:   l.ReceivedQty,
			RemainingQty:  l.RemainingQty,
			UnitCostCents: l.UnitCost,
			ReceivedAt:    l.ReceivedAt,
		})
	}
	return c.JSON(out)
}

// ListEntries godoc
// @Summary      Libro de valoración de un producto
// @Tags         costing
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        limit      query  int     false  "Máximo de asientos (default 50)"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.ValuationEntryDTO
// @Router       /api/costing/products/{productId}/entries [get]
func (h *CostingHandler) ListEntries(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	entries, err := h.queries.ListEntries(c.Context(), tenantID, c.Params("productId"), page.Limit, page.Offset)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(toEntryDTOs(entries))
}
