package http

import (
	"github.com/gofiber/fiber/v2"

	app "github.com/jhoicas/costing-engine/internal/application/costing"
	"github.com/jhoicas/costing-engine/internal/application/dto"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
)

// LandedCostHandler maneja las peticiones HTTP de costos en destino (protegido).
type LandedCostHandler struct {
	uc *app.LandedCostUseCase
}

// NewLandedCostHandler construye el handler.
func NewLandedCostHandler(uc *app.LandedCostUseCase) *LandedCostHandler {
	return &LandedCostHandler{uc: uc}
}

func toLandedCostDTO(lc *entity.LandedCost) dto.LandedCostDTO {
	return dto.LandedCostDTO{
		ID:         lc.ID,
		Status:     lc.Status,
		ReceiptRef: lc.ReceiptRef,
		PostedAt:   lc.PostedAt,
		CreatedAt:  lc.CreatedAt,
		UpdatedAt:  lc.UpdatedAt,
	}
}

func toDetailResponse(d *app.LandedCostDetail) dto.LandedCostDetailResponse {
	resp := dto.LandedCostDetailResponse{
		Doc:         toLandedCostDTO(d.Doc),
		Lines:       make([]dto.LandedCostLineDTO, 0, len(d.Lines)),
		Allocations: make([]dto.LandedCostAllocationDTO, 0, len(d.Allocations)),
	}
	for _, l := range d.Lines {
		resp.Lines = append(resp.Lines, dto.LandedCostLineDTO{
			ID:               l.ID,
			CostType:         l.CostType,
			AmountCents:      l.Amount,
			AllocationMethod: l.AllocationMethod,
			CreatedAt:        l.CreatedAt,
		})
	}
	for _, a := range d.Allocations {
		resp.Allocations = append(resp.Allocations, dto.LandedCostAllocationDTO{
			ID:          a.ID,
			LineID:      a.LineID,
			TargetType:  a.TargetType,
			TargetID:    a.TargetID,
			AmountCents: a.Amount,
		})
	}
	return resp
}

// Create godoc
// @Summary      Crear documento de costos en destino
// @Tags         landed-costs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLandedCostRequest  true  "receipt_ref de la recepción vinculada"
// @Success      201   {object}  dto.LandedCostDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/landed-costs [post]
func (h *LandedCostHandler) Create(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateLandedCostRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	doc, err := h.uc.Create(c.Context(), tenantID, in.ReceiptRef)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLandedCostDTO(doc))
}

// AddLine godoc
// @Summary      Agregar una línea de cargo al borrador
// @Tags         landed-costs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID del documento"
// @Param        body  body  dto.AddLandedCostLineRequest  true  "cost_type y amount_cents"
// @Success      201   {object}  dto.LandedCostLineDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/landed-costs/{id}/lines [post]
func (h *LandedCostHandler) AddLine(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AddLandedCostLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	line, err := h.uc.AddLine(c.Context(), tenantID, c.Params("id"), in.CostType, in.AmountCents)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.LandedCostLineDTO{
		ID:               line.ID,
		CostType:         line.CostType,
		AmountCents:      line.Amount,
		AllocationMethod: line.AllocationMethod,
		CreatedAt:        line.CreatedAt,
	})
}

// Compute godoc
// @Summary      Computar las asignaciones del borrador
// @Tags         landed-costs
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del documento"
// @Success      200  {object}  dto.LandedCostDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/landed-costs/{id}/compute [post]
func (h *LandedCostHandler) Compute(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	detail, err := h.uc.Compute(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(toDetailResponse(detail))
}

// Post godoc
// @Summary      Contabilizar el documento
// @Tags         landed-costs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true   "ID del documento"
// @Param        body  body  dto.PostLandedCostRequest  false  "idempotency_key opcional"
// @Success      200   {object}  dto.LandedCostDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/landed-costs/{id}/post [post]
func (h *LandedCostHandler) Post(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.PostLandedCostRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	doc, err := h.uc.Post(c.Context(), tenantID, c.Params("id"), in.IdempotencyKey)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(toLandedCostDTO(doc))
}

// Cancel godoc
// @Summary      Cancelar un borrador
// @Tags         landed-costs
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del documento"
// @Success      204  "sin contenido"
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/landed-costs/{id}/cancel [post]
func (h *LandedCostHandler) Cancel(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.Cancel(c.Context(), tenantID, c.Params("id")); err != nil {
		return mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetByID godoc
// @Summary      Detalle del documento (líneas y asignaciones)
// @Tags         landed-costs
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del documento"
// @Success      200  {object}  dto.LandedCostDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/landed-costs/{id} [get]
func (h *LandedCostHandler) GetByID(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	detail, err := h.uc.Get(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(toDetailResponse(detail))
}

// List godoc
// @Summary      Listar documentos del tenant
// @Tags         landed-costs
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "draft|posted|cancelled"
// @Param        limit   query  int     false  "Máximo de documentos (default 50)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.LandedCostDTO
// @Router       /api/landed-costs [get]
func (h *LandedCostHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	docs, err := h.uc.List(c.Context(), tenantID, c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return mapError(c, err)
	}
	out := make([]dto.LandedCostDTO, 0, len(docs))
	for _, lc := range docs {
		out = append(out, toLandedCostDTO(lc))
	}
	return c.JSON(out)
}
