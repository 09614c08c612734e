package http

import (
	"github.com/gofiber/fiber/v2"

	app "github.com/jhoicas/costing-engine/internal/application/costing"
	"github.com/jhoicas/costing-engine/internal/application/dto"
)

// SettingsHandler maneja la configuración de métodos y costos estándar (protegido).
type SettingsHandler struct {
	uc *app.SettingsUseCase
}

// NewSettingsHandler construye el handler.
func NewSettingsHandler(uc *app.SettingsUseCase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

// ConfigureMethod godoc
// @Summary      Fijar el método de valoración de un alcance
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConfigureMethodRequest  true  "scope_kind, scope_target (salvo tenant_default) y method"
// @Success      200   {object}  dto.ValuationSettingDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/settings/valuation-method [put]
func (h *SettingsHandler) ConfigureMethod(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ConfigureMethodRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	setting, err := h.uc.ConfigureMethod(c.Context(), tenantID, in.ScopeKind, in.ScopeTarget, in.Method)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(dto.ValuationSettingDTO{
		ID:          setting.ID,
		ScopeKind:   setting.ScopeKind,
		ScopeTarget: setting.ScopeTarget,
		Method:      setting.Method,
		UpdatedAt:   setting.UpdatedAt,
	})
}

// GetMethod godoc
// @Summary      Método efectivo de un producto
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  true   "ID del producto"
// @Param        category_id  query  string  false  "Categoría del producto"
// @Success      200  {object}  map[string]string
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/settings/valuation-method [get]
func (h *SettingsHandler) GetMethod(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	method, err := h.uc.GetMethod(c.Context(), tenantID, c.Query("product_id"), c.Query("category_id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(fiber.Map{"method": method})
}

// SetStandardCost godoc
// @Summary      Fijar el costo estándar de un producto
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string                      true  "ID del producto"
// @Param        body       body  dto.SetStandardCostRequest  true  "unit_cost_cents > 0"
// @Success      200   {object}  dto.StandardCostDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/settings/standard-costs/{productId} [put]
func (h *SettingsHandler) SetStandardCost(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SetStandardCostRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	std, err := h.uc.SetStandardCost(c.Context(), tenantID, c.Params("productId"), in.UnitCostCents)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(dto.StandardCostDTO{
		ProductID:     std.ProductID,
		UnitCostCents: std.UnitCost,
		UpdatedAt:     std.UpdatedAt,
	})
}

// GetStandardCost godoc
// @Summary      Costo estándar vigente de un producto
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StandardCostDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/settings/standard-costs/{productId} [get]
func (h *SettingsHandler) GetStandardCost(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	std, err := h.uc.GetStandardCost(c.Context(), tenantID, c.Params("productId"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(dto.StandardCostDTO{
		ProductID:     std.ProductID,
		UnitCostCents: std.UnitCost,
		UpdatedAt:     std.UpdatedAt,
	})
}
