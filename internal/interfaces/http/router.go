package http

import (
	"github.com/gofiber/fiber/v2"

	app "github.com/jhoicas/costing-engine/internal/application/costing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements  *app.ApplyMovementUseCase
	Queries    *app.ValuationQueryUseCase
	LandedCost *app.LandedCostUseCase
	Settings   *app.SettingsUseCase
	JWTSecret  string
}

// Router registra las rutas de la API. Todas las rutas del motor requieren
// Bearer Token: el tenant sale del claim, nunca del body.
func Router(fiberApp *fiber.App, deps RouterDeps) {
	api := fiberApp.Group("/api")
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Movimientos valorados y consultas (protegido)
	costingGroup := protected.Group("/costing")
	costingHandler := NewCostingHandler(deps.Movements, deps.Queries)
	costingGroup.Post("/movements/inbound", costingHandler.ApplyInbound)
	costingGroup.Post("/movements/outbound", costingHandler.ApplyOutbound)
	costingGroup.Post("/products/:productId/adjust-cost", costingHandler.AdjustCost)
	costingGroup.Get("/products/:productId/valuation", costingHandler.GetValuation)
	costingGroup.Get("/products/:productId/layers", costingHandler.ListLayers)
	costingGroup.Get("/products/:productId/entries", costingHandler.ListEntries)

	// Costos en destino (protegido)
	landedCosts := protected.Group("/landed-costs")
	landedCostHandler := NewLandedCostHandler(deps.LandedCost)
	landedCosts.Post("/", landedCostHandler.Create)
	landedCosts.Get("/", landedCostHandler.List)
	landedCosts.Get("/:id", landedCostHandler.GetByID)
	landedCosts.Post("/:id/lines", landedCostHandler.AddLine)
	landedCosts.Post("/:id/compute", landedCostHandler.Compute)
	landedCosts.Post("/:id/post", landedCostHandler.Post)
	landedCosts.Post("/:id/cancel", landedCostHandler.Cancel)

	// Configuración de valoración (protegido)
	settings := protected.Group("/settings")
	settingsHandler := NewSettingsHandler(deps.Settings)
	settings.Put("/valuation-method", settingsHandler.ConfigureMethod)
	settings.Get("/valuation-method", settingsHandler.GetMethod)
	settings.Put("/standard-costs/:productId", settingsHandler.SetStandardCost)
	settings.Get("/standard-costs/:productId", settingsHandler.GetStandardCost)
}
