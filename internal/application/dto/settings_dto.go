package dto

import "time"

// ConfigureMethodRequest body para PUT /api/settings/valuation-method.
type ConfigureMethodRequest struct {
	ScopeKind   string `json:"scope_kind"` // tenant_default|category|product
	ScopeTarget string `json:"scope_target,omitempty"`
	Method      string `json:"method"` // standard|weighted_average|fifo|lifo
}

// ValuationSettingDTO configuración vigente de un alcance.
type ValuationSettingDTO struct {
	ID          string    `json:"id"`
	ScopeKind   string    `json:"scope_kind"`
	ScopeTarget string    `json:"scope_target,omitempty"`
	Method      string    `json:"method"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SetStandardCostRequest body para PUT /api/settings/standard-costs/:productId.
type SetStandardCostRequest struct {
	UnitCostCents int64 `json:"unit_cost_cents"`
}

// StandardCostDTO costo estándar vigente de un producto.
type StandardCostDTO struct {
	ProductID     string    `json:"product_id"`
	UnitCostCents int64     `json:"unit_cost_cents"`
	UpdatedAt     time.Time `json:"updated_at"`
}
