package entity

import "time"

// Métodos de valoración soportados (variante cerrada: el resolver
// despacha exhaustivamente sobre estos cuatro valores).
const (
	MethodStandard        = "standard"
	MethodWeightedAverage = "weighted_average"
	MethodFifo            = "fifo"
	MethodLifo            = "lifo"
)

// Alcances de configuración de método. Precedencia: product > category > tenant_default.
const (
	ScopeTenantDefault = "tenant_default"
	ScopeCategory      = "category"
	ScopeProduct       = "product"
)

// ValidMethod indica si el string corresponde a un método soportado.
func ValidMethod(m string) bool {
	switch m {
	case MethodStandard, MethodWeightedAverage, MethodFifo, MethodLifo:
		return true
	}
	return false
}

// ValuationSetting método de costeo efectivo para un alcance.
// Solo hay una configuración activa por (tenant, alcance, objetivo): las
// escrituras posteriores la reemplazan, nunca se borra.
type ValuationSetting struct {
	ID          string
	TenantID    string
	ScopeKind   string // tenant_default, category, product
	ScopeTarget string // vacío para tenant_default; category_id o product_id en los demás
	Method      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
