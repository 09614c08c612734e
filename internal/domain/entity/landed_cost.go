package entity

import "time"

// Estados del documento de costos en destino.
// Draft → Posted (terminal) o Draft → Cancelled (terminal).
const (
	LandedCostDraft     = "draft"
	LandedCostPosted    = "posted"
	LandedCostCancelled = "cancelled"
)

// Tipos de costo reconocidos para las líneas.
const (
	CostTypeFreight   = "freight"
	CostTypeCustoms   = "customs"
	CostTypeHandling  = "handling"
	CostTypeInsurance = "insurance"
	CostTypeOther     = "other"
)

// ValidCostType indica si el string corresponde a un tipo de costo reconocido.
func ValidCostType(t string) bool {
	switch t {
	case CostTypeFreight, CostTypeCustoms, CostTypeHandling, CostTypeInsurance, CostTypeOther:
		return true
	}
	return false
}

// Método de reparto de una línea. Por ahora solo proporcional al valor.
const AllocationByValue = "by_value"

// Tipo de objetivo de un reparto: una capa de valoración creada por la
// recepción vinculada.
const TargetTypeLayer = "layer"

// LandedCost documento que agrupa costos de adquisición (flete, aduana,
// manipulación) a repartir entre las líneas de una recepción.
type LandedCost struct {
	ID         string
	TenantID   string
	Status     string
	ReceiptRef string // referencia del movimiento de recepción vinculado
	PostedAt   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Modifiable indica si el documento todavía acepta líneas y recomputaciones.
func (lc *LandedCost) Modifiable() bool {
	return lc.Status == LandedCostDraft
}

// LandedCostLine un componente de costo del documento.
type LandedCostLine struct {
	ID               string
	TenantID         string
	LandedCostID     string
	CostType         string
	Amount           int64 // centavos, no negativo
	AllocationMethod string
	CreatedAt        time.Time
}

// LandedCostAllocation cuota calculada de una línea asignada a un objetivo.
// Para una línea fija, la suma de sus repartos es exactamente el monto de la
// línea (reconciliación post-redondeo por mayor residuo).
type LandedCostAllocation struct {
	ID           string
	TenantID     string
	LandedCostID string
	LineID       string
	TargetType   string
	TargetID     string
	Amount       int64 // centavos
	CreatedAt    time.Time
}

// AllocationTarget objetivo de reparto con su base de valor.
type AllocationTarget struct {
	TargetType string
	TargetID   string
	Value      int64 // centavos (base proporcional)
}
