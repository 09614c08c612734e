package entity

import "time"

// RunningAverage estado del costo promedio ponderado por
// (tenant, product, location). TotalQty y TotalValue se actualizan siempre
// juntos, dentro de la misma transacción; el costo unitario vigente se
// deriva de ambos (ver costing.AverageUnitCost).
type RunningAverage struct {
	TenantID   string
	ProductID  string
	LocationID string
	TotalQty   int64
	TotalValue int64 // centavos
	UpdatedAt  time.Time
}
