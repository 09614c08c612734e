package entity

import "time"

// StandardCost costo unitario fijo configurado por (tenant, product).
// El valuador estándar lo lee sin modificarlo; su ausencia es un error duro,
// nunca un costo cero implícito.
type StandardCost struct {
	TenantID  string
	ProductID string
	UnitCost  int64 // centavos
	UpdatedAt time.Time
}
