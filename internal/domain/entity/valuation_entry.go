package entity

import "time"

// Variante del método registrada en asientos WAC: deja documentada la
// política de redondeo (mitad hacia arriba) que introduce la deriva.
const MethodWeightedAverageHalfUp = "weighted_average_half_up"

// ValuationEntry registro de auditoría de un efecto de costo. Inmutable una
// vez escrito: la suma de asientos de un producto reconstruye su valoración.
type ValuationEntry struct {
	ID          string
	TenantID    string
	MovementRef string
	ProductID   string
	LocationID  string
	Quantity    int64 // positivo = entrada, negativo = salida, cero = ajuste de costo
	UnitCost    int64 // centavos
	TotalCost   int64 // centavos, con el signo de Quantity
	Method      string
	CreatedAt   time.Time
}
