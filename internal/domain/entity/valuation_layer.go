package entity

import "time"

// ValuationLayer una capa de costo FIFO/LIFO creada por un movimiento de
// entrada. Las capas se identifican por (tenant, product, location): mezclar
// alcances rompería el invariante suma-de-capas = existencias.
// RemainingQty nunca es negativo; una capa en cero queda inerte pero se
// conserva para auditoría.
type ValuationLayer struct {
	ID           string
	TenantID     string
	ProductID    string
	LocationID   string // vacío = sin ubicación (alcance propio)
	MovementRef  string // movimiento de entrada que originó la capa
	ReceivedQty  int64  // cantidad original recibida (base para costos en destino)
	RemainingQty int64
	UnitCost     int64 // centavos por unidad
	ReceivedAt   time.Time
}
