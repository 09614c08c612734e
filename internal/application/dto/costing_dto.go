package dto

import "time"

// ApplyMovementRequest body para POST /api/costing/movements/{inbound|outbound}.
// Los montos van en centavos enteros; unit_cost es obligatorio en entradas.
type ApplyMovementRequest struct {
	ProductID      string `json:"product_id"`
	LocationID     string `json:"location_id,omitempty"`
	CategoryID     string `json:"category_id,omitempty"`
	Quantity       int64  `json:"quantity"`
	UnitCostCents  *int64 `json:"unit_cost_cents,omitempty"`
	MovementRef    string `json:"movement_ref"`
	IdempotencyKey string `json:"idempotency_key"`
}

// AdjustCostRequest body para POST /api/costing/products/{productId}/adjust-cost.
// amount_cents puede ser negativo (rebaja de valor), nunca cero.
type AdjustCostRequest struct {
	LocationID     string `json:"location_id,omitempty"`
	CategoryID     string `json:"category_id,omitempty"`
	AmountCents    int64  `json:"amount_cents"`
	Reference      string `json:"reference"`
	IdempotencyKey string `json:"idempotency_key"`
}

// ValuationEntryDTO asiento del libro de valoración.
type ValuationEntryDTO struct {
	ID             string    `json:"id"`
	MovementRef    string    `json:"movement_ref"`
	ProductID      string    `json:"product_id"`
	LocationID     string    `json:"location_id,omitempty"`
	Quantity       int64     `json:"quantity"`
	UnitCostCents  int64     `json:"unit_cost_cents"`
	TotalCostCents int64     `json:"total_cost_cents"`
	Method         string    `json:"method"`
	CreatedAt      time.Time `json:"created_at"`
}

// ValuationLayerDTO capa de costo FIFO/LIFO.
type ValuationLayerDTO struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	LocationID    string    `json:"location_id,omitempty"`
	MovementRef   string    `json:"movement_ref"`
	ReceivedQty   int64     `json:"received_qty"`
	RemainingQty  int64     `json:"remaining_qty"`
	UnitCostCents int64     `json:"unit_cost_cents"`
	ReceivedAt    time.Time `json:"received_at"`
}

// ProductValuationResponse posición valorada de un producto.
type ProductValuationResponse struct {
	ProductID       string `json:"product_id"`
	Method          string `json:"method"`
	OnHandQty       int64  `json:"on_hand_qty"`
	TotalValueCents int64  `json:"total_value_cents"`
	UnitCostCents   int64  `json:"unit_cost_cents"`
}
