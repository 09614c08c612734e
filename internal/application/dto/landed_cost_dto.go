package dto

import "time"

// CreateLandedCostRequest body para POST /api/landed-costs.
type CreateLandedCostRequest struct {
	ReceiptRef string `json:"receipt_ref"`
}

// AddLandedCostLineRequest body para POST /api/landed-costs/:id/lines.
type AddLandedCostLineRequest struct {
	CostType    string `json:"cost_type"` // freight|customs|handling|insurance|other
	AmountCents int64  `json:"amount_cents"`
}

// PostLandedCostRequest body para POST /api/landed-costs/:id/post.
type PostLandedCostRequest struct {
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// LandedCostDTO cabecera del documento.
type LandedCostDTO struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	ReceiptRef string     `json:"receipt_ref"`
	PostedAt   *time.Time `json:"posted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// LandedCostLineDTO línea de cargo.
type LandedCostLineDTO struct {
	ID               string    `json:"id"`
	CostType         string    `json:"cost_type"`
	AmountCents      int64     `json:"amount_cents"`
	AllocationMethod string    `json:"allocation_method"`
	CreatedAt        time.Time `json:"created_at"`
}

// LandedCostAllocationDTO cuota asignada a un objetivo.
type LandedCostAllocationDTO struct {
	ID          string `json:"id"`
	LineID      string `json:"line_id"`
	TargetType  string `json:"target_type"`
	TargetID    string `json:"target_id"`
	AmountCents int64  `json:"amount_cents"`
}

// LandedCostDetailResponse documento con líneas y asignaciones.
type LandedCostDetailResponse struct {
	Doc         LandedCostDTO             `json:"doc"`
	Lines       []LandedCostLineDTO       `json:"lines"`
	Allocations []LandedCostAllocationDTO `json:"allocations"`
}
