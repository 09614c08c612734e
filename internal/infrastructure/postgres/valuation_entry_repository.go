package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/costing-engine/internal/domain/entity"
	"github.com/jhoicas/costing-engine/internal/domain/repository"
)

var _ repository.ValuationEntryRepository = (*ValuationEntryRepo)(nil)

// ValuationEntryRepo implementación de ValuationEntryRepository sobre PostgreSQL (usable con pool o tx).
// El libro es de solo inserción: no hay update ni delete.
type ValuationEntryRepo struct {
	q Querier
}

// NewValuationEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewValuationEntryRepository(q Querier) *ValuationEntryRepo {
	return &ValuationEntryRepo{q: q}
}

// Create inserta un asiento en el libro de valoración.
func (r *ValuationEntryRepo) Create(ctx context.Context, entry *entity.ValuationEntry) error {
	query := `
		INSERT INTO valuation_entries
			(id, tenant_id, movement_ref, product_id, location_id,
			 quantity, unit_cost_cents, total_cost_cents, method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		entry.ID, entry.TenantID, entry.MovementRef, entry.ProductID, entry.LocationID,
		entry.Quantity, entry.UnitCost, entry.TotalCost, entry.Method, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create valuation entry: %w", err)
	}
	return nil
}

// ListByProduct pagina los asientos de un producto, del más reciente al más antiguo.
func (r *ValuationEntryRepo) ListByProduct(ctx context.Context, tenantID, productID string, limit, offset int) ([]*entity.ValuationEntry, error) {
	query := `
		SELECT id, tenant_id, movement_ref, product_id, location_id,
			quantity, unit_cost_cents, total_cost_cents, method, created_at
		FROM valuation_entries
		WHERE tenant_id = $1 AND product_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, tenantID, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list valuation entries: %w", err)
	}
	defer rows.Close()

	var out []*entity.ValuationEntry
	for rows.Next() {
		var e entity.ValuationEntry
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.MovementRef, &e.ProductID, &e.LocationID,
			&e.Quantity, &e.UnitCost, &e.TotalCost, &e.Method, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan valuation entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// SumByProduct agrega la posición neta del libro para un producto.
func (r *ValuationEntryRepo) SumByProduct(ctx context.Context, tenantID, productID string) (int64, int64, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0), COALESCE(SUM(total_cost_cents), 0)
		FROM valuation_entries
		WHERE tenant_id = $1 AND product_id = $2`
	var qty, value int64
	if err := r.q.QueryRow(ctx, query, tenantID, productID).Scan(&qty, &value); err != nil {
		return 0, 0, fmt.Errorf("sum valuation entries: %w", err)
	}
	return qty, value, nil
}
