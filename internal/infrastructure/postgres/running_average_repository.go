package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/costing-engine/internal/domain/entity"
	"github.com/jhoicas/costing-engine/internal/domain/repository"
)

var _ repository.RunningAverageRepository = (*RunningAverageRepo)(nil)

// RunningAverageRepo implementación de RunningAverageRepository sobre PostgreSQL (usable con pool o tx).
type RunningAverageRepo struct {
	q Querier
}

// NewRunningAverageRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRunningAverageRepository(q Querier) *RunningAverageRepo {
	return &RunningAverageRepo{q: q}
}

func (r *RunningAverageRepo) get(ctx context.Context, tenantID, productID, locationID, suffix string) (*entity.RunningAverage, error) {
	query := `
		SELECT tenant_id, product_id, location_id, total_qty, total_value_cents, updated_at
		FROM running_averages
		WHERE tenant_id = $1 AND product_id = $2 AND location_id = $3` + suffix
	var a entity.RunningAverage
	err := r.q.QueryRow(ctx, query, tenantID, productID, locationID).Scan(
		&a.TenantID, &a.ProductID, &a.LocationID, &a.TotalQty, &a.TotalValue, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get running average: %w", err)
	}
	return &a, nil
}

// Get devuelve el estado del promedio sin bloquear, o nil si no existe.
func (r *RunningAverageRepo) Get(ctx context.Context, tenantID, productID, locationID string) (*entity.RunningAverage, error) {
	return r.get(ctx, tenantID, productID, locationID, "")
}

// GetForUpdate bloquea la fila del promedio (SELECT FOR UPDATE), o nil si no existe.
func (r *RunningAverageRepo) GetForUpdate(ctx context.Context, tenantID, productID, locationID string) (*entity.RunningAverage, error) {
	return r.get(ctx, tenantID, productID, locationID, " FOR UPDATE")
}

// Upsert inserta o actualiza el estado del promedio del alcance.
func (r *RunningAverageRepo) Upsert(ctx context.Context, avg *entity.RunningAverage) error {
	query := `
		INSERT INTO running_averages (tenant_id, product_id, location_id, total_qty, total_value_cents, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id, product_id, location_id)
		DO UPDATE SET total_qty = EXCLUDED.total_qty,
			total_value_cents = EXCLUDED.total_value_cents,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		avg.TenantID, avg.ProductID, avg.LocationID, avg.TotalQty, avg.TotalValue, avg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert running average: %w", err)
	}
	return nil
}
