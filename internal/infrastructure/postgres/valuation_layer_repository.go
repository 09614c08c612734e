package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/costing-engine/internal/domain/entity"
	"github.com/jhoicas/costing-engine/internal/domain/repository"
)

var _ repository.ValuationLayerRepository = (*ValuationLayerRepo)(nil)

// ValuationLayerRepo implementación de ValuationLayerRepository sobre PostgreSQL (usable con pool o tx).
type ValuationLayerRepo struct {
	q Querier
}

// NewValuationLayerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewValuationLayerRepository(q Querier) *ValuationLayerRepo {
	return &ValuationLayerRepo{q: q}
}

const layerColumns = `id, tenant_id, product_id, location_id, movement_ref,
	received_qty, remaining_qty, unit_cost_cents, received_at`

func scanLayer(row pgx.Row) (*entity.ValuationLayer, error) {
	var l entity.ValuationLayer
	err := row.Scan(
		&l.ID, &l.TenantID, &l.ProductID, &l.LocationID, &l.MovementRef,
		&l.ReceivedQty, &l.RemainingQty, &l.UnitCost, &l.ReceivedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func collectLayers(rows pgx.Rows) ([]*entity.ValuationLayer, error) {
	defer rows.Close()
	var out []*entity.ValuationLayer
	for rows.Next() {
		l, err := scanLayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan valuation layer: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Create inserta una capa nueva.
func (r *ValuationLayerRepo) Create(ctx context.Context, layer *entity.ValuationLayer) error {
	query := `
		INSERT INTO valuation_layers (` + layerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		layer.ID, layer.TenantID, layer.ProductID, layer.LocationID, layer.MovementRef,
		layer.ReceivedQty, layer.RemainingQty, layer.UnitCost, layer.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("create valuation layer: %w", err)
	}
	return nil
}

// ListForUpdate bloquea las capas con remanente del alcance en orden de ID.
// El orden de consumo (FIFO o LIFO) se decide en memoria; los locks de fila
// siempre se toman en la misma secuencia.
func (r *ValuationLayerRepo) ListForUpdate(ctx context.Context, tenantID, productID, locationID string) ([]*entity.ValuationLayer, error) {
	query := `
		SELECT ` + layerColumns + `
		FROM valuation_layers
		WHERE tenant_id = $1 AND product_id = $2 AND location_id = $3 AND remaining_qty > 0
		ORDER BY id
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, tenantID, productID, locationID)
	if err != nil {
		return nil, fmt.Errorf("list layers for update: %w", err)
	}
	return collectLayers(rows)
}

// ListByProduct devuelve todas las capas del alcance, incluidas las agotadas.
func (r *ValuationLayerRepo) ListByProduct(ctx context.Context, tenantID, productID, locationID string) ([]*entity.ValuationLayer, error) {
	query := `
		SELECT ` + layerColumns + `
		FROM valuation_layers
		WHERE tenant_id = $1 AND product_id = $2 AND location_id = $3
		ORDER BY received_at, id`
	rows, err := r.q.Query(ctx, query, tenantID, productID, locationID)
	if err != nil {
		return nil, fmt.Errorf("list layers by product: %w", err)
	}
	return collectLayers(rows)
}

// ListByMovementRef devuelve las capas creadas por una recepción.
func (r *ValuationLayerRepo) ListByMovementRef(ctx context.Context, tenantID, movementRef string) ([]*entity.ValuationLayer, error) {
	query := `
		SELECT ` + layerColumns + `
		FROM valuation_layers
		WHERE tenant_id = $1 AND movement_ref = $2
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, tenantID, movementRef)
	if err != nil {
		return nil, fmt.Errorf("list layers by movement: %w", err)
	}
	return collectLayers(rows)
}

// GetForUpdate bloquea y devuelve una capa, o nil si no existe en el tenant.
func (r *ValuationLayerRepo) GetForUpdate(ctx context.Context, tenantID, layerID string) (*entity.ValuationLayer, error) {
	query := `
		SELECT ` + layerColumns + `
		FROM valuation_layers
		WHERE tenant_id = $1 AND id = $2
		FOR UPDATE`
	l, err := scanLayer(r.q.QueryRow(ctx, query, tenantID, layerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get layer for update: %w", err)
	}
	return l, nil
}

// UpdateRemaining fija el remanente de la capa.
func (r *ValuationLayerRepo) UpdateRemaining(ctx context.Context, tenantID, layerID string, remaining int64) error {
	query := `UPDATE valuation_layers SET remaining_qty = $3 WHERE tenant_id = $1 AND id = $2`
	_, err := r.q.Exec(ctx, query, tenantID, layerID, remaining)
	if err != nil {
		return fmt.Errorf("update layer remaining: %w", err)
	}
	return nil
}

// UpdateUnitCost fija el costo unitario de la capa (ajuste por costos en destino).
func (r *ValuationLayerRepo) UpdateUnitCost(ctx context.Context, tenantID, layerID string, unitCost int64) error {
	query := `UPDATE valuation_layers SET unit_cost_cents = $3 WHERE tenant_id = $1 AND id = $2`
	_, err := r.q.Exec(ctx, query, tenantID, layerID, unitCost)
	if err != nil {
		return fmt.Errorf("update layer unit cost: %w", err)
	}
	return nil
}
