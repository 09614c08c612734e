package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/costing-engine/internal/domain/entity"
	"github.com/jhoicas/costing-engine/internal/domain/repository"
)

var _ repository.LandedCostRepository = (*LandedCostRepo)(nil)

// LandedCostRepo implementación de LandedCostRepository sobre PostgreSQL (usable con pool o tx).
type LandedCostRepo struct {
	q Querier
}

// NewLandedCostRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLandedCostRepository(q Querier) *LandedCostRepo {
	return &LandedCostRepo{q: q}
}

const landedCostColumns = `id, tenant_id, status, receipt_ref, posted_at, created_at, updated_at`

func scanLandedCost(row pgx.Row) (*entity.LandedCost, error) {
	var lc entity.LandedCost
	err := row.Scan(&lc.ID, &lc.TenantID, &lc.Status, &lc.ReceiptRef, &lc.PostedAt, &lc.CreatedAt, &lc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &lc, nil
}

// Create inserta un documento en borrador.
func (r *LandedCostRepo) Create(ctx context.Context, lc *entity.LandedCost) error {
	query := `
		INSERT INTO landed_costs (` + landedCostColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		lc.ID, lc.TenantID, lc.Status, lc.ReceiptRef, lc.PostedAt, lc.CreatedAt, lc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create landed cost: %w", err)
	}
	return nil
}

// GetByID devuelve el documento, o nil si no existe en el tenant.
func (r *LandedCostRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.LandedCost, error) {
	query := `SELECT ` + landedCostColumns + ` FROM landed_costs WHERE tenant_id = $1 AND id = $2`
	lc, err := scanLandedCost(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get landed cost: %w", err)
	}
	return lc, nil
}

// GetForUpdate bloquea y devuelve el documento, o nil si no existe en el tenant.
func (r *LandedCostRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.LandedCost, error) {
	query := `SELECT ` + landedCostColumns + ` FROM landed_costs WHERE tenant_id = $1 AND id = $2 FOR UPDATE`
	lc, err := scanLandedCost(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get landed cost for update: %w", err)
	}
	return lc, nil
}

// UpdateStatus cambia el estado del documento (y fija posted_at al contabilizar).
func (r *LandedCostRepo) UpdateStatus(ctx context.Context, tenantID, id, status string, postedAt *time.Time) error {
	query := `
		UPDATE landed_costs SET status = $3, posted_at = $4, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`
	_, err := r.q.Exec(ctx, query, tenantID, id, status, postedAt)
	if err != nil {
		return fmt.Errorf("update landed cost status: %w", err)
	}
	return nil
}

// List pagina los documentos del tenant, del más reciente al más antiguo.
func (r *LandedCostRepo) List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.LandedCost, error) {
	query := `
		SELECT ` + landedCostColumns + `
		FROM landed_costs
		WHERE tenant_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, tenantID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list landed costs: %w", err)
	}
	defer rows.Close()

	var out []*entity.LandedCost
	for rows.Next() {
		lc, err := scanLandedCost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan landed cost: %w", err)
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

// AddLine inserta una línea de cargo.
func (r *LandedCostRepo) AddLine(ctx context.Context, line *entity.LandedCostLine) error {
	query := `
		INSERT INTO landed_cost_lines
			(id, tenant_id, landed_cost_id, cost_type, amount_cents, allocation_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.TenantID, line.LandedCostID, line.CostType,
		line.Amount, line.AllocationMethod, line.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("add landed cost line: %w", err)
	}
	return nil
}

// ListLines devuelve las líneas del documento en orden de creación.
func (r *LandedCostRepo) ListLines(ctx context.Context, tenantID, landedCostID string) ([]*entity.LandedCostLine, error) {
	query := `
		SELECT id, tenant_id, landed_cost_id, cost_type, amount_cents, allocation_method, created_at
		FROM landed_cost_lines
		WHERE tenant_id = $1 AND landed_cost_id = $2
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, tenantID, landedCostID)
	if err != nil {
		return nil, fmt.Errorf("list landed cost lines: %w", err)
	}
	defer rows.Close()

	var out []*entity.LandedCostLine
	for rows.Next() {
		var l entity.LandedCostLine
		if err := rows.Scan(
			&l.ID, &l.TenantID, &l.LandedCostID, &l.CostType,
			&l.Amount, &l.AllocationMethod, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan landed cost line: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// ReplaceAllocations borra las asignaciones del documento e inserta las nuevas.
// Se llama dentro de la misma tx que las computa: el documento nunca queda
// con asignaciones a medias.
func (r *LandedCostRepo) ReplaceAllocations(ctx context.Context, tenantID, landedCostID string, allocs []*entity.LandedCostAllocation) error {
	delQuery := `DELETE FROM landed_cost_allocations WHERE tenant_id = $1 AND landed_cost_id = $2`
	if _, err := r.q.Exec(ctx, delQuery, tenantID, landedCostID); err != nil {
		return fmt.Errorf("delete landed cost allocations: %w", err)
	}
	insQuery := `
		INSERT INTO landed_cost_allocations
			(id, tenant_id, landed_cost_id, line_id, target_type, target_id, amount_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, a := range allocs {
		if _, err := r.q.Exec(ctx, insQuery,
			a.ID, a.TenantID, a.LandedCostID, a.LineID,
			a.TargetType, a.TargetID, a.Amount, a.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert landed cost allocation: %w", err)
		}
	}
	return nil
}

// ListAllocations devuelve las asignaciones vigentes del documento.
func (r *LandedCostRepo) ListAllocations(ctx context.Context, tenantID, landedCostID string) ([]*entity.LandedCostAllocation, error) {
	query := `
		SELECT id, tenant_id, landed_cost_id, line_id, target_type, target_id, amount_cents, created_at
		FROM landed_cost_allocations
		WHERE tenant_id = $1 AND landed_cost_id = $2
		ORDER BY target_id, line_id`
	rows, err := r.q.Query(ctx, query, tenantID, landedCostID)
	if err != nil {
		return nil, fmt.Errorf("list landed cost allocations: %w", err)
	}
	defer rows.Close()

	var out []*entity.LandedCostAllocation
	for rows.Next() {
		var a entity.LandedCostAllocation
		if err := rows.Scan(
			&a.ID, &a.TenantID, &a.LandedCostID, &a.LineID,
			&a.TargetType, &a.TargetID, &a.Amount, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan landed cost allocation: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
