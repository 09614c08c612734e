package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/costing-engine/internal/domain/entity"
	"github.com/jhoicas/costing-engine/internal/domain/repository"
)

var _ repository.ValuationSettingRepository = (*ValuationSettingRepo)(nil)

// ValuationSettingRepo implementación de ValuationSettingRepository sobre PostgreSQL (usable con pool o tx).
type ValuationSettingRepo struct {
	q Querier
}

// NewValuationSettingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewValuationSettingRepository(q Querier) *ValuationSettingRepo {
	return &ValuationSettingRepo{q: q}
}

// Get devuelve la configuración del alcance, o nil si no existe.
func (r *ValuationSettingRepo) Get(ctx context.Context, tenantID, scopeKind, scopeTarget string) (*entity.ValuationSetting, error) {
	query := `
		SELECT id, tenant_id, scope_kind, scope_target, method, created_at, updated_at
		FROM valuation_settings
		WHERE tenant_id = $1 AND scope_kind = $2 AND scope_target = $3`
	var s entity.ValuationSetting
	err := r.q.QueryRow(ctx, query, tenantID, scopeKind, scopeTarget).Scan(
		&s.ID, &s.TenantID, &s.ScopeKind, &s.ScopeTarget, &s.Method, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get valuation setting: %w", err)
	}
	return &s, nil
}

// Upsert inserta o reemplaza la configuración del alcance.
func (r *ValuationSettingRepo) Upsert(ctx context.Context, setting *entity.ValuationSetting) error {
	query := `
		INSERT INTO valuation_settings (id, tenant_id, scope_kind, scope_target, method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id, scope_kind, scope_target)
		DO UPDATE SET method = EXCLUDED.method, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		setting.ID, setting.TenantID, setting.ScopeKind, setting.ScopeTarget,
		setting.Method, setting.CreatedAt, setting.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert valuation setting: %w", err)
	}
	return nil
}

var _ repository.StandardCostRepository = (*StandardCostRepo)(nil)

// StandardCostRepo implementación de StandardCostRepository sobre PostgreSQL.
type StandardCostRepo struct {
	q Querier
}

// NewStandardCostRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStandardCostRepository(q Querier) *StandardCostRepo {
	return &StandardCostRepo{q: q}
}

// Get devuelve el costo estándar del producto, o nil si no está definido.
func (r *StandardCostRepo) Get(ctx context.Context, tenantID, productID string) (*entity.StandardCost, error) {
	query := `
		SELECT tenant_id, product_id, unit_cost_cents, updated_at
		FROM standard_costs WHERE tenant_id = $1 AND product_id = $2`
	var s entity.StandardCost
	err := r.q.QueryRow(ctx, query, tenantID, productID).Scan(
		&s.TenantID, &s.ProductID, &s.UnitCost, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get standard cost: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza el costo estándar del producto.
func (r *StandardCostRepo) Upsert(ctx context.Context, cost *entity.StandardCost) error {
	query := `
		INSERT INTO standard_costs (tenant_id, product_id, unit_cost_cents, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, product_id)
		DO UPDATE SET unit_cost_cents = EXCLUDED.unit_cost_cents, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, cost.TenantID, cost.ProductID, cost.UnitCost, cost.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert standard cost: %w", err)
	}
	return nil
}
