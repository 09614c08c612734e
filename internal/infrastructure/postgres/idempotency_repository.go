package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/costing-engine/internal/domain"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
	"github.com/jhoicas/costing-engine/internal/domain/repository"
)

var _ repository.IdempotencyRepository = (*IdempotencyRepo)(nil)

// IdempotencyRepo implementación de IdempotencyRepository sobre PostgreSQL (usable con pool o tx).
type IdempotencyRepo struct {
	q Querier
}

// NewIdempotencyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIdempotencyRepository(q Querier) *IdempotencyRepo {
	return &IdempotencyRepo{q: q}
}

// Get devuelve el registro de la clave, o nil si no se ha usado.
func (r *IdempotencyRepo) Get(ctx context.Context, tenantID, key string) (*entity.IdempotencyRecord, error) {
	query := `
		SELECT tenant_id, idempotency_key, operation, result, created_at
		FROM idempotency_keys WHERE tenant_id = $1 AND idempotency_key = $2`
	var rec entity.IdempotencyRecord
	err := r.q.QueryRow(ctx, query, tenantID, key).Scan(
		&rec.TenantID, &rec.Key, &rec.Operation, &rec.Result, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency record: %w", err)
	}
	return &rec, nil
}

// Save registra la clave y su resultado. Si dos transacciones corren con la
// misma clave, la segunda pierde por el constraint único y reporta conflicto.
func (r *IdempotencyRepo) Save(ctx context.Context, record *entity.IdempotencyRecord) error {
	query := `
		INSERT INTO idempotency_keys (tenant_id, idempotency_key, operation, result, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		record.TenantID, record.Key, record.Operation, record.Result, record.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("save idempotency record: %w", err)
	}
	return nil
}
