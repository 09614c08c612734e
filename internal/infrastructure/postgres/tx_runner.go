package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/costing-engine/internal/application/costing"
	"github.com/jhoicas/costing-engine/internal/domain/repository"
)

var _ costing.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	settingRepo repository.ValuationSettingRepository,
	standardRepo repository.StandardCostRepository,
	layerRepo repository.ValuationLayerRepository,
	averageRepo repository.RunningAverageRepository,
	entryRepo repository.ValuationEntryRepository,
	idemRepo repository.IdempotencyRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(
		NewValuationSettingRepository(tx),
		NewStandardCostRepository(tx),
		NewValuationLayerRepository(tx),
		NewRunningAverageRepository(tx),
		NewValuationEntryRepository(tx),
		NewIdempotencyRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunLandedCost como Run, con el repositorio de costos en destino incluido.
func (r *TxRunner) RunLandedCost(ctx context.Context, fn func(
	lcRepo repository.LandedCostRepository,
	settingRepo repository.ValuationSettingRepository,
	layerRepo repository.ValuationLayerRepository,
	averageRepo repository.RunningAverageRepository,
	entryRepo repository.ValuationEntryRepository,
	idemRepo repository.IdempotencyRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(
		NewLandedCostRepository(tx),
		NewValuationSettingRepository(tx),
		NewValuationLayerRepository(tx),
		NewRunningAverageRepository(tx),
		NewValuationEntryRepository(tx),
		NewIdempotencyRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
