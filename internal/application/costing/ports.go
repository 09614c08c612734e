package costing

import (
	"context"

	"github.com/jhoicas/costing-engine/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de
// costeo: mutación de estado, asiento en el libro y registro de idempotencia
// se confirman o revierten como unidad.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		settingRepo repository.ValuationSettingRepository,
		standardRepo repository.StandardCostRepository,
		layerRepo repository.ValuationLayerRepository,
		averageRepo repository.RunningAverageRepository,
		entryRepo repository.ValuationEntryRepository,
		idemRepo repository.IdempotencyRepository,
	) error) error

	// RunLandedCost variante con el repositorio de costos en destino (para
	// compute y post, que mutan documento, capas y libro en la misma tx).
	RunLandedCost(ctx context.Context, fn func(
		lcRepo repository.LandedCostRepository,
		settingRepo repository.ValuationSettingRepository,
		layerRepo repository.ValuationLayerRepository,
		averageRepo repository.RunningAverageRepository,
		entryRepo repository.ValuationEntryRepository,
		idemRepo repository.IdempotencyRepository,
	) error) error
}

// Unlocker libera un lock adquirido.
type Unlocker func(ctx context.Context) error

// Locker lock consultivo distribuido sobre un recurso (producto o documento).
// La espera es acotada, con reintentos y backoff; si el lock no se obtiene
// devuelve domain.ErrConflict y el caller puede reintentar sin efecto parcial.
type Locker interface {
	Acquire(ctx context.Context, key string) (Unlocker, error)
}
