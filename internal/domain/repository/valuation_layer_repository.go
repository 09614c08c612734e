package repository

import (
	"context"

	"github.com/jhoicas/costing-engine/internal/domain/entity"
)

// ValuationLayerRepository puerto de persistencia de capas de costo FIFO/LIFO.
type ValuationLayerRepository interface {
	Create(ctx context.Context, layer *entity.ValuationLayer) error
	// ListForUpdate devuelve las capas con remanente > 0 del alcance,
	// bloqueadas en orden ascendente de ID (orden fijo de adquisición de
	// locks; el orden de consumo LIFO se decide en memoria).
	ListForUpdate(ctx context.Context, tenantID, productID, locationID string) ([]*entity.ValuationLayer, error)
	// ListByProduct devuelve todas las capas del alcance (incluidas las
	// agotadas, que se conservan para auditoría).
	ListByProduct(ctx context.Context, tenantID, productID, locationID string) ([]*entity.ValuationLayer, error)
	// ListByMovementRef devuelve las capas originadas por una recepción
	// (objetivos del reparto de costos en destino), en orden de ID.
	ListByMovementRef(ctx context.Context, tenantID, movementRef string) ([]*entity.ValuationLayer, error)
	GetForUpdate(ctx context.Context, tenantID, layerID string) (*entity.ValuationLayer, error)
	UpdateRemaining(ctx context.Context, tenantID, layerID string, remaining int64) error
	UpdateUnitCost(ctx context.Context, tenantID, layerID string, unitCost int64) error
}

// RunningAverageRepository puerto de persistencia del promedio ponderado.
type RunningAverageRepository interface {
	// Get devuelve el estado del alcance sin bloquear, o nil si no existe.
	Get(ctx context.Context, tenantID, productID, locationID string) (*entity.RunningAverage, error)
	// GetForUpdate bloquea y devuelve el estado del alcance, o nil si no existe.
	GetForUpdate(ctx context.Context, tenantID, productID, locationID string) (*entity.RunningAverage, error)
	Upsert(ctx context.Context, avg *entity.RunningAverage) error
}

// ValuationEntryRepository puerto del libro de valoración (solo inserción;
// los asientos nunca se actualizan ni se borran).
type ValuationEntryRepository interface {
	Create(ctx context.Context, entry *entity.ValuationEntry) error
	ListByProduct(ctx context.Context, tenantID, productID string, limit, offset int) ([]*entity.ValuationEntry, error)
	// SumByProduct agrega cantidad y costo total de todos los asientos de un
	// producto (posición neta según el libro).
	SumByProduct(ctx context.Context, tenantID, productID string) (qty int64, value int64, err error)
}

// IdempotencyRepository puerto del registro durable clave → resultado.
type IdempotencyRepository interface {
	// Get devuelve el registro o nil si la clave no se ha usado.
	Get(ctx context.Context, tenantID, key string) (*entity.IdempotencyRecord, error)
	Save(ctx context.Context, record *entity.IdempotencyRecord) error
}
