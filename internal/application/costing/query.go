package costing

import (
	"context"

	"github.com/jhoicas/costing-engine/internal/domain"
	"github.com/jhoicas/costing-engine/internal/domain/costing"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
	"github.com/jhoicas/costing-engine/internal/domain/repository"
)

// ProductValuation posición valorada de un producto según su método.
type ProductValuation struct {
	ProductID  string
	Method     string
	OnHandQty  int64
	TotalValue int64 // centavos
	UnitCost   int64 // centavos, promedio derivado (0 si no hay stock)
}

// ValuationQueryUseCase consultas de solo lectura sobre capas, libro y
// valoración agregada. No toma locks: lee el último estado confirmado.
type ValuationQueryUseCase struct {
	resolver *MethodResolver
	layers   repository.ValuationLayerRepository
	averages repository.RunningAverageRepository
	entries  repository.ValuationEntryRepository
}

// NewValuationQueryUseCase construye el caso de uso.
func NewValuationQueryUseCase(
	resolver *MethodResolver,
	layers repository.ValuationLayerRepository,
	averages repository.RunningAverageRepository,
	entries repository.ValuationEntryRepository,
) *ValuationQueryUseCase {
	return &ValuationQueryUseCase{resolver: resolver, layers: layers, averages: averages, entries: entries}
}

// ListLayers devuelve las capas de un producto, incluidas las agotadas.
func (uc *ValuationQueryUseCase) ListLayers(ctx context.Context, tenantID, productID, locationID string) ([]*entity.ValuationLayer, error) {
	if tenantID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.layers.ListByProduct(ctx, tenantID, productID, locationID)
}

// ListEntries pagina el libro de valoración de un producto.
func (uc *ValuationQueryUseCase) ListEntries(ctx context.Context, tenantID, productID string, limit, offset int) ([]*entity.ValuationEntry, error) {
	if tenantID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.entries.ListByProduct(ctx, tenantID, productID, limit, offset)
}

// GetValuation devuelve la posición valorada del producto. Para FIFO/LIFO la
// fuente es el remanente de las capas; para promedio ponderado, el estado
// acumulado; para costo estándar, la posición neta del libro.
func (uc *ValuationQueryUseCase) GetValuation(ctx context.Context, tenantID, productID, locationID, categoryID string) (*ProductValuation, error) {
	method, err := uc.resolver.Resolve(ctx, tenantID, productID, categoryID)
	if err != nil {
		return nil, err
	}

	v := &ProductValuation{ProductID: productID, Method: method}
	switch method {
	case entity.MethodFifo, entity.MethodLifo:
		layers, err := uc.layers.ListByProduct(ctx, tenantID, productID, locationID)
		if err != nil {
			return nil, err
		}
		for _, l := range layers {
			if l.RemainingQty <= 0 {
				continue
			}
			lv, err := costing.MulCents(l.RemainingQty, l.UnitCost)
			if err != nil {
				return nil, err
			}
			total, err := costing.AddCents(v.TotalValue, lv)
			if err != nil {
				return nil, err
			}
			v.OnHandQty += l.RemainingQty
			v.TotalValue = total
		}

	case entity.MethodWeightedAverage:
		avg, err := uc.averages.Get(ctx, tenantID, productID, locationID)
		if err != nil {
			return nil, err
		}
		if avg != nil {
			v.OnHandQty = avg.TotalQty
			v.TotalValue = avg.TotalValue
		}

	case entity.MethodStandard:
		qty, value, err := uc.entries.SumByProduct(ctx, tenantID, productID)
		if err != nil {
			return nil, err
		}
		v.OnHandQty = qty
		v.TotalValue = value
	}

	if v.OnHandQty > 0 {
		v.UnitCost = costing.AverageUnitCost(v.OnHandQty, v.TotalValue)
	}
	return v, nil
}
