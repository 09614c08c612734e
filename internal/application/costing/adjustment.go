package costing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/costing-engine/internal/domain"
	"github.com/jhoicas/costing-engine/internal/domain/costing"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
	"github.com/jhoicas/costing-engine/internal/domain/repository"
)

const opAdjustCost = "adjust_cost"

// CostAdjustmentInput ajuste manual del valor de un producto: Amount en
// centavos (positivo o negativo, nunca cero) y Reference como referencia de
// auditoría del asiento emitido.
type CostAdjustmentInput struct {
	TenantID       string
	ProductID      string
	LocationID     string
	CategoryID     string
	Amount         int64
	Reference      string
	IdempotencyKey string
}

func (in *CostAdjustmentInput) validate() error {
	if in.TenantID == "" || in.ProductID == "" || in.Reference == "" || in.IdempotencyKey == "" {
		return domain.ErrInvalidInput
	}
	if in.Amount == 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

// AdjustCost suma Amount al valor del inventario del producto sin tocar la
// cantidad y emite un asiento de ajuste de cantidad cero. Según el método
// efectivo: FIFO/LIFO reparte el monto entre las capas abiertas en
// proporción a su valor remanente y ajusta sus costos unitarios; promedio
// ponderado suma al valor acumulado; estándar solo registra el asiento (el
// costo configurado no cambia). Sin posición que ajustar es ErrNotFound y
// un valor resultante negativo es ErrInvalidInput, sin efecto parcial.
func (uc *ApplyMovementUseCase) AdjustCost(ctx context.Context, in CostAdjustmentInput) ([]*entity.ValuationEntry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	method, err := uc.resolver.Resolve(ctx, in.TenantID, in.ProductID, in.CategoryID)
	if err != nil {
		return nil, err
	}

	lockKey := fmt.Sprintf("costing:mov:%s:%s:%s", in.TenantID, in.ProductID, in.LocationID)
	unlock, err := uc.locker.Acquire(ctx, lockKey)
	if err != nil {
		return nil, err
	}
	defer func() { _ = unlock(context.Background()) }()

	// La operación grabada incluye el alcance ajustado: reutilizar la clave
	// sobre otro producto o ubicación es conflicto, no replay.
	idemOp := fmt.Sprintf("%s:%s:%s", opAdjustCost, in.ProductID, in.LocationID)

	var result []*entity.ValuationEntry
	err = uc.txRunner.Run(ctx, func(
		_ repository.ValuationSettingRepository,
		_ repository.StandardCostRepository,
		layerRepo repository.ValuationLayerRepository,
		averageRepo repository.RunningAverageRepository,
		entryRepo repository.ValuationEntryRepository,
		idemRepo repository.IdempotencyRepository,
	) error {
		if prior, err := replayOrNil(ctx, idemRepo, in.TenantID, in.IdempotencyKey, idemOp); err != nil {
			return err
		} else if prior != nil {
			result = prior
			return nil
		}

		now := time.Now().UTC()
		entryMethod := method
		switch method {
		case entity.MethodFifo, entity.MethodLifo:
			layers, err := layerRepo.ListForUpdate(ctx, in.TenantID, in.ProductID, in.LocationID)
			if err != nil {
				return err
			}
			if len(layers) == 0 {
				return domain.ErrNotFound
			}
			if err := adjustLayers(ctx, layerRepo, in.TenantID, in.Amount, layers); err != nil {
				return err
			}

		case entity.MethodWeightedAverage:
			entryMethod = entity.MethodWeightedAverageHalfUp
			avg, err := averageRepo.GetForUpdate(ctx, in.TenantID, in.ProductID, in.LocationID)
			if err != nil {
				return err
			}
			if avg == nil {
				return domain.ErrNotFound
			}
			newValue, err := costing.AddCents(avg.TotalValue, in.Amount)
			if err != nil {
				return err
			}
			if newValue < 0 {
				return domain.ErrInvalidInput
			}
			avg.TotalValue = newValue
			avg.UpdatedAt = now
			if err := averageRepo.Upsert(ctx, avg); err != nil {
				return err
			}

		case entity.MethodStandard:
			// El costo estándar configurado no se toca; la variación queda
			// registrada solo como asiento de ajuste.
		}

		entry := &entity.ValuationEntry{
			ID:          uuid.New().String(),
			TenantID:    in.TenantID,
			MovementRef: in.Reference,
			ProductID:   in.ProductID,
			LocationID:  in.LocationID,
			Quantity:    0,
			UnitCost:    0,
			TotalCost:   in.Amount,
			Method:      entryMethod,
			CreatedAt:   now,
		}
		if err := entryRepo.Create(ctx, entry); err != nil {
			return err
		}
		result = []*entity.ValuationEntry{entry}

		return saveResult(ctx, idemRepo, in.TenantID, in.IdempotencyKey, idemOp, result, now)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// adjustLayers reparte amount entre las capas abiertas en proporción a su
// valor remanente y sube (o baja) el costo unitario de cada una con la cuota
// redondeada half-up sobre su cantidad remanente.
func adjustLayers(ctx context.Context, layerRepo repository.ValuationLayerRepository, tenantID string, amount int64, layers []*entity.ValuationLayer) error {
	magnitude := amount
	sign := int64(1)
	if magnitude < 0 {
		magnitude = -magnitude
		sign = -1
	}

	targets := make([]entity.AllocationTarget, len(layers))
	for i, l := range layers {
		value, err := costing.MulCents(l.RemainingQty, l.UnitCost)
		if err != nil {
			return err
		}
		targets[i] = entity.AllocationTarget{
			TargetType: entity.TargetTypeLayer,
			TargetID:   l.ID,
			Value:      value,
		}
	}
	shares, err := costing.Allocate(magnitude, targets)
	if err != nil {
		return err
	}

	for i, l := range layers {
		if shares[i] == 0 {
			continue
		}
		delta := sign * costing.AverageUnitCost(l.RemainingQty, shares[i])
		newUnit, err := costing.AddCents(l.UnitCost, delta)
		if err != nil {
			return err
		}
		if newUnit < 0 {
			return domain.ErrInvalidInput
		}
		if err := layerRepo.UpdateUnitCost(ctx, tenantID, l.ID, newUnit); err != nil {
			return err
		}
	}
	return nil
}
