package costing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/costing-engine/internal/domain"
	"github.com/jhoicas/costing-engine/internal/domain/costing"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
	"github.com/jhoicas/costing-engine/internal/domain/repository"
)

// Nombres de operación registrados junto a la clave de idempotencia. Reusar
// una clave con otra operación es un conflicto, no un replay.
const (
	opApplyInbound   = "apply_inbound"
	opApplyOutbound  = "apply_outbound"
	opPostLandedCost = "post_landed_cost"
)

// MovementInput evento de movimiento de stock que entra al motor de costeo.
// Quantity siempre positiva; la dirección la da la operación invocada.
// UnitCost es obligatorio en entradas y se ignora en salidas.
type MovementInput struct {
	TenantID       string
	ProductID      string
	LocationID     string
	CategoryID     string
	Quantity       int64
	UnitCost       *int64
	MovementRef    string
	IdempotencyKey string
}

// ApplyMovementUseCase valora movimientos de entrada y salida despachando al
// método efectivo (standard, weighted_average, fifo, lifo) dentro de una
// transacción, con lock por (tenant, producto, ubicación) y deduplicación
// por clave de idempotencia.
type ApplyMovementUseCase struct {
	txRunner TxRunner
	locker   Locker
	resolver *MethodResolver
}

// NewApplyMovementUseCase construye el caso de uso.
func NewApplyMovementUseCase(txRunner TxRunner, locker Locker, resolver *MethodResolver) *ApplyMovementUseCase {
	return &ApplyMovementUseCase{txRunner: txRunner, locker: locker, resolver: resolver}
}

func (in *MovementInput) validate(inbound bool) error {
	if in.TenantID == "" || in.ProductID == "" || in.MovementRef == "" || in.IdempotencyKey == "" {
		return domain.ErrInvalidInput
	}
	if in.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	if inbound && (in.UnitCost == nil || *in.UnitCost < 0) {
		return domain.ErrInvalidInput
	}
	return nil
}

func movementLockKey(in MovementInput) string {
	return fmt.Sprintf("costing:mov:%s:%s:%s", in.TenantID, in.ProductID, in.LocationID)
}

// replayOrNil devuelve el resultado grabado si la clave ya se usó con la
// misma operación; una clave reutilizada con otra operación es ErrConflict.
func replayOrNil(ctx context.Context, idemRepo repository.IdempotencyRepository, tenantID, key, op string) ([]*entity.ValuationEntry, error) {
	rec, err := idemRepo.Get(ctx, tenantID, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	if rec.Operation != op {
		return nil, domain.ErrConflict
	}
	var entries []*entity.ValuationEntry
	if err := json.Unmarshal(rec.Result, &entries); err != nil {
		return nil, fmt.Errorf("replay idempotente: %w", err)
	}
	return entries, nil
}

func saveResult(ctx context.Context, idemRepo repository.IdempotencyRepository, tenantID, key, op string, entries []*entity.ValuationEntry, now time.Time) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("serializar resultado: %w", err)
	}
	return idemRepo.Save(ctx, &entity.IdempotencyRecord{
		TenantID:  tenantID,
		Key:       key,
		Operation: op,
		Result:    payload,
		CreatedAt: now,
	})
}

// ApplyInbound valora una entrada de stock y devuelve los asientos emitidos.
// Un reintento con la misma clave de idempotencia devuelve el resultado
// original sin re-aplicar efectos.
func (uc *ApplyMovementUseCase) ApplyInbound(ctx context.Context, in MovementInput) ([]*entity.ValuationEntry, error) {
	if err := in.validate(true); err != nil {
		return nil, err
	}
	method, err := uc.resolver.Resolve(ctx, in.TenantID, in.ProductID, in.CategoryID)
	if err != nil {
		return nil, err
	}

	unlock, err := uc.locker.Acquire(ctx, movementLockKey(in))
	if err != nil {
		return nil, err
	}
	defer func() { _ = unlock(context.Background()) }()

	var result []*entity.ValuationEntry
	err = uc.txRunner.Run(ctx, func(
		_ repository.ValuationSettingRepository,
		standardRepo repository.StandardCostRepository,
		layerRepo repository.ValuationLayerRepository,
		averageRepo repository.RunningAverageRepository,
		entryRepo repository.ValuationEntryRepository,
		idemRepo repository.IdempotencyRepository,
	) error {
		if prior, err := replayOrNil(ctx, idemRepo, in.TenantID, in.IdempotencyKey, opApplyInbound); err != nil {
			return err
		} else if prior != nil {
			result = prior
			return nil
		}

		now := time.Now().UTC()
		var entry *entity.ValuationEntry
		switch method {
		case entity.MethodFifo, entity.MethodLifo:
			total, err := costing.MulCents(in.Quantity, *in.UnitCost)
			if err != nil {
				return err
			}
			layer := &entity.ValuationLayer{
				ID:           uuid.New().String(),
				TenantID:     in.TenantID,
				ProductID:    in.ProductID,
				LocationID:   in.LocationID,
				MovementRef:  in.MovementRef,
				ReceivedQty:  in.Quantity,
				RemainingQty: in.Quantity,
				UnitCost:     *in.UnitCost,
				ReceivedAt:   now,
			}
			if err := layerRepo.Create(ctx, layer); err != nil {
				return err
			}
			entry = newEntry(in, in.Quantity, *in.UnitCost, total, method, now)

		case entity.MethodWeightedAverage:
			avg, err := averageRepo.GetForUpdate(ctx, in.TenantID, in.ProductID, in.LocationID)
			if err != nil {
				return err
			}
			if avg == nil {
				avg = &entity.RunningAverage{
					TenantID:   in.TenantID,
					ProductID:  in.ProductID,
					LocationID: in.LocationID,
				}
			}
			if _, err := costing.MergeInbound(avg, in.Quantity, *in.UnitCost, now); err != nil {
				return err
			}
			if err := averageRepo.Upsert(ctx, avg); err != nil {
				return err
			}
			total, err := costing.MulCents(in.Quantity, *in.UnitCost)
			if err != nil {
				return err
			}
			entry = newEntry(in, in.Quantity, *in.UnitCost, total, entity.MethodWeightedAverageHalfUp, now)

		case entity.MethodStandard:
			std, err := standardRepo.Get(ctx, in.TenantID, in.ProductID)
			if err != nil {
				return err
			}
			if std == nil {
				return domain.ErrStandardCostMissing
			}
			total, err := costing.MulCents(in.Quantity, std.UnitCost)
			if err != nil {
				return err
			}
			entry = newEntry(in, in.Quantity, std.UnitCost, total, method, now)

		default:
			return domain.ErrInvalidInput
		}

		if err := entryRepo.Create(ctx, entry); err != nil {
			return err
		}
		result = []*entity.ValuationEntry{entry}
		return saveResult(ctx, idemRepo, in.TenantID, in.IdempotencyKey, opApplyInbound, result, now)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyOutbound valora una salida de stock. Para FIFO/LIFO bloquea las capas
// en orden ascendente de ID (orden fijo de locks), planifica el consumo en
// memoria y recién entonces decrementa; la falta de stock se detecta antes
// de mutar capa alguna.
func (uc *ApplyMovementUseCase) ApplyOutbound(ctx context.Context, in MovementInput) ([]*entity.ValuationEntry, error) {
	if err := in.validate(false); err != nil {
		return nil, err
	}
	method, err := uc.resolver.Resolve(ctx, in.TenantID, in.ProductID, in.CategoryID)
	if err != nil {
		return nil, err
	}

	unlock, err := uc.locker.Acquire(ctx, movementLockKey(in))
	if err != nil {
		return nil, err
	}
	defer func() { _ = unlock(context.Background()) }()

	var result []*entity.ValuationEntry
	err = uc.txRunner.Run(ctx, func(
		_ repository.ValuationSettingRepository,
		standardRepo repository.StandardCostRepository,
		layerRepo repository.ValuationLayerRepository,
		averageRepo repository.RunningAverageRepository,
		entryRepo repository.ValuationEntryRepository,
		idemRepo repository.IdempotencyRepository,
	) error {
		if prior, err := replayOrNil(ctx, idemRepo, in.TenantID, in.IdempotencyKey, opApplyOutbound); err != nil {
			return err
		} else if prior != nil {
			result = prior
			return nil
		}

		now := time.Now().UTC()
		var entries []*entity.ValuationEntry
		switch method {
		case entity.MethodFifo, entity.MethodLifo:
			layers, err := layerRepo.ListForUpdate(ctx, in.TenantID, in.ProductID, in.LocationID)
			if err != nil {
				return err
			}
			draws, err := costing.PlanConsumption(layers, in.Quantity, method)
			if err != nil {
				return err
			}
			for _, d := range draws {
				total, err := costing.MulCents(d.Qty, d.Layer.UnitCost)
				if err != nil {
					return err
				}
				if err := layerRepo.UpdateRemaining(ctx, in.TenantID, d.Layer.ID, d.Layer.RemainingQty-d.Qty); err != nil {
					return err
				}
				entries = append(entries, newEntry(in, -d.Qty, d.Layer.UnitCost, -total, method, now))
			}

		case entity.MethodWeightedAverage:
			avg, err := averageRepo.GetForUpdate(ctx, in.TenantID, in.ProductID, in.LocationID)
			if err != nil {
				return err
			}
			if avg == nil {
				return domain.ErrInsufficientStock
			}
			unitCost, total, err := costing.ReduceOutbound(avg, in.Quantity, now)
			if err != nil {
				return err
			}
			if err := averageRepo.Upsert(ctx, avg); err != nil {
				return err
			}
			entries = append(entries, newEntry(in, -in.Quantity, unitCost, -total, entity.MethodWeightedAverageHalfUp, now))

		case entity.MethodStandard:
			std, err := standardRepo.Get(ctx, in.TenantID, in.ProductID)
			if err != nil {
				return err
			}
			if std == nil {
				return domain.ErrStandardCostMissing
			}
			total, err := costing.MulCents(in.Quantity, std.UnitCost)
			if err != nil {
				return err
			}
			entries = append(entries, newEntry(in, -in.Quantity, std.UnitCost, -total, method, now))

		default:
			return domain.ErrInvalidInput
		}

		for _, e := range entries {
			if err := entryRepo.Create(ctx, e); err != nil {
				return err
			}
		}
		result = entries
		return saveResult(ctx, idemRepo, in.TenantID, in.IdempotencyKey, opApplyOutbound, result, now)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func newEntry(in MovementInput, qty, unitCost, totalCost int64, method string, now time.Time) *entity.ValuationEntry {
	return &entity.ValuationEntry{
		ID:          uuid.New().String(),
		TenantID:    in.TenantID,
		MovementRef: in.MovementRef,
		ProductID:   in.ProductID,
		LocationID:  in.LocationID,
		Quantity:    qty,
		UnitCost:    unitCost,
		TotalCost:   totalCost,
		Method:      method,
		CreatedAt:   now,
	}
}
