package costing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/costing-engine/internal/domain"
	"github.com/jhoicas/costing-engine/internal/domain/costing"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
	"github.com/jhoicas/costing-engine/internal/domain/repository"
)

// LandedCostDetail documento con sus líneas y asignaciones vigentes.
type LandedCostDetail struct {
	Doc         *entity.LandedCost
	Lines       []*entity.LandedCostLine
	Allocations []*entity.LandedCostAllocation
}

// LandedCostUseCase ciclo de vida de documentos de costos en destino:
// borrador, cómputo de asignaciones, contabilización y cancelación.
type LandedCostUseCase struct {
	txRunner TxRunner
	locker   Locker
	lcRepo   repository.LandedCostRepository
}

// NewLandedCostUseCase construye el caso de uso. lcRepo se usa para lecturas
// fuera de transacción (Get, List); las escrituras van por el TxRunner.
func NewLandedCostUseCase(txRunner TxRunner, locker Locker, lcRepo repository.LandedCostRepository) *LandedCostUseCase {
	return &LandedCostUseCase{txRunner: txRunner, locker: locker, lcRepo: lcRepo}
}

func landedCostLockKey(tenantID, id string) string {
	return fmt.Sprintf("costing:lc:%s:%s", tenantID, id)
}

// Create abre un documento en borrador contra una recepción.
func (uc *LandedCostUseCase) Create(ctx context.Context, tenantID, receiptRef string) (*entity.LandedCost, error) {
	if tenantID == "" || receiptRef == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	doc := &entity.LandedCost{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		Status:     entity.LandedCostDraft,
		ReceiptRef: receiptRef,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.lcRepo.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// AddLine agrega un cargo al borrador. Cualquier asignación previa queda
// invalidada: se borra y el documento exige un nuevo cómputo antes de
// contabilizar.
func (uc *LandedCostUseCase) AddLine(ctx context.Context, tenantID, landedCostID, costType string, amount int64) (*entity.LandedCostLine, error) {
	if tenantID == "" || landedCostID == "" || amount <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidCostType(costType) {
		return nil, domain.ErrInvalidInput
	}

	var line *entity.LandedCostLine
	err := uc.txRunner.RunLandedCost(ctx, func(
		lcRepo repository.LandedCostRepository,
		_ repository.ValuationSettingRepository,
		_ repository.ValuationLayerRepository,
		_ repository.RunningAverageRepository,
		_ repository.ValuationEntryRepository,
		_ repository.IdempotencyRepository,
	) error {
		doc, err := lcRepo.GetForUpdate(ctx, tenantID, landedCostID)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		if !doc.Modifiable() {
			return domain.ErrConflict
		}
		line = &entity.LandedCostLine{
			ID:               uuid.New().String(),
			TenantID:         tenantID,
			LandedCostID:     landedCostID,
			CostType:         costType,
			Amount:           amount,
			AllocationMethod: entity.AllocationByValue,
			CreatedAt:        time.Now().UTC(),
		}
		if err := lcRepo.AddLine(ctx, line); err != nil {
			return err
		}
		return lcRepo.ReplaceAllocations(ctx, tenantID, landedCostID, nil)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// Compute asigna cada línea sobre las capas de la recepción, ponderando por
// valor recibido (cantidad recibida por costo unitario) y reconciliando los
// centavos por resto mayor. Reemplaza las asignaciones anteriores.
func (uc *LandedCostUseCase) Compute(ctx context.Context, tenantID, landedCostID string) (*LandedCostDetail, error) {
	if tenantID == "" || landedCostID == "" {
		return nil, domain.ErrInvalidInput
	}

	unlock, err := uc.locker.Acquire(ctx, landedCostLockKey(tenantID, landedCostID))
	if err != nil {
		return nil, err
	}
	defer func() { _ = unlock(context.Background()) }()

	var detail *LandedCostDetail
	err = uc.txRunner.RunLandedCost(ctx, func(
		lcRepo repository.LandedCostRepository,
		_ repository.ValuationSettingRepository,
		layerRepo repository.ValuationLayerRepository,
		_ repository.RunningAverageRepository,
		_ repository.ValuationEntryRepository,
		_ repository.IdempotencyRepository,
	) error {
		doc, err := lcRepo.GetForUpdate(ctx, tenantID, landedCostID)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		if !doc.Modifiable() {
			return domain.ErrConflict
		}
		lines, err := lcRepo.ListLines(ctx, tenantID, landedCostID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domain.ErrInvalidInput
		}

		targets, err := receiptTargets(ctx, layerRepo, tenantID, doc.ReceiptRef)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		var allocs []*entity.LandedCostAllocation
		for _, line := range lines {
			amounts, err := costing.Allocate(line.Amount, targets)
			if err != nil {
				return err
			}
			for i, amt := range amounts {
				if amt == 0 {
					continue
				}
				allocs = append(allocs, &entity.LandedCostAllocation{
					ID:           uuid.New().String(),
					TenantID:     tenantID,
					LandedCostID: landedCostID,
					LineID:       line.ID,
					TargetType:   targets[i].TargetType,
					TargetID:     targets[i].TargetID,
					Amount:       amt,
					CreatedAt:    now,
				})
			}
		}
		if err := lcRepo.ReplaceAllocations(ctx, tenantID, landedCostID, allocs); err != nil {
			return err
		}
		detail = &LandedCostDetail{Doc: doc, Lines: lines, Allocations: allocs}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// receiptTargets arma los destinos de asignación desde las capas creadas por
// la recepción. El peso es el valor recibido, no el remanente: consumos
// posteriores no alteran cómo se reparte el cargo.
func receiptTargets(ctx context.Context, layerRepo repository.ValuationLayerRepository, tenantID, receiptRef string) ([]entity.AllocationTarget, error) {
	layers, err := layerRepo.ListByMovementRef(ctx, tenantID, receiptRef)
	if err != nil {
		return nil, err
	}
	if len(layers) == 0 {
		return nil, domain.ErrInvalidInput
	}
	targets := make([]entity.AllocationTarget, 0, len(layers))
	for _, l := range layers {
		value, err := costing.MulCents(l.ReceivedQty, l.UnitCost)
		if err != nil {
			return nil, err
		}
		targets = append(targets, entity.AllocationTarget{
			TargetType: entity.TargetTypeLayer,
			TargetID:   l.ID,
			Value:      value,
		})
	}
	return targets, nil
}

// Post contabiliza el documento: aplica cada asignación sobre su capa o
// promedio según el método del producto y emite asientos de ajuste. Un
// documento ya contabilizado es un no-op exitoso; uno cancelado es conflicto.
func (uc *LandedCostUseCase) Post(ctx context.Context, tenantID, landedCostID, idempotencyKey string) (*entity.LandedCost, error) {
	if tenantID == "" || landedCostID == "" {
		return nil, domain.ErrInvalidInput
	}

	unlock, err := uc.locker.Acquire(ctx, landedCostLockKey(tenantID, landedCostID))
	if err != nil {
		return nil, err
	}
	defer func() { _ = unlock(context.Background()) }()

	var posted *entity.LandedCost
	err = uc.txRunner.RunLandedCost(ctx, func(
		lcRepo repository.LandedCostRepository,
		settingRepo repository.ValuationSettingRepository,
		layerRepo repository.ValuationLayerRepository,
		averageRepo repository.RunningAverageRepository,
		entryRepo repository.ValuationEntryRepository,
		idemRepo repository.IdempotencyRepository,
	) error {
		doc, err := lcRepo.GetForUpdate(ctx, tenantID, landedCostID)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		switch doc.Status {
		case entity.LandedCostPosted:
			posted = doc
			return nil
		case entity.LandedCostCancelled:
			return domain.ErrConflict
		}

		// La operación grabada incluye el id del documento: reutilizar la
		// clave para contabilizar otro documento es conflicto, no replay.
		idemOp := fmt.Sprintf("%s:%s", opPostLandedCost, landedCostID)
		if idempotencyKey != "" {
			if prior, err := replayOrNil(ctx, idemRepo, tenantID, idempotencyKey, idemOp); err != nil {
				return err
			} else if prior != nil {
				posted = doc
				return nil
			}
		}

		lines, err := lcRepo.ListLines(ctx, tenantID, landedCostID)
		if err != nil {
			return err
		}
		allocs, err := lcRepo.ListAllocations(ctx, tenantID, landedCostID)
		if err != nil {
			return err
		}
		if err := checkCoverage(lines, allocs); err != nil {
			return err
		}

		// Orden fijo por destino para que transacciones concurrentes
		// adquieran los locks de fila en la misma secuencia.
		sort.Slice(allocs, func(i, j int) bool { return allocs[i].TargetID < allocs[j].TargetID })

		resolver := NewMethodResolver(settingRepo)
		now := time.Now().UTC()
		var entries []*entity.ValuationEntry
		for _, a := range allocs {
			layer, err := layerRepo.GetForUpdate(ctx, tenantID, a.TargetID)
			if err != nil {
				return err
			}
			if layer == nil {
				return domain.ErrNotFound
			}
			method, err := resolver.Resolve(ctx, tenantID, layer.ProductID, "")
			if err != nil {
				return err
			}

			entryMethod := method
			switch method {
			case entity.MethodFifo, entity.MethodLifo:
				delta := costing.AverageUnitCost(layer.ReceivedQty, a.Amount)
				newUnit, err := costing.AddCents(layer.UnitCost, delta)
				if err != nil {
					return err
				}
				if err := layerRepo.UpdateUnitCost(ctx, tenantID, layer.ID, newUnit); err != nil {
					return err
				}
			case entity.MethodWeightedAverage:
				entryMethod = entity.MethodWeightedAverageHalfUp
				avg, err := averageRepo.GetForUpdate(ctx, tenantID, layer.ProductID, layer.LocationID)
				if err != nil {
					return err
				}
				if avg == nil {
					avg = &entity.RunningAverage{
						TenantID:   tenantID,
						ProductID:  layer.ProductID,
						LocationID: layer.LocationID,
					}
				}
				newValue, err := costing.AddCents(avg.TotalValue, a.Amount)
				if err != nil {
					return err
				}
				avg.TotalValue = newValue
				avg.UpdatedAt = now
				if err := averageRepo.Upsert(ctx, avg); err != nil {
					return err
				}
			case entity.MethodStandard:
				// El costo estándar no se toca; la variación queda
				// registrada solo como asiento de ajuste.
			}

			entry := &entity.ValuationEntry{
				ID:          uuid.New().String(),
				TenantID:    tenantID,
				MovementRef: landedCostID,
				ProductID:   layer.ProductID,
				LocationID:  layer.LocationID,
				Quantity:    0,
				UnitCost:    0,
				TotalCost:   a.Amount,
				Method:      entryMethod,
				CreatedAt:   now,
			}
			if err := entryRepo.Create(ctx, entry); err != nil {
				return err
			}
			entries = append(entries, entry)
		}

		postedAt := now
		if err := lcRepo.UpdateStatus(ctx, tenantID, landedCostID, entity.LandedCostPosted, &postedAt); err != nil {
			return err
		}
		doc.Status = entity.LandedCostPosted
		doc.PostedAt = &postedAt
		doc.UpdatedAt = now
		posted = doc

		if idempotencyKey != "" {
			return saveResult(ctx, idemRepo, tenantID, idempotencyKey, idemOp, entries, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posted, nil
}

// checkCoverage exige que toda línea esté íntegramente asignada: la suma de
// sus asignaciones debe igualar el monto de la línea al centavo.
func checkCoverage(lines []*entity.LandedCostLine, allocs []*entity.LandedCostAllocation) error {
	if len(lines) == 0 || len(allocs) == 0 {
		return domain.ErrInvalidInput
	}
	sums := make(map[string]int64, len(lines))
	for _, a := range allocs {
		sums[a.LineID] += a.Amount
	}
	for _, line := range lines {
		if sums[line.ID] != line.Amount {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// Cancel anula un borrador. Un documento contabilizado no se puede cancelar.
func (uc *LandedCostUseCase) Cancel(ctx context.Context, tenantID, landedCostID string) error {
	if tenantID == "" || landedCostID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.RunLandedCost(ctx, func(
		lcRepo repository.LandedCostRepository,
		_ repository.ValuationSettingRepository,
		_ repository.ValuationLayerRepository,
		_ repository.RunningAverageRepository,
		_ repository.ValuationEntryRepository,
		_ repository.IdempotencyRepository,
	) error {
		doc, err := lcRepo.GetForUpdate(ctx, tenantID, landedCostID)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		if doc.Status != entity.LandedCostDraft {
			return domain.ErrConflict
		}
		return lcRepo.UpdateStatus(ctx, tenantID, landedCostID, entity.LandedCostCancelled, nil)
	})
}

// Get devuelve el documento con líneas y asignaciones.
func (uc *LandedCostUseCase) Get(ctx context.Context, tenantID, landedCostID string) (*LandedCostDetail, error) {
	if tenantID == "" || landedCostID == "" {
		return nil, domain.ErrInvalidInput
	}
	doc, err := uc.lcRepo.GetByID(ctx, tenantID, landedCostID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.lcRepo.ListLines(ctx, tenantID, landedCostID)
	if err != nil {
		return nil, err
	}
	allocs, err := uc.lcRepo.ListAllocations(ctx, tenantID, landedCostID)
	if err != nil {
		return nil, err
	}
	return &LandedCostDetail{Doc: doc, Lines: lines, Allocations: allocs}, nil
}

// List pagina los documentos del tenant, con filtro opcional por estado.
func (uc *LandedCostUseCase) List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.LandedCost, error) {
	if tenantID == "" {
		return nil, domain.ErrInvalidInput
	}
	if status != "" && status != entity.LandedCostDraft &&
		status != entity.LandedCostPosted && status != entity.LandedCostCancelled {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.lcRepo.List(ctx, tenantID, status, limit, offset)
}
