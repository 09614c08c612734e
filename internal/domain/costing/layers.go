package costing

import (
	"sort"

	"github.com/jhoicas/costing-engine/internal/domain"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
)

// Draw cantidad a extraer de una capa concreta.
type Draw struct {
	Layer *entity.ValuationLayer
	Qty   int64
}

// PlanConsumption decide de qué capas y en qué cantidad se sirve una salida
// de qty unidades, sin mutar nada. Ordena por ReceivedAt ascendente (FIFO) o
// descendente (LIFO); a igual timestamp desempata por ID de capa ascendente
// para garantizar determinismo. Si la suma de remanentes no alcanza, falla
// con ErrInsufficientStock antes de planear extracción alguna.
func PlanConsumption(layers []*entity.ValuationLayer, qty int64, method string) ([]Draw, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidInput
	}

	var available int64
	for _, l := range layers {
		available += l.RemainingQty
	}
	if available < qty {
		return nil, domain.ErrInsufficientStock
	}

	ordered := make([]*entity.ValuationLayer, len(layers))
	copy(ordered, layers)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.ReceivedAt.Equal(b.ReceivedAt) {
			if method == entity.MethodLifo {
				return a.ReceivedAt.After(b.ReceivedAt)
			}
			return a.ReceivedAt.Before(b.ReceivedAt)
		}
		return a.ID < b.ID
	})

	var draws []Draw
	remaining := qty
	for _, l := range ordered {
		if remaining == 0 {
			break
		}
		if l.RemainingQty <= 0 {
			continue
		}
		take := l.RemainingQty
		if take > remaining {
			take = remaining
		}
		draws = append(draws, Draw{Layer: l, Qty: take})
		remaining -= take
	}
	return draws, nil
}
