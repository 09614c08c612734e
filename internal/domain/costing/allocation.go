package costing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costing-engine/internal/domain"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
)

// Allocate reparte amount centavos entre los objetivos en proporción a su
// valor, con reconciliación por mayor residuo: se asigna el piso de cada
// cuota y el resto (amount - suma de pisos) se distribuye de a un centavo a
// los objetivos con mayor parte fraccionaria, desempatando por ID de
// objetivo ascendente. La suma de cuotas es siempre exactamente amount.
//
// El resultado está alineado posicionalmente con targets. Falla con
// ErrInvalidInput si amount es negativo, algún valor es negativo o la base
// total es cero (división por cero).
func Allocate(amount int64, targets []entity.AllocationTarget) ([]int64, error) {
	if amount < 0 || len(targets) == 0 {
		return nil, domain.ErrInvalidInput
	}

	var totalValue int64
	for _, t := range targets {
		if t.Value < 0 {
			return nil, domain.ErrInvalidInput
		}
		v, err := AddCents(totalValue, t.Value)
		if err != nil {
			return nil, err
		}
		totalValue = v
	}
	if totalValue == 0 {
		return nil, domain.ErrInvalidInput
	}

	// Piso y residuo exactos por objetivo: amount*value y el cociente se
	// calculan con decimales (enteros escalados), nunca con floats. Todos
	// los residuos comparten denominador (totalValue), así que se comparan
	// directamente.
	totalDec := decimal.NewFromInt(totalValue)
	shares := make([]int64, len(targets))
	fractions := make([]decimal.Decimal, len(targets))
	var floorSum int64
	for i, t := range targets {
		product := decimal.NewFromInt(amount).Mul(decimal.NewFromInt(t.Value))
		quo, rem := product.QuoRem(totalDec, 0)
		shares[i] = quo.IntPart()
		fractions[i] = rem
		floorSum += shares[i]
	}

	remainder := amount - floorSum
	order := make([]int, len(targets))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		cmp := fractions[order[a]].Cmp(fractions[order[b]])
		if cmp != 0 {
			return cmp > 0 // mayor residuo primero
		}
		return targets[order[a]].TargetID < targets[order[b]].TargetID
	})
	for _, idx := range order {
		if remainder == 0 {
			break
		}
		shares[idx]++
		remainder--
	}
	return shares, nil
}
