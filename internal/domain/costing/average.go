package costing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costing-engine/internal/domain"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
)

// Costo promedio ponderado (servicio de dominio).
// Entrada:  new_total_value = old_value + in_qty * in_unit_cost
// Salida:   total_value -= out_qty * costo_unitario_previo
// El costo unitario se redondea mitad hacia arriba al centavo: es la única
// fuente de deriva aritmética y queda documentada en el campo Method del
// asiento (weighted_average_half_up).

// AverageUnitCost costo unitario vigente, redondeado mitad hacia arriba.
// Con cantidad cero devuelve cero.
func AverageUnitCost(totalQty, totalValue int64) int64 {
	if totalQty <= 0 {
		return 0
	}
	// DivRound redondea mitad alejándose de cero; con montos no negativos
	// equivale a mitad hacia arriba. Sin floats en ningún punto.
	return decimal.NewFromInt(totalValue).
		DivRound(decimal.NewFromInt(totalQty), 0).
		IntPart()
}

// MergeInbound funde una entrada (qty unidades a unitCost) dentro del
// promedio. Muta el estado y devuelve el costo unitario resultante.
func MergeInbound(avg *entity.RunningAverage, qty, unitCost int64, now time.Time) (int64, error) {
	if qty <= 0 || unitCost < 0 {
		return 0, domain.ErrInvalidInput
	}
	inValue, err := MulCents(qty, unitCost)
	if err != nil {
		return 0, err
	}
	newValue, err := AddCents(avg.TotalValue, inValue)
	if err != nil {
		return 0, err
	}
	newQty, err := AddCents(avg.TotalQty, qty)
	if err != nil {
		return 0, err
	}
	avg.TotalQty = newQty
	avg.TotalValue = newValue
	avg.UpdatedAt = now
	return AverageUnitCost(newQty, newValue), nil
}

// ReduceOutbound descuenta una salida al costo unitario vigente antes del
// movimiento. Devuelve (costo unitario aplicado, costo total de la salida).
// Rechaza cantidades que dejarían existencias negativas.
func ReduceOutbound(avg *entity.RunningAverage, qty int64, now time.Time) (int64, int64, error) {
	if qty <= 0 {
		return 0, 0, domain.ErrInvalidInput
	}
	if qty > avg.TotalQty {
		return 0, 0, domain.ErrInsufficientStock
	}
	unitCost := AverageUnitCost(avg.TotalQty, avg.TotalValue)
	outValue, err := MulCents(qty, unitCost)
	if err != nil {
		return 0, 0, err
	}
	avg.TotalQty -= qty
	avg.TotalValue -= outValue
	if avg.TotalQty == 0 || avg.TotalValue < 0 {
		// La deriva de redondeo acumulada se absorbe al vaciar el estado.
		avg.TotalValue = 0
	}
	avg.UpdatedAt = now
	return unitCost, outValue, nil
}
