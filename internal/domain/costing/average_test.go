package costing_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/costing-engine/internal/domain"
	"github.com/jhoicas/costing-engine/internal/domain/costing"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
)

var now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newAvg() *entity.RunningAverage {
	return &entity.RunningAverage{TenantID: "t1", ProductID: "p1"}
}

// Entrada sobre estado vacío: el costo unitario es exactamente el de la entrada.
func TestMergeInbound_EstadoVacio(t *testing.T) {
	avg := newAvg()
	unit, err := costing.MergeInbound(avg, 10, 137, now)
	require.NoError(t, err)
	assert.Equal(t, int64(137), unit)
	assert.Equal(t, int64(10), avg.TotalQty)
	assert.Equal(t, int64(1370), avg.TotalValue)
}

// Cantidades iguales a costos c1 y c2: el promedio es round_half_up((c1+c2)/2).
func TestMergeInbound_PromedioMitadHaciaArriba(t *testing.T) {
	avg := newAvg()
	_, err := costing.MergeInbound(avg, 5, 100, now)
	require.NoError(t, err)
	unit, err := costing.MergeInbound(avg, 5, 101, now)
	require.NoError(t, err)
	// (100+101)/2 = 100.5 → 101
	assert.Equal(t, int64(101), unit)
}

func TestAverageUnitCost_RedondeoHalfUp(t *testing.T) {
	cases := []struct {
		qty, value, want int64
	}{
		{2, 201, 101}, // 100.5 → 101
		{3, 100, 33},  // 33.33 → 33
		{3, 200, 67},  // 66.67 → 67
		{4, 0, 0},
		{0, 123, 0}, // cantidad cero: sin costo vigente
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, costing.AverageUnitCost(tc.qty, tc.value))
	}
}

func TestReduceOutbound_UsaCostoPrevio(t *testing.T) {
	avg := newAvg()
	_, err := costing.MergeInbound(avg, 10, 100, now)
	require.NoError(t, err)

	unit, total, err := costing.ReduceOutbound(avg, 4, now)
	require.NoError(t, err)
	assert.Equal(t, int64(100), unit)
	assert.Equal(t, int64(400), total)
	assert.Equal(t, int64(6), avg.TotalQty)
	assert.Equal(t, int64(600), avg.TotalValue)
}

func TestReduceOutbound_StockInsuficiente(t *testing.T) {
	avg := newAvg()
	_, err := costing.MergeInbound(avg, 3, 100, now)
	require.NoError(t, err)

	_, _, err = costing.ReduceOutbound(avg, 4, now)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	// Sin efecto parcial.
	assert.Equal(t, int64(3), avg.TotalQty)
	assert.Equal(t, int64(300), avg.TotalValue)
}

// Al vaciar las existencias el valor residual de redondeo se absorbe a cero.
func TestReduceOutbound_VaciadoAbsorbeDeriva(t *testing.T) {
	avg := newAvg()
	_, err := costing.MergeInbound(avg, 3, 0, now)
	require.NoError(t, err)
	avg.TotalValue = 10 // 10 centavos entre 3 unidades: unitario 3

	_, _, err = costing.ReduceOutbound(avg, 3, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), avg.TotalQty)
	assert.Equal(t, int64(0), avg.TotalValue)
}

func TestMergeInbound_Desbordamiento(t *testing.T) {
	avg := newAvg()
	_, err := costing.MergeInbound(avg, math.MaxInt64, 2, now)
	assert.ErrorIs(t, err, domain.ErrAmountOverflow)
}

func TestMulCents_Desbordamiento(t *testing.T) {
	_, err := costing.MulCents(math.MaxInt64, 2)
	assert.ErrorIs(t, err, domain.ErrAmountOverflow)

	v, err := costing.MulCents(0, math.MaxInt64)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}
