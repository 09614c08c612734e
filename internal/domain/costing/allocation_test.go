package costing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/costing-engine/internal/domain"
	"github.com/jhoicas/costing-engine/internal/domain/costing"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
)

func targets(values ...int64) []entity.AllocationTarget {
	ts := make([]entity.AllocationTarget, len(values))
	for i, v := range values {
		ts[i] = entity.AllocationTarget{
			TargetType: entity.TargetTypeLayer,
			TargetID:   string(rune('a' + i)),
			Value:      v,
		}
	}
	return ts
}

// 100 centavos entre 3 objetivos de igual valor: pisos 33,33,33 y el centavo
// restante va al primer objetivo por ID entre residuos iguales.
func TestAllocate_RedondeoTresIguales(t *testing.T) {
	shares, err := costing.Allocate(100, targets(500, 500, 500))
	require.NoError(t, err)
	assert.Equal(t, []int64{34, 33, 33}, shares)
}

func TestAllocate_UnSoloObjetivo(t *testing.T) {
	shares, err := costing.Allocate(999, targets(1))
	require.NoError(t, err)
	assert.Equal(t, []int64{999}, shares)
}

func TestAllocate_MontoCero(t *testing.T) {
	shares, err := costing.Allocate(0, targets(100, 200))
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0}, shares)
}

func TestAllocate_BaseCeroEsError(t *testing.T) {
	_, err := costing.Allocate(100, targets(0, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAllocate_MontoNegativoEsError(t *testing.T) {
	_, err := costing.Allocate(-1, targets(100))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAllocate_SinObjetivosEsError(t *testing.T) {
	_, err := costing.Allocate(100, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// El mayor residuo recibe el centavo extra aunque su piso sea menor.
func TestAllocate_MayorResiduoPrimero(t *testing.T) {
	// 10 entre valores 1 y 2: exactas 3.33 y 6.67 → 3+7.
	shares, err := costing.Allocate(10, targets(1, 2))
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 7}, shares)
}

// Propiedad: para cualquier monto y distribución positiva, la suma de las
// cuotas es exactamente el monto de la línea.
func TestAllocate_SumaExacta(t *testing.T) {
	cases := []struct {
		name   string
		amount int64
		values []int64
	}{
		{"indivisible entre tres", 100, []int64{500, 500, 500}},
		{"valores dispares", 7, []int64{1, 3, 9}},
		{"monto uno", 1, []int64{123, 456, 789, 1011}},
		{"montos grandes", 9_999_999_999, []int64{3, 5, 7}},
		{"muchos objetivos", 1000, []int64{1, 1, 1, 1, 1, 1, 1}},
		{"un objetivo con valor residual", 250, []int64{999_999, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shares, err := costing.Allocate(tc.amount, targets(tc.values...))
			require.NoError(t, err)
			var sum int64
			for _, s := range shares {
				require.GreaterOrEqual(t, s, int64(0))
				sum += s
			}
			assert.Equal(t, tc.amount, sum, "las cuotas deben sumar el monto exacto")
		})
	}
}
