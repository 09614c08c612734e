package costing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/costing-engine/internal/domain"
	"github.com/jhoicas/costing-engine/internal/domain/costing"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
)

func layer(id string, remaining, unitCost int64, receivedAt time.Time) *entity.ValuationLayer {
	return &entity.ValuationLayer{
		ID:           id,
		TenantID:     "t1",
		ProductID:    "p1",
		ReceivedQty:  remaining,
		RemainingQty: remaining,
		UnitCost:     unitCost,
		ReceivedAt:   receivedAt,
	}
}

// Escenario FIFO de referencia: entrada 10 @ 100 (capa A), entrada 5 @ 120
// (capa B); salida de 12 consume 10 de A y 2 de B, dejando B con 3.
func TestPlanConsumption_FifoEscenarioBase(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := layer("A", 10, 100, t0)
	b := layer("B", 5, 120, t0.Add(time.Hour))

	draws, err := costing.PlanConsumption([]*entity.ValuationLayer{b, a}, 12, entity.MethodFifo)
	require.NoError(t, err)
	require.Len(t, draws, 2)

	assert.Equal(t, "A", draws[0].Layer.ID)
	assert.Equal(t, int64(10), draws[0].Qty)
	assert.Equal(t, "B", draws[1].Layer.ID)
	assert.Equal(t, int64(2), draws[1].Qty)

	var totalCost int64
	for _, d := range draws {
		totalCost += d.Qty * d.Layer.UnitCost
	}
	assert.Equal(t, int64(1240), totalCost)
}

func TestPlanConsumption_LifoConsumeUltimaPrimero(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := layer("A", 10, 100, t0)
	b := layer("B", 5, 120, t0.Add(time.Hour))

	draws, err := costing.PlanConsumption([]*entity.ValuationLayer{a, b}, 7, entity.MethodLifo)
	require.NoError(t, err)
	require.Len(t, draws, 2)
	assert.Equal(t, "B", draws[0].Layer.ID)
	assert.Equal(t, int64(5), draws[0].Qty)
	assert.Equal(t, "A", draws[1].Layer.ID)
	assert.Equal(t, int64(2), draws[1].Qty)
}

// A igual timestamp el desempate es por ID ascendente, en ambos métodos.
func TestPlanConsumption_DesempatePorID(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	b := layer("B", 5, 120, t0)
	a := layer("A", 5, 100, t0)

	for _, method := range []string{entity.MethodFifo, entity.MethodLifo} {
		draws, err := costing.PlanConsumption([]*entity.ValuationLayer{b, a}, 6, method)
		require.NoError(t, err)
		require.Len(t, draws, 2, method)
		assert.Equal(t, "A", draws[0].Layer.ID, method)
	}
}

// La falta de stock se detecta antes de planear: todo o nada.
func TestPlanConsumption_StockInsuficiente(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := layer("A", 10, 100, t0)

	draws, err := costing.PlanConsumption([]*entity.ValuationLayer{a}, 11, entity.MethodFifo)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Nil(t, draws)
	assert.Equal(t, int64(10), a.RemainingQty, "la capa no debe mutarse")
}

func TestPlanConsumption_IgnoraCapasVacias(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	vacia := layer("A", 0, 100, t0)
	b := layer("B", 4, 110, t0.Add(time.Minute))

	draws, err := costing.PlanConsumption([]*entity.ValuationLayer{vacia, b}, 4, entity.MethodFifo)
	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.Equal(t, "B", draws[0].Layer.ID)
}

func TestPlanConsumption_CantidadInvalida(t *testing.T) {
	_, err := costing.PlanConsumption(nil, 0, entity.MethodFifo)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
