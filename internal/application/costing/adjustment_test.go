package costing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/costing-engine/internal/application/costing"
	"github.com/jhoicas/costing-engine/internal/domain"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
)

func adjust(product, ref, key string, amount int64) costing.CostAdjustmentInput {
	return costing.CostAdjustmentInput{
		TenantID:       testTenant,
		ProductID:      product,
		Amount:         amount,
		Reference:      ref,
		IdempotencyKey: key,
	}
}

func TestAdjustCost_FifoRepartePorValorRemanente(t *testing.T) {
	env := newTestEnv(t)
	env.configureDefault(t, entity.MethodFifo)
	ctx := context.Background()

	// Capas abiertas de 10 @ 100 (valor 1000) y 5 @ 120 (valor 600).
	_, err := env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-1", "k1", 10, 100))
	require.NoError(t, err)
	_, err = env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-2", "k2", 5, 120))
	require.NoError(t, err)

	entries, err := env.movements.AdjustCost(ctx, adjust("prod-1", "ADJ-1", "k3", 160))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(0), entries[0].Quantity)
	assert.Equal(t, int64(0), entries[0].UnitCost)
	assert.Equal(t, int64(160), entries[0].TotalCost)
	assert.Equal(t, "ADJ-1", entries[0].MovementRef)

	// Cuotas 100 y 60 sobre bases 1000/600: costos unitarios 110 y 132.
	layers, err := env.queries.ListLayers(ctx, testTenant, "prod-1", "")
	require.NoError(t, err)
	require.Len(t, layers, 2)
	unitPorCapa := map[int64]int64{}
	for _, l := range layers {
		unitPorCapa[l.ReceivedQty] = l.UnitCost
	}
	assert.Equal(t, int64(110), unitPorCapa[10])
	assert.Equal(t, int64(132), unitPorCapa[5])

	v, err := env.queries.GetValuation(ctx, testTenant, "prod-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(15), v.OnHandQty)
	assert.Equal(t, int64(1760), v.TotalValue)
}

func TestAdjustCost_PromedioSumaAlValorTotal(t *testing.T) {
	env := newTestEnv(t)
	env.configureDefault(t, entity.MethodWeightedAverage)
	ctx := context.Background()

	_, err := env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-1", "k1", 10, 100))
	require.NoError(t, err)

	entries, err := env.movements.AdjustCost(ctx, adjust("prod-1", "ADJ-1", "k2", 50))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.MethodWeightedAverageHalfUp, entries[0].Method)

	v, err := env.queries.GetValuation(ctx, testTenant, "prod-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(10), v.OnHandQty)
	assert.Equal(t, int64(1050), v.TotalValue)
	assert.Equal(t, int64(105), v.UnitCost)
}

func TestAdjustCost_RebajaNegativaConLimiteEnCero(t *testing.T) {
	env := newTestEnv(t)
	env.configureDefault(t, entity.MethodWeightedAverage)
	ctx := context.Background()

	_, err := env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-1", "k1", 10, 100))
	require.NoError(t, err)

	// Rebajar más que el valor acumulado no puede dejarlo negativo.
	_, err = env.movements.AdjustCost(ctx, adjust("prod-1", "ADJ-1", "k2", -2000))
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	// Una rebaja dentro del valor sí aplica.
	_, err = env.movements.AdjustCost(ctx, adjust("prod-1", "ADJ-2", "k3", -200))
	require.NoError(t, err)
	v, err := env.queries.GetValuation(ctx, testTenant, "prod-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(800), v.TotalValue)
}

func TestAdjustCost_SinPosicionEsNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.configureDefault(t, entity.MethodWeightedAverage)
	ctx := context.Background()

	_, err := env.movements.AdjustCost(ctx, adjust("prod-sin-stock", "ADJ-1", "k1", 50))
	require.ErrorIs(t, err, domain.ErrNotFound)

	env2 := newTestEnv(t)
	env2.configureDefault(t, entity.MethodFifo)
	_, err = env2.movements.AdjustCost(ctx, adjust("prod-sin-capas", "ADJ-1", "k1", 50))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustCost_EstandarSoloRegistraAsiento(t *testing.T) {
	env := newTestEnv(t)
	env.configureDefault(t, entity.MethodStandard)
	ctx := context.Background()

	_, err := env.settings.SetStandardCost(ctx, testTenant, "prod-1", 150)
	require.NoError(t, err)
	_, err = env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-1", "k1", 10, 150))
	require.NoError(t, err)

	entries, err := env.movements.AdjustCost(ctx, adjust("prod-1", "ADJ-1", "k2", 75))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.MethodStandard, entries[0].Method)

	// El costo estándar configurado no cambia; el ajuste vive en el libro.
	std, err := env.settings.GetStandardCost(ctx, testTenant, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, int64(150), std.UnitCost)

	v, err := env.queries.GetValuation(ctx, testTenant, "prod-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(10), v.OnHandQty)
	assert.Equal(t, int64(1575), v.TotalValue)
}

func TestAdjustCost_ReplayYClaveReutilizada(t *testing.T) {
	env := newTestEnv(t)
	env.configureDefault(t, entity.MethodWeightedAverage)
	ctx := context.Background()

	_, err := env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-1", "k1", 10, 100))
	require.NoError(t, err)
	_, err = env.movements.ApplyInbound(ctx, inbound("prod-2", "REC-2", "k2", 10, 100))
	require.NoError(t, err)

	primero, err := env.movements.AdjustCost(ctx, adjust("prod-1", "ADJ-1", "k3", 50))
	require.NoError(t, err)

	// Reintento con la misma clave: replay, sin doble efecto.
	replay, err := env.movements.AdjustCost(ctx, adjust("prod-1", "ADJ-1", "k3", 50))
	require.NoError(t, err)
	assert.Equal(t, primero[0].ID, replay[0].ID)
	v, err := env.queries.GetValuation(ctx, testTenant, "prod-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1050), v.TotalValue)

	// La misma clave sobre otro producto es conflicto, no replay.
	_, err = env.movements.AdjustCost(ctx, adjust("prod-2", "ADJ-2", "k3", 50))
	require.ErrorIs(t, err, domain.ErrConflict)

	// Entrada de validación: monto cero.
	_, err = env.movements.AdjustCost(ctx, adjust("prod-1", "ADJ-3", "k4", 0))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
