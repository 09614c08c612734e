package costing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/costing-engine/internal/application/costing"
	"github.com/jhoicas/costing-engine/internal/domain"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
	"github.com/jhoicas/costing-engine/internal/infrastructure/memory"
)

const testTenant = "tenant-a"

// testEnv ambiente de prueba: almacén en memoria con todos los casos de uso
// cableados igual que en main.
type testEnv struct {
	store      *memory.Store
	movements  *costing.ApplyMovementUseCase
	landedCost *costing.LandedCostUseCase
	settings   *costing.SettingsUseCase
	queries    *costing.ValuationQueryUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	txRunner := memory.NewTxRunner(store)
	locker := memory.NewLocker()
	settingRepo := memory.NewValuationSettingRepository(store)
	standardRepo := memory.NewStandardCostRepository(store)
	resolver := costing.NewMethodResolver(settingRepo)
	return &testEnv{
		store:      store,
		movements:  costing.NewApplyMovementUseCase(txRunner, locker, resolver),
		landedCost: costing.NewLandedCostUseCase(txRunner, locker, memory.NewLandedCostRepository(store)),
		settings:   costing.NewSettingsUseCase(settingRepo, standardRepo),
		queries: costing.NewValuationQueryUseCase(
			resolver,
			memory.NewValuationLayerRepository(store),
			memory.NewRunningAverageRepository(store),
			memory.NewValuationEntryRepository(store),
		),
	}
}

func (e *testEnv) configureDefault(t *testing.T, method string) {
	t.Helper()
	_, err := e.settings.ConfigureMethod(context.Background(), testTenant, entity.ScopeTenantDefault, "", method)
	require.NoError(t, err)
}

func cents(v int64) *int64 { return &v }

func inbound(product, ref, key string, qty, unitCost int64) costing.MovementInput {
	return costing.MovementInput{
		TenantID:       testTenant,
		ProductID:      product,
		Quantity:       qty,
		UnitCost:       cents(unitCost),
		MovementRef:    ref,
		IdempotencyKey: key,
	}
}

func outbound(product, ref, key string, qty int64) costing.MovementInput {
	return costing.MovementInput{
		TenantID:       testTenant,
		ProductID:      product,
		Quantity:       qty,
		MovementRef:    ref,
		IdempotencyKey: key,
	}
}

func TestApplyInbound_FifoCreaCapaYAsiento(t *testing.T) {
	env := newTestEnv(t)
	env.configureDefault(t, entity.MethodFifo)
	ctx := context.Background()

	entries, err := env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-1", "k1", 10, 100))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(10), entries[0].Quantity)
	assert.Equal(t, int64(100), entries[0].UnitCost)
	assert.Equal(t, int64(1000), entries[0].TotalCost)
	assert.Equal(t, entity.MethodFifo, entries[0].Method)

	layers, err := env.queries.ListLayers(ctx, testTenant, "prod-1", "")
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, int64(10), layers[0].ReceivedQty)
	assert.Equal(t, int64(10), layers[0].RemainingQty)
	assert.Equal(t, "REC-1", layers[0].MovementRef)
}

func TestApplyOutbound_FifoConsumeEnOrdenDeRecepcion(t *testing.T) {
	env := newTestEnv(t)
	env.configureDefault(t, entity.MethodFifo)
	ctx := context.Background()

	_, err := env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-1", "k1", 10, 100))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond) // garantiza received_at distinto
	_, err = env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-2", "k2", 5, 120))
	require.NoError(t, err)

	entries, err := env.movements.ApplyOutbound(ctx, outbound("prod-1", "OUT-1", "k3", 12))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// 10 @ 100 de la primera capa, 2 @ 120 de la segunda: total 1240.
	assert.Equal(t, int64(-10), entries[0].Quantity)
	assert.Equal(t, int64(100), entries[0].UnitCost)
	assert.Equal(t, int64(-2), entries[1].Quantity)
	assert.Equal(t, int64(120), entries[1].UnitCost)

	var total int64
	for _, e := range entries {
		total += e.TotalCost
	}
	assert.Equal(t, int64(-1240), total)

	v, err := env.queries.GetValuation(ctx, testTenant, "prod-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.OnHandQty)
	assert.Equal(t, int64(360), v.TotalValue)
}

func TestApplyOutbound_LifoConsumeUltimaCapaPrimero(t *testing.T) {
	env := newTestEnv(t)
	env.configureDefault(t, entity.MethodLifo)
	ctx := context.Background()

	_, err := env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-1", "k1", 10, 100))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-2", "k2", 5, 120))
	require.NoError(t, err)

	entries, err := env.movements.ApplyOutbound(ctx, outbound("prod-1", "OUT-1", "k3", 7))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// 5 @ 120 de la última capa, 2 @ 100 de la primera.
	assert.Equal(t, int64(-5), entries[0].Quantity)
	assert.Equal(t, int64(120), entries[0].UnitCost)
	assert.Equal(t, int64(-2), entries[1].Quantity)
	assert.Equal(t, int64(100), entries[1].UnitCost)
}

func TestApplyOutbound_StockInsuficienteSinEfectoParcial(t *testing.T) {
	env := newTestEnv(t)
	env.configureDefault(t, entity.MethodFifo)
	ctx := context.Background()

	_, err := env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-1", "k1", 10, 100))
	require.NoError(t, err)

	_, err = env.movements.ApplyOutbound(ctx, outbound("prod-1", "OUT-1", "k2", 11))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// La capa no se tocó y no hay asiento de salida.
	layers, err := env.queries.ListLayers(ctx, testTenant, "prod-1", "")
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, int64(10), layers[0].RemainingQty)

	entries, err := env.queries.ListEntries(ctx, testTenant, "prod-1", 50, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestApplyInbound_ReplayIdempotenteDevuelveResultadoOriginal(t *testing.T) {
	env := newTestEnv(t)
	env.configureDefault(t, entity.MethodFifo)
	ctx := context.Background()

	first, err := env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-1", "k1", 10, 100))
	require.NoError(t, err)

	second, err := env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-1", "k1", 10, 100))
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)

	// Una sola capa: el reintento no duplicó el efecto.
	layers, err := env.queries.ListLayers(ctx, testTenant, "prod-1", "")
	require.NoError(t, err)
	assert.Len(t, layers, 1)
}

func TestApplyMovement_ClaveReutilizadaConOtraOperacionEsConflicto(t *testing.T) {
	env := newTestEnv(t)
	env.configureDefault(t, entity.MethodFifo)
	ctx := context.Background()

	_, err := env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-1", "k1", 10, 100))
	require.NoError(t, err)

	_, err = env.movements.ApplyOutbound(ctx, outbound("prod-1", "OUT-1", "k1", 5))
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestApplyMovement_PromedioPonderadoConRedondeoHalfUp(t *testing.T) {
	env := newTestEnv(t)
	env.configureDefault(t, entity.MethodWeightedAverage)
	ctx := context.Background()

	_, err := env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-1", "k1", 5, 100))
	require.NoError(t, err)
	_, err = env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-2", "k2", 5, 101))
	require.NoError(t, err)

	// Estado: 10 unidades, 1005 centavos. Promedio 100.5 → 101 (half-up).
	entries, err := env.movements.ApplyOutbound(ctx, outbound("prod-1", "OUT-1", "k3", 4))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(101), entries[0].UnitCost)
	assert.Equal(t, int64(-404), entries[0].TotalCost)
	assert.Equal(t, entity.MethodWeightedAverageHalfUp, entries[0].Method)

	v, err := env.queries.GetValuation(ctx, testTenant, "prod-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(6), v.OnHandQty)
	assert.Equal(t, int64(601), v.TotalValue)
}

func TestApplyMovement_PromedioVaciadoQuedaEnCero(t *testing.T) {
	env := newTestEnv(t)
	env.configureDefault(t, entity.MethodWeightedAverage)
	ctx := context.Background()

	_, err := env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-1", "k1", 3, 100))
	require.NoError(t, err)
	_, err = env.movements.ApplyOutbound(ctx, outbound("prod-1", "OUT-1", "k2", 3))
	require.NoError(t, err)

	v, err := env.queries.GetValuation(ctx, testTenant, "prod-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.OnHandQty)
	assert.Equal(t, int64(0), v.TotalValue)
}

func TestApplyMovement_EstandarValoraAlCostoConfigurado(t *testing.T) {
	env := newTestEnv(t)
	env.configureDefault(t, entity.MethodStandard)
	ctx := context.Background()

	_, err := env.settings.SetStandardCost(ctx, testTenant, "prod-1", 150)
	require.NoError(t, err)

	// La entrada se valora al estándar aunque el costo real difiera.
	entries, err := env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-1", "k1", 4, 170))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(150), entries[0].UnitCost)
	assert.Equal(t, int64(600), entries[0].TotalCost)

	out, err := env.movements.ApplyOutbound(ctx, outbound("prod-1", "OUT-1", "k2", 1))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(-150), out[0].TotalCost)
}

func TestApplyInbound_EstandarSinCostoDefinido(t *testing.T) {
	env := newTestEnv(t)
	env.configureDefault(t, entity.MethodStandard)

	_, err := env.movements.ApplyInbound(context.Background(), inbound("prod-1", "REC-1", "k1", 4, 170))
	require.ErrorIs(t, err, domain.ErrStandardCostMissing)
}

func TestApplyInbound_SinMetodoConfigurado(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.movements.ApplyInbound(context.Background(), inbound("prod-1", "REC-1", "k1", 1, 100))
	require.ErrorIs(t, err, domain.ErrMethodNotConfigured)
}

func TestApplyInbound_ValidacionDeEntrada(t *testing.T) {
	env := newTestEnv(t)
	env.configureDefault(t, entity.MethodFifo)
	ctx := context.Background()

	casos := []costing.MovementInput{
		{TenantID: testTenant, ProductID: "p", Quantity: 0, UnitCost: cents(1), MovementRef: "m", IdempotencyKey: "k"},
		{TenantID: testTenant, ProductID: "p", Quantity: -1, UnitCost: cents(1), MovementRef: "m", IdempotencyKey: "k"},
		{TenantID: testTenant, ProductID: "p", Quantity: 1, MovementRef: "m", IdempotencyKey: "k"}, // sin unit_cost
		{TenantID: testTenant, ProductID: "p", Quantity: 1, UnitCost: cents(1), IdempotencyKey: "k"},
		{TenantID: testTenant, ProductID: "p", Quantity: 1, UnitCost: cents(1), MovementRef: "m"},
		{TenantID: "", ProductID: "p", Quantity: 1, UnitCost: cents(1), MovementRef: "m", IdempotencyKey: "k"},
	}
	for _, in := range casos {
		_, err := env.movements.ApplyInbound(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestResolver_PrecedenciaProductoCategoriaDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.configureDefault(t, entity.MethodStandard)
	_, err := env.settings.ConfigureMethod(ctx, testTenant, entity.ScopeCategory, "cat-1", entity.MethodWeightedAverage)
	require.NoError(t, err)
	_, err = env.settings.ConfigureMethod(ctx, testTenant, entity.ScopeProduct, "prod-1", entity.MethodFifo)
	require.NoError(t, err)

	method, err := env.settings.GetMethod(ctx, testTenant, "prod-1", "cat-1")
	require.NoError(t, err)
	assert.Equal(t, entity.MethodFifo, method)

	method, err = env.settings.GetMethod(ctx, testTenant, "prod-2", "cat-1")
	require.NoError(t, err)
	assert.Equal(t, entity.MethodWeightedAverage, method)

	method, err = env.settings.GetMethod(ctx, testTenant, "prod-3", "")
	require.NoError(t, err)
	assert.Equal(t, entity.MethodStandard, method)
}

func TestConfigureMethod_ValidaAlcanceYMetodo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.settings.ConfigureMethod(ctx, testTenant, entity.ScopeTenantDefault, "algo", entity.MethodFifo)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.settings.ConfigureMethod(ctx, testTenant, entity.ScopeProduct, "", entity.MethodFifo)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.settings.ConfigureMethod(ctx, testTenant, entity.ScopeProduct, "prod-1", "promedio")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.settings.SetStandardCost(ctx, testTenant, "prod-1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAislamientoEntreTenants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.configureDefault(t, entity.MethodFifo)
	_, err := env.movements.ApplyInbound(ctx, inbound("prod-1", "REC-1", "k1", 10, 100))
	require.NoError(t, err)

	// Otro tenant no ve capas ni configuración del primero.
	layers, err := env.queries.ListLayers(ctx, "tenant-b", "prod-1", "")
	require.NoError(t, err)
	assert.Empty(t, layers)

	_, err = env.queries.GetValuation(ctx, "tenant-b", "prod-1", "", "")
	require.ErrorIs(t, err, domain.ErrMethodNotConfigured)
}
