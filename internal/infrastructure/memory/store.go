// Package memory implementa los puertos del motor de costeo sobre mapas en
// memoria. Pensado para tests y desarrollo local: las transacciones se
// simulan con snapshot y restauración del estado completo bajo un mutex.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/costing-engine/internal/application/costing"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
	"github.com/jhoicas/costing-engine/internal/domain/repository"
)

type settingKey struct{ tenant, scopeKind, scopeTarget string }
type productKey struct{ tenant, product string }
type scopeKey struct{ tenant, product, location string }
type idemKey struct{ tenant, key string }

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	mu sync.Mutex

	settings  map[settingKey]*entity.ValuationSetting
	standards map[productKey]*entity.StandardCost
	layers    map[string]*entity.ValuationLayer
	averages  map[scopeKey]*entity.RunningAverage
	entries   []*entity.ValuationEntry
	idem      map[idemKey]*entity.IdempotencyRecord

	landedCosts map[string]*entity.LandedCost
	lcLines     map[string][]*entity.LandedCostLine
	lcAllocs    map[string][]*entity.LandedCostAllocation
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		settings:    make(map[settingKey]*entity.ValuationSetting),
		standards:   make(map[productKey]*entity.StandardCost),
		layers:      make(map[string]*entity.ValuationLayer),
		averages:    make(map[scopeKey]*entity.RunningAverage),
		idem:        make(map[idemKey]*entity.IdempotencyRecord),
		landedCosts: make(map[string]*entity.LandedCost),
		lcLines:     make(map[string][]*entity.LandedCostLine),
		lcAllocs:    make(map[string][]*entity.LandedCostAllocation),
	}
}

type snapshot struct {
	settings    map[settingKey]*entity.ValuationSetting
	standards   map[productKey]*entity.StandardCost
	layers      map[string]*entity.ValuationLayer
	averages    map[scopeKey]*entity.RunningAverage
	entries     []*entity.ValuationEntry
	idem        map[idemKey]*entity.IdempotencyRecord
	landedCosts map[string]*entity.LandedCost
	lcLines     map[string][]*entity.LandedCostLine
	lcAllocs    map[string][]*entity.LandedCostAllocation
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		settings:    make(map[settingKey]*entity.ValuationSetting, len(s.settings)),
		standards:   make(map[productKey]*entity.StandardCost, len(s.standards)),
		layers:      make(map[string]*entity.ValuationLayer, len(s.layers)),
		averages:    make(map[scopeKey]*entity.RunningAverage, len(s.averages)),
		entries:     make([]*entity.ValuationEntry, len(s.entries)),
		idem:        make(map[idemKey]*entity.IdempotencyRecord, len(s.idem)),
		landedCosts: make(map[string]*entity.LandedCost, len(s.landedCosts)),
		lcLines:     make(map[string][]*entity.LandedCostLine, len(s.lcLines)),
		lcAllocs:    make(map[string][]*entity.LandedCostAllocation, len(s.lcAllocs)),
	}
	for k, v := range s.settings {
		c := *v
		snap.settings[k] = &c
	}
	for k, v := range s.standards {
		c := *v
		snap.standards[k] = &c
	}
	for k, v := range s.layers {
		c := *v
		snap.layers[k] = &c
	}
	for k, v := range s.averages {
		c := *v
		snap.averages[k] = &c
	}
	copy(snap.entries, s.entries)
	for k, v := range s.idem {
		c := *v
		snap.idem[k] = &c
	}
	for k, v := range s.landedCosts {
		c := *v
		snap.landedCosts[k] = &c
	}
	for k, v := range s.lcLines {
		lines := make([]*entity.LandedCostLine, len(v))
		for i, l := range v {
			c := *l
			lines[i] = &c
		}
		snap.lcLines[k] = lines
	}
	for k, v := range s.lcAllocs {
		allocs := make([]*entity.LandedCostAllocation, len(v))
		for i, a := range v {
			c := *a
			allocs[i] = &c
		}
		snap.lcAllocs[k] = allocs
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.settings = snap.settings
	s.standards = snap.standards
	s.layers = snap.layers
	s.averages = snap.averages
	s.entries = snap.entries
	s.idem = snap.idem
	s.landedCosts = snap.landedCosts
	s.lcLines = snap.lcLines
	s.lcAllocs = snap.lcAllocs
}

// --- TxRunner ---

// TxRunner corre la función bajo el mutex del almacén; si devuelve error,
// restaura el snapshot previo (rollback).
type TxRunner struct {
	store *Store
}

// NewTxRunner crea el runner transaccional en memoria.
func NewTxRunner(store *Store) *TxRunner { return &TxRunner{store: store} }

func (r *TxRunner) run(fn func() error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	snap := r.store.snapshot()
	if err := fn(); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

// Run implementa costing.TxRunner.
func (r *TxRunner) Run(_ context.Context, fn func(
	repository.ValuationSettingRepository,
	repository.StandardCostRepository,
	repository.ValuationLayerRepository,
	repository.RunningAverageRepository,
	repository.ValuationEntryRepository,
	repository.IdempotencyRepository,
) error) error {
	return r.run(func() error {
		return fn(
			&ValuationSettingRepository{store: r.store, locked: true},
			&StandardCostRepository{store: r.store, locked: true},
			&ValuationLayerRepository{store: r.store, locked: true},
			&RunningAverageRepository{store: r.store, locked: true},
			&ValuationEntryRepository{store: r.store, locked: true},
			&IdempotencyRepository{store: r.store, locked: true},
		)
	})
}

// RunLandedCost implementa costing.TxRunner.
func (r *TxRunner) RunLandedCost(_ context.Context, fn func(
	repository.LandedCostRepository,
	repository.ValuationSettingRepository,
	repository.ValuationLayerRepository,
	repository.RunningAverageRepository,
	repository.ValuationEntryRepository,
	repository.IdempotencyRepository,
) error) error {
	return r.run(func() error {
		return fn(
			&LandedCostRepository{store: r.store, locked: true},
			&ValuationSettingRepository{store: r.store, locked: true},
			&ValuationLayerRepository{store: r.store, locked: true},
			&RunningAverageRepository{store: r.store, locked: true},
			&ValuationEntryRepository{store: r.store, locked: true},
			&IdempotencyRepository{store: r.store, locked: true},
		)
	})
}

// Locker no-op: en memoria la exclusión la da el mutex del TxRunner.
type Locker struct{}

// NewLocker crea el locker no-op.
func NewLocker() *Locker { return &Locker{} }

// Acquire implementa costing.Locker sin bloquear nada.
func (l *Locker) Acquire(context.Context, string) (costing.Unlocker, error) {
	return func(context.Context) error { return nil }, nil
}

// lock toma el mutex solo fuera de transacción; dentro ya lo sostiene el runner.
func lock(s *Store, locked bool) func() {
	if locked {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// --- Repositorios ---

type ValuationSettingRepository struct {
	store  *Store
	locked bool
}

func NewValuationSettingRepository(store *Store) *ValuationSettingRepository {
	return &ValuationSettingRepository{store: store}
}

func (r *ValuationSettingRepository) Get(_ context.Context, tenantID, scopeKind, scopeTarget string) (*entity.ValuationSetting, error) {
	defer lock(r.store, r.locked)()
	if s, ok := r.store.settings[settingKey{tenantID, scopeKind, scopeTarget}]; ok {
		c := *s
		return &c, nil
	}
	return nil, nil
}

func (r *ValuationSettingRepository) Upsert(_ context.Context, setting *entity.ValuationSetting) error {
	defer lock(r.store, r.locked)()
	c := *setting
	r.store.settings[settingKey{setting.TenantID, setting.ScopeKind, setting.ScopeTarget}] = &c
	return nil
}

type StandardCostRepository struct {
	store  *Store
	locked bool
}

func NewStandardCostRepository(store *Store) *StandardCostRepository {
	return &StandardCostRepository{store: store}
}

func (r *StandardCostRepository) Get(_ context.Context, tenantID, productID string) (*entity.StandardCost, error) {
	defer lock(r.store, r.locked)()
	if s, ok := r.store.standards[productKey{tenantID, productID}]; ok {
		c := *s
		return &c, nil
	}
	return nil, nil
}

func (r *StandardCostRepository) Upsert(_ context.Context, cost *entity.StandardCost) error {
	defer lock(r.store, r.locked)()
	c := *cost
	r.store.standards[productKey{cost.TenantID, cost.ProductID}] = &c
	return nil
}

type ValuationLayerRepository struct {
	store  *Store
	locked bool
}

func NewValuationLayerRepository(store *Store) *ValuationLayerRepository {
	return &ValuationLayerRepository{store: store}
}

func (r *ValuationLayerRepository) Create(_ context.Context, layer *entity.ValuationLayer) error {
	defer lock(r.store, r.locked)()
	c := *layer
	r.store.layers[layer.ID] = &c
	return nil
}

func (r *ValuationLayerRepository) listFiltered(match func(*entity.ValuationLayer) bool) []*entity.ValuationLayer {
	var out []*entity.ValuationLayer
	for _, l := range r.store.layers {
		if match(l) {
			c := *l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *ValuationLayerRepository) ListForUpdate(_ context.Context, tenantID, productID, locationID string) ([]*entity.ValuationLayer, error) {
	defer lock(r.store, r.locked)()
	return r.listFiltered(func(l *entity.ValuationLayer) bool {
		return l.TenantID == tenantID && l.ProductID == productID && l.LocationID == locationID && l.RemainingQty > 0
	}), nil
}

func (r *ValuationLayerRepository) ListByProduct(_ context.Context, tenantID, productID, locationID string) ([]*entity.ValuationLayer, error) {
	defer lock(r.store, r.locked)()
	return r.listFiltered(func(l *entity.ValuationLayer) bool {
		return l.TenantID == tenantID && l.ProductID == productID && l.LocationID == locationID
	}), nil
}

func (r *ValuationLayerRepository) ListByMovementRef(_ context.Context, tenantID, movementRef string) ([]*entity.ValuationLayer, error) {
	defer lock(r.store, r.locked)()
	return r.listFiltered(func(l *entity.ValuationLayer) bool {
		return l.TenantID == tenantID && l.MovementRef == movementRef
	}), nil
}

func (r *ValuationLayerRepository) GetForUpdate(_ context.Context, tenantID, layerID string) (*entity.ValuationLayer, error) {
	defer lock(r.store, r.locked)()
	if l, ok := r.store.layers[layerID]; ok && l.TenantID == tenantID {
		c := *l
		return &c, nil
	}
	return nil, nil
}

func (r *ValuationLayerRepository) UpdateRemaining(_ context.Context, tenantID, layerID string, remaining int64) error {
	defer lock(r.store, r.locked)()
	if l, ok := r.store.layers[layerID]; ok && l.TenantID == tenantID {
		l.RemainingQty = remaining
	}
	return nil
}

func (r *ValuationLayerRepository) UpdateUnitCost(_ context.Context, tenantID, layerID string, unitCost int64) error {
	defer lock(r.store, r.locked)()
	if l, ok := r.store.layers[layerID]; ok && l.TenantID == tenantID {
		l.UnitCost = unitCost
	}
	return nil
}

type RunningAverageRepository struct {
	store  *Store
	locked bool
}

func NewRunningAverageRepository(store *Store) *RunningAverageRepository {
	return &RunningAverageRepository{store: store}
}

func (r *RunningAverageRepository) Get(_ context.Context, tenantID, productID, locationID string) (*entity.RunningAverage, error) {
	defer lock(r.store, r.locked)()
	if a, ok := r.store.averages[scopeKey{tenantID, productID, locationID}]; ok {
		c := *a
		return &c, nil
	}
	return nil, nil
}

func (r *RunningAverageRepository) GetForUpdate(ctx context.Context, tenantID, productID, locationID string) (*entity.RunningAverage, error) {
	return r.Get(ctx, tenantID, productID, locationID)
}

func (r *RunningAverageRepository) Upsert(_ context.Context, avg *entity.RunningAverage) error {
	defer lock(r.store, r.locked)()
	c := *avg
	r.store.averages[scopeKey{avg.TenantID, avg.ProductID, avg.LocationID}] = &c
	return nil
}

type ValuationEntryRepository struct {
	store  *Store
	locked bool
}

func NewValuationEntryRepository(store *Store) *ValuationEntryRepository {
	return &ValuationEntryRepository{store: store}
}

func (r *ValuationEntryRepository) Create(_ context.Context, entry *entity.ValuationEntry) error {
	defer lock(r.store, r.locked)()
	c := *entry
	r.store.entries = append(r.store.entries, &c)
	return nil
}

func (r *ValuationEntryRepository) ListByProduct(_ context.Context, tenantID, productID string, limit, offset int) ([]*entity.ValuationEntry, error) {
	defer lock(r.store, r.locked)()
	var all []*entity.ValuationEntry
	for _, e := range r.store.entries {
		if e.TenantID == tenantID && e.ProductID == productID {
			c := *e
			all = append(all, &c)
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *ValuationEntryRepository) SumByProduct(_ context.Context, tenantID, productID string) (int64, int64, error) {
	defer lock(r.store, r.locked)()
	var qty, value int64
	for _, e := range r.store.entries {
		if e.TenantID == tenantID && e.ProductID == productID {
			qty += e.Quantity
			value += e.TotalCost
		}
	}
	return qty, value, nil
}

type IdempotencyRepository struct {
	store  *Store
	locked bool
}

func NewIdempotencyRepository(store *Store) *IdempotencyRepository {
	return &IdempotencyRepository{store: store}
}

func (r *IdempotencyRepository) Get(_ context.Context, tenantID, key string) (*entity.IdempotencyRecord, error) {
	defer lock(r.store, r.locked)()
	if rec, ok := r.store.idem[idemKey{tenantID, key}]; ok {
		c := *rec
		return &c, nil
	}
	return nil, nil
}

func (r *IdempotencyRepository) Save(_ context.Context, record *entity.IdempotencyRecord) error {
	defer lock(r.store, r.locked)()
	c := *record
	r.store.idem[idemKey{record.TenantID, record.Key}] = &c
	return nil
}

type LandedCostRepository struct {
	store  *Store
	locked bool
}

func NewLandedCostRepository(store *Store) *LandedCostRepository {
	return &LandedCostRepository{store: store}
}

func (r *LandedCostRepository) Create(_ context.Context, lc *entity.LandedCost) error {
	defer lock(r.store, r.locked)()
	c := *lc
	r.store.landedCosts[lc.ID] = &c
	return nil
}

func (r *LandedCostRepository) GetByID(_ context.Context, tenantID, id string) (*entity.LandedCost, error) {
	defer lock(r.store, r.locked)()
	if lc, ok := r.store.landedCosts[id]; ok && lc.TenantID == tenantID {
		c := *lc
		return &c, nil
	}
	return nil, nil
}

func (r *LandedCostRepository) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.LandedCost, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *LandedCostRepository) UpdateStatus(_ context.Context, tenantID, id, status string, postedAt *time.Time) error {
	defer lock(r.store, r.locked)()
	if lc, ok := r.store.landedCosts[id]; ok && lc.TenantID == tenantID {
		lc.Status = status
		lc.PostedAt = postedAt
		lc.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *LandedCostRepository) List(_ context.Context, tenantID, status string, limit, offset int) ([]*entity.LandedCost, error) {
	defer lock(r.store, r.locked)()
	var all []*entity.LandedCost
	for _, lc := range r.store.landedCosts {
		if lc.TenantID != tenantID {
			continue
		}
		if status != "" && lc.Status != status {
			continue
		}
		c := *lc
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *LandedCostRepository) AddLine(_ context.Context, line *entity.LandedCostLine) error {
	defer lock(r.store, r.locked)()
	c := *line
	r.store.lcLines[line.LandedCostID] = append(r.store.lcLines[line.LandedCostID], &c)
	return nil
}

func (r *LandedCostRepository) ListLines(_ context.Context, tenantID, landedCostID string) ([]*entity.LandedCostLine, error) {
	defer lock(r.store, r.locked)()
	var out []*entity.LandedCostLine
	for _, l := range r.store.lcLines[landedCostID] {
		if l.TenantID == tenantID {
			c := *l
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *LandedCostRepository) ReplaceAllocations(_ context.Context, _, landedCostID string, allocs []*entity.LandedCostAllocation) error {
	defer lock(r.store, r.locked)()
	out := make([]*entity.LandedCostAllocation, 0, len(allocs))
	for _, a := range allocs {
		c := *a
		out = append(out, &c)
	}
	r.store.lcAllocs[landedCostID] = out
	return nil
}

func (r *LandedCostRepository) ListAllocations(_ context.Context, tenantID, landedCostID string) ([]*entity.LandedCostAllocation, error) {
	defer lock(r.store, r.locked)()
	var out []*entity.LandedCostAllocation
	for _, a := range r.store.lcAllocs[landedCostID] {
		if a.TenantID == tenantID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}
