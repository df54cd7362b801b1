// Package intersection implements the intersection manager & cache (spec
// §4.5) and the advanced intersection resolver (spec §4.6).
package intersection

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto"
	"golang.org/x/sync/singleflight"

	"github.com/arxos/wallkernel/geom"
	"github.com/arxos/wallkernel/kernellog"
	"github.com/arxos/wallkernel/miter"
)

// Kind is the closed sum of intersection classifications.
type Kind string

const (
	TJunction       Kind = "t_junction"
	LJunction       Kind = "l_junction"
	CrossJunction   Kind = "cross_junction"
	ParallelOverlap Kind = "parallel_overlap"
)

// Data is the persisted IntersectionData record (spec §3).
type Data struct {
	ID                       string
	Kind                     Kind
	WallIDs                  []string // sorted, canonical
	Point                    geom.Point
	MiterApex                *geom.Point
	OffsetIntersectionPoints []geom.Point
	ResolvedGeometry         *geom.Polygon
	ResolutionMethod         string
	Accuracy                 float64
	Validated                bool
}

// SortWallIDs returns a sorted copy of ids, the canonical order used by both
// storage keys and cache keys.
func SortWallIDs(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

// IntersectionKey builds the canonical intersection cache key (spec §4.5).
func IntersectionKey(wallIDs []string, kind Kind, point geom.Point, tolerance float64) string {
	x, y := point.Rounded(6)
	return fmt.Sprintf("intersection_%s_%s_%.6f_%.6f_%.6f", strings.Join(SortWallIDs(wallIDs), "_"), kind, x, y, tolerance)
}

// MiterKey builds the canonical miter cache key (spec §4.5).
func MiterKey(points []geom.Point, thickness, tolerance float64) string {
	parts := make([]string, len(points))
	for i, p := range points {
		x, y := p.Rounded(6)
		parts[i] = fmt.Sprintf("%.6f:%.6f", x, y)
	}
	return fmt.Sprintf("miter_%s_%.6f_%.6f", strings.Join(parts, "_"), thickness, tolerance)
}

// Stats tracks cache hit/miss counters; zero-overhead when disabled.
type Stats struct {
	enabled bool
	hits    int64
	misses  int64
}

// HitRate returns hits/(hits+misses), or 0 if nothing has been recorded.
func (s *Stats) HitRate() float64 {
	hits, misses := atomic.LoadInt64(&s.hits), atomic.LoadInt64(&s.misses)
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

func (s *Stats) recordHit() {
	if s.enabled {
		atomic.AddInt64(&s.hits, 1)
	}
}

func (s *Stats) recordMiss() {
	if s.enabled {
		atomic.AddInt64(&s.misses, 1)
	}
}

// Manager owns the IntersectionData store, its by-wall/by-type indexes, and
// the intersection/miter LRU+TTL caches.
type Manager struct {
	mu     sync.RWMutex
	byID   map[string]*Data
	byWall map[string]map[string]struct{}
	byType map[Kind]map[string]struct{}

	cache      *ristretto.Cache
	miterCache *ristretto.Cache
	ttl        time.Duration

	// flight collapses concurrent GetOrCompute/GetOrComputeMiter calls for
	// the same key into a single compute(), so a cache stampede on a
	// popular intersection or miter key does the work once.
	flight singleflight.Group

	entryMu sync.Mutex
	entries map[string]time.Time // cache key -> insertion time, for the sweep

	sweepStop chan struct{}
	sweepDone chan struct{}

	stats Stats
}

// Config controls the manager's cache sizing and sweep cadence.
type Config struct {
	MaxEntries    int64
	TTL           time.Duration // 0 disables expiry
	SweepInterval time.Duration // 0 disables the periodic sweep
	EnableStats   bool
}

// DefaultConfig mirrors the spec's suggested defaults.
func DefaultConfig() Config {
	return Config{MaxEntries: 10000, TTL: 10 * time.Minute, SweepInterval: time.Minute, EnableStats: true}
}

// New constructs a Manager.
func New(cfg Config) (*Manager, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.MaxEntries * 10,
		MaxCost:     cfg.MaxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("intersection: creating intersection cache: %w", err)
	}
	miterCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.MaxEntries * 10,
		MaxCost:     cfg.MaxEntries,
		BufferItems: 64,
	})
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("intersection: creating miter cache: %w", err)
	}

	m := &Manager{
		byID:      make(map[string]*Data),
		byWall:    make(map[string]map[string]struct{}),
		byType:    make(map[Kind]map[string]struct{}),
		cache:     cache,
		miterCache: miterCache,
		ttl:       cfg.TTL,
		entries:   make(map[string]time.Time),
		stats:     Stats{enabled: cfg.EnableStats},
	}

	if cfg.SweepInterval > 0 {
		m.sweepStop = make(chan struct{})
		m.sweepDone = make(chan struct{})
		go m.sweepLoop(cfg.SweepInterval)
	}
	return m, nil
}

// Close stops the sweep and releases cache resources.
func (m *Manager) Close() {
	if m.sweepStop != nil {
		close(m.sweepStop)
		<-m.sweepDone
	}
	m.cache.Close()
	m.miterCache.Close()
}

func (m *Manager) sweepLoop(interval time.Duration) {
	defer close(m.sweepDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.sweepStop:
			return
		case <-ticker.C:
			m.sweepExpired()
		}
	}
}

func (m *Manager) sweepExpired() {
	if m.ttl <= 0 {
		return
	}
	cutoff := time.Now().Add(-m.ttl)
	var expired []string
	m.entryMu.Lock()
	for k, t := range m.entries {
		if t.Before(cutoff) {
			expired = append(expired, k)
		}
	}
	for _, k := range expired {
		delete(m.entries, k)
	}
	m.entryMu.Unlock()
	for _, k := range expired {
		m.cache.Del(k)
	}
	if len(expired) > 0 {
		kernellog.Get().Debug("intersection cache sweep evicted expired entries")
	}
}

// Create inserts d (which must already have an ID), sorts its WallIDs into
// canonical order, and indexes it by wall id and type. Nil data is a
// tolerated no-op.
func (m *Manager) Create(d *Data) {
	if d == nil {
		return
	}
	d.WallIDs = SortWallIDs(d.WallIDs)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[d.ID] = d
	for _, w := range d.WallIDs {
		if m.byWall[w] == nil {
			m.byWall[w] = make(map[string]struct{})
		}
		m.byWall[w][d.ID] = struct{}{}
	}
	if m.byType[d.Kind] == nil {
		m.byType[d.Kind] = make(map[string]struct{})
	}
	m.byType[d.Kind][d.ID] = struct{}{}
}

// Get retrieves by id. A blank id is tolerated and returns (nil, false).
func (m *Manager) Get(id string) (*Data, bool) {
	if id == "" {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.byID[id]
	return d, ok
}

// Update replaces the stored record for id via fn, re-indexing if the wall
// set or kind changed.
func (m *Manager) Update(id string, fn func(*Data)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[id]
	if !ok {
		return false
	}
	m.unindexLocked(d)
	fn(d)
	d.WallIDs = SortWallIDs(d.WallIDs)
	m.indexLocked(d)
	return true
}

// Remove deletes the record for id, if present.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[id]
	if !ok {
		return
	}
	m.unindexLocked(d)
	delete(m.byID, id)
}

func (m *Manager) indexLocked(d *Data) {
	for _, w := range d.WallIDs {
		if m.byWall[w] == nil {
			m.byWall[w] = make(map[string]struct{})
		}
		m.byWall[w][d.ID] = struct{}{}
	}
	if m.byType[d.Kind] == nil {
		m.byType[d.Kind] = make(map[string]struct{})
	}
	m.byType[d.Kind][d.ID] = struct{}{}
}

func (m *Manager) unindexLocked(d *Data) {
	for _, w := range d.WallIDs {
		delete(m.byWall[w], d.ID)
	}
	delete(m.byType[d.Kind], d.ID)
}

// ByWall returns every IntersectionData id referencing wallID.
func (m *Manager) ByWall(wallID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.byWall[wallID]))
	for id := range m.byWall[wallID] {
		out = append(out, id)
	}
	return out
}

// ByType returns every IntersectionData id of the given kind.
func (m *Manager) ByType(kind Kind) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.byType[kind]))
	for id := range m.byType[kind] {
		out = append(out, id)
	}
	return out
}

// GetOrCompute serves key from the intersection cache, computing and
// storing via compute on a miss.
func (m *Manager) GetOrCompute(key string, compute func() *Data) *Data {
	if v, found := m.cache.Get(key); found {
		m.stats.recordHit()
		return v.(*Data)
	}
	m.stats.recordMiss()
	v, _, _ := m.flight.Do(key, func() (interface{}, error) {
		d := compute()
		m.cache.SetWithTTL(key, d, 1, m.ttl)
		m.cache.Wait()
		m.entryMu.Lock()
		m.entries[key] = time.Now()
		m.entryMu.Unlock()
		return d, nil
	})
	return v.(*Data)
}

// GetOrComputeMiter serves key from the miter cache.
func (m *Manager) GetOrComputeMiter(key string, compute func() miter.Calculation) miter.Calculation {
	if v, found := m.miterCache.Get(key); found {
		m.stats.recordHit()
		return v.(miter.Calculation)
	}
	m.stats.recordMiss()
	v, _, _ := m.flight.Do("miter:"+key, func() (interface{}, error) {
		calc := compute()
		m.miterCache.SetWithTTL(key, calc, 1, m.ttl)
		m.miterCache.Wait()
		return calc, nil
	})
	return v.(miter.Calculation)
}

// Stats returns a snapshot of cache hit/miss statistics.
func (m *Manager) Stats() Stats {
	return Stats{
		enabled: m.stats.enabled,
		hits:    atomic.LoadInt64(&m.stats.hits),
		misses:  atomic.LoadInt64(&m.stats.misses),
	}
}

// TrimToCapacity is the memory-pressure optimisation: it evicts the oldest
// tracked intersection-cache entries (by insertion time) until at most
// target remain, deleting each from both the bookkeeping map and the cache.
// Intended to be invoked by a host-level memory-pressure signal.
func (m *Manager) TrimToCapacity(target int) {
	m.entryMu.Lock()
	defer m.entryMu.Unlock()
	if len(m.entries) <= target {
		return
	}
	type keyed struct {
		key string
		at  time.Time
	}
	all := make([]keyed, 0, len(m.entries))
	for k, t := range m.entries {
		all = append(all, keyed{k, t})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })
	toEvict := len(all) - target
	for i := 0; i < toEvict; i++ {
		m.cache.Del(all[i].key)
		delete(m.entries, all[i].key)
	}
}
