package intersection

import (
	"testing"
	"time"

	"github.com/arxos/wallkernel/geom"
)

func TestSortWallIDsIsCanonical(t *testing.T) {
	a := IntersectionKey([]string{"b", "a"}, TJunction, geom.NewPoint(1, 2), 1e-6)
	b := IntersectionKey([]string{"a", "b"}, TJunction, geom.NewPoint(1, 2), 1e-6)
	if a != b {
		t.Errorf("expected argument-order-independent keys, got %q vs %q", a, b)
	}
}

func TestManagerCreateGetRemove(t *testing.T) {
	m, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer m.Close()

	d := &Data{ID: "int-1", Kind: TJunction, WallIDs: []string{"w2", "w1"}, Point: geom.NewPoint(0, 0)}
	m.Create(d)

	got, ok := m.Get("int-1")
	if !ok || got.WallIDs[0] != "w1" {
		t.Fatalf("expected to retrieve a canonically-ordered record, got %+v ok=%v", got, ok)
	}

	if ids := m.ByWall("w1"); len(ids) != 1 || ids[0] != "int-1" {
		t.Errorf("expected w1 to index int-1, got %v", ids)
	}
	if ids := m.ByType(TJunction); len(ids) != 1 {
		t.Errorf("expected 1 t_junction record, got %v", ids)
	}

	m.Remove("int-1")
	if _, ok := m.Get("int-1"); ok {
		t.Errorf("expected removal to drop the record")
	}
	if ids := m.ByWall("w1"); len(ids) != 0 {
		t.Errorf("expected removal to clear the wall index, got %v", ids)
	}
}

func TestManagerNilAndBlankAreNoOps(t *testing.T) {
	m, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer m.Close()

	m.Create(nil)
	if _, ok := m.Get(""); ok {
		t.Errorf("expected blank id lookup to miss")
	}
}

func TestGetOrComputeCaches(t *testing.T) {
	m, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer m.Close()

	calls := 0
	compute := func() *Data {
		calls++
		return &Data{ID: "x"}
	}
	key := "intersection_w1_t_junction_0.000000_0.000000_0.000001"
	m.GetOrCompute(key, compute)
	m.GetOrCompute(key, compute)
	if calls != 1 {
		t.Errorf("expected compute to run once, ran %d times", calls)
	}
}

func TestSweepEvictsExpiredEntries(t *testing.T) {
	cfg := Config{MaxEntries: 1000, TTL: 10 * time.Millisecond, SweepInterval: 15 * time.Millisecond, EnableStats: true}
	m, err := New(cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer m.Close()

	m.GetOrCompute("k1", func() *Data { return &Data{ID: "k1"} })
	time.Sleep(60 * time.Millisecond)

	m.entryMu.Lock()
	_, present := m.entries["k1"]
	m.entryMu.Unlock()
	if present {
		t.Errorf("expected the sweep to have evicted the expired entry")
	}
}
