package boolean

import (
	"testing"

	"github.com/arxos/wallkernel/geom"
)

func square(x0, y0, size float64) *geom.Polygon {
	ring := geom.Ring{
		geom.NewPoint(x0, y0),
		geom.NewPoint(x0+size, y0),
		geom.NewPoint(x0+size, y0+size),
		geom.NewPoint(x0, y0+size),
	}
	return geom.NewPolygon(ring, nil)
}

func TestEmptyInputFails(t *testing.T) {
	e := New(DefaultOptions())
	result := e.Union(nil, 1e-6)
	if result.Success {
		t.Errorf("expected empty union to report success=false")
	}
}

func TestSingleInputUnchanged(t *testing.T) {
	e := New(DefaultOptions())
	p := square(0, 0, 10)
	result := e.Union([]*geom.Polygon{p}, 1e-6)
	if !result.Success || len(result.ResultPolygons) != 1 || result.ResultPolygons[0] != p {
		t.Errorf("expected the single input returned unchanged")
	}
}

func TestBatchUnionReportsBatchOperationType(t *testing.T) {
	e := New(DefaultOptions())
	solids := []*geom.Polygon{square(0, 0, 100), square(5, 5, 1), square(50, 50, 20)}
	result := e.BatchUnion(solids, 1e-6)
	if result.OperationType != OpBatchUnion {
		t.Errorf("expected batch_union operation type, got %v", result.OperationType)
	}
}

func TestResolveWallIntersectionTagsKind(t *testing.T) {
	e := New(DefaultOptions())
	solids := []*geom.Polygon{square(0, 0, 10), square(8, 0, 10)}
	result := e.ResolveWallIntersection(solids, "t_junction", 1e-6)
	found := false
	for _, w := range result.Warnings {
		if w == "resolved as t_junction junction" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a resolved-as warning, got %v", result.Warnings)
	}
}
