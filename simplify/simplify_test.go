package simplify

import (
	"testing"

	"github.com/arxos/wallkernel/geom"
)

func TestSimplifyRemovesCollinearPoint(t *testing.T) {
	ring := geom.Ring{
		geom.NewPoint(0, 0), geom.NewPoint(5, 0), geom.NewPoint(10, 0),
		geom.NewPoint(10, 10), geom.NewPoint(0, 10),
	}
	p := geom.NewPolygon(ring, nil)
	result := Simplify([]*geom.Polygon{p}, 100, DefaultOptions())
	if !result.AccuracyPreserved {
		t.Fatalf("expected accuracy preserved, warnings: %v", result.Warnings)
	}
	if len(result.Polygons[0].Outer) != 4 {
		t.Errorf("expected the collinear midpoint dropped to 4 vertices, got %d: %v", len(result.Polygons[0].Outer), result.Polygons[0].Outer)
	}
}

func TestSimplifyRevertsBelowMinVertices(t *testing.T) {
	// A near-degenerate triangle whose every interior vertex simplifies
	// away under a large tolerance; MinVerticesPerRing must force a revert.
	ring := geom.Ring{
		geom.NewPoint(0, 0), geom.NewPoint(5, 0.001), geom.NewPoint(10, 0),
	}
	p := geom.NewPolygon(ring, nil)
	opts := DefaultOptions()
	opts.InputTolerance = 10
	result := Simplify([]*geom.Polygon{p}, 1, opts)
	if result.AccuracyPreserved {
		t.Errorf("expected accuracy not preserved when a ring would drop below the minimum")
	}
	if len(result.Polygons[0].Outer) < opts.MinVerticesPerRing {
		t.Errorf("expected the ring to revert rather than drop below %d vertices, got %d", opts.MinVerticesPerRing, len(result.Polygons[0].Outer))
	}
}

func TestSimplifyRemovesRedundantVertex(t *testing.T) {
	ring := geom.Ring{
		geom.NewPoint(0, 0), geom.NewPoint(0, 1e-7), geom.NewPoint(10, 0),
		geom.NewPoint(10, 10), geom.NewPoint(0, 10),
	}
	p := geom.NewPolygon(ring, nil)
	result := Simplify([]*geom.Polygon{p}, 1, DefaultOptions())
	if len(result.Polygons[0].Outer) >= len(ring) {
		t.Errorf("expected the near-duplicate vertex to be filtered, got %d vertices", len(result.Polygons[0].Outer))
	}
}
