package healing

import (
	"testing"

	"github.com/arxos/wallkernel/geom"
)

func rect(x0, y0, x1, y1 float64) *geom.Polygon {
	ring := geom.Ring{
		geom.NewPoint(x0, y0), geom.NewPoint(x1, y0),
		geom.NewPoint(x1, y1), geom.NewPoint(x0, y1),
	}
	return geom.NewPolygon(ring, nil)
}

func TestHealRemovesSliverHole(t *testing.T) {
	p := rect(0, 0, 10, 10)
	p.Holes = []geom.Ring{
		{geom.NewPoint(5, 5), geom.NewPoint(5+1e-6, 5), geom.NewPoint(5+1e-6, 5+1e-6)},
	}
	result := Heal([]*geom.Polygon{p}, 1e-6, DefaultOptions())
	if result.FacesRemoved == 0 {
		t.Errorf("expected the sliver hole to be removed")
	}
	if len(result.Polygons[0].Holes) != 0 {
		t.Errorf("expected no holes remaining, got %d", len(result.Polygons[0].Holes))
	}
}

func TestHealMergesDuplicateEdges(t *testing.T) {
	ring := geom.Ring{
		geom.NewPoint(0, 0), geom.NewPoint(0, 1e-9), geom.NewPoint(10, 0),
		geom.NewPoint(10, 10), geom.NewPoint(0, 10),
	}
	p := geom.NewPolygon(ring, nil)
	result := Heal([]*geom.Polygon{p}, 1e-6, DefaultOptions())
	if result.EdgesMerged == 0 {
		t.Errorf("expected duplicate-edge merging to fire")
	}
}

func TestHealConvergesOnCleanInput(t *testing.T) {
	p := rect(0, 0, 10, 10)
	result := Heal([]*geom.Polygon{p}, 1e-6, DefaultOptions())
	if !result.Converged {
		t.Errorf("expected a clean rectangle to converge immediately")
	}
	if result.FacesRemoved != 0 || result.EdgesMerged != 0 || result.GapsEliminated != 0 {
		t.Errorf("expected no healing operations on clean input, got %+v", result)
	}
}

func TestMergeVerticesMergesNonConsecutivePair(t *testing.T) {
	// A bowtie-adjacent pair of squares sharing near-coincident corners that
	// are not adjacent in either ring.
	a := rect(0, 0, 10, 10)
	b := rect(10.0000001, 0, 20, 10)
	result := MergeVertices([]*geom.Polygon{a, b}, MergeOptions{Tolerance: 1e-4, MaxMergeIterations: 10, Rollback: true})
	if result.MergesMade == 0 {
		t.Errorf("expected at least one merge for near-coincident corners")
	}
}

func TestMergeVerticesSkipsConsecutiveVertices(t *testing.T) {
	p := rect(0, 0, 10, 10)
	result := MergeVertices([]*geom.Polygon{p}, MergeOptions{Tolerance: 10.5, MaxMergeIterations: 5, Rollback: true})
	// Every adjacent-corner pair is consecutive (or the ring's seam); the
	// only non-consecutive pairs are the two diagonals, both longer than
	// the chosen tolerance, so no merge should ever be attempted.
	if result.MergesMade != 0 {
		t.Errorf("expected no merges among a single simple ring's vertices, got %d", result.MergesMade)
	}
}
