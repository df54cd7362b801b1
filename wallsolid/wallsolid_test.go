package wallsolid

import (
	"testing"

	"github.com/arxos/wallkernel/geom"
	"github.com/arxos/wallkernel/intersection"
	"github.com/arxos/wallkernel/miter"
)

func straightBaseline() *geom.Curve {
	return geom.NewCurve([]geom.Point{
		geom.NewPoint(0, 0), geom.NewPoint(10, 0), geom.NewPoint(10, 10),
	})
}

func TestDefaultThicknessByWallType(t *testing.T) {
	cases := map[WallType]float64{WallTypeLayout: 350, WallTypeZone: 250, WallTypeArea: 150}
	for wt, want := range cases {
		if got := DefaultThickness(wt); got != want {
			t.Errorf("DefaultThickness(%s) = %v, want %v", wt, got, want)
		}
	}
}

func TestWithOffsetsIsCopyOnWrite(t *testing.T) {
	solid := NewWallSolid(straightBaseline(), 10, WallTypeLayout)
	left := geom.NewCurve([]geom.Point{geom.NewPoint(0, 5)})
	right := geom.NewCurve([]geom.Point{geom.NewPoint(0, -5)})
	updated := solid.WithOffsets(left, right, map[string]miter.JoinType{"v1": miter.JoinMiter})
	if solid.LeftOffset != nil {
		t.Errorf("expected the original WallSolid to remain untouched")
	}
	if updated.LeftOffset != left || updated.RightOffset != right {
		t.Errorf("expected the copy to carry the new offset curves")
	}
	if updated.JoinTypes["v1"] != miter.JoinMiter {
		t.Errorf("expected the copy to carry the new join types")
	}
}

func TestNewFromBaselineStartsBasic(t *testing.T) {
	w := NewFromBaseline(straightBaseline(), 10, WallTypeLayout)
	if w.LastModifiedMode != ModeBasic {
		t.Fatalf("expected a fresh UnifiedWallData to start in basic mode")
	}
	if len(w.Basic.Nodes) != 3 || len(w.Basic.Segments) != 2 {
		t.Errorf("expected 3 nodes and 2 segments from a 3-point baseline, got %d nodes %d segments", len(w.Basic.Nodes), len(w.Basic.Segments))
	}
}

func TestSwitchToBIMBuildsSolid(t *testing.T) {
	w := NewFromBaseline(straightBaseline(), 10, WallTypeLayout)
	result := SwitchToBIM([]*UnifiedWallData{w}, 2.0, 1e-6)
	if len(result.Updated) != 1 {
		t.Fatalf("expected one updated wall")
	}
	updated := result.Updated[0]
	if updated.BIM == nil {
		t.Fatalf("expected a BIM representation to be attached")
	}
	if updated.LastModifiedMode != ModeBIM {
		t.Errorf("expected lastModifiedMode to become bim")
	}
	if len(updated.BIM.Solids) != 1 {
		t.Errorf("expected exactly one initial solid polygon")
	}
	if len(updated.ProcessingHistory) == 0 {
		t.Errorf("expected a switch_to_bim history entry")
	}
}

func TestRoundTripBasicBIMBasicPreservesNodeCount(t *testing.T) {
	w := NewFromBaseline(straightBaseline(), 10, WallTypeLayout)
	toBIM := SwitchToBIM([]*UnifiedWallData{w}, 2.0, 1e-6)
	toBasic := SwitchToBasic(toBIM.Updated)
	if len(toBasic.Updated) != 1 {
		t.Fatalf("expected one updated wall")
	}
	back := toBasic.Updated[0]
	if len(back.Basic.Nodes) != len(w.Basic.Nodes) {
		t.Errorf("expected node count preserved across round trip, got %d want %d", len(back.Basic.Nodes), len(w.Basic.Nodes))
	}
	for i, n := range back.Basic.Nodes {
		orig := w.Basic.Nodes[i]
		if (n.X-orig.X)*(n.X-orig.X)+(n.Y-orig.Y)*(n.Y-orig.Y) > 1e-6 {
			t.Errorf("node %d drifted: got (%v,%v) want (%v,%v)", i, n.X, n.Y, orig.X, orig.Y)
		}
	}
}

func TestSwitchToBasicFlagsIntersectionDataLoss(t *testing.T) {
	w := NewFromBaseline(straightBaseline(), 10, WallTypeLayout)
	toBIM := SwitchToBIM([]*UnifiedWallData{w}, 2.0, 1e-6)
	bim := toBIM.Updated[0]
	bim.BIM = bim.BIM.WithIntersections([]intersection.Data{{ID: "i1", Kind: intersection.TJunction, WallIDs: []string{w.ID}}})
	result := SwitchToBasic([]*UnifiedWallData{bim})
	if len(result.DataLoss[bim.ID]) == 0 {
		t.Errorf("expected intersection-data loss to be flagged")
	}
}

func TestCheckCompatibilityFlagsNonPositiveThickness(t *testing.T) {
	w := NewFromBaseline(straightBaseline(), -5, WallTypeLayout)
	report := CheckCompatibility([]*UnifiedWallData{w})
	if report.IsCompatible {
		t.Errorf("expected incompatibility for a non-positive thickness")
	}
	if report.CanSwitchToBIM[w.ID] {
		t.Errorf("expected canSwitchToBIM false for a non-positive thickness")
	}
}

func TestSynchronizeUpdatesBIMThickness(t *testing.T) {
	w := NewFromBaseline(straightBaseline(), 10, WallTypeLayout)
	toBIM := SwitchToBIM([]*UnifiedWallData{w}, 2.0, 1e-6)
	bim := toBIM.Updated[0]
	bim.Thickness = 20
	synced := Synchronize(bim, 2.0, 1e-6)
	if synced.BIM.Thickness != 20 {
		t.Errorf("expected synchronize to propagate the authoritative thickness, got %v", synced.BIM.Thickness)
	}
}
