package kernel

import (
	"testing"

	"github.com/arxos/wallkernel/geom"
	"github.com/arxos/wallkernel/intersection"
	"github.com/arxos/wallkernel/kernelconfig"
	"github.com/arxos/wallkernel/validation"
	"github.com/arxos/wallkernel/wallsolid"
)

func straightBaseline() *geom.Curve {
	return geom.NewCurve([]geom.Point{
		geom.NewPoint(0, 0), geom.NewPoint(10, 0), geom.NewPoint(10, 10),
	})
}

func newTestKernel(t *testing.T) *Kernel {
	t.Helper()
	k, err := New(kernelconfig.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(k.Close)
	return k
}

func TestBuildWallSolidProducesOffsetsAndSolid(t *testing.T) {
	k := newTestKernel(t)
	solid, report, err := k.BuildWallSolid(straightBaseline(), wallsolid.DefaultThickness(wallsolid.WallTypeLayout), wallsolid.WallTypeLayout)
	if err != nil {
		t.Fatalf("BuildWallSolid: %v", err)
	}
	if solid.LeftOffset == nil || solid.RightOffset == nil {
		t.Fatalf("expected both offset curves to be populated")
	}
	if len(solid.Solids) != 1 {
		t.Fatalf("expected exactly one initial solid polygon, got %d", len(solid.Solids))
	}
	if report.Mode != validation.ModePost {
		t.Errorf("expected a post-validation report")
	}
}

func TestHealSolidAppendsHistory(t *testing.T) {
	k := newTestKernel(t)
	solid, _, err := k.BuildWallSolid(straightBaseline(), 10, wallsolid.WallTypeZone)
	if err != nil {
		t.Fatalf("BuildWallSolid: %v", err)
	}
	healed, _ := k.HealSolid(solid, 1e-6)
	if len(healed.HealingHistory) != len(solid.HealingHistory)+1 {
		t.Errorf("expected exactly one new healing-history entry")
	}
}

func TestMergeVerticesAppendsHistory(t *testing.T) {
	k := newTestKernel(t)
	solid, _, err := k.BuildWallSolid(straightBaseline(), 10, wallsolid.WallTypeZone)
	if err != nil {
		t.Fatalf("BuildWallSolid: %v", err)
	}
	merged, _ := k.MergeVertices(solid, 1e-6)
	if len(merged.HealingHistory) != len(solid.HealingHistory)+1 {
		t.Errorf("expected exactly one new healing-history entry")
	}
}

func TestSimplifySolidReturnsPolygons(t *testing.T) {
	k := newTestKernel(t)
	solid, _, err := k.BuildWallSolid(straightBaseline(), 10, wallsolid.WallTypeZone)
	if err != nil {
		t.Fatalf("BuildWallSolid: %v", err)
	}
	updated, result := k.SimplifySolid(solid, 1e-6)
	if len(updated.Solids) != len(result.Polygons) {
		t.Errorf("expected the updated solid's polygons to match the simplify result")
	}
}

func TestValidateRunsConfiguredPipeline(t *testing.T) {
	k := newTestKernel(t)
	solid, _, err := k.BuildWallSolid(straightBaseline(), 10, wallsolid.WallTypeZone)
	if err != nil {
		t.Fatalf("BuildWallSolid: %v", err)
	}
	report := k.Validate(solid, validation.ModePost, 1e-6)
	if report.Mode != validation.ModePost {
		t.Errorf("expected the post-mode report to be returned")
	}
}

func TestSwitchToBIMAndBackRoundTrips(t *testing.T) {
	k := newTestKernel(t)
	w := wallsolid.NewFromBaseline(straightBaseline(), 10, wallsolid.WallTypeLayout)
	toBIM := k.SwitchToBIM([]*wallsolid.UnifiedWallData{w})
	if len(toBIM.Updated) != 1 || toBIM.Updated[0].BIM == nil {
		t.Fatalf("expected SwitchToBIM to attach a BIM representation")
	}
	toBasic := k.SwitchToBasic(toBIM.Updated)
	if len(toBasic.Updated) != 1 || toBasic.Updated[0].LastModifiedMode != wallsolid.ModeBasic {
		t.Fatalf("expected SwitchToBasic to revert lastModifiedMode")
	}
}

func TestResolveIntersectionUnionsWallSolids(t *testing.T) {
	k := newTestKernel(t)
	a, _, err := k.BuildWallSolid(straightBaseline(), 10, wallsolid.WallTypeZone)
	if err != nil {
		t.Fatalf("BuildWallSolid: %v", err)
	}
	b, _, err := k.BuildWallSolid(geom.NewCurve([]geom.Point{geom.NewPoint(10, 0), geom.NewPoint(20, 0)}), 10, wallsolid.WallTypeZone)
	if err != nil {
		t.Fatalf("BuildWallSolid: %v", err)
	}
	result := k.ResolveIntersection([]*wallsolid.WallSolid{a, b}, intersection.TJunction, 1e-6)
	if !result.Success {
		t.Errorf("expected the union to succeed, warnings: %v", result.Warnings)
	}
}
