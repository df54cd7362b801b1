package offset

import (
	"math"
	"testing"

	"github.com/arxos/wallkernel/geom"
	"github.com/arxos/wallkernel/miter"
)

func approxPoint(t *testing.T, label string, got geom.Point, x, y float64) {
	t.Helper()
	const eps = 1e-9
	if math.Abs(got.X-x) > eps || math.Abs(got.Y-y) > eps {
		t.Errorf("%s: expected (%v,%v), got (%v,%v)", label, x, y, got.X, got.Y)
	}
}

func TestOffsetSimpleBaseline(t *testing.T) {
	baseline := geom.NewCurve([]geom.Point{geom.NewPoint(0, 0), geom.NewPoint(10, 0)})
	result, err := Offset(baseline, 5, 10, miter.JoinMiter, 1e-6, miter.DefaultMiterLimit)
	if err != nil {
		t.Fatalf("Offset error: %v", err)
	}
	if result.FallbackUsed {
		t.Errorf("expected no fallback for a straight baseline, got warnings %v", result.Warnings)
	}
	approxPoint(t, "left[0]", result.Left.Points[0], 0, 5)
	approxPoint(t, "left[1]", result.Left.Points[1], 10, 5)
	approxPoint(t, "right[0]", result.Right.Points[0], 0, -5)
	approxPoint(t, "right[1]", result.Right.Points[1], 10, -5)
}

func TestOffsetLCorner(t *testing.T) {
	baseline := geom.NewCurve([]geom.Point{
		geom.NewPoint(0, 0), geom.NewPoint(10, 0), geom.NewPoint(10, 10),
	})
	result, err := Offset(baseline, 2, 4, miter.JoinMiter, 1e-6, miter.DefaultMiterLimit)
	if err != nil {
		t.Fatalf("Offset error: %v", err)
	}
	if result.FallbackUsed {
		t.Errorf("expected no fallback for a 90-degree corner, got warnings %v", result.Warnings)
	}

	approxPoint(t, "left[0]", result.Left.Points[0], 0, 2)
	approxPoint(t, "left[1] apex", result.Left.Points[1], 8, 2)
	approxPoint(t, "left[2]", result.Left.Points[2], 8, 10)

	approxPoint(t, "right[0]", result.Right.Points[0], 0, -2)
	approxPoint(t, "right[1] apex", result.Right.Points[1], 12, -2)
	approxPoint(t, "right[2]", result.Right.Points[2], 12, 10)

	vertexID := baseline.Points[1].ID
	if jt, ok := result.JoinTypes[vertexID]; !ok || jt != miter.JoinMiter {
		t.Errorf("expected the corner vertex to record a miter join type, got %v (present=%v)", jt, ok)
	}
}

func TestOffsetRejectsDegenerateInput(t *testing.T) {
	baseline := geom.NewCurve([]geom.Point{geom.NewPoint(0, 0)})
	if _, err := Offset(baseline, 5, 10, miter.JoinMiter, 1e-6, miter.DefaultMiterLimit); err == nil {
		t.Errorf("expected an error for a single-point baseline")
	}

	straight := geom.NewCurve([]geom.Point{geom.NewPoint(0, 0), geom.NewPoint(10, 0)})
	if _, err := Offset(straight, 0, 10, miter.JoinMiter, 1e-6, miter.DefaultMiterLimit); err == nil {
		t.Errorf("expected an error for non-positive d")
	}
	if _, err := Offset(straight, 5, 10, miter.JoinMiter, -1, miter.DefaultMiterLimit); err == nil {
		t.Errorf("expected an error for negative tolerance")
	}
}

func TestOffsetVerySharpCornerFallsBackToRoundOrBevel(t *testing.T) {
	// A near-reversal corner (the wall almost doubles back on itself):
	// forcing a miter join should blow the miter limit and downgrade per
	// vertex, without needing the engine-level fallback. The offset is kept
	// thin (d=0.1) so the two legs' offset bands do not overlap each other.
	baseline := geom.NewCurve([]geom.Point{
		geom.NewPoint(0, 0), geom.NewPoint(10, 0), geom.NewPoint(0, 0.5),
	})
	result, err := Offset(baseline, 0.1, 0.2, miter.JoinMiter, 1e-6, miter.DefaultMiterLimit)
	if err != nil {
		t.Fatalf("Offset error: %v", err)
	}
	vertexID := baseline.Points[1].ID
	if jt := result.JoinTypes[vertexID]; jt == miter.JoinMiter {
		t.Errorf("expected the sharp corner to downgrade away from miter, got %v", jt)
	}
}
