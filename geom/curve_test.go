package geom

import (
	"math"
	"testing"
)

func TestCurveLengthAndBBox(t *testing.T) {
	c := NewCurve([]Point{NewPoint(0, 0), NewPoint(10, 0), NewPoint(10, 10)})

	if l := c.Length(); l != 20 {
		t.Errorf("expected length 20, got %v", l)
	}
	bbox := c.BBox()
	if bbox.MinX != 0 || bbox.MaxX != 10 || bbox.MinY != 0 || bbox.MaxY != 10 {
		t.Errorf("unexpected bbox %+v", bbox)
	}
}

func TestCurveInvalidatesOnNewPoints(t *testing.T) {
	c := NewCurve([]Point{NewPoint(0, 0), NewPoint(10, 0)})
	if c.Length() != 10 {
		t.Fatalf("expected length 10")
	}
	updated := c.WithPoints([]Point{NewPoint(0, 0), NewPoint(5, 0)})
	if updated.Length() != 5 {
		t.Errorf("expected new curve length 5, got %v", updated.Length())
	}
	if c.Length() != 10 {
		t.Errorf("expected original curve unchanged, got %v", c.Length())
	}
}

func TestCurveValidateInvariants(t *testing.T) {
	degenerate := NewCurve([]Point{NewPoint(0, 0)})
	if problems := degenerate.ValidateInvariants(); len(problems) == 0 {
		t.Errorf("expected degenerate curve to report a problem")
	}

	closed := NewCurveTyped([]Point{NewPoint(0, 0), NewPoint(1, 0), NewPoint(0, 0)}, CurveTypePolyline, true)
	if problems := closed.ValidateInvariants(); len(problems) != 0 {
		t.Errorf("expected closed curve with matching endpoints to be valid, got %v", problems)
	}
}

func TestCurveTangentsAtLCorner(t *testing.T) {
	c := NewCurve([]Point{NewPoint(0, 0), NewPoint(10, 0), NewPoint(10, 10)})
	tangents := c.Tangents()
	if len(tangents) != 3 {
		t.Fatalf("expected 3 tangents, got %d", len(tangents))
	}
	// Middle tangent should point diagonally between the two segments.
	mid := tangents[1]
	if mid.X <= 0 || mid.Y <= 0 {
		t.Errorf("expected middle tangent to have positive x and y, got %+v", mid)
	}
}

func TestCurveCurvatureStraightIsZero(t *testing.T) {
	c := NewCurve([]Point{NewPoint(0, 0), NewPoint(5, 0), NewPoint(10, 0)})
	curvatures := c.Curvatures()
	if math.Abs(curvatures[1]) > 1e-9 {
		t.Errorf("expected zero curvature on a straight line, got %v", curvatures[1])
	}
}
