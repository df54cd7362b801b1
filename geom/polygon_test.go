package geom

import "testing"

func square(x0, y0, size float64) Ring {
	return Ring{
		NewPoint(x0, y0),
		NewPoint(x0+size, y0),
		NewPoint(x0+size, y0+size),
		NewPoint(x0, y0+size),
	}
}

func TestRingSignedAreaOrientation(t *testing.T) {
	ccw := square(0, 0, 10)
	if !ccw.IsCCW() {
		t.Errorf("expected square built in CCW order to report CCW")
	}
	cw := ccw.Reversed()
	if cw.IsCCW() {
		t.Errorf("expected reversed square to report CW")
	}
	if ccw.Area() != cw.Area() {
		t.Errorf("expected area to be orientation-independent")
	}
}

func TestPolygonAreaWithHole(t *testing.T) {
	outer := square(0, 0, 10) // area 100
	hole := square(2, 2, 2)   // area 4
	p := NewPolygon(outer, []Ring{hole})

	if area := p.Area(); area != 96 {
		t.Errorf("expected area 96, got %v", area)
	}
}

func TestPolygonNormalizesOrientation(t *testing.T) {
	outer := square(0, 0, 10).Reversed() // built CW
	hole := square(2, 2, 2)              // built CCW
	p := NewPolygon(outer, []Ring{hole})

	if !p.Outer.IsCCW() {
		t.Errorf("expected outer ring normalized to CCW")
	}
	if p.Holes[0].IsCCW() {
		t.Errorf("expected hole ring normalized to CW")
	}
}

func TestPolygonValidateInvariants(t *testing.T) {
	p := NewPolygon(square(0, 0, 10), nil)
	if problems := p.ValidateInvariants(); len(problems) != 0 {
		t.Errorf("expected valid polygon, got %v", problems)
	}

	degenerate := &Polygon{Outer: Ring{NewPoint(0, 0), NewPoint(1, 1)}}
	if problems := degenerate.ValidateInvariants(); len(problems) == 0 {
		t.Errorf("expected degenerate outer ring to report a problem")
	}
}

func TestRingSelfIntersectsBowtie(t *testing.T) {
	bowtie := Ring{NewPoint(0, 0), NewPoint(10, 10), NewPoint(10, 0), NewPoint(0, 10)}
	if !bowtie.SelfIntersects() {
		t.Errorf("expected bowtie ring to self-intersect")
	}

	simple := square(0, 0, 10)
	if simple.SelfIntersects() {
		t.Errorf("expected simple square to not self-intersect")
	}
}

func TestPolygonCentroidOfSquare(t *testing.T) {
	p := NewPolygon(square(0, 0, 10), nil)
	c, ok := p.Centroid()
	if !ok {
		t.Fatalf("expected centroid to be computable")
	}
	if c.X != 5 || c.Y != 5 {
		t.Errorf("expected centroid (5,5), got (%v,%v)", c.X, c.Y)
	}
}
