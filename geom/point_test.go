package geom

import "testing"

func TestPointEqualsWithinTolerance(t *testing.T) {
	a := NewPointWithTolerance(0, 0, 1e-3, CreatedManual, 1.0)
	b := NewPointWithTolerance(0.0005, 0, 1e-3, CreatedManual, 1.0)

	if !a.Equals(b) {
		t.Fatalf("expected points within tolerance to be equal")
	}

	c := NewPointWithTolerance(1, 0, 1e-3, CreatedManual, 1.0)
	if a.Equals(c) {
		t.Fatalf("expected distant points to not be equal")
	}
}

func TestPointDistanceTo(t *testing.T) {
	a := NewPoint(0, 0)
	b := NewPoint(3, 4)

	if d := a.DistanceTo(b); d != 5 {
		t.Errorf("expected distance 5, got %v", d)
	}
}

func TestPointTranslated(t *testing.T) {
	a := NewPoint(1, 1)
	moved := a.Translated(Vector{X: 2, Y: 3})

	if moved.X != 3 || moved.Y != 4 {
		t.Errorf("expected (3,4), got (%v,%v)", moved.X, moved.Y)
	}
	if moved.ID == a.ID {
		t.Errorf("expected translated point to have a new identity")
	}
}

func TestPointRounded(t *testing.T) {
	p := NewPoint(1.23456, 7.89123)
	x, y := p.Rounded(2)
	if x != 1.23 || y != 7.89 {
		t.Errorf("expected (1.23, 7.89), got (%v, %v)", x, y)
	}
}
