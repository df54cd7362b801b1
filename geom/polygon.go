package geom

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Ring is a closed sequence of points bounding a polygon or a hole.
type Ring []Point

// SignedArea computes twice-the-shoelace-sum-halved signed area: positive
// when the ring winds counter-clockwise.
func (r Ring) SignedArea() float64 {
	n := len(r)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += r[i].X*r[j].Y - r[j].X*r[i].Y
	}
	return sum / 2
}

// Area returns the unsigned area.
func (r Ring) Area() float64 {
	return math.Abs(r.SignedArea())
}

// Perimeter returns the ring's closed perimeter.
func (r Ring) Perimeter() float64 {
	n := len(r)
	if n < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		total += r[i].DistanceTo(r[j])
	}
	return total
}

// IsCCW reports whether the ring winds counter-clockwise.
func (r Ring) IsCCW() bool {
	return r.SignedArea() > 0
}

// Reversed returns a copy of the ring with point order reversed.
func (r Ring) Reversed() Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

// EnsureOrientation returns a copy of the ring wound CCW if ccw is true, CW
// otherwise, reversing only if necessary.
func (r Ring) EnsureOrientation(ccw bool) Ring {
	if r.IsCCW() == ccw {
		return append(Ring(nil), r...)
	}
	return r.Reversed()
}

// Closed reports whether the first and last points coincide within
// tolerance tol.
func (r Ring) Closed(tol float64) bool {
	if len(r) < 2 {
		return false
	}
	return r[0].DistanceTo(r[len(r)-1]) <= tol
}

// AsClosed returns a copy of the ring with the first point appended at the
// end if it is not already closed within tol.
func (r Ring) AsClosed(tol float64) Ring {
	if r.Closed(tol) || len(r) == 0 {
		return append(Ring(nil), r...)
	}
	out := make(Ring, len(r)+1)
	copy(out, r)
	out[len(r)] = r[0]
	return out
}

// Centroid returns the ring's area-weighted centroid.
func (r Ring) Centroid() (Point, bool) {
	n := len(r)
	if n < 3 {
		return Point{}, false
	}
	area := r.SignedArea()
	if area == 0 {
		return Point{}, false
	}
	cx, cy := 0.0, 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := r[i].X*r[j].Y - r[j].X*r[i].Y
		cx += (r[i].X + r[j].X) * cross
		cy += (r[i].Y + r[j].Y) * cross
	}
	factor := 1 / (6 * area)
	return NewPoint(cx*factor, cy*factor), true
}

// BBox returns the ring's axis-aligned bounding box.
func (r Ring) BBox() BoundingBox {
	b := NewEmptyBoundingBox()
	for _, p := range r {
		b.Expand(p.X, p.Y)
	}
	return b
}

// SelfIntersects reports whether any two non-adjacent segments of the ring
// cross. O(n^2); rings are expected to be small (tens of vertices).
func (r Ring) SelfIntersects() bool {
	n := len(r)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := r[i], r[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i {
				continue
			}
			// Skip edges sharing a vertex with edge i.
			if j == i || (j+1)%n == i || j == (i+1)%n {
				continue
			}
			b1, b2 := r[j], r[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

func segmentsIntersect(p1, p2, p3, p4 Point) bool {
	d1 := crossSign(p3, p4, p1)
	d2 := crossSign(p3, p4, p2)
	d3 := crossSign(p1, p2, p3)
	d4 := crossSign(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

func crossSign(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// QualityFlags records the diagnosis of a polygon's geometric health.
type QualityFlags struct {
	IsValid         bool
	SelfIntersects  bool
	HasSliverFaces  bool
}

// Provenance records how a polygon was produced and what happened to it
// since.
type Provenance struct {
	CreationMethod        string
	HealingApplied        bool
	SimplificationApplied bool
}

// Polygon is the kernel's BIM polygon: an outer ring plus zero or more hole
// rings, with derived area/perimeter/centroid/bbox and quality/provenance
// metadata (spec §3).
type Polygon struct {
	ID    string
	Outer Ring
	Holes []Ring

	Quality    QualityFlags
	Provenance Provenance
}

// NewPolygon builds a polygon from an outer ring and holes, normalizing
// orientation (outer CCW, holes CW) per spec invariants.
func NewPolygon(outer Ring, holes []Ring) *Polygon {
	normalizedHoles := make([]Ring, len(holes))
	for i, h := range holes {
		normalizedHoles[i] = h.EnsureOrientation(false)
	}
	return &Polygon{
		ID:    uuid.NewString(),
		Outer: outer.EnsureOrientation(true),
		Holes: normalizedHoles,
		Provenance: Provenance{
			CreationMethod: "manual",
		},
	}
}

// Area returns the polygon's area (outer minus holes).
func (p *Polygon) Area() float64 {
	area := p.Outer.Area()
	for _, h := range p.Holes {
		area -= h.Area()
	}
	return area
}

// Perimeter returns the sum of the outer and hole perimeters.
func (p *Polygon) Perimeter() float64 {
	total := p.Outer.Perimeter()
	for _, h := range p.Holes {
		total += h.Perimeter()
	}
	return total
}

// Centroid returns the area-weighted centroid of the outer ring; holes are
// not taken into account.
func (p *Polygon) Centroid() (Point, bool) {
	return p.Outer.Centroid()
}

// BBox returns the polygon's bounding box (from the outer ring only — holes
// are contained within it by construction).
func (p *Polygon) BBox() BoundingBox {
	return p.Outer.BBox()
}

// ValidateInvariants checks the spec §3 invariants: each ring has >= 3
// points, rings closed within tol (callers ensure closure before storage, so
// this checks the unclosed in-memory representation has >= 3 points;
// distinctness is not checked), outer CCW, holes CW.
func (p *Polygon) ValidateInvariants() []string {
	var problems []string
	if len(p.Outer) < 3 {
		problems = append(problems, "outer ring has fewer than 3 points")
	} else if !p.Outer.IsCCW() {
		problems = append(problems, "outer ring is not wound counter-clockwise")
	}
	for i, h := range p.Holes {
		if len(h) < 3 {
			problems = append(problems, fmt.Sprintf("hole %d ring has fewer than 3 points", i))
			continue
		}
		if h.IsCCW() {
			problems = append(problems, fmt.Sprintf("hole %d ring is not wound clockwise", i))
		}
	}
	return problems
}

// WithQuality returns a copy of the polygon with updated quality flags
// (copy-on-write).
func (p *Polygon) WithQuality(q QualityFlags) *Polygon {
	cp := *p
	cp.ID = p.ID
	cp.Quality = q
	return &cp
}

// WithProvenance returns a copy of the polygon with updated provenance.
func (p *Polygon) WithProvenance(prov Provenance) *Polygon {
	cp := *p
	cp.Provenance = prov
	return &cp
}
