package geom

import (
	"math"

	"github.com/google/uuid"
)

// CurveType is a closed sum of the kernel's curve kinds. Only "polyline" is
// an operational primitive for offsetting and boolean ops; bezier, spline
// and arc are named so the mode-switching and BIM layers can carry curved
// wall metadata without the kernel needing to offset a spline directly
// (spec Non-goals).
type CurveType string

const (
	CurveTypePolyline CurveType = "polyline"
	CurveTypeBezier   CurveType = "bezier"
	CurveTypeSpline   CurveType = "spline"
	CurveTypeArc      CurveType = "arc"
)

// Curve is an ordered sequence of BIM points with memoizable derived
// properties (spec §3).
type Curve struct {
	ID     string
	Points []Point
	Type   CurveType
	Closed bool

	cache curveCache
}

type curveCache struct {
	valid      bool
	length     float64
	bbox       BoundingBox
	tangents   []Vector
	curvatures []float64
}

// NewCurve builds an open polyline curve from points.
func NewCurve(points []Point) *Curve {
	return &Curve{ID: uuid.NewString(), Points: points, Type: CurveTypePolyline}
}

// NewCurveTyped builds a curve of an explicit type and open/closed state.
func NewCurveTyped(points []Point, curveType CurveType, closed bool) *Curve {
	return &Curve{ID: uuid.NewString(), Points: points, Type: curveType, Closed: closed}
}

// invalidate drops memoized derived data; call after any mutation.
func (c *Curve) invalidate() {
	c.cache = curveCache{}
}

// IsDegenerate reports whether the curve has fewer than 2 points.
func (c *Curve) IsDegenerate() bool {
	return len(c.Points) < 2
}

// ValidateInvariants checks the curve invariants from spec §3: if closed,
// first point coincides with the last within tolerance; at least 2 points
// for a non-degenerate curve; length >= 0 (always true by construction).
func (c *Curve) ValidateInvariants() []string {
	var problems []string
	if len(c.Points) < 2 {
		problems = append(problems, "curve has fewer than 2 points")
		return problems
	}
	if c.Closed {
		first, last := c.Points[0], c.Points[len(c.Points)-1]
		if !first.Equals(last) {
			problems = append(problems, "closed curve's first and last points are not within tolerance")
		}
	}
	return problems
}

// Length returns the total length of the curve, memoized until the next
// mutation.
func (c *Curve) Length() float64 {
	if c.cache.valid {
		return c.cache.length
	}
	c.recompute()
	return c.cache.length
}

// BBox returns the curve's axis-aligned bounding box.
func (c *Curve) BBox() BoundingBox {
	if c.cache.valid {
		return c.cache.bbox
	}
	c.recompute()
	return c.cache.bbox
}

// Tangents returns a unit tangent vector for each vertex: the average of the
// incoming and outgoing segment directions for interior vertices, and the
// single adjacent segment direction at the endpoints (or at the seam, for
// closed curves).
func (c *Curve) Tangents() []Vector {
	if c.cache.valid {
		return c.cache.tangents
	}
	c.recompute()
	return c.cache.tangents
}

// Curvatures returns a discrete curvature estimate per vertex: the turning
// angle (radians, signed by Cross) between incoming and outgoing segment
// directions, divided by the average of the two segment lengths. Endpoints
// of an open curve have zero curvature.
func (c *Curve) Curvatures() []float64 {
	if c.cache.valid {
		return c.cache.curvatures
	}
	c.recompute()
	return c.cache.curvatures
}

func (c *Curve) recompute() {
	n := len(c.Points)
	bbox := NewEmptyBoundingBox()
	length := 0.0
	tangents := make([]Vector, n)
	curvatures := make([]float64, n)

	for i, p := range c.Points {
		bbox.Expand(p.X, p.Y)
		if i > 0 {
			length += c.Points[i-1].DistanceTo(p)
		}
	}

	segDir := func(i, j int) (Vector, bool) {
		if i < 0 || j < 0 || i >= n || j >= n {
			return Vector{}, false
		}
		v := c.Points[i].Vector(c.Points[j])
		if v.Length() == 0 {
			return Vector{}, false
		}
		return v.Normalize(), true
	}

	prevIdx := func(i int) int {
		if i > 0 {
			return i - 1
		}
		if c.Closed {
			return n - 2 // last point duplicates first for closed curves
		}
		return -1
	}
	nextIdx := func(i int) int {
		if i < n-1 {
			return i + 1
		}
		if c.Closed {
			return 1
		}
		return -1
	}

	for i := 0; i < n; i++ {
		in, hasIn := segDir(prevIdx(i), i)
		out, hasOut := segDir(i, nextIdx(i))

		switch {
		case hasIn && hasOut:
			tangents[i] = in.Add(out).Normalize()
			turn := math.Atan2(in.Cross(out), in.Dot(out))
			avgSeg := (c.Points[prevIdx(i)].DistanceTo(c.Points[i]) + c.Points[i].DistanceTo(c.Points[nextIdx(i)])) / 2
			if avgSeg > 0 {
				curvatures[i] = turn / avgSeg
			}
		case hasOut:
			tangents[i] = out
		case hasIn:
			tangents[i] = in
		}
	}

	c.cache = curveCache{valid: true, length: length, bbox: bbox, tangents: tangents, curvatures: curvatures}
}

// WithPoints returns a new curve sharing this curve's type/closedness with a
// replaced point list (copy-on-write, per spec §9).
func (c *Curve) WithPoints(points []Point) *Curve {
	return &Curve{ID: uuid.NewString(), Points: points, Type: c.Type, Closed: c.Closed}
}

// BoundingBox is an axis-aligned box over float coordinates.
type BoundingBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// NewEmptyBoundingBox returns a box with inverted bounds so the first Expand
// call establishes real bounds.
func NewEmptyBoundingBox() BoundingBox {
	return BoundingBox{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

// Expand grows the box to include (x, y).
func (b *BoundingBox) Expand(x, y float64) {
	if x < b.MinX {
		b.MinX = x
	}
	if x > b.MaxX {
		b.MaxX = x
	}
	if y < b.MinY {
		b.MinY = y
	}
	if y > b.MaxY {
		b.MaxY = y
	}
}

// Width returns the box width.
func (b BoundingBox) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box height.
func (b BoundingBox) Height() float64 { return b.MaxY - b.MinY }

// Intersects reports whether two boxes overlap.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return !(b.MaxX < other.MinX || b.MinX > other.MaxX || b.MaxY < other.MinY || b.MinY > other.MaxY)
}
