// Package geom provides the kernel's geometric primitives: Point, Vector,
// Curve and Polygon. Lower layers of the kernel depend on this package;
// this package depends on nothing else in the kernel.
package geom

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// CreationMethod tags how a Point came into being, for provenance.
type CreationMethod string

const (
	CreatedManual    CreationMethod = "manual"
	CreatedOffset    CreationMethod = "offset"
	CreatedMiter     CreationMethod = "miter"
	CreatedBoolean   CreationMethod = "boolean"
	CreatedHealing   CreationMethod = "healing"
	CreatedSimplify  CreationMethod = "simplify"
	CreatedMerge     CreationMethod = "merge"
)

// Point is the kernel's BIM point: a coordinate pair plus numeric-stability
// and provenance metadata. Equality is distance-within-tolerance, never bit
// equality (spec §3).
type Point struct {
	ID             string
	X, Y           float64
	Tolerance      float64
	CreationMethod CreationMethod
	Accuracy       float64 // in [0,1]
	Validated      bool
}

// NewPoint creates a Point with the default tolerance and full accuracy.
func NewPoint(x, y float64) Point {
	return Point{
		ID:             uuid.NewString(),
		X:              x,
		Y:              y,
		Tolerance:      1e-6,
		CreationMethod: CreatedManual,
		Accuracy:       1.0,
		Validated:      false,
	}
}

// NewPointWithTolerance creates a Point carrying an explicit tolerance, used
// whenever a point is produced inside a tolerance-aware operation.
func NewPointWithTolerance(x, y, tolerance float64, method CreationMethod, accuracy float64) Point {
	return Point{
		ID:             uuid.NewString(),
		X:              x,
		Y:              y,
		Tolerance:      tolerance,
		CreationMethod: method,
		Accuracy:       accuracy,
		Validated:      false,
	}
}

// Equals reports whether two points coincide within the larger of the two
// points' tolerances.
func (p Point) Equals(other Point) bool {
	tol := p.Tolerance
	if other.Tolerance > tol {
		tol = other.Tolerance
	}
	return p.DistanceTo(other) <= tol
}

// DistanceTo returns the Euclidean distance between two points.
func (p Point) DistanceTo(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Hypot(dx, dy)
}

// Vector returns the vector from p to other.
func (p Point) Vector(other Point) Vector {
	return Vector{X: other.X - p.X, Y: other.Y - p.Y}
}

// Translated returns a copy of p moved by v, inheriting p's tolerance but
// marking the new point unvalidated.
func (p Point) Translated(v Vector) Point {
	return Point{
		ID:             uuid.NewString(),
		X:              p.X + v.X,
		Y:              p.Y + v.Y,
		Tolerance:      p.Tolerance,
		CreationMethod: p.CreationMethod,
		Accuracy:       p.Accuracy,
		Validated:      false,
	}
}

// Rounded returns the point's coordinates rounded to dp decimal places,
// matching the cache-key rounding convention used throughout the kernel.
func (p Point) Rounded(dp int) (x, y float64) {
	scale := math.Pow(10, float64(dp))
	return math.Round(p.X*scale) / scale, math.Round(p.Y*scale) / scale
}

// String implements fmt.Stringer.
func (p Point) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.X, p.Y)
}
