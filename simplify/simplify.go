// Package simplify implements geometry simplification (spec §4.9):
// thickness-adaptive RDP, collinear-point elimination and redundant-vertex
// filtering per ring, with a minimum-vertex safety net.
package simplify

import (
	"math"

	"github.com/arxos/wallkernel/geom"
)

// Options configures every simplification pass.
type Options struct {
	InputTolerance               float64
	CollinearAngleThresholdDeg   float64
	DistanceThreshold            float64
	MinVerticesPerRing           int
	MaxSimplificationIterations  int
	Aggressive                   bool
}

// DefaultOptions mirrors the spec's suggested defaults.
func DefaultOptions() Options {
	return Options{
		InputTolerance:              1e-6,
		CollinearAngleThresholdDeg:  1.0,
		DistanceThreshold:           1e-5,
		MinVerticesPerRing:          3,
		MaxSimplificationIterations: 3,
	}
}

// Result is the outcome of a Simplify call.
type Result struct {
	Polygons          []*geom.Polygon
	AccuracyPreserved bool
	Warnings          []string
}

// Simplify runs the three-pass pipeline on every ring of polygons, at most
// opts.MaxSimplificationIterations times, adapting tolerance to thickness.
func Simplify(polygons []*geom.Polygon, thickness float64, opts Options) Result {
	if opts.MinVerticesPerRing <= 0 {
		opts = DefaultOptions()
	}
	adaptiveTol := math.Max(opts.InputTolerance, thickness*0.01)

	result := Result{AccuracyPreserved: true}
	out := make([]*geom.Polygon, len(polygons))
	for i, p := range polygons {
		cp := *p
		cp.Outer, _ = simplifyRing(p.Outer, adaptiveTol, opts, &result)
		holes := make([]geom.Ring, len(p.Holes))
		for j, h := range p.Holes {
			holes[j], _ = simplifyRing(h, adaptiveTol, opts, &result)
		}
		cp.Holes = holes
		if opts.Aggressive {
			cp.Outer = optimiseJunctions(cp.Outer)
			for j := range cp.Holes {
				cp.Holes[j] = optimiseJunctions(cp.Holes[j])
			}
		}
		out[i] = &cp
	}
	result.Polygons = out
	return result
}

func simplifyRing(r geom.Ring, tol float64, opts Options, result *Result) (geom.Ring, bool) {
	current := append(geom.Ring(nil), r...)
	for iter := 0; iter < opts.MaxSimplificationIterations; iter++ {
		before := append(geom.Ring(nil), current...)

		rdp := rdpClosed(current, tol)
		collinear := removeCollinear(rdp, opts.CollinearAngleThresholdDeg)
		filtered := removeRedundant(collinear, opts.DistanceThreshold)

		if len(filtered) < opts.MinVerticesPerRing {
			result.AccuracyPreserved = false
			result.Warnings = append(result.Warnings, "a ring reverted to its pre-simplification state to stay at or above the minimum vertex count")
			return before, false
		}

		current = filtered
		if ringsEqual(current, before) {
			break
		}
	}
	return current, true
}

func ringsEqual(a, b geom.Ring) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].X != b[i].X || a[i].Y != b[i].Y {
			return false
		}
	}
	return true
}

// rdpClosed applies Ramer-Douglas-Peucker to a ring, anchored on its first
// and last stored points (the ring's unclosed in-memory representation
// already has first != last, so no artificial seam point is needed).
func rdpClosed(r geom.Ring, tol float64) geom.Ring {
	if len(r) < 3 {
		return r
	}
	return rdp(r, tol)
}

// rdp is the classic Ramer-Douglas-Peucker simplification over an open
// point sequence, keeping the first and last points.
func rdp(points geom.Ring, tol float64) geom.Ring {
	if len(points) < 3 {
		return points
	}
	maxDist := -1.0
	maxIdx := 0
	first, last := points[0], points[len(points)-1]
	for i := 1; i < len(points)-1; i++ {
		d := perpendicularDistance(points[i], first, last)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}
	if maxDist <= tol {
		return geom.Ring{first, last}
	}
	left := rdp(points[:maxIdx+1], tol)
	right := rdp(points[maxIdx:], tol)
	out := append(geom.Ring(nil), left[:len(left)-1]...)
	return append(out, right...)
}

func perpendicularDistance(p, a, b geom.Point) float64 {
	ab := a.Vector(b)
	if ab.Length() == 0 {
		return p.DistanceTo(a)
	}
	ap := a.Vector(p)
	cross := ab.Cross(ap)
	return math.Abs(cross) / ab.Length()
}

// removeCollinear drops a middle point when the interior angle at it
// deviates from straight by no more than thresholdDeg.
func removeCollinear(r geom.Ring, thresholdDeg float64) geom.Ring {
	n := len(r)
	if n < 4 {
		return r
	}
	var out geom.Ring
	for i := 0; i < n; i++ {
		prev := r[(i-1+n)%n]
		cur := r[i]
		next := r[(i+1)%n]
		in := prev.Vector(cur)
		out2 := cur.Vector(next)
		if in.Length() == 0 || out2.Length() == 0 {
			out = append(out, cur)
			continue
		}
		angle := in.Angle(out2) * 180 / math.Pi
		if angle <= thresholdDeg {
			continue // collinear enough to drop
		}
		out = append(out, cur)
	}
	if len(out) < 3 {
		return r
	}
	return out
}

// removeRedundant drops consecutive vertices closer than distanceThreshold.
func removeRedundant(r geom.Ring, distanceThreshold float64) geom.Ring {
	n := len(r)
	if n < 2 {
		return r
	}
	var out geom.Ring
	out = append(out, r[0])
	for i := 1; i < n; i++ {
		if r[i].DistanceTo(out[len(out)-1]) <= distanceThreshold {
			continue
		}
		out = append(out, r[i])
	}
	if len(out) > 1 && out[0].DistanceTo(out[len(out)-1]) <= distanceThreshold {
		out = out[:len(out)-1]
	}
	return out
}

// optimiseJunctions slightly straightens very-sharp corners (turning angle
// between incoming and outgoing edges above 144 degrees, i.e. an interior
// angle below 36 degrees) under an aggressive simplification level, nudging the
// vertex a small fraction toward the chord between its neighbours.
func optimiseJunctions(r geom.Ring) geom.Ring {
	n := len(r)
	if n < 4 {
		return r
	}
	out := append(geom.Ring(nil), r...)
	const nudgeFraction = 0.1
	for i := 0; i < n; i++ {
		prev := r[(i-1+n)%n]
		cur := r[i]
		next := r[(i+1)%n]
		in := prev.Vector(cur)
		outDir := cur.Vector(next)
		if in.Length() == 0 || outDir.Length() == 0 {
			continue
		}
		angle := in.Angle(outDir) * 180 / math.Pi
		if angle <= 144 {
			continue
		}
		mid := geom.NewPoint((prev.X+next.X)/2, (prev.Y+next.Y)/2)
		nudged := cur.Translated(cur.Vector(mid).Scale(nudgeFraction))
		out[i] = nudged
	}
	return out
}
