// Package offset implements the robust offset engine (spec §4.2): it builds
// left and right offset curves from a baseline, choosing a join type at each
// interior vertex and falling back to a cruder construction when the chosen
// join produces a self-intersecting result.
package offset

import (
	"fmt"

	"github.com/arxos/wallkernel/geom"
	"github.com/arxos/wallkernel/miter"
)

// Result is the outcome of one Offset call.
type Result struct {
	Left, Right *geom.Curve

	// JoinTypes maps an interior baseline vertex's point ID to the join type
	// actually used there.
	JoinTypes map[string]miter.JoinType

	FallbackUsed bool
	Warnings     []string
}

// Offset computes the left and right offset curves of baseline at signed
// distance d (left offset is the curve on baseline's left when walking from
// first to last point). thickness feeds the per-vertex join-type heuristic
// independently of d, since a caller may offset by half-thickness while the
// heuristic reasons about the full wall thickness. Fails only on degenerate
// input: fewer than 2 points, non-positive d, or negative tolerance.
func Offset(baseline *geom.Curve, d, thickness float64, requested miter.JoinType, tolerance, miterLimit float64) (Result, error) {
	if baseline == nil || len(baseline.Points) < 2 {
		return Result{}, fmt.Errorf("offset: baseline has fewer than 2 points")
	}
	if d <= 0 {
		return Result{}, fmt.Errorf("offset: signed distance d must be positive, got %v", d)
	}
	if tolerance < 0 {
		return Result{}, fmt.Errorf("offset: tolerance must be non-negative, got %v", tolerance)
	}

	points := dedupe(baseline.Points, tolerance)
	if len(points) < 2 {
		return Result{}, fmt.Errorf("offset: baseline collapses to fewer than 2 distinct points within tolerance")
	}

	primary := build(points, d, thickness, requested, miterLimit)
	if !primary.selfIntersects() {
		return primary.toResult(), nil
	}

	relaxed := build(points, d, thickness, miter.JoinBevel, miterLimit)
	relaxed.warnings = append(relaxed.warnings, "offset retried with bevel join after the requested join produced a self-intersecting solid")
	relaxed.fallbackUsed = true
	if !relaxed.selfIntersects() {
		return relaxed.toResult(), nil
	}

	straight := straightDisplacement(points, d)
	straight.warnings = append(straight.warnings, "offset fell back to straight per-segment displacement; corners are unmitered")
	straight.fallbackUsed = true
	return straight.toResult(), nil
}

// dedupe drops consecutive points coincident within tol, since a zero-length
// baseline segment has no direction to offset along.
func dedupe(points []geom.Point, tol float64) []geom.Point {
	if len(points) == 0 {
		return points
	}
	out := make([]geom.Point, 0, len(points))
	out = append(out, points[0])
	for i := 1; i < len(points); i++ {
		if points[i].DistanceTo(out[len(out)-1]) > tol {
			out = append(out, points[i])
		}
	}
	return out
}

// buildState accumulates one attempt's output.
type buildState struct {
	leftPoints, rightPoints []geom.Point
	joinTypes               map[string]miter.JoinType
	fallbackUsed            bool
	warnings                []string
}

func (b *buildState) toResult() Result {
	return Result{
		Left:         geom.NewCurve(b.leftPoints),
		Right:        geom.NewCurve(b.rightPoints),
		JoinTypes:    b.joinTypes,
		FallbackUsed: b.fallbackUsed,
		Warnings:     b.warnings,
	}
}

// selfIntersects checks whether the candidate solid polygon (left offset
// forward, right offset reversed) crosses itself — the offset engine's
// convergence signal: a join that bows back across the wall means the
// requested join degenerated for this geometry.
func (b *buildState) selfIntersects() bool {
	ring := make(geom.Ring, 0, len(b.leftPoints)+len(b.rightPoints))
	ring = append(ring, b.leftPoints...)
	for i := len(b.rightPoints) - 1; i >= 0; i-- {
		ring = append(ring, b.rightPoints[i])
	}
	return ring.SelfIntersects()
}

// build computes one full offset attempt (both sides) with a single
// requested join type. points must already be deduplicated.
func build(points []geom.Point, d, thickness float64, requested miter.JoinType, miterLimit float64) *buildState {
	n := len(points)

	dirs := make([]geom.Vector, n-1)
	for i := 0; i < n-1; i++ {
		dirs[i] = points[i].Vector(points[i+1]).Normalize()
	}

	state := &buildState{
		leftPoints:  make([]geom.Point, n),
		rightPoints: make([]geom.Point, n),
		joinTypes:   make(map[string]miter.JoinType),
	}

	for i := 0; i < n; i++ {
		switch {
		case i == 0:
			state.leftPoints[i] = sideEndpoint(points[i], dirs[0], d, true)
			state.rightPoints[i] = sideEndpoint(points[i], dirs[0], d, false)
		case i == n-1:
			state.leftPoints[i] = sideEndpoint(points[i], dirs[n-2], d, true)
			state.rightPoints[i] = sideEndpoint(points[i], dirs[n-2], d, false)
		default:
			dirPrev, dirNext := dirs[i-1], dirs[i]

			leftBefore := points[i].Translated(dirPrev.Perpendicular().Scale(d))
			leftAfter := points[i].Translated(dirNext.Perpendicular().Scale(d))
			leftCalc := miter.Calculate(leftBefore, leftAfter, points[i], thickness, dirPrev, dirNext, requested, miterLimit)
			state.leftPoints[i] = leftCalc.Apex
			state.warnings = append(state.warnings, leftCalc.Warnings...)
			if leftCalc.FallbackUsed {
				state.fallbackUsed = true
			}

			rightBefore := points[i].Translated(dirPrev.Perpendicular().Scale(-d))
			rightAfter := points[i].Translated(dirNext.Perpendicular().Scale(-d))
			rightCalc := miter.Calculate(rightBefore, rightAfter, points[i], thickness, dirPrev, dirNext, requested, miterLimit)
			state.rightPoints[i] = rightCalc.Apex
			state.warnings = append(state.warnings, rightCalc.Warnings...)
			if rightCalc.FallbackUsed {
				state.fallbackUsed = true
			}

			// The two sides agree on the realized angle; record whichever
			// join type was actually chosen (they're symmetric, so either
			// suffices).
			state.joinTypes[points[i].ID] = leftCalc.ChosenJoinType
		}
	}

	return state
}

// sideEndpoint displaces a baseline point along a single adjacent segment's
// normal; left selects the counter-clockwise normal.
func sideEndpoint(p geom.Point, dir geom.Vector, d float64, left bool) geom.Point {
	normal := dir.Perpendicular()
	if !left {
		normal = normal.Scale(-1)
	}
	displaced := p.Translated(normal.Scale(d))
	displaced.CreationMethod = geom.CreatedOffset
	return displaced
}

// straightDisplacement is the last-resort fallback: every vertex is
// displaced along the normal of the averaged segment direction, with no join apex
// calculation at all.
func straightDisplacement(points []geom.Point, d float64) *buildState {
	n := len(points)
	state := &buildState{
		leftPoints:  make([]geom.Point, n),
		rightPoints: make([]geom.Point, n),
		joinTypes:   make(map[string]miter.JoinType),
	}

	avg := geom.Vector{}
	for i := 0; i < n-1; i++ {
		avg = avg.Add(points[i].Vector(points[i+1]).Normalize())
	}
	avg = avg.Normalize()
	if avg.Length() == 0 {
		avg = geom.NewVector(1, 0)
	}

	for i := 0; i < n; i++ {
		state.leftPoints[i] = sideEndpoint(points[i], avg, d, true)
		state.rightPoints[i] = sideEndpoint(points[i], avg, d, false)
	}
	return state
}
