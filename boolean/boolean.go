// Package boolean implements the boolean operations engine (spec §4.4):
// union, intersection, difference, batched union and wall-intersection
// resolution over BIM polygons, delegating the actual clipping arithmetic to
// the clipper2 port's scanline engine.
//
// clipper2's Clipper64 type works in fixed-point int64 coordinates; this
// package is the marshalling boundary between the kernel's float64 geometry
// and that representation. The vendored port in the retrieval pack only
// carried its type declarations and offsetting path, not the boolean
// Execute entry point, so the call shape below (NewClipper64, AddPath,
// Execute) follows the upstream Clipper2 API that port mirrors; see
// DESIGN.md for that assumption.
package boolean

import (
	"fmt"
	"math"
	"sort"
	"time"

	clipper "github.com/go-clipper/clipper2"

	"github.com/arxos/wallkernel/geom"
	"github.com/arxos/wallkernel/kernelerrors"
)

// fixedScale converts between the kernel's float64 coordinates and
// clipper2's int64 fixed-point space. 1e6 gives micrometre resolution for
// millimetre-scale wall geometry.
const fixedScale = 1e6

// OperationType names the boolean operation actually performed.
type OperationType string

const (
	OpUnion        OperationType = "union"
	OpIntersection OperationType = "intersection"
	OpDifference   OperationType = "difference"
	OpBatchUnion   OperationType = "batch_union"
)

// Options configures the engine's fallback and quality thresholds.
type Options struct {
	MaxComplexity      int
	SliverAreaFactor   float64 // multiplies tolerance^2 for the sliver threshold
	RelaxedToleranceMul float64
}

// DefaultOptions mirrors the spec's defaults.
func DefaultOptions() Options {
	return Options{
		MaxComplexity:       20000,
		SliverAreaFactor:    10,
		RelaxedToleranceMul: 10,
	}
}

// Result is the outcome of a boolean call.
type Result struct {
	Success         bool
	ResultPolygons  []*geom.Polygon
	OperationType   OperationType
	Warnings        []string
	RequiresHealing bool
	ProcessingTime  time.Duration
}

// Engine runs boolean operations with a fixed Options and tolerance.
type Engine struct {
	opts Options
}

// New builds an Engine with opts; a zero Options uses DefaultOptions.
func New(opts Options) *Engine {
	if opts.MaxComplexity == 0 {
		opts = DefaultOptions()
	}
	return &Engine{opts: opts}
}

// Union unions every polygon in solids into one or more result polygons.
func (e *Engine) Union(solids []*geom.Polygon, tolerance float64) Result {
	return e.run(OpUnion, solids, nil, tolerance)
}

// Intersection intersects a and b.
func (e *Engine) Intersection(a, b *geom.Polygon, tolerance float64) Result {
	return e.run(OpIntersection, []*geom.Polygon{a}, []*geom.Polygon{b}, tolerance)
}

// Difference subtracts b from a.
func (e *Engine) Difference(a, b *geom.Polygon, tolerance float64) Result {
	return e.run(OpDifference, []*geom.Polygon{a}, []*geom.Polygon{b}, tolerance)
}

// BatchUnion unions many solids, ordering by ascending complexity and
// folding sequentially for small batches; large batches divide-and-conquer
// (spec §4.4).
func (e *Engine) BatchUnion(solids []*geom.Polygon, tolerance float64) Result {
	start := time.Now()
	if len(solids) == 0 {
		return Result{Success: false, OperationType: OpBatchUnion, ProcessingTime: time.Since(start)}
	}
	if len(solids) == 1 {
		return Result{Success: true, ResultPolygons: solids, OperationType: OpBatchUnion, ProcessingTime: time.Since(start)}
	}

	ordered := append([]*geom.Polygon(nil), solids...)
	sort.Slice(ordered, func(i, j int) bool {
		return complexity(ordered[i]) < complexity(ordered[j])
	})

	const divideThreshold = 12
	result := e.batchUnion(ordered, tolerance, divideThreshold)
	result.ProcessingTime = time.Since(start)
	return result
}

func (e *Engine) batchUnion(ordered []*geom.Polygon, tolerance float64, divideThreshold int) Result {
	if len(ordered) <= divideThreshold {
		acc := ordered[0]
		var warnings []string
		requiresHealing := false
		for i := 1; i < len(ordered); i++ {
			r := e.run(OpUnion, []*geom.Polygon{acc}, []*geom.Polygon{ordered[i]}, tolerance)
			if !r.Success || len(r.ResultPolygons) == 0 {
				return Result{Success: false, OperationType: OpBatchUnion, Warnings: append(warnings, r.Warnings...)}
			}
			acc = r.ResultPolygons[0]
			warnings = append(warnings, r.Warnings...)
			requiresHealing = requiresHealing || r.RequiresHealing
		}
		return Result{Success: true, ResultPolygons: []*geom.Polygon{acc}, OperationType: OpBatchUnion, Warnings: warnings, RequiresHealing: requiresHealing}
	}

	mid := len(ordered) / 2
	left := e.batchUnion(ordered[:mid], tolerance, divideThreshold)
	right := e.batchUnion(ordered[mid:], tolerance, divideThreshold)
	if !left.Success || !right.Success {
		return Result{Success: false, OperationType: OpBatchUnion, Warnings: append(left.Warnings, right.Warnings...)}
	}
	combined := e.run(OpUnion, left.ResultPolygons, right.ResultPolygons, tolerance)
	combined.Warnings = append(append(left.Warnings, right.Warnings...), combined.Warnings...)
	combined.RequiresHealing = combined.RequiresHealing || left.RequiresHealing || right.RequiresHealing
	return combined
}

// ResolveWallIntersection unions the participating wall solids as the final
// step of intersection resolution, tagging the result with the junction
// kind for the caller's diagnostics.
func (e *Engine) ResolveWallIntersection(solids []*geom.Polygon, kind string, tolerance float64) Result {
	result := e.BatchUnion(solids, tolerance)
	if kind != "" {
		result.Warnings = append(result.Warnings, fmt.Sprintf("resolved as %s junction", kind))
	}
	return result
}

func (e *Engine) run(op OperationType, subjects, clips []*geom.Polygon, tolerance float64) Result {
	start := time.Now()
	if len(subjects) == 0 && len(clips) == 0 {
		return Result{Success: false, OperationType: op, ProcessingTime: time.Since(start)}
	}
	if op == OpUnion && len(subjects) == 1 && len(clips) == 0 {
		return Result{Success: true, ResultPolygons: subjects, OperationType: op, ProcessingTime: time.Since(start)}
	}

	total := 0
	for _, p := range subjects {
		total += len(p.Outer) + holeLen(p)
	}
	for _, p := range clips {
		total += len(p.Outer) + holeLen(p)
	}
	var warnings []string
	if total > e.opts.MaxComplexity {
		warnings = append(warnings, fmt.Sprintf("input complexity %d exceeds configured maximum %d", total, e.opts.MaxComplexity))
	}

	result, err := e.clip(op, subjects, clips, tolerance)
	if err != nil {
		relaxed := tolerance * e.opts.RelaxedToleranceMul
		result, err = e.clip(op, subjects, clips, relaxed)
		if err != nil {
			kerr := kernelerrors.BooleanFailureErr(string(op), err.Error()).
				WithFix("simplify inputs or widen tolerance before retrying the boolean operation").
				WithCause(err)
			return Result{Success: false, OperationType: op, Warnings: append(warnings, kerr.Error()), ProcessingTime: time.Since(start)}
		}
		warnings = append(warnings, "boolean operation retried with a relaxed tolerance after the first attempt failed")
	}

	requiresHealing := false
	sliverThreshold := tolerance * tolerance * e.opts.SliverAreaFactor
	for _, p := range result {
		if p.Area() < sliverThreshold {
			requiresHealing = true
		}
		for _, h := range p.Holes {
			if h.Area() < sliverThreshold {
				requiresHealing = true
			}
		}
	}

	return Result{
		Success:         true,
		ResultPolygons:  result,
		OperationType:   op,
		Warnings:        warnings,
		RequiresHealing: requiresHealing,
		ProcessingTime:  time.Since(start),
	}
}

// clip marshals subjects/clips to clipper2 paths, executes the operation
// and marshals the solution back to polygons.
func (e *Engine) clip(op OperationType, subjects, clips []*geom.Polygon, tolerance float64) ([]*geom.Polygon, error) {
	c := clipper.NewClipper64()
	for _, p := range subjects {
		addPolygon(c, p, clipper.PathTypeSubject)
	}
	for _, p := range clips {
		addPolygon(c, p, clipper.PathTypeClip)
	}

	clipType := toClipType(op)
	solution, err := c.Execute(clipType, clipper.NonZero)
	if err != nil {
		return nil, fmt.Errorf("clipper2 execute: %w", err)
	}

	return pathsToPolygons(solution, tolerance), nil
}

func toClipType(op OperationType) clipper.ClipType {
	switch op {
	case OpIntersection:
		return clipper.Intersection
	case OpDifference:
		return clipper.Difference
	default:
		return clipper.Union
	}
}

func addPolygon(c *clipper.Clipper64, p *geom.Polygon, pathType clipper.PathType) {
	c.AddPath(ringToPath(p.Outer), pathType, false)
	for _, h := range p.Holes {
		c.AddPath(ringToPath(h), pathType, false)
	}
}

func ringToPath(r geom.Ring) clipper.Path64 {
	closed := r.AsClosed(0)
	path := make(clipper.Path64, len(closed))
	for i, pt := range closed {
		path[i] = clipper.Point64{X: toFixed(pt.X), Y: toFixed(pt.Y)}
	}
	return path
}

// pathsToPolygons groups clipper2's flat output paths into polygons by
// orientation: CCW paths start a new outer ring, CW paths are holes of the
// most recently started outer ring (clipper2 always nests holes
// immediately after their owning outer ring in NonZero solutions).
func pathsToPolygons(paths clipper.Paths64, tolerance float64) []*geom.Polygon {
	var out []*geom.Polygon
	var current *geom.Polygon
	for _, path := range paths {
		ring := pathToRing(path, tolerance)
		if len(ring) < 3 {
			continue
		}
		if ring.IsCCW() {
			current = geom.NewPolygon(ring, nil)
			out = append(out, current)
		} else if current != nil {
			current.Holes = append(current.Holes, ring.EnsureOrientation(false))
		} else {
			out = append(out, geom.NewPolygon(ring.Reversed(), nil))
		}
	}
	return out
}

func pathToRing(path clipper.Path64, tolerance float64) geom.Ring {
	ring := make(geom.Ring, len(path))
	for i, pt := range path {
		ring[i] = geom.NewPointWithTolerance(fromFixed(pt.X), fromFixed(pt.Y), tolerance, geom.CreatedBoolean, 0.9)
	}
	return ring
}

func toFixed(v float64) int64 {
	return int64(math.Round(v * fixedScale))
}

func fromFixed(v int64) float64 {
	return float64(v) / fixedScale
}

func complexity(p *geom.Polygon) int {
	n := len(p.Outer)
	n += holeLen(p)
	return n
}

func holeLen(p *geom.Polygon) int {
	total := 0
	for _, h := range p.Holes {
		total += len(h)
	}
	return total
}
