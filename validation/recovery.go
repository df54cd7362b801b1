package validation

import (
	"math"

	"github.com/arxos/wallkernel/geom"
	"github.com/arxos/wallkernel/healing"
	"github.com/arxos/wallkernel/kernelerrors"
	"github.com/arxos/wallkernel/simplify"
)

// RecoveryStrategy names one of the pipeline's priority-ordered recovery
// attempts (spec §4.10).
type RecoveryStrategy string

const (
	RecoverDegenerateGeometry   RecoveryStrategy = "degenerate-recovery"
	RecoverSelfIntersection     RecoveryStrategy = "self-intersection-resolution"
	RecoverNumericalStability   RecoveryStrategy = "numerical-stability"
	RecoverTopologyRepair       RecoveryStrategy = "topology-repair"
	RecoverDuplicateVertices    RecoveryStrategy = "duplicate-vertex-removal"
	RecoverGeometricSimplify    RecoveryStrategy = "geometric-simplification"
	RecoverFallbackReconstruct  RecoveryStrategy = "fallback-reconstruction"
)

// recoveryOrder is the priority order strategies are attempted in: cheapest
// and most targeted first, the destructive fallback last.
var recoveryOrder = []RecoveryStrategy{
	RecoverDegenerateGeometry,
	RecoverSelfIntersection,
	RecoverNumericalStability,
	RecoverTopologyRepair,
	RecoverDuplicateVertices,
	RecoverGeometricSimplify,
	RecoverFallbackReconstruct,
}

// RecoveryOutcome records whether a strategy was attempted and what it did.
type RecoveryOutcome struct {
	Strategy      RecoveryStrategy
	Applied       bool
	Detail        string
	QualityImpact float64 // in [0,1]; cost this strategy's repair cost the geometry
}

// Recover attempts, in priority order, to repair polygons against the
// errors a validation pass produced, stopping when maxAttempts is reached,
// accumulated quality-impact exceeds 1-qualityThreshold, or any of errs is
// marked non-recoverable (spec §4.10) — mirroring the teacher's own
// Recoverable-flag guard clause. It returns the outcomes tried and the
// (possibly repaired) polygons; the caller re-validates the result.
func Recover(errs []*kernelerrors.KernelError, polygons []*geom.Polygon, maxAttempts int, qualityThreshold float64) ([]RecoveryOutcome, []*geom.Polygon) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if hasNonRecoverable(errs) {
		return nil, polygons
	}

	current := polygons
	var outcomes []RecoveryOutcome
	present := kindsPresent(errs)
	maxImpact := 1 - qualityThreshold

	attempt := 0
	totalImpact := 0.0
	for _, strategy := range recoveryOrder {
		if attempt >= maxAttempts || totalImpact > maxImpact {
			break
		}
		if !strategyApplies(strategy, present) {
			continue
		}
		attempt++
		next, detail, changed, impact := applyStrategy(strategy, current)
		outcomes = append(outcomes, RecoveryOutcome{Strategy: strategy, Applied: changed, Detail: detail, QualityImpact: impact})
		if changed {
			current = next
			totalImpact += impact
		}
	}
	return outcomes, current
}

func hasNonRecoverable(errs []*kernelerrors.KernelError) bool {
	for _, e := range errs {
		if !e.Recoverable {
			return true
		}
	}
	return false
}

func kindsPresent(errs []*kernelerrors.KernelError) map[kernelerrors.Kind]bool {
	present := map[kernelerrors.Kind]bool{}
	for _, e := range errs {
		present[e.Kind] = true
	}
	return present
}

func strategyApplies(s RecoveryStrategy, present map[kernelerrors.Kind]bool) bool {
	switch s {
	case RecoverDegenerateGeometry:
		return present[kernelerrors.DegenerateGeometry]
	case RecoverSelfIntersection:
		return present[kernelerrors.SelfIntersection]
	case RecoverNumericalStability:
		return present[kernelerrors.NumericalInstability]
	case RecoverTopologyRepair:
		return present[kernelerrors.TopologyError]
	case RecoverDuplicateVertices:
		return present[kernelerrors.DuplicateVertices]
	case RecoverGeometricSimplify:
		return present[kernelerrors.ToleranceExceeded] || present[kernelerrors.ComplexityExceeded]
	case RecoverFallbackReconstruct:
		// Always eligible: the strategy of last resort. As the last entry in
		// recoveryOrder it runs after the targeted strategies whenever the
		// attempt and quality-impact budgets still allow, whether or not
		// those strategies already changed the geometry.
		return true
	}
	return false
}

// applyStrategy runs s over polygons, returning the (possibly unchanged)
// result, a human-readable detail, whether anything actually changed, and
// the strategy's quality-impact in [0,1] — the fraction of geometric detail
// or accuracy this repair cost, which Recover accumulates to decide when
// recovery has become too destructive to continue (spec §4.10).
func applyStrategy(s RecoveryStrategy, polygons []*geom.Polygon) ([]*geom.Polygon, string, bool, float64) {
	switch s {
	case RecoverDegenerateGeometry:
		return dropDegenerate(polygons)
	case RecoverSelfIntersection:
		return resolveSelfIntersection(polygons)
	case RecoverNumericalStability:
		return roundCoordinates(polygons)
	case RecoverTopologyRepair:
		return repairTopology(polygons)
	case RecoverDuplicateVertices:
		return removeDuplicateVertices(polygons)
	case RecoverGeometricSimplify:
		return simplifyAggressively(polygons)
	case RecoverFallbackReconstruct:
		return reconstructFromBBox(polygons)
	}
	return polygons, "", false, 0
}

// dropDegenerate removes any polygon whose outer ring has fewer than 3
// points or non-positive area: there is no geometry left to repair. Impact
// is the fraction of the input discarded.
func dropDegenerate(polygons []*geom.Polygon) ([]*geom.Polygon, string, bool, float64) {
	out := make([]*geom.Polygon, 0, len(polygons))
	dropped := 0
	for _, p := range polygons {
		if len(p.Outer) < 3 || p.Area() <= 0 {
			dropped++
			continue
		}
		out = append(out, p)
	}
	if dropped == 0 {
		return polygons, "no degenerate polygons found", false, 0
	}
	impact := float64(dropped) / float64(len(polygons))
	return out, "dropped polygons with unrecoverable degenerate geometry", true, impact
}

// resolveSelfIntersection runs the healing pipeline's sliver and duplicate
// edge passes, which in practice also break most self-crossing slivers.
func resolveSelfIntersection(polygons []*geom.Polygon) ([]*geom.Polygon, string, bool, float64) {
	result := healing.Heal(polygons, 1e-6, healing.DefaultOptions())
	changed := result.FacesRemoved > 0 || result.EdgesMerged > 0 || result.GapsEliminated > 0
	if !changed {
		return result.Polygons, "ran the healing pipeline to resolve self-intersecting rings", false, 0
	}
	return result.Polygons, "ran the healing pipeline to resolve self-intersecting rings", true, 0.15
}

// roundCoordinates snaps every coordinate to a coarse grid, clearing the
// tiny floating-point jitter that trips numerical-stability checks. Low
// impact: the snap is well within tolerance of the original geometry.
func roundCoordinates(polygons []*geom.Polygon) ([]*geom.Polygon, string, bool, float64) {
	const grid = 1e6 // snap to 1e-6 units
	changed := false
	out := make([]*geom.Polygon, len(polygons))
	for i, p := range polygons {
		cp := *p
		cp.Outer = roundRing(p.Outer, grid, &changed)
		holes := make([]geom.Ring, len(p.Holes))
		for j, h := range p.Holes {
			holes[j] = roundRing(h, grid, &changed)
		}
		cp.Holes = holes
		out[i] = &cp
	}
	if !changed {
		return out, "snapped coordinates to a stable grid", false, 0
	}
	return out, "snapped coordinates to a stable grid", true, 0.05
}

func roundRing(r geom.Ring, grid float64, changed *bool) geom.Ring {
	out := make(geom.Ring, len(r))
	for i, pt := range r {
		rx := math.Round(pt.X*grid) / grid
		ry := math.Round(pt.Y*grid) / grid
		if rx != pt.X || ry != pt.Y {
			*changed = true
		}
		out[i] = geom.NewPoint(rx, ry)
	}
	return out
}

// repairTopology re-orients rings (outer CCW, holes CW) and merges
// near-coincident vertices across the whole polygon set. Moderate impact:
// orientation is lossless but the vertex merge can erase fine detail.
func repairTopology(polygons []*geom.Polygon) ([]*geom.Polygon, string, bool, float64) {
	out := make([]*geom.Polygon, len(polygons))
	for i, p := range polygons {
		cp := *p
		cp.Outer = p.Outer.EnsureOrientation(true)
		holes := make([]geom.Ring, len(p.Holes))
		for j, h := range p.Holes {
			holes[j] = h.EnsureOrientation(false)
		}
		cp.Holes = holes
		out[i] = &cp
	}
	merged := healing.MergeVertices(out, healing.MergeOptions{Tolerance: 1e-6, MaxMergeIterations: 3, Rollback: true})
	return merged.Polygons, "normalized ring orientation and merged near-coincident vertices", true, 0.1
}

// removeDuplicateVertices runs the full simplification pipeline for a wall
// thickness of 1 with the collinear-angle threshold at 0: RDP at the
// adaptive tolerance (0.01), removal of exactly collinear points, and the
// redundant-vertex filter. Besides near-duplicate vertices it therefore also
// drops points within 0.01 of the chord between kept neighbours. Its quality
// impact is a fixed estimate of 0.05.
func removeDuplicateVertices(polygons []*geom.Polygon) ([]*geom.Polygon, string, bool, float64) {
	opts := simplify.DefaultOptions()
	opts.CollinearAngleThresholdDeg = 0
	result := simplify.Simplify(polygons, 1, opts)
	return result.Polygons, "removed redundant near-duplicate vertices", true, 0.05
}

// simplifyAggressively runs the full simplification pipeline with junction
// optimisation enabled, trading detail for stability on overly complex or
// tolerance-violating rings.
func simplifyAggressively(polygons []*geom.Polygon) ([]*geom.Polygon, string, bool, float64) {
	opts := simplify.DefaultOptions()
	opts.Aggressive = true
	result := simplify.Simplify(polygons, 1, opts)
	return result.Polygons, "simplified aggressively to reduce complexity", true, 0.2
}

// reconstructFromBBox is the last-resort strategy: every remaining polygon
// is replaced by its own axis-aligned bounding box, guaranteeing a valid,
// simple, hole-free result at the cost of all detail — the highest impact
// of any strategy, which is why it runs last in recoveryOrder.
func reconstructFromBBox(polygons []*geom.Polygon) ([]*geom.Polygon, string, bool, float64) {
	out := make([]*geom.Polygon, 0, len(polygons))
	for _, p := range polygons {
		bbox := p.BBox()
		ring := geom.Ring{
			geom.NewPoint(bbox.MinX, bbox.MinY),
			geom.NewPoint(bbox.MaxX, bbox.MinY),
			geom.NewPoint(bbox.MaxX, bbox.MaxY),
			geom.NewPoint(bbox.MinX, bbox.MaxY),
		}
		out = append(out, geom.NewPolygon(ring, nil))
	}
	return out, "reconstructed polygons from their bounding boxes", true, 0.6
}
