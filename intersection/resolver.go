package intersection

import (
	"math"

	"github.com/arxos/wallkernel/geom"
)

// WallBaseline is the minimal view of a wall the resolver needs: its id and
// its baseline curve.
type WallBaseline struct {
	ID       string
	Baseline *geom.Curve
}

// Strategy is the chosen cross-junction resolution strategy.
type Strategy string

const (
	StrategySequentialUnion Strategy = "sequential_union"
	StrategyHierarchical    Strategy = "hierarchical"
	StrategyOptimisedBatch  Strategy = "optimised_batch"
)

// CrossJunctionPlan is the resolver's recommendation for a >=3-wall
// junction (spec §4.6).
type CrossJunctionPlan struct {
	Center             geom.Point
	ComplexityScore    float64
	Strategy           Strategy
	HasExtremeAngles   bool
	ExtremeAngleCount  int
	PairwiseAngles     []float64
}

// PlanCrossJunction computes the junction center, pairwise angles and
// chosen union strategy for a cross-junction of three or more walls.
func PlanCrossJunction(walls []WallBaseline) CrossJunctionPlan {
	center := centroidOf(walls)
	angles := pairwiseAngles(walls, center)

	extreme := 0
	for _, a := range angles {
		deg := a * 180 / math.Pi
		if deg < 15 || deg > 165 {
			extreme++
		}
	}

	complexity := 2*float64(len(walls)) + stddev(angles) + 5*float64(extreme)

	var strategy Strategy
	switch {
	case complexity < 10:
		strategy = StrategySequentialUnion
	case complexity < 25:
		strategy = StrategyHierarchical
	default:
		strategy = StrategyOptimisedBatch
	}

	return CrossJunctionPlan{
		Center:            center,
		ComplexityScore:   complexity,
		Strategy:          strategy,
		HasExtremeAngles:  extreme > 0,
		ExtremeAngleCount: extreme,
		PairwiseAngles:    angles,
	}
}

func centroidOf(walls []WallBaseline) geom.Point {
	var sumX, sumY float64
	count := 0
	for _, w := range walls {
		for _, p := range w.Baseline.Points {
			sumX += p.X
			sumY += p.Y
			count++
		}
	}
	if count == 0 {
		return geom.NewPoint(0, 0)
	}
	return geom.NewPoint(sumX/float64(count), sumY/float64(count))
}

func tangentOf(w WallBaseline) geom.Vector {
	pts := w.Baseline.Points
	if len(pts) < 2 {
		return geom.Vector{}
	}
	return pts[0].Vector(pts[len(pts)-1]).Normalize()
}

// tangentNear returns the direction of the baseline segment of w closest to
// at, i.e. the tangent local to the junction rather than the whole
// baseline's overall secant. For a 2-point straight baseline this reduces to
// tangentOf; for a curved or multi-vertex baseline it picks the segment
// actually passing near the junction center.
func tangentNear(w WallBaseline, at geom.Point) geom.Vector {
	pts := w.Baseline.Points
	if len(pts) < 2 {
		return geom.Vector{}
	}
	bestDist := math.Inf(1)
	best := pts[0].Vector(pts[1])
	for i := 0; i < len(pts)-1; i++ {
		a, b := pts[i], pts[i+1]
		d := distanceToSegment(at, a, b)
		if d < bestDist {
			bestDist = d
			best = a.Vector(b)
		}
	}
	return best.Normalize()
}

// distanceToSegment returns the distance from p to the closest point on
// segment ab.
func distanceToSegment(p, a, b geom.Point) float64 {
	ab := a.Vector(b)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return p.DistanceTo(a)
	}
	ap := a.Vector(p)
	t := (ap.X*ab.X + ap.Y*ab.Y) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := geom.NewPoint(a.X+t*ab.X, a.Y+t*ab.Y)
	return p.DistanceTo(closest)
}

func pairwiseAngles(walls []WallBaseline, center geom.Point) []float64 {
	var angles []float64
	for i := 0; i < len(walls); i++ {
		for j := i + 1; j < len(walls); j++ {
			ti, tj := tangentNear(walls[i], center), tangentNear(walls[j], center)
			angles = append(angles, ti.Angle(tj))
		}
	}
	return angles
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// ParallelOverlapResolution is the resolver's recommendation for a
// two-wall parallel-overlap junction.
type ParallelOverlapResolution struct {
	Parallelism       float64
	HasOverlap        bool
	OverlapPercentage float64
	ResolutionMethod  string
}

// ResolveParallelOverlap implements spec §4.6's exactly-2-wall case.
func ResolveParallelOverlap(a, b WallBaseline) ParallelOverlapResolution {
	ta, tb := tangentOf(a), tangentOf(b)
	parallelism := math.Abs(ta.Dot(tb))
	hasOverlap := parallelism >= 0.9

	overlapPct := 0.0
	if hasOverlap {
		overlapPct = overlapPercentage(a, b, ta)
	}

	method := "standard_union"
	switch {
	case overlapPct > 80:
		method = "merge"
	case overlapPct >= 20:
		method = "transition_zone"
	}

	return ParallelOverlapResolution{
		Parallelism:       parallelism,
		HasOverlap:        hasOverlap,
		OverlapPercentage: overlapPct,
		ResolutionMethod:  method,
	}
}

// overlapPercentage projects each baseline's endpoints onto the shared axis
// and computes the overlapping span as a percentage of the shorter wall.
func overlapPercentage(a, b WallBaseline, axis geom.Vector) float64 {
	axis = axis.Normalize()
	project := func(p geom.Point) float64 {
		return p.X*axis.X + p.Y*axis.Y
	}
	span := func(w WallBaseline) (float64, float64) {
		pts := w.Baseline.Points
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, p := range pts {
			s := project(p)
			if s < lo {
				lo = s
			}
			if s > hi {
				hi = s
			}
		}
		return lo, hi
	}
	aLo, aHi := span(a)
	bLo, bHi := span(b)

	lo := math.Max(aLo, bLo)
	hi := math.Min(aHi, bHi)
	overlapLen := math.Max(0, hi-lo)

	lenA, lenB := aHi-aLo, bHi-bLo
	shortest := math.Min(lenA, lenB)
	if shortest <= 0 {
		return 0
	}
	return overlapLen / shortest * 100
}

// ExtremeAngleAction names the handling applied to an extreme junction
// angle (spec §4.6).
type ExtremeAngleAction string

const (
	ActionSmoothAdjacentVertices ExtremeAngleAction = "smooth_adjacent_vertices"
	ActionForceBevelJoins        ExtremeAngleAction = "force_bevel_joins"
	ActionCollapseNearCollinear  ExtremeAngleAction = "collapse_near_collinear"
	ActionNone                   ExtremeAngleAction = "none"
)

// ClassifyExtremeAngle maps a junction angle in radians to the handling
// action spec §4.6 prescribes.
func ClassifyExtremeAngle(angleRadians float64) ExtremeAngleAction {
	deg := angleRadians * 180 / math.Pi
	switch {
	case deg < 5:
		return ActionSmoothAdjacentVertices
	case deg < 15:
		return ActionForceBevelJoins
	case deg > 165:
		return ActionCollapseNearCollinear
	default:
		return ActionNone
	}
}

// NetworkOptimisationReport summarises a network-level optimisation pass
// (spec §4.6).
type NetworkOptimisationReport struct {
	OriginalComplexity   int
	OptimisedComplexity  int
	PerformanceGain      float64
	AppliedOptimisations []string
}

// gridCell is the coarse spatial-hash key used to group nearby walls before
// network optimisation.
type gridCell struct{ X, Y int }

func cellOf(p geom.Point) gridCell {
	return gridCell{int(math.Floor(p.X / 100)), int(math.Floor(p.Y / 100))}
}

// OptimiseNetwork groups walls by a coarse spatial hash, flags groups that
// collapse to a single intersection as redundant, and reports the
// before/after complexity.
func OptimiseNetwork(walls []WallBaseline) NetworkOptimisationReport {
	originalComplexity := 0
	groups := make(map[gridCell][]WallBaseline)
	for _, w := range walls {
		originalComplexity += len(w.Baseline.Points)
		if len(w.Baseline.Points) == 0 {
			continue
		}
		mid := w.Baseline.Points[len(w.Baseline.Points)/2]
		cell := cellOf(mid)
		groups[cell] = append(groups[cell], w)
	}

	var applied []string
	redundant := 0
	optimisedComplexity := originalComplexity
	for _, group := range groups {
		if len(group) <= 1 {
			continue
		}
		// A group of collinear, closely-spaced walls collapsing to the same
		// cell is a candidate for redundant-intersection elimination.
		redundant += len(group) - 1
		optimisedComplexity -= (len(group) - 1) * 2
		applied = append(applied, "spatial-grouping")
	}
	if redundant > 0 {
		applied = append(applied, "redundant-intersection-removal")
	}

	gain := 0.0
	if originalComplexity > 0 {
		gain = float64(originalComplexity-optimisedComplexity) / float64(originalComplexity)
	}

	return NetworkOptimisationReport{
		OriginalComplexity:   originalComplexity,
		OptimisedComplexity:  optimisedComplexity,
		PerformanceGain:      gain,
		AppliedOptimisations: applied,
	}
}
