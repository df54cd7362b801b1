package healing

import (
	"sort"

	"github.com/arxos/wallkernel/geom"
)

// vertexLocation pins one vertex to its owning ring and position within it.
type vertexLocation struct {
	ref ringRef
	pos int
}

// VertexPair is a candidate non-consecutive merge (spec §4.8).
type VertexPair struct {
	A, B     vertexLocation
	Distance float64
}

// MergeOptions configures the vertex-merge algorithm.
type MergeOptions struct {
	Tolerance         float64
	MaxSearchRadius   float64
	MaxMergeIterations int
	Rollback          bool
}

// MergeResult is the outcome of a MergeVertices call.
type MergeResult struct {
	Polygons    []*geom.Polygon
	MergesMade  int
	RolledBack  int
	Iterations  int
}

// MergeVertices merges non-consecutive vertices within tolerance across all
// rings of polygons, validating topology after each merge and rolling back
// on failure when opts.Rollback is set (spec §4.8).
func MergeVertices(polygons []*geom.Polygon, opts MergeOptions) MergeResult {
	if opts.MaxMergeIterations <= 0 {
		opts.MaxMergeIterations = 50
	}
	searchRadius := opts.Tolerance
	if opts.MaxSearchRadius > 0 && opts.MaxSearchRadius < searchRadius {
		searchRadius = opts.MaxSearchRadius
	}

	current := clonePolygons(polygons)
	result := MergeResult{}

	for iter := 0; iter < opts.MaxMergeIterations; iter++ {
		result.Iterations = iter + 1
		candidates := findCandidates(current, searchRadius)
		if len(candidates) == 0 {
			break
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].Distance < candidates[j].Distance })

		pair := candidates[0]
		snapshot := clonePolygons(current)
		applyMerge(current, pair)

		if problems := validateTopology(current); len(problems) > 0 {
			if opts.Rollback {
				current = snapshot
				result.RolledBack++
				continue
			}
		}
		result.MergesMade++
	}

	result.Polygons = current
	return result
}

func clonePolygons(polygons []*geom.Polygon) []*geom.Polygon {
	out := make([]*geom.Polygon, len(polygons))
	for i, p := range polygons {
		cp := *p
		cp.Outer = append(geom.Ring(nil), p.Outer...)
		cp.Holes = make([]geom.Ring, len(p.Holes))
		for j, h := range p.Holes {
			cp.Holes[j] = append(geom.Ring(nil), h...)
		}
		out[i] = &cp
	}
	return out
}

func isConsecutive(a, b vertexLocation, ringLen int) bool {
	if a.ref != b.ref {
		return false
	}
	d := a.pos - b.pos
	if d == 1 || d == -1 {
		return true
	}
	// The ring's seam: first and last are adjacent for a closed ring.
	if (a.pos == 0 && b.pos == ringLen-1) || (b.pos == 0 && a.pos == ringLen-1) {
		return true
	}
	return false
}

func findCandidates(polygons []*geom.Polygon, radius float64) []VertexPair {
	var locs []vertexLocation
	for _, ref := range allRings(polygons) {
		r := ringAt(polygons, ref)
		for i := range r {
			locs = append(locs, vertexLocation{ref: ref, pos: i})
		}
	}

	var candidates []VertexPair
	for i := 0; i < len(locs); i++ {
		pi := ringAt(polygons, locs[i].ref)[locs[i].pos]
		for j := i + 1; j < len(locs); j++ {
			if locs[i].ref == locs[j].ref && isConsecutive(locs[i], locs[j], len(ringAt(polygons, locs[i].ref))) {
				continue
			}
			pj := ringAt(polygons, locs[j].ref)[locs[j].pos]
			d := pi.DistanceTo(pj)
			if d > 0 && d <= radius {
				candidates = append(candidates, VertexPair{A: locs[i], B: locs[j], Distance: d})
			}
		}
	}
	return candidates
}

func applyMerge(polygons []*geom.Polygon, pair VertexPair) {
	ra, rb := ringAt(polygons, pair.A.ref), ringAt(polygons, pair.B.ref)
	pa, pb := ra[pair.A.pos], rb[pair.B.pos]
	apex := geom.NewPointWithTolerance((pa.X+pb.X)/2, (pa.Y+pb.Y)/2, pa.Tolerance, geom.CreatedMerge, 0.9)

	ra[pair.A.pos] = apex
	setRingAt(polygons, pair.A.ref, ra)
	rb = ringAt(polygons, pair.B.ref)
	rb[pair.B.pos] = apex
	setRingAt(polygons, pair.B.ref, rb)
}

// validateTopology checks the invariants spec §4.8 requires after a merge:
// no ring below 3 points, no ring self-intersection, no polygon area
// collapsed below 1e-10.
func validateTopology(polygons []*geom.Polygon) []string {
	var problems []string
	for _, ref := range allRings(polygons) {
		r := ringAt(polygons, ref)
		if len(r) < 3 {
			problems = append(problems, "ring collapsed below 3 points")
			continue
		}
		if r.SelfIntersects() {
			problems = append(problems, "ring self-intersects after merge")
		}
	}
	for _, p := range polygons {
		if p.Area() < 1e-10 {
			problems = append(problems, "polygon area collapsed below 1e-10")
		}
	}
	return problems
}
