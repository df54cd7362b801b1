// Package healing implements shape healing (spec §4.7) and non-consecutive
// vertex merging (spec §4.8).
package healing

import (
	"fmt"
	"time"

	"github.com/arxos/wallkernel/geom"
)

// OperationType names a kind of healing step, recorded append-only against
// a WallSolid's history.
type OperationType string

const (
	OpSliverRemoval       OperationType = "sliver_removal"
	OpDuplicateEdgeMerge  OperationType = "duplicate_edge_merge"
	OpMicroGapElimination OperationType = "micro_gap_elimination"
	OpVertexMerge         OperationType = "vertex_merge"
)

// Operation is one entry in the append-only HealingOperation history.
type Operation struct {
	Type        OperationType
	Description string
	At          time.Time
}

// Options configures the thresholds every healing pass uses.
type Options struct {
	ThinnessThreshold      float64 // area/perimeter^2 ratio below which a ring is a sliver
	DuplicateEdgeTolerance float64
	MicroGapThreshold      float64
	MaxHealingIterations   int
}

// DefaultOptions mirrors the spec's suggested defaults.
func DefaultOptions() Options {
	return Options{
		ThinnessThreshold:      1e-4,
		DuplicateEdgeTolerance: 1e-6,
		MicroGapThreshold:      1e-5,
		MaxHealingIterations:   8,
	}
}

// Result is the outcome of a Heal call.
type Result struct {
	Polygons       []*geom.Polygon
	History        []Operation
	FacesRemoved   int
	EdgesMerged    int
	GapsEliminated int
	Converged      bool
	Iterations     int
}

// Heal runs sliver removal, duplicate-edge merging and micro-gap
// elimination to convergence, or until maxHealingIterations is reached.
func Heal(polygons []*geom.Polygon, tolerance float64, opts Options) Result {
	if opts.MaxHealingIterations <= 0 {
		opts = DefaultOptions()
	}
	current := polygons
	result := Result{}

	for iter := 0; iter < opts.MaxHealingIterations; iter++ {
		result.Iterations = iter + 1
		changed := false

		withoutSlivers, removed := removeSlivers(current, tolerance, opts)
		if removed > 0 {
			result.FacesRemoved += removed
			result.History = append(result.History, Operation{Type: OpSliverRemoval, Description: fmt.Sprintf("removed %d sliver ring(s)", removed), At: time.Now()})
			changed = true
		}
		current = withoutSlivers

		merged, mergedCount := mergeDuplicateEdges(current, opts.DuplicateEdgeTolerance)
		if mergedCount > 0 {
			result.EdgesMerged += mergedCount
			result.History = append(result.History, Operation{Type: OpDuplicateEdgeMerge, Description: fmt.Sprintf("merged %d duplicate edge run(s)", mergedCount), At: time.Now()})
			changed = true
		}
		current = merged

		closed, gaps := eliminateMicroGaps(current, opts.MicroGapThreshold)
		if gaps > 0 {
			result.GapsEliminated += gaps
			result.History = append(result.History, Operation{Type: OpMicroGapElimination, Description: fmt.Sprintf("eliminated %d micro-gap(s)", gaps), At: time.Now()})
			changed = true
		}
		current = closed

		if !changed {
			result.Converged = true
			break
		}
	}

	result.Polygons = current
	return result
}

// removeSlivers drops any ring (outer or hole) whose area is below the
// absolute sliver threshold or whose area/perimeter^2 ratio is below the
// thinness threshold. A polygon whose outer ring is a sliver is dropped
// entirely.
func removeSlivers(polygons []*geom.Polygon, tolerance float64, opts Options) ([]*geom.Polygon, int) {
	absThreshold := tolerance * tolerance * 10
	removed := 0
	var out []*geom.Polygon

	isSliver := func(r geom.Ring) bool {
		area := r.Area()
		if area < absThreshold {
			return true
		}
		perim := r.Perimeter()
		if perim == 0 {
			return true
		}
		return area/(perim*perim) < opts.ThinnessThreshold
	}

	for _, p := range polygons {
		if isSliver(p.Outer) {
			removed++
			continue
		}
		var holes []geom.Ring
		for _, h := range p.Holes {
			if isSliver(h) {
				removed++
				continue
			}
			holes = append(holes, h)
		}
		cp := *p
		cp.Holes = holes
		out = append(out, &cp)
	}
	return out, removed
}

// mergeDuplicateEdges collapses runs of consecutive points within tol to a
// single point per ring.
func mergeDuplicateEdges(polygons []*geom.Polygon, tol float64) ([]*geom.Polygon, int) {
	totalMerged := 0
	out := make([]*geom.Polygon, len(polygons))
	for i, p := range polygons {
		outer, n := collapseRing(p.Outer, tol)
		totalMerged += n
		holes := make([]geom.Ring, len(p.Holes))
		for j, h := range p.Holes {
			collapsed, m := collapseRing(h, tol)
			holes[j] = collapsed
			totalMerged += m
		}
		cp := *p
		cp.Outer = outer
		cp.Holes = holes
		out[i] = &cp
	}
	return out, totalMerged
}

func collapseRing(r geom.Ring, tol float64) (geom.Ring, int) {
	if len(r) < 2 {
		return r, 0
	}
	var out geom.Ring
	out = append(out, r[0])
	merged := 0
	for i := 1; i < len(r); i++ {
		if r[i].DistanceTo(out[len(out)-1]) <= tol {
			merged++
			continue
		}
		out = append(out, r[i])
	}
	// The ring's seam counts too: if the last surviving point collapses
	// into the first, drop it.
	if len(out) > 1 && out[len(out)-1].DistanceTo(out[0]) <= tol {
		out = out[:len(out)-1]
		merged++
	}
	return out, merged
}

// eliminateMicroGaps snaps each ring's near-closing seam shut, and snaps
// vertices across different rings that sit within the micro-gap threshold
// of one another.
func eliminateMicroGaps(polygons []*geom.Polygon, threshold float64) ([]*geom.Polygon, int) {
	gaps := 0
	out := make([]*geom.Polygon, len(polygons))
	for i, p := range polygons {
		outer, n1 := closeSeam(p.Outer, threshold)
		gaps += n1
		holes := make([]geom.Ring, len(p.Holes))
		for j, h := range p.Holes {
			closed, n2 := closeSeam(h, threshold)
			holes[j] = closed
			gaps += n2
		}
		cp := *p
		cp.Outer = outer
		cp.Holes = holes
		out[i] = &cp
	}

	gaps += snapNearTouchingRings(out, threshold)
	return out, gaps
}

func closeSeam(r geom.Ring, threshold float64) (geom.Ring, int) {
	if len(r) < 3 {
		return r, 0
	}
	first, last := r[0], r[len(r)-1]
	d := first.DistanceTo(last)
	if d > 0 && d <= threshold {
		cp := append(geom.Ring(nil), r...)
		cp[len(cp)-1] = first
		return cp, 1
	}
	return r, 0
}

// ringRef identifies one ring within the polygon list, for in-place
// mutation during cross-ring snapping.
type ringRef struct {
	polyIdx int
	isHole  bool
	holeIdx int
}

func allRings(polygons []*geom.Polygon) []ringRef {
	var refs []ringRef
	for i, p := range polygons {
		refs = append(refs, ringRef{polyIdx: i})
		for h := range p.Holes {
			refs = append(refs, ringRef{polyIdx: i, isHole: true, holeIdx: h})
		}
	}
	return refs
}

func ringAt(polygons []*geom.Polygon, ref ringRef) geom.Ring {
	if ref.isHole {
		return polygons[ref.polyIdx].Holes[ref.holeIdx]
	}
	return polygons[ref.polyIdx].Outer
}

func setRingAt(polygons []*geom.Polygon, ref ringRef, r geom.Ring) {
	if ref.isHole {
		polygons[ref.polyIdx].Holes[ref.holeIdx] = r
		return
	}
	polygons[ref.polyIdx].Outer = r
}

// snapNearTouchingRings finds vertex pairs in different rings within
// threshold and snaps the second onto the first, mutating polygons in
// place. Small-n O(n^2) scan; wall geometry rings are tens of vertices.
func snapNearTouchingRings(polygons []*geom.Polygon, threshold float64) int {
	refs := allRings(polygons)
	snapped := 0
	for i := 0; i < len(refs); i++ {
		ri := ringAt(polygons, refs[i])
		for j := i + 1; j < len(refs); j++ {
			rj := ringAt(polygons, refs[j])
			changed := false
			for a := range ri {
				for b := range rj {
					if ri[a].DistanceTo(rj[b]) <= threshold && ri[a].DistanceTo(rj[b]) > 0 {
						rj[b] = ri[a]
						snapped++
						changed = true
					}
				}
			}
			if changed {
				setRingAt(polygons, refs[j], rj)
			}
		}
	}
	return snapped
}
