// Package kernel is the facade exposed to the host (spec §6): it wires the
// tolerance manager, offset engine, boolean engine, intersection manager,
// healing/simplification passes and validation pipeline into the single
// set of operations a host application calls.
package kernel

import (
	"fmt"
	"time"

	"github.com/arxos/wallkernel/boolean"
	"github.com/arxos/wallkernel/geom"
	"github.com/arxos/wallkernel/healing"
	"github.com/arxos/wallkernel/intersection"
	"github.com/arxos/wallkernel/kernelconfig"
	"github.com/arxos/wallkernel/kernelerrors"
	"github.com/arxos/wallkernel/kernellog"
	"github.com/arxos/wallkernel/miter"
	"github.com/arxos/wallkernel/offset"
	"github.com/arxos/wallkernel/simplify"
	"github.com/arxos/wallkernel/tolerance"
	"github.com/arxos/wallkernel/validation"
	"github.com/arxos/wallkernel/wallsolid"
)

// Kernel bundles every stateful component the facade operations need: the
// tolerance cache, the intersection cache, and the configured boolean
// engine and validation pipeline.
type Kernel struct {
	opts kernelconfig.Options

	tol      *tolerance.Manager
	isect    *intersection.Manager
	boolEng  *boolean.Engine
	pipeline *validation.Pipeline
}

// New wires a Kernel from opts; callers must call Close when done to
// release the tolerance and intersection caches.
func New(opts kernelconfig.Options) (*Kernel, error) {
	tol, err := tolerance.New()
	if err != nil {
		return nil, fmt.Errorf("kernel: starting tolerance manager: %w", err)
	}
	isect, err := intersection.New(intersection.Config{
		MaxEntries:    int64(opts.CacheMaxEntries),
		TTL:           opts.CacheTTL,
		SweepInterval: opts.CacheCleanupInterval,
		EnableStats:   opts.CacheEnableStatistics,
	})
	if err != nil {
		tol.Close()
		return nil, fmt.Errorf("kernel: starting intersection manager: %w", err)
	}
	return &Kernel{
		opts:     opts,
		tol:      tol,
		isect:    isect,
		boolEng:  boolean.New(boolean.DefaultOptions()),
		pipeline: validation.New(opts),
	}, nil
}

// Close releases the kernel's cache resources.
func (k *Kernel) Close() {
	k.tol.Close()
	k.isect.Close()
}

// effectiveTolerance asks the tolerance manager for the adaptive value at
// thickness for the given operation context; the facade never hardcodes
// opts.Tolerance as a floor, only as the document-precision input.
func (k *Kernel) effectiveTolerance(thickness float64, ctx tolerance.Context, localAngle float64) float64 {
	return k.tol.Calculate(tolerance.Request{
		Thickness:    thickness,
		DocPrecision: k.opts.Tolerance,
		LocalAngle:   localAngle,
		Context:      ctx,
	})
}

// BuildWallSolid builds a WallSolid from a baseline, thickness and wall
// type: the offset engine produces left/right curves, and an initial solid
// polygon is constructed from them, then validated (spec §6 buildWallSolid).
func (k *Kernel) BuildWallSolid(baseline *geom.Curve, thickness float64, wallType wallsolid.WallType) (*wallsolid.WallSolid, validation.Report, error) {
	tol := k.effectiveTolerance(thickness, tolerance.ContextOffset, 0)
	res, err := offset.Offset(baseline, thickness/2, thickness, miter.JoinMiter, tol, k.opts.MiterLimit)
	if err != nil {
		return nil, validation.Report{}, fmt.Errorf("kernel: buildWallSolid: %w", err)
	}

	solid := wallsolid.NewWallSolid(baseline, thickness, wallType)
	solid = solid.WithOffsets(res.Left, res.Right, res.JoinTypes)

	var ring geom.Ring
	ring = append(ring, res.Left.Points...)
	for i := len(res.Right.Points) - 1; i >= 0; i-- {
		ring = append(ring, res.Right.Points[i])
	}
	solid = solid.WithSolids([]*geom.Polygon{geom.NewPolygon(ring, nil)})

	report := k.pipeline.Validate(validation.ModePost, solid.Solids, tol)
	solid = solid.WithQuality(qualityFromReport(report, solid), time.Now())

	if kernellog.Get() != nil {
		kernellog.Get().Sugar().Debugw("built wall solid", "wall_id", solid.ID, "thickness", thickness, "fallback_used", res.FallbackUsed)
	}
	return solid, report, nil
}

// ResolveIntersection unions the participating walls' solids at a junction
// of kind, recording the outcome in the intersection manager's cache
// (spec §6 resolveIntersection).
func (k *Kernel) ResolveIntersection(walls []*wallsolid.WallSolid, kind intersection.Kind, tol float64) boolean.Result {
	wallIDs := make([]string, len(walls))
	var solids []*geom.Polygon
	for i, w := range walls {
		wallIDs[i] = w.ID
		solids = append(solids, w.Solids...)
	}
	sorted := intersection.SortWallIDs(wallIDs)
	point, _ := centroidOfSolids(solids)
	key := intersection.IntersectionKey(sorted, kind, point, tol)

	result := k.boolEng.ResolveWallIntersection(solids, string(kind), tol)

	k.isect.GetOrCompute(key, func() *intersection.Data {
		return &intersection.Data{
			ID:               key,
			Kind:             kind,
			WallIDs:          sorted,
			Point:            point,
			ResolutionMethod: "boolean_union",
			Accuracy:         accuracyFromResult(result),
			Validated:        result.Success,
		}
	})
	return result
}

func centroidOfSolids(solids []*geom.Polygon) (geom.Point, bool) {
	if len(solids) == 0 {
		return geom.Point{}, false
	}
	var sumX, sumY float64
	n := 0
	for _, s := range solids {
		c, ok := s.Centroid()
		if !ok {
			continue
		}
		sumX += c.X
		sumY += c.Y
		n++
	}
	if n == 0 {
		return geom.Point{}, false
	}
	return geom.NewPoint(sumX/float64(n), sumY/float64(n)), true
}

func accuracyFromResult(r boolean.Result) float64 {
	if !r.Success {
		return 0
	}
	if r.RequiresHealing {
		return 0.7
	}
	return 1.0
}

// HealSolid runs the healing pipeline over a solid's polygons and returns
// an updated WallSolid with the healing-history appended (spec §6
// healSolid).
func (k *Kernel) HealSolid(solid *wallsolid.WallSolid, tol float64) (*wallsolid.WallSolid, healing.Result) {
	result := healing.Heal(solid.Solids, tol, healing.DefaultOptions())
	op := healing.Operation{
		Type:        healing.OpSliverRemoval,
		Description: fmt.Sprintf("healed %d faces removed, %d edges merged, %d gaps eliminated", result.FacesRemoved, result.EdgesMerged, result.GapsEliminated),
		At:          time.Now(),
	}
	return solid.WithHealing(result.Polygons, op), result
}

// SimplifySolid runs the simplification pipeline over a solid's polygons
// (spec §6 simplifySolid).
func (k *Kernel) SimplifySolid(solid *wallsolid.WallSolid, tol float64) (*wallsolid.WallSolid, simplify.Result) {
	opts := simplify.DefaultOptions()
	opts.InputTolerance = tol
	result := simplify.Simplify(solid.Solids, solid.Thickness, opts)
	updated := solid.WithSolids(result.Polygons)
	return updated, result
}

// MergeVertices runs vertex merging over a solid's polygons (spec §6
// mergeVertices), recording a healing-history entry.
func (k *Kernel) MergeVertices(solid *wallsolid.WallSolid, tol float64) (*wallsolid.WallSolid, healing.MergeResult) {
	result := healing.MergeVertices(solid.Solids, healing.MergeOptions{Tolerance: tol, MaxMergeIterations: 10, Rollback: true})
	op := healing.Operation{
		Type:        healing.OpVertexMerge,
		Description: fmt.Sprintf("merged %d vertex pairs (%d rolled back)", result.MergesMade, result.RolledBack),
		At:          time.Now(),
	}
	return solid.WithHealing(result.Polygons, op), result
}

// Validate runs the configured validation pipeline against a solid's
// polygons (spec §6 validate).
func (k *Kernel) Validate(solid *wallsolid.WallSolid, mode validation.Mode, tol float64) validation.Report {
	return k.pipeline.Validate(mode, solid.Solids, tol)
}

// SwitchToBIM converts a batch of walls from basic to BIM representation
// (spec §6 switchToBIM).
func (k *Kernel) SwitchToBIM(walls []*wallsolid.UnifiedWallData) wallsolid.ModeSwitchResult {
	return wallsolid.SwitchToBIM(walls, k.opts.MiterLimit, k.opts.Tolerance)
}

// SwitchToBasic converts a batch of walls from BIM to basic representation
// (spec §6 switchToBasic).
func (k *Kernel) SwitchToBasic(walls []*wallsolid.UnifiedWallData) wallsolid.ModeSwitchResult {
	return wallsolid.SwitchToBasic(walls)
}

func qualityFromReport(report validation.Report, solid *wallsolid.WallSolid) wallsolid.QualityMetrics {
	accuracy := 1.0
	if !report.Passed {
		accuracy = 0.5
	}
	sliverCount, selfIntersections, degenerate := 0, 0, 0
	for _, e := range report.Errors {
		switch e.Kind {
		case kernelerrors.SelfIntersection:
			selfIntersections++
		case kernelerrors.DegenerateGeometry:
			degenerate++
		}
	}
	for _, p := range solid.Solids {
		if p.Quality.HasSliverFaces {
			sliverCount++
		}
	}
	return wallsolid.QualityMetrics{
		GeometricAccuracy:       accuracy,
		TopologicalConsistency:  accuracy,
		Manufacturability:       accuracy,
		ArchitecturalCompliance: accuracy,
		SliverFaceCount:         sliverCount,
		SelfIntersectionCount:   selfIntersections,
		DegenerateElementCount:  degenerate,
		Complexity:              float64(solid.Complexity),
	}
}
