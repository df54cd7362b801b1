package validation

import (
	"fmt"
	"math"

	"github.com/arxos/wallkernel/geom"
	"github.com/arxos/wallkernel/kernelerrors"
)

func checkGeometricConsistency(polygons []*geom.Polygon, tolerance float64, result *StageResult) {
	for _, p := range polygons {
		if len(p.Outer) < 3 {
			result.Passed = false
			result.Errors = append(result.Errors, kernelerrors.New(kernelerrors.DegenerateGeometry, "geometric-consistency", "outer ring has fewer than 3 points").
				WithInput(fmt.Sprintf("polygon %s", p.ID)).
				WithFix("rebuild the polygon from a valid baseline offset").
				Recoverably())
			continue
		}
		if p.Area() <= 0 {
			result.Passed = false
			result.Errors = append(result.Errors, kernelerrors.New(kernelerrors.DegenerateGeometry, "geometric-consistency", "polygon has zero or negative area").
				WithInput(fmt.Sprintf("polygon %s", p.ID)).Recoverably())
		}
		for i := range p.Outer {
			j := (i + 1) % len(p.Outer)
			if p.Outer[i].DistanceTo(p.Outer[j]) <= tolerance && i != j {
				result.Warnings = append(result.Warnings, fmt.Sprintf("polygon %s has near-duplicate consecutive vertices", p.ID))
			}
		}
	}
	result.Metrics["polygon_count"] = float64(len(polygons))
}

func checkTopology(polygons []*geom.Polygon, _ float64, result *StageResult) {
	for _, p := range polygons {
		for _, problem := range p.ValidateInvariants() {
			result.Passed = false
			result.Errors = append(result.Errors, kernelerrors.New(kernelerrors.TopologyError, "topology", problem).
				WithInput(fmt.Sprintf("polygon %s", p.ID)).
				WithFix("re-run orientation normalization and ring closure").
				Recoverably())
		}
		if p.Outer.SelfIntersects() {
			result.Passed = false
			result.Errors = append(result.Errors, kernelerrors.New(kernelerrors.SelfIntersection, "topology", "outer ring self-intersects").
				WithInput(fmt.Sprintf("polygon %s", p.ID)).
				WithFix("simplify or split the ring at its crossing").
				Recoverably())
		}
		for hi, h := range p.Holes {
			if h.SelfIntersects() {
				result.Passed = false
				result.Errors = append(result.Errors, kernelerrors.New(kernelerrors.SelfIntersection, "topology", "hole ring self-intersects").
					WithInput(fmt.Sprintf("polygon %s hole %d", p.ID, hi)).Recoverably())
			}
		}
	}
}

func checkNumericalStability(polygons []*geom.Polygon, _ float64, result *StageResult) {
	const hugeCoord = 1e9
	const microSegment = 1e-12
	for _, p := range polygons {
		for i, pt := range p.Outer {
			if math.Abs(pt.X) > hugeCoord || math.Abs(pt.Y) > hugeCoord {
				result.Passed = false
				result.Errors = append(result.Errors, kernelerrors.New(kernelerrors.NumericalInstability, "numerical-stability", "coordinate exceeds sane bounds").
					WithInput(fmt.Sprintf("polygon %s vertex %d", p.ID, i)).
					WithFix("clamp coordinates and re-round before retrying").Recoverably())
			}
			j := (i + 1) % len(p.Outer)
			if p.Outer[i].DistanceTo(p.Outer[j]) < microSegment && i != j {
				result.Warnings = append(result.Warnings, fmt.Sprintf("polygon %s has a micro-segment between vertices %d and %d", p.ID, i, j))
			}
		}
	}
}

func checkQualityMetrics(polygons []*geom.Polygon, _ float64, result *StageResult) {
	totalArea, totalPerimeter := 0.0, 0.0
	sliverCount := 0
	for _, p := range polygons {
		totalArea += p.Area()
		totalPerimeter += p.Perimeter()
		if p.Quality.HasSliverFaces {
			sliverCount++
		}
	}
	result.Metrics["total_area"] = totalArea
	result.Metrics["total_perimeter"] = totalPerimeter
	result.Metrics["sliver_count"] = float64(sliverCount)
	if sliverCount > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d polygon(s) flagged with sliver faces", sliverCount))
	}
}

func checkPerformance(polygons []*geom.Polygon, _ float64, result *StageResult) {
	complexity := 0
	for _, p := range polygons {
		complexity += len(p.Outer)
		for _, h := range p.Holes {
			complexity += len(h)
		}
	}
	result.Metrics["complexity"] = float64(complexity)
	const complexityCeiling = 100000
	if complexity > complexityCeiling {
		result.Passed = false
		result.Errors = append(result.Errors, kernelerrors.New(kernelerrors.ComplexityExceeded, "performance", "input complexity exceeds the fixed complexity ceiling").
			WithFix("simplify before re-validating").Recoverably())
	}
}
