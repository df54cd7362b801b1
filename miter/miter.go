// Package miter implements the miter calculator (spec §4.3): given the two
// offset-line intersection points either side of a baseline vertex, it
// computes the realized join apex, angle, accuracy and chosen join type.
package miter

import (
	"math"

	"github.com/arxos/wallkernel/geom"
)

// JoinType is the closed sum of offset-corner join styles.
type JoinType string

const (
	JoinMiter JoinType = "miter"
	JoinBevel JoinType = "bevel"
	JoinRound JoinType = "round"
)

// CalculationMethod tags how an apex was actually derived, independent of
// which join type was requested.
type CalculationMethod string

const (
	MethodBisectorIntersection CalculationMethod = "bisector_intersection"
	MethodBevelMidpoint        CalculationMethod = "bevel_midpoint"
	MethodRoundArcCenter       CalculationMethod = "round_arc_center"
	MethodLineIntersectionFallback CalculationMethod = "line_intersection_fallback"
	MethodMidpointFallback     CalculationMethod = "midpoint_fallback"
)

// Calculation is the transient MiterCalculation record from spec §3.
type Calculation struct {
	Apex                geom.Point
	LeftIntersection    geom.Point
	RightIntersection   geom.Point
	RealizedAngle       float64 // radians, in [0, pi]
	ChosenJoinType      JoinType
	FallbackUsed        bool
	CalculationMethod   CalculationMethod
	Accuracy            float64
	Warnings            []string
}

// DefaultMiterLimit is the spec's default miter-limit constant.
const DefaultMiterLimit = 10.0

// SelectOptimalJoinType implements spec §4.2's per-vertex join override:
// very sharp corners round, sharp corners on thick/curved walls bevel,
// otherwise miter.
func SelectOptimalJoinType(angleRadians, thickness, curvature float64) JoinType {
	deg := angleRadians * 180 / math.Pi
	if deg < 15 || deg > 165 {
		return JoinRound
	}
	if deg < 30 && (thickness > 300 || curvature > 0.01) {
		return JoinBevel
	}
	return JoinMiter
}

// ApplyMiterLimitOverride downgrades miter to bevel when the corner is too
// sharp for the configured miter limit: 1/sin(angle/2) > miterLimit (spec
// §4.2).
func ApplyMiterLimitOverride(requested JoinType, angleRadians, miterLimit float64) (JoinType, bool) {
	if requested != JoinMiter {
		return requested, false
	}
	if miterLimit <= 0 {
		miterLimit = DefaultMiterLimit
	}
	half := angleRadians / 2
	sinHalf := math.Sin(half)
	if sinHalf <= 1e-9 {
		return JoinBevel, true
	}
	if 1/sinHalf > miterLimit {
		return JoinBevel, true
	}
	return requested, false
}

// Calculate computes the MiterCalculation for a vertex given the two offset
// line intersection points, the baseline vertex, the adjacent tangents
// (incoming then outgoing, unit vectors) and the requested join type. It
// mirrors the per-vertex algorithm in spec §4.2, returning the realized
// angle, chosen join type and an accuracy score (spec §4.3).
func Calculate(leftIntersection, rightIntersection, baselineVertex geom.Point, thickness float64, tangentIn, tangentOut geom.Vector, requested JoinType, miterLimit float64) Calculation {
	realizedAngle := tangentIn.Scale(-1).Angle(tangentOut)

	curvature := math.Abs(tangentIn.Cross(tangentOut))
	chosen := SelectOptimalJoinType(realizedAngle, thickness, curvature)
	if requested != "" {
		chosen = requested
	}
	downgraded, wasDowngraded := ApplyMiterLimitOverride(chosen, realizedAngle, miterLimit)
	chosen = downgraded

	calc := Calculation{
		LeftIntersection:  leftIntersection,
		RightIntersection: rightIntersection,
		RealizedAngle:     realizedAngle,
		ChosenJoinType:    chosen,
	}
	if wasDowngraded {
		calc.Warnings = append(calc.Warnings, "miter limit exceeded, downgraded to bevel")
	}

	switch chosen {
	case JoinMiter:
		if apex, ok := lineIntersection(leftIntersection, tangentIn, rightIntersection, tangentOut); ok {
			calc.Apex = apex
			calc.CalculationMethod = MethodBisectorIntersection
			calc.Accuracy = 0.95
		} else if apex, ok := lineIntersection(leftIntersection, leftIntersection.Vector(baselineVertex), rightIntersection, rightIntersection.Vector(baselineVertex)); ok {
			calc.Apex = apex
			calc.CalculationMethod = MethodLineIntersectionFallback
			calc.Accuracy = 0.8
			calc.FallbackUsed = true
			calc.Warnings = append(calc.Warnings, "bisector intersection degenerate, used line-intersection fallback toward the baseline vertex")
		} else {
			calc.Apex = midpoint(leftIntersection, rightIntersection)
			calc.CalculationMethod = MethodMidpointFallback
			calc.Accuracy = 0.5
			calc.FallbackUsed = true
			calc.Warnings = append(calc.Warnings, "miter line intersection degenerate, used midpoint fallback")
		}
	case JoinBevel:
		calc.Apex = midpoint(leftIntersection, rightIntersection)
		calc.CalculationMethod = MethodBevelMidpoint
		calc.Accuracy = 0.9
	case JoinRound:
		// The arc's center is the baseline vertex itself; the apex we report
		// is the midpoint of the chord, which callers tessellate around.
		calc.Apex = midpoint(leftIntersection, rightIntersection)
		calc.CalculationMethod = MethodRoundArcCenter
		calc.Accuracy = 0.85
	}

	calc.Apex.Tolerance = baselineVertex.Tolerance
	calc.Apex.CreationMethod = geom.CreatedMiter
	calc.Apex.Accuracy = calc.Accuracy

	calc.Warnings = append(calc.Warnings, Validate(calc, baselineVertex)...)
	return calc
}

// Validate checks the invariants attached to every MiterCalculation (spec
// §4.3): angle in [0,pi], accuracy in [0,1], apex not coincident with either
// offset intersection, and join type consistent with the realized angle.
func Validate(calc Calculation, baselineVertex geom.Point) []string {
	var warnings []string
	if calc.RealizedAngle < 0 || calc.RealizedAngle > math.Pi+1e-9 {
		warnings = append(warnings, "realized angle out of [0, pi]")
	}
	if calc.Accuracy < 0 || calc.Accuracy > 1 {
		warnings = append(warnings, "accuracy out of [0, 1]")
	}
	tol := baselineVertex.Tolerance
	if tol == 0 {
		tol = 1e-6
	}
	if calc.Apex.DistanceTo(calc.LeftIntersection) <= tol || calc.Apex.DistanceTo(calc.RightIntersection) <= tol {
		warnings = append(warnings, "apex coincident with an offset intersection point")
	}
	optimal := SelectOptimalJoinType(calc.RealizedAngle, 0, 0)
	if optimal != calc.ChosenJoinType && calc.ChosenJoinType != JoinBevel {
		// A downgrade to bevel via the miter-limit override is expected and
		// not itself suboptimal; any other mismatch is worth a warning.
		warnings = append(warnings, "chosen join type may be suboptimal for the realized angle")
	}
	return warnings
}

func midpoint(a, b geom.Point) geom.Point {
	return geom.NewPoint((a.X+b.X)/2, (a.Y+b.Y)/2)
}

// lineIntersection finds the intersection of the line through a in
// direction dirA and the line through b in direction dirB. Returns false
// when the lines are (near-)parallel.
func lineIntersection(a geom.Point, dirA geom.Vector, b geom.Point, dirB geom.Vector) (geom.Point, bool) {
	denom := dirA.Cross(dirB)
	if math.Abs(denom) < 1e-12 {
		return geom.Point{}, false
	}
	ab := geom.Vector{X: b.X - a.X, Y: b.Y - a.Y}
	t := ab.Cross(dirB) / denom
	return geom.NewPoint(a.X+dirA.X*t, a.Y+dirA.Y*t), true
}
