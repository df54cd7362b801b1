package miter

import (
	"math"
	"testing"

	"github.com/arxos/wallkernel/geom"
)

func TestSelectOptimalJoinTypeVerySharp(t *testing.T) {
	angle := 10 * math.Pi / 180
	if got := SelectOptimalJoinType(angle, 1, 0); got != JoinRound {
		t.Errorf("expected round for a 10-degree corner, got %v", got)
	}
}

func TestSelectOptimalJoinTypeThickSharp(t *testing.T) {
	angle := 20 * math.Pi / 180
	if got := SelectOptimalJoinType(angle, 400, 0); got != JoinBevel {
		t.Errorf("expected bevel for a sharp thick-wall corner, got %v", got)
	}
}

func TestSelectOptimalJoinTypeGentleIsMiter(t *testing.T) {
	angle := 90 * math.Pi / 180
	if got := SelectOptimalJoinType(angle, 100, 0); got != JoinMiter {
		t.Errorf("expected miter for a gentle 90-degree corner, got %v", got)
	}
}

func TestApplyMiterLimitOverrideDowngrades(t *testing.T) {
	angle := 10 * math.Pi / 180 // sin(5deg) ~ 0.087 -> 1/sin ~ 11.47 > 10
	got, downgraded := ApplyMiterLimitOverride(JoinMiter, angle, DefaultMiterLimit)
	if !downgraded || got != JoinBevel {
		t.Errorf("expected downgrade to bevel, got %v downgraded=%v", got, downgraded)
	}
}

func TestApplyMiterLimitOverrideLeavesGentleAlone(t *testing.T) {
	angle := 90 * math.Pi / 180
	got, downgraded := ApplyMiterLimitOverride(JoinMiter, angle, DefaultMiterLimit)
	if downgraded || got != JoinMiter {
		t.Errorf("expected miter to survive a gentle corner, got %v downgraded=%v", got, downgraded)
	}
}

func TestCalculateLCorner(t *testing.T) {
	// Baseline corner at (10,0); offset d=2 to the left of travel.
	left := geom.NewPoint(8, 2)
	right := geom.NewPoint(10, -2)
	vertex := geom.NewPoint(10, 0)
	tangentIn := geom.Vector{X: 1, Y: 0}
	tangentOut := geom.Vector{X: 0, Y: 1}

	calc := Calculate(left, right, vertex, 4, tangentIn, tangentOut, "", DefaultMiterLimit)

	if calc.ChosenJoinType != JoinMiter {
		t.Errorf("expected miter join for a 90-degree corner, got %v", calc.ChosenJoinType)
	}
	if math.Abs(calc.RealizedAngle-math.Pi/2) > 1e-6 {
		t.Errorf("expected realized angle pi/2, got %v", calc.RealizedAngle)
	}
	if calc.Accuracy != 0.95 {
		t.Errorf("expected accuracy 0.95 for exact bisector intersection, got %v", calc.Accuracy)
	}
}

func TestCalculateForcedMiterDowngradesOnSharpCorner(t *testing.T) {
	left := geom.NewPoint(0, 1)
	right := geom.NewPoint(0, -1)
	vertex := geom.NewPoint(0, 0)
	tangentIn := geom.Vector{X: 1, Y: 0}
	// The outgoing tangent nearly reverses the incoming one, so the corner's
	// interior angle (between -tangentIn and tangentOut) is 10 degrees.
	tangentOut := geom.Vector{X: -math.Cos(10 * math.Pi / 180), Y: math.Sin(10 * math.Pi / 180)}

	calc := Calculate(left, right, vertex, 1, tangentIn, tangentOut, JoinMiter, DefaultMiterLimit)
	if calc.ChosenJoinType != JoinBevel {
		t.Errorf("expected forced miter to downgrade to bevel on a sharp corner, got %v", calc.ChosenJoinType)
	}
	found := false
	for _, w := range calc.Warnings {
		if w == "miter limit exceeded, downgraded to bevel" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a miter-limit warning, got %v", calc.Warnings)
	}
}

func TestValidateFlagsCoincidentApex(t *testing.T) {
	p := geom.NewPoint(0, 0)
	calc := Calculation{
		Apex: p, LeftIntersection: p, RightIntersection: geom.NewPoint(1, 1),
		RealizedAngle: math.Pi / 2, Accuracy: 0.9, ChosenJoinType: JoinMiter,
	}
	warnings := Validate(calc, geom.NewPoint(0, 0))
	found := false
	for _, w := range warnings {
		if w == "apex coincident with an offset intersection point" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a coincidence warning, got %v", warnings)
	}
}
