package wallsolid

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arxos/wallkernel/geom"
	"github.com/arxos/wallkernel/miter"
	"github.com/arxos/wallkernel/offset"
)

// LastModifiedMode names which representation was most recently authoritative.
type LastModifiedMode string

const (
	ModeBasic LastModifiedMode = "basic"
	ModeBIM   LastModifiedMode = "bim"
)

// ProcessingEntry is one line of a UnifiedWallData's processing history.
type ProcessingEntry struct {
	Operation string
	At        time.Time
	Detail    string
}

// UnifiedWallData holds a wall's basic representation, its optional BIM
// representation, and bookkeeping for synchronizing the two (spec §3).
type UnifiedWallData struct {
	ID        string
	WallType  WallType
	Thickness float64
	Baseline  *geom.Curve

	Basic BasicRepresentation
	BIM   *WallSolid // nil until switchToBIM has run

	ProcessingHistory []ProcessingEntry
	LastModifiedMode  LastModifiedMode
}

// NewFromBaseline constructs a UnifiedWallData starting in basic mode.
func NewFromBaseline(baseline *geom.Curve, thickness float64, wallType WallType) *UnifiedWallData {
	nodes, segments := nodesAndSegmentsFromBaseline(baseline)
	return &UnifiedWallData{
		ID:               uuid.NewString(),
		WallType:         wallType,
		Thickness:        thickness,
		Baseline:         baseline,
		Basic:            BasicRepresentation{Nodes: nodes, Segments: segments},
		LastModifiedMode: ModeBasic,
	}
}

func (u *UnifiedWallData) clone() *UnifiedWallData {
	cp := *u
	cp.ProcessingHistory = append([]ProcessingEntry(nil), u.ProcessingHistory...)
	cp.Basic.Nodes = append([]Node(nil), u.Basic.Nodes...)
	cp.Basic.Segments = append([]Segment(nil), u.Basic.Segments...)
	cp.Basic.Polygons = append([]*geom.Polygon(nil), u.Basic.Polygons...)
	return &cp
}

func (u *UnifiedWallData) appendHistory(op, detail string) {
	u.ProcessingHistory = append(u.ProcessingHistory, ProcessingEntry{Operation: op, At: time.Now(), Detail: detail})
}

// ModeSwitchResult reports the outcome of a basic<->BIM conversion.
type ModeSwitchResult struct {
	Updated            []*UnifiedWallData
	ApproximationsUsed []string // wall IDs where the offset engine had to fall back
	QualityImpact      map[string]float64
	DataLoss           map[string][]string // wall ID -> list of data-loss notes
}

// SwitchToBIM runs the basic -> BIM conversion (spec §4.11): for each wall,
// the offset engine builds left/right curves from the baseline, and an
// initial solid polygon is constructed from the offsets.
func SwitchToBIM(walls []*UnifiedWallData, miterLimit, tolerance float64) ModeSwitchResult {
	result := ModeSwitchResult{QualityImpact: map[string]float64{}, DataLoss: map[string][]string{}}
	for _, w := range walls {
		cp := w.clone()
		res, err := offset.Offset(w.Baseline, w.Thickness/2, w.Thickness, miter.JoinMiter, tolerance, miterLimit)
		if err != nil {
			result.ApproximationsUsed = append(result.ApproximationsUsed, w.ID)
			result.QualityImpact[w.ID] = 0.5
			cp.appendHistory("switch_to_bim", fmt.Sprintf("offset engine failed: %v", err))
			result.Updated = append(result.Updated, cp)
			continue
		}
		if res.FallbackUsed {
			result.ApproximationsUsed = append(result.ApproximationsUsed, w.ID)
			result.QualityImpact[w.ID] = 0.2
		}

		solid := NewWallSolid(w.Baseline, w.Thickness, w.WallType)
		solid = solid.WithOffsets(res.Left, res.Right, res.JoinTypes)
		solidPoly := initialSolidPolygon(res.Left, res.Right)
		solid = solid.WithSolids([]*geom.Polygon{solidPoly})

		cp.BIM = solid
		cp.LastModifiedMode = ModeBIM
		cp.appendHistory("switch_to_bim", "constructed BIM representation from baseline offsets")
		result.Updated = append(result.Updated, cp)
	}
	return result
}

// initialSolidPolygon builds the initial wall solid by closing left and
// reversed-right offset curves into a single ring (no holes yet).
func initialSolidPolygon(left, right *geom.Curve) *geom.Polygon {
	var ring geom.Ring
	ring = append(ring, left.Points...)
	for i := len(right.Points) - 1; i >= 0; i-- {
		ring = append(ring, right.Points[i])
	}
	return geom.NewPolygon(ring, nil)
}

// SwitchToBasic runs the BIM -> basic conversion (spec §4.11): one Node per
// baseline vertex, one Segment per baseline edge. Any intersection data
// present signals data loss, since the basic representation cannot carry
// it.
func SwitchToBasic(walls []*UnifiedWallData) ModeSwitchResult {
	result := ModeSwitchResult{QualityImpact: map[string]float64{}, DataLoss: map[string][]string{}}
	for _, w := range walls {
		cp := w.clone()
		baseline := w.Baseline
		if w.BIM != nil {
			baseline = w.BIM.Baseline
		}
		nodes, segments := nodesAndSegmentsFromBaseline(baseline)
		cp.Basic = BasicRepresentation{Nodes: nodes, Segments: segments}
		if w.BIM != nil && len(w.BIM.Solids) > 0 {
			cp.Basic.Polygons = append([]*geom.Polygon(nil), w.BIM.Solids...)
		}
		if w.BIM != nil && len(w.BIM.IntersectionData) > 0 {
			result.DataLoss[w.ID] = append(result.DataLoss[w.ID], "data-loss: intersection metadata")
		}
		cp.LastModifiedMode = ModeBasic
		cp.appendHistory("switch_to_basic", "emitted nodes and segments from the baseline")
		result.Updated = append(result.Updated, cp)
	}
	return result
}

// Synchronize resolves conflicts between a wall's basic and BIM
// representations in priority order: thickness (UnifiedWallData is
// authoritative), wall-type (same), then baseline (regenerate BIM from
// basic if they differ) (spec §4.11).
func Synchronize(w *UnifiedWallData, miterLimit, tolerance float64) *UnifiedWallData {
	if w.BIM == nil {
		return w
	}
	cp := w.clone()
	changed := false

	if cp.BIM.Thickness != cp.Thickness {
		cp.BIM = cp.BIM.clone()
		cp.BIM.Thickness = cp.Thickness
		changed = true
	}
	if cp.BIM.WallType != cp.WallType {
		cp.BIM = cp.BIM.clone()
		cp.BIM.WallType = cp.WallType
		changed = true
	}
	if !baselinesMatch(cp.Baseline, cp.BIM.Baseline, tolerance) {
		rebuilt := SwitchToBIM([]*UnifiedWallData{cp}, miterLimit, tolerance)
		if len(rebuilt.Updated) == 1 {
			cp.BIM = rebuilt.Updated[0].BIM
		}
		changed = true
	}

	if changed {
		cp.appendHistory("synchronize_modes", "resolved thickness/wall-type/baseline conflicts between representations")
	}
	return cp
}

func baselinesMatch(a, b *geom.Curve, tolerance float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Points) != len(b.Points) {
		return false
	}
	for i := range a.Points {
		if a.Points[i].DistanceTo(b.Points[i]) > tolerance {
			return false
		}
	}
	return true
}

// CompatibilityReport is the pre-flight result of CheckCompatibility.
type CompatibilityReport struct {
	IsCompatible          bool
	CanSwitchToBIM        map[string]bool
	CanSwitchToBasic      map[string]bool
	Blockers              map[string][]string
	PotentialDataLoss     map[string][]string
	EstimatedProcessingTime time.Duration
}

// CheckCompatibility runs the pre-flight compatibility validation
// aggregating across all walls (spec §4.11).
func CheckCompatibility(walls []*UnifiedWallData) CompatibilityReport {
	report := CompatibilityReport{
		IsCompatible:      true,
		CanSwitchToBIM:    map[string]bool{},
		CanSwitchToBasic:  map[string]bool{},
		Blockers:          map[string][]string{},
		PotentialDataLoss: map[string][]string{},
	}
	for _, w := range walls {
		canBIM := true
		var blockers []string
		if w.Thickness <= 0 {
			canBIM = false
			blockers = append(blockers, "non-positive thickness")
		}
		if w.Baseline == nil || len(w.Baseline.Points) < 2 {
			canBIM = false
			blockers = append(blockers, "baseline has fewer than 2 points")
		}
		report.CanSwitchToBIM[w.ID] = canBIM
		report.CanSwitchToBasic[w.ID] = true // BIM -> basic is always possible, possibly lossy

		if w.BIM != nil && len(w.BIM.IntersectionData) > 0 {
			report.PotentialDataLoss[w.ID] = append(report.PotentialDataLoss[w.ID], "intersection metadata")
		}
		if len(blockers) > 0 {
			report.IsCompatible = false
			report.Blockers[w.ID] = blockers
		}
		if w.Baseline != nil {
			report.EstimatedProcessingTime += time.Duration(len(w.Baseline.Points)) * time.Microsecond
		}
	}
	return report
}
