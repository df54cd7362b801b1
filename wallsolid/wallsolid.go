// Package wallsolid implements the dual-representation wall data model
// (spec §3): the full BIM WallSolid, the lightweight basic representation,
// and UnifiedWallData, which can hold either or both.
package wallsolid

import (
	"time"

	"github.com/google/uuid"

	"github.com/arxos/wallkernel/geom"
	"github.com/arxos/wallkernel/healing"
	"github.com/arxos/wallkernel/intersection"
	"github.com/arxos/wallkernel/miter"
)

// WallType is the closed sum of wall-type tags, each carrying a
// bit-compatible default thickness in dimensionless units (millimetres by
// host convention).
type WallType string

const (
	WallTypeLayout WallType = "layout"
	WallTypeZone   WallType = "zone"
	WallTypeArea   WallType = "area"
)

// DefaultThickness returns the wall-type's bit-compatible default
// thickness; callers remain free to override it per wall.
func DefaultThickness(t WallType) float64 {
	switch t {
	case WallTypeLayout:
		return 350
	case WallTypeZone:
		return 250
	case WallTypeArea:
		return 150
	default:
		return 250
	}
}

// QualityMetrics is the WallSolid's quality snapshot (spec §3).
type QualityMetrics struct {
	GeometricAccuracy      float64 // [0,1]
	TopologicalConsistency float64 // [0,1]
	Manufacturability      float64 // [0,1]
	ArchitecturalCompliance float64 // [0,1]

	SliverFaceCount      int
	MicroGapCount        int
	SelfIntersectionCount int
	DegenerateElementCount int

	Complexity            float64
	ProcessingEfficiency  float64 // [0,1]
	MemoryUsageEstimate   int64 // bytes, approximate
}

// WallSolid is the full BIM representation of a wall (spec §3). It owns its
// baseline and offset curves and its polygon list; every "with" method
// returns a new value and never mutates the receiver.
type WallSolid struct {
	ID        string
	Baseline  *geom.Curve
	Thickness float64
	WallType  WallType

	LeftOffset  *geom.Curve
	RightOffset *geom.Curve
	Solids      []*geom.Polygon

	// JoinTypes maps a baseline node id (point ID) to its chosen join type.
	JoinTypes map[string]miter.JoinType

	IntersectionData []intersection.Data
	HealingHistory   []healing.Operation

	Quality       QualityMetrics
	LastValidated time.Time

	ProcessingTime time.Duration
	Complexity     int
}

// NewWallSolid constructs a WallSolid from a baseline, thickness and wall
// type, with no offsets or solids yet computed (the caller builds those via
// the offset engine and attaches them with WithOffsets/WithSolids).
func NewWallSolid(baseline *geom.Curve, thickness float64, wallType WallType) *WallSolid {
	return &WallSolid{
		ID:        uuid.NewString(),
		Baseline:  baseline,
		Thickness: thickness,
		WallType:  wallType,
		JoinTypes: map[string]miter.JoinType{},
	}
}

// clone shallow-copies w, giving the caller a value it can safely mutate
// fields on before returning; slices and maps are copied so neither value
// observes the other's later appends.
func (w *WallSolid) clone() *WallSolid {
	cp := *w
	cp.JoinTypes = make(map[string]miter.JoinType, len(w.JoinTypes))
	for k, v := range w.JoinTypes {
		cp.JoinTypes[k] = v
	}
	cp.Solids = append([]*geom.Polygon(nil), w.Solids...)
	cp.IntersectionData = append([]intersection.Data(nil), w.IntersectionData...)
	cp.HealingHistory = append([]healing.Operation(nil), w.HealingHistory...)
	return &cp
}

// WithOffsets returns a copy of w with its offset curves and per-vertex
// join types replaced.
func (w *WallSolid) WithOffsets(left, right *geom.Curve, joinTypes map[string]miter.JoinType) *WallSolid {
	cp := w.clone()
	cp.LeftOffset = left
	cp.RightOffset = right
	cp.JoinTypes = make(map[string]miter.JoinType, len(joinTypes))
	for k, v := range joinTypes {
		cp.JoinTypes[k] = v
	}
	return cp
}

// WithSolids returns a copy of w with its solid polygons replaced.
func (w *WallSolid) WithSolids(solids []*geom.Polygon) *WallSolid {
	cp := w.clone()
	cp.Solids = append([]*geom.Polygon(nil), solids...)
	return cp
}

// WithIntersections returns a copy of w with its intersection list
// replaced.
func (w *WallSolid) WithIntersections(data []intersection.Data) *WallSolid {
	cp := w.clone()
	cp.IntersectionData = append([]intersection.Data(nil), data...)
	return cp
}

// WithHealing returns a copy of w with solids replaced and op appended to
// the healing history (append-only per spec §3 ownership rules).
func (w *WallSolid) WithHealing(solids []*geom.Polygon, op healing.Operation) *WallSolid {
	cp := w.clone()
	cp.Solids = append([]*geom.Polygon(nil), solids...)
	cp.HealingHistory = append(cp.HealingHistory, op)
	return cp
}

// WithQuality returns a copy of w with its quality snapshot and
// last-validated timestamp replaced.
func (w *WallSolid) WithQuality(q QualityMetrics, validatedAt time.Time) *WallSolid {
	cp := w.clone()
	cp.Quality = q
	cp.LastValidated = validatedAt
	return cp
}

// WithProcessing returns a copy of w with its processing-time and
// complexity counters replaced.
func (w *WallSolid) WithProcessing(d time.Duration, complexity int) *WallSolid {
	cp := w.clone()
	cp.ProcessingTime = d
	cp.Complexity = complexity
	return cp
}
