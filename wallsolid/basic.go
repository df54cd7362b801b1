package wallsolid

import (
	"github.com/google/uuid"

	"github.com/arxos/wallkernel/geom"
)

// Node is a point in the lightweight basic representation.
type Node struct {
	ID string
	X, Y float64
}

// Segment connects two nodes by id in the basic representation.
type Segment struct {
	ID       string
	FromNode string
	ToNode   string
}

// BasicRepresentation is the lightweight graph-of-nodes-and-segments view
// of a wall (spec §3).
type BasicRepresentation struct {
	Segments []Segment
	Nodes    []Node
	Polygons []*geom.Polygon
}

// nodesAndSegmentsFromBaseline emits one Node per baseline vertex and one
// Segment per baseline edge (spec §4.11 BIM -> basic).
func nodesAndSegmentsFromBaseline(baseline *geom.Curve) ([]Node, []Segment) {
	nodes := make([]Node, len(baseline.Points))
	for i, p := range baseline.Points {
		nodes[i] = Node{ID: p.ID, X: p.X, Y: p.Y}
	}
	var segments []Segment
	last := len(nodes) - 1
	if last < 1 {
		return nodes, segments
	}
	for i := 0; i < last; i++ {
		segments = append(segments, Segment{
			ID:       uuid.NewString(),
			FromNode: nodes[i].ID,
			ToNode:   nodes[i+1].ID,
		})
	}
	if baseline.Closed {
		segments = append(segments, Segment{ID: uuid.NewString(), FromNode: nodes[last].ID, ToNode: nodes[0].ID})
	}
	return nodes, segments
}

// baselineFromNodesAndSegments rebuilds a baseline curve from a basic
// representation's nodes, ordered by segment chaining starting from a node
// with no incoming segment (or, for a closed loop, an arbitrary start).
func baselineFromNodesAndSegments(nodes []Node, segments []Segment) *geom.Curve {
	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	next := make(map[string]string, len(segments))
	hasIncoming := make(map[string]bool, len(segments))
	for _, s := range segments {
		next[s.FromNode] = s.ToNode
		hasIncoming[s.ToNode] = true
	}
	start := ""
	for _, n := range nodes {
		if !hasIncoming[n.ID] {
			start = n.ID
			break
		}
	}
	if start == "" && len(nodes) > 0 {
		start = nodes[0].ID // closed loop: any node works as a start
	}

	var points []geom.Point
	seen := map[string]bool{}
	cur := start
	for cur != "" && !seen[cur] {
		seen[cur] = true
		n := byID[cur]
		points = append(points, geom.NewPoint(n.X, n.Y))
		cur = next[cur]
	}
	closed := cur != "" && cur == start
	return &geom.Curve{ID: uuid.NewString(), Points: points, Type: geom.CurveTypePolyline, Closed: closed}
}
