package interact

import (
	"github.com/quartercastle/vector"
	"github.com/suxatcode/knowledge-graph-view/graph/model"
	"github.com/suxatcode/knowledge-graph-view/layout"
	"github.com/suxatcode/knowledge-graph-view/render"
)

const (
	// NodeHitRadius is the largest radius a node is drawn with, so a node
	// stays grabbable whatever its current emphasis.
	NodeHitRadius = render.MaxNodeRadius
	// EdgeHitDistance is the maximum distance from an edge, measured
	// perpendicular to it, that still counts as a hit.
	EdgeHitDistance = 6.0
)

// Layout is the part of the simulation the controller reads and drags.
type Layout interface {
	Len() int
	Position(i int) vector.Vector
	Node(i int) *model.Node
	Links() []layout.Link
	Viewport() layout.Viewport
	BeginDrag(i int) bool
	DragTo(i int, p vector.Vector) vector.Vector
	EndDrag()
}

type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetNode
	TargetEdge
)

// Target is what lies under the pointer. Index is a node index for
// TargetNode and a link index for TargetEdge.
type Target struct {
	Kind  TargetKind
	Index int
}

var NoTarget = Target{Kind: TargetNone, Index: -1}

// HitNode returns the first node (in node order) whose centre is within
// NodeHitRadius of p.
func HitNode(l Layout, p vector.Vector) (int, bool) {
	for i := 0; i < l.Len(); i++ {
		if layout.Distance(p, l.Position(i)) <= NodeHitRadius {
			return i, true
		}
	}
	return -1, false
}

// HitEdge returns the first link whose segment interior lies within
// EdgeHitDistance of p. Points beyond either endpoint never hit.
func HitEdge(l Layout, p vector.Vector) (int, bool) {
	for i, link := range l.Links() {
		dist, inside := layout.PerpendicularDistance(p, l.Position(link.Source), l.Position(link.Target))
		if inside && dist <= EdgeHitDistance {
			return i, true
		}
	}
	return -1, false
}

// HitTest resolves p to a node, or failing that an edge.
func HitTest(l Layout, p vector.Vector) Target {
	if i, ok := HitNode(l, p); ok {
		return Target{Kind: TargetNode, Index: i}
	}
	if i, ok := HitEdge(l, p); ok {
		return Target{Kind: TargetEdge, Index: i}
	}
	return NoTarget
}
