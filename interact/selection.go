package interact

import (
	"github.com/suxatcode/knowledge-graph-view/graph/model"
)

type SelectionKind int

const (
	SelectionNone SelectionKind = iota
	SelectionNode
	SelectionEdge
)

func (k SelectionKind) String() string {
	switch k {
	case SelectionNode:
		return "node"
	case SelectionEdge:
		return "edge"
	}
	return "none"
}

// Selection is at most one node or one edge.
type Selection struct {
	Kind SelectionKind
	// Index is the node index or link index, -1 for SelectionNone.
	Index int
	Node  *model.Node
	Edge  *model.Edge
}

var NoSelection = Selection{Kind: SelectionNone, Index: -1}

// Same reports whether s and o select the same thing. Nodes compare by
// identifier, edges by link.
func (s Selection) Same(o Selection) bool {
	if s.Kind != o.Kind {
		return false
	}
	switch s.Kind {
	case SelectionNode:
		return s.Node != nil && o.Node != nil && s.Node.ID == o.Node.ID
	case SelectionEdge:
		return s.Index == o.Index && s.Edge == o.Edge
	}
	return true
}

//go:generate mockgen -destination listener_mock.go -package interact . SelectionListener
type SelectionListener interface {
	SelectionChanged(Selection)
}

type SelectionListenerFunc func(Selection)

func (f SelectionListenerFunc) SelectionChanged(s Selection) {
	f(s)
}
