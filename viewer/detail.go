package viewer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/suxatcode/knowledge-graph-view/graph/model"
	"github.com/suxatcode/knowledge-graph-view/interact"
)

// Field is one line of the detail panel.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Detail is what the host shows for the current selection. Fields that
// carry no information (placeholder types, the default pagerank, the
// default weight, a description repeating the relation) are left out.
type Detail struct {
	Kind   string  `json:"kind"`
	Fields []Field `json:"fields"`
}

var placeholderTypes = map[string]struct{}{
	"ENTITY":  {},
	"UNKNOWN": {},
	"未知":      {},
}

// FallbackName names an edge endpoint missing from the snapshot.
func FallbackName(id model.NodeID) string {
	return "节点 " + string(id)
}

func NodeDetail(n *model.Node) Detail {
	d := Detail{Kind: interact.SelectionNode.String(), Fields: []Field{{Key: "name", Value: n.Name}}}
	if _, placeholder := placeholderTypes[n.Type]; n.Type != "" && !placeholder {
		d.Fields = append(d.Fields, Field{Key: "type", Value: n.Type})
	}
	if n.Description != "" {
		d.Fields = append(d.Fields, Field{Key: "description", Value: n.Description})
	}
	if n.PageRank != nil && math.Abs(*n.PageRank-1) > 1e-9 {
		d.Fields = append(d.Fields, Field{Key: "pagerank", Value: strconv.FormatFloat(*n.PageRank, 'f', 4, 64)})
	}
	if len(n.Source) > 0 {
		d.Fields = append(d.Fields, Field{Key: "source", Value: strings.Join(n.Source, ", ")})
	}
	return d
}

func EdgeDetail(e *model.Edge, names map[model.NodeID]string) Detail {
	d := Detail{Kind: interact.SelectionEdge.String(), Fields: []Field{{Key: "relation", Value: e.Relation}}}
	description, relation := strings.TrimSpace(e.Description), strings.TrimSpace(e.Relation)
	if description != "" && description != relation {
		d.Fields = append(d.Fields, Field{Key: "description", Value: e.Description})
	}
	if math.Abs(e.Weight-2) > 1e-9 {
		d.Fields = append(d.Fields, Field{Key: "weight", Value: strconv.FormatFloat(e.Weight, 'f', 2, 64)})
	}
	d.Fields = append(d.Fields, Field{
		Key:   "connection",
		Value: fmt.Sprintf("%s → %s", endpointName(e.Source, names), endpointName(e.Target, names)),
	})
	return d
}

func endpointName(id model.NodeID, names map[model.NodeID]string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return FallbackName(id)
}

// DetailFor projects a selection; the empty selection has no fields.
func DetailFor(sel interact.Selection, names map[model.NodeID]string) Detail {
	switch sel.Kind {
	case interact.SelectionNode:
		return NodeDetail(sel.Node)
	case interact.SelectionEdge:
		return EdgeDetail(sel.Edge, names)
	}
	return Detail{Kind: interact.SelectionNone.String(), Fields: []Field{}}
}
