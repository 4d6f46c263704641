package postgres

import (
	"github.com/suxatcode/knowledge-graph-view/graph/model"
)

func entityID(e *Entity) model.NodeID {
	if e.EntityID != "" {
		return model.NodeID(e.EntityID)
	}
	return model.IDFromInt(e.ID)
}

func ConvertToModel(entities []Entity, relations []Relation) *model.Snapshot {
	s := &model.Snapshot{
		Nodes: make([]model.Node, 0, len(entities)),
		Edges: make([]model.Edge, 0, len(relations)),
	}
	for i := range entities {
		e := &entities[i]
		n := model.Node{
			ID:          entityID(e),
			Name:        e.Name,
			Type:        e.Type,
			Description: e.Description,
			PageRank:    e.PageRank,
		}
		if len(e.Source) > 0 {
			n.Source = []string(e.Source)
		}
		s.Nodes = append(s.Nodes, n)
	}
	for _, r := range relations {
		s.Edges = append(s.Edges, model.Edge{
			Source:      model.NodeID(r.SourceID),
			Target:      model.NodeID(r.TargetID),
			Relation:    r.Relation,
			Description: r.Description,
			Weight:      r.Weight,
		})
	}
	return s
}

// ConvertToDB is the inverse of ConvertToModel for knowledge base kbID.
// Communities are not stored.
func ConvertToDB(kbID string, s *model.Snapshot) ([]Entity, []Relation) {
	if s == nil {
		return []Entity{}, []Relation{}
	}
	entities := make([]Entity, 0, len(s.Nodes))
	seen := make(map[model.NodeID]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		entities = append(entities, Entity{
			KnowledgeBaseID: kbID,
			EntityID:        string(n.ID),
			Name:            n.Name,
			Type:            n.Type,
			Description:     n.Description,
			PageRank:        n.PageRank,
			Source:          Strings(n.Source),
		})
	}
	relations := make([]Relation, 0, len(s.Edges))
	for _, e := range s.Edges {
		relations = append(relations, Relation{
			KnowledgeBaseID: kbID,
			SourceID:        string(e.Source),
			TargetID:        string(e.Target),
			Relation:        e.Relation,
			Description:     e.Description,
			Weight:          e.Weight,
		})
	}
	return entities, relations
}
