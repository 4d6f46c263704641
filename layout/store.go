package layout

import (
	"github.com/quartercastle/vector"
	"github.com/suxatcode/knowledge-graph-view/graph/model"
)

// Body is the kinematic state of one node.
type Body struct {
	Node *model.Node
	Pos  vector.Vector
	Vel  vector.Vector
}

// Store is the arena holding all bodies of the current node set. Indices
// are dense and only valid until the next Reset.
type Store struct {
	bodies []Body
	lookup map[model.NodeID]int
}

func NewStore() *Store {
	return &Store{lookup: map[model.NodeID]int{}}
}

// Reset discards every body and creates fresh ones (zero position and
// velocity) for nodes. Nodes repeating an already seen id are skipped.
func (s *Store) Reset(nodes []model.Node) {
	s.bodies = make([]Body, 0, len(nodes))
	s.lookup = make(map[model.NodeID]int, len(nodes))
	for i := range nodes {
		if _, exists := s.lookup[nodes[i].ID]; exists {
			continue
		}
		s.lookup[nodes[i].ID] = len(s.bodies)
		s.bodies = append(s.bodies, Body{
			Node: &nodes[i],
			Pos:  vector.Vector{0, 0},
			Vel:  vector.Vector{0, 0},
		})
	}
}

// Rebind points the existing bodies at the nodes of a new snapshot with the
// same node set, keeping positions and velocities.
func (s *Store) Rebind(nodes []model.Node) {
	seen := make(map[model.NodeID]struct{}, len(nodes))
	for i := range nodes {
		if _, dup := seen[nodes[i].ID]; dup {
			continue
		}
		seen[nodes[i].ID] = struct{}{}
		if idx, ok := s.lookup[nodes[i].ID]; ok {
			s.bodies[idx].Node = &nodes[i]
		}
	}
}

// SameNodeSet reports whether nodes (after dropping duplicate ids) contain
// exactly the ids held by the store.
func (s *Store) SameNodeSet(nodes []model.Node) bool {
	seen := make(map[model.NodeID]struct{}, len(nodes))
	for _, n := range nodes {
		if _, ok := s.lookup[n.ID]; !ok {
			return false
		}
		seen[n.ID] = struct{}{}
	}
	return len(seen) == len(s.bodies)
}

func (s *Store) Len() int {
	return len(s.bodies)
}

// At returns the body at index i for in-place updates.
func (s *Store) At(i int) *Body {
	return &s.bodies[i]
}

// Index returns the arena index of the node with the given id.
func (s *Store) Index(id model.NodeID) (int, bool) {
	i, ok := s.lookup[id]
	return i, ok
}

// Position returns a copy of the position of body i.
func (s *Store) Position(i int) vector.Vector {
	return vector.Vector{s.bodies[i].Pos.X(), s.bodies[i].Pos.Y()}
}

// Velocity returns a copy of the velocity of body i.
func (s *Store) Velocity(i int) vector.Vector {
	return vector.Vector{s.bodies[i].Vel.X(), s.bodies[i].Vel.Y()}
}

// Clear drops all bodies.
func (s *Store) Clear() {
	s.bodies = nil
	s.lookup = map[model.NodeID]int{}
}
