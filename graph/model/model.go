package model

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// NodeID identifies a node within a single snapshot. Upstream services
// emit numeric ids, files written by hand often use strings; both decode
// into the same NodeID.
type NodeID string

func (id *NodeID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NodeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrapf(err, "node id %s", string(data))
	}
	*id = NodeID(n.String())
	return nil
}

func (id *NodeID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return errors.Errorf("node id must be a scalar, line %d", value.Line)
	}
	*id = NodeID(value.Value)
	return nil
}

// Node is an entity of the knowledge graph. Only ID, Name and Type are
// used by the engine, everything else is carried along for the detail
// view.
type Node struct {
	ID          NodeID   `json:"id" yaml:"id"`
	Name        string   `json:"entity_name" yaml:"entity_name"`
	Type        string   `json:"entity_type" yaml:"entity_type"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	PageRank    *float64 `json:"pagerank,omitempty" yaml:"pagerank,omitempty"`
	Communities []any    `json:"communities,omitempty" yaml:"communities,omitempty"`
	Source      []string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Edge is a relation between two nodes. Weight is display-only.
type Edge struct {
	Source      NodeID  `json:"source" yaml:"source"`
	Target      NodeID  `json:"target" yaml:"target"`
	Relation    string  `json:"relation" yaml:"relation"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Weight      float64 `json:"weight" yaml:"weight"`
}

// Snapshot is one immutable view of a graph as handed to the engine.
type Snapshot struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Empty reports whether the snapshot has nothing to show.
func (s *Snapshot) Empty() bool {
	return s == nil || (len(s.Nodes) == 0 && len(s.Edges) == 0)
}

// NameByID maps node ids to their display names. The first node wins for
// duplicated ids.
func (s *Snapshot) NameByID() map[NodeID]string {
	names := make(map[NodeID]string, len(s.Nodes))
	for _, n := range s.Nodes {
		if _, exists := names[n.ID]; !exists {
			names[n.ID] = n.Name
		}
	}
	return names
}

// Format is the serialization of a snapshot on disk or on the wire.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromExtension maps a file extension (with or without dot) to a
// Format, defaulting to JSON.
func FormatFromExtension(ext string) Format {
	switch ext {
	case ".yaml", ".yml", "yaml", "yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode parses a snapshot. Missing node/edge lists decode as empty.
func Decode(data []byte, format Format) (*Snapshot, error) {
	s := Snapshot{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	case FormatJSON, "":
		err = json.Unmarshal(data, &s)
	default:
		return nil, errors.Errorf("unknown snapshot format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s snapshot", format)
	}
	if s.Nodes == nil {
		s.Nodes = []Node{}
	}
	if s.Edges == nil {
		s.Edges = []Edge{}
	}
	return &s, nil
}

// Encode serializes a snapshot in the given format.
func Encode(s *Snapshot, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(s)
	case FormatJSON, "":
		return json.Marshal(s)
	}
	return nil, errors.Errorf("unknown snapshot format %q", format)
}

// IDFromInt is a convenience for sources keyed by integer primary keys.
func IDFromInt(i uint) NodeID {
	return NodeID(strconv.FormatUint(uint64(i), 10))
}
