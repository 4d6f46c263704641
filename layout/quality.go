package layout

import (
	"context"
	"math"
	"time"

	"github.com/suxatcode/knowledge-graph-view/graph/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Placement is the resolved position of one node.
type Placement struct {
	ID   model.NodeID `json:"id"`
	Name string       `json:"name"`
	X    float64      `json:"x"`
	Y    float64      `json:"y"`
}

func (fs *ForceSimulation) Placements() []Placement {
	out := make([]Placement, 0, fs.Len())
	for i := 0; i < fs.Len(); i++ {
		b := fs.store.At(i)
		out = append(out, Placement{ID: b.Node.ID, Name: b.Node.Name, X: b.Pos.X(), Y: b.Pos.Y()})
	}
	return out
}

const overlapTolerance = 1e-6

// Quality summarizes how readable the current layout is.
type Quality struct {
	Nodes            int     `json:"nodes"`
	Links            int     `json:"links"`
	MeanLinkLength   float64 `json:"mean_link_length"`
	StdDevLinkLength float64 `json:"stddev_link_length"`
	MinNodeDistance  float64 `json:"min_node_distance"`
	// Overlaps counts node pairs closer than the minimum separation.
	Overlaps int `json:"overlaps"`
}

func (fs *ForceSimulation) Measure() Quality {
	q := Quality{Nodes: fs.Len(), Links: len(fs.links)}

	lengths := make([]float64, 0, len(fs.links))
	for _, l := range fs.links {
		if l.Source == l.Target {
			continue
		}
		lengths = append(lengths, Distance(fs.store.At(l.Source).Pos, fs.store.At(l.Target).Pos))
	}
	switch len(lengths) {
	case 0:
	case 1:
		q.MeanLinkLength = lengths[0]
	default:
		q.MeanLinkLength, q.StdDevLinkLength = stat.MeanStdDev(lengths, nil)
	}

	n := fs.Len()
	if n < 2 {
		return q
	}
	distances := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := Distance(fs.store.At(i).Pos, fs.store.At(j).Pos)
			distances = append(distances, d)
			if d < fs.params.MinSeparation-overlapTolerance {
				q.Overlaps++
			}
		}
	}
	q.MinNodeDistance = floats.Min(distances)
	return q
}

// ComputeLayout runs the simulation headless until it converges, maxTicks
// is reached (maxTicks <= 0 means no limit) or ctx is done.
func (fs *ForceSimulation) ComputeLayout(ctx context.Context, maxTicks int) (Stats, bool) {
	startTicks := fs.stats.Ticks
	startTime := time.Now()
	converged := false
simulation:
	for maxTicks <= 0 || fs.stats.Ticks-startTicks < maxTicks {
		select {
		case <-ctx.Done():
			break simulation
		default:
			// continue looping
		}
		if fs.Converged(fs.Tick()) {
			converged = true
			break
		}
	}
	stats := fs.stats
	stats.Ticks -= startTicks
	stats.TotalTime = time.Since(startTime)
	if math.IsNaN(stats.LastDisplacement) {
		converged = false
	}
	return stats, converged
}
