package layout

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/quartercastle/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suxatcode/knowledge-graph-view/graph/model"
)

func makeNodes(n int) []model.Node {
	nodes := make([]model.Node, n)
	for i := range nodes {
		nodes[i] = model.Node{ID: model.IDFromInt(uint(i)), Name: fmt.Sprintf("node %d", i)}
	}
	return nodes
}

func makeRandomEdges(rnd *rand.Rand, n, count int) []model.Edge {
	edges := make([]model.Edge, 0, count)
	for len(edges) < count {
		s, t := rnd.Intn(n), rnd.Intn(n)
		if s == t {
			continue
		}
		edges = append(edges, model.Edge{Source: model.IDFromInt(uint(s)), Target: model.IDFromInt(uint(t))})
	}
	return edges
}

func assertInBounds(t *testing.T, fs *ForceSimulation) {
	t.Helper()
	bounds := fs.Params().Bounds
	for i := 0; i < fs.Len(); i++ {
		p := fs.Position(i)
		assert.False(t, math.IsNaN(p.X()) || math.IsNaN(p.Y()), "node %d has NaN position", i)
		assert.True(t, bounds.Contains(p), "node %d at %v outside of %v", i, p, bounds)
	}
}

func TestForceSimulation_SetGraph(t *testing.T) {
	assert := assert.New(t)
	fs := NewForceSimulation(ForceSimulationConfig{})
	assert.True(fs.SetGraph(makeNodes(3), nil), "initial graph resets state")
	assert.Equal(3, fs.Len())
	center := fs.Params().Center
	for i := 0; i < 3; i++ {
		assert.InDelta(fs.Params().InitialRadius, Distance(fs.Position(i), center), 1e-9, "start ring")
		assert.Equal(vector.Vector{0, 0}, fs.Velocity(i))
	}
	assertInBounds(t, fs)

	fs.Tick()
	moved := fs.Position(1)
	renamed := makeNodes(3)
	renamed[1].Name = "renamed"
	assert.False(fs.SetGraph(renamed, nil), "same node set keeps state")
	assert.Equal(moved, fs.Position(1))
	assert.Equal("renamed", fs.Node(1).Name)

	fs.BeginDrag(1)
	assert.True(fs.SetGraph(makeNodes(4), nil))
	assert.Equal(-1, fs.Dragged(), "reset ends drag")
	assert.Equal(4, fs.Len())
}

func TestForceSimulation_DanglingEdges(t *testing.T) {
	assert := assert.New(t)
	fs := NewForceSimulation(ForceSimulationConfig{})
	fs.SetGraph(makeNodes(2), []model.Edge{
		{Source: "0", Target: "1", Relation: "ok"},
		{Source: "0", Target: "99", Relation: "dangling"},
		{Source: "42", Target: "1", Relation: "dangling"},
	})
	require.Len(t, fs.Links(), 1)
	assert.Equal("ok", fs.Links()[0].Edge.Relation)
	assert.Equal(0, fs.Links()[0].Source)
	assert.Equal(1, fs.Links()[0].Target)
	for i := 0; i < 50; i++ {
		fs.Tick()
	}
	assertInBounds(t, fs)
}

func TestForceSimulation_EmptyGraph(t *testing.T) {
	assert := assert.New(t)
	fs := NewForceSimulation(ForceSimulationConfig{})
	fs.SetGraph(nil, nil)
	assert.Equal(0, fs.Len())
	assert.Equal(0.0, fs.Tick())
	assert.True(fs.Converged(fs.Tick()))
	stats, converged := fs.ComputeLayout(context.Background(), 10)
	assert.True(converged)
	assert.Equal(1, stats.Ticks)
}

func TestForceSimulation_TwoUnconnectedNodesSettleApart(t *testing.T) {
	assert := assert.New(t)
	fs := NewForceSimulation(ForceSimulationConfig{})
	fs.SetGraph(makeNodes(2), nil)
	_, converged := fs.ComputeLayout(context.Background(), 5000)
	assert.True(converged)
	assertInBounds(t, fs)
	assert.GreaterOrEqual(Distance(fs.Position(0), fs.Position(1)), fs.Params().MinSeparation)
	assert.Equal(0, fs.Measure().Overlaps)
}

// makeTreeEdges links node i to node (i-1)/2.
func makeTreeEdges(n int) []model.Edge {
	edges := make([]model.Edge, 0, n)
	for i := 1; i < n; i++ {
		edges = append(edges, model.Edge{Source: model.IDFromInt(uint((i - 1) / 2)), Target: model.IDFromInt(uint(i))})
	}
	return edges
}

func makePathEdges(n int) []model.Edge {
	edges := make([]model.Edge, 0, n)
	for i := 1; i < n; i++ {
		edges = append(edges, model.Edge{Source: model.IDFromInt(uint(i - 1)), Target: model.IDFromInt(uint(i))})
	}
	return edges
}

func TestForceSimulation_SmallGraphsHaveNoOverlap(t *testing.T) {
	for _, test := range []struct {
		Name     string
		Nodes    int
		Edges    []model.Edge
		Viewport Viewport
	}{
		{Name: "3 nodes", Nodes: 3},
		{Name: "4 nodes", Nodes: 4},
		{Name: "5 nodes", Nodes: 5},
		{Name: "10 nodes", Nodes: 10},
		{Name: "10 nodes tree", Nodes: 10, Edges: makeTreeEdges(10)},
		{Name: "12 nodes path", Nodes: 12, Edges: makePathEdges(12)},
		{Name: "15 nodes tree", Nodes: 15, Edges: makeTreeEdges(15)},
		{Name: "15 nodes path", Nodes: 15, Edges: makePathEdges(15)},
		{Name: "8 nodes small canvas", Nodes: 8, Viewport: Viewport{Width: 300, Height: 300}},
		{Name: "8 nodes tree small canvas", Nodes: 8, Edges: makeTreeEdges(8), Viewport: Viewport{Width: 300, Height: 300}},
	} {
		t.Run(test.Name, func(t *testing.T) {
			fs := NewForceSimulation(ForceSimulationConfig{Viewport: test.Viewport})
			fs.SetGraph(makeNodes(test.Nodes), test.Edges)
			_, converged := fs.ComputeLayout(context.Background(), 20000)
			assert.True(t, converged)
			assert.False(t, fs.Settling())
			assertInBounds(t, fs)
			q := fs.Measure()
			assert.Equal(t, 0, q.Overlaps, "min distance %f, min separation %f", q.MinNodeDistance, fs.Params().MinSeparation)
			assert.GreaterOrEqual(t, q.MinNodeDistance, fs.Params().MinSeparation-overlapTolerance)
		})
	}
}

func TestForceSimulation_SettleGivesUpWhenCrowded(t *testing.T) {
	assert := assert.New(t)
	fs := NewForceSimulation(ForceSimulationConfig{Viewport: Viewport{Width: 300, Height: 300}, SettleTicks: 5})
	fs.SetGraph(makeNodes(30), makeTreeEdges(30))
	_, converged := fs.ComputeLayout(context.Background(), 20000)
	assert.True(converged, "a canvas too small for the graph still comes to rest")
	assert.False(fs.Settling())
	assert.Greater(fs.Measure().Overlaps, 0)
	assertInBounds(t, fs)
}

func TestForceSimulation_SettlesLeftoverOverlaps(t *testing.T) {
	assert := assert.New(t)
	fs := NewForceSimulation(ForceSimulationConfig{})
	fs.SetGraph(makeNodes(10), nil)
	ticks := 0
	for ; ticks < 5000 && !fs.Settling(); ticks++ {
		assert.False(fs.Converged(fs.Tick()), "tick %d", ticks)
	}
	require.True(t, fs.Settling(), "forces at rest with nodes still overlapping")
	assert.LessOrEqual(fs.Stats().LastDisplacement, fs.Config().Epsilon)
	assert.Greater(fs.Measure().Overlaps, 0)

	for !fs.Converged(fs.Tick()) {
		ticks++
		require.Less(t, ticks, 5000, "settling did not finish")
	}
	assert.False(fs.Settling())
	assert.Equal(0, fs.Measure().Overlaps)

	fs.BeginDrag(0)
	assert.False(fs.Settling())
	fs.EndDrag()
}

func TestForceSimulation_SpringPullsConnectedNodes(t *testing.T) {
	run := func(edges []model.Edge) float64 {
		fs := NewForceSimulation(ForceSimulationConfig{})
		fs.SetGraph(makeNodes(2), edges)
		fs.DragTo(0, vector.Vector{100, 300})
		fs.DragTo(1, vector.Vector{1100, 300})
		fs.Tick()
		return Distance(fs.Position(0), fs.Position(1))
	}
	connected := run([]model.Edge{{Source: "0", Target: "1"}})
	unconnected := run(nil)
	assert.Less(t, connected, unconnected)
}

func TestForceSimulation_Drag(t *testing.T) {
	assert := assert.New(t)
	fs := NewForceSimulation(ForceSimulationConfig{})
	fs.SetGraph(makeNodes(5), []model.Edge{{Source: "0", Target: "1"}, {Source: "0", Target: "2"}})
	assert.False(fs.BeginDrag(5))
	assert.True(fs.BeginDrag(0))
	assert.Equal(0, fs.Dragged())

	target := vector.Vector{500, 300}
	assert.Equal(target, fs.DragTo(0, target))
	for i := 0; i < 100; i++ {
		fs.Tick()
		assert.Equal(target, fs.Position(0), "tick %d", i)
		assert.Equal(vector.Vector{0, 0}, fs.Velocity(0))
	}
	assertInBounds(t, fs)

	assert.Equal(vector.Vector{40, 560}, fs.DragTo(0, vector.Vector{-100, 5000}), "clamped into padded bounds")

	fs.EndDrag()
	assert.Equal(-1, fs.Dragged())
}

func TestForceSimulation_DraggedNodeStillRepels(t *testing.T) {
	assert := assert.New(t)
	fs := NewForceSimulation(ForceSimulationConfig{})
	fs.SetGraph(makeNodes(2), nil)
	fs.BeginDrag(0)
	fs.DragTo(0, vector.Vector{600, 300})
	fs.DragTo(1, vector.Vector{610, 300})
	fs.Tick()
	assert.Equal(vector.Vector{600, 300}, fs.Position(0))
	assert.Greater(fs.Position(1).X(), 610.0, "pushed away from the dragged node")
}

func TestForceSimulation_CoincidentNodes(t *testing.T) {
	assert := assert.New(t)
	fs := NewForceSimulation(ForceSimulationConfig{})
	fs.SetGraph(makeNodes(3), []model.Edge{{Source: "0", Target: "1"}})
	for i := 0; i < 3; i++ {
		fs.DragTo(i, vector.Vector{600, 300})
	}
	fs.Tick()
	assertInBounds(t, fs)
	assert.NotEqual(fs.Position(0), fs.Position(1))
	assert.NotEqual(fs.Position(1), fs.Position(2))
	assert.NotEqual(fs.Position(0), fs.Position(2))
}

func TestForceSimulation_Resize(t *testing.T) {
	assert := assert.New(t)
	fs := NewForceSimulation(ForceSimulationConfig{})
	fs.SetGraph(makeNodes(6), []model.Edge{{Source: "0", Target: "1"}})
	for i := 0; i < 5; i++ {
		fs.Tick()
	}
	positions, velocities := []vector.Vector{}, []vector.Vector{}
	for i := 0; i < fs.Len(); i++ {
		positions = append(positions, fs.Position(i))
		velocities = append(velocities, fs.Velocity(i))
	}

	fs.Resize(Viewport{Width: 2400, Height: 1200})
	for i := 0; i < fs.Len(); i++ {
		assert.Equal(positions[i], fs.Position(i), "in bounds positions are untouched")
		assert.Equal(velocities[i], fs.Velocity(i))
	}

	fs.Resize(Viewport{Width: 300, Height: 300})
	assert.Equal(Viewport{Width: 300, Height: 300}, fs.Viewport())
	assertInBounds(t, fs)
	for i := 0; i < fs.Len(); i++ {
		assert.Equal(velocities[i], fs.Velocity(i), "resize keeps velocities")
	}
}

func TestForceSimulation_RandomGraphStaysInBounds(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for _, test := range []struct {
		Name     string
		N        int
		Edges    int
		Viewport Viewport
	}{
		{Name: "sparse", N: 20, Edges: 10, Viewport: Viewport{1200, 600}},
		{Name: "dense", N: 60, Edges: 150, Viewport: Viewport{800, 500}},
		{Name: "small viewport", N: 40, Edges: 40, Viewport: Viewport{300, 300}},
	} {
		t.Run(test.Name, func(t *testing.T) {
			fs := NewForceSimulation(ForceSimulationConfig{Viewport: test.Viewport})
			fs.SetGraph(makeNodes(test.N), makeRandomEdges(rnd, test.N, test.Edges))
			for i := 0; i < 300; i++ {
				d := fs.Tick()
				require.False(t, math.IsNaN(d))
			}
			assertInBounds(t, fs)
		})
	}
}

func TestForceSimulation_ComputeLayoutCancelled(t *testing.T) {
	fs := NewForceSimulation(ForceSimulationConfig{})
	fs.SetGraph(makeNodes(10), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, converged := fs.ComputeLayout(ctx, 0)
	assert.False(t, converged)
	assert.Equal(t, 0, stats.Ticks)
}

func TestForceSimulation_Measure(t *testing.T) {
	assert := assert.New(t)
	fs := NewForceSimulation(ForceSimulationConfig{})
	fs.SetGraph(makeNodes(3), []model.Edge{{Source: "0", Target: "1"}, {Source: "1", Target: "2"}})
	fs.DragTo(0, vector.Vector{100, 100})
	fs.DragTo(1, vector.Vector{200, 100})
	fs.DragTo(2, vector.Vector{200, 400})
	q := fs.Measure()
	assert.Equal(3, q.Nodes)
	assert.Equal(2, q.Links)
	assert.InDelta(200, q.MeanLinkLength, 1e-9)
	assert.InDelta(100, q.MinNodeDistance, 1e-9)
	assert.Equal(1, q.Overlaps)

	placements := fs.Placements()
	assert.Equal(Placement{ID: "2", Name: "node 2", X: 200, Y: 400}, placements[2])
}

func BenchmarkForceSimulation_Tick(b *testing.B) {
	rnd := rand.New(rand.NewSource(1))
	for _, barnesHut := range []bool{false, true} {
		b.Run(fmt.Sprintf("barnes-hut=%v", barnesHut), func(b *testing.B) {
			fs := NewForceSimulation(ForceSimulationConfig{BarnesHut: barnesHut, BarnesHutThreshold: 1})
			fs.SetGraph(makeNodes(500), makeRandomEdges(rnd, 500, 600))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				fs.Tick()
			}
		})
	}
}
