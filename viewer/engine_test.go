package viewer

import (
	"image/color"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/quartercastle/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suxatcode/knowledge-graph-view/graph/model"
	"github.com/suxatcode/knowledge-graph-view/interact"
	"github.com/suxatcode/knowledge-graph-view/layout"
	"github.com/suxatcode/knowledge-graph-view/render"
)

var testSnapshot = &model.Snapshot{
	Nodes: []model.Node{
		{ID: "1", Name: "Alice", Type: "person"},
		{ID: "2", Name: "Conference", Type: "EVENT"},
	},
	Edges: []model.Edge{{Source: "1", Target: "2", Relation: "attends", Weight: 2}},
}

func newTestEngine(t *testing.T, listener interact.SelectionListener) (*Engine, *FrameQueue) {
	t.Helper()
	q := &FrameQueue{}
	e, err := NewEngine(Options{
		Layout:   layout.ForceSimulationConfig{Viewport: layout.Viewport{Width: 800, Height: 500}},
		Frames:   q,
		Listener: listener,
	})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, e.Close()) })
	return e, q
}

func runUntilIdle(t *testing.T, e *Engine, q *FrameQueue) int {
	t.Helper()
	frames := 0
	for ; !e.Idle() && frames < 10000; frames++ {
		q.Flush()
	}
	require.True(t, e.Idle(), "layout did not settle")
	return frames
}

func positionOf(e *Engine, id model.NodeID) vector.Vector {
	for _, p := range e.Placements() {
		if p.ID == id {
			return vector.Vector{p.X, p.Y}
		}
	}
	return nil
}

func TestEngine_SettlesAndRenders(t *testing.T) {
	assert := assert.New(t)
	e, q := newTestEngine(t, nil)
	assert.True(e.Idle())
	e.SetGraph(testSnapshot)
	assert.False(e.Idle())
	assert.Greater(runUntilIdle(t, e, q), 1)
	assert.Equal(0, e.Quality().Overlaps)

	img := e.Frame()
	w, h := e.Size()
	assert.Equal(800, w)
	assert.Equal(500, h)
	assert.Equal(800, img.Bounds().Dx())
	for _, test := range []struct {
		ID    model.NodeID
		Color render.Category
	}{
		{ID: "1", Color: render.CategoryPerson},
		{ID: "2", Color: render.CategoryEvent},
	} {
		p := positionOf(e, test.ID)
		require.NotNil(t, p)
		assert.Equal(test.Color.Color(), img.RGBAAt(int(p.X()), int(p.Y())), "node %s", test.ID)
	}
}

func TestEngine_SelectAndDrag(t *testing.T) {
	ctrl := gomock.NewController(t)
	listener := interact.NewMockSelectionListener(ctrl)
	e, q := newTestEngine(t, listener)
	e.SetGraph(testSnapshot)
	runUntilIdle(t, e, q)
	assert := assert.New(t)

	alice := positionOf(e, "1")
	listener.EXPECT().SelectionChanged(gomock.Any()).Do(func(s interact.Selection) {
		assert.Equal(interact.SelectionNode, s.Kind)
		assert.Equal("Alice", s.Node.Name)
	})
	assert.Equal(interact.CursorDefault, e.PointerDown(alice.X()+3, alice.Y()))
	assert.Equal(interact.SelectionNode, e.Selection().Kind)
	assert.Equal([]Field{{Key: "name", Value: "Alice"}, {Key: "type", Value: "person"}}, e.Detail().Fields)

	e.PointerMove(150, 120)
	assert.False(e.Idle(), "dragging restarts the layout")
	for i := 0; i < 20; i++ {
		q.Flush()
		assert.Equal(vector.Vector{150, 120}, positionOf(e, "1"), "dragged node follows the pointer only")
	}
	e.PointerUp()
	runUntilIdle(t, e, q)
	assert.Equal(interact.SelectionNode, e.Selection().Kind)
	assert.Equal(model.NodeID("1"), e.Selection().Node.ID)

	img := e.Frame()
	p := positionOf(e, "1")
	assert.Equal(render.CategoryPerson.Color(), img.RGBAAt(int(p.X()), int(p.Y())))

	listener.EXPECT().SelectionChanged(gomock.Any()).Do(func(s interact.Selection) {
		assert.Equal(interact.SelectionNone, s.Kind)
	})
	e.ResetSelection()
	e.ResetSelection()
}

func TestEngine_Hover(t *testing.T) {
	assert := assert.New(t)
	e, q := newTestEngine(t, nil)
	e.SetGraph(testSnapshot)
	runUntilIdle(t, e, q)

	alice := positionOf(e, "1")
	assert.Equal(interact.CursorPointer, e.PointerMove(alice.X(), alice.Y()+2))
	assert.Equal(interact.TargetNode, e.Hover().Kind)
	assert.Equal(interact.CursorDefault, e.PointerLeave())
	assert.Equal(interact.TargetNone, e.Hover().Kind)
	assert.True(e.Idle(), "hover alone does not restart the layout")
}

func TestEngine_Reload(t *testing.T) {
	ctrl := gomock.NewController(t)
	listener := interact.NewMockSelectionListener(ctrl)
	e, q := newTestEngine(t, listener)
	e.SetGraph(testSnapshot)
	runUntilIdle(t, e, q)
	assert := assert.New(t)

	listener.EXPECT().SelectionChanged(gomock.Any()).Times(1)
	bob := positionOf(e, "2")
	e.PointerDown(bob.X(), bob.Y())
	e.PointerUp()
	runUntilIdle(t, e, q)
	bob = positionOf(e, "2")

	renamed := &model.Snapshot{
		Nodes: []model.Node{testSnapshot.Nodes[1], {ID: "1", Name: "Alice B."}},
		Edges: testSnapshot.Edges,
	}
	e.SetGraph(renamed)
	assert.Equal(bob, positionOf(e, "2"), "same node set keeps positions")
	assert.Equal(interact.SelectionNode, e.Selection().Kind, "and the selection")
	assert.Equal(renamed, e.Snapshot())
	assert.Equal("Alice B. → Conference", EdgeDetail(&renamed.Edges[0], e.names).Fields[1].Value)

	listener.EXPECT().SelectionChanged(gomock.Any()).Do(func(s interact.Selection) {
		assert.Equal(interact.SelectionNone, s.Kind)
	})
	grown := &model.Snapshot{Nodes: append([]model.Node{{ID: "3", Name: "Carol"}}, testSnapshot.Nodes...)}
	e.SetGraph(grown)
	assert.Equal(interact.SelectionNone, e.Selection().Kind, "changed node set clears the selection")
	runUntilIdle(t, e, q)
}

func TestEngine_Resize(t *testing.T) {
	assert := assert.New(t)
	e, q := newTestEngine(t, nil)
	e.SetGraph(testSnapshot)
	runUntilIdle(t, e, q)

	e.Resize(100, 2000)
	w, h := e.Size()
	assert.Equal(MinSize, w, "never below the minimum size")
	assert.Equal(2000, h)
	assert.Equal(MinSize, e.Frame().Bounds().Dx())
	assert.False(e.Idle())
	for _, p := range e.Placements() {
		assert.GreaterOrEqual(p.X, 40.0)
		assert.LessOrEqual(p.X, float64(MinSize-40))
	}
	runUntilIdle(t, e, q)

	e.Resize(300, 2000)
	assert.True(e.Idle(), "same size is a no-op")
}

func TestEngine_EmptyGraph(t *testing.T) {
	e, q := newTestEngine(t, nil)
	assert.True(t, e.Idle())
	assert.Equal(t, 0, q.Pending())
	e.SetGraph(nil)
	assert.True(t, e.Idle())
	assert.Equal(t, 0, runUntilIdle(t, e, q))
	e.Resize(640, 480)
	assert.True(t, e.Idle())
	assert.Equal(t, 0, q.Pending())
	img := e.Frame()
	assert.Equal(t, color.RGBAModel.Convert(render.DefaultOptions.Background), img.At(10, 10))
	assert.Equal(t, interact.CursorDefault, e.PointerDown(10, 10))
	assert.Equal(t, "none", e.Detail().Kind)

	e.SetGraph(testSnapshot)
	assert.False(t, e.Idle())
	e.SetGraph(&model.Snapshot{})
	assert.True(t, e.Idle(), "clearing the graph stops the loop")
	assert.Equal(t, 0, runUntilIdle(t, e, q))
}

func TestEngine_Close(t *testing.T) {
	assert := assert.New(t)
	q := &FrameQueue{}
	e, err := NewEngine(Options{Frames: q})
	require.NoError(t, err)
	e.SetGraph(testSnapshot)
	assert.NoError(e.Close())
	assert.True(e.Idle())
	q.Flush()
	e.SetGraph(testSnapshot)
	e.Resize(400, 400)
	assert.Equal(interact.CursorDefault, e.PointerDown(1, 1))
	assert.Equal(0, q.Pending())
	assert.NoError(e.Close())
}
