// Package viewer composes layout simulation, interaction and rendering into
// one engine per displayed graph.
package viewer

import (
	"image"

	"github.com/rs/zerolog"
	"github.com/suxatcode/knowledge-graph-view/graph/model"
	"github.com/suxatcode/knowledge-graph-view/interact"
	"github.com/suxatcode/knowledge-graph-view/layout"
	"github.com/suxatcode/knowledge-graph-view/render"
)

// MinSize is the smallest width and height the canvas is laid out for.
const MinSize = 300

type Options struct {
	Layout   layout.ForceSimulationConfig
	Render   render.Options
	Listener interact.SelectionListener
	// Frames defaults to a FrameQueue the host has to Flush via Frames().
	Frames FrameRequester
	Logger *zerolog.Logger
}

// Engine renders one interactive graph. All methods must be called from the
// same goroutine, the one that also delivers frames.
type Engine struct {
	log      zerolog.Logger
	sim      *layout.ForceSimulation
	ctrl     *interact.Controller
	renderer *render.Renderer
	sched    *Scheduler
	frames   FrameRequester
	listener interact.SelectionListener

	snapshot *model.Snapshot
	names    map[model.NodeID]string
	frame    *image.RGBA
	dirty    bool
	closed   bool
}

func NewEngine(opts Options) (*Engine, error) {
	renderer, err := render.NewRenderer(opts.Render)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		log:      zerolog.Nop(),
		sim:      layout.NewForceSimulation(opts.Layout),
		renderer: renderer,
		frames:   opts.Frames,
		listener: opts.Listener,
		snapshot: &model.Snapshot{Nodes: []model.Node{}, Edges: []model.Edge{}},
		names:    map[model.NodeID]string{},
		dirty:    true,
	}
	if opts.Logger != nil {
		e.log = *opts.Logger
	}
	if e.frames == nil {
		e.frames = &FrameQueue{}
	}
	e.ctrl = interact.NewController(e.sim, interact.SelectionListenerFunc(e.selectionChanged))
	e.sched = NewScheduler(e.frames, e.step)
	e.Resize(int(e.sim.Viewport().Width), int(e.sim.Viewport().Height))
	return e, nil
}

func (e *Engine) Frames() FrameRequester { return e.frames }

// SetGraph replaces the displayed snapshot. If the node set is unchanged
// the layout continues from the current positions, otherwise it starts
// over and the selection is cleared.
func (e *Engine) SetGraph(s *model.Snapshot) {
	if e.closed {
		return
	}
	if s == nil {
		s = &model.Snapshot{}
	}
	reset := e.sim.SetGraph(s.Nodes, s.Edges)
	if reset {
		e.ctrl.Reset()
	} else {
		e.ctrl.Rebind()
	}
	e.snapshot = s
	e.names = s.NameByID()
	e.log.Debug().
		Int("nodes", e.sim.Len()).
		Int("links", len(e.sim.Links())).
		Int("edges", len(s.Edges)).
		Bool("reset", reset).
		Msg("graph set")
	e.invalidate()
	e.restart()
}

func (e *Engine) Snapshot() *model.Snapshot {
	return e.snapshot
}

// Resize sets the canvas size, never below MinSize on either axis.
func (e *Engine) Resize(width, height int) {
	if e.closed {
		return
	}
	width, height = max(width, MinSize), max(height, MinSize)
	if e.frame == nil || e.frame.Bounds().Dx() != width || e.frame.Bounds().Dy() != height {
		e.frame = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	vp := layout.Viewport{Width: float64(width), Height: float64(height)}
	if vp == e.sim.Viewport() && e.sim.Params().Bounds.Width > 0 {
		return
	}
	e.sim.Resize(vp)
	e.log.Debug().Int("width", width).Int("height", height).Msg("resized")
	e.invalidate()
	e.restart()
}

func (e *Engine) Size() (width, height int) {
	vp := e.sim.Viewport()
	return int(vp.Width), int(vp.Height)
}

func (e *Engine) SetDisplayRect(r interact.DisplayRect) {
	e.ctrl.SetDisplayRect(r)
}

func (e *Engine) PointerDown(clientX, clientY float64) interact.Cursor {
	return e.Pointer(interact.PointerEvent{Type: interact.PointerDown, ClientX: clientX, ClientY: clientY})
}

func (e *Engine) PointerMove(clientX, clientY float64) interact.Cursor {
	return e.Pointer(interact.PointerEvent{Type: interact.PointerMove, ClientX: clientX, ClientY: clientY})
}

func (e *Engine) PointerUp() interact.Cursor {
	return e.Pointer(interact.PointerEvent{Type: interact.PointerUp})
}

func (e *Engine) PointerLeave() interact.Cursor {
	return e.Pointer(interact.PointerEvent{Type: interact.PointerLeave})
}

// Pointer feeds a pointer event to the interaction controller and returns
// the cursor to show afterwards.
func (e *Engine) Pointer(ev interact.PointerEvent) interact.Cursor {
	if e.closed {
		return interact.CursorDefault
	}
	e.apply(e.ctrl.Handle(ev))
	return e.ctrl.Cursor()
}

// ResetSelection clears the selection on behalf of the host.
func (e *Engine) ResetSelection() {
	if e.closed {
		return
	}
	e.apply(e.ctrl.ResetSelection())
}

func (e *Engine) apply(effect interact.Effect) {
	if effect.Has(interact.Redraw) {
		e.invalidate()
	}
	if effect.Has(interact.Restart) {
		e.restart()
	}
}

// restart runs the layout loop again. An empty graph has nothing to lay
// out, so the loop stays stopped and Frame draws the background.
func (e *Engine) restart() {
	if e.sim.Len() == 0 {
		e.sched.Stop()
		return
	}
	e.sched.Start()
}

func (e *Engine) Selection() interact.Selection { return e.ctrl.Selection() }
func (e *Engine) Hover() interact.Target         { return e.ctrl.Hover() }
func (e *Engine) Cursor() interact.Cursor        { return e.ctrl.Cursor() }
func (e *Engine) Quality() layout.Quality        { return e.sim.Measure() }
func (e *Engine) Placements() []layout.Placement { return e.sim.Placements() }
func (e *Engine) Stats() layout.Stats            { return e.sim.Stats() }

// Detail describes the current selection.
func (e *Engine) Detail() Detail {
	return DetailFor(e.ctrl.Selection(), e.names)
}

// Idle reports whether the simulation loop has stopped.
func (e *Engine) Idle() bool {
	return !e.sched.Running()
}

// Frame returns the current picture, redrawn if anything changed since the
// last call. The image is reused by later calls.
func (e *Engine) Frame() *image.RGBA {
	if e.dirty && !e.closed {
		e.renderer.Draw(e.frame, e.scene())
		e.dirty = false
	}
	return e.frame
}

func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.sched.Stop()
	e.sim.Clear()
	e.log.Debug().Msg("closed")
	return e.renderer.Close()
}

func (e *Engine) step() bool {
	displacement := e.sim.Tick()
	e.invalidate()
	if e.sim.Converged(displacement) {
		stats := e.sim.Stats()
		e.log.Debug().Int("ticks", stats.Ticks).Float64("displacement", displacement).Msg("layout converged")
		return false
	}
	return true
}

func (e *Engine) invalidate() {
	e.dirty = true
}

func (e *Engine) selectionChanged(s interact.Selection) {
	ev := e.log.Debug().Stringer("kind", s.Kind)
	switch s.Kind {
	case interact.SelectionNode:
		ev = ev.Str("node", string(s.Node.ID))
	case interact.SelectionEdge:
		ev = ev.Str("source", string(s.Edge.Source)).Str("target", string(s.Edge.Target))
	}
	ev.Msg("selection changed")
	if e.listener != nil {
		e.listener.SelectionChanged(s)
	}
}

func (e *Engine) scene() render.Scene {
	sel, hover := e.ctrl.Selection(), e.ctrl.Hover()
	links := e.sim.Links()
	vp := e.sim.Viewport()
	scene := render.Scene{
		Width:  int(vp.Width),
		Height: int(vp.Height),
		Edges:  make([]render.EdgeSprite, 0, len(links)),
		Nodes:  make([]render.NodeSprite, 0, e.sim.Len()),
	}
	for i, l := range links {
		scene.Edges = append(scene.Edges, render.EdgeSprite{
			From: e.sim.Position(l.Source),
			To:   e.sim.Position(l.Target),
			Emphasis: render.Emphasize(
				hover.Kind == interact.TargetEdge && hover.Index == i,
				sel.Kind == interact.SelectionEdge && sel.Index == i,
			),
		})
	}
	for i := 0; i < e.sim.Len(); i++ {
		n := e.sim.Node(i)
		scene.Nodes = append(scene.Nodes, render.NodeSprite{
			Label:    n.Name,
			Category: render.ParseCategory(n.Type),
			Pos:      e.sim.Position(i),
			Emphasis: render.Emphasize(
				hover.Kind == interact.TargetNode && hover.Index == i,
				sel.Kind == interact.SelectionNode && sel.Index == i,
			),
		})
	}
	return scene
}
