package interact

import (
	"github.com/pkg/errors"
)

type Cursor string

const (
	CursorDefault Cursor = "default"
	CursorPointer Cursor = "pointer"
)

// Effect tells the host what an input event requires.
type Effect uint8

const (
	// Redraw means hover or selection changed.
	Redraw Effect = 1 << iota
	// Restart means node positions were changed by hand and the simulation
	// has to run again.
	Restart
)

func (e Effect) Has(f Effect) bool {
	return e&f != 0
}

type PointerType string

const (
	PointerDown  PointerType = "down"
	PointerMove  PointerType = "move"
	PointerUp    PointerType = "up"
	PointerLeave PointerType = "leave"
)

var ErrUnknownPointerType = errors.New("unknown pointer event type")

// PointerEvent is a pointer event in client coordinates.
type PointerEvent struct {
	Type    PointerType `json:"type"`
	ClientX float64     `json:"client_x"`
	ClientY float64     `json:"client_y"`
}

func (e PointerEvent) Validate() error {
	switch e.Type {
	case PointerDown, PointerMove, PointerUp, PointerLeave:
		return nil
	}
	return errors.Wrapf(ErrUnknownPointerType, "%q", e.Type)
}

// Controller is the pointer state machine: idle or dragging one node, with
// hover tracked independently and selection changes reported to a
// listener.
type Controller struct {
	layout    Layout
	listener  SelectionListener
	rect      DisplayRect
	dragging  int
	hover     Target
	selection Selection
}

func NewController(l Layout, listener SelectionListener) *Controller {
	if listener == nil {
		listener = SelectionListenerFunc(func(Selection) {})
	}
	return &Controller{
		layout:    l,
		listener:  listener,
		dragging:  -1,
		hover:     NoTarget,
		selection: NoSelection,
	}
}

// SetDisplayRect sets where the canvas is shown; the zero rect maps client
// coordinates to canvas pixels one to one.
func (c *Controller) SetDisplayRect(r DisplayRect) {
	c.rect = r
}

func (c *Controller) DisplayRect() DisplayRect { return c.rect }
func (c *Controller) Selection() Selection     { return c.selection }
func (c *Controller) Hover() Target            { return c.hover }
func (c *Controller) Dragging() bool           { return c.dragging >= 0 }

// Cursor is the pointer affordance for the current hover state.
func (c *Controller) Cursor() Cursor {
	if c.hover.Kind != TargetNone {
		return CursorPointer
	}
	return CursorDefault
}

func (c *Controller) Handle(ev PointerEvent) Effect {
	switch ev.Type {
	case PointerDown:
		return c.PointerDown(ev.ClientX, ev.ClientY)
	case PointerMove:
		return c.PointerMove(ev.ClientX, ev.ClientY)
	case PointerUp:
		return c.PointerUp()
	case PointerLeave:
		return c.PointerLeave()
	}
	return 0
}

func (c *Controller) PointerDown(clientX, clientY float64) Effect {
	p := c.rect.ToCanvas(clientX, clientY, c.layout.Viewport())
	target := HitTest(c.layout, p)
	switch target.Kind {
	case TargetNode:
		if c.layout.BeginDrag(target.Index) {
			c.dragging = target.Index
		}
		c.setSelection(c.nodeSelection(target.Index))
	case TargetEdge:
		c.setSelection(c.edgeSelection(target.Index))
	default:
		c.setSelection(NoSelection)
	}
	return Redraw
}

func (c *Controller) PointerMove(clientX, clientY float64) Effect {
	p := c.rect.ToCanvas(clientX, clientY, c.layout.Viewport())
	if c.dragging >= 0 {
		c.layout.DragTo(c.dragging, p)
		return Redraw | Restart
	}
	target := HitTest(c.layout, p)
	if target == c.hover {
		return 0
	}
	c.hover = target
	return Redraw
}

func (c *Controller) PointerUp() Effect {
	return c.endDrag()
}

func (c *Controller) PointerLeave() Effect {
	effect := c.endDrag()
	if c.hover != NoTarget {
		c.hover = NoTarget
		effect |= Redraw
	}
	return effect
}

func (c *Controller) endDrag() Effect {
	if c.dragging < 0 {
		return 0
	}
	c.dragging = -1
	c.layout.EndDrag()
	return Redraw | Restart
}

// ResetSelection clears the selection on behalf of the host.
func (c *Controller) ResetSelection() Effect {
	if c.selection.Kind == SelectionNone {
		return 0
	}
	c.setSelection(NoSelection)
	return Redraw
}

// Reset drops all interaction state after the node set was replaced.
func (c *Controller) Reset() {
	c.dragging = -1
	c.hover = NoTarget
	c.setSelection(NoSelection)
}

// Rebind re-resolves hover and selection after the snapshot was replaced
// by one with the same node set. Edges that no longer exist are
// deselected.
func (c *Controller) Rebind() {
	c.hover = NoTarget
	switch c.selection.Kind {
	case SelectionNode:
		for i := 0; i < c.layout.Len(); i++ {
			if c.layout.Node(i).ID == c.selection.Node.ID {
				c.selection = c.nodeSelection(i)
				return
			}
		}
		c.setSelection(NoSelection)
	case SelectionEdge:
		old := c.selection.Edge
		for i, link := range c.layout.Links() {
			e := link.Edge
			if e.Source == old.Source && e.Target == old.Target && e.Relation == old.Relation {
				c.selection = c.edgeSelection(i)
				return
			}
		}
		c.setSelection(NoSelection)
	}
}

func (c *Controller) nodeSelection(i int) Selection {
	return Selection{Kind: SelectionNode, Index: i, Node: c.layout.Node(i)}
}

func (c *Controller) edgeSelection(i int) Selection {
	return Selection{Kind: SelectionEdge, Index: i, Edge: c.layout.Links()[i].Edge}
}

func (c *Controller) setSelection(s Selection) {
	if s.Same(c.selection) {
		return
	}
	c.selection = s
	c.listener.SelectionChanged(s)
}
