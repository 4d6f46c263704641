package render

import "image/color"

// Emphasis is how prominently a node or edge is drawn. Selection wins over
// hover.
type Emphasis int

const (
	Plain Emphasis = iota
	Hovered
	Selected
)

func Emphasize(hovered, selected bool) Emphasis {
	switch {
	case selected:
		return Selected
	case hovered:
		return Hovered
	}
	return Plain
}

type EdgeStyle struct {
	Color color.RGBA
	Width float64
}

type NodeStyle struct {
	Radius      float64
	Stroke      color.RGBA
	StrokeWidth float64
	Bold        bool
}

var (
	edgeStyles = [...]EdgeStyle{
		Plain:    {Color: hex(0xcbd5e1), Width: 1.5},
		Hovered:  {Color: hex(0x60a5fa), Width: 2},
		Selected: {Color: hex(0x3b82f6), Width: 3},
	}
	nodeStyles = [...]NodeStyle{
		Plain:    {Radius: 8, Stroke: hex(0xffffff), StrokeWidth: 2},
		Hovered:  {Radius: 11, Stroke: hex(0x2563eb), StrokeWidth: 2, Bold: true},
		Selected: {Radius: MaxNodeRadius, Stroke: hex(0x1e40af), StrokeWidth: 3, Bold: true},
	}

	labelColor = hex(0x1e293b)
	plateColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 230}
)

func (e Emphasis) Edge() EdgeStyle {
	if e < Plain || e > Selected {
		e = Plain
	}
	return edgeStyles[e]
}

func (e Emphasis) Node() NodeStyle {
	if e < Plain || e > Selected {
		e = Plain
	}
	return nodeStyles[e]
}

// MaxNodeRadius is the largest radius a node is ever drawn with.
const MaxNodeRadius = 14.0
