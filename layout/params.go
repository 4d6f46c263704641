package layout

import (
	"math"

	"github.com/quartercastle/vector"
)

// Viewport is the size of the drawing surface in canvas pixels.
type Viewport struct {
	Width, Height float64
}

// Params are the simulation constants derived from graph density. They are
// recomputed when the node count or the viewport changes, never per tick.
type Params struct {
	// LinkDistance is the rest length of edge springs.
	LinkDistance float64
	Repulsion    float64
	SpringK      float64
	CenterForce  float64
	// MinSeparation is the distance below which two nodes are pushed apart
	// directly, independent of forces.
	MinSeparation float64
	PushApart     float64
	// BoundaryRadius is the radius of the soft circular wall around Center.
	BoundaryRadius float64
	// InitialRadius is the radius of the ring new node sets start on.
	InitialRadius float64
	Center        vector.Vector
	// Bounds is the padded canvas rectangle no node may leave.
	Bounds Rect
}

// DeriveParams computes the density-adaptive constants for nodeCount nodes
// on vp. Sparse graphs get long springs and a wide start ring, dense graphs
// short springs and a compact ring.
func DeriveParams(nodeCount int, vp Viewport, conf ForceSimulationConfig) Params {
	n := math.Max(1, float64(nodeCount))
	spacing := math.Sqrt(vp.Width * vp.Height / n)

	linkDistance := Clamp(spacing*1.45, 80, 260)
	maxR := math.Max(0, math.Min(vp.Width, vp.Height)/2-conf.Padding)

	return Params{
		LinkDistance:   linkDistance,
		Repulsion:      Clamp(linkDistance*linkDistance*0.06, 60, 6000),
		SpringK:        Clamp(0.012+(120/linkDistance)*0.006, 0.012, 0.03),
		CenterForce:    Clamp(0.002+(n/1500)*0.004, 0.002, 0.006),
		MinSeparation:  Clamp(linkDistance*0.62, conf.NodeRadius*2+10, 130),
		PushApart:      Clamp(0.35+(120/linkDistance)*0.15, 0.35, 0.65),
		BoundaryRadius: maxR,
		InitialRadius:  Clamp(spacing*2.6, maxR*0.35, maxR*0.85),
		Center:         vector.Vector{vp.Width / 2, vp.Height / 2},
		Bounds: Rect{
			X:      conf.Padding,
			Y:      conf.Padding,
			Width:  math.Max(0, vp.Width-2*conf.Padding),
			Height: math.Max(0, vp.Height-2*conf.Padding),
		},
	}
}
