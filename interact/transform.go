package interact

import (
	"github.com/quartercastle/vector"
	"github.com/suxatcode/knowledge-graph-view/layout"
)

// DisplayRect is where the canvas is shown on the host display, in client
// coordinates. The canvas may be scaled to fit it.
type DisplayRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ToCanvas converts client coordinates to canvas pixels. An axis of zero
// display size is not scaled.
func (r DisplayRect) ToCanvas(clientX, clientY float64, canvas layout.Viewport) vector.Vector {
	sx, sy := 1.0, 1.0
	if r.Width > 0 {
		sx = canvas.Width / r.Width
	}
	if r.Height > 0 {
		sy = canvas.Height / r.Height
	}
	return vector.Vector{(clientX - r.Left) * sx, (clientY - r.Top) * sy}
}
