package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	raster "golang.org/x/image/vector"
)

// circleKappa places the control points of a cubic bezier quarter circle.
const circleKappa = 0.5522847498

// canvas rasterizes antialiased shapes onto dst. Every shape gets a mask
// sized to its own bounding box.
type canvas struct {
	dst *image.RGBA
	z   *raster.Rasterizer
	// origin of the current mask in dst coordinates
	ox, oy float64
}

func newCanvas() *canvas {
	return &canvas{z: raster.NewRasterizer(1, 1)}
}

// begin prepares the rasterizer for a shape within the given bounds and
// reports false if nothing of it is visible.
func (c *canvas) begin(minX, minY, maxX, maxY float64) (image.Rectangle, bool) {
	r := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	).Intersect(c.dst.Bounds())
	if r.Empty() {
		return r, false
	}
	c.z.Reset(r.Dx(), r.Dy())
	c.z.DrawOp = draw.Over
	c.ox, c.oy = float64(r.Min.X), float64(r.Min.Y)
	return r, true
}

func (c *canvas) moveTo(x, y float64) {
	c.z.MoveTo(float32(x-c.ox), float32(y-c.oy))
}

func (c *canvas) lineTo(x, y float64) {
	c.z.LineTo(float32(x-c.ox), float32(y-c.oy))
}

func (c *canvas) cubeTo(x1, y1, x2, y2, x, y float64) {
	c.z.CubeTo(
		float32(x1-c.ox), float32(y1-c.oy),
		float32(x2-c.ox), float32(y2-c.oy),
		float32(x-c.ox), float32(y-c.oy),
	)
}

func (c *canvas) fill(r image.Rectangle, col color.Color) {
	c.z.Draw(c.dst, r, image.NewUniform(col), image.Point{})
}

// disc fills a circle.
func (c *canvas) disc(cx, cy, radius float64, col color.Color) {
	if radius <= 0 {
		return
	}
	r, ok := c.begin(cx-radius, cy-radius, cx+radius, cy+radius)
	if !ok {
		return
	}
	k := radius * circleKappa
	c.moveTo(cx+radius, cy)
	c.cubeTo(cx+radius, cy+k, cx+k, cy+radius, cx, cy+radius)
	c.cubeTo(cx-k, cy+radius, cx-radius, cy+k, cx-radius, cy)
	c.cubeTo(cx-radius, cy-k, cx-k, cy-radius, cx, cy-radius)
	c.cubeTo(cx+k, cy-radius, cx+radius, cy-k, cx+radius, cy)
	c.z.ClosePath()
	c.fill(r, col)
}

// ring draws a filled circle with an outline centred on its edge.
func (c *canvas) ring(cx, cy, radius, width float64, fill, stroke color.Color) {
	c.disc(cx, cy, radius+width/2, stroke)
	c.disc(cx, cy, radius-width/2, fill)
}

// line strokes the segment (x1,y1)-(x2,y2) with butt caps.
func (c *canvas) line(x1, y1, x2, y2, width float64, col color.Color) {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 || width <= 0 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2
	r, ok := c.begin(
		math.Min(x1, x2)-math.Abs(nx), math.Min(y1, y2)-math.Abs(ny),
		math.Max(x1, x2)+math.Abs(nx), math.Max(y1, y2)+math.Abs(ny),
	)
	if !ok {
		return
	}
	c.moveTo(x1+nx, y1+ny)
	c.lineTo(x2+nx, y2+ny)
	c.lineTo(x2-nx, y2-ny)
	c.lineTo(x1-nx, y1-ny)
	c.z.ClosePath()
	c.fill(r, col)
}
