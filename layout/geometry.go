package layout

import (
	"math"

	"github.com/quartercastle/vector"
	"golang.org/x/exp/constraints"
)

// Clamp limits in to [lo, hi]. NaN is passed through unchanged so callers
// notice it instead of silently snapping to a bound.
func Clamp[T constraints.Float](in, lo, hi T) T {
	if math.IsNaN(float64(in)) {
		return in
	}
	if in > hi {
		return hi
	} else if in < lo {
		return lo
	}
	return in
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b vector.Vector) float64 {
	return math.Hypot(a.X()-b.X(), a.Y()-b.Y())
}

// projection returns the parameter t of the perpendicular foot of p on the
// infinite line through a and b (a + t*(b-a)). ok is false for a
// degenerate segment.
func projection(p, a, b vector.Vector) (t float64, ok bool) {
	dx, dy := b.X()-a.X(), b.Y()-a.Y()
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return 0, false
	}
	return ((p.X()-a.X())*dx + (p.Y()-a.Y())*dy) / lenSq, true
}

// ProjectOntoSegment projects p onto the segment a-b. The returned t is the
// projection parameter clamped to [0, 1], closest is the point on the
// segment nearest to p. A degenerate segment (a == b) projects onto a.
func ProjectOntoSegment(p, a, b vector.Vector) (t float64, closest vector.Vector) {
	t, ok := projection(p, a, b)
	if !ok {
		return 0, vector.Vector{a.X(), a.Y()}
	}
	t = Clamp(t, 0.0, 1.0)
	return t, vector.Vector{a.X() + t*(b.X()-a.X()), a.Y() + t*(b.Y()-a.Y())}
}

// SegmentDistance is the distance from p to the closest point of segment a-b.
func SegmentDistance(p, a, b vector.Vector) float64 {
	_, closest := ProjectOntoSegment(p, a, b)
	return Distance(p, closest)
}

// PerpendicularDistance returns the distance from p to the segment a-b
// measured along the segment's normal. inside is false when the foot of
// the perpendicular falls beyond either endpoint (or the segment is
// degenerate); such points never count as being on the segment, however
// close they are to the line's extension.
func PerpendicularDistance(p, a, b vector.Vector) (dist float64, inside bool) {
	t, ok := projection(p, a, b)
	if !ok || t < 0 || t > 1 {
		return math.Inf(+1), false
	}
	_, foot := ProjectOntoSegment(p, a, b)
	return Distance(p, foot), true
}

// Rect is an axis aligned rectangle in canvas pixels.
type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) Contains(pos vector.Vector) bool {
	return pos.X() >= r.X && pos.X() <= r.X+r.Width && pos.Y() >= r.Y && pos.Y() <= r.Y+r.Height
}

func (r Rect) Center() vector.Vector {
	return vector.Vector{r.X + r.Width/2, r.Y + r.Height/2}
}

// ClampPoint moves pos to the nearest point inside r.
func (r Rect) ClampPoint(pos vector.Vector) vector.Vector {
	return vector.Vector{
		Clamp(pos.X(), r.X, r.X+r.Width),
		Clamp(pos.Y(), r.Y, r.Y+r.Height),
	}
}

// pointOnCircle returns the i-th of total points spread evenly on a circle.
func pointOnCircle(i, total int, radius float64, center vector.Vector) vector.Vector {
	angle := float64(i) / float64(total) * 2.0 * math.Pi
	return vector.Vector{
		center.X() + math.Cos(angle)*radius,
		center.Y() + math.Sin(angle)*radius,
	}
}
