// adapted from https://github.com/jwhandley/graphyz/blob/main/quadtree.go
package layout

import (
	"math"

	"github.com/quartercastle/vector"
)

type QuadTreeConfig struct {
	CapacityOfEachBlock int
	// MaxDepth stops subdivision, leaves at this depth take any number of
	// bodies. This bounds the recursion for coincident nodes.
	MaxDepth int
}

var QUADTREE_DEFAULT_CONFIG = QuadTreeConfig{CapacityOfEachBlock: 10, MaxDepth: 16}

// QuadTree is a Barnes-Hut tree over the body indices of a ForceSimulation.
// Every body has unit mass.
type QuadTree struct {
	Center    vector.Vector
	TotalMass float64
	Region    Rect
	Bodies    []int
	Children  [4]*QuadTree
	config    *QuadTreeConfig
	sim       *ForceSimulation
	depth     int
}

func NewQuadTree(config *QuadTreeConfig, sim *ForceSimulation, boundary Rect) *QuadTree {
	if config == nil {
		config = &QUADTREE_DEFAULT_CONFIG
	}
	return &QuadTree{
		Center: vector.Vector{0, 0},
		Region: boundary,
		Bodies: make([]int, 0, config.CapacityOfEachBlock),
		config: config,
		sim:    sim,
	}
}

func (qt *QuadTree) Clear() {
	qt.Center = vector.Vector{0, 0}
	qt.Bodies = qt.Bodies[:0]
	for i := range qt.Children {
		qt.Children[i] = nil
	}
	qt.TotalMass = 0
}

// Rebuild clears the tree, fits its region to the current body positions
// and inserts all bodies.
func (qt *QuadTree) Rebuild() {
	qt.Clear()
	n := qt.sim.store.Len()
	if n == 0 {
		return
	}
	minX, minY := math.Inf(+1), math.Inf(+1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i < n; i++ {
		pos := qt.sim.store.At(i).Pos
		minX, maxX = math.Min(minX, pos.X()), math.Max(maxX, pos.X())
		minY, maxY = math.Min(minY, pos.Y()), math.Max(maxY, pos.Y())
	}
	side := math.Max(maxX-minX, maxY-minY) + 1
	qt.Region = Rect{X: minX, Y: minY, Width: side, Height: side}
	for i := 0; i < n; i++ {
		qt.Insert(i)
	}
	qt.CalculateMasses()
}

func (qt *QuadTree) Insert(body int) bool {
	if !qt.Region.Contains(qt.sim.store.At(body).Pos) {
		return false
	}
	if qt.Children[0] == nil {
		if len(qt.Bodies) < qt.config.CapacityOfEachBlock || qt.depth >= qt.config.MaxDepth {
			qt.Bodies = append(qt.Bodies, body)
			return true
		}
		qt.subdivide()
	}
	return qt.insertIntoChild(body)
}

func (qt *QuadTree) insertIntoChild(body int) bool {
	for _, child := range qt.Children {
		if child.Insert(body) {
			return true
		}
	}
	return false
}

func (qt *QuadTree) subdivide() {
	midX := qt.Region.X + qt.Region.Width/2
	midY := qt.Region.Y + qt.Region.Height/2

	halfWidth := qt.Region.Width / 2
	halfHeight := qt.Region.Height / 2

	for i, region := range []Rect{
		{X: qt.Region.X, Y: qt.Region.Y, Width: halfWidth, Height: halfHeight}, // Top Left
		{X: midX, Y: qt.Region.Y, Width: halfWidth, Height: halfHeight},        // Top right
		{X: qt.Region.X, Y: midY, Width: halfWidth, Height: halfHeight},        // Bottom Left
		{X: midX, Y: midY, Width: halfWidth, Height: halfHeight},               // Bottom Right
	} {
		qt.Children[i] = NewQuadTree(qt.config, qt.sim, region)
		qt.Children[i].depth = qt.depth + 1
	}

	bodies := qt.Bodies
	qt.Bodies = nil
	for _, body := range bodies {
		qt.insertIntoChild(body)
	}
}

func (qt *QuadTree) CalculateMasses() {
	qt.TotalMass = 0
	qt.Center = vector.Vector{0, 0}
	if qt.Children[0] == nil {
		for _, body := range qt.Bodies {
			qt.TotalMass += 1
			vector.In(qt.Center).Add(qt.sim.store.At(body).Pos)
		}
	} else {
		for _, child := range qt.Children {
			child.CalculateMasses()
			qt.TotalMass += child.TotalMass
			vector.In(qt.Center).Add(child.Center.Scale(child.TotalMass))
		}
	}
	if qt.TotalMass > 0 {
		qt.Center = qt.Center.Scale(1 / qt.TotalMass)
	}
}

// CalculateForce calculates the repulsion force acting on body.
// theta defines the accuracy of the simulation, see https://en.wikipedia.org/wiki/Barnes%E2%80%93Hut_simulation#Calculating_the_force_acting_on_a_body
func (qt *QuadTree) CalculateForce(body int, theta float64) vector.Vector {
	totalForce := vector.Vector{0, 0}
	if qt.TotalMass == 0 {
		return totalForce
	}
	pos := qt.sim.store.At(body).Pos
	if qt.Children[0] == nil {
		for _, other := range qt.Bodies {
			if other == body {
				continue
			}
			vector.In(totalForce).Add(qt.sim.repulsionForce(body, other, pos, qt.sim.store.At(other).Pos, 1))
		}
		return totalForce
	}
	d := pos.Sub(qt.Center).Magnitude()
	if qt.Region.Width/d < theta {
		return qt.sim.repulsionForce(body, -1, pos, qt.Center, qt.TotalMass)
	}
	for _, child := range qt.Children {
		vector.In(totalForce).Add(child.CalculateForce(body, theta))
	}
	return totalForce
}
