// Force directed layout of knowledge graph snapshots on a bounded canvas.
// Originally adapted from https://github.com/jwhandley/graphyz/blob/main/main.go,
// since reworked into a live, restartable simulation.
package layout

import (
	"math"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"
	"github.com/quartercastle/vector"
	"github.com/suxatcode/knowledge-graph-view/graph/model"
)

type ForceSimulationConfig struct {
	Viewport Viewport `toml:"-"`
	// Padding keeps nodes (and their labels' anchor) away from the canvas
	// border.
	Padding float64 `toml:"padding"`
	// NodeRadius is the undecorated display radius; the minimum collision
	// separation never drops below twice this plus 10px.
	NodeRadius float64 `toml:"node_radius"`
	// MinRepulsionDistance floors the pair distance in the repulsion term.
	MinRepulsionDistance float64 `toml:"min_repulsion_distance"`
	// Damping is applied to every velocity once per tick before integration.
	Damping          float64 `toml:"damping"`
	CollisionDamping float64 `toml:"collision_damping"`
	// BoundForce scales the pull back for nodes outside the soft circular
	// boundary, BoundDamping is the extra velocity damping on contact.
	BoundForce   float64 `toml:"bound_force"`
	BoundDamping float64 `toml:"bound_damping"`
	// Epsilon is the largest per-node displacement (px) of a tick that still
	// counts as converged.
	Epsilon float64 `toml:"epsilon"`
	// Once the forces are at rest, overlaps left between the push apart and
	// the centering pull are resolved geometrically: up to SettleSweeps
	// separation passes per tick, for at most SettleTicks ticks.
	SettleSweeps int `toml:"settle_sweeps"`
	SettleTicks  int `toml:"settle_ticks"`
	// BarnesHut replaces the exact O(n²) repulsion with a quadtree
	// approximation for graphs of at least BarnesHutThreshold nodes.
	BarnesHut          bool    `toml:"barnes_hut"`
	BarnesHutThreshold int     `toml:"barnes_hut_threshold"`
	Theta              float64 `toml:"theta"`
	// NoiseSeed seeds the direction picked for exactly coincident nodes.
	NoiseSeed int64 `toml:"noise_seed"`
}

var DefaultForceSimulationConfig = ForceSimulationConfig{
	Viewport:             Viewport{Width: 1200, Height: 600},
	Padding:              40,
	NodeRadius:           8,
	MinRepulsionDistance: 8,
	Damping:              0.86,
	CollisionDamping:     0.9,
	BoundForce:           0.03,
	BoundDamping:         0.65,
	Epsilon:              0.1,
	SettleSweeps:         8,
	SettleTicks:          60,
	BarnesHut:            false,
	BarnesHutThreshold:   400,
	Theta:                0.75,
	NoiseSeed:            1,
}

// Link is an edge whose endpoints both exist in the current node set,
// resolved to store indices.
type Link struct {
	Source, Target int
	Edge           *model.Edge
}

type Stats struct {
	Ticks            int
	LastDisplacement float64
	TotalTime        time.Duration
}

// ForceSimulation owns the kinematic state of one graph instance. It is not
// safe for concurrent use; hosts drive it from a single goroutine.
type ForceSimulation struct {
	conf    ForceSimulationConfig
	params  Params
	store   *Store
	nodes   []model.Node
	edges   []model.Edge
	links   []Link
	dragged int
	noise   opensimplex.Noise
	qt      *QuadTree
	prev    []float64
	stats   Stats
	// settling counts the ticks spent resolving leftover overlaps, -1 while
	// the forces are still running. settled marks the tick that finished.
	settling int
	settled  bool
}

func NewForceSimulation(conf ForceSimulationConfig) *ForceSimulation {
	fs := &ForceSimulation{store: NewStore(), dragged: -1, settling: -1}
	fs.ApplyConfig(conf)
	return fs
}

// ApplyConfig replaces the configuration; zero values fall back to
// DefaultForceSimulationConfig.
func (fs *ForceSimulation) ApplyConfig(conf ForceSimulationConfig) {
	if conf.Viewport.Width <= 0 || conf.Viewport.Height <= 0 {
		conf.Viewport = DefaultForceSimulationConfig.Viewport
	}
	if conf.Padding == 0.0 {
		conf.Padding = DefaultForceSimulationConfig.Padding
	}
	if conf.NodeRadius == 0.0 {
		conf.NodeRadius = DefaultForceSimulationConfig.NodeRadius
	}
	if conf.MinRepulsionDistance == 0.0 {
		conf.MinRepulsionDistance = DefaultForceSimulationConfig.MinRepulsionDistance
	}
	if conf.Damping == 0.0 {
		conf.Damping = DefaultForceSimulationConfig.Damping
	}
	if conf.CollisionDamping == 0.0 {
		conf.CollisionDamping = DefaultForceSimulationConfig.CollisionDamping
	}
	if conf.BoundForce == 0.0 {
		conf.BoundForce = DefaultForceSimulationConfig.BoundForce
	}
	if conf.BoundDamping == 0.0 {
		conf.BoundDamping = DefaultForceSimulationConfig.BoundDamping
	}
	if conf.Epsilon == 0.0 {
		conf.Epsilon = DefaultForceSimulationConfig.Epsilon
	}
	if conf.SettleSweeps == 0 {
		conf.SettleSweeps = DefaultForceSimulationConfig.SettleSweeps
	}
	if conf.SettleTicks == 0 {
		conf.SettleTicks = DefaultForceSimulationConfig.SettleTicks
	}
	if conf.BarnesHutThreshold == 0 {
		conf.BarnesHutThreshold = DefaultForceSimulationConfig.BarnesHutThreshold
	}
	if conf.Theta == 0.0 {
		conf.Theta = DefaultForceSimulationConfig.Theta
	}
	if conf.NoiseSeed == 0 {
		conf.NoiseSeed = DefaultForceSimulationConfig.NoiseSeed
	}
	fs.conf = conf
	fs.noise = opensimplex.New(conf.NoiseSeed)
	fs.params = DeriveParams(fs.store.Len(), conf.Viewport, conf)
}

func (fs *ForceSimulation) Config() ForceSimulationConfig { return fs.conf }
func (fs *ForceSimulation) Params() Params                 { return fs.params }
func (fs *ForceSimulation) Stats() Stats                   { return fs.stats }
func (fs *ForceSimulation) Viewport() Viewport             { return fs.conf.Viewport }

// SetGraph hands a new snapshot to the simulation. When the node set
// differs from the current one all kinematic state is recreated on the
// start ring and true is returned; otherwise positions are kept and only
// nodes and edges are rebound.
func (fs *ForceSimulation) SetGraph(nodes []model.Node, edges []model.Edge) (reset bool) {
	nodes = append([]model.Node(nil), nodes...)
	edges = append([]model.Edge(nil), edges...)
	reset = !fs.store.SameNodeSet(nodes)
	if reset {
		fs.store.Reset(nodes)
		fs.dragged = -1
	} else {
		fs.store.Rebind(nodes)
	}
	fs.nodes, fs.edges = nodes, edges
	fs.params = DeriveParams(fs.store.Len(), fs.conf.Viewport, fs.conf)
	if reset {
		fs.initializeRing()
	}
	fs.resolveLinks()
	fs.wake()
	return reset
}

// Clear drops the graph and all kinematic state.
func (fs *ForceSimulation) Clear() {
	fs.store.Clear()
	fs.nodes, fs.edges, fs.links = nil, nil, nil
	fs.dragged = -1
	fs.params = DeriveParams(0, fs.conf.Viewport, fs.conf)
	fs.wake()
}

// Resize re-derives the adaptive parameters for vp and pulls every node
// outside the new padded bounds back in. Nodes already inside and all
// velocities are left alone.
func (fs *ForceSimulation) Resize(vp Viewport) {
	fs.conf.Viewport = vp
	fs.params = DeriveParams(fs.store.Len(), vp, fs.conf)
	for i := 0; i < fs.store.Len(); i++ {
		b := fs.store.At(i)
		if !fs.params.Bounds.Contains(b.Pos) {
			b.Pos = fs.params.Bounds.ClampPoint(b.Pos)
		}
	}
	fs.wake()
}

func (fs *ForceSimulation) initializeRing() {
	n := fs.store.Len()
	for i := 0; i < n; i++ {
		b := fs.store.At(i)
		b.Pos = fs.params.Bounds.ClampPoint(pointOnCircle(i, n, fs.params.InitialRadius, fs.params.Center))
		b.Vel = vector.Vector{0, 0}
	}
}

func (fs *ForceSimulation) resolveLinks() {
	fs.links = make([]Link, 0, len(fs.edges))
	for i := range fs.edges {
		s, okS := fs.store.Index(fs.edges[i].Source)
		t, okT := fs.store.Index(fs.edges[i].Target)
		if !okS || !okT {
			continue
		}
		fs.links = append(fs.links, Link{Source: s, Target: t, Edge: &fs.edges[i]})
	}
}

func (fs *ForceSimulation) Len() int                     { return fs.store.Len() }
func (fs *ForceSimulation) Links() []Link                { return fs.links }
func (fs *ForceSimulation) Node(i int) *model.Node       { return fs.store.At(i).Node }
func (fs *ForceSimulation) Position(i int) vector.Vector { return fs.store.Position(i) }
func (fs *ForceSimulation) Velocity(i int) vector.Vector { return fs.store.Velocity(i) }
func (fs *ForceSimulation) Index(id model.NodeID) (int, bool) {
	return fs.store.Index(id)
}

// BeginDrag pins node i to the pointer: it keeps acting on other nodes but
// is no longer moved by the simulation.
func (fs *ForceSimulation) BeginDrag(i int) bool {
	if i < 0 || i >= fs.store.Len() {
		return false
	}
	fs.dragged = i
	fs.store.At(i).Vel = vector.Vector{0, 0}
	fs.wake()
	return true
}

// DragTo moves node i to p clamped into the padded bounds and zeroes its
// velocity. The resulting position is returned.
func (fs *ForceSimulation) DragTo(i int, p vector.Vector) vector.Vector {
	if i < 0 || i >= fs.store.Len() {
		return p
	}
	b := fs.store.At(i)
	b.Pos = fs.params.Bounds.ClampPoint(p)
	b.Vel = vector.Vector{0, 0}
	fs.wake()
	return fs.store.Position(i)
}

func (fs *ForceSimulation) EndDrag() {
	fs.dragged = -1
}

// Dragged returns the index of the dragged node or -1.
func (fs *ForceSimulation) Dragged() int {
	return fs.dragged
}

// Converged reports whether a tick with the given displacement ends the
// simulation loop. A layout at rest that still has overlapping nodes is not
// converged until they are separated or SettleTicks runs out.
func (fs *ForceSimulation) Converged(displacement float64) bool {
	if fs.settled {
		return true
	}
	return displacement <= fs.conf.Epsilon && fs.settling < 0
}

// Settling reports whether leftover overlaps are being resolved.
func (fs *ForceSimulation) Settling() bool {
	return fs.settling >= 0
}

// wake hands the layout back to the forces.
func (fs *ForceSimulation) wake() {
	fs.settling = -1
	fs.settled = false
}

// Tick advances the simulation by one frame and returns the largest
// displacement of any node not being dragged. Phases run strictly one after
// another: forces (from the positions at the start of the tick),
// integration, collision separation, boundary containment. When the forces
// come to rest with nodes still overlapping, the following ticks only
// separate them.
func (fs *ForceSimulation) Tick() float64 {
	n := fs.store.Len()
	fs.stats.Ticks++
	if n == 0 {
		fs.stats.LastDisplacement = 0
		return 0
	}
	if cap(fs.prev) < 2*n {
		fs.prev = make([]float64, 2*n)
	}
	fs.prev = fs.prev[:2*n]
	for i := 0; i < n; i++ {
		pos := fs.store.At(i).Pos
		fs.prev[2*i], fs.prev[2*i+1] = pos.X(), pos.Y()
	}

	if fs.settling >= 0 {
		fs.relax()
	} else {
		fs.settled = false
		fs.accumulateForces()
		fs.integrate()
		fs.separate(fs.params.PushApart, 0)
		fs.contain()
	}

	maxMove := 0.0
	for i := 0; i < n; i++ {
		if i == fs.dragged {
			continue
		}
		pos := fs.store.At(i).Pos
		maxMove = math.Max(maxMove, math.Hypot(pos.X()-fs.prev[2*i], pos.Y()-fs.prev[2*i+1]))
	}
	fs.stats.LastDisplacement = maxMove
	if fs.settling < 0 && !fs.settled && maxMove <= fs.conf.Epsilon && fs.overlapping() {
		fs.settling = 0
	}
	return maxMove
}

// direction returns the unit vector of delta, the vector from body i to
// body j. Exactly coincident bodies get a stable pseudo random direction
// instead of a NaN.
func (fs *ForceSimulation) direction(delta vector.Vector, dist float64, i, j int) vector.Vector {
	if dist > 0 {
		return delta.Scale(1 / dist)
	}
	lo, hi, sign := i, j, 1.0
	if lo > hi {
		lo, hi, sign = j, i, -1.0
	}
	angle := math.Pi * fs.noise.Eval2(float64(lo)*0.618+0.5, float64(hi)*1.414+0.25)
	return vector.Vector{sign * math.Cos(angle), sign * math.Sin(angle)}
}

func (fs *ForceSimulation) useBarnesHut() bool {
	return fs.conf.BarnesHut && fs.store.Len() >= fs.conf.BarnesHutThreshold
}

// repulsionForce is the force body j exerts on body i.
func (fs *ForceSimulation) repulsionForce(i, j int, from, to vector.Vector, mass float64) vector.Vector {
	delta := from.Sub(to)
	dist := delta.Magnitude()
	unit := fs.direction(delta, dist, j, i)
	safe := math.Max(fs.conf.MinRepulsionDistance, dist)
	return unit.Scale(mass * fs.params.Repulsion / (safe * safe))
}

func (fs *ForceSimulation) accumulateForces() {
	if fs.useBarnesHut() {
		fs.repulsionBarnesHut()
	} else {
		fs.repulsionNaive()
	}
	fs.centerForce()
	fs.springForce()
}

func (fs *ForceSimulation) repulsionNaive() {
	n := fs.store.Len()
	for i := 0; i < n; i++ {
		bi := fs.store.At(i)
		for j := i + 1; j < n; j++ {
			bj := fs.store.At(j)
			force := fs.repulsionForce(i, j, bi.Pos, bj.Pos, 1)
			if i != fs.dragged {
				vector.In(bi.Vel).Add(force)
			}
			if j != fs.dragged {
				vector.In(bj.Vel).Sub(force)
			}
		}
	}
}

func (fs *ForceSimulation) repulsionBarnesHut() {
	if fs.qt == nil {
		fs.qt = NewQuadTree(&QUADTREE_DEFAULT_CONFIG, fs, Rect{})
	}
	fs.qt.Rebuild()
	forces := make([]vector.Vector, fs.store.Len())
	for i := range forces {
		forces[i] = fs.qt.CalculateForce(i, fs.conf.Theta)
	}
	for i, force := range forces {
		if i != fs.dragged {
			vector.In(fs.store.At(i).Vel).Add(force)
		}
	}
}

func (fs *ForceSimulation) centerForce() {
	for i := 0; i < fs.store.Len(); i++ {
		if i == fs.dragged {
			continue
		}
		b := fs.store.At(i)
		vector.In(b.Vel).Add(fs.params.Center.Sub(b.Pos).Scale(fs.params.CenterForce))
	}
}

func (fs *ForceSimulation) springForce() {
	for _, l := range fs.links {
		if l.Source == l.Target {
			continue
		}
		a, b := fs.store.At(l.Source), fs.store.At(l.Target)
		delta := b.Pos.Sub(a.Pos)
		dist := delta.Magnitude()
		unit := fs.direction(delta, dist, l.Source, l.Target)
		force := unit.Scale((dist - fs.params.LinkDistance) * fs.params.SpringK)
		if l.Source != fs.dragged {
			vector.In(a.Vel).Add(force)
		}
		if l.Target != fs.dragged {
			vector.In(b.Vel).Sub(force)
		}
	}
}

func (fs *ForceSimulation) integrate() {
	for i := 0; i < fs.store.Len(); i++ {
		if i == fs.dragged {
			continue
		}
		b := fs.store.At(i)
		vector.In(b.Vel).Scale(fs.conf.Damping)
		vector.In(b.Pos).Add(b.Vel)
	}
}

// separate pushes apart every pair closer than MinSeparation by strength
// times the gap plus slack, and reports whether any pair was found. A pair
// involving the dragged node moves only the other node, by the full amount.
func (fs *ForceSimulation) separate(strength, slack float64) bool {
	n := fs.store.Len()
	minSep := fs.params.MinSeparation
	found := false
	for i := 0; i < n; i++ {
		bi := fs.store.At(i)
		for j := i + 1; j < n; j++ {
			bj := fs.store.At(j)
			delta := bj.Pos.Sub(bi.Pos)
			dist := delta.Magnitude()
			if dist >= minSep {
				continue
			}
			found = true
			push := fs.direction(delta, dist, i, j).Scale((minSep + slack - dist) * strength)
			switch fs.dragged {
			case i:
				vector.In(bj.Pos).Add(push)
			case j:
				vector.In(bi.Pos).Sub(push)
			default:
				half := push.Scale(0.5)
				vector.In(bi.Pos).Sub(half)
				vector.In(bj.Pos).Add(half)
			}
			if i != fs.dragged {
				vector.In(bi.Vel).Scale(fs.conf.CollisionDamping)
			}
			if j != fs.dragged {
				vector.In(bj.Vel).Scale(fs.conf.CollisionDamping)
			}
		}
	}
	return found
}

// settleSlack is how far past MinSeparation relax places a pair, so that
// rounding does not leave it a hair inside.
const settleSlack = 0.01

// relax closes the remaining gaps completely, clamping into the bounds
// after every sweep. It gives up after SettleTicks ticks, for layouts that
// do not fit the canvas.
func (fs *ForceSimulation) relax() {
	fs.settling++
	found := true
	for sweep := 0; sweep < fs.conf.SettleSweeps && found; sweep++ {
		found = fs.separate(1, settleSlack)
		for i := 0; i < fs.store.Len(); i++ {
			if i == fs.dragged {
				continue
			}
			b := fs.store.At(i)
			b.Pos = fs.params.Bounds.ClampPoint(b.Pos)
		}
	}
	if !found || fs.settling >= fs.conf.SettleTicks {
		fs.settling = -1
		fs.settled = true
	}
}

// overlapping reports whether any pair is closer than MinSeparation.
func (fs *ForceSimulation) overlapping() bool {
	n := fs.store.Len()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if Distance(fs.store.At(i).Pos, fs.store.At(j).Pos) < fs.params.MinSeparation-overlapTolerance {
				return true
			}
		}
	}
	return false
}

// contain applies the soft circular wall and then the hard rectangular
// clamp.
func (fs *ForceSimulation) contain() {
	p := fs.params
	for i := 0; i < fs.store.Len(); i++ {
		if i == fs.dragged {
			continue
		}
		b := fs.store.At(i)
		delta := b.Pos.Sub(p.Center)
		dist := delta.Magnitude()
		if dist > p.BoundaryRadius && dist > 0 {
			exceed := dist - p.BoundaryRadius
			vector.In(b.Pos).Sub(delta.Scale(exceed * fs.conf.BoundForce / dist))
			vector.In(b.Vel).Scale(fs.conf.BoundDamping)
		}
		b.Pos = p.Bounds.ClampPoint(b.Pos)
	}
}
