package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveParams(t *testing.T) {
	conf := DefaultForceSimulationConfig
	for _, test := range []struct {
		Name     string
		N        int
		Viewport Viewport
	}{
		{Name: "empty graph", N: 0, Viewport: Viewport{1200, 600}},
		{Name: "two nodes", N: 2, Viewport: Viewport{1200, 600}},
		{Name: "medium", N: 80, Viewport: Viewport{1200, 600}},
		{Name: "dense", N: 5000, Viewport: Viewport{300, 300}},
		{Name: "huge viewport", N: 3, Viewport: Viewport{8000, 8000}},
	} {
		t.Run(test.Name, func(t *testing.T) {
			assert := assert.New(t)
			p := DeriveParams(test.N, test.Viewport, conf)
			assert.GreaterOrEqual(p.LinkDistance, 80.0)
			assert.LessOrEqual(p.LinkDistance, 260.0)
			assert.GreaterOrEqual(p.Repulsion, 60.0)
			assert.LessOrEqual(p.Repulsion, 6000.0)
			assert.GreaterOrEqual(p.SpringK, 0.012)
			assert.LessOrEqual(p.SpringK, 0.03)
			assert.GreaterOrEqual(p.CenterForce, 0.002)
			assert.LessOrEqual(p.CenterForce, 0.006)
			assert.GreaterOrEqual(p.MinSeparation, 2*conf.NodeRadius+10)
			assert.LessOrEqual(p.MinSeparation, 130.0)
			assert.GreaterOrEqual(p.PushApart, 0.35)
			assert.LessOrEqual(p.PushApart, 0.65)
			assert.LessOrEqual(p.InitialRadius, p.BoundaryRadius)
			assert.Equal(test.Viewport.Width/2, p.Center.X())
			assert.Equal(test.Viewport.Height/2, p.Center.Y())
			assert.Equal(Rect{X: 40, Y: 40, Width: test.Viewport.Width - 80, Height: test.Viewport.Height - 80}, p.Bounds)
		})
	}
}

func TestDeriveParams_SparseVsDense(t *testing.T) {
	assert := assert.New(t)
	sparse := DeriveParams(5, Viewport{1200, 600}, DefaultForceSimulationConfig)
	dense := DeriveParams(500, Viewport{1200, 600}, DefaultForceSimulationConfig)
	assert.Greater(sparse.LinkDistance, dense.LinkDistance)
	assert.Greater(sparse.MinSeparation, dense.MinSeparation)
	assert.Greater(dense.PushApart, sparse.PushApart)
	assert.Greater(sparse.InitialRadius, dense.InitialRadius)
}
