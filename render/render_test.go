package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/quartercastle/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T, opts Options) *Renderer {
	t.Helper()
	r, err := NewRenderer(opts)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, r.Close()) })
	return r
}

func assertColorNear(t *testing.T, exp color.RGBA, img *image.RGBA, x, y int, tolerance int) {
	t.Helper()
	got := img.RGBAAt(x, y)
	for _, ch := range [][2]uint8{{exp.R, got.R}, {exp.G, got.G}, {exp.B, got.B}, {exp.A, got.A}} {
		diff := int(ch[0]) - int(ch[1])
		if diff < -tolerance || diff > tolerance {
			assert.Failf(t, "unexpected color", "at (%d,%d): expected %v, got %v", x, y, exp, got)
			return
		}
	}
}

func TestParseCategory(t *testing.T) {
	for _, test := range []struct {
		Input string
		Exp   Category
		Color color.RGBA
	}{
		{Input: "person", Exp: CategoryPerson, Color: hex(0xef4444)},
		{Input: "PERSON", Exp: CategoryPerson, Color: hex(0xef4444)},
		{Input: "Organization", Exp: CategoryOrganization, Color: hex(0x3b82f6)},
		{Input: "location", Exp: CategoryLocation, Color: hex(0x10b981)},
		{Input: " concept ", Exp: CategoryConcept, Color: hex(0xf59e0b)},
		{Input: "event", Exp: CategoryEvent, Color: hex(0x8b5cf6)},
		{Input: "ENTITY", Exp: CategoryDefault, Color: hex(0x3b82f6)},
		{Input: "", Exp: CategoryDefault, Color: hex(0x3b82f6)},
	} {
		t.Run(test.Input, func(t *testing.T) {
			assert := assert.New(t)
			c := ParseCategory(test.Input)
			assert.Equal(test.Exp, c)
			assert.Equal(test.Color, c.Color())
		})
	}
	assert.Equal(t, hex(0x3b82f6), Category(42).Color())
	assert.Equal(t, "event", CategoryEvent.String())
	assert.Equal(t, "default", CategoryDefault.String())
}

func TestEmphasize(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(Plain, Emphasize(false, false))
	assert.Equal(Hovered, Emphasize(true, false))
	assert.Equal(Selected, Emphasize(false, true))
	assert.Equal(Selected, Emphasize(true, true), "selection wins over hover")

	assert.Equal(EdgeStyle{Color: hex(0x3b82f6), Width: 3}, Selected.Edge())
	assert.Equal(EdgeStyle{Color: hex(0x60a5fa), Width: 2}, Hovered.Edge())
	assert.Equal(EdgeStyle{Color: hex(0xcbd5e1), Width: 1.5}, Plain.Edge())
	assert.Equal(14.0, Selected.Node().Radius)
	assert.Equal(11.0, Hovered.Node().Radius)
	assert.Equal(8.0, Plain.Node().Radius)
	assert.Equal(MaxNodeRadius, Selected.Node().Radius)
	assert.Equal(Plain.Node(), Emphasis(-3).Node())
}

func TestRenderer_EmptyScene(t *testing.T) {
	r := newTestRenderer(t, DefaultOptions)
	img := r.Frame(Scene{Width: 40, Height: 30})
	assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			if !assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(x, y)) {
				return
			}
		}
	}
}

func TestRenderer_NodesAndEdges(t *testing.T) {
	r := newTestRenderer(t, DefaultOptions)
	img := r.Frame(Scene{
		Width:  400,
		Height: 200,
		Edges: []EdgeSprite{
			{From: vector.Vector{50, 150}, To: vector.Vector{350, 150}, Emphasis: Selected},
			{From: vector.Vector{50, 180}, To: vector.Vector{350, 180}, Emphasis: Plain},
		},
		Nodes: []NodeSprite{
			{Label: "A", Category: CategoryPerson, Pos: vector.Vector{100, 60}, Emphasis: Plain},
			{Label: "B", Category: CategoryEvent, Pos: vector.Vector{250, 60}, Emphasis: Selected},
			{Label: "C", Category: CategoryLocation, Pos: vector.Vector{330, 60}, Emphasis: Hovered},
		},
	})
	assertColorNear(t, hex(0xef4444), img, 100, 60, 0)
	assertColorNear(t, hex(0x8b5cf6), img, 250, 60, 0)
	assertColorNear(t, hex(0x10b981), img, 330, 60, 0)
	assertColorNear(t, hex(0x2563eb), img, 340, 60, 2)
	assertColorNear(t, hex(0x3b82f6), img, 200, 150, 0)
	assert.NotEqual(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(200, 180), "default edge is visible")
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(200, 110), "nothing drawn here")
}

func TestRenderer_Label(t *testing.T) {
	r := newTestRenderer(t, Options{Background: color.Black})
	img := r.Frame(Scene{
		Width:  300,
		Height: 200,
		Nodes:  []NodeSprite{{Label: "Berlin", Pos: vector.Vector{100, 100}}},
	})
	// plate padding left of the text
	assertColorNear(t, color.RGBA{230, 230, 230, 0xff}, img, 111, 92, 1)

	width := r.LabelWidth("Berlin", false)
	dark := 0
	for y := 91; y < 109; y++ {
		for x := 114; x < 114+width; x++ {
			if img.RGBAAt(x, y).R < 128 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 0, "text is drawn onto the plate")
}

func TestRenderer_LabelWidth(t *testing.T) {
	assert := assert.New(t)
	r := newTestRenderer(t, DefaultOptions)
	assert.Equal(0, r.LabelWidth("", false))
	assert.Greater(r.LabelWidth("knowledge", false), r.LabelWidth("know", false))
	assert.Greater(r.LabelWidth("knowledge", true), r.LabelWidth("knowledge", false))
}

func TestRenderer_ShapesOutsideCanvas(t *testing.T) {
	r := newTestRenderer(t, DefaultOptions)
	assert.NotPanics(t, func() {
		r.Frame(Scene{
			Width:  100,
			Height: 100,
			Edges: []EdgeSprite{
				{From: vector.Vector{-100, -100}, To: vector.Vector{500, 500}},
				{From: vector.Vector{-300, -300}, To: vector.Vector{-200, -250}},
				{From: vector.Vector{10, 10}, To: vector.Vector{10, 10}},
			},
			Nodes: []NodeSprite{
				{Label: "edge case", Pos: vector.Vector{-5, 5}},
				{Label: "far away", Pos: vector.Vector{1000, 1000}},
			},
		})
	})
}

func TestEncodePNG(t *testing.T) {
	r := newTestRenderer(t, DefaultOptions)
	img := r.Frame(Scene{Width: 64, Height: 32, Nodes: []NodeSprite{{Label: "x", Pos: vector.Vector{20, 16}}}})
	buf := &bytes.Buffer{}
	require.NoError(t, EncodePNG(buf, img))
	decoded, err := png.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}
