package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/quartercastle/vector"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// NodeSprite is one node as it appears in a frame.
type NodeSprite struct {
	Label    string
	Category Category
	Pos      vector.Vector
	Emphasis Emphasis
}

type EdgeSprite struct {
	From, To vector.Vector
	Emphasis Emphasis
}

// Scene is everything a frame depends on. Edges are drawn first, then every
// node followed by its label, in slice order.
type Scene struct {
	Width, Height int
	Edges         []EdgeSprite
	Nodes         []NodeSprite
}

type Options struct {
	Background    color.Color
	LabelSize     float64
	EmphasisSize  float64
	LabelDistance float64
}

var DefaultOptions = Options{
	Background:    color.White,
	LabelSize:     12,
	EmphasisSize:  13,
	LabelDistance: 6,
}

const (
	plateHeight     = 18
	platePaddingPix = 4
)

var (
	parseFonts    sync.Once
	regularFont   *opentype.Font
	boldFont      *opentype.Font
	errParseFonts error
)

func loadFonts() error {
	parseFonts.Do(func() {
		regularFont, errParseFonts = opentype.Parse(goregular.TTF)
		if errParseFonts != nil {
			errParseFonts = errors.Wrap(errParseFonts, "parse regular font")
			return
		}
		boldFont, errParseFonts = opentype.Parse(gobold.TTF)
		if errParseFonts != nil {
			errParseFonts = errors.Wrap(errParseFonts, "parse bold font")
		}
	})
	return errParseFonts
}

// Renderer draws scenes. It keeps font faces and a rasterizer around and is
// therefore not safe for concurrent use.
type Renderer struct {
	opts    Options
	regular font.Face
	bold    font.Face
	canvas  *canvas
}

func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Background == nil {
		opts.Background = DefaultOptions.Background
	}
	if opts.LabelSize == 0 {
		opts.LabelSize = DefaultOptions.LabelSize
	}
	if opts.EmphasisSize == 0 {
		opts.EmphasisSize = DefaultOptions.EmphasisSize
	}
	if opts.LabelDistance == 0 {
		opts.LabelDistance = DefaultOptions.LabelDistance
	}
	if err := loadFonts(); err != nil {
		return nil, err
	}
	regular, err := opentype.NewFace(regularFont, &opentype.FaceOptions{Size: opts.LabelSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, errors.Wrap(err, "regular face")
	}
	bold, err := opentype.NewFace(boldFont, &opentype.FaceOptions{Size: opts.EmphasisSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		regular.Close()
		return nil, errors.Wrap(err, "bold face")
	}
	return &Renderer{opts: opts, regular: regular, bold: bold, canvas: newCanvas()}, nil
}

func (r *Renderer) Close() error {
	if err := r.regular.Close(); err != nil {
		return errors.Wrap(err, "regular face")
	}
	return errors.Wrap(r.bold.Close(), "bold face")
}

// Frame allocates an image of the scene's size and draws the scene on it.
func (r *Renderer) Frame(scene Scene) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, max(scene.Width, 0), max(scene.Height, 0)))
	r.Draw(img, scene)
	return img
}

// Draw clears dst to the background and draws the scene on it.
func (r *Renderer) Draw(dst *image.RGBA, scene Scene) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(r.opts.Background), image.Point{}, draw.Src)
	r.canvas.dst = dst
	for _, e := range scene.Edges {
		style := e.Emphasis.Edge()
		r.canvas.line(e.From.X(), e.From.Y(), e.To.X(), e.To.Y(), style.Width, style.Color)
	}
	for _, n := range scene.Nodes {
		style := n.Emphasis.Node()
		x, y := n.Pos.X(), n.Pos.Y()
		r.canvas.ring(x, y, style.Radius, style.StrokeWidth, n.Category.Color(), style.Stroke)
		r.label(dst, n.Label, x+style.Radius+r.opts.LabelDistance, y, style.Bold)
	}
	r.canvas.dst = nil
}

// LabelWidth is the advance width of text in the given face, rounded up to
// whole pixels.
func (r *Renderer) LabelWidth(text string, bold bool) int {
	return font.MeasureString(r.face(bold), text).Ceil()
}

func (r *Renderer) face(bold bool) font.Face {
	if bold {
		return r.bold
	}
	return r.regular
}

// label draws text vertically centred on y, starting at x, over a white
// plate.
func (r *Renderer) label(dst *image.RGBA, text string, x, y float64, bold bool) {
	if text == "" {
		return
	}
	face := r.face(bold)
	width := r.LabelWidth(text, bold)
	px, py := int(x)-platePaddingPix, int(y)-plateHeight/2
	plate := image.Rect(px, py, px+width+2*platePaddingPix, py+plateHeight)
	draw.Draw(dst, plate, image.NewUniform(plateColor), image.Point{}, draw.Over)

	m := face.Metrics()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(labelColor),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(int(x)),
			Y: fixed.I(int(y)) + (m.Ascent-m.Descent)/2,
		},
	}
	d.DrawString(text)
}

// EncodePNG writes img as a fast-compressed PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return errors.Wrap(enc.Encode(w, img), "encode png")
}
