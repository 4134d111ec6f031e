package sky

import (
	"fmt"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// beamPalette cycles through distinct colours for per-beam scatter.
var beamPalette = []color.RGBA{
	{100, 149, 237, 255}, // cornflower
	{255, 99, 71, 255},   // tomato
	{60, 179, 113, 255},  // sea green
	{218, 165, 32, 255},  // goldenrod
	{147, 112, 219, 255}, // purple
	{70, 130, 180, 255},  // steel blue
	{205, 92, 92, 255},   // indian red
	{46, 139, 87, 255},   // dark sea green
}

// SkyChart renders the source positions of every beam as a colour-coded
// scatter chart. Chart coordinates are arcminutes; RA runs right to left
// following sky convention.
type SkyChart struct {
	Catalogues  []*Catalogue
	Padding     float64 // chart padding in arcmin
	PointRadius float64 // source marker radius in arcmin
	Resolution  canvas.Resolution
}

// NewSkyChart creates a chart with default marker sizing.
func NewSkyChart(cats []*Catalogue) *SkyChart {
	return &SkyChart{
		Catalogues:  cats,
		Padding:     10.0,
		PointRadius: 0.4,
		Resolution:  canvas.DPI(150),
	}
}

// canvasRenderer is the subset shared by the svg and rasterizer backends.
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the chart as an SVG to the provided writer
func (r *SkyChart) RenderToSVG(w io.Writer) error {
	width, height, toChart, err := r.layout()
	if err != nil {
		return err
	}

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, width, height, toChart)
	return svgRenderer.Close()
}

// RenderToPNG writes the chart as a PNG to the provided writer
func (r *SkyChart) RenderToPNG(w io.Writer) error {
	width, height, toChart, err := r.layout()
	if err != nil {
		return err
	}

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, width, height, toChart)
	return png.Encode(w, rast)
}

// layout computes the chart size in arcmin and the sky-to-chart mapping.
func (r *SkyChart) layout() (width, height float64, toChart func(SkyPoint) (float64, float64), err error) {
	minRA, maxRA := math.MaxFloat64, -math.MaxFloat64
	minDec, maxDec := math.MaxFloat64, -math.MaxFloat64

	n := 0
	for _, c := range r.Catalogues {
		for _, p := range c.Points.Points() {
			minRA = math.Min(minRA, p.RA)
			maxRA = math.Max(maxRA, p.RA)
			minDec = math.Min(minDec, p.Dec)
			maxDec = math.Max(maxDec, p.Dec)
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil, fmt.Errorf("no sources to chart")
	}

	// Flatten RA onto a tangent-ish plane at the field's mid declination
	cosDec := math.Cos((minDec + maxDec) / 2 * degToRad)
	if cosDec < cosDecFloor {
		cosDec = cosDecFloor
	}

	width = (maxRA-minRA)*cosDec*60 + 2*r.Padding
	height = (maxDec-minDec)*60 + 2*r.Padding

	toChart = func(p SkyPoint) (float64, float64) {
		// RA increases to the left on the sky
		x := (maxRA-p.RA)*cosDec*60 + r.Padding
		y := (p.Dec-minDec)*60 + r.Padding
		return x, y
	}
	return width, height, toChart, nil
}

// renderToCanvas draws the chart onto a canvas renderer (shared logic for
// SVG and PNG).
func (r *SkyChart) renderToCanvas(renderer canvasRenderer, width, height float64, toChart func(SkyPoint) (float64, float64)) {
	// White background
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	for i, c := range r.Catalogues {
		col := beamPalette[i%len(beamPalette)]

		srcStyle := canvas.DefaultStyle
		srcStyle.Fill = canvas.Paint{Color: col}
		srcStyle.Stroke = canvas.Paint{Color: canvas.Transparent}

		for _, p := range c.Points.Points() {
			cx, cy := toChart(p)
			marker := canvas.Circle(r.PointRadius)
			marker = marker.Translate(cx, cy)
			renderer.RenderPath(marker, srcStyle, canvas.Identity)
		}

		// Beam centre as an outlined ring
		centreStyle := canvas.DefaultStyle
		centreStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		centreStyle.Stroke = canvas.Paint{Color: col}
		centreStyle.StrokeWidth = 0.3

		cx, cy := toChart(c.Centre)
		ring := canvas.Circle(r.PointRadius * 4)
		ring = ring.Translate(cx, cy)
		renderer.RenderPath(ring, centreStyle, canvas.Identity)
	}
}

// SaveSkyChart renders the catalogues to path, choosing SVG or PNG from
// the file extension.
func SaveSkyChart(path string, cats []*Catalogue) error {
	chart := NewSkyChart(cats)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating sky chart file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return chart.RenderToSVG(f)
	case ".png":
		return chart.RenderToPNG(f)
	default:
		return fmt.Errorf("unsupported sky chart format %q (use .svg or .png)", filepath.Ext(path))
	}
}
