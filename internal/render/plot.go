// Package render draws mounting results: orthographic views, a sweep
// chart and a printable mesh.
package render

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/golang/geo/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cjeanneret/DepthMount/internal/logic/geometry"
)

var (
	boxColor     = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	frustumColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	cameraColor  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// axis picks two world coordinates for a 2-D view.
type axis func(v r3.Vector) (float64, float64)

type view struct {
	suffix string
	title  string
	xLabel string
	yLabel string
	proj   axis
}

var views = []view{
	{"side", "Side view (z-y)", "Z (m)", "Y (m)", func(v r3.Vector) (float64, float64) { return v.Z, v.Y }},
	{"top", "Top view (x-z)", "X (m)", "Z (m)", func(v r3.Vector) (float64, float64) { return v.X, v.Z }},
}

// SaveViews writes a side and a top view of the box and frustum. The file
// format follows path's extension (png, svg, pdf...); outputs are named
// <base>_side<ext> and <base>_top<ext>.
func SaveViews(path string, box geometry.Box, sol geometry.FrustumSolution) ([]string, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, fmt.Errorf("plot path %q needs an extension", path)
	}
	base := strings.TrimSuffix(path, ext)

	segs := Segments(box, sol)
	out := make([]string, 0, len(views))
	for _, v := range views {
		p, err := drawView(v, segs, sol)
		if err != nil {
			return out, err
		}
		file := base + "_" + v.suffix + ext
		if err := p.Save(8*vg.Inch, 6*vg.Inch, file); err != nil {
			return out, fmt.Errorf("save %s view: %w", v.suffix, err)
		}
		out = append(out, file)
	}
	return out, nil
}

// ColoredSegment is a segment tagged with the part it belongs to.
type ColoredSegment struct {
	geometry.Segment
	Frustum bool
}

// Segments returns the 12 box edges followed by the 16 frustum segments.
func Segments(box geometry.Box, sol geometry.FrustumSolution) []ColoredSegment {
	c := box.Corners()
	// Corner indices differ in exactly one coordinate along each edge.
	edges := [12][2]int{
		{0, 1}, {2, 3}, {4, 5}, {6, 7}, // x
		{0, 2}, {1, 3}, {4, 6}, {5, 7}, // y
		{0, 4}, {1, 5}, {2, 6}, {3, 7}, // z
	}
	out := make([]ColoredSegment, 0, 28)
	for _, e := range edges {
		out = append(out, ColoredSegment{Segment: geometry.Segment{From: c[e[0]], To: c[e[1]]}})
	}
	for _, s := range geometry.Wireframe(sol) {
		out = append(out, ColoredSegment{Segment: s, Frustum: true})
	}
	return out
}

func drawView(v view, segs []ColoredSegment, sol geometry.FrustumSolution) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = v.title
	p.X.Label.Text = v.xLabel
	p.Y.Label.Text = v.yLabel
	p.Add(plotter.NewGrid())

	var boxLegend, frustumLegend *plotter.Line
	for _, s := range segs {
		x0, y0 := v.proj(s.From)
		x1, y1 := v.proj(s.To)
		line, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y0}, {X: x1, Y: y1}})
		if err != nil {
			return nil, err
		}
		line.Width = vg.Points(1)
		if s.Frustum {
			line.Color = frustumColor
			line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			if frustumLegend == nil {
				frustumLegend = line
			}
		} else {
			line.Color = boxColor
			line.Width = vg.Points(1.5)
			if boxLegend == nil {
				boxLegend = line
			}
		}
		p.Add(line)
	}

	cx, cy := v.proj(sol.CameraPosition)
	cam, err := plotter.NewScatter(plotter.XYs{{X: cx, Y: cy}})
	if err != nil {
		return nil, err
	}
	cam.GlyphStyle.Color = cameraColor
	cam.GlyphStyle.Radius = vg.Points(4)
	p.Add(cam)

	p.Legend.Add("volume", boxLegend)
	p.Legend.Add("frustum", frustumLegend)
	p.Legend.Add(fmt.Sprintf("sensor (%.2f m)", sol.Distance), cam)
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}
