package chart

import (
	"bytes"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
)

const (
	tickRotation = math.Pi / 4
	glyphRadius  = 3
	lineWidth    = 1.5
	// nominalPad keeps the first and last points off the plot edges.
	nominalPad = 0.5
)

// Renderer draws charts with fixed options.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer. Zero-valued size fields fall back to
// DefaultOptions.
func NewRenderer(opts Options) *Renderer {
	def := DefaultOptions()

	if opts.WidthInches <= 0 {
		opts.WidthInches = def.WidthInches
	}

	if opts.HeightInches <= 0 {
		opts.HeightInches = def.HeightInches
	}

	if opts.Title == "" {
		opts.Title = def.Title
	}

	if opts.XLabel == "" {
		opts.XLabel = def.XLabel
	}

	if opts.YLabel == "" {
		opts.YLabel = def.YLabel
	}

	if opts.Theme == "" {
		opts.Theme = def.Theme
	}

	return &Renderer{opts: opts}
}

// Options returns the effective rendering options.
func (r *Renderer) Options() Options {
	return r.opts
}

// RenderPNG draws a line chart with one marked series per category and one
// x tick per record, and encodes it as PNG.
func (r *Renderer) RenderPNG(records []punctuation.Record, categories []punctuation.Category) ([]byte, error) {
	data, err := Build(records, categories)
	if err != nil {
		return nil, err
	}

	p, err := r.newPlot(data)
	if err != nil {
		return nil, err
	}

	wt, err := p.WriterTo(vg.Length(r.opts.WidthInches)*vg.Inch, vg.Length(r.opts.HeightInches)*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("create png canvas: %w", err)
	}

	var buf bytes.Buffer

	_, err = wt.WriteTo(&buf)
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return buf.Bytes(), nil
}

func (r *Renderer) newPlot(data Data) (*plot.Plot, error) {
	theme := SchemeFor(r.opts.Theme)
	textColor := rgba(theme.Text)

	p := plot.New()
	p.BackgroundColor = rgba(theme.Background)
	p.Title.Text = r.opts.Title
	p.Title.TextStyle.Color = textColor
	p.X.Label.Text = r.opts.XLabel
	p.X.Label.TextStyle.Color = textColor
	p.Y.Label.Text = r.opts.YLabel
	p.Y.Label.TextStyle.Color = textColor
	p.X.Tick.Label.Color = rgba(theme.TextMuted)
	p.Y.Tick.Label.Color = rgba(theme.TextMuted)
	p.X.LineStyle.Color = rgba(theme.Axis)
	p.Y.LineStyle.Color = rgba(theme.Axis)
	p.Legend.TextStyle.Color = textColor
	p.Legend.Top = true

	grid := plotter.NewGrid()
	grid.Vertical.Color = rgba(theme.Grid)
	grid.Horizontal.Color = rgba(theme.Grid)
	p.Add(grid)

	for _, s := range data.Series {
		pts := make(plotter.XYs, len(s.Values))
		for j, v := range s.Values {
			pts[j].X = float64(j)
			pts[j].Y = float64(v)
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("build %s series: %w", s.Category, err)
		}

		c := rgba(theme.CategoryColor(s.Category))
		line.Color = c
		line.Width = vg.Points(lineWidth)
		points.Color = c
		points.Shape = draw.CircleGlyph{}
		points.Radius = vg.Points(glyphRadius)

		p.Add(line, points)
		p.Legend.Add(s.Name, line, points)
	}

	p.NominalX(data.Labels...)
	p.X.Min = -nominalPad
	p.X.Max = float64(len(data.Labels)-1) + nominalPad
	p.X.Tick.Label.Rotation = tickRotation
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	return p, nil
}
