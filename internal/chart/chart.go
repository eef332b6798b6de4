// Package chart renders the class-distribution bar chart of a cleaned dataset.
package chart

import (
	"context"
	"image"
	"image/color"
	"strconv"

	"github.com/spf13/afero"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/ironsheep/labeldb/internal/errors"
	"github.com/ironsheep/labeldb/internal/imaging"
	"github.com/ironsheep/labeldb/internal/store"
)

// Defaults match a 12x6 inch figure at 100 DPI.
const (
	DefaultTitle = "Distribution of Annotations per Class"
	DefaultDPI   = 100
)

var (
	DefaultWidth  = 12 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// Options controls chart appearance.
type Options struct {
	Title    string
	BarColor color.Color
	Width    vg.Length
	Height   vg.Length
	DPI      int
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.BarColor == nil {
		o.BarColor = color.RGBA{31, 119, 180, 255}
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	return o
}

// Result describes a rendered chart.
type Result struct {
	Path    string             `json:"path,omitempty"`
	Classes int                `json:"classes"`
	Total   int64              `json:"total"`
	Counts  []store.ClassCount `json:"counts"`
}

// Render draws one bar per class in the order given. Callers pass counts
// sorted by ascending class id. An empty slice yields an empty chart.
func Render(counts []store.ClassCount, opts Options) (image.Image, error) {
	opts = opts.withDefaults()

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Class ID"
	p.Y.Label.Text = "Number of Annotations"
	p.Y.Min = 0

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Color = color.Gray{Y: 160}
	grid.Horizontal.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(grid)

	if len(counts) > 0 {
		values := make(plotter.Values, len(counts))
		names := make([]string, len(counts))
		for i, c := range counts {
			values[i] = float64(c.Count)
			names[i] = strconv.Itoa(c.ClassID)
		}

		bars, err := plotter.NewBarChart(values, barWidth(opts.Width, len(counts)))
		if err != nil {
			return nil, errors.Newf("failed to build bar chart: %w", err).
				Category(errors.CategoryImage).
				Build()
		}
		bars.Color = opts.BarColor
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.NominalX(names...)
	} else {
		p.X.Min, p.X.Max = 0, 1
		p.Y.Max = 1
	}

	canvas := vgimg.NewWith(
		vgimg.UseWH(opts.Width, opts.Height),
		vgimg.UseDPI(opts.DPI),
	)
	p.Draw(draw.New(canvas))
	return canvas.Image(), nil
}

// barWidth leaves roughly a fifth of each slot as gap.
func barWidth(total vg.Length, n int) vg.Length {
	w := total * 0.8 / vg.Length(n+2)
	return min(max(w, vg.Points(2)), vg.Points(40))
}

// Generate loads class counts from st, renders the chart, and writes it to
// path on fs.
func Generate(ctx context.Context, st *store.Store, fs afero.Fs, path string, opts Options) (*Result, error) {
	counts, err := st.ClassCounts(ctx)
	if err != nil {
		return nil, err
	}

	img, err := Render(counts, opts)
	if err != nil {
		return nil, err
	}

	if err := imaging.SavePNG(fs, path, img); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	return Summarize(path, counts), nil
}

// Summarize totals counts into a Result.
func Summarize(path string, counts []store.ClassCount) *Result {
	res := &Result{Path: path, Classes: len(counts), Counts: counts}
	for _, c := range counts {
		res.Total += c.Count
	}
	if res.Counts == nil {
		res.Counts = []store.ClassCount{}
	}
	return res
}
