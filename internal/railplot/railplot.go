// Package railplot renders a rail to image files for inspection.
package railplot

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cxd309/rail-engine/internal/rail"
	"github.com/cxd309/rail-engine/internal/spline"
)

var (
	pathColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	nodeColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// Options controls rendering.
type Options struct {
	Samples int       // evaluations along the rail
	Width   vg.Length // image width
	Height  vg.Length // image height
	Title   string    // defaults to the rail name
}

// DefaultOptions returns 6x4 inch plots with 400 samples.
func DefaultOptions() Options {
	return Options{Samples: 400, Width: 6 * vg.Inch, Height: 4 * vg.Inch}
}

// Files names the images written by Write.
type Files struct {
	Plan      string // x/z top-down view
	Elevation string // y over rail time
}

// Write renders r into dir as <stem>-plan.png and <stem>-elevation.png.
func Write(r *rail.Rail, dir, stem string, opts Options) (Files, error) {
	if opts.Title == "" {
		opts.Title = r.Name()
	}
	files := Files{
		Plan:      filepath.Join(dir, stem+"-plan.png"),
		Elevation: filepath.Join(dir, stem+"-elevation.png"),
	}

	plan, err := Plan(r, opts)
	if err != nil {
		return Files{}, err
	}
	if err := plan.Save(opts.Width, opts.Height, files.Plan); err != nil {
		return Files{}, fmt.Errorf("saving plan plot: %w", err)
	}

	elev, err := Elevation(r, opts)
	if err != nil {
		return Files{}, err
	}
	if err := elev.Save(opts.Width, opts.Height, files.Elevation); err != nil {
		return Files{}, fmt.Errorf("saving elevation plot: %w", err)
	}
	return files, nil
}

// Plan plots the rail seen from above (x against z), with its waypoints.
func Plan(r *rail.Rail, opts Options) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - Plan", opts.Title)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "z"
	p.Add(plotter.NewGrid())

	samples := r.Sample(opts.Samples)
	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		pts[i] = plotter.XY{X: s.Position.X, Y: s.Position.Z}
	}

	xs, zs := r.Spline(spline.X).Nodes(), r.Spline(spline.Z).Nodes()
	nodes := make(plotter.XYs, len(xs))
	for i := range xs {
		nodes[i] = plotter.XY{X: xs[i].Y, Y: zs[i].Y}
	}
	if err := addPathAndNodes(p, pts, nodes); err != nil {
		return nil, err
	}
	return p, nil
}

// Elevation plots the rail height (y) against rail time.
func Elevation(r *rail.Rail, opts Options) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - Elevation", opts.Title)
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	samples := r.Sample(opts.Samples)
	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		pts[i] = plotter.XY{X: s.Time, Y: s.Position.Y}
	}

	ys := r.Spline(spline.Y).Nodes()
	nodes := make(plotter.XYs, len(ys))
	for i, n := range ys {
		nodes[i] = plotter.XY{X: n.X, Y: n.Y}
	}
	if err := addPathAndNodes(p, pts, nodes); err != nil {
		return nil, err
	}
	return p, nil
}

func addPathAndNodes(p *plot.Plot, path, nodes plotter.XYs) error {
	line, err := plotter.NewLine(path)
	if err != nil {
		return fmt.Errorf("rail path: %w", err)
	}
	line.Color = pathColor
	line.Width = vg.Points(1.5)

	scatter, err := plotter.NewScatter(nodes)
	if err != nil {
		return fmt.Errorf("rail waypoints: %w", err)
	}
	scatter.GlyphStyle.Color = nodeColor

	p.Add(line, scatter)
	p.Legend.Add("path", line)
	p.Legend.Add("waypoints", scatter)
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return nil
}
