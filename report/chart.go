package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"scaling_bench_go/stats"
)

// DefaultChartFile is overwritten on every run.
const DefaultChartFile = "grafico_final_v3.png"

// ChartOptions label the chart.
type ChartOptions struct {
	Title     string
	CostLabel string    // e.g. "N^3"
	Fit       stats.Fit // Drawn as a dashed line when valid
}

// SciTicks labels the default tick positions in compact scientific notation (1.0e06).
type SciTicks struct{}

func (SciTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = SciNotation(ticks[i].Value)
		}
	}
	return ticks
}

// SciNotation formats v with one decimal and no exponent sign for positive exponents.
func SciNotation(v float64) string {
	return strings.Replace(fmt.Sprintf("%.1e", v), "+", "", 1)
}

// errorPoints feeds both the line and the error bars.
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// NewChart plots mean time against cost with standard deviation error bars.
func NewChart(rs stats.ResultSet, o ChartOptions) (*plot.Plot, error) {
	if len(rs) == 0 {
		return nil, errors.New("no results to plot")
	}

	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = fmt.Sprintf("Theoretical complexity (%s)", o.CostLabel)
	p.Y.Label.Text = "Execution time (s)"
	p.X.Tick.Marker = SciTicks{}

	grid := plotter.NewGrid()
	dashed := []vg.Length{vg.Points(3), vg.Points(3)}
	grid.Vertical.Dashes = dashed
	grid.Horizontal.Dashes = dashed
	grid.Vertical.Color = color.Gray{Y: 200}
	grid.Horizontal.Color = color.Gray{Y: 200}
	p.Add(grid)

	data := errorPoints{
		XYs:     make(plotter.XYs, len(rs)),
		YErrors: make(plotter.YErrors, len(rs)),
	}
	for i, r := range rs {
		data.XYs[i].X = r.Cost
		data.XYs[i].Y = r.Mean
		data.YErrors[i].Low = r.StdDev
		data.YErrors[i].High = r.StdDev
	}

	line, points, err := plotter.NewLinePoints(data.XYs)
	if err != nil {
		return nil, err
	}
	blue := color.RGBA{B: 255, A: 255}
	line.Color = blue
	line.Width = vg.Points(1.5)
	points.Color = blue

	bars, err := plotter.NewYErrorBars(data)
	if err != nil {
		return nil, err
	}
	bars.Color = color.RGBA{R: 255, A: 255}
	bars.CapWidth = vg.Points(8)

	p.Add(line, points, bars)
	p.Legend.Add("Experimental data", line, points)

	if o.Fit.Valid() {
		first, last := rs[0].Cost, rs[len(rs)-1].Cost
		fitLine, err := plotter.NewLine(plotter.XYs{
			{X: first, Y: o.Fit.At(first)},
			{X: last, Y: o.Fit.At(last)},
		})
		if err != nil {
			return nil, err
		}
		fitLine.Color = color.RGBA{G: 150, A: 255}
		fitLine.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		p.Add(fitLine)
		p.Legend.Add(fmt.Sprintf("Linear fit (R² = %.4f)", o.Fit.RSquared), fitLine)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	return p, nil
}

// WriteChart renders the chart in the given format ("png", "svg", "pdf", ...).
func WriteChart(w io.Writer, rs stats.ResultSet, o ChartOptions, format string) error {
	p, err := NewChart(rs, o)
	if err != nil {
		return err
	}
	writer, err := p.WriterTo(10*vg.Inch, 6*vg.Inch, format)
	if err != nil {
		return err
	}
	_, err = writer.WriteTo(w)
	return err
}

// SaveChart writes the chart to path, overwriting it. The format follows the extension;
// ".html" produces an interactive page instead of a static image.
func SaveChart(path string, rs stats.ResultSet, o ChartOptions) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return fmt.Errorf("chart file %q has no extension", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	if ext == "html" || ext == "htm" {
		err = WriteHTMLChart(f, rs, o)
	} else {
		err = WriteChart(f, rs, o, ext)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
