package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"scaling_bench_go/stats"
)

func seriesData(rs stats.ResultSet, y func(stats.SizeResult) float64) []opts.LineData {
	data := make([]opts.LineData, len(rs))
	for i, r := range rs {
		data[i] = opts.LineData{Name: fmt.Sprintf("N=%d", r.Size), Value: []interface{}{r.Cost, y(r)}}
	}
	return data
}

// WriteHTMLChart renders an interactive line chart of the same data as the static chart.
// The standard deviation is shown as a dashed band above and below the mean.
func WriteHTMLChart(w io.Writer, rs stats.ResultSet, o ChartOptions) error {
	if len(rs) == 0 {
		return errors.New("no results to plot")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: fmt.Sprintf("Theoretical complexity (%s)", o.CostLabel), Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Execution time (s)", Type: "value"}),
	)

	line.AddSeries("Experimental data", seriesData(rs, func(r stats.SizeResult) float64 { return r.Mean }))
	line.AddSeries("Mean + std", seriesData(rs, func(r stats.SizeResult) float64 { return r.Mean + r.StdDev })).
		SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))
	line.AddSeries("Mean - std", seriesData(rs, func(r stats.SizeResult) float64 { return r.Mean - r.StdDev })).
		SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))

	if o.Fit.Valid() {
		line.AddSeries(fmt.Sprintf("Linear fit (R² = %.4f)", o.Fit.RSquared),
			seriesData(rs, func(r stats.SizeResult) float64 { return o.Fit.At(r.Cost) }))
	}

	return line.Render(w)
}
