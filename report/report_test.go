package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scaling_bench_go/stats"
)

func sampleResults() stats.ResultSet {
	return stats.ResultSet{
		stats.Aggregate(100, []float64{0.010, 0.012, 0.011}, stats.Cubic),
		stats.Aggregate(200, []float64{0.081, 0.079, 0.080}, stats.Cubic),
		stats.Aggregate(300, []float64{0.270, 0.275, 0.265}, stats.Cubic),
	}
}

func TestSciNotation(t *testing.T) {
	assert.Equal(t, "1.0e06", SciNotation(1e6))
	assert.Equal(t, "1.7e09", SciNotation(1728e6))
	assert.Equal(t, "2.5e-03", SciNotation(0.0025))
}

func TestSciTicks(t *testing.T) {
	ticks := SciTicks{}.Ticks(0, 8e6)
	require.NotEmpty(t, ticks)
	for _, tick := range ticks {
		if tick.Label != "" {
			assert.NotContains(t, tick.Label, "+")
			assert.Contains(t, tick.Label, "e")
		}
	}
}

func TestProgressTable(t *testing.T) {
	var buf bytes.Buffer
	pt := NewProgressTable(&buf, "N^3")
	pt.Header()
	pt.Row(stats.SizeResult{Size: 100, Cost: 1e6, Mean: 0.0123, StdDev: 0.000456})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "N          | N^3             | Mean (s)   | Std (s)", strings.TrimRight(lines[0], " "))
	assert.Equal(t, strings.Repeat("-", 60), lines[1])
	assert.Equal(t, "100        | 1.00e+06        | 0.0123     | 0.000456", lines[2])
}

func TestWriteLatexTable(t *testing.T) {
	rs := stats.ResultSet{
		{Size: 100, Cost: 1e6, Mean: 0.01234, StdDev: 0.0005},
		{Size: 1200, Cost: 1728e6, Mean: 2.5, StdDev: 0.0125},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteLatexTable(&buf, rs, stats.Cubic, 5))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\\begin{table}[h!]\n\\centering\n\\begin{tabular}{|c|c|c|c|}\n\\hline\n"))
	assert.Contains(t, out, "\\textbf{Complexity ($N^3$)}")
	assert.Contains(t, out, "100 & $1.0e06$ & 0.012 & 0.001 \\\\ \\hline\n")
	assert.Contains(t, out, "1200 & $1.7e09$ & 2.500 & 0.013 \\\\ \\hline\n")
	assert.Contains(t, out, "\\caption{Execution times (mean of 5 runs).}")
	assert.True(t, strings.HasSuffix(out, "\\end{table}\n"))
}

func TestSaveChart_PNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultChartFile)
	rs := sampleResults()
	o := ChartOptions{Title: "test", CostLabel: "N^3", Fit: stats.LinearFit(rs)}

	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))
	require.NoError(t, SaveChart(path, rs, o))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), "chart must overwrite the previous file with a PNG")
}

func TestWriteChart_SVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, sampleResults(), ChartOptions{CostLabel: "N^3"}, "svg"))
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "Experimental data")
}

func TestNewChart_Empty(t *testing.T) {
	_, err := NewChart(nil, ChartOptions{})
	assert.Error(t, err)
}

func TestSaveChart_Errors(t *testing.T) {
	assert.Error(t, SaveChart(filepath.Join(t.TempDir(), "chart"), sampleResults(), ChartOptions{}))
	assert.Error(t, SaveChart(filepath.Join(t.TempDir(), "missing", "chart.png"), sampleResults(), ChartOptions{}))
}

func TestSaveChart_HTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.html")
	rs := sampleResults()
	require.NoError(t, SaveChart(path, rs, ChartOptions{Title: "Scaling", CostLabel: "N^3", Fit: stats.LinearFit(rs)}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "Experimental data")
	assert.Contains(t, html, "Mean + std")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, stats.ResultSet{{Size: 100, Cost: 1e6, Mean: 0.5, StdDev: 0.25, Trials: []float64{0.25, 0.75}}}))
	assert.Equal(t, "size,cost,mean_s,std_s,trials_s\n100,1e+06,0.500000,0.250000,0.250000;0.750000\n", buf.String())
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "runs.json"))
	require.NoError(t, err)

	latest, err := store.LoadLatest()
	require.NoError(t, err)
	assert.Nil(t, latest)

	first := NewRun(sampleResults())
	first.Complexity = "cubic"
	second := NewRun(sampleResults()[:1])
	second.Timestamp = first.Timestamp.Add(time.Second)
	require.NotEqual(t, first.ID, second.ID)

	// Saved out of order; LoadAll sorts by timestamp.
	require.NoError(t, store.Save(second))
	require.NoError(t, store.Save(first))

	runs, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first.ID, runs[0].ID)
	assert.Equal(t, sampleResults(), runs[0].Results)

	latest, err = store.LoadLatest()
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	got, err := store.Load(first.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, "cubic", got.Complexity)

	_, err = store.Load("zzz")
	assert.Error(t, err)
	_, err = store.Load("")
	assert.ErrorContains(t, err, "ambiguous")
}

func TestCompare(t *testing.T) {
	prev := Run{Results: stats.ResultSet{{Size: 100, Mean: 1.0}, {Size: 200, Mean: 2.0}}}
	curr := Run{Results: stats.ResultSet{{Size: 200, Mean: 1.5}, {Size: 300, Mean: 4.0}, {Size: 100, Mean: 1.1}}}

	cs := Compare(prev, curr)
	require.Len(t, cs, 2)
	assert.Equal(t, 200, cs[0].Size)
	assert.InDelta(t, -25.0, cs[0].MeanDiff, 1e-9)
	assert.Equal(t, 100, cs[1].Size)
	assert.InDelta(t, 10.0, cs[1].MeanDiff, 1e-9)
	assert.Equal(t, "N=200: 2.0000s -> 1.5000s (-25.00%)", cs[0].String())

	var buf bytes.Buffer
	WriteComparisons(&buf, nil)
	assert.Contains(t, buf.String(), "No sizes in common")
}

func TestSaveMetrics(t *testing.T) {
	run := NewRun(stats.ResultSet{stats.Aggregate(100, []float64{0.5, 1.5}, stats.Cubic)})
	run.Complexity = "cubic"
	path := filepath.Join(t.TempDir(), "scaling_bench.prom")

	require.NoError(t, SaveMetrics(path, run))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `scaling_bench_mean_seconds{complexity="cubic",size="100"} 1`)
	assert.Contains(t, out, `scaling_bench_stddev_seconds{complexity="cubic",size="100"} 0.5`)
	assert.Contains(t, out, `scaling_bench_cost{complexity="cubic",size="100"} 1e+06`)
	assert.Contains(t, out, `scaling_bench_trial_seconds_count{complexity="cubic",size="100"} 2`)
}
