package report

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// NewMetricsRegistry exposes a run as Prometheus metrics labelled by size.
func NewMetricsRegistry(run Run) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()

	constLabels := prometheus.Labels{"complexity": run.Complexity}
	mean := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "scaling_bench_mean_seconds",
		Help:        "Mean wall-clock time of the subject program per input size.",
		ConstLabels: constLabels,
	}, []string{"size"})
	std := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "scaling_bench_stddev_seconds",
		Help:        "Population standard deviation of the trial times per input size.",
		ConstLabels: constLabels,
	}, []string{"size"})
	cost := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "scaling_bench_cost",
		Help:        "Theoretical cost metric per input size.",
		ConstLabels: constLabels,
	}, []string{"size"})
	trials := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "scaling_bench_trial_seconds",
		Help:        "Distribution of individual trial times.",
		ConstLabels: constLabels,
		Buckets:     prometheus.ExponentialBuckets(0.001, 2, 16),
	}, []string{"size"})
	rSquared := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "scaling_bench_fit_r_squared",
		Help:        "Coefficient of determination of mean time against cost.",
		ConstLabels: constLabels,
	})

	for _, c := range []prometheus.Collector{mean, std, cost, trials, rSquared} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	for _, r := range run.Results {
		size := strconv.Itoa(r.Size)
		mean.WithLabelValues(size).Set(r.Mean)
		std.WithLabelValues(size).Set(r.StdDev)
		cost.WithLabelValues(size).Set(r.Cost)
		for _, t := range r.Trials {
			trials.WithLabelValues(size).Observe(t)
		}
	}
	rSquared.Set(run.Fit.RSquared)
	return reg, nil
}

// SaveMetrics writes the run in the text exposition format, suitable for a
// node_exporter textfile collector.
func SaveMetrics(path string, run Run) error {
	reg, err := NewMetricsRegistry(run)
	if err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, reg)
}
