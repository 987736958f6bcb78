// Package stats reduces timed trials to per-size summaries
// and checks how well the measured times follow the assumed cost metric.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// SizeResult holds the aggregate of every trial for one input size.
type SizeResult struct {
	Size   int       `json:"size"`
	Cost   float64   `json:"cost"`
	Mean   float64   `json:"mean_s"`
	StdDev float64   `json:"std_s"`
	Trials []float64 `json:"trials_s"`
}

// ResultSet is ordered by configured size.
type ResultSet []SizeResult

// Aggregate computes the mean and population standard deviation of the trial durations
// (seconds) and the cost metric of the size. durations must not be empty.
func Aggregate(size int, durations []float64, c Complexity) SizeResult {
	mean, std := stat.PopMeanStdDev(durations, nil)
	trials := make([]float64, len(durations))
	copy(trials, durations)
	return SizeResult{
		Size:   size,
		Cost:   c.Cost(size),
		Mean:   mean,
		StdDev: std,
		Trials: trials,
	}
}

// Costs returns the x values of the set.
func (rs ResultSet) Costs() []float64 {
	out := make([]float64, len(rs))
	for i, r := range rs {
		out[i] = r.Cost
	}
	return out
}

// Means returns the y values of the set.
func (rs ResultSet) Means() []float64 {
	out := make([]float64, len(rs))
	for i, r := range rs {
		out[i] = r.Mean
	}
	return out
}

// Fit is the least-squares line mean = Alpha + Beta*cost.
type Fit struct {
	Alpha    float64 `json:"alpha"`
	Beta     float64 `json:"beta"`
	RSquared float64 `json:"r_squared"`
	Points   int     `json:"points"`
}

// Valid reports whether the fit was computed from at least two points.
func (f Fit) Valid() bool {
	return f.Points >= 2
}

// At evaluates the fitted line.
func (f Fit) At(cost float64) float64 {
	return f.Alpha + f.Beta*cost
}

// LinearFit regresses mean time on cost. An R² close to 1 means the chosen
// complexity describes the subject well. Fewer than two points yield a zero Fit.
func LinearFit(rs ResultSet) Fit {
	if len(rs) < 2 {
		return Fit{}
	}
	x, y := rs.Costs(), rs.Means()
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return Fit{}
	}
	r2 := stat.RSquared(x, y, nil, alpha, beta)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		// Constant times leave R² undefined.
		r2 = 0
	}
	return Fit{
		Alpha:    alpha,
		Beta:     beta,
		RSquared: r2,
		Points:   len(rs),
	}
}
