package report

import (
	"fmt"
	"io"
)

// Comparison is the change in mean time for one size between two runs.
type Comparison struct {
	Size     int
	Prev     float64 // Mean seconds
	Curr     float64
	MeanDiff float64 // Percentage change, negative is faster
}

// Compare matches sizes present in both runs, in the order of curr.
func Compare(prev, curr Run) []Comparison {
	prevMeans := make(map[int]float64, len(prev.Results))
	for _, r := range prev.Results {
		prevMeans[r.Size] = r.Mean
	}

	var out []Comparison
	for _, r := range curr.Results {
		p, ok := prevMeans[r.Size]
		if !ok {
			continue
		}
		c := Comparison{Size: r.Size, Prev: p, Curr: r.Mean}
		if p > 0 {
			c.MeanDiff = (r.Mean - p) / p * 100
		}
		out = append(out, c)
	}
	return out
}

func (c Comparison) String() string {
	return fmt.Sprintf("N=%d: %.4fs -> %.4fs (%+.2f%%)", c.Size, c.Prev, c.Curr, c.MeanDiff)
}

// WriteComparisons prints one line per comparison.
func WriteComparisons(w io.Writer, cs []Comparison) {
	if len(cs) == 0 {
		fmt.Fprintln(w, "No sizes in common between the two runs.")
		return
	}
	for _, c := range cs {
		fmt.Fprintln(w, c.String())
	}
}
