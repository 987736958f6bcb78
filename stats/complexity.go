package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Complexity is the assumed theoretical cost of the subject program for a given size.
// It is plotted against measured time, so it must be chosen to match the algorithm under test.
type Complexity struct {
	Name  string                 // Registry key, e.g. "cubic"
	Label string                 // Plain axis label, e.g. "N^3"
	TeX   string                 // Math-mode label for typeset tables
	Cost  func(size int) float64 // Cost metric for a size
}

var complexities = map[string]Complexity{
	"linear": {
		Name:  "linear",
		Label: "N",
		TeX:   `N`,
		Cost:  func(n int) float64 { return float64(n) },
	},
	"nlogn": {
		Name:  "nlogn",
		Label: "N log N",
		TeX:   `N \log N`,
		Cost:  func(n int) float64 { return float64(n) * math.Log2(float64(n)) },
	},
	"quadratic": {
		Name:  "quadratic",
		Label: "N^2",
		TeX:   `N^2`,
		Cost:  func(n int) float64 { return float64(n) * float64(n) },
	},
	"cubic": {
		Name:  "cubic",
		Label: "N^3",
		TeX:   `N^3`,
		Cost:  func(n int) float64 { return float64(n) * float64(n) * float64(n) },
	},
}

// Cubic is the default cost metric.
var Cubic = complexities["cubic"]

// ParseComplexity looks up a cost metric by name (case-insensitive).
func ParseComplexity(name string) (Complexity, error) {
	c, ok := complexities[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Complexity{}, fmt.Errorf("unknown complexity %q (valid: %s)", name, strings.Join(ComplexityNames(), ", "))
	}
	return c, nil
}

// ComplexityNames lists the registered cost metrics in sorted order.
func ComplexityNames() []string {
	names := make([]string, 0, len(complexities))
	for name := range complexities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
