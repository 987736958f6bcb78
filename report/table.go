package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"scaling_bench_go/stats"
)

// ProgressTable prints one plain-text row per size while a run is in progress.
type ProgressTable struct {
	w      io.Writer
	label  string
	header lipgloss.Style
}

// NewProgressTable writes to w; the header is bold only when w is a terminal.
func NewProgressTable(w io.Writer, costLabel string) *ProgressTable {
	r := lipgloss.NewRenderer(w)
	return &ProgressTable{
		w:      w,
		label:  costLabel,
		header: r.NewStyle().Bold(true),
	}
}

// Header prints the column titles and a separator.
func (t *ProgressTable) Header() {
	title := fmt.Sprintf("%-10s | %-15s | %-10s | %-15s", "N", t.label, "Mean (s)", "Std (s)")
	fmt.Fprintln(t.w, t.header.Render(title))
	fmt.Fprintln(t.w, strings.Repeat("-", 60))
}

// Row prints one completed size.
func (t *ProgressTable) Row(r stats.SizeResult) {
	fmt.Fprintf(t.w, "%-10d | %-15.2e | %.4f     | %.6f\n", r.Size, r.Cost, r.Mean, r.StdDev)
}

// WriteLatexTable emits a tabular environment with one row per size: size, cost in
// scientific notation, mean and standard deviation to three decimals.
func WriteLatexTable(w io.Writer, rs stats.ResultSet, c stats.Complexity, trials int) error {
	var b strings.Builder
	b.WriteString("\\begin{table}[h!]\n")
	b.WriteString("\\centering\n")
	b.WriteString("\\begin{tabular}{|c|c|c|c|}\n")
	b.WriteString("\\hline\n")
	fmt.Fprintf(&b, "\\textbf{N} & \\textbf{Complexity ($%s$)} & \\textbf{Time (s)} & \\textbf{Std (s)} \\\\ \\hline\n", c.TeX)
	for _, r := range rs {
		fmt.Fprintf(&b, "%d & $%s$ & %.3f & %.3f \\\\ \\hline\n", r.Size, SciNotation(r.Cost), r.Mean, r.StdDev)
	}
	b.WriteString("\\end{tabular}\n")
	fmt.Fprintf(&b, "\\caption{Execution times (mean of %d runs).}\n", trials)
	b.WriteString("\\label{tab:tempos}\n")
	b.WriteString("\\end{table}\n")

	_, err := io.WriteString(w, b.String())
	return err
}
