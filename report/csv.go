package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"scaling_bench_go/stats"
)

// WriteCSV writes one row per size. Individual trial times are joined with ';'.
func WriteCSV(w io.Writer, rs stats.ResultSet) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"size", "cost", "mean_s", "std_s", "trials_s"}); err != nil {
		return err
	}
	for _, r := range rs {
		trials := make([]string, len(r.Trials))
		for i, t := range r.Trials {
			trials[i] = strconv.FormatFloat(t, 'f', 6, 64)
		}
		row := []string{
			strconv.Itoa(r.Size),
			strconv.FormatFloat(r.Cost, 'g', -1, 64),
			fmt.Sprintf("%.6f", r.Mean),
			fmt.Sprintf("%.6f", r.StdDev),
			strings.Join(trials, ";"),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveCSV writes the CSV report to path.
func SaveCSV(path string, rs stats.ResultSet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := WriteCSV(f, rs); err != nil {
		return err
	}
	return f.Close()
}
