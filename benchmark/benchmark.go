// benchmark.go
// Host snapshot and self-profiling for the harness
// Records where a run happened and how much the harness itself cost

package benchmark

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"
)

// Environment identifies the machine a run was measured on, for repeatability.
type Environment struct {
	Timestamp time.Time `json:"timestamp"`
	Hostname  string    `json:"hostname,omitempty"`
	GoVersion string    `json:"go_version"`
	OS        string    `json:"os"`
	Arch      string    `json:"arch"`
	CPUs      int       `json:"cpus"`
}

// Snapshot captures the current host environment.
func Snapshot() Environment {
	env := Environment{
		Timestamp: time.Now(),
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		CPUs:      runtime.NumCPU(),
	}
	if host, err := os.Hostname(); err == nil {
		env.Hostname = host
	}
	return env
}

// Report prints the environment in the [Benchmark] block format.
func (e Environment) Report(w io.Writer) {
	fmt.Fprintln(w, "[Benchmark] Timestamp:", e.Timestamp.Format(time.RFC1123))
	if e.Hostname != "" {
		fmt.Fprintln(w, "[Benchmark] Hostname:", e.Hostname)
	}
	fmt.Fprintln(w, "[Benchmark] Go Version:", e.GoVersion)
	fmt.Fprintf(w, "[Benchmark] OS/Arch: %s/%s\n", e.OS, e.Arch)
}

// Usage is the harness's own resource consumption while running a wrapped function.
type Usage struct {
	Label           string
	Elapsed         time.Duration
	MemUsedMB       float64
	TotalAllocMB    float64
	PeakHeapMB      float64
	SysMB           float64
	GCCycles        uint32
	CPUs            int
	GoroutinesStart int
	GoroutinesEnd   int
}

const mb = 1024.0 * 1024.0

// Measure runs f and records its runtime and memory usage. The error from f is returned
// unchanged; usage is still filled in when f fails.
func Measure(label string, f func() error) (Usage, error) {
	runtime.GC()
	var memStart, memEnd runtime.MemStats
	runtime.ReadMemStats(&memStart)
	startGoroutines := runtime.NumGoroutine()
	start := time.Now()

	err := f()

	elapsed := time.Since(start)
	runtime.ReadMemStats(&memEnd)

	return Usage{
		Label:           label,
		Elapsed:         elapsed,
		MemUsedMB:       (float64(memEnd.Alloc) - float64(memStart.Alloc)) / mb,
		TotalAllocMB:    float64(memEnd.TotalAlloc-memStart.TotalAlloc) / mb,
		PeakHeapMB:      float64(memEnd.HeapAlloc) / mb,
		SysMB:           float64(memEnd.Sys) / mb,
		GCCycles:        memEnd.NumGC - memStart.NumGC,
		CPUs:            runtime.NumCPU(),
		GoroutinesStart: startGoroutines,
		GoroutinesEnd:   runtime.NumGoroutine(),
	}, err
}

// Report prints the usage block.
func (u Usage) Report(w io.Writer) {
	fmt.Fprintf(w, "[Benchmark] Running: %s\n", u.Label)
	fmt.Fprintf(w, "[Benchmark] Time Elapsed: %v\n", u.Elapsed)
	fmt.Fprintf(w, "[Benchmark] Memory Used: %.2f MB\n", u.MemUsedMB)
	fmt.Fprintf(w, "[Benchmark] Total Allocated: %.2f MB\n", u.TotalAllocMB)
	fmt.Fprintf(w, "[Benchmark] Peak Heap: %.2f MB\n", u.PeakHeapMB)
	fmt.Fprintf(w, "[Benchmark] Total System Memory Allocated: %.2f MB\n", u.SysMB)
	fmt.Fprintf(w, "[Benchmark] GC Cycles: %d\n", u.GCCycles)
	fmt.Fprintf(w, "[Benchmark] CPU Cores: %d\n", u.CPUs)
	fmt.Fprintf(w, "[Benchmark] Goroutines Started: %d → %d\n", u.GoroutinesStart, u.GoroutinesEnd)
	fmt.Fprintln(w, "[Benchmark] ----------------------------------------")
}
