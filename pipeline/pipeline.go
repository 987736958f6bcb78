// Package pipeline wires the harness stages: build, run, aggregate, report.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"scaling_bench_go/builder"
	"scaling_bench_go/config"
	"scaling_bench_go/report"
	"scaling_bench_go/runner"
	"scaling_bench_go/stats"
	common "scaling_bench_go/utils"
)

// Pipeline runs one complete benchmark.
type Pipeline struct {
	Config config.Config
	Out    io.Writer // Progress and tables

	// Builtin is invoked as the generator when generator.source is "builtin".
	// The size, max value and seed are appended to its arguments.
	Builtin runner.Program

	// SkipBuild reuses executables left by a previous build.
	SkipBuild bool
	GOOS      string
}

// New returns a pipeline for the running platform.
func New(c config.Config, out io.Writer, builtin runner.Program) *Pipeline {
	return &Pipeline{Config: c, Out: out, Builtin: builtin, GOOS: runtime.GOOS}
}

// Build compiles the subject and generator, or locates them when SkipBuild is set.
func (p *Pipeline) Build(ctx context.Context) (builder.Artifacts, error) {
	plan := p.Config.BuildPlan(p.GOOS)
	if p.SkipBuild {
		art := builder.Artifacts{Subject: plan.SubjectOutput}
		if plan.GeneratorSource != builder.BuiltinGenerator {
			art.Generator = plan.GeneratorOutput
		}
		for _, path := range []string{art.Subject, art.Generator} {
			if path != "" && !common.FileExists(path) {
				return builder.Artifacts{}, fmt.Errorf("executable %s not found; run without --skip-build first", path)
			}
		}
		return art, nil
	}

	fmt.Fprintln(p.Out, "Compiling...")
	art, err := builder.Build(ctx, plan)
	if err != nil {
		return builder.Artifacts{}, err
	}
	fmt.Fprintln(p.Out, "Compilation finished.")
	fmt.Fprintln(p.Out)
	return art, nil
}

// Programs turns build artifacts into invocable programs.
func (p *Pipeline) Programs(art builder.Artifacts) (subject, generator runner.Program) {
	subject = runner.Program{Path: common.LocalExecutable(art.Subject)}
	if art.Generator == "" {
		return subject, p.Builtin
	}
	return subject, runner.Program{Path: common.LocalExecutable(art.Generator)}
}

// Run builds and benchmarks every size, printing a progress row per size.
// Nothing is rendered here; see Publish.
func (p *Pipeline) Run(ctx context.Context) (report.Run, error) {
	rc, err := p.Config.RunnerConfig()
	if err != nil {
		return report.Run{}, err
	}
	art, err := p.Build(ctx)
	if err != nil {
		return report.Run{}, err
	}
	subject, gen := p.Programs(art)
	slog.Debug("programs ready", "subject", subject.String(), "generator", gen.String())

	table := report.NewProgressTable(p.Out, rc.Complexity.Label)
	table.Header()
	r := runner.New(rc, subject, gen)
	r.Progress = table.Row

	results, err := r.Run(ctx)
	if err != nil {
		return report.Run{}, err
	}

	run := report.NewRun(results)
	run.Subject = p.Config.Subject.Source
	run.Complexity = rc.Complexity.Name
	run.Trials = rc.Trials
	run.MaxValue = rc.MaxValue
	run.Seed = rc.Seed
	return run, nil
}

// Execute runs the benchmark and publishes it. A failure in Run means nothing is published.
func (p *Pipeline) Execute(ctx context.Context) (report.Run, error) {
	run, err := p.Run(ctx)
	if err != nil {
		return report.Run{}, err
	}
	if err := Publish(p.Out, p.Config.Output, run); err != nil {
		return run, err
	}
	return run, nil
}

// Publish renders the chart and the typeset table, then writes the optional exports.
func Publish(out io.Writer, o config.Output, run report.Run) error {
	cx, err := stats.ParseComplexity(run.Complexity)
	if err != nil {
		return err
	}

	if o.Chart != "" {
		opts := report.ChartOptions{Title: o.Title, CostLabel: cx.Label, Fit: run.Fit}
		if err := report.SaveChart(o.Chart, run.Results, opts); err != nil {
			return fmt.Errorf("failed to save chart: %w", err)
		}
		fmt.Fprintf(out, "\nChart saved as '%s'\n", o.Chart)
	}

	if run.Fit.Valid() {
		fmt.Fprintf(out, "Linear fit against %s: R² = %.4f\n", cx.Label, run.Fit.RSquared)
	}

	if o.Latex {
		fmt.Fprintln(out, "\n--- LaTeX table ---")
		if err := report.WriteLatexTable(out, run.Results, cx, run.Trials); err != nil {
			return err
		}
	}

	if o.Results != "" {
		store, err := report.NewFileStore(o.Results)
		if err != nil {
			return err
		}
		if err := store.Save(run); err != nil {
			return fmt.Errorf("failed to store results: %w", err)
		}
		slog.Info("results stored", "path", o.Results, "id", run.ID)
	}
	if o.CSV != "" {
		if err := report.SaveCSV(o.CSV, run.Results); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		slog.Info("CSV written", "path", o.CSV)
	}
	if o.Metrics != "" {
		if err := report.SaveMetrics(o.Metrics, run); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		slog.Info("metrics written", "path", o.Metrics)
	}
	return nil
}
