package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"

	"scaling_bench_go/benchmark"
	"scaling_bench_go/builder"
	"scaling_bench_go/config"
	"scaling_bench_go/generator"
	"scaling_bench_go/pipeline"
	"scaling_bench_go/report"
	"scaling_bench_go/runner"
	common "scaling_bench_go/utils"
)

// builtinGenerator re-invokes this executable's gen command.
func builtinGenerator() (runner.Program, error) {
	self, err := os.Executable()
	if err != nil {
		return runner.Program{}, fmt.Errorf("cannot locate own executable for the builtin generator: %w", err)
	}
	return runner.Program{Path: self, Args: []string{"gen"}}, nil
}

func newRunCmd() *cobra.Command {
	var skipBuild bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compile, benchmark every size, then render the chart and LaTeX table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			builtin, err := builtinGenerator()
			if err != nil {
				return err
			}
			p := pipeline.New(c, cmd.OutOrStdout(), builtin)
			p.SkipBuild = skipBuild

			if !c.SelfProfile {
				_, err := p.Execute(cmd.Context())
				return err
			}
			benchmark.Snapshot().Report(cmd.ErrOrStderr())
			usage, err := benchmark.Measure("scaling_bench run", func() error {
				_, err := p.Execute(cmd.Context())
				return err
			})
			usage.Report(cmd.ErrOrStderr())
			return err
		},
	}

	f := cmd.Flags()
	f.IntSlice("sizes", nil, "input sizes, ascending (default 100..1200 step 100)")
	f.Int("trials", 5, "timed executions per size")
	f.Int("max-value", 1000, "maximum value passed to the generator")
	f.Int64("seed", 123, "generator seed")
	f.String("complexity", "cubic", "cost metric: cubic, quadratic, nlogn, linear")
	f.Duration("timeout", 0, "per-invocation timeout (0 disables)")
	f.String("chart", report.DefaultChartFile, "chart file; extension selects png, svg, pdf or html")
	f.String("title", "", "chart title")
	f.Bool("latex", true, "print the LaTeX table")
	f.String("results", "", "append the run to this JSON results file")
	f.String("csv", "", "write per-size results as CSV")
	f.String("metrics", "", "write Prometheus textfile metrics")
	f.Bool("self-profile", false, "report the harness's own time and memory usage")
	f.BoolVar(&skipBuild, "skip-build", false, "reuse previously compiled executables")

	for key, flag := range map[string]string{
		"run.sizes":      "sizes",
		"run.trials":     "trials",
		"run.max_value":  "max-value",
		"run.seed":       "seed",
		"run.complexity": "complexity",
		"run.timeout":    "timeout",
		"output.chart":   "chart",
		"output.title":   "title",
		"output.latex":   "latex",
		"output.results": "results",
		"output.csv":     "csv",
		"output.metrics": "metrics",
		"self_profile":   "self-profile",
	} {
		v.BindPFlag(key, f.Lookup(flag))
	}
	return cmd
}

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Compile the subject and generator only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			art, err := builder.Build(cmd.Context(), c.BuildPlan(runtime.GOOS))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Built %s\n", art.Subject)
			if art.Generator != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Built %s\n", art.Generator)
			}
			return nil
		},
	}
}

func newGenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen <size> <max-value> <seed>",
		Short: "Write one deterministic input instance to stdout (the builtin generator)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid size %q", args[0])
			}
			maxValue, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid max value %q", args[1])
			}
			seed, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid seed %q", args[2])
			}
			return generator.Generate(cmd.OutOrStdout(), size, maxValue, seed)
		},
	}
}

func openStore(c config.Config) (*report.FileStore, error) {
	if c.Output.Results == "" {
		return nil, errors.New("no results file configured (set output.results or --set output.results=<path>)")
	}
	return report.NewFileStore(c.Output.Results)
}

func newReportCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Re-render the chart and tables of a stored run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(c)
			if err != nil {
				return err
			}
			var run *report.Run
			if id != "" {
				run, err = store.Load(id)
			} else {
				run, err = store.LoadLatest()
			}
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("no runs stored in %s", c.Output.Results)
			}

			out := c.Output
			out.Results = "" // already stored
			return pipeline.Publish(cmd.OutOrStdout(), out, *run)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "run id or unique prefix (default latest)")
	return cmd
}

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare [baseline-id [current-id]]",
		Short: "Compare mean times per size between two stored runs (default: the last two)",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(c)
			if err != nil {
				return err
			}
			runs, err := store.LoadAll()
			if err != nil {
				return err
			}
			var prev, curr *report.Run
			switch len(args) {
			case 2:
				if curr, err = store.Load(args[1]); err != nil {
					return err
				}
				fallthrough
			case 1:
				if prev, err = store.Load(args[0]); err != nil {
					return err
				}
			}
			if curr == nil && len(runs) > 0 {
				curr = &runs[len(runs)-1]
			}
			if prev == nil && len(runs) > 1 {
				prev = &runs[len(runs)-2]
			}
			if prev == nil || curr == nil {
				return fmt.Errorf("need two runs to compare, found %d stored", len(runs))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline %s -> current %s\n", prev.ID, curr.ID)
			report.WriteComparisons(cmd.OutOrStdout(), report.Compare(*prev, *curr))
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFile
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefaults(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}

// checkEnvironment reports every missing prerequisite rather than stopping at the first.
func checkEnvironment(w io.Writer, c config.Config) error {
	var problems []error
	check := func(ok bool, what string) {
		status := "ok"
		if !ok {
			status = "MISSING"
			problems = append(problems, errors.New(what+" not found"))
		}
		fmt.Fprintf(w, "  %-40s %s\n", what, status)
	}

	fmt.Fprintf(w, "Successfully running Scaling Bench! (%s)\n", config.Main_version)
	_, err := exec.LookPath(c.Subject.Compiler)
	check(err == nil, "compiler "+c.Subject.Compiler)
	check(common.FileExists(c.Subject.Source), "subject source "+c.Subject.Source)
	if c.Generator.Source != builder.BuiltinGenerator {
		if c.Generator.Compiler != c.Subject.Compiler {
			_, err := exec.LookPath(c.Generator.Compiler)
			check(err == nil, "compiler "+c.Generator.Compiler)
		}
		check(common.FileExists(c.Generator.Source), "generator source "+c.Generator.Source)
	}
	return errors.Join(problems...)
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the compiler and source files are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			return checkEnvironment(cmd.OutOrStdout(), c)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion()
		},
	}
}
