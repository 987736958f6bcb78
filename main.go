package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"scaling_bench_go/config"
)

var (
	v         = config.New()
	cfgFile   string
	overrides []string
)

var rootCmd = &cobra.Command{
	Use:   "scaling_bench",
	Short: "Scaling Bench - measure how a compiled program's run time grows with input size",
	Long: `Scaling Bench compiles a subject program and its input generator, runs the subject
across a range of input sizes, times repeated executions, and reports the mean and
standard deviation per size as a chart and a LaTeX table.

With no configuration it reproduces the classic setup: main.cpp and gerador_p1.cpp
compiled with g++, sizes 100..1200, 5 trials per size, seed 123, cubic cost metric.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().StringArrayVar(&overrides, "set", nil, "override a config key, e.g. --set run.trials=3 (repeatable)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	v.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(
		newRunCmd(),
		newBuildCmd(),
		newGenCmd(),
		newReportCmd(),
		newCompareCmd(),
		newConfigCmd(),
		newCheckCmd(),
		newVersionCmd(),
	)
}

// loadConfig resolves flags, overrides, environment and file into a validated Config
// and sets up logging.
func loadConfig() (config.Config, error) {
	if err := config.Read(v, cfgFile); err != nil {
		return config.Config{}, err
	}
	if err := config.ApplyOverrides(v, overrides); err != nil {
		return config.Config{}, err
	}
	c, err := config.Decode(v)
	if err != nil {
		return config.Config{}, err
	}
	config.InitLogger(os.Stderr, c.Verbose)
	return c, nil
}

func printVersion() {
	fmt.Println("Scaling Bench - Version Information Menu")
	fmt.Println("Central Executable:")
	fmt.Printf("\tScaling Bench:\t\t%s\n", config.Main_version)
	fmt.Printf("\nPipeline stages:\n")
	fmt.Printf("\tBuilder:\t\t%s\n", config.Builder)
	fmt.Printf("\tInput Generator:\t%s\n", config.Generator)
	fmt.Printf("\tRunner:\t\t\t%s\n", config.Runner)
	fmt.Printf("\tStatistics:\t\t%s\n", config.Stats)
	fmt.Printf("\tReporter:\t\t%s\n", config.Reporter)
	fmt.Printf("\tBenchmark:\t\t%s\n", config.Benchmark)
	fmt.Println("")
}

// Main controller
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
