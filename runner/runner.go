// Package runner generates input for each size and times repeated subject executions.
//
// Execution is strictly sequential: one subprocess at a time, so that no scheduling
// contention inflates the wall-clock measurements.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"scaling_bench_go/stats"
	common "scaling_bench_go/utils"
)

// Program is an executable plus fixed leading arguments.
type Program struct {
	Path string
	Args []string
}

func (p Program) command(ctx context.Context, extra ...string) *exec.Cmd {
	args := append(append([]string{}, p.Args...), extra...)
	return exec.CommandContext(ctx, p.Path, args...)
}

func (p Program) String() string {
	return strings.Join(append([]string{p.Path}, p.Args...), " ")
}

// Config controls a benchmark run.
type Config struct {
	Sizes      []int
	Trials     int
	MaxValue   int
	Seed       int64
	InputFile  string        // Transient input file, overwritten per size
	Timeout    time.Duration // Per invocation; zero disables it
	Complexity stats.Complexity
}

// Validate rejects configurations the runner cannot honor.
func (c Config) Validate() error {
	if len(c.Sizes) == 0 {
		return errors.New("no sizes configured")
	}
	for _, n := range c.Sizes {
		if n <= 0 {
			return fmt.Errorf("size must be positive, got %d", n)
		}
	}
	if c.Trials < 1 {
		return fmt.Errorf("trial count must be at least 1, got %d", c.Trials)
	}
	if c.InputFile == "" {
		return errors.New("input file path is empty")
	}
	if c.Complexity.Cost == nil {
		return errors.New("no complexity configured")
	}
	return nil
}

// Runner executes the generate/trial loop.
type Runner struct {
	cfg       Config
	subject   Program
	generator Program

	// Progress, when set, is called after each size completes.
	Progress func(stats.SizeResult)
}

// New returns a Runner for the given subject and generator.
func New(cfg Config, subject, generator Program) *Runner {
	return &Runner{cfg: cfg, subject: subject, generator: generator}
}

// Run benchmarks every configured size in order. Any failure aborts the whole run and
// no partial results are returned. The transient input file is removed only on success.
func (r *Runner) Run(ctx context.Context) (stats.ResultSet, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	results := make(stats.ResultSet, 0, len(r.cfg.Sizes))
	for _, size := range r.cfg.Sizes {
		input, err := r.Generate(ctx, size)
		if err != nil {
			return nil, err
		}

		durations := make([]float64, 0, r.cfg.Trials)
		for trial := 0; trial < r.cfg.Trials; trial++ {
			elapsed, err := r.Time(ctx, size, trial, input)
			if err != nil {
				return nil, err
			}
			slog.Debug("trial finished", "size", size, "trial", trial, "seconds", elapsed)
			durations = append(durations, elapsed)
		}

		res := stats.Aggregate(size, durations, r.cfg.Complexity)
		results = append(results, res)
		if r.Progress != nil {
			r.Progress(res)
		}
	}

	if err := common.RemoveIfExists(r.cfg.InputFile); err != nil {
		slog.Warn("could not remove transient input file", "path", r.cfg.InputFile, "error", err)
	}
	return results, nil
}

// Generate invokes the generator with (size, max value, seed), stores its stdout in the
// transient input file and returns it.
func (r *Runner) Generate(ctx context.Context, size int) ([]byte, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cmd := r.generator.command(ctx,
		strconv.Itoa(size),
		strconv.Itoa(r.cfg.MaxValue),
		strconv.FormatInt(r.cfg.Seed, 10),
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, newExecutionError(ctx, StageGenerator, size, -1, &stderr, err)
	}

	input := stdout.Bytes()
	if err := os.WriteFile(r.cfg.InputFile, input, 0644); err != nil {
		return nil, fmt.Errorf("failed to write input file: %w", err)
	}
	slog.Debug("input generated", "size", size, "bytes", len(input), "path", r.cfg.InputFile)
	return input, nil
}

// Time runs the subject once with input on stdin, discarding its stdout, and returns
// the elapsed wall-clock time in seconds.
func (r *Runner) Time(ctx context.Context, size, trial int, input []byte) (float64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cmd := r.subject.command(ctx)
	cmd.Stdin = bytes.NewReader(input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		return 0, newExecutionError(ctx, StageSubject, size, trial, &stderr, err)
	}
	return elapsed.Seconds(), nil
}

func (r *Runner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, r.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}
