package runner

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scaling_bench_go/generator"
	"scaling_bench_go/stats"
)

// helperArgs returns the arguments following "--" in the re-executed test binary.
func helperArgs() []string {
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) == 0 {
		return nil
	}
	return args[1:]
}

func appendLine(path, line string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		os.Exit(10)
	}
	fmt.Fprintln(f, line)
	f.Close()
}

// TestHelperGenerator acts as the input generator: args are size, max value, seed.
func TestHelperGenerator(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := helperArgs()
	appendLine(os.Getenv("HELPER_GEN_LOG"), strings.Join(args, " "))
	if os.Getenv("HELPER_GEN_FAIL") == "1" {
		fmt.Fprintln(os.Stderr, "generator exploded")
		os.Exit(4)
	}
	size, _ := strconv.Atoi(args[0])
	maxValue, _ := strconv.Atoi(args[1])
	seed, _ := strconv.ParseInt(args[2], 10, 64)
	if err := generator.Generate(os.Stdout, size, maxValue, seed); err != nil {
		os.Exit(5)
	}
	os.Exit(0)
}

// TestHelperSubject acts as the program under test: it hashes stdin, optionally sleeps
// size/HELPER_SLEEP_DIVISOR seconds and fails for size HELPER_FAIL_SIZE.
func TestHelperSubject(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	data, _ := io.ReadAll(os.Stdin)
	sum := sha256.Sum256(data)

	line, _ := bufio.NewReader(strings.NewReader(string(data))).ReadString('\n')
	size, _ := strconv.Atoi(strings.TrimSpace(line))
	appendLine(os.Getenv("HELPER_SUBJECT_LOG"), fmt.Sprintf("%d %s", size, hex.EncodeToString(sum[:])))

	if div, err := strconv.ParseFloat(os.Getenv("HELPER_SLEEP_DIVISOR"), 64); err == nil && div > 0 {
		time.Sleep(time.Duration(float64(size) / div * float64(time.Second)))
	}
	if os.Getenv("HELPER_FAIL_SIZE") == strconv.Itoa(size) {
		os.Exit(7)
	}
	fmt.Println("discarded output")
	os.Exit(0)
}

type fixture struct {
	dir        string
	genLog     string
	subjectLog string
	subject    Program
	generator  Program
}

func newFixture(t *testing.T) fixture {
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	dir := t.TempDir()
	f := fixture{
		dir:        dir,
		genLog:     filepath.Join(dir, "gen.log"),
		subjectLog: filepath.Join(dir, "subject.log"),
		subject:    Program{Path: os.Args[0], Args: []string{"-test.run=^TestHelperSubject$", "--"}},
		generator:  Program{Path: os.Args[0], Args: []string{"-test.run=^TestHelperGenerator$", "--"}},
	}
	t.Setenv("HELPER_GEN_LOG", f.genLog)
	t.Setenv("HELPER_SUBJECT_LOG", f.subjectLog)
	return f
}

func (f fixture) config(sizes []int, trials int) Config {
	return Config{
		Sizes:      sizes,
		Trials:     trials,
		MaxValue:   1000,
		Seed:       123,
		InputFile:  filepath.Join(f.dir, "input.txt"),
		Complexity: stats.Cubic,
	}
}

func readLines(t *testing.T, path string) []string {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestRun_OrderTrialsAndSharedInput(t *testing.T) {
	f := newFixture(t)
	cfg := f.config([]int{30, 10, 20}, 3)

	var progressed []int
	r := New(cfg, f.subject, f.generator)
	r.Progress = func(res stats.SizeResult) { progressed = append(progressed, res.Size) }

	results, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 3)
	for i, size := range cfg.Sizes {
		assert.Equal(t, size, results[i].Size)
		assert.Equal(t, stats.Cubic.Cost(size), results[i].Cost)
		assert.Len(t, results[i].Trials, 3)
	}
	assert.Equal(t, []int{30, 10, 20}, progressed)

	// One generation per size, size first and fixed seed.
	assert.Equal(t, []string{"30 1000 123", "10 1000 123", "20 1000 123"}, readLines(t, f.genLog))

	// Three trials per size, all fed the identical blob.
	lines := readLines(t, f.subjectLog)
	require.Len(t, lines, 9)
	for i := 0; i < len(lines); i += 3 {
		assert.Equal(t, lines[i], lines[i+1])
		assert.Equal(t, lines[i], lines[i+2])
	}
	assert.True(t, strings.HasPrefix(lines[0], "30 "))

	assert.NoFileExists(t, cfg.InputFile)
}

func TestGenerate_DeterministicAndPersisted(t *testing.T) {
	f := newFixture(t)
	cfg := f.config([]int{50}, 1)
	r := New(cfg, f.subject, f.generator)

	first, err := r.Generate(context.Background(), 50)
	require.NoError(t, err)
	second, err := r.Generate(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	onDisk, err := os.ReadFile(cfg.InputFile)
	require.NoError(t, err)
	assert.Equal(t, second, onDisk)
	assert.True(t, strings.HasPrefix(string(first), "50\n"))
}

func TestRun_SubjectFailureAborts(t *testing.T) {
	f := newFixture(t)
	t.Setenv("HELPER_FAIL_SIZE", "20")
	cfg := f.config([]int{10, 20, 30}, 2)

	var progressed []int
	r := New(cfg, f.subject, f.generator)
	r.Progress = func(res stats.SizeResult) { progressed = append(progressed, res.Size) }

	results, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, results)

	var execErr *ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, StageSubject, execErr.Stage)
	assert.Equal(t, 20, execErr.Size)
	assert.Equal(t, 0, execErr.Trial)
	assert.Equal(t, 7, execErr.ExitCode)
	assert.False(t, execErr.TimedOut)
	assert.Contains(t, err.Error(), "subject execution failed for size 20")

	assert.Equal(t, []int{10}, progressed)
	// Size 30 was never generated.
	assert.Len(t, readLines(t, f.genLog), 2)
}

func TestRun_GeneratorFailure(t *testing.T) {
	f := newFixture(t)
	t.Setenv("HELPER_GEN_FAIL", "1")
	r := New(f.config([]int{10}, 1), f.subject, f.generator)

	_, err := r.Run(context.Background())

	var execErr *ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, StageGenerator, execErr.Stage)
	assert.Equal(t, -1, execErr.Trial)
	assert.Equal(t, 4, execErr.ExitCode)
	assert.Contains(t, execErr.Error(), "generator exploded")
	assert.NoFileExists(t, f.subjectLog)
}

func TestRun_Timeout(t *testing.T) {
	f := newFixture(t)
	t.Setenv("HELPER_SLEEP_DIVISOR", "10")
	cfg := f.config([]int{100}, 1)
	cfg.Timeout = 200 * time.Millisecond

	_, err := New(cfg, f.subject, f.generator).Run(context.Background())

	var execErr *ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.True(t, execErr.TimedOut)
	assert.Contains(t, execErr.Error(), "timed out")
}

func TestRun_EndToEndTiming(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps for several seconds")
	}
	f := newFixture(t)
	t.Setenv("HELPER_SLEEP_DIVISOR", "100")
	cfg := f.config([]int{100, 200}, 2)

	results, err := New(cfg, f.subject, f.generator).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.InDelta(t, 1.0, results[0].Mean, 0.3)
	assert.InDelta(t, 2.0, results[1].Mean, 0.3)
	assert.Equal(t, 1000000.0, results[0].Cost)
	assert.Equal(t, 8000000.0, results[1].Cost)
	assert.Less(t, results[0].StdDev, 0.3)
	assert.NoFileExists(t, cfg.InputFile)
}

func TestConfigValidate(t *testing.T) {
	base := Config{Sizes: []int{1}, Trials: 1, InputFile: "input.txt", Complexity: stats.Cubic}
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"no sizes":      func(c *Config) { c.Sizes = nil },
		"negative size": func(c *Config) { c.Sizes = []int{10, -1} },
		"zero trials":   func(c *Config) { c.Trials = 0 },
		"no input file": func(c *Config) { c.InputFile = "" },
		"no complexity": func(c *Config) { c.Complexity = stats.Complexity{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestProgramString(t *testing.T) {
	assert.Equal(t, "./gen --fast", Program{Path: "./gen", Args: []string{"--fast"}}.String())
}
