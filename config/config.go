package config // Harness configuration: defaults, file, environment and key=value overrides

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"scaling_bench_go/builder"
	"scaling_bench_go/report"
	"scaling_bench_go/runner"
	"scaling_bench_go/stats"
	common "scaling_bench_go/utils"
)

// EnvPrefix prefixes every environment override, e.g. SCALING_BENCH_RUN_TRIALS.
const EnvPrefix = "SCALING_BENCH"

// DefaultFile is looked up in the working directory when no --config is given.
const DefaultFile = "bench.yaml"

// Program is one source file and the executable compiled from it.
type Program struct {
	Source     string   `mapstructure:"source" yaml:"source"`
	Executable string   `mapstructure:"executable" yaml:"executable"`
	Compiler   string   `mapstructure:"compiler" yaml:"compiler"`
	Flags      []string `mapstructure:"flags" yaml:"flags"`
}

func (p Program) toolchain() builder.Toolchain {
	return builder.Toolchain{Compiler: p.Compiler, Flags: p.Flags}
}

// Run holds the measurement parameters.
type Run struct {
	Sizes      []int         `mapstructure:"sizes" yaml:"sizes"`
	Trials     int           `mapstructure:"trials" yaml:"trials"`
	MaxValue   int           `mapstructure:"max_value" yaml:"max_value"`
	Seed       int64         `mapstructure:"seed" yaml:"seed"`
	InputFile  string        `mapstructure:"input_file" yaml:"input_file"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Complexity string        `mapstructure:"complexity" yaml:"complexity"`
}

// Output selects what is written after a successful run. Empty paths disable an output.
type Output struct {
	Chart   string `mapstructure:"chart" yaml:"chart"`
	Title   string `mapstructure:"title" yaml:"title"`
	Latex   bool   `mapstructure:"latex" yaml:"latex"`
	Results string `mapstructure:"results" yaml:"results"`
	CSV     string `mapstructure:"csv" yaml:"csv"`
	Metrics string `mapstructure:"metrics" yaml:"metrics"`
}

// Config is the complete harness configuration.
type Config struct {
	Subject     Program `mapstructure:"subject" yaml:"subject"`
	Generator   Program `mapstructure:"generator" yaml:"generator"`
	Run         Run     `mapstructure:"run" yaml:"run"`
	Output      Output  `mapstructure:"output" yaml:"output"`
	Verbose     bool    `mapstructure:"verbose" yaml:"verbose"`
	SelfProfile bool    `mapstructure:"self_profile" yaml:"self_profile"`
}

// Defaults reproduces the fixed constants of the original harness.
func Defaults() Config {
	return Config{
		Subject: Program{
			Source:     "main.cpp",
			Executable: "proj1",
			Compiler:   "g++",
			Flags:      []string{"-std=c++11", "-O3", "-Wall"},
		},
		Generator: Program{
			Source:     "gerador_p1.cpp",
			Executable: "gen",
			Compiler:   "g++",
			Flags:      []string{"-O3"},
		},
		Run: Run{
			Sizes:      append([]int(nil), defaultSizes...),
			Trials:     5,
			MaxValue:   1000,
			Seed:       123,
			InputFile:  "input.txt",
			Complexity: stats.Cubic.Name,
		},
		Output: Output{
			Chart: report.DefaultChartFile,
			Latex: true,
		},
	}
}

// setDefaults registers every key so that environment variables can override it.
func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("subject.source", d.Subject.Source)
	v.SetDefault("subject.executable", d.Subject.Executable)
	v.SetDefault("subject.compiler", d.Subject.Compiler)
	v.SetDefault("subject.flags", d.Subject.Flags)
	v.SetDefault("generator.source", d.Generator.Source)
	v.SetDefault("generator.executable", d.Generator.Executable)
	v.SetDefault("generator.compiler", d.Generator.Compiler)
	v.SetDefault("generator.flags", d.Generator.Flags)
	v.SetDefault("run.sizes", d.Run.Sizes)
	v.SetDefault("run.trials", d.Run.Trials)
	v.SetDefault("run.max_value", d.Run.MaxValue)
	v.SetDefault("run.seed", d.Run.Seed)
	v.SetDefault("run.input_file", d.Run.InputFile)
	v.SetDefault("run.timeout", d.Run.Timeout)
	v.SetDefault("run.complexity", d.Run.Complexity)
	v.SetDefault("output.chart", d.Output.Chart)
	v.SetDefault("output.title", d.Output.Title)
	v.SetDefault("output.latex", d.Output.Latex)
	v.SetDefault("output.results", d.Output.Results)
	v.SetDefault("output.csv", d.Output.CSV)
	v.SetDefault("output.metrics", d.Output.Metrics)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("self_profile", d.SelfProfile)
}

// New returns a viper instance with defaults and environment binding in place.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Read loads .env and the config file. An explicit cfgFile must exist; the default
// bench.yaml is optional.
func Read(v *viper.Viper, cfgFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env", "error", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(strings.TrimSuffix(DefaultFile, ".yaml"))
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	slog.Debug("using config file", "path", v.ConfigFileUsed())
	return nil
}

// ApplyOverrides sets each key=value pair on v, taking precedence over file and environment.
func ApplyOverrides(v *viper.Viper, overrides []string) error {
	for key, value := range ParseArgs(overrides).Params {
		if value == "" {
			return fmt.Errorf("override %q is missing a value (want key=value)", key)
		}
		if !v.IsSet(key) {
			return fmt.Errorf("unknown configuration key %q", key)
		}
		v.Set(key, value)
	}
	return nil
}

var defaultSizes, _ = common.SizeRange(100, 1200, 100)

// ParseSizes accepts a comma separated list ("100,200,400") or an
// inclusive range with an optional step ("100..1200:100", step defaults to 100).
func ParseSizes(s string) ([]int, error) {
	start, rest, isRange := strings.Cut(s, "..")
	if !isRange {
		return common.ParseIntList(s)
	}
	end, step, hasStep := strings.Cut(rest, ":")
	if !hasStep {
		step = "100"
	}
	bounds, err := common.ParseIntList(strings.Join([]string{start, end, step}, ","))
	if err != nil {
		return nil, fmt.Errorf("invalid size range %q: %w", s, err)
	}
	return common.SizeRange(bounds[0], bounds[1], bounds[2])
}

// Decode unmarshals and validates the effective configuration.
func Decode(v *viper.Viper) (Config, error) {
	// Sizes given as a string come from the environment or --set.
	if raw, ok := v.Get("run.sizes").(string); ok {
		sizes, err := ParseSizes(raw)
		if err != nil {
			return Config{}, err
		}
		v.Set("run.sizes", sizes)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks what can be checked before anything is executed.
func (c Config) Validate() error {
	rc, err := c.RunnerConfig()
	if err != nil {
		return err
	}
	if err := rc.Validate(); err != nil {
		return err
	}
	if c.Subject.Source == "" || c.Subject.Executable == "" {
		return errors.New("subject source and executable are required")
	}
	if c.Generator.Source == "" {
		return errors.New("generator source is required (use \"builtin\" for the internal generator)")
	}
	if c.Generator.Source != builder.BuiltinGenerator && c.Generator.Executable == "" {
		return errors.New("generator executable is required")
	}
	return nil
}

// RunnerConfig converts the run section for the runner package.
func (c Config) RunnerConfig() (runner.Config, error) {
	cx, err := stats.ParseComplexity(c.Run.Complexity)
	if err != nil {
		return runner.Config{}, err
	}
	return runner.Config{
		Sizes:      c.Run.Sizes,
		Trials:     c.Run.Trials,
		MaxValue:   c.Run.MaxValue,
		Seed:       c.Run.Seed,
		InputFile:  c.Run.InputFile,
		Timeout:    c.Run.Timeout,
		Complexity: cx,
	}, nil
}

// BuildPlan names the executables according to goos.
func (c Config) BuildPlan(goos string) builder.Plan {
	return builder.Plan{
		SubjectSource:   c.Subject.Source,
		SubjectOutput:   builder.ExecutableName(c.Subject.Executable, goos),
		Subject:         c.Subject.toolchain(),
		GeneratorSource: c.Generator.Source,
		GeneratorOutput: builder.ExecutableName(c.Generator.Executable, goos),
		Generator:       c.Generator.toolchain(),
	}
}

// WriteDefaults writes the default configuration as YAML. Existing files are kept
// unless force is set.
func WriteDefaults(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("failed to marshal defaults: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Options holds key=value pairs given on the command line
type Options struct {
	Params map[string]string
}

// ParseArgs splits each "key=value" argument. A bare "key" maps to "".
func ParseArgs(args []string) Options {
	opts := Options{Params: make(map[string]string)}
	for _, arg := range args {
		kv := splitOption(arg)
		opts.Params[kv[0]] = kv[1]
	}
	return opts
}

// splitOption cuts at the first '='
func splitOption(arg string) [2]string {
	var kv [2]string
	for i, ch := range arg {
		if ch == '=' {
			kv[0] = arg[:i]
			kv[1] = arg[i+1:]
			return kv
		}
	}
	kv[0] = arg
	kv[1] = ""
	return kv
}
