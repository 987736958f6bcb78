// Package builder compiles the subject program and its input generator.
package builder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// BuiltinGenerator as a generator source means "use the harness's own generator",
// so nothing is compiled for it.
const BuiltinGenerator = "builtin"

// Toolchain is a compiler plus the flags passed before the source file.
type Toolchain struct {
	Compiler string   `mapstructure:"compiler" yaml:"compiler"`
	Flags    []string `mapstructure:"flags" yaml:"flags"`
}

// Plan describes both compilations.
type Plan struct {
	SubjectSource   string
	SubjectOutput   string
	Subject         Toolchain
	GeneratorSource string
	GeneratorOutput string
	Generator       Toolchain
}

// Artifacts are the executables produced by Build. Generator is empty when the
// builtin generator was requested.
type Artifacts struct {
	Subject   string
	Generator string
}

// BuildError reports a failed compilation.
type BuildError struct {
	Source   string
	Output   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("build of %s failed (exit %d)", e.Source, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ":\n" + s
	}
	return msg
}

func (e *BuildError) Unwrap() error { return e.Err }

// ExecutableName applies the platform convention for executables.
func ExecutableName(base, goos string) string {
	if goos == "windows" && !strings.HasSuffix(base, ".exe") {
		return base + ".exe"
	}
	return base
}

// Compile invokes `compiler flags... source -o output`.
func Compile(ctx context.Context, tc Toolchain, source, output string) error {
	args := append(append([]string{}, tc.Flags...), source, "-o", output)
	slog.Debug("compiling", "compiler", tc.Compiler, "args", args)

	cmd := exec.CommandContext(ctx, tc.Compiler, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &BuildError{Source: source, Output: output, ExitCode: code, Stderr: stderr.String(), Err: err}
	}
	return nil
}

// Build compiles the subject and then the generator, stopping at the first failure.
func Build(ctx context.Context, p Plan) (Artifacts, error) {
	if err := Compile(ctx, p.Subject, p.SubjectSource, p.SubjectOutput); err != nil {
		return Artifacts{}, err
	}
	art := Artifacts{Subject: p.SubjectOutput}

	if p.GeneratorSource == BuiltinGenerator {
		slog.Debug("using builtin generator, skipping compilation")
		return art, nil
	}
	if err := Compile(ctx, p.Generator, p.GeneratorSource, p.GeneratorOutput); err != nil {
		return Artifacts{}, err
	}
	art.Generator = p.GeneratorOutput
	return art, nil
}
