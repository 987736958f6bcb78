package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Stage names the process that failed.
type Stage string

const (
	StageGenerator Stage = "generator"
	StageSubject   Stage = "subject"
)

// ExecutionError reports a generator or subject process that failed during a run.
type ExecutionError struct {
	Stage    Stage
	Size     int
	Trial    int // -1 for the generator
	ExitCode int // -1 when the process did not exit normally
	TimedOut bool
	Stderr   string
	Err      error
}

func (e *ExecutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s execution failed for size %d", e.Stage, e.Size)
	if e.Trial >= 0 {
		fmt.Fprintf(&b, " (trial %d)", e.Trial+1)
	}
	switch {
	case e.TimedOut:
		b.WriteString(": timed out")
	case e.ExitCode >= 0:
		fmt.Fprintf(&b, ": exit status %d", e.ExitCode)
	default:
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		b.WriteString("\n" + s)
	}
	return b.String()
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func newExecutionError(ctx context.Context, stage Stage, size, trial int, stderr *bytes.Buffer, err error) *ExecutionError {
	e := &ExecutionError{
		Stage:    stage,
		Size:     size,
		Trial:    trial,
		ExitCode: -1,
		TimedOut: errors.Is(ctx.Err(), context.DeadlineExceeded),
		Stderr:   stderr.String(),
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && !e.TimedOut {
		e.ExitCode = exitErr.ExitCode()
	}
	return e
}
