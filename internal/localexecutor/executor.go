// Package localexecutor provides a concrete, in-process implementation of the
// executor.Executor interface backed by os/exec.
package localexecutor

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/vk/tsrun/internal/ctxlog"
	"github.com/vk/tsrun/internal/executor"
)

const waitDelay = 2 * time.Second

// Executor runs commands as child processes. The child inherits the
// configured standard streams, so compiler diagnostics and program output
// appear directly to the user.
type Executor struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// New creates an executor wired to the process's own standard streams.
func New() *Executor {
	return NewWithStreams(os.Stdin, os.Stdout, os.Stderr)
}

// NewWithStreams creates an executor wired to the given streams.
func NewWithStreams(stdin io.Reader, stdout, stderr io.Writer) *Executor {
	return &Executor{stdin: stdin, stdout: stdout, stderr: stderr}
}

// Execute implements executor.Executor. It blocks until the child exits or
// ctx is done.
func (e *Executor) Execute(ctx context.Context, c executor.Command) executor.Result {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting process.", "argv", c.Argv())

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = e.stdin
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	// Grandchildren that inherit a pipe must not keep Wait blocked after cancellation.
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	res := executor.Result{Err: err, Duration: time.Since(start)}
	if err != nil {
		res.Code = exitCode(ctx, err)
	}

	logger.Debug("Process finished.", "exit_code", res.Code, "duration", res.Duration)
	return res
}

func exitCode(ctx context.Context, err error) int {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return executor.CodeTimeout
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
		// Killed by a signal.
		return 1
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return executor.CodeNotFound
	}
	return 1
}
