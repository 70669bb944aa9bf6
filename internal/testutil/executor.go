package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vk/tsrun/internal/executor"
)

// RecordingExecutor is an executor.Executor that never starts a process. It
// records every command and answers with the exit code scripted for the
// command's program name (0 when none was scripted).
type RecordingExecutor struct {
	mu       sync.Mutex
	codes    map[string]int
	commands []executor.Command
	// Deadlines records, per call, whether the context carried a deadline.
	deadlines []bool
}

// NewRecordingExecutor creates an executor that succeeds for every program.
func NewRecordingExecutor() *RecordingExecutor {
	return &RecordingExecutor{codes: make(map[string]int)}
}

// ExitWith scripts the exit code returned for program and returns the
// executor for chaining.
func (e *RecordingExecutor) ExitWith(program string, code int) *RecordingExecutor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.codes[program] = code
	return e
}

// Execute implements executor.Executor.
func (e *RecordingExecutor) Execute(ctx context.Context, cmd executor.Command) executor.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commands = append(e.commands, cmd)
	_, hasDeadline := ctx.Deadline()
	e.deadlines = append(e.deadlines, hasDeadline)
	return executor.Result{Code: e.codes[cmd.Name], Duration: time.Millisecond}
}

// Commands returns the recorded commands in invocation order.
func (e *RecordingExecutor) Commands() []executor.Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]executor.Command(nil), e.commands...)
}

// Calls returns how many times program was invoked.
func (e *RecordingExecutor) Calls(program string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, c := range e.commands {
		if c.Name == program {
			n++
		}
	}
	return n
}

// Deadlines reports, per call, whether the context carried a deadline.
func (e *RecordingExecutor) Deadlines() []bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]bool(nil), e.deadlines...)
}
