package executor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Conventional exit codes reported when the child never produced one.
const (
	// CodeTimeout is reported when the stage deadline expired.
	CodeTimeout = 124
	// CodeNotFound is reported when the executable could not be located.
	CodeNotFound = 127
)

// Command is a single process invocation.
type Command struct {
	Name string
	Args []string
}

// Argv returns the full argument vector, program name first.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command for logs and dry-run output.
func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// Result describes how a command finished. Code is the child's exit status;
// Err holds the underlying error, if any, for diagnostics.
type Result struct {
	Code     int
	Err      error
	Duration time.Duration
}

// Succeeded reports whether the command exited with status 0.
func (r Result) Succeeded() bool {
	return r.Code == 0
}

// Executor runs a command synchronously and reports its result.
type Executor interface {
	Execute(ctx context.Context, cmd Command) Result
}

// DryRun prints each command prefixed with "+ " instead of running it, and
// reports success.
type DryRun struct {
	w io.Writer
}

// NewDryRun creates a dry-run executor writing to w.
func NewDryRun(w io.Writer) *DryRun {
	return &DryRun{w: w}
}

// Execute implements Executor.
func (d *DryRun) Execute(_ context.Context, cmd Command) Result {
	fmt.Fprintln(d.w, "+ "+cmd.String())
	return Result{}
}
