package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/tsrun/internal/ctxlog"
	"github.com/vk/tsrun/internal/executor"
	"github.com/vk/tsrun/internal/fsutil"
	"github.com/vk/tsrun/internal/notify"
	"github.com/vk/tsrun/internal/toolchain"
)

// Runner compiles a source file and then executes the compiled output.
type Runner struct {
	toolchain *toolchain.Toolchain
	exec      executor.Executor
	notifier  notify.Notifier
	// timeout bounds each stage separately. Zero means no limit.
	timeout time.Duration
}

// Result records how far a run got.
type Result struct {
	Source string
	Output string
	// Stage is the terminal stage, StageDone or StageFailed.
	Stage Stage
	// FailedAt is the stage that failed; only meaningful when Stage is StageFailed.
	FailedAt Stage
}

// New creates a Runner. A nil notifier disables stage events.
func New(tc *toolchain.Toolchain, exec executor.Executor, notifier notify.Notifier, timeout time.Duration) *Runner {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Runner{toolchain: tc, exec: exec, notifier: notifier, timeout: timeout}
}

// OutputPath derives the compiled output path for source.
func (r *Runner) OutputPath(source string) string {
	return fsutil.ReplaceExtension(source, r.toolchain.TargetExtension)
}

// Run compiles source and, only if compilation succeeds, executes the output.
// A nonzero exit from either tool is reported as a *StageError carrying the
// tool's failure message.
func (r *Runner) Run(ctx context.Context, source string) (*Result, error) {
	res := &Result{Source: source, Stage: StageAwaitingArgs}

	res.Output = r.OutputPath(source)
	ctx = ctxlog.With(ctx, "source", res.Source, "output", res.Output)
	logger := ctxlog.FromContext(ctx)
	if res.Output == source {
		logger.Warn("Derived output path equals the source path; the compiler will overwrite its input.")
	}

	res.Stage = res.Stage.next()
	if err := r.runStage(ctx, res, r.toolchain.Compiler); err != nil {
		return r.fail(res, StageCompiling), err
	}

	res.Stage = res.Stage.next()
	if err := r.runStage(ctx, res, r.toolchain.Runtime); err != nil {
		return r.fail(res, StageRunning), err
	}

	res.Stage = res.Stage.next()
	logger.Info("Pipeline finished.", "stage", res.Stage)
	return res, nil
}

func (r *Runner) fail(res *Result, at Stage) *Result {
	res.FailedAt = at
	res.Stage = StageFailed
	return res
}

// runStage builds the tool's command, executes it and publishes the outcome.
func (r *Runner) runStage(ctx context.Context, res *Result, tool *toolchain.Tool) error {
	stage := res.Stage
	ctx = ctxlog.With(ctx, "stage", stage.String())
	logger := ctxlog.FromContext(ctx)

	cmd, err := tool.Command(res.Source, res.Output)
	if err != nil {
		return fmt.Errorf("failed to build %s command: %w", stage, err)
	}

	// The limit covers the child process only; the stage event is still
	// published after a timeout.
	execCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	logger.Info("Stage started.", "tool", tool.Name, "argv", cmd.Argv())
	out := r.exec.Execute(execCtx, cmd)
	logger.Info("Stage finished.", "exit_code", out.Code, "duration", out.Duration)

	ev := notify.Event{
		Stage:     stage.String(),
		Source:    res.Source,
		Output:    res.Output,
		Argv:      cmd.Argv(),
		ExitCode:  out.Code,
		Succeeded: out.Succeeded(),
		Duration:  out.Duration,
	}
	if err := r.notifier.Notify(ctx, ev); err != nil {
		logger.Warn("Failed to publish stage event.", "error", err)
	}

	if !out.Succeeded() {
		if out.Err != nil {
			logger.Error("Stage failed.", "exit_code", out.Code, "error", out.Err)
		}
		return &StageError{Stage: stage, Code: out.Code, Message: tool.FailureMessage, Err: out.Err}
	}
	return nil
}
