package cli

import (
	"errors"

	"github.com/vk/tsrun/internal/runner"
)

// Process exit codes.
const (
	ExitOK = 0
	// ExitFailure covers a missing argument, a compile failure and a run
	// failure unless distinct codes were requested.
	ExitFailure      = 1
	ExitInvalidFlags = 2

	ExitUsageDistinct   = 2
	ExitCompileDistinct = 3
	ExitRunDistinct     = 4
)

func usageCode(distinct bool) int {
	if distinct {
		return ExitUsageDistinct
	}
	return ExitFailure
}

// Exit translates a run error into an ExitError carrying the message to print
// and the status to exit with. Errors that are not pipeline outcomes are
// returned unchanged, and nil stays nil.
func Exit(err error, distinct bool) error {
	if err == nil {
		return nil
	}

	var se *runner.StageError
	switch {
	case errors.As(err, &se):
		code := ExitFailure
		if distinct {
			code = ExitCompileDistinct
			if se.Stage == runner.StageRunning {
				code = ExitRunDistinct
			}
		}
		return &ExitError{Code: code, Message: se.Error(), Stdout: true}
	default:
		return err
	}
}
