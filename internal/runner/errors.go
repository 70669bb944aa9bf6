package runner

import (
	"errors"
	"fmt"
)

// StageError reports that an external tool exited with a nonzero status.
// Stage is StageCompiling for a compile failure and StageRunning for an
// execution failure.
type StageError struct {
	Stage   Stage
	Code    int
	Message string
	Err     error
}

// Error returns the user-facing failure message.
func (e *StageError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s stage exited with code %d", e.Stage, e.Code)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// IsCompileError reports whether err is a failure of the compile stage.
func IsCompileError(err error) bool {
	var se *StageError
	return errors.As(err, &se) && se.Stage == StageCompiling
}

// IsRunError reports whether err is a failure of the run stage.
func IsRunError(err error) bool {
	var se *StageError
	return errors.As(err, &se) && se.Stage == StageRunning
}
