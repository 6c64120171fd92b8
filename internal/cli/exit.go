package cli

import (
	"errors"
	"fmt"

	"github.com/jhuilla/gate/internal/config"
)

// Exit codes of the gate binary.
const (
	ExitPass  = 0
	ExitFail  = 1
	ExitUsage = config.ExitCode
)

// ExitError ends the process with Code. It carries no message of its own;
// whatever needed saying was already written.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

func (e *ExitError) ExitCode() int { return e.Code }

// ExitCode maps an error returned by Execute to a process exit code:
// nil is 0, errors exposing ExitCode() use it, anything else is a usage
// or unexpected error and maps to 2.
func ExitCode(err error) int {
	if err == nil {
		return ExitPass
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitUsage
}

// Silent reports whether err should end the process without a message.
func Silent(err error) bool {
	var e *ExitError
	return errors.As(err, &e)
}
