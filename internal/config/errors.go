package config

import "fmt"

// ExitCode is the process exit code for configuration and usage errors.
const ExitCode = 2

// Error is a recoverable configuration problem: an unreadable file,
// malformed YAML, a schema violation, or a reference to an unknown
// phase or gate.
type Error struct {
	Msg string
	Err error
}

// Errorf builds an *Error with a formatted single-line message.
// cause may be nil.
func Errorf(cause error, format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...), Err: cause}
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

// ExitCode reports the exit code hint for configuration errors.
func (e *Error) ExitCode() int { return ExitCode }

// FieldError is the first schema violation found by Validate.
type FieldError struct {
	Path   string // dotted field path, e.g. "phases.fast"
	Reason string
}

func (e *FieldError) Error() string {
	path := e.Path
	if path == "" {
		path = "(root)"
	}
	return path + ": " + e.Reason
}
