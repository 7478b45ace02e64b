package process

import (
	"errors"
	"fmt"
	"strings"
)

// LaunchError means the command could not be started at all, usually because
// the binary is missing from PATH.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// SignaledError means the process was terminated by a signal. A timeout kill
// is reported this way with TimedOut set.
type SignaledError struct {
	Command  string
	ExitCode int
	Signal   string
	TimedOut bool
}

func (e *SignaledError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%s: timed out (signal %s)", e.Command, e.Signal)
	}
	return fmt.Sprintf("%s: terminated by signal %s", e.Command, e.Signal)
}

// FailedError means the process ran to completion with a non-zero exit code.
// Stdout and Stderr are kept verbatim so callers can show the tool's own
// diagnostics.
type FailedError struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *FailedError) Error() string {
	if detail := strings.TrimSpace(e.Stderr); detail != "" {
		return fmt.Sprintf("%s: exit status %d: %s", e.Command, e.ExitCode, detail)
	}
	return fmt.Sprintf("%s: exit status %d", e.Command, e.ExitCode)
}

// IsInfrastructure reports whether err is a launch or signal failure rather
// than an error reported by the tool itself.
func IsInfrastructure(err error) bool {
	var launchErr *LaunchError
	var sigErr *SignaledError
	return errors.As(err, &launchErr) || errors.As(err, &sigErr)
}

// ToolOutput extracts the captured output carried by a FailedError anywhere in
// err's chain.
func ToolOutput(err error) (stdout, stderr string, ok bool) {
	var failed *FailedError
	if !errors.As(err, &failed) {
		return "", "", false
	}
	return failed.Stdout, failed.Stderr, true
}

// ExitCode returns the exit code carried by err, or -1 when there is none.
func ExitCode(err error) int {
	var failed *FailedError
	if errors.As(err, &failed) {
		return failed.ExitCode
	}
	var sigErr *SignaledError
	if errors.As(err, &sigErr) {
		return sigErr.ExitCode
	}
	return -1
}
