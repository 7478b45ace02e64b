package cvs

import (
	"fmt"
	"strings"

	"github.com/chmouel/lazycvs/internal/process"
)

// StatusToolError wraps a failure of the status listing.
type StatusToolError struct {
	Dir string
	Err error
}

func (e *StatusToolError) Error() string {
	return fmt.Sprintf("status of %s: %v", e.Dir, e.Err)
}

func (e *StatusToolError) Unwrap() error { return e.Err }

// ParseError is an unreadable line in status output.
type ParseError struct {
	Line string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unexpected status line %q", e.Line)
}

// RevisionLookupError wraps a failure resolving a file's revision.
type RevisionLookupError struct {
	Path string
	Err  error
}

func (e *RevisionLookupError) Error() string {
	return fmt.Sprintf("revision of %s: %v", e.Path, e.Err)
}

func (e *RevisionLookupError) Unwrap() error { return e.Err }

// RevisionFetchError wraps a failure fetching historical content.
type RevisionFetchError struct {
	Path     string
	Revision string
	Err      error
}

func (e *RevisionFetchError) Error() string {
	return fmt.Sprintf("content of %s at %s: %v", e.Path, e.Revision, e.Err)
}

func (e *RevisionFetchError) Unwrap() error { return e.Err }

// MutationError wraps a failed add, remove, discard, stash or patch step.
type MutationError struct {
	Op   string
	Path string
	Err  error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// CommitError is a failed commit. Stderr is the tool's own explanation and
// is meant to be shown to the user verbatim.
type CommitError struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *CommitError) Error() string {
	if detail := strings.TrimSpace(e.Stderr); detail != "" {
		return "commit failed: " + detail
	}
	return fmt.Sprintf("commit failed: %v", e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

func newCommitError(err error) *CommitError {
	ce := &CommitError{ExitCode: process.ExitCode(err), Err: err}
	ce.Stdout, ce.Stderr, _ = process.ToolOutput(err)
	return ce
}

// LintError blocks a commit. Stdout carries the linter's report.
type LintError struct {
	Files  []string
	Stdout string
	Err    error
}

func (e *LintError) Error() string {
	return fmt.Sprintf("lint failed for %d file(s): %v", len(e.Files), e.Err)
}

func (e *LintError) Unwrap() error { return e.Err }

// InconsistencyError means a tool answered with a result its contract rules
// out, such as an unexpected exit code.
type InconsistencyError struct {
	Op       string
	ExitCode int
	Detail   string
}

func (e *InconsistencyError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: unexpected exit code %d: %s", e.Op, e.ExitCode, e.Detail)
	}
	return fmt.Sprintf("%s: unexpected exit code %d", e.Op, e.ExitCode)
}
