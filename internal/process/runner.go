// Package process runs the external tools lazycvs drives (cvs, its status
// extension, patch and the linter) and classifies how each run ended.
package process

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	log "github.com/chmouel/lazycvs/internal/log"
)

const (
	// DefaultTimeout applies when Options.Timeout is zero.
	DefaultTimeout = 30 * time.Second
	// NoTimeout disables the kill timer.
	NoTimeout time.Duration = -1

	waitDelay = 2 * time.Second
)

// Options describes one subprocess invocation.
type Options struct {
	// Dir is the working directory of the child.
	Dir string
	// Command is the executable name, resolved through PATH.
	Command string
	// Args are passed verbatim, never through a shell.
	Args []string
	// Stdin, when non-empty, is written to the child and the pipe closed.
	Stdin string
	// Timeout kills the child when exceeded. Zero means DefaultTimeout,
	// a negative value disables it.
	Timeout time.Duration
	// IgnoreExitCode returns a non-zero exit as a Result instead of a FailedError.
	IgnoreExitCode bool
	// Detached starts the child and returns it in Result.Process without
	// waiting. Output is discarded and no timeout applies.
	Detached bool
}

// Result is a completed (or, when detached, started) invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Process  *exec.Cmd
}

// Runner executes subprocesses.
type Runner interface {
	Run(ctx context.Context, opts Options) (*Result, error)
}

// Exec is the Runner backed by os/exec.
type Exec struct{}

// NewExec returns the default Runner.
func NewExec() *Exec {
	return &Exec{}
}

// Describe renders opts as a single command line for logs and errors.
func Describe(opts Options) string {
	if opts.Command == "" {
		return "<empty>"
	}
	if len(opts.Args) == 0 {
		return opts.Command
	}
	return opts.Command + " " + strings.Join(opts.Args, " ")
}

// Run launches the command described by opts.
//
// Cancelling ctx does not kill the child: only its own timeout does. Values
// carried by ctx are still visible to the command.
func (Exec) Run(ctx context.Context, opts Options) (*Result, error) {
	command := Describe(opts)
	if opts.Command == "" {
		return nil, &LaunchError{Command: command, Err: errors.New("no command provided")}
	}
	log.Printf("run: %s (cwd=%s)", command, opts.Dir)

	runCtx := context.WithoutCancel(ctx)
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	var cancel context.CancelFunc = func() {}
	if timeout > 0 && !opts.Detached {
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
	}
	defer cancel()

	// #nosec G204 -- command names come from configuration and arguments are never shell interpolated
	cmd := exec.CommandContext(runCtx, opts.Command, opts.Args...)
	cmd.Dir = opts.Dir
	cmd.WaitDelay = waitDelay
	if opts.Stdin != "" {
		cmd.Stdin = strings.NewReader(opts.Stdin)
	}

	if opts.Detached {
		if err := cmd.Start(); err != nil {
			log.Printf("error: %s: %v", command, err)
			return nil, &LaunchError{Command: command, Err: err}
		}
		log.Printf("started: %s (pid %d)", command, cmd.Process.Pid)
		return &Result{Process: cmd}, nil
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		log.Printf("error: %s: %v", command, err)
		return nil, &LaunchError{Command: command, Err: err}
	}
	waitErr := cmd.Wait()

	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if sig, ok := signalName(cmd.ProcessState); ok {
		timedOut := errors.Is(runCtx.Err(), context.DeadlineExceeded)
		log.Printf("error: %s (signal %s, timed out=%t)", command, sig, timedOut)
		return res, &SignaledError{Command: command, ExitCode: res.ExitCode, Signal: sig, TimedOut: timedOut}
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			// I/O failure copying output after the child exited.
			log.Printf("error: %s: %v", command, waitErr)
			return res, &LaunchError{Command: command, Err: waitErr}
		}
	}
	if res.ExitCode != 0 && !opts.IgnoreExitCode {
		log.Printf("error: %s (exit %d)", command, res.ExitCode)
		return res, &FailedError{Command: command, ExitCode: res.ExitCode, Stdout: res.Stdout, Stderr: res.Stderr}
	}

	log.Printf("ok: %s (exit %d)", command, res.ExitCode)
	return res, nil
}
