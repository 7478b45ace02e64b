// Package cvs drives the cvs tool family against a working copy: listing
// status, fetching revisions and applying mutations. It holds no state
// between calls; every answer is re-derived from the tools.
package cvs

import (
	"context"
	"path/filepath"
	"time"

	"github.com/chmouel/lazycvs/internal/config"
	log "github.com/chmouel/lazycvs/internal/log"
	"github.com/chmouel/lazycvs/internal/process"
)

// Runner executes subprocesses. process.Exec is the production implementation.
type Runner interface {
	Run(ctx context.Context, opts process.Options) (*process.Result, error)
}

// Service wraps the external tools configured in AppConfig.
type Service struct {
	runner   Runner
	cvs      string
	status   string
	patch    string
	lint     string
	timeout  time.Duration
	lintable func(string) bool
}

// NewService builds a Service using the tool names and timeout from cfg.
func NewService(runner Runner, cfg *config.AppConfig) *Service {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if runner == nil {
		runner = process.NewExec()
	}
	timeout := cfg.Timeout
	switch {
	case timeout == 0:
		timeout = process.DefaultTimeout
	case timeout < 0:
		timeout = process.NoTimeout
	}
	return &Service{
		runner:   runner,
		cvs:      cfg.CVSCommand,
		status:   cfg.StatusCommand,
		patch:    cfg.PatchCommand,
		lint:     cfg.LintCommand,
		timeout:  timeout,
		lintable: cfg.IsLintable,
	}
}

func (s *Service) debugf(format string, args ...any) {
	log.Printf(format, args...)
}

func (s *Service) run(ctx context.Context, opts process.Options) (*process.Result, error) {
	if opts.Timeout == 0 {
		opts.Timeout = s.timeout
	}
	return s.runner.Run(ctx, opts)
}

// runIn runs command in dir with args.
func (s *Service) runIn(ctx context.Context, dir, command string, args ...string) (*process.Result, error) {
	return s.run(ctx, process.Options{Dir: dir, Command: command, Args: args})
}

// splitPath returns the directory and base name cvs should be run with for
// a single file.
func splitPath(path string) (string, string) {
	return filepath.Dir(path), filepath.Base(path)
}
