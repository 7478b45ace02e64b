package cvs

import (
	"context"

	"github.com/chmouel/lazycvs/internal/process"
)

// LintFiles keeps the files the linter understands.
func (s *Service) LintFiles(files []string) []string {
	var out []string
	for _, f := range files {
		if s.lintable(f) {
			out = append(out, f)
		}
	}
	return out
}

// Lint runs the linter over the lintable subset of files (relative to dir).
// It does nothing when no file qualifies. A failure is a *LintError whose
// Stdout holds the report.
func (s *Service) Lint(ctx context.Context, dir string, files []string) error {
	files = s.LintFiles(files)
	if len(files) == 0 {
		s.debugf("lint: nothing to check in %s", dir)
		return nil
	}
	res, err := s.runIn(ctx, dir, s.lint, files...)
	if err != nil {
		lintErr := &LintError{Files: files, Err: err}
		if res != nil {
			lintErr.Stdout = res.Stdout
		} else {
			lintErr.Stdout, _, _ = process.ToolOutput(err)
		}
		return lintErr
	}
	return nil
}
