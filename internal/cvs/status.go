package cvs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/chmouel/lazycvs/internal/models"
	"golang.org/x/sync/errgroup"
)

const statConcurrency = 16

// ListStatus runs the status extension in dir and returns the sorted snapshot
// of everything that differs from the repository.
func (s *Service) ListStatus(ctx context.Context, dir string) (models.Snapshot, error) {
	res, err := s.runIn(ctx, dir, s.status, "up", "-o")
	if err != nil {
		return nil, &StatusToolError{Dir: dir, Err: err}
	}

	entries, err := parseStatus(res.Stdout)
	if err != nil {
		return nil, &StatusToolError{Dir: dir, Err: err}
	}
	if err := classifyDirectories(ctx, dir, entries); err != nil {
		return nil, &StatusToolError{Dir: dir, Err: err}
	}

	models.SortEntries(entries)
	s.debugf("status: %s: %d entries", dir, len(entries))
	return models.Snapshot(entries), nil
}

// parseStatus reads "<mode>  <path>" lines. A path reported twice keeps its
// first mode.
func parseStatus(output string) ([]models.StatusEntry, error) {
	var entries []models.StatusEntry
	seen := make(map[string]bool)

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(line) < 3 || line[1] != ' ' {
			return nil, &ParseError{Line: line}
		}
		mode, ok := models.ParseMode(line[0])
		if !ok {
			return nil, &ParseError{Line: line}
		}
		filename := strings.TrimLeft(line[1:], " ")
		if filename == "" {
			return nil, &ParseError{Line: line}
		}
		if seen[filename] {
			continue
		}
		seen[filename] = true
		entries = append(entries, models.StatusEntry{Filename: filename, Mode: mode})
	}
	return entries, nil
}

// classifyDirectories stats every entry that still exists on disk.
// Removal modes are skipped since their path is gone.
func classifyDirectories(ctx context.Context, dir string, entries []models.StatusEntry) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(statConcurrency)
	for i := range entries {
		if entries[i].Mode.IsRemoval() {
			continue
		}
		g.Go(func() error {
			info, err := os.Stat(filepath.Join(dir, entries[i].Filename))
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if err != nil {
				return err
			}
			entries[i].IsDir = info.IsDir()
			return nil
		})
	}
	return g.Wait()
}
