// Package workspace finds working copies ("zons") under a base directory and
// remembers which one is current between runs.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/chmouel/lazycvs/internal/models"
	"github.com/chmouel/lazycvs/internal/utils"
	"gopkg.in/yaml.v3"
)

// ErrNoWorkspaces is returned when nothing under the base dir matches.
var ErrNoWorkspaces = errors.New("no workspaces found")

// Discover lists directories directly under base whose names match pattern,
// in natural order.
func Discover(base, pattern string) ([]models.Workspace, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid workspace pattern %q: %w", pattern, err)
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", base, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !re.MatchString(entry.Name()) {
			continue
		}
		info, err := os.Stat(filepath.Join(base, entry.Name()))
		if err != nil || !info.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	utils.SortNatural(names)

	workspaces := make([]models.Workspace, len(names))
	for i, name := range names {
		workspaces[i] = models.Workspace{Name: name, Path: filepath.Join(base, name)}
	}
	return workspaces, nil
}

// Resolve picks the workspace to use: preferred when it is among the
// candidates, otherwise the first candidate.
func Resolve(candidates []models.Workspace, preferred string) (models.Workspace, error) {
	if len(candidates) == 0 {
		return models.Workspace{}, ErrNoWorkspaces
	}
	if preferred != "" {
		clean := filepath.Clean(preferred)
		for _, ws := range candidates {
			if ws.Path == clean || ws.Name == preferred {
				return ws, nil
			}
		}
	}
	return candidates[0], nil
}

// State is what lazycvs remembers across runs.
type State struct {
	CurrentZon string `yaml:"current_zon"`
}

// Store persists State as YAML inside a directory.
type Store struct {
	dir string
}

// NewStore returns a Store writing to dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path is the state file location.
func (s *Store) Path() string {
	return filepath.Join(s.dir, models.StateFilename)
}

// Load reads the state. A missing file is an empty state.
func (s *Store) Load() (State, error) {
	var state State
	// #nosec G304 -- path is built from the configured state dir and a constant filename
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return state, err
	}
	if err := yaml.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("failed to parse %s: %w", s.Path(), err)
	}
	return state, nil
}

// Save writes the state.
func (s *Store) Save(state State) error {
	if err := os.MkdirAll(s.dir, utils.DefaultDirPerms); err != nil {
		return err
	}
	data, err := yaml.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path(), data, utils.DefaultFilePerms)
}
