// Package session holds what a lazycvs front end works against: the current
// workspace, the last status snapshot and the user's selection.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/chmouel/lazycvs/internal/config"
	"github.com/chmouel/lazycvs/internal/cvs"
	log "github.com/chmouel/lazycvs/internal/log"
	"github.com/chmouel/lazycvs/internal/models"
	"github.com/chmouel/lazycvs/internal/utils"
	"github.com/chmouel/lazycvs/internal/workspace"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrEmptySelection is returned by operations that need selected files.
	ErrEmptySelection = errors.New("no files selected")
	// ErrNotViewable is returned by View for directories and binary types.
	ErrNotViewable = errors.New("file cannot be viewed")
)

// Session serialises every operation behind one lock, so a watcher-driven
// refresh never interleaves with a commit.
type Session struct {
	mu        sync.Mutex
	cfg       *config.AppConfig
	svc       *cvs.Service
	store     *workspace.Store
	zon       models.Workspace
	snapshot  models.Snapshot
	loaded    bool
	selection []string
}

// New returns a Session with nothing loaded yet.
func New(cfg *config.AppConfig, svc *cvs.Service, store *workspace.Store) *Session {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if svc == nil {
		svc = cvs.NewService(nil, cfg)
	}
	if store == nil {
		store = workspace.NewStore(cfg.StateDir)
	}
	return &Session{cfg: cfg, svc: svc, store: store}
}

// Zones lists the candidate workspaces.
func (s *Session) Zones() ([]models.Workspace, error) {
	return workspace.Discover(s.cfg.BaseDir, s.cfg.ZonPattern)
}

// Current returns the workspace in use, resolving it on first use from the
// persisted state, falling back to the first candidate.
func (s *Session) Current() (models.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Session) currentLocked() (models.Workspace, error) {
	if s.zon.Path != "" {
		if info, err := os.Stat(s.zon.Path); err == nil && info.IsDir() {
			return s.zon, nil
		}
		log.Printf("session: workspace %s is gone", s.zon.Path)
		s.reset(models.Workspace{})
	}

	zones, err := s.Zones()
	if err != nil {
		return models.Workspace{}, err
	}
	state, err := s.store.Load()
	if err != nil {
		log.Printf("session: ignoring state: %v", err)
	}
	zon, err := workspace.Resolve(zones, state.CurrentZon)
	if err != nil {
		return models.Workspace{}, err
	}
	s.zon = zon
	return zon, nil
}

// Switch makes zon (a name or path among Zones) current and persists it.
// The snapshot and selection are cleared.
func (s *Session) Switch(zon string) (models.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	zones, err := s.Zones()
	if err != nil {
		return models.Workspace{}, err
	}
	idx := slices.IndexFunc(zones, func(ws models.Workspace) bool {
		return ws.Name == zon || ws.Path == filepath.Clean(zon)
	})
	if idx < 0 {
		return models.Workspace{}, fmt.Errorf("unknown workspace %q", zon)
	}

	target := zones[idx]
	if err := s.store.Save(workspace.State{CurrentZon: target.Path}); err != nil {
		return models.Workspace{}, fmt.Errorf("failed to save state: %w", err)
	}
	s.reset(target)
	log.Printf("session: switched to %s", target.Path)
	return target, nil
}

func (s *Session) reset(zon models.Workspace) {
	s.zon = zon
	s.snapshot = nil
	s.loaded = false
	s.selection = nil
}

// Refresh re-lists the workspace status. The snapshot is only replaced when
// it differs from the previous one; changed reports whether it did. Selected
// files that left the listing are dropped from the selection.
func (s *Session) Refresh(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) (bool, error) {
	zon, err := s.currentLocked()
	if err != nil {
		return false, err
	}
	next, err := s.svc.ListStatus(ctx, zon.Path)
	if err != nil {
		return false, err
	}
	if s.loaded && s.snapshot.Equal(next) {
		return false, nil
	}

	s.snapshot = next
	s.loaded = true
	s.selection = slices.DeleteFunc(s.selection, func(name string) bool {
		_, ok := next.Find(name)
		return !ok
	})
	return true, nil
}

// Snapshot returns a copy of the last listing.
func (s *Session) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.snapshot)
}

// Select replaces the selection with files, which must all be in the
// snapshot.
func (s *Session) Select(files ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	selection := make([]string, 0, len(files))
	for _, f := range files {
		if _, ok := s.snapshot.Find(f); !ok {
			return fmt.Errorf("%s has no local changes", f)
		}
		if !slices.Contains(selection, f) {
			selection = append(selection, f)
		}
	}
	s.selection = selection
	return nil
}

// SelectAll selects every entry of the snapshot.
func (s *Session) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = s.snapshot.Filenames()
}

// Selection returns the selected entries in snapshot order.
func (s *Session) Selection() []models.StatusEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedLocked()
}

func (s *Session) selectedLocked() []models.StatusEntry {
	var entries []models.StatusEntry
	for _, entry := range s.snapshot {
		if slices.Contains(s.selection, entry.Filename) {
			entries = append(entries, entry)
		}
	}
	return entries
}

// CanCommit reports whether the selection is non-empty and free of conflicts.
func (s *Session) CanCommit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return canCommit(s.selectedLocked())
}

func canCommit(entries []models.StatusEntry) bool {
	if len(entries) == 0 {
		return false
	}
	for _, entry := range entries {
		if !entry.Mode.Committable() {
			return false
		}
	}
	return true
}

// CanDiscard reports whether every selected entry has something to discard.
func (s *Session) CanDiscard() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.selectedLocked()
	if len(entries) == 0 {
		return false
	}
	for _, entry := range entries {
		if entry.Mode == models.ModeRemoved {
			return false
		}
	}
	return true
}

// CommitSelection commits the selected files. Untracked files are added and
// locally deleted ones removed first, unless this is a dry run, which leaves
// the working copy untouched and only validates already tracked files. With
// linting enabled a lint failure stops the commit before anything runs.
func (s *Session) CommitSelection(ctx context.Context, message string, opts cvs.CommitOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.selectedLocked()
	if len(entries) == 0 {
		return "", ErrEmptySelection
	}
	if !canCommit(entries) {
		return "", errors.New("selection contains conflicted files")
	}
	if message == "" && !opts.DryRun {
		return "", errors.New("commit message is required")
	}
	if err := s.checkNotify(opts.Notify); err != nil {
		return "", err
	}

	files := filenames(entries)
	if s.cfg.LintEnabled {
		if err := s.svc.Lint(ctx, s.zon.Path, files); err != nil {
			return "", err
		}
	}

	if opts.DryRun {
		// cvs only knows staged paths, and a dry run must not stage.
		files = filenames(slices.DeleteFunc(slices.Clone(entries), needsStaging))
		if len(files) == 0 {
			log.Printf("session: dry run: nothing tracked to validate")
			return "", nil
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		for _, entry := range entries {
			g.Go(func() error {
				return s.svc.StageEntry(gctx, s.zon.Path, entry)
			})
		}
		if err := g.Wait(); err != nil {
			return "", err
		}
	}

	out, err := s.svc.Commit(ctx, s.zon.Path, files, message, opts)
	if err != nil {
		return "", err
	}
	if !opts.DryRun {
		s.selection = nil
	}
	if _, err := s.refreshLocked(ctx); err != nil {
		return out, err
	}
	return out, nil
}

// needsStaging reports whether entry must be added or removed before cvs
// accepts it in a commit.
func needsStaging(entry models.StatusEntry) bool {
	return entry.Mode == models.ModeUnknown || entry.Mode == models.ModeMissing
}

func (s *Session) checkNotify(users []string) error {
	if len(s.cfg.NotifyUsers) == 0 {
		return nil
	}
	for _, u := range users {
		if !slices.Contains(s.cfg.NotifyUsers, u) {
			return fmt.Errorf("unknown notify recipient %q", u)
		}
	}
	return nil
}

// AddFiles schedules untracked files for addition. Every file must be
// listed as untracked; nothing runs otherwise.
func (s *Session) AddFiles(ctx context.Context, files ...string) error {
	return s.stageFiles(ctx, files, models.ModeUnknown, s.svc.Add)
}

// RemoveFiles schedules locally deleted files for removal. Every file must
// be listed as missing; nothing runs otherwise.
func (s *Session) RemoveFiles(ctx context.Context, files ...string) error {
	return s.stageFiles(ctx, files, models.ModeMissing, s.svc.Remove)
}

func (s *Session) stageFiles(ctx context.Context, files []string, want models.Mode, op func(context.Context, string) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(files) == 0 {
		return ErrEmptySelection
	}
	if _, err := s.refreshLocked(ctx); err != nil {
		return err
	}

	var errs []error
	for _, f := range files {
		entry, ok := s.snapshot.Find(f)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%s has no local changes", f))
		case entry.Mode != want:
			errs = append(errs, fmt.Errorf("%s is %s, expected %s", f, entry.Mode.Description(), want.Description()))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for _, f := range files {
		if err := op(ctx, filepath.Join(s.zon.Path, f)); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := s.refreshLocked(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// DiscardSelection drops local changes of every selected entry, then
// refreshes.
func (s *Session) DiscardSelection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.selectedLocked()
	if len(entries) == 0 {
		return ErrEmptySelection
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, entry := range entries {
		g.Go(func() error {
			return s.svc.DiscardEntry(gctx, s.zon.Path, entry)
		})
	}
	discardErr := g.Wait()

	s.selection = nil
	if _, err := s.refreshLocked(ctx); err != nil && discardErr == nil {
		return err
	}
	return discardErr
}

// StashSelection moves the selected files' edits into a stash. An empty
// name gets a generated one.
func (s *Session) StashSelection(ctx context.Context, name string) (models.StashEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.selectedLocked()
	if len(entries) == 0 {
		return models.StashEntry{}, ErrEmptySelection
	}
	for _, entry := range entries {
		if entry.Mode != models.ModeModified {
			return models.StashEntry{}, fmt.Errorf("only modified files can be stashed, %s is %s", entry.Filename, entry.Mode.Description())
		}
	}
	if name == "" {
		name = utils.RandomStashName()
	}

	stash, err := s.svc.Stash(ctx, s.zon.Path, filenames(entries), name)
	if err != nil {
		return stash, err
	}
	s.selection = nil
	_, err = s.refreshLocked(ctx)
	return stash, err
}

// Stashes lists the stashes of the current workspace.
func (s *Session) Stashes() ([]models.StashEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	zon, err := s.currentLocked()
	if err != nil {
		return nil, err
	}
	return cvs.ListStashes(zon.Path)
}

// ApplyStash re-applies the stash called name and deletes it.
func (s *Session) ApplyStash(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	zon, err := s.currentLocked()
	if err != nil {
		return "", err
	}
	out, err := s.svc.ApplyPatch(ctx, zon.Path, cvs.StashPath(zon.Path, name))
	if err != nil {
		return out, err
	}
	_, err = s.refreshLocked(ctx)
	return out, err
}

// View returns what to show for file. Untracked and added files only have a
// live side; conflicted and modified ones carry both sides.
func (s *Session) View(ctx context.Context, file string) (*models.DiffPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.snapshot.Find(file)
	if !ok {
		return nil, fmt.Errorf("%s has no local changes", file)
	}
	if entry.IsDir || !s.cfg.IsViewable(file) {
		return nil, fmt.Errorf("%s: %w", file, ErrNotViewable)
	}

	path := filepath.Join(s.zon.Path, file)
	switch entry.Mode {
	case models.ModeUnknown, models.ModeAdded:
		// #nosec G304 -- path comes from the status listing
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return &models.DiffPayload{Path: path, Current: string(data), MimeType: cvs.ContentType(path, data)}, nil
	case models.ModeConflicted, models.ModeModified:
		return s.svc.Diff(ctx, path)
	default:
		return nil, fmt.Errorf("%s is %s: %w", file, entry.Mode.Description(), ErrNotViewable)
	}
}

// Save writes content back to file in the current workspace.
func (s *Session) Save(file, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	zon, err := s.currentLocked()
	if err != nil {
		return err
	}
	path := filepath.Join(zon.Path, file)
	if !utils.IsPathWithin(zon.Path, path) {
		return fmt.Errorf("%s is outside %s", file, zon.Path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), info.Mode().Perm())
}

func filenames(entries []models.StatusEntry) []string {
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Filename
	}
	return names
}
