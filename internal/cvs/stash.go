package cvs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/chmouel/lazycvs/internal/models"
	"github.com/chmouel/lazycvs/internal/process"
	"github.com/chmouel/lazycvs/internal/utils"
	"golang.org/x/sync/errgroup"
)

// diffExitDifferences is what "cvs diff" exits with when it found changes.
const diffExitDifferences = 1

// StashDir is the reserved stash directory of the workspace at dir.
func StashDir(dir string) string {
	return filepath.Join(dir, models.StashDirName)
}

// StashPath is where the stash called name is stored.
func StashPath(dir, name string) string {
	return filepath.Join(StashDir(dir), name+models.PatchExt)
}

func validStashName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid stash name %q", name)
	}
	return nil
}

// Stash moves the local edits of files (relative to dir) into a patch named
// name and reverts the files to their last revision.
//
// The patch is checked to reverse cleanly before anything is written or
// reverted; if it does not, the working copy is left untouched.
func (s *Service) Stash(ctx context.Context, dir string, files []string, name string) (models.StashEntry, error) {
	if err := validStashName(name); err != nil {
		return models.StashEntry{}, &MutationError{Op: "stash", Path: dir, Err: err}
	}
	if len(files) == 0 {
		return models.StashEntry{}, &MutationError{Op: "stash", Path: dir, Err: errors.New("no files to stash")}
	}
	target := StashPath(dir, name)
	if _, err := os.Stat(target); err == nil {
		return models.StashEntry{}, &MutationError{Op: "stash", Path: target, Err: fs.ErrExist}
	}

	res, err := s.run(ctx, process.Options{
		Dir:            dir,
		Command:        s.cvs,
		Args:           append([]string{"diff", "-u"}, files...),
		IgnoreExitCode: true,
	})
	if err != nil {
		return models.StashEntry{}, &MutationError{Op: "stash", Path: dir, Err: err}
	}
	if res.ExitCode != diffExitDifferences {
		return models.StashEntry{}, &InconsistencyError{Op: "stash diff", ExitCode: res.ExitCode, Detail: strings.TrimSpace(res.Stderr)}
	}
	patch := res.Stdout

	if _, err := s.run(ctx, process.Options{
		Dir:     dir,
		Command: s.patch,
		Args:    []string{"-p0", "-R", "--dry-run"},
		Stdin:   patch,
	}); err != nil {
		return models.StashEntry{}, &MutationError{Op: "stash verify", Path: dir, Err: err}
	}

	if err := os.MkdirAll(StashDir(dir), utils.DefaultDirPerms); err != nil {
		return models.StashEntry{}, &MutationError{Op: "stash", Path: dir, Err: err}
	}
	if err := os.WriteFile(target, []byte(patch), utils.DefaultFilePerms); err != nil {
		return models.StashEntry{}, &MutationError{Op: "stash", Path: target, Err: err}
	}
	s.debugf("stash: wrote %s (%d bytes)", target, len(patch))

	g, gctx := errgroup.WithContext(ctx)
	for _, file := range files {
		g.Go(func() error {
			return s.Discard(gctx, filepath.Join(dir, file), "")
		})
	}
	if err := g.Wait(); err != nil {
		return models.StashEntry{Name: name, Path: target}, err
	}
	return models.StashEntry{Name: name, Path: target}, nil
}

// ApplyPatch applies patchFile to the workspace at dir and deletes it, so a
// stash is consumed exactly once. A relative patchFile is taken relative to
// dir. When the patch does not apply the file is kept.
func (s *Service) ApplyPatch(ctx context.Context, dir, patchFile string) (string, error) {
	if !filepath.IsAbs(patchFile) {
		patchFile = filepath.Join(dir, patchFile)
	}
	// #nosec G304 -- the patch file is chosen by the user
	data, err := os.ReadFile(patchFile)
	if err != nil {
		return "", &MutationError{Op: "patch", Path: patchFile, Err: err}
	}

	res, err := s.run(ctx, process.Options{
		Dir:     dir,
		Command: s.patch,
		Args:    []string{"-p0"},
		Stdin:   string(data),
	})
	if err != nil {
		return "", &MutationError{Op: "patch", Path: patchFile, Err: err}
	}
	if err := os.Remove(patchFile); err != nil {
		return res.Stdout, &MutationError{Op: "patch cleanup", Path: patchFile, Err: err}
	}
	s.debugf("patch: applied and removed %s", patchFile)
	return res.Stdout, nil
}

// ListStashes returns the stashes saved in the workspace at dir.
func ListStashes(dir string) ([]models.StashEntry, error) {
	entries, err := os.ReadDir(StashDir(dir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != models.PatchExt {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), models.PatchExt))
	}
	utils.SortNatural(names)

	stashes := make([]models.StashEntry, len(names))
	for i, name := range names {
		stashes[i] = models.StashEntry{Name: name, Path: StashPath(dir, name)}
	}
	return stashes, nil
}
