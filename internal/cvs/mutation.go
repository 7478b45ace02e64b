package cvs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chmouel/lazycvs/internal/models"
)

// dryRunMessage is used when a dry run is requested without a message.
const dryRunMessage = "dry run"

// CommitOptions tunes a commit.
type CommitOptions struct {
	// DryRun runs "cvs -n commit", which validates without persisting.
	DryRun bool
	// Notify lists user ids appended to the message as a NOTIFY: line.
	Notify []string
}

// Add schedules an untracked path for addition.
func (s *Service) Add(ctx context.Context, path string) error {
	dir, base := splitPath(path)
	if _, err := s.runIn(ctx, dir, s.cvs, "add", base); err != nil {
		return &MutationError{Op: "add", Path: path, Err: err}
	}
	return nil
}

// Remove forcibly and recursively removes path from version control.
func (s *Service) Remove(ctx context.Context, path string) error {
	dir, base := splitPath(path)
	if _, err := s.runIn(ctx, dir, s.cvs, "remove", "-Rf", base); err != nil {
		return &MutationError{Op: "remove", Path: path, Err: err}
	}
	return nil
}

// Discard reverts path to rev (its current revision when empty), dropping
// local edits and conflict markers. This cannot be undone.
func (s *Service) Discard(ctx context.Context, path, rev string) error {
	rev, err := s.resolveRevision(ctx, path, rev)
	if err != nil {
		return err
	}
	dir, base := splitPath(path)
	if _, err := s.runIn(ctx, dir, s.cvs, "update", "-C", "-r", rev, base); err != nil {
		return &MutationError{Op: "discard", Path: path, Err: err}
	}
	return nil
}

// Delete removes an untracked path from disk. There is nothing to revert to.
func (s *Service) Delete(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return &MutationError{Op: "delete", Path: path, Err: err}
	}
	s.debugf("deleted: %s", path)
	return nil
}

// DiscardEntry drops local divergence for one status entry of the workspace
// at dir, choosing the operation from its mode.
func (s *Service) DiscardEntry(ctx context.Context, dir string, entry models.StatusEntry) error {
	path := filepath.Join(dir, entry.Filename)
	switch entry.Mode {
	case models.ModeUnknown:
		return s.Delete(path)
	case models.ModeAdded:
		return s.Remove(ctx, path)
	case models.ModeConflicted, models.ModeModified, models.ModeMissing:
		return s.Discard(ctx, path, "")
	case models.ModeRemoved:
		return &MutationError{Op: "discard", Path: path, Err: fmt.Errorf("%s entries have no local content to discard", entry.Mode.Description())}
	default:
		return &MutationError{Op: "discard", Path: path, Err: fmt.Errorf("unknown mode %d", int(entry.Mode))}
	}
}

// StageEntry prepares one entry for commit: untracked paths are added and
// locally removed ones are removed from the repository.
func (s *Service) StageEntry(ctx context.Context, dir string, entry models.StatusEntry) error {
	path := filepath.Join(dir, entry.Filename)
	switch entry.Mode {
	case models.ModeUnknown:
		return s.Add(ctx, path)
	case models.ModeMissing:
		return s.Remove(ctx, path)
	case models.ModeAdded, models.ModeModified, models.ModeRemoved:
		return nil
	case models.ModeConflicted:
		return &MutationError{Op: "commit", Path: path, Err: fmt.Errorf("resolve conflicts first")}
	default:
		return &MutationError{Op: "commit", Path: path, Err: fmt.Errorf("unknown mode %d", int(entry.Mode))}
	}
}

// CommitMessage appends the NOTIFY line to message when there are recipients.
func CommitMessage(message string, notify []string) string {
	if len(notify) == 0 {
		return message
	}
	return message + "\nNOTIFY: " + strings.Join(notify, " ")
}

// Commit commits files (relative to dir) with message. It returns the tool's
// stdout for display.
func (s *Service) Commit(ctx context.Context, dir string, files []string, message string, opts CommitOptions) (string, error) {
	if message == "" && opts.DryRun {
		message = dryRunMessage
	}
	message = CommitMessage(message, opts.Notify)

	var args []string
	if opts.DryRun {
		args = append(args, "-n")
	}
	args = append(args, "commit")
	if message != "" {
		args = append(args, "-m", message)
	}
	args = append(args, files...)

	res, err := s.runIn(ctx, dir, s.cvs, args...)
	if err != nil {
		return "", newCommitError(err)
	}
	s.debugf("commit: %d file(s) in %s (dry run=%t)", len(files), dir, opts.DryRun)
	return res.Stdout, nil
}
