// Package utils holds small helpers shared across lazycvs packages.
package utils

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDirPerms is used for directories lazycvs creates (stash dir, state dir).
	DefaultDirPerms = 0o750
	// DefaultFilePerms is used for files lazycvs writes on its own behalf.
	DefaultFilePerms = 0o600
)

// ExpandPath expands a leading ~ and environment variables in path.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return os.ExpandEnv(path), nil
}

// IsPathWithin reports whether target lives inside base (or is base itself).
func IsPathWithin(base, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(target))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
