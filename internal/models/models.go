// Package models defines the data objects shared across lazycvs packages.
package models

// DiffPayload holds both sides of a file for display: the content at the
// last committed revision and the live content on disk.
type DiffPayload struct {
	Path     string
	Revision string
	Original string
	Current  string
	MimeType string
}

// StashEntry is a saved patch under a workspace's stash directory.
type StashEntry struct {
	Name string
	Path string
}

// Workspace is a working copy root ("zon") found under the base directory.
type Workspace struct {
	Name string
	Path string
}

const (
	// StashDirName is the reserved directory holding stashes inside a workspace.
	StashDirName = ".stash"
	// PatchExt is the extension of stash files.
	PatchExt = ".patch"
	// StateFilename stores the persisted session state.
	StateFilename = "state.yaml"
)
