package models

import (
	"fmt"
	"slices"

	"github.com/chmouel/lazycvs/internal/utils"
)

// Mode is the single-character status code the status tool reports for a path.
// The declaration order is the sort rank.
type Mode int

const (
	// ModeUnknown is an untracked path ("?").
	ModeUnknown Mode = iota
	// ModeAdded is scheduled for addition ("A").
	ModeAdded
	// ModeConflicted has unresolved merge conflicts ("C").
	ModeConflicted
	// ModeModified has local edits ("M").
	ModeModified
	// ModeMissing is tracked but gone from disk and needs restoring ("U").
	ModeMissing
	// ModeRemoved is scheduled for removal ("R").
	ModeRemoved
)

// ModeOrder is the rank string used to order entries.
const ModeOrder = "?ACMUR"

var modeDescriptions = [...]string{
	ModeUnknown:    "untracked",
	ModeAdded:      "added",
	ModeConflicted: "conflicted",
	ModeModified:   "modified",
	ModeMissing:    "removed locally",
	ModeRemoved:    "scheduled for removal",
}

// Modes returns every mode in rank order.
func Modes() []Mode {
	return []Mode{ModeUnknown, ModeAdded, ModeConflicted, ModeModified, ModeMissing, ModeRemoved}
}

// ParseMode maps a status code to its Mode.
func ParseMode(code byte) (Mode, bool) {
	for i := 0; i < len(ModeOrder); i++ {
		if ModeOrder[i] == code {
			return Mode(i), true
		}
	}
	return 0, false
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m >= ModeUnknown && m <= ModeRemoved
}

// Code returns the status character for m.
func (m Mode) Code() byte {
	if !m.Valid() {
		return ' '
	}
	return ModeOrder[m]
}

// Rank is the position of m in ModeOrder.
func (m Mode) Rank() int {
	return int(m)
}

func (m Mode) String() string {
	return string(m.Code())
}

// Description is a human readable name for m.
func (m Mode) Description() string {
	if !m.Valid() {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeDescriptions[m]
}

// IsRemoval reports whether the path no longer exists on disk for this mode.
func (m Mode) IsRemoval() bool {
	return m == ModeMissing || m == ModeRemoved
}

// Committable reports whether a path in this mode can take part in a commit.
func (m Mode) Committable() bool {
	return m != ModeConflicted && m.Valid()
}

// StatusEntry is one line of working copy status.
type StatusEntry struct {
	Filename string
	Mode     Mode
	IsDir    bool
}

// Snapshot is an ordered set of status entries for one workspace. Filenames
// are unique within a snapshot.
type Snapshot []StatusEntry

// Equal reports whether s and other hold the same (filename, mode) pairs in
// the same order.
func (s Snapshot) Equal(other Snapshot) bool {
	return slices.EqualFunc(s, other, func(a, b StatusEntry) bool {
		return a.Filename == b.Filename && a.Mode == b.Mode
	})
}

// Find returns the entry for filename.
func (s Snapshot) Find(filename string) (StatusEntry, bool) {
	for _, e := range s {
		if e.Filename == filename {
			return e, true
		}
	}
	return StatusEntry{}, false
}

// Filenames lists the snapshot's paths in order.
func (s Snapshot) Filenames() []string {
	names := make([]string, len(s))
	for i, e := range s {
		names[i] = e.Filename
	}
	return names
}

// SortEntries orders entries in place: directories first, then by mode rank,
// then by natural-order filename.
func SortEntries(entries []StatusEntry) {
	c := utils.NewNaturalCollator()
	slices.SortStableFunc(entries, func(a, b StatusEntry) int {
		if a.IsDir != b.IsDir {
			if a.IsDir {
				return -1
			}
			return 1
		}
		if a.Mode != b.Mode {
			return a.Mode.Rank() - b.Mode.Rank()
		}
		return utils.NaturalCompare(c, a.Filename, b.Filename)
	})
}
