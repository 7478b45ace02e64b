package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseModeRoundTrip(t *testing.T) {
	for _, m := range Modes() {
		parsed, ok := ParseMode(m.Code())
		assert.True(t, ok)
		assert.Equal(t, m, parsed)
		assert.Equal(t, int(m), m.Rank())
	}

	_, ok := ParseMode('X')
	assert.False(t, ok)
	assert.Equal(t, "M", ModeModified.String())
	assert.Equal(t, "untracked", ModeUnknown.Description())
	assert.Equal(t, "mode(42)", Mode(42).Description())
}

func TestModePredicates(t *testing.T) {
	assert.True(t, ModeMissing.IsRemoval())
	assert.True(t, ModeRemoved.IsRemoval())
	assert.False(t, ModeModified.IsRemoval())

	assert.False(t, ModeConflicted.Committable())
	assert.True(t, ModeUnknown.Committable())
	assert.True(t, ModeRemoved.Committable())
}

func TestSortEntriesDirectoriesThenRankThenName(t *testing.T) {
	entries := []StatusEntry{
		{Filename: "a.txt", Mode: ModeModified},
		{Filename: "sub", Mode: ModeUnknown, IsDir: true},
		{Filename: "b.txt", Mode: ModeUnknown},
	}
	SortEntries(entries)
	assert.Equal(t, []string{"sub", "b.txt", "a.txt"}, Snapshot(entries).Filenames())
}

func TestSortEntriesNaturalOrder(t *testing.T) {
	entries := []StatusEntry{
		{Filename: "file10.c", Mode: ModeModified},
		{Filename: "File2.c", Mode: ModeModified},
		{Filename: "gone.c", Mode: ModeRemoved},
		{Filename: "file1.c", Mode: ModeModified},
		{Filename: "new.c", Mode: ModeAdded},
	}
	SortEntries(entries)
	assert.Equal(t, []string{"new.c", "file1.c", "File2.c", "file10.c", "gone.c"}, Snapshot(entries).Filenames())
}

func TestSortEntriesCaseVariantsIgnoreInputOrder(t *testing.T) {
	first := []StatusEntry{{Filename: "readme", Mode: ModeUnknown}, {Filename: "README", Mode: ModeUnknown}}
	second := []StatusEntry{{Filename: "README", Mode: ModeUnknown}, {Filename: "readme", Mode: ModeUnknown}}
	SortEntries(first)
	SortEntries(second)
	assert.Equal(t, Snapshot(first).Filenames(), Snapshot(second).Filenames())
}

func TestSnapshotEqual(t *testing.T) {
	a := Snapshot{{Filename: "a", Mode: ModeModified}, {Filename: "b", Mode: ModeUnknown}}
	b := Snapshot{{Filename: "a", Mode: ModeModified, IsDir: true}, {Filename: "b", Mode: ModeUnknown}}
	assert.True(t, a.Equal(b), "IsDir is not part of equality")

	c := Snapshot{{Filename: "a", Mode: ModeConflicted}, {Filename: "b", Mode: ModeUnknown}}
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(a[:1]))
	assert.True(t, Snapshot(nil).Equal(Snapshot{}))

	entry, ok := a.Find("b")
	assert.True(t, ok)
	assert.Equal(t, ModeUnknown, entry.Mode)
	_, ok = a.Find("zzz")
	assert.False(t, ok)
}
