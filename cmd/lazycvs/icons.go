package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/chmouel/lazycvs/internal/models"
	devicons "github.com/epilande/go-devicons"
)

// iconFileInfo lets devicons pick an icon for paths that may no longer exist.
type iconFileInfo struct {
	name  string
	isDir bool
}

func (i iconFileInfo) Name() string { return i.name }

func (i iconFileInfo) Size() int64 { return 0 }

func (i iconFileInfo) Mode() os.FileMode {
	if i.isDir {
		return os.ModeDir | 0o755
	}
	return 0
}

func (i iconFileInfo) ModTime() time.Time { return time.Time{} }

func (i iconFileInfo) IsDir() bool { return i.isDir }

func (i iconFileInfo) Sys() any { return nil }

// entryIcon picks by base name only: removed entries have nothing to stat.
func entryIcon(entry models.StatusEntry) string {
	if entry.Filename == "" {
		return ""
	}
	return devicons.IconForInfo(iconFileInfo{name: filepath.Base(entry.Filename), isDir: entry.IsDir}).Icon
}
