// Package buildinfo holds the build metadata of the lazycvs binary. The
// linker sets the variables in cmd/lazycvs and main forwards them with Set.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

const (
	unsetCommit = "none"
	unsetValue  = "unknown"
	shortCommit = 12
)

// Info describes one build.
type Info struct {
	Version string
	Commit  string
	Date    string
	BuiltBy string
}

var current = Info{Version: "dev", Commit: unsetCommit, Date: unsetValue, BuiltBy: unsetValue}

// Set stores the linker-injected metadata.
func Set(version, commit, date, builtBy string) {
	current = Info{Version: version, Commit: commit, Date: date, BuiltBy: builtBy}
}

// Get returns the metadata, completed from the Go build info when the
// linker left values unset.
func Get() Info {
	return enrich(current, debug.ReadBuildInfo)
}

func enrich(info Info, read func() (*debug.BuildInfo, bool)) Info {
	if info.Commit != unsetCommit && info.BuiltBy != unsetValue {
		return info
	}
	bi, ok := read()
	if !ok {
		return info
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.Commit == unsetCommit {
				info.Commit = setting.Value
			}
		case "vcs.time":
			if info.Date == unsetValue {
				info.Date = setting.Value
			}
		}
	}
	if info.BuiltBy == unsetValue && bi.GoVersion != "" {
		info.BuiltBy = bi.GoVersion
	}
	return info
}

// String is the one-line summary printed by "lazycvs version".
func (i Info) String() string {
	commit := i.Commit
	if len(commit) > shortCommit {
		commit = commit[:shortCommit]
	}
	return fmt.Sprintf("lazycvs %s (commit %s, built %s by %s)", i.Version, commit, i.Date, i.BuiltBy)
}
