package buildinfo

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	t.Cleanup(func() { Set("dev", unsetCommit, unsetValue, unsetValue) })
	Set("1.2.3", "abc123", "2026-01-01", "ci")

	assert.Equal(t, Info{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01", BuiltBy: "ci"}, Get())
}

func TestEnrichFillsUnsetValues(t *testing.T) {
	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			GoVersion: "go1.25.0",
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.time", Value: "2026-02-03T04:05:06Z"},
			},
		}, true
	}

	info := enrich(Info{Version: "dev", Commit: unsetCommit, Date: unsetValue, BuiltBy: unsetValue}, read)
	assert.Equal(t, "0123456789abcdef", info.Commit)
	assert.Equal(t, "2026-02-03T04:05:06Z", info.Date)
	assert.Equal(t, "go1.25.0", info.BuiltBy)
}

func TestEnrichPreservesExplicitValues(t *testing.T) {
	called := false
	read := func() (*debug.BuildInfo, bool) {
		called = true
		return nil, false
	}
	in := Info{Version: "v1.0.0", Commit: "deadbeef", Date: "2026-06-01", BuiltBy: "goreleaser"}

	assert.Equal(t, in, enrich(in, read))
	assert.False(t, called)
}

func TestEnrichWithoutBuildInfo(t *testing.T) {
	in := Info{Version: "dev", Commit: unsetCommit, Date: unsetValue, BuiltBy: unsetValue}
	assert.Equal(t, in, enrich(in, func() (*debug.BuildInfo, bool) { return nil, false }))
}

func TestString(t *testing.T) {
	info := Info{Version: "v0.4.0", Commit: "0123456789abcdef", Date: "2026-10-01", BuiltBy: "go1.25.0"}
	assert.Equal(t, "lazycvs v0.4.0 (commit 0123456789ab, built 2026-10-01 by go1.25.0)", info.String())
}
