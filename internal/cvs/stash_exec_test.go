package cvs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/chmouel/lazycvs/internal/config"
	"github.com/chmouel/lazycvs/internal/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCVS keeps the committed revision of each file under .base/ and
// answers the few cvs calls a stash makes.
const fakeCVS = `#!/bin/sh
case "$1" in
diff)
	shift 2
	status=0
	for f in "$@"; do
		diff -u -L "$f" -L "$f" ".base/$f" "$f" || status=$?
	done
	exit $status
	;;
update)
	cp ".base/$5" "$5"
	;;
*)
	echo "unexpected: $*" >&2
	exit 2
	;;
esac
`

const fakeStatus = `#!/bin/sh
echo 1.1
`

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	// #nosec G306 -- test helper needs an executable script
	require.NoError(t, os.WriteFile(path, []byte(body), 0o700))
	return path
}

func TestStashAndApplyRestoresEdits(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	for _, tool := range []string{"sh", "diff", "patch"} {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not available", tool)
		}
	}

	bin := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.CVSCommand = writeScript(t, bin, "cvs", fakeCVS)
	cfg.StatusCommand = writeScript(t, bin, "jcvs", fakeStatus)
	svc := NewService(process.NewExec(), cfg)

	dir := t.TempDir()
	committed := "one\ntwo\n"
	edited := "one\nTWO\nthree\n"
	writeFile(t, filepath.Join(dir, ".base", "a.txt"), committed)
	writeFile(t, filepath.Join(dir, "a.txt"), edited)

	ctx := context.Background()
	stash, err := svc.Stash(ctx, dir, []string{"a.txt"}, "wip")
	require.NoError(t, err)
	assert.FileExists(t, stash.Path)

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, committed, string(data))

	_, err = svc.ApplyPatch(ctx, dir, stash.Path)
	require.NoError(t, err)

	data, err = os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, edited, string(data))
	assert.NoFileExists(t, stash.Path)

	stashes, err := ListStashes(dir)
	require.NoError(t, err)
	assert.Empty(t, stashes)
}
