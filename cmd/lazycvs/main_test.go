package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/chmouel/lazycvs/internal/cvs"
	"github.com/chmouel/lazycvs/internal/models"
	"github.com/chmouel/lazycvs/internal/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRunner struct {
	mu      sync.Mutex
	calls   []string
	status  string
	respond func(opts process.Options) (*process.Result, error)
}

func (r *scriptedRunner) Run(_ context.Context, opts process.Options) (*process.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, process.Describe(opts))
	r.mu.Unlock()
	if r.respond != nil {
		if res, err := r.respond(opts); res != nil || err != nil {
			return res, err
		}
	}
	switch {
	case opts.Command == "jcvs" && opts.Args[0] == "up":
		return &process.Result{Stdout: r.status}, nil
	case opts.Command == "jcvs" && opts.Args[0] == "revision":
		return &process.Result{Stdout: "1.5\n"}, nil
	}
	return &process.Result{}, nil
}

func (r *scriptedRunner) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type cliFixture struct {
	base   string
	zon    string
	runner *scriptedRunner
}

func newCLIFixture(t *testing.T, status string) *cliFixture {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	base := t.TempDir()
	for _, name := range []string{"zon1", "zon2"} {
		require.NoError(t, os.Mkdir(filepath.Join(base, name), 0o750))
	}
	return &cliFixture{base: base, zon: filepath.Join(base, "zon1"), runner: &scriptedRunner{status: status}}
}

func (f *cliFixture) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newCLIApp(f.runner)
	app.stdout = &stdout
	app.stderr = &stderr
	app.stdin = strings.NewReader(stdin)

	argv := append([]string{"lazycvs", "--base-dir", f.base}, args...)
	err := newRootCommand(app).Run(context.Background(), argv)
	return stdout.String(), err
}

func (f *cliFixture) write(t *testing.T, name, content string) {
	t.Helper()
	path := filepath.Join(f.zon, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestVersionCommand(t *testing.T) {
	f := newCLIFixture(t, "")
	out, err := f.run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "lazycvs dev"))
}

func TestZonsAndSwitch(t *testing.T) {
	f := newCLIFixture(t, "")

	out, err := f.run(t, "", "zons")
	require.NoError(t, err)
	assert.Equal(t, "* zon1\n  zon2\n", out)

	out, err = f.run(t, "", "switch", "zon2")
	require.NoError(t, err)
	assert.Equal(t, "switched to zon2\n", out)

	out, err = f.run(t, "", "zons")
	require.NoError(t, err)
	assert.Equal(t, "  zon1\n* zon2\n", out)

	_, err = f.run(t, "", "switch")
	require.Error(t, err)
}

func TestStatusCommand(t *testing.T) {
	f := newCLIFixture(t, "M  b.js\n?  lib\nA  a.js\n")
	require.NoError(t, os.Mkdir(filepath.Join(f.zon, "lib"), 0o750))

	out, err := f.run(t, "", "status")
	require.NoError(t, err)
	assert.Equal(t, "zon1 ("+f.zon+")\n? lib/\nA a.js\nM b.js\n", out)

	out, err = f.run(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, "M b.js")
}

func TestStatusCommandClean(t *testing.T) {
	f := newCLIFixture(t, "")
	out, err := f.run(t, "", "st")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to commit")
}

func TestDiffCommand(t *testing.T) {
	f := newCLIFixture(t, "M  a.txt\n")
	f.write(t, "a.txt", "one\nthree\n")
	f.runner.respond = func(opts process.Options) (*process.Result, error) {
		if opts.Command == "cvs" && opts.Args[0] == "update" {
			return &process.Result{Stdout: "one\ntwo\n"}, nil
		}
		return nil, nil
	}

	out, err := f.run(t, "", "diff", "a.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "--- a.txt@1.5")
	assert.Contains(t, out, "-two")
	assert.Contains(t, out, "+three")
}

func TestAddAndRemoveCommands(t *testing.T) {
	f := newCLIFixture(t, "?  lib/new.js\nU  old.js\nM  edit.js\n")

	out, err := f.run(t, "", "add", "lib/new.js")
	require.NoError(t, err)
	assert.Equal(t, "add: lib/new.js\n", out)

	out, err = f.run(t, "", "remove", "old.js")
	require.NoError(t, err)
	assert.Equal(t, "remove: old.js\n", out)

	calls := f.runner.recorded()
	assert.Contains(t, calls, "cvs add new.js")
	assert.Contains(t, calls, "cvs remove -Rf old.js")
}

func TestAddAndRemoveCommandsCheckMode(t *testing.T) {
	f := newCLIFixture(t, "?  new.js\nM  edit.js\n")

	_, err := f.run(t, "", "add", "edit.js")
	require.ErrorContains(t, err, "edit.js is modified")
	_, err = f.run(t, "", "remove", "new.js", "../outside.js")
	require.ErrorContains(t, err, "new.js is untracked")
	require.ErrorContains(t, err, "../outside.js has no local changes")

	for _, call := range f.runner.recorded() {
		assert.Equal(t, "jcvs up -o", call)
	}
}

func TestCommitCommandDryRun(t *testing.T) {
	f := newCLIFixture(t, "M  a.js\nM  b.js\n")
	f.runner.respond = func(opts process.Options) (*process.Result, error) {
		if opts.Command == "cvs" {
			return &process.Result{Stdout: "? ok\n"}, nil
		}
		return nil, nil
	}

	out, err := f.run(t, "", "commit", "--dry-run", "--notify", "alice", "--notify", "bob", "a.js")
	require.NoError(t, err)
	assert.Equal(t, "dry run passed\n    ? ok\n", out)
	assert.Contains(t, f.runner.recorded(), "cvs -n commit -m dry run\nNOTIFY: alice bob a.js")
}

func TestCommitCommandDryRunSkipsUntrackedFiles(t *testing.T) {
	f := newCLIFixture(t, "?  new.js\nM  a.js\n")

	out, err := f.run(t, "", "commit", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, "dry run passed\n", out)
	calls := f.runner.recorded()
	assert.Contains(t, calls, "cvs -n commit -m dry run a.js")
	for _, call := range calls {
		assert.NotContains(t, call, "new.js")
	}
}

func TestCommitCommandFailure(t *testing.T) {
	f := newCLIFixture(t, "M  a.js\n")
	f.runner.respond = func(opts process.Options) (*process.Result, error) {
		if opts.Command == "cvs" && opts.Args[0] == "commit" {
			return &process.Result{ExitCode: 1}, &process.FailedError{Command: "cvs commit", ExitCode: 1, Stderr: "Up-to-date check failed"}
		}
		return nil, nil
	}

	_, err := f.run(t, "", "commit", "-m", "fix")
	var commitErr *cvs.CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, "Up-to-date check failed", commitErr.Stderr)
}

func TestDiscardCommand(t *testing.T) {
	f := newCLIFixture(t, "?  tmp.txt\n")
	f.write(t, "tmp.txt", "x")

	out, err := f.run(t, "", "discard", "tmp.txt")
	require.NoError(t, err)
	assert.Equal(t, "discarded 1 file(s)\n", out)
	assert.NoFileExists(t, filepath.Join(f.zon, "tmp.txt"))

	_, err = f.run(t, "", "discard", "unknown.txt")
	require.Error(t, err)
}

func TestStashCommands(t *testing.T) {
	f := newCLIFixture(t, "M  a.js\n")
	f.runner.respond = func(opts process.Options) (*process.Result, error) {
		if opts.Command == "cvs" && opts.Args[0] == "diff" {
			return &process.Result{Stdout: "--- a.js\n", ExitCode: 1}, nil
		}
		return nil, nil
	}

	out, err := f.run(t, "", "stash", "--name", "wip", "a.js")
	require.NoError(t, err)
	assert.Equal(t, "stashed as wip\n", out)

	out, err = f.run(t, "", "stashes")
	require.NoError(t, err)
	assert.Equal(t, "wip "+cvs.StashPath(f.zon, "wip")+"\n", out)

	out, err = f.run(t, "", "apply", "wip")
	require.NoError(t, err)
	assert.Equal(t, "applied wip\n", out)

	out, err = f.run(t, "", "stashes")
	require.NoError(t, err)
	assert.Equal(t, "no stashes\n", out)
}

func TestLintCommand(t *testing.T) {
	f := newCLIFixture(t, "M  a.js\nM  main.go\nR  gone.css\n")

	out, err := f.run(t, "", "lint")
	require.NoError(t, err)
	assert.Equal(t, "lint passed for 1 file(s)\n", out)
	assert.Contains(t, f.runner.recorded(), "zlint a.js")

	out, err = f.run(t, "", "lint", "README")
	require.NoError(t, err)
	assert.Equal(t, "nothing to lint\n", out)
}

func TestSaveCommand(t *testing.T) {
	f := newCLIFixture(t, "")
	f.write(t, "a.js", "old")

	out, err := f.run(t, "new content", "save", "a.js")
	require.NoError(t, err)
	assert.Equal(t, "saved a.js\n", out)
	data, err := os.ReadFile(filepath.Join(f.zon, "a.js"))
	require.NoError(t, err)
	assert.Equal(t, "new content", string(data))
}

func TestUnknownThemeIsRejected(t *testing.T) {
	f := newCLIFixture(t, "")
	_, err := f.run(t, "", "--theme", "nope", "status")
	require.ErrorContains(t, err, "unknown theme")
}

func TestRendererEntry(t *testing.T) {
	plain := newRenderer("", false, false)
	assert.Equal(t, "C merge.c", plain.entry(models.StatusEntry{Filename: "merge.c", Mode: models.ModeConflicted}))
	assert.Equal(t, "? build/", plain.entry(models.StatusEntry{Filename: "build", Mode: models.ModeUnknown, IsDir: true}))

	withIcons := newRenderer("", false, true)
	line := withIcons.entry(models.StatusEntry{Filename: "src/app.js", Mode: models.ModeModified})
	assert.True(t, strings.HasPrefix(line, "M "))
	assert.True(t, strings.HasSuffix(line, " src/app.js"))
	assert.NotEqual(t, "M src/app.js", line)
}

func TestRendererDiffWithoutRevision(t *testing.T) {
	r := newRenderer("", false, false)
	assert.Equal(t, "content\n", r.diff("a.txt", &models.DiffPayload{Current: "content\n"}))
	assert.Equal(t, "no differences\n", r.diff("a.txt", &models.DiffPayload{Revision: "1.1", Original: "x\n", Current: "x\n"}))
}

func TestRendererErrorText(t *testing.T) {
	r := newRenderer("", false, false)

	launch := &process.LaunchError{Command: "jcvs up -o", Err: os.ErrNotExist}
	assert.True(t, strings.HasPrefix(r.errorText(&cvs.StatusToolError{Dir: "/zon", Err: launch}), "Infrastructure error: "))

	lint := &cvs.LintError{Files: []string{"a.js"}, Stdout: "a.js:1 bad\n", Err: &process.FailedError{Command: "zlint a.js", ExitCode: 1}}
	assert.Equal(t, "Error: "+lint.Error()+"\n    a.js:1 bad", r.errorText(lint))

	failed := &cvs.MutationError{Op: "patch", Path: "x.patch", Err: &process.FailedError{Command: "patch -p0", ExitCode: 1, Stdout: "Hunk #1 FAILED\n"}}
	assert.True(t, strings.HasSuffix(r.errorText(failed), "\n    Hunk #1 FAILED"))

	assert.Empty(t, r.errorText(nil))
}
