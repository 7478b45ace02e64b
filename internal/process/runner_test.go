package process

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sh(script string) Options {
	return Options{Command: "sh", Args: []string{"-c", script}}
}

func TestRunCollectsOutput(t *testing.T) {
	dir := t.TempDir()
	opts := sh("pwd; echo oops >&2")
	opts.Dir = dir

	res, err := NewExec().Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, dir)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Zero(t, res.ExitCode)
}

func TestRunWritesStdin(t *testing.T) {
	res, err := NewExec().Run(context.Background(), Options{Command: "cat", Stdin: "--- a\n+++ b\n"})
	require.NoError(t, err)
	assert.Equal(t, "--- a\n+++ b\n", res.Stdout)
}

func TestRunNonZeroExit(t *testing.T) {
	t.Run("fails by default", func(t *testing.T) {
		_, err := NewExec().Run(context.Background(), sh("echo out; echo conflict >&2; exit 3"))
		require.Error(t, err)

		var failed *FailedError
		require.ErrorAs(t, err, &failed)
		assert.Equal(t, 3, failed.ExitCode)
		assert.Equal(t, "out\n", failed.Stdout)
		assert.Equal(t, "conflict\n", failed.Stderr)
		assert.Contains(t, err.Error(), "exit status 3: conflict")
		assert.False(t, IsInfrastructure(err))
		assert.Equal(t, 3, ExitCode(err))
	})

	t.Run("ignored exit code is returned", func(t *testing.T) {
		opts := sh("echo diff; exit 1")
		opts.IgnoreExitCode = true
		res, err := NewExec().Run(context.Background(), opts)
		require.NoError(t, err)
		assert.Equal(t, 1, res.ExitCode)
		assert.Equal(t, "diff\n", res.Stdout)
	})
}

func TestRunLaunchError(t *testing.T) {
	_, err := NewExec().Run(context.Background(), Options{Command: "lazycvs-definitely-missing-binary"})
	require.Error(t, err)

	var launchErr *LaunchError
	require.ErrorAs(t, err, &launchErr)
	assert.True(t, IsInfrastructure(err))
	assert.Equal(t, -1, ExitCode(err))

	_, err = NewExec().Run(context.Background(), Options{})
	require.ErrorAs(t, err, &launchErr)
	assert.Equal(t, "<empty>", launchErr.Command)
}

func TestRunTimeout(t *testing.T) {
	opts := sh("sleep 5")
	opts.Timeout = 100 * time.Millisecond

	start := time.Now()
	_, err := NewExec().Run(context.Background(), opts)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)

	var sigErr *SignaledError
	require.ErrorAs(t, err, &sigErr)
	assert.True(t, sigErr.TimedOut)
	assert.NotEmpty(t, sigErr.Signal)
	assert.True(t, IsInfrastructure(err))
}

func TestRunNoTimeout(t *testing.T) {
	opts := sh("sleep 0.2; echo done")
	opts.Timeout = NoTimeout

	res, err := NewExec().Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "done\n", res.Stdout)
}

func TestRunSignaled(t *testing.T) {
	_, err := NewExec().Run(context.Background(), sh("kill -TERM $$"))
	require.Error(t, err)

	var sigErr *SignaledError
	require.ErrorAs(t, err, &sigErr)
	assert.False(t, sigErr.TimedOut)
	assert.Equal(t, "terminated", sigErr.Signal)
}

func TestRunIgnoresCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewExec().Run(ctx, sh("echo still ran"))
	require.NoError(t, err)
	assert.Equal(t, "still ran\n", res.Stdout)
}

func TestRunDetached(t *testing.T) {
	opts := sh("exit 0")
	opts.Detached = true

	res, err := NewExec().Run(context.Background(), opts)
	require.NoError(t, err)
	require.NotNil(t, res.Process)
	require.NoError(t, res.Process.Wait())
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "<empty>", Describe(Options{}))
	assert.Equal(t, "cvs", Describe(Options{Command: "cvs"}))
	assert.Equal(t, "cvs diff -u a.c", Describe(Options{Command: "cvs", Args: []string{"diff", "-u", "a.c"}}))
}

func TestToolOutputThroughWrapping(t *testing.T) {
	inner := &FailedError{Command: "zlint", ExitCode: 1, Stdout: "a.js:1 bad", Stderr: ""}
	wrapped := errors.Join(errors.New("lint"), inner)

	stdout, _, ok := ToolOutput(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "a.js:1 bad", stdout)

	_, _, ok = ToolOutput(errors.New("plain"))
	assert.False(t, ok)
}
