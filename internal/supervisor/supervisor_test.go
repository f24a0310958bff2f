package supervisor

import (
	"context"
	"testing"
	"time"

	ps "github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

func TestSpawnAndWait(t *testing.T) {
	proc, err := Spawn(context.Background(), nil, "/bin/sh", "-c", "exit 0")
	require.NoError(t, err)
	require.Positive(t, proc.Pid())
	require.NoError(t, proc.Wait())
}

func TestTerminateAndReapLeavesNoProcess(t *testing.T) {
	proc, err := Spawn(context.Background(), nil, "/bin/sleep", "30")
	require.NoError(t, err)
	pid := proc.Pid()

	proc.TerminateAndReap()

	require.Eventually(t, func() bool {
		found, lookupErr := ps.FindProcess(pid)
		return lookupErr == nil && found == nil
	}, 5*time.Second, 20*time.Millisecond, "killed child must leave the process table")
}

func TestTerminateAndReapByPid(t *testing.T) {
	proc, err := Spawn(context.Background(), nil, "/bin/sleep", "30")
	require.NoError(t, err)
	pid := proc.Pid()

	// The pid flavor reaps via wait4, which works here because the test
	// process is the parent.
	TerminateAndReap(nil, pid)

	require.Eventually(t, func() bool {
		found, lookupErr := ps.FindProcess(pid)
		return lookupErr == nil && found == nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestTerminateAndReapUnknownPidDoesNotPanic(t *testing.T) {
	// Large pid unlikely to exist; both kill and wait fail, neither escalates.
	TerminateAndReap(nil, 1<<22-7)
}

func TestSpawnMissingBinary(t *testing.T) {
	_, err := Spawn(context.Background(), nil, "/nonexistent/sysq-test-binary")
	require.Error(t, err)
}

func TestSelfResolves(t *testing.T) {
	exe, err := Self()
	require.NoError(t, err)
	require.NotEmpty(t, exe)
}
