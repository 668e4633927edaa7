package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mqy/chatdump/dumper"
	"github.com/mqy/chatdump/shutdown"
)

func parseArgs(t *testing.T, args ...string) {
	t.Helper()
	saved := map[string]string{}
	for _, name := range []string{"root", "resume-file", "resume-backend", "gateway-url", "gateway-timeout",
		"page-size", "first-match", "pid-file", "metrics-file", "transcript"} {
		saved[name] = flag.Lookup(name).Value.String()
	}
	t.Cleanup(func() {
		for name, v := range saved {
			_ = flag.Set(name, v)
		}
		_ = flag.CommandLine.Parse(nil)
	})
	require.NoError(t, flag.CommandLine.Parse(args))
}

func TestValidateFlags(t *testing.T) {
	tests := []struct {
		args []string
		code int
	}{
		{args: []string{"Family"}, code: 0},
		{args: []string{"--first-match", "--page-size", "50", "Work chat"}, code: 0},
		{args: []string{"--resume-backend", "bolt", "Family"}, code: 0},
		{args: []string{"--transcript", "Family"}, code: 0},
		{args: nil, code: 1},
		{args: []string{"a", "b"}, code: 1},
		{args: []string{"  "}, code: 1},
		{args: []string{"--resume-backend", "mysql", "Family"}, code: 1},
		{args: []string{"--page-size", "0", "Family"}, code: 1},
		{args: []string{"--page-size", "5000", "Family"}, code: 1},
		{args: []string{"--root", "", "Family"}, code: 1},
		{args: []string{"--gateway-timeout", "-1s", "Family"}, code: 1},
	}

	for _, test := range tests {
		t.Run(strconv.Quote(strings.Join(test.args, " ")), func(t *testing.T) {
			parseArgs(t, test.args...)
			assert.Equal(t, test.code, validateFlags())
		})
	}
}

func TestSavePid(t *testing.T) {
	name := filepath.Join(t.TempDir(), "chatdump.pid")

	require.NoError(t, savePid(name, 123))
	content, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "123", string(content))

	// this process is alive.
	require.NoError(t, os.WriteFile(name, []byte(strconv.Itoa(os.Getpid())), 0600))
	assert.Error(t, savePid(name, 456))

	require.NoError(t, os.WriteFile(name, []byte("not a pid"), 0600))
	assert.Error(t, savePid(name, 456))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(syscall.SIGINT))
	assert.Equal(t, 15, exitCode(syscall.SIGTERM))
	assert.Equal(t, 1, exitCode(nil))
}

func TestSavePidStale(t *testing.T) {
	name := filepath.Join(t.TempDir(), "chatdump.pid")
	// pids above the kernel limit never run.
	require.NoError(t, os.WriteFile(name, []byte("99999999\n"), 0600))

	require.NoError(t, savePid(name, 789))
	content, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "789", string(content))
}

func TestExitStatus(t *testing.T) {
	failed := errors.Wrap(context.Canceled, "list dialogs")

	coord := shutdown.NewCoordinator(nil)
	assert.Equal(t, 0, exitStatus("q", &dumper.Summary{}, nil, coord))
	assert.Equal(t, 1, exitStatus("q", &dumper.Summary{}, failed, coord))

	// a stop that surfaced as a cancelled request still exits with the signal.
	coord = shutdown.NewCoordinator(nil)
	coord.Stop(syscall.SIGTERM)
	assert.Equal(t, 15, exitStatus("q", nil, failed, coord))
	assert.Equal(t, 15, exitStatus("q", &dumper.Summary{Interrupted: true}, nil, coord))

	coord = shutdown.NewCoordinator(nil)
	coord.Stop(syscall.SIGINT)
	assert.Equal(t, 2, exitStatus("q", &dumper.Summary{Interrupted: true}, nil, coord))
}
