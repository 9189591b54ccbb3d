package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"scan", "analyze", "sync", "analyses", "serve"} {
		assert.True(t, names[want], want)
	}
}

func TestRootPreRun_LogLevelOverride(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	logLevel = "debug"
	t.Cleanup(func() { logLevel = "" })

	require.NoError(t, rootCmd.PersistentPreRunE(scanCmd, nil))
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}

func TestRootPreRun_BadLogLevel(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	logLevel = "loud"
	t.Cleanup(func() { logLevel = "" })

	err := rootCmd.PersistentPreRunE(scanCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init logger")
}
