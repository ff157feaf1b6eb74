package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSampleEnv(t *testing.T) {
	target := filepath.Join(t.TempDir(), "conf", ".env")

	written, backup, err := WriteSampleEnv(target, false)
	require.NoError(t, err)
	assert.True(t, written)
	assert.Empty(t, backup)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CODECRITIC_CLAUDE_API_KEY=")

	// Existing file is kept without backup
	require.NoError(t, os.WriteFile(target, []byte("CODECRITIC_CLAUDE_API_KEY=secret\n"), 0o600))
	written, _, err = WriteSampleEnv(target, false)
	require.NoError(t, err)
	assert.False(t, written)

	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "CODECRITIC_CLAUDE_API_KEY=secret\n", string(data))

	// With backup the old contents move aside
	written, backup, err = WriteSampleEnv(target, true)
	require.NoError(t, err)
	assert.True(t, written)
	require.NotEmpty(t, backup)

	old, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "CODECRITIC_CLAUDE_API_KEY=secret\n", string(old))
}

func TestSampleEnvLoads(t *testing.T) {
	target := filepath.Join(t.TempDir(), ".env")
	_, _, err := WriteSampleEnv(target, false)
	require.NoError(t, err)

	t.Setenv("CODECRITIC_DB_PATH", filepath.Join(t.TempDir(), "codecritic.db"))
	cfg, err := LoadFromEnv(target)
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Claude.Model)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
}
