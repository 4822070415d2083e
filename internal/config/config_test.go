package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreate_WritesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".tors")

	cfg, err := LoadOrCreate(dir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, DefaultConfigFileName))
	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, filepath.Join(dir, DefaultDBName), cfg.DBPath)
	assert.Equal(t, filepath.Join(dir, DefaultLogName), cfg.LogPath)
	assert.Equal(t, DefaultWidthMargin, cfg.WidthMargin)
	assert.Equal(t, " ", cfg.Keys.Toggle)
	assert.Equal(t, "esc", cfg.Keys.Quit)
}

func TestLoadOrCreate_ReadsOverrides(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`db_path = "/var/tmp/tasks.db"
log_level = "debug"

[keys]
new = "a"
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFileName), data, 0o644))

	cfg, err := LoadOrCreate(dir)
	require.NoError(t, err)

	assert.Equal(t, "/var/tmp/tasks.db", cfg.DBPath)
	assert.Equal(t, filepath.Join(dir, DefaultLogName), cfg.LogPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "a", cfg.Keys.New)
	// untouched bindings keep their defaults
	assert.Equal(t, "d", cfg.Keys.Delete)
	assert.Equal(t, "enter", cfg.Keys.Open)
}

func TestLoadOrCreate_RejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFileName), []byte("db_path = ["), 0o644))

	_, err := LoadOrCreate(dir)
	assert.Error(t, err)
}
