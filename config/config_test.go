package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	want := Config{
		DataDir:     dir,
		ListenAddr:  "127.0.0.1:9090",
		LogLevel:    "debug",
		LogJSON:     true,
		BasePalette: "base.config.js",
		ReadOnly:    true,
	}
	require.NoError(t, Save(want))

	_, err := os.Stat(filepath.Join(dir, FileName+".tmp"))
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(Config{DataDir: dir, ListenAddr: ":8080", LogLevel: "info"}))

	t.Setenv("THEMEPLANE_LISTEN_ADDR", ":7070")
	t.Setenv("THEMEPLANE_READ_ONLY", "true")

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":7070", got.ListenAddr)
	assert.True(t, got.ReadOnly)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"log_level":"warn"}`), 0o644))

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "warn", got.LogLevel)
	assert.Equal(t, ":8080", got.ListenAddr)
	assert.Equal(t, ".", got.DataDir)
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{not json`), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
}
