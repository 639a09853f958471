package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"themeplane/config"
	"themeplane/theme"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestValidate_Presets(t *testing.T) {
	out, err := execute(t, "validate", "preset:current", "preset:legacy")
	require.NoError(t, err)
	assert.Contains(t, out, "preset:current")
	assert.Contains(t, out, "preset:legacy")
	assert.NotContains(t, out, "FAIL")
}

func TestValidate_FailsOnMalformedColor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	writeFile(t, path, `{"content":["src/**/*.rs", ""],"theme":{"extend":{"colors":{"bad":"#12"}}},"plugins":[]}`)

	out, err := execute(t, "validate", path)
	require.ErrorIs(t, err, errValidationFailed)
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "theme.extend.colors.bad")
	assert.Contains(t, out, "content[1]")
}

func TestValidate_JSON(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.js")

	out, err := execute(t, "validate", "--json", "preset:legacy", missing)
	require.ErrorIs(t, err, errValidationFailed)

	var reports []fileReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.True(t, reports[0].Valid)
	assert.False(t, reports[1].Valid)
	assert.NotEmpty(t, reports[1].Error)
}

func TestResolve_BaseNone(t *testing.T) {
	out, err := execute(t, "resolve", "--json", "--base", "none", "preset:current")
	require.NoError(t, err)
	assert.Equal(t, `{
  "gray": "#e9e9e9",
  "lightgray": "#f3f3f3",
  "coreblue": "#007acc",
  "darkgray": "#828282",
  "innergray": "#dfdfdf",
  "mineshaft": "#2c2c2c"
}
`, out)
}

func TestResolve_BaseOtherConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brand.json")
	writeFile(t, path, `{"content":["a.rs"],"theme":{"extend":{"colors":{"gray":"#000000","brand":"#ff0000"}}},"plugins":[]}`)

	out, err := execute(t, "resolve", "--json", "--base", "preset:legacy", path)
	require.NoError(t, err)

	var resolved map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &resolved))
	assert.Equal(t, "#000000", resolved["gray"])
	assert.Equal(t, "#2c2c2c", resolved["offblack"])
	assert.Equal(t, "#ff0000", resolved["brand"])
	assert.Contains(t, resolved, "slate")
}

func TestNearest(t *testing.T) {
	out, err := execute(t, "nearest", "preset:current", "#0077cc")
	require.NoError(t, err)
	assert.Contains(t, out, "coreblue")
}

func TestConvert_RoundTripsThroughFormats(t *testing.T) {
	dir := t.TempDir()
	js := filepath.Join(dir, "tailwind.config.js")
	yml := filepath.Join(dir, "tailwind.config.yaml")
	toml := filepath.Join(dir, "tailwind.config.toml")

	_, err := execute(t, "convert", "preset:legacy", js)
	require.NoError(t, err)
	_, err = execute(t, "convert", js, yml)
	require.NoError(t, err)
	_, err = execute(t, "convert", yml, toml)
	require.NoError(t, err)

	want, err := loadDescriptor("preset:legacy")
	require.NoError(t, err)
	for _, path := range []string{js, yml, toml} {
		got, _, err := theme.LoadFile(path)
		require.NoError(t, err, path)
		assert.True(t, want.Equal(got), path)
	}
}

func TestConvert_Stdout(t *testing.T) {
	out, err := execute(t, "convert", "preset:current", "-", "--to", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"mineshaft": "#2c2c2c"`)

	_, err = execute(t, "convert", "preset:current", "-", "--to", "xml")
	require.ErrorIs(t, err, theme.ErrUnknownFormat)
}

func TestFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "crates/frontend/src/styles/menu.rs"), "")
	writeFile(t, filepath.Join(root, "crates/frontend/src/styles.rs"), "")
	cfgPath := filepath.Join(root, "frontend", "tailwind.config.json")
	writeFile(t, cfgPath, `{"content":["../crates/frontend/src/styles/**/*.rs"],"theme":{"extend":{"colors":{}}},"plugins":[]}`)

	out, err := execute(t, "files", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "../crates/frontend/src/styles/menu.rs\n", out)
}

func TestPresets(t *testing.T) {
	out, err := execute(t, "presets")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "current"))
	assert.True(t, strings.HasPrefix(lines[1], "legacy"))

	out, err = execute(t, "presets", "legacy")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "/** @type {import('tailwindcss').Config} */\n"))
	assert.Contains(t, out, "'offblack': '#2c2c2c'")

	_, err = execute(t, "presets", "nope")
	require.ErrorIs(t, err, theme.ErrConfigNotFound)
}

func TestShow(t *testing.T) {
	out, err := execute(t, "show", "preset:legacy")
	require.NoError(t, err)
	assert.Contains(t, out, "../crates/frontend/src/styles.rs")
	assert.Contains(t, out, "offblack")
	assert.Contains(t, out, "plugins")
}

func TestConfigGenerate(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "config", "generate", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, config.FileName)

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)

	_, err = execute(t, "config", "generate", "--data-dir", dir)
	require.Error(t, err)
}

func TestLoadBasePalette(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.json"), `{"content":[],"theme":{"colors":{"ink":"#111111"},"extend":{"colors":{"paper":"#fafafa"}}},"plugins":[]}`)

	p, err := loadBasePalette(config.Config{DataDir: dir, BasePalette: "base.json"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ink", "paper"}, p.Names())

	p, err = loadBasePalette(config.Config{DataDir: dir})
	require.NoError(t, err)
	assert.True(t, p.Has("slate"))

	_, err = loadBasePalette(config.Config{DataDir: dir, BasePalette: "missing.json"})
	require.Error(t, err)
}
