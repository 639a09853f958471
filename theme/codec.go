package theme

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"themeplane/model"
)

// Decode parses a descriptor in the given format. Decoding never validates
// color values or globs; use Validate for that.
func Decode(format Format, data []byte) (model.ThemeConfig, error) {
	var cfg model.ThemeConfig
	switch format {
	case FormatJS:
		v, err := parseJSConfig(string(data))
		if err != nil {
			return cfg, err
		}
		return configFromJS(v)
	case FormatJSON:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	case FormatTOML:
		var tc tomlConfig
		if err := toml.Unmarshal(data, &tc); err != nil {
			return cfg, err
		}
		return tc.toModel()
	default:
		return cfg, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return cfg, nil
}

// Encode serializes a descriptor in the given format.
func Encode(format Format, cfg model.ThemeConfig) ([]byte, error) {
	cfg = normalized(cfg)
	switch format {
	case FormatJS:
		return encodeJS(cfg), nil
	case FormatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatTOML:
		return toml.Marshal(tomlFromModel(cfg))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func normalized(cfg model.ThemeConfig) model.ThemeConfig {
	if cfg.Content == nil {
		cfg.Content = []string{}
	}
	if cfg.Plugins == nil {
		cfg.Plugins = []string{}
	}
	return cfg
}

// LoadFile reads a descriptor, choosing the format from the extension.
func LoadFile(path string) (model.ThemeConfig, Format, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return model.ThemeConfig{}, "", fmt.Errorf("%s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ThemeConfig{}, "", fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Decode(format, data)
	if err != nil {
		return model.ThemeConfig{}, "", fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, format, nil
}

// SaveFile writes a descriptor atomically, choosing the format from the
// extension.
func SaveFile(path string, cfg model.ThemeConfig) error {
	format, err := FormatForPath(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	data, err := Encode(format, cfg)
	if err != nil {
		return fmt.Errorf("encode config %s: %w", path, err)
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// ---------- javascript ----------

func configFromJS(v any) (model.ThemeConfig, error) {
	var cfg model.ThemeConfig
	root, ok := v.(*jsObject)
	if !ok {
		return cfg, fmt.Errorf("exported value is not an object literal")
	}

	if c, ok := root.get("content"); ok {
		globs, err := jsGlobs(c)
		if err != nil {
			return cfg, err
		}
		cfg.Content = globs
	}

	if t, ok := root.get("theme"); ok && t != nil {
		themeObj, ok := t.(*jsObject)
		if !ok {
			return cfg, fmt.Errorf("theme must be an object literal")
		}
		if c, ok := themeObj.get("colors"); ok {
			if err := jsPalette(&cfg.Theme.Colors, "theme.colors", c); err != nil {
				return cfg, err
			}
		}
		if e, ok := themeObj.get("extend"); ok && e != nil {
			extObj, ok := e.(*jsObject)
			if !ok {
				return cfg, fmt.Errorf("theme.extend must be an object literal")
			}
			if c, ok := extObj.get("colors"); ok {
				if err := jsPalette(&cfg.Theme.Extend.Colors, "theme.extend.colors", c); err != nil {
					return cfg, err
				}
			}
		}
	}

	if pl, ok := root.get("plugins"); ok && pl != nil {
		arr, ok := pl.(*jsArray)
		if !ok {
			return cfg, fmt.Errorf("plugins must be an array")
		}
		cfg.Plugins = append([]string{}, arr.raws...)
	}

	return cfg, nil
}

func jsGlobs(v any) ([]string, error) {
	switch c := v.(type) {
	case nil:
		return nil, nil
	case *jsArray:
		globs := make([]string, 0, len(c.items))
		for i, item := range c.items {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("content[%d] must be a string, got %s", i, c.raws[i])
			}
			globs = append(globs, s)
		}
		return globs, nil
	case *jsObject:
		// object form: { files: [...], relative: true }
		files, ok := c.get("files")
		if !ok {
			return nil, fmt.Errorf("content object has no files")
		}
		return jsGlobs(files)
	default:
		return nil, fmt.Errorf("content must be an array")
	}
}

func jsPalette(p *model.Palette, field string, v any) error {
	if v == nil {
		return nil
	}
	obj, ok := v.(*jsObject)
	if !ok {
		return fmt.Errorf("%s must be an object literal", field)
	}
	return jsPaletteObject(p, field, obj, "")
}

func jsPaletteObject(p *model.Palette, field string, obj *jsObject, parent string) error {
	for _, key := range obj.keys {
		name := model.ShadeName(parent, key)
		switch val := obj.vals[key].(type) {
		case string:
			p.Set(name, val)
		case jsExpr:
			// e.g. colors.gray from a required module; kept verbatim so
			// validation reports it.
			p.Set(name, string(val))
		case nil:
			p.Set(name, "")
		case *jsObject:
			if err := jsPaletteObject(p, field, val, name); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s.%s must be a string", field, name)
		}
	}
	return nil
}

func encodeJS(cfg model.ThemeConfig) []byte {
	var b strings.Builder
	b.WriteString("/** @type {import('tailwindcss').Config} */\n")
	b.WriteString("module.exports = {\n")

	quoted := make([]string, len(cfg.Content))
	for i, glob := range cfg.Content {
		quoted[i] = jsQuote(glob)
	}
	writeJSList(&b, "content", quoted)

	b.WriteString("  theme: {\n")
	if cfg.Theme.Colors.Len() > 0 {
		writeJSColors(&b, "    ", cfg.Theme.Colors)
		b.WriteString(",\n")
	}
	b.WriteString("    extend: {\n")
	writeJSColors(&b, "      ", cfg.Theme.Extend.Colors)
	b.WriteString("\n    },\n")
	b.WriteString("  },\n")

	writeJSList(&b, "plugins", cfg.Plugins)
	b.WriteString("}\n")
	return []byte(b.String())
}

func writeJSList(b *strings.Builder, key string, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(b, "  %s: [],\n", key)
		return
	}
	fmt.Fprintf(b, "  %s: [\n", key)
	for i, item := range items {
		b.WriteString("    ")
		b.WriteString(item)
		if i < len(items)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("  ],\n")
}

func writeJSColors(b *strings.Builder, indent string, p model.Palette) {
	entries := p.Entries()
	if len(entries) == 0 {
		b.WriteString(indent + "colors: {}")
		return
	}
	b.WriteString(indent + "colors: {\n")
	for i, c := range entries {
		b.WriteString(indent + "  ")
		b.WriteString(jsQuote(c.Name))
		b.WriteString(": ")
		b.WriteString(jsQuote(c.Value))
		if i < len(entries)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(indent + "}")
}

func jsQuote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// ---------- toml ----------

// TOML tables are unordered, so palettes read from TOML come back sorted by
// name.
type tomlConfig struct {
	Content []string  `toml:"content"`
	Theme   tomlTheme `toml:"theme"`
	Plugins []string  `toml:"plugins"`
}

type tomlTheme struct {
	Colors map[string]any `toml:"colors,omitempty"`
	Extend tomlExtend     `toml:"extend"`
}

type tomlExtend struct {
	Colors map[string]any `toml:"colors"`
}

func (tc tomlConfig) toModel() (model.ThemeConfig, error) {
	cfg := model.ThemeConfig{
		Content: tc.Content,
		Plugins: tc.Plugins,
	}
	if err := tomlPalette(&cfg.Theme.Colors, "theme.colors", tc.Theme.Colors, ""); err != nil {
		return cfg, err
	}
	if err := tomlPalette(&cfg.Theme.Extend.Colors, "theme.extend.colors", tc.Theme.Extend.Colors, ""); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func tomlPalette(p *model.Palette, field string, m map[string]any, parent string) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		name := model.ShadeName(parent, key)
		switch val := m[key].(type) {
		case string:
			p.Set(name, val)
		case map[string]any:
			if err := tomlPalette(p, field, val, name); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s.%s must be a string", field, name)
		}
	}
	return nil
}

func tomlFromModel(cfg model.ThemeConfig) tomlConfig {
	tc := tomlConfig{
		Content: cfg.Content,
		Plugins: cfg.Plugins,
	}
	if cfg.Theme.Colors.Len() > 0 {
		tc.Theme.Colors = anyMap(cfg.Theme.Colors)
	}
	tc.Theme.Extend.Colors = anyMap(cfg.Theme.Extend.Colors)
	return tc
}

func anyMap(p model.Palette) map[string]any {
	m := make(map[string]any, p.Len())
	for _, c := range p.Entries() {
		m[c.Name] = c.Value
	}
	return m
}
