package theme

import (
	"errors"
	"path/filepath"
	"strings"
)

// Format is a descriptor file encoding.
type Format string

const (
	FormatJS   Format = "js"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var (
	// ErrUnknownFormat is returned for unsupported file extensions or format names.
	ErrUnknownFormat = errors.New("unknown config format")
	// ErrConfigNotFound is returned when a named config does not exist.
	ErrConfigNotFound = errors.New("config not found")
	// ErrInvalidName is returned for config names that cannot be stored.
	ErrInvalidName = errors.New("invalid config name")
	// ErrReadOnly is returned when a write hits a read-only manager or a preset.
	ErrReadOnly = errors.New("config is read-only")
	// ErrInvalidBase is returned when a config is resolved on top of itself.
	ErrInvalidBase = errors.New("invalid base")
)

// ConfigExtensions lists the file extensions loaded from the config directory.
var ConfigExtensions = []string{".js", ".cjs", ".mjs", ".json", ".yaml", ".yml", ".toml"}

// Formats lists the supported formats.
var Formats = []Format{FormatJS, FormatJSON, FormatYAML, FormatTOML}

// ParseFormat accepts a format name or common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "js", "cjs", "mjs", "javascript":
		return FormatJS, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", ErrUnknownFormat
}

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", ErrUnknownFormat
	}
	return ParseFormat(ext)
}

// Ext returns the canonical file extension for the format.
func (f Format) Ext() string {
	return "." + string(f)
}

// NameForPath derives a config name from a file path: the base name without
// its extension.
func NameForPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ValidName reports whether name can be used as a stored config name.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." || len(name) > 128 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return false
		}
	}
	return true
}

// ConfigInfo summarizes a named config for listings.
type ConfigInfo struct {
	Name     string `json:"name"`
	Source   string `json:"source"`
	Globs    int    `json:"globs"`
	Colors   int    `json:"colors"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
	ReadOnly bool   `json:"read_only"`
}
