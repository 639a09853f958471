// Package content resolves a descriptor's content globs to file paths. It
// lists paths only; file contents are never read.
package content

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"themeplane/model"
)

// Patterns splits content globs into include patterns and "!"-negated
// exclude patterns. Blank entries are skipped.
func Patterns(cfg model.ThemeConfig) (include, exclude []string) {
	for _, glob := range cfg.Content {
		glob = strings.TrimSpace(glob)
		if glob == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(glob, "!"); ok {
			if rest = strings.TrimSpace(rest); rest != "" {
				exclude = append(exclude, rest)
			}
			continue
		}
		include = append(include, glob)
	}
	return include, exclude
}

// Match returns the files selected by cfg's globs, resolved against baseDir
// (normally the directory holding the config file). Paths are relative to
// baseDir, sorted and unique.
func Match(baseDir string, cfg model.ThemeConfig) ([]string, error) {
	include, exclude := Patterns(cfg)

	excludeAbs := make([]string, 0, len(exclude))
	for _, pattern := range exclude {
		excludeAbs = append(excludeAbs, absPattern(baseDir, pattern))
	}

	seen := make(map[string]bool)
	var out []string
	for _, pattern := range include {
		matches, err := doublestar.FilepathGlob(absPattern(baseDir, pattern), doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			if excluded(excludeAbs, match) {
				continue
			}
			rel, err := filepath.Rel(baseDir, match)
			if err != nil {
				rel = match
			}
			rel = filepath.ToSlash(rel)
			if seen[rel] {
				continue
			}
			seen[rel] = true
			out = append(out, rel)
		}
	}

	sort.Strings(out)
	return out, nil
}

func absPattern(baseDir, pattern string) string {
	pattern = filepath.FromSlash(pattern)
	if filepath.IsAbs(pattern) {
		return filepath.Clean(pattern)
	}
	return filepath.Join(baseDir, pattern)
}

func excluded(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.PathMatch(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
