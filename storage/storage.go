package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"themeplane/model"
)

// Store provides persistent storage for theme config files and their
// revision history.
type Store struct {
	baseDir string
	mu      sync.Mutex
}

// New creates a new Store instance with the given base directory.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// ConfigDir is where named config files live.
func (s *Store) ConfigDir() string {
	return filepath.Join(s.baseDir, "configs")
}

func (s *Store) revisionDir() string {
	return filepath.Join(s.baseDir, "revisions")
}

// EnsureDirs creates the necessary directory structure.
func (s *Store) EnsureDirs() error {
	if err := os.MkdirAll(s.ConfigDir(), 0o755); err != nil {
		return err
	}
	return os.MkdirAll(s.revisionDir(), 0o755)
}

// ListConfigFiles returns config file paths with one of the given
// extensions, sorted by file name. A missing directory yields no files.
func (s *Store) ListConfigFiles(exts ...string) ([]string, error) {
	entries, err := os.ReadDir(s.ConfigDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read config dir: %w", err)
	}

	want := make(map[string]bool, len(exts))
	for _, ext := range exts {
		want[strings.ToLower(ext)] = true
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if len(want) > 0 && !want[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(s.ConfigDir(), entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// SaveRevision stores a snapshot of a config, organizing files by config
// name and date. ID and Timestamp are filled in when empty.
func (s *Store) SaveRevision(rev *model.Revision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rev == nil {
		return fmt.Errorf("nil revision")
	}
	if rev.Name == "" {
		return fmt.Errorf("revision has no config name")
	}
	if !safeSegment(rev.Name) {
		return fmt.Errorf("invalid config name %q", rev.Name)
	}
	if rev.ID == "" {
		rev.ID = uuid.NewString()
	}
	if !safeSegment(rev.ID) {
		return fmt.Errorf("invalid revision id %q", rev.ID)
	}
	if rev.Timestamp.IsZero() {
		rev.Timestamp = time.Now()
	}

	t := rev.Timestamp.UTC()
	dir := filepath.Join(
		s.revisionDir(),
		rev.Name,
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%02d", t.Month()),
		fmt.Sprintf("%02d", t.Day()),
	)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	filename := fmt.Sprintf("%s-%s.json", t.Format("2006-01-02T15-04-05.000000000Z07-00"), rev.ID[:min(8, len(rev.ID))])
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(rev)
}

// ListRevisions retrieves the revisions of a config within the time range,
// sorted by timestamp in ascending order.
func (s *Store) ListRevisions(name string, from, to time.Time) ([]model.Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from = from.UTC()
	to = to.UTC()

	base := filepath.Join(s.revisionDir(), name)
	var revisions []model.Revision

	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".json" {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		var r model.Revision
		if err := json.NewDecoder(f).Decode(&r); err != nil {
			return fmt.Errorf("decode revision %s: %w", path, err)
		}
		if r.Timestamp.IsZero() {
			return nil
		}

		t := r.Timestamp.UTC()
		if t.Before(from) || t.After(to) {
			return nil
		}

		revisions = append(revisions, r)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	sort.Slice(revisions, func(i, j int) bool {
		return revisions[i].Timestamp.Before(revisions[j].Timestamp)
	})

	return revisions, nil
}

// DeleteRevisions removes the whole history of a config.
func (s *Store) DeleteRevisions(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !safeSegment(name) {
		return fmt.Errorf("invalid config name %q", name)
	}
	return os.RemoveAll(filepath.Join(s.revisionDir(), name))
}

// safeSegment reports whether s can be used as a single path element.
func safeSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

// PruneRevisions removes revisions of every config stored before cutoff and
// returns how many were removed.
func (s *Store) PruneRevisions(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff = cutoff.UTC()
	removed := 0
	err := filepath.WalkDir(s.revisionDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var r model.Revision
		if err := json.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("decode revision %s: %w", path, err)
		}
		if r.Timestamp.IsZero() || !r.Timestamp.UTC().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return removed, err
	}
	return removed, nil
}
