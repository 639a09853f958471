package theme

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"themeplane/logging"
	"themeplane/metrics"
	"themeplane/model"
	"themeplane/palette"
	"themeplane/storage"
)

//go:embed presets/*.js
var presetsFS embed.FS

// SourcePreset marks configs built into the binary.
const SourcePreset = "preset"

// Base palette selectors accepted by Resolve.
const (
	BaseDefault = "default"
	BaseNone    = "none"
)

// ChangeKind describes what happened to a config.
type ChangeKind string

const (
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

type entry struct {
	name   string
	source string
	path   string
	format Format
	cfg    model.ThemeConfig
	report Report
}

func (e *entry) preset() bool {
	return e.source == SourcePreset
}

// Manager holds named, independent theme configs: the built-in presets and
// the files in the store's config directory. A file shadows a preset with
// the same name. Configs are never merged with each other implicitly.
type Manager struct {
	mu       sync.RWMutex
	configs  map[string]*entry
	names    []string
	store    *storage.Store
	base     model.Palette
	readOnly bool
	onChange func(name string, kind ChangeKind)
	logger   zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithBasePalette sets the palette "default" resolves against.
func WithBasePalette(p model.Palette) Option {
	return func(m *Manager) {
		m.base = p.Clone()
	}
}

// WithReadOnly rejects Put and Delete.
func WithReadOnly(readOnly bool) Option {
	return func(m *Manager) {
		m.readOnly = readOnly
	}
}

// NewManager creates a manager and loads presets and stored configs. A nil
// store gives a manager with presets only.
func NewManager(store *storage.Store, opts ...Option) (*Manager, error) {
	m := &Manager{
		configs: make(map[string]*entry),
		store:   store,
		base:    palette.Default(),
		logger:  logging.Component("theme"),
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.Reload(); err != nil {
		return nil, fmt.Errorf("load configs: %w", err)
	}
	return m, nil
}

// SetOnChange registers a callback run after a successful Put or Delete.
func (m *Manager) SetOnChange(fn func(name string, kind ChangeKind)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// ReadOnly reports whether writes are rejected.
func (m *Manager) ReadOnly() bool {
	return m.readOnly
}

// Reload re-reads presets and stored config files.
func (m *Manager) Reload() error {
	configs := make(map[string]*entry)

	if err := loadPresets(configs); err != nil {
		return err
	}

	if m.store != nil {
		paths, err := m.store.ListConfigFiles(ConfigExtensions...)
		if err != nil {
			return err
		}
		for _, path := range paths {
			name := NameForPath(path)
			if existing, ok := configs[name]; ok && !existing.preset() {
				m.logger.Warn().Str("config", name).Str("path", path).Str("kept", existing.path).
					Msg("duplicate config name, ignoring file")
				continue
			}
			cfg, format, err := LoadFile(path)
			if err != nil {
				m.logger.Warn().Err(err).Str("path", path).Msg("failed to load config")
				continue
			}
			configs[name] = newEntry(name, path, path, format, cfg)
		}
	}

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}

	m.mu.Lock()
	m.configs = configs
	m.names = sortConfigs(names)
	m.mu.Unlock()

	metrics.ConfigsLoaded.Set(float64(len(configs)))

	m.logger.Info().Int("count", len(configs)).Msg("loaded theme configs")
	for _, name := range names {
		e := configs[name]
		m.logger.Debug().
			Str("config", name).
			Str("source", e.source).
			Int("globs", len(e.cfg.Content)).
			Int("colors", e.cfg.Theme.Extend.Colors.Len()).
			Int("errors", e.report.Count(SeverityError)).
			Msg("config loaded")
	}
	return nil
}

func loadPresets(configs map[string]*entry) error {
	entries, err := fs.ReadDir(presetsFS, "presets")
	if err != nil {
		return fmt.Errorf("read presets directory: %w", err)
	}
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		data, err := presetsFS.ReadFile("presets/" + de.Name())
		if err != nil {
			return fmt.Errorf("read preset %s: %w", de.Name(), err)
		}
		format, err := FormatForPath(de.Name())
		if err != nil {
			return fmt.Errorf("preset %s: %w", de.Name(), err)
		}
		cfg, err := Decode(format, data)
		if err != nil {
			return fmt.Errorf("parse preset %s: %w", de.Name(), err)
		}
		name := NameForPath(de.Name())
		configs[name] = newEntry(name, SourcePreset, "", format, cfg)
	}
	return nil
}

func newEntry(name, source, path string, format Format, cfg model.ThemeConfig) *entry {
	report := Validate(cfg)
	for _, p := range report.Problems {
		metrics.ValidationProblems.WithLabelValues(string(p.Kind), string(p.Severity)).Inc()
	}
	return &entry{
		name:   name,
		source: source,
		path:   path,
		format: format,
		cfg:    cfg,
		report: report,
	}
}

// Presets first in a fixed order, then everything else alphabetically.
func sortConfigs(names []string) []string {
	preferredOrder := []string{"current", "legacy"}
	var sorted []string
	var others []string

	for _, preferred := range preferredOrder {
		for _, n := range names {
			if n == preferred {
				sorted = append(sorted, n)
				break
			}
		}
	}

	for _, n := range names {
		found := false
		for _, preferred := range preferredOrder {
			if n == preferred {
				found = true
				break
			}
		}
		if !found {
			others = append(others, n)
		}
	}

	sort.Strings(others)

	return append(sorted, others...)
}

// ListConfigs returns a summary of every config in display order.
func (m *Manager) ListConfigs() []ConfigInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ConfigInfo, 0, len(m.names))
	for _, name := range m.names {
		e := m.configs[name]
		out = append(out, ConfigInfo{
			Name:     name,
			Source:   e.source,
			Globs:    len(e.cfg.Content),
			Colors:   e.cfg.Theme.Colors.Len() + e.cfg.Theme.Extend.Colors.Len(),
			Errors:   e.report.Count(SeverityError),
			Warnings: e.report.Count(SeverityWarning),
			ReadOnly: m.readOnly || e.preset(),
		})
	}
	return out
}

// Names returns config names in display order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.names...)
}

// GetConfig returns a copy of the named config.
func (m *Manager) GetConfig(name string) (model.ThemeConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.configs[name]
	if !ok {
		return model.ThemeConfig{}, fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}
	return e.cfg.Clone(), nil
}

// Report returns the validation report of the named config.
func (m *Manager) Report(name string) (Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.configs[name]
	if !ok {
		return Report{}, fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}
	return Report{Problems: append([]Problem(nil), e.report.Problems...)}, nil
}

// Put stores cfg under name, records a revision and returns its validation
// report. Validation problems do not block the write. An existing file keeps
// its format; new configs use format, or JSON when empty.
func (m *Manager) Put(name string, cfg model.ThemeConfig, format Format) (Report, error) {
	if m.readOnly {
		return Report{}, ErrReadOnly
	}
	if m.store == nil {
		return Report{}, fmt.Errorf("%w: no storage configured", ErrReadOnly)
	}
	if !ValidName(name) {
		return Report{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	m.mu.Lock()
	path := ""
	if e, ok := m.configs[name]; ok && !e.preset() {
		path = e.path
	}
	if path == "" {
		if format == "" {
			format = FormatJSON
		}
		path = filepath.Join(m.store.ConfigDir(), name+format.Ext())
	}

	if err := SaveFile(path, cfg); err != nil {
		m.mu.Unlock()
		return Report{}, err
	}
	fileFormat, _ := FormatForPath(path)
	e := newEntry(name, path, path, fileFormat, cfg.Clone())
	if _, exists := m.configs[name]; !exists {
		m.names = sortConfigs(append(m.names, name))
	}
	m.configs[name] = e
	count := len(m.configs)
	onChange := m.onChange
	m.mu.Unlock()

	metrics.ConfigsLoaded.Set(float64(count))

	rev := &model.Revision{
		Name:      name,
		Timestamp: time.Now(),
		Source:    path,
		Config:    cfg.Clone(),
	}
	if err := m.store.SaveRevision(rev); err != nil {
		m.logger.Error().Err(err).Str("config", name).Msg("failed to save revision")
	} else {
		metrics.RevisionsSaved.Inc()
	}

	m.logger.Info().
		Str("config", name).
		Str("path", path).
		Int("errors", e.report.Count(SeverityError)).
		Msg("config saved")

	if onChange != nil {
		onChange(name, ChangeUpdated)
	}
	return e.report, nil
}

// Delete removes a stored config file. Presets cannot be deleted; deleting
// a file that shadows a preset brings the preset back.
func (m *Manager) Delete(name string) error {
	if m.readOnly {
		return ErrReadOnly
	}

	m.mu.RLock()
	e, ok := m.configs[name]
	onChange := m.onChange
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}
	if e.preset() {
		return fmt.Errorf("%w: %q is a preset", ErrReadOnly, name)
	}

	if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove config %s: %w", e.path, err)
	}
	if err := m.Reload(); err != nil {
		return err
	}

	m.logger.Info().Str("config", name).Msg("config deleted")
	if onChange != nil {
		onChange(name, ChangeDeleted)
	}
	return nil
}

// Resolve returns the effective palette of the named config on top of a
// base: "default" (the configured base palette), "none" (empty), or the
// resolved palette of another config.
func (m *Manager) Resolve(name, base string) (model.Palette, error) {
	cfg, err := m.GetConfig(name)
	if err != nil {
		return model.Palette{}, err
	}

	var basePalette model.Palette
	switch strings.TrimSpace(base) {
	case "", BaseDefault:
		basePalette = m.base
	case BaseNone:
	default:
		if base == name {
			return model.Palette{}, fmt.Errorf("%w: config %q cannot be its own base", ErrInvalidBase, name)
		}
		other, err := m.GetConfig(base)
		if err != nil {
			return model.Palette{}, fmt.Errorf("base: %w", err)
		}
		basePalette = palette.Resolve(m.base, other)
	}

	return palette.Resolve(basePalette, cfg), nil
}

// History returns stored revisions of the named config.
func (m *Manager) History(name string, from, to time.Time) ([]model.Revision, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if m.store == nil {
		return nil, nil
	}
	return m.store.ListRevisions(name, from, to)
}

// PurgeHistory removes every stored revision of the named config.
func (m *Manager) PurgeHistory(name string) error {
	if m.readOnly {
		return ErrReadOnly
	}
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if m.store == nil {
		return nil
	}
	if err := m.store.DeleteRevisions(name); err != nil {
		return err
	}
	m.logger.Info().Str("config", name).Msg("history purged")
	return nil
}

// PruneHistory drops revisions of all configs recorded before cutoff.
func (m *Manager) PruneHistory(cutoff time.Time) (int, error) {
	if m.store == nil {
		return 0, nil
	}
	n, err := m.store.PruneRevisions(cutoff)
	if n > 0 {
		metrics.RevisionsPruned.Add(float64(n))
		m.logger.Info().Int("removed", n).Time("cutoff", cutoff).Msg("pruned revisions")
	}
	return n, err
}
