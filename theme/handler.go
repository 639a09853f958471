package theme

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"themeplane/logging"
	"themeplane/model"
	"themeplane/palette"
)

const maxBodyBytes = 1 << 20

// Handler handles theme config HTTP requests.
type Handler struct {
	manager *Manager
	logger  zerolog.Logger
}

// NewHandler creates a new theme handler.
func NewHandler(manager *Manager) *Handler {
	return &Handler{
		manager: manager,
		logger:  logging.Component("theme-http"),
	}
}

// Register mounts the config routes.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/configs", h.HandleConfigs)
	mux.HandleFunc("/api/configs/", h.HandleConfig)
}

// HandleConfigs lists all configs.
func (h *Handler) HandleConfigs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, h.manager.ListConfigs())
}

// HandleConfig serves /api/configs/{name}[/action].
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/configs/"), "/")
	name, action, _ := strings.Cut(rest, "/")
	if name == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case action == "":
		h.handleConfigDocument(w, r, name)
	case action == "validate":
		h.handleValidate(w, r, name)
	case action == "palette":
		h.handlePalette(w, r, name)
	case action == "history":
		h.handleHistory(w, r, name)
	case action == "export.csv":
		h.handleExportCSV(w, r, name)
	case strings.HasPrefix(action, "export."):
		h.handleExport(w, r, name, strings.TrimPrefix(action, "export."))
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleConfigDocument(w http.ResponseWriter, r *http.Request, name string) {
	switch r.Method {
	case http.MethodGet:
		cfg, err := h.manager.GetConfig(name)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, normalized(cfg))

	case http.MethodPut:
		format := FormatJSON
		if q := r.URL.Query().Get("format"); q != "" {
			f, err := ParseFormat(q)
			if err != nil {
				http.Error(w, "unknown format", http.StatusBadRequest)
				return
			}
			format = f
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		cfg, err := Decode(format, body)
		if err != nil {
			http.Error(w, "invalid config: "+err.Error(), http.StatusBadRequest)
			return
		}

		report, err := h.manager.Put(name, cfg, format)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]any{
			"name":   name,
			"report": report,
		})

	case http.MethodDelete:
		if err := h.manager.Delete(name); err != nil {
			h.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPut+", "+http.MethodDelete)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request, name string) {
	if !allowGet(w, r) {
		return
	}
	report, err := h.manager.Report(name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if report.Problems == nil {
		report.Problems = []Problem{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"name":        name,
		"valid":       !report.HasErrors(),
		"problems":    report.Problems,
		"error_count": report.Count(SeverityError),
	})
}

// Swatch is a resolved color with the text color that reads best on it.
type Swatch struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Text  string `json:"text"`
}

func (h *Handler) handlePalette(w http.ResponseWriter, r *http.Request, name string) {
	if !allowGet(w, r) {
		return
	}
	base := r.URL.Query().Get("base")
	if base == "" {
		base = BaseDefault
	}

	resolved, err := h.manager.Resolve(name, base)
	if err != nil {
		h.writeError(w, err)
		return
	}

	swatches := make([]Swatch, 0, resolved.Len())
	for _, c := range resolved.Entries() {
		swatches = append(swatches, Swatch{Name: c.Name, Value: c.Value, Text: palette.ContrastText(c.Value)})
	}

	w.Header().Set("Cache-Control", "no-cache")
	h.writeJSON(w, http.StatusOK, map[string]any{
		"name":   name,
		"base":   base,
		"colors": swatches,
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request, name string) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodDelete:
		if err := h.manager.PurgeHistory(name); err != nil {
			h.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodDelete)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()

	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "invalid from", http.StatusBadRequest)
			return
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "invalid to", http.StatusBadRequest)
			return
		}
		to = t
	}

	revisions, err := h.manager.History(name, from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if revisions == nil {
		h.writeJSON(w, http.StatusOK, []any{})
		return
	}
	h.writeJSON(w, http.StatusOK, revisions)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, name, ext string) {
	if !allowGet(w, r) {
		return
	}
	format, err := ParseFormat(ext)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	cfg, err := h.manager.GetConfig(name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	data, err := Encode(format, cfg)
	if err != nil {
		h.logger.Error().Err(err).Str("config", name).Msg("encode export")
		http.Error(w, "failed to encode config", http.StatusInternalServerError)
		return
	}

	contentTypes := map[Format]string{
		FormatJS:   "application/javascript; charset=utf-8",
		FormatJSON: "application/json",
		FormatYAML: "application/yaml",
		FormatTOML: "application/toml",
	}
	filename := name + format.Ext()
	if format == FormatJS {
		filename = "tailwind.config.js"
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request, name string) {
	if !allowGet(w, r) {
		return
	}
	cfg, err := h.manager.GetConfig(name)
	if err != nil {
		h.writeError(w, err)
		return
	}

	filename := fmt.Sprintf("%s-colors-%s.csv", name, time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Section", "Name", "Value"}); err != nil {
		h.logger.Error().Err(err).Msg("write CSV header")
		return
	}
	sections := []struct {
		field  string
		colors model.Palette
	}{
		{fieldThemeColor, cfg.Theme.Colors},
		{fieldExtendColor, cfg.Theme.Extend.Colors},
	}
	for _, sec := range sections {
		for _, c := range sec.colors.Entries() {
			if err := writer.Write([]string{sec.field, c.Name, c.Value}); err != nil {
				h.logger.Error().Err(err).Msg("write CSV row")
				return
			}
		}
	}
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	w.WriteHeader(http.StatusMethodNotAllowed)
	return false
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrConfigNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidBase):
		status = http.StatusBadRequest
	case errors.Is(err, ErrReadOnly):
		status = http.StatusForbidden
	}
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg("request failed")
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("writeJSON")
	}
}
