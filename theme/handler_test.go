package theme

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...Option) (*Manager, http.Handler) {
	t.Helper()
	m, _ := newTestManager(t, opts...)
	mux := http.NewServeMux()
	NewHandler(m).Register(mux)
	return m, mux
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ListConfigs(t *testing.T) {
	_, h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/configs", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []ConfigInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "current", infos[0].Name)
	assert.Equal(t, "legacy", infos[1].Name)

	rec = do(t, h, http.MethodPost, "/api/configs", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestHandler_GetConfig(t *testing.T) {
	_, h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/configs/legacy", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `"content":["../crates/frontend/src/styles.rs"]`)
	assert.Contains(t, body, `"plugins":[]`)
	assert.Less(t, strings.Index(body, `"gray"`), strings.Index(body, `"offblack"`), "palette order kept")

	rec = do(t, h, http.MethodGet, "/api/configs/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/configs/legacy/bogus", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_PutAndDelete(t *testing.T) {
	m, h := newTestHandler(t)

	js := `module.exports = {
  content: ['src/**/*.rs'],
  theme: { extend: { colors: { brand: '#0055ff', bad: '#12' } } },
  plugins: [],
}`
	rec := do(t, h, http.MethodPut, "/api/configs/brand?format=js", js)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Name   string `json:"name"`
		Report Report `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "brand", resp.Name)
	require.Len(t, resp.Report.Problems, 1)
	assert.Equal(t, MalformedColorValue, resp.Report.Problems[0].Kind)
	assert.Contains(t, m.Names(), "brand")

	rec = do(t, h, http.MethodPut, "/api/configs/brand", `{"content": [`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/configs/brand?format=xml", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/configs/brand", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, m.Names(), "brand")

	rec = do(t, h, http.MethodDelete, "/api/configs/legacy", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodPatch, "/api/configs/legacy", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandler_PutReadOnly(t *testing.T) {
	_, h := newTestHandler(t, WithReadOnly(true))

	rec := do(t, h, http.MethodPut, "/api/configs/brand", `{"content":[],"theme":{"extend":{"colors":{}}},"plugins":[]}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_Validate(t *testing.T) {
	m, h := newTestHandler(t)
	_, err := m.Put("broken", brandConfig("#12"), "")
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/api/configs/broken/validate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Valid      bool      `json:"valid"`
		Problems   []Problem `json:"problems"`
		ErrorCount int       `json:"error_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, 1, resp.ErrorCount)

	rec = do(t, h, http.MethodGet, "/api/configs/current/validate", "")
	assert.Contains(t, rec.Body.String(), `"problems":[]`)

	rec = do(t, h, http.MethodPost, "/api/configs/current/validate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandler_Palette(t *testing.T) {
	_, h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/configs/current/palette?base=none", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Base   string   `json:"base"`
		Colors []Swatch `json:"colors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "none", resp.Base)
	require.Len(t, resp.Colors, 6)
	assert.Equal(t, Swatch{Name: "gray", Value: "#e9e9e9", Text: "#000000"}, resp.Colors[0])
	assert.Equal(t, Swatch{Name: "mineshaft", Value: "#2c2c2c", Text: "#ffffff"}, resp.Colors[5])

	rec = do(t, h, http.MethodGet, "/api/configs/current/palette", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, BaseDefault, resp.Base)
	assert.Greater(t, len(resp.Colors), 6)

	rec = do(t, h, http.MethodGet, "/api/configs/current/palette?base=missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/configs/current/palette?base=current", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot be its own base")
}

func TestHandler_Export(t *testing.T) {
	_, h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/configs/legacy/export.js", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(readPreset(t, "legacy")), rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="tailwind.config.js"`)

	rec = do(t, h, http.MethodGet, "/api/configs/legacy/export.yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	cfg, err := Decode(FormatYAML, rec.Body.Bytes())
	require.NoError(t, err)
	assert.True(t, cfg.Theme.Extend.Colors.Has("offblack"))

	rec = do(t, h, http.MethodGet, "/api/configs/legacy/export.xml", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ExportCSV(t *testing.T) {
	_, h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/configs/current/export.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, []string{"Section", "Name", "Value"}, rows[0])
	assert.Equal(t, []string{"theme.extend.colors", "gray", "#e9e9e9"}, rows[1])
	assert.Equal(t, []string{"theme.extend.colors", "mineshaft", "#2c2c2c"}, rows[6])
}

func TestHandler_History(t *testing.T) {
	m, h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/configs/brand/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	_, err := m.Put("brand", brandConfig("#111111"), "")
	require.NoError(t, err)

	rec = do(t, h, http.MethodGet, "/api/configs/brand/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var revs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &revs))
	require.Len(t, revs, 1)
	assert.Equal(t, "brand", revs[0]["name"])

	rec = do(t, h, http.MethodGet, "/api/configs/brand/history?from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/configs/brand/history", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/configs/brand/history", "")
	assert.Equal(t, "[]\n", rec.Body.String())
}
