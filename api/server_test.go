package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"themeplane/model"
	"themeplane/storage"
	"themeplane/theme"
)

func newTestServer(t *testing.T) (*theme.Manager, *httptest.Server) {
	t.Helper()
	store := storage.New(t.TempDir())
	require.NoError(t, store.EnsureDirs())

	manager, err := theme.NewManager(store)
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(manager).Handler())
	t.Cleanup(srv.Close)
	return manager, srv
}

func TestHealth(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 2, body["configs"])
	assert.Equal(t, false, body["read_only"])
}

func TestConfigRoutesMounted(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/configs/current/validate")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["valid"])
}

func TestMetricsCountsRequests(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/configs/legacy")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(data), `themeplane_http_requests_total{code="200",route="/api/configs/{name}"}`)
	assert.Contains(t, string(data), "themeplane_configs_loaded")
}

func TestWebSocketBroadcastsChanges(t *testing.T) {
	manager, srv := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var hello map[string]any
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "hello", hello["type"])
	assert.ElementsMatch(t, []any{"current", "legacy"}, hello["configs"])

	cfg := model.ThemeConfig{Content: []string{"src/**/*.rs"}}
	cfg.Colors().Set("brand", "#123456")
	_, err = manager.Put("brand", cfg, theme.FormatJSON)
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "config_updated", msg["type"])
	assert.Equal(t, "brand", msg["name"])

	require.NoError(t, manager.Delete("brand"))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "config_deleted", msg["type"])
	assert.Equal(t, "brand", msg["name"])
}

func TestRouteLabel(t *testing.T) {
	tests := map[string]string{
		"/api/health":                     "/api/health",
		"/api/configs":                    "/api/configs",
		"/api/configs/current":            "/api/configs/{name}",
		"/api/configs/current/":           "/api/configs/{name}",
		"/api/configs/current/validate":   "/api/configs/{name}/validate",
		"/api/configs/current/export.csv": "/api/configs/{name}/export",
		"/api/configs/current/bogus":      "other",
		"/favicon.ico":                    "other",
	}
	for path, want := range tests {
		assert.Equal(t, want, routeLabel(path), path)
	}
}
