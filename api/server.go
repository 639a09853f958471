package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"themeplane/logging"
	"themeplane/metrics"
	"themeplane/theme"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Server struct {
	manager *theme.Manager
	configs *theme.Handler
	ws      *WSConnectionManager
	logger  zerolog.Logger
}

// NewServer wires the config handler and hooks manager changes up to the
// websocket broadcast.
func NewServer(manager *theme.Manager) *Server {
	s := &Server{
		manager: manager,
		configs: theme.NewHandler(manager),
		ws:      NewWSConnectionManager(),
		logger:  logging.Component("api"),
	}
	manager.SetOnChange(s.BroadcastConfigChange)
	return s
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/ws", s.handleWebSocket)
	s.configs.Register(mux)
	mux.Handle("/metrics", metrics.Handler())
}

// Handler returns a mux with every route registered and request counting
// applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return instrument(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"configs":   len(s.manager.Names()),
		"read_only": s.manager.ReadOnly(),
	})
}

// ---------- websocket ----------

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	s.ws.Add(conn)
	defer func() {
		s.ws.Remove(conn)
		conn.Close()
	}()

	if err := s.ws.WriteJSON(conn, map[string]any{
		"type":    "hello",
		"configs": s.manager.Names(),
	}); err != nil {
		return
	}

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// BroadcastConfigChange tells connected clients a config was saved or removed.
func (s *Server) BroadcastConfigChange(name string, kind theme.ChangeKind) {
	msgType := "config_updated"
	if kind == theme.ChangeDeleted {
		msgType = "config_deleted"
	}
	s.ws.Broadcast(map[string]any{
		"type": msgType,
		"name": name,
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}

// ---------- instrumentation ----------

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack lets the websocket upgrade pass through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.HTTPRequests.WithLabelValues(routeLabel(r.URL.Path), strconv.Itoa(rec.status)).Inc()
	})
}

// routeLabel collapses config names so the label set stays bounded.
func routeLabel(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/configs/")
	if !ok {
		switch path {
		case "/api/health", "/api/ws", "/api/configs", "/metrics":
			return path
		}
		return "other"
	}
	_, action, _ := strings.Cut(strings.Trim(rest, "/"), "/")
	if action == "" {
		return "/api/configs/{name}"
	}
	if strings.HasPrefix(action, "export.") {
		action = "export"
	}
	switch action {
	case "validate", "palette", "history", "export":
		return "/api/configs/{name}/" + action
	}
	return "other"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
