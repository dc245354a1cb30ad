package appserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"kernelgate/internal/journal"
)

// KernelController is the lifecycle surface exposed over the local API.
// Implemented by the supervisor.
type KernelController interface {
	RequestStart(cb func(error))
	Close()
	Port() int
	Uptime() time.Duration
}

// ProxyHandler forwards traffic to the kernel. Implemented by the gateway.
type ProxyHandler interface {
	HandleRequest(w http.ResponseWriter, r *http.Request)
	HandleSocket(w http.ResponseWriter, r *http.Request)
}

// EventReader lists recent lifecycle events. Implemented by the journal.
type EventReader interface {
	Recent(limit int) ([]journal.Entry, error)
}

type Deps struct {
	Kernel KernelController
	Proxy  ProxyHandler
	Events EventReader // optional
	Logger *slog.Logger
}

// Server is the front HTTP server: a small local API plus the proxy
// pass-through for everything else.
type Server struct {
	kernel KernelController
	proxy  ProxyHandler
	events EventReader
	log    *slog.Logger
}

func NewServer(deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{kernel: deps.Kernel, proxy: deps.Proxy, events: deps.Events, log: log}
}

func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serveHTTP)
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if isWebSocketUpgrade(r) {
		s.proxy.HandleSocket(w, r)
		return
	}
	switch {
	case r.URL.Path == "/healthz":
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	case r.URL.Path == "/api/v1/status":
		s.handleStatus(w, r)
	case r.URL.Path == "/api/v1/start":
		s.handleStart(w, r)
	case r.URL.Path == "/api/v1/stop":
		s.handleStop(w, r)
	case r.URL.Path == "/api/v1/events":
		s.handleEvents(w, r)
	default:
		s.proxy.HandleRequest(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	port := s.kernel.Port()
	writeJSON(w, http.StatusOK, map[string]any{
		"running":        port != 0,
		"port":           port,
		"uptime_seconds": int64(s.kernel.Uptime().Seconds()),
	})
}

// handleStart joins the coalesced start and answers once the shared outcome
// is known.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"ok": false, "error": "POST required"})
		return
	}
	done := make(chan error, 1)
	s.kernel.RequestStart(func(err error) {
		done <- err
	})
	select {
	case err := <-done:
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "port": s.kernel.Port()})
	case <-r.Context().Done():
	}
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"ok": false, "error": "POST required"})
		return
	}
	s.kernel.Close()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	if s.events == nil {
		writeJSON(w, http.StatusOK, map[string]any{"events": []any{}})
		return
	}
	entries, err := s.events.Recent(50)
	if err != nil {
		s.log.Error("list journal events", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "journal unavailable"})
		return
	}
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"id":         e.ID,
			"kind":       e.Kind,
			"port":       e.Port,
			"detail":     e.Detail,
			"created_at": e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

func isWebSocketUpgrade(r *http.Request) bool {
	if !strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return false
	}
	for _, token := range strings.Split(r.Header.Get("Connection"), ",") {
		if strings.EqualFold(strings.TrimSpace(token), "upgrade") {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
