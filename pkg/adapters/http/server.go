package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/splash"
	"github.com/aretw0/splash/internal/logging"
	"github.com/aretw0/splash/internal/presentation/graph"
	"github.com/aretw0/splash/pkg/domain"
	"github.com/aretw0/splash/pkg/login"
	"github.com/aretw0/splash/pkg/probe"
	"github.com/aretw0/splash/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

//go:embed openapi.yaml
var rawSpec []byte

var loadSpec = sync.OnceValues(func() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
})

// Spec returns the parsed API description served at /openapi.yaml.
func Spec() (*openapi3.T, error) {
	return loadSpec()
}

// Sessions is the part of the session manager the API drives.
type Sessions interface {
	Start(ctx context.Context, sessionID string) (domain.Snapshot, error)
	Snapshot(ctx context.Context, sessionID string) (domain.Snapshot, error)
	Dismiss(ctx context.Context, sessionID string) error
	Delete(ctx context.Context, sessionID string) error
	Subscribe(sessionID string) (<-chan domain.Snapshot, func(), error)
	List(ctx context.Context) ([]string, error)
	IsLive(sessionID string) bool
}

// ProbeSource returns the startup probe report, or false while probes are still running.
type ProbeSource func() (probe.Report, bool)

// Server serves the splash API.
type Server struct {
	sessions Sessions
	auth     *login.Authenticator
	probes   ProbeSource
	metrics  http.Handler
	logger   *slog.Logger
	newID    func() string

	catalog   *domain.Catalog
	faultStep int
}

// Option configures the Server.
type Option func(*Server)

// WithAuthenticator mounts POST /login.
func WithAuthenticator(a *login.Authenticator) Option {
	return func(s *Server) {
		s.auth = a
	}
}

// WithProbes mounts GET /probes.
func WithProbes(src ProbeSource) Option {
	return func(s *Server) {
		s.probes = src
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithGraph mounts GET /sessions/{id}/graph, rendering catalog as a Mermaid flowchart.
func WithGraph(catalog domain.Catalog, faultStep int) Option {
	return func(s *Server) {
		s.catalog = &catalog
		s.faultStep = faultStep
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithIDGenerator replaces the UUID generator used when POST /sessions has no session_id.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

// NewHandler builds the HTTP handler for the session manager.
func NewHandler(sessions Sessions, opts ...Option) http.Handler {
	s := &Server{
		sessions: sessions,
		logger:   logging.NewNop(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.StartSession)
		r.Get("/{id}", s.GetSession)
		r.Delete("/{id}", s.DeleteSession)
		r.Post("/{id}/dismiss", s.DismissSession)
		r.Get("/{id}/events", s.SubscribeEvents)
		if s.catalog != nil {
			r.Get("/{id}/graph", s.GetGraph)
		}
	})

	if s.auth != nil {
		r.Post("/login", s.Login)
	}
	if s.probes != nil {
		r.Get("/probes", s.GetProbes)
	}
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Splash API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// SessionView is the JSON body returned for a single session.
type SessionView struct {
	Snapshot domain.Snapshot `json:"snapshot"`
	Progress domain.Progress `json:"progress"`
	Live     bool            `json:"live"`
}

type startRequest struct {
	SessionID string `json:"session_id"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := Spec(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	} else if err != nil {
		s.logger.Error("failed to load openapi document", "err", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "splash-http",
		"version":     splash.Version,
		"api_version": apiVersion,
	})
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.fail(w, "list sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// StartSession handles the POST /sessions request.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		s.logger.Warn("start session: invalid request body", "err", err)
		return
	}

	id := strings.TrimSpace(body.SessionID)
	if id == "" {
		id = s.newID()
	}

	snap, err := s.sessions.Start(r.Context(), id)
	if err != nil {
		s.fail(w, "start session", err)
		return
	}
	writeJSON(w, http.StatusCreated, view(snap, true))
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.sessions.Snapshot(r.Context(), id)
	if err != nil {
		s.fail(w, "get session", err)
		return
	}
	writeJSON(w, http.StatusOK, view(snap, s.sessions.IsLive(id)))
}

// DismissSession handles the POST /sessions/{id}/dismiss request.
func (s *Server) DismissSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Dismiss(r.Context(), id); err != nil {
		s.fail(w, "dismiss session", err)
		return
	}
	snap, err := s.sessions.Snapshot(r.Context(), id)
	if err != nil {
		s.fail(w, "dismiss session", err)
		return
	}
	writeJSON(w, http.StatusOK, view(snap, false))
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.Snapshot(r.Context(), id); err != nil {
		s.fail(w, "delete session", err)
		return
	}
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, "delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph handles the GET /sessions/{id}/graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "get graph", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(*s.catalog, s.faultStep, &snap))
}

// Login handles the POST /login request.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var creds login.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := s.auth.Login(r.Context(), creds)
	if err != nil {
		s.fail(w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetProbes handles the GET /probes request.
func (s *Server) GetProbes(w http.ResponseWriter, r *http.Request) {
	report, ok := s.probes()
	if !ok {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "pending"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// SubscribeEvents handles the GET /sessions/{id}/events request (SSE).
// Each event carries the diff against the previous snapshot; the optional
// watch parameter (index, visible, error, steps) drops diffs touching none of the listed fields.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		s.logger.Error("subscribe events: streaming not supported")
		return
	}

	id := chi.URLParam(r, "id")
	updates, unsubscribe, err := s.sessions.Subscribe(id)
	if err != nil {
		s.fail(w, "subscribe events", err)
		return
	}
	defer unsubscribe()

	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		watchList = strings.Split(watch, ",")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	s.logger.Info("sse: subscribed", "session_id", id)

	var prev *domain.Snapshot
	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("sse: client disconnected", "session_id", id)
			return
		case snap, ok := <-updates:
			if !ok {
				fmt.Fprintf(w, "event: end\ndata: {\"id\":%q}\n\n", id)
				flusher.Flush()
				return
			}
			diff := domain.Diff(prev, snap)
			prev = &snap
			if diff == nil || !matches(diff, watchList) {
				continue
			}
			payload, err := json.Marshal(diff)
			if err != nil {
				s.logger.Error("sse: failed to encode diff", "err", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func matches(diff *domain.SnapshotDiff, watchList []string) bool {
	if len(watchList) == 0 {
		return true
	}
	for _, field := range watchList {
		switch strings.TrimSpace(field) {
		case "index":
			if diff.CurrentIndex != nil {
				return true
			}
		case "visible":
			if diff.Visible != nil {
				return true
			}
		case "error":
			if diff.ErrorMessage != nil {
				return true
			}
		case "steps":
			if len(diff.Steps) > 0 {
				return true
			}
		}
	}
	return false
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrSessionExists):
		status = http.StatusConflict
	case errors.Is(err, session.ErrManagerClosed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, login.ErrMissingCredentials), errors.Is(err, session.ErrInvalidID):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		status = http.StatusRequestTimeout
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "err", err, "status", status)
	}
	writeError(w, status, err.Error())
}

func view(snap domain.Snapshot, live bool) SessionView {
	return SessionView{
		Snapshot: snap,
		Progress: domain.ProgressOf(snap),
		Live:     live,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
