package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/choicefsm/internal/logging"
	"github.com/aretw0/choicefsm/internal/presentation/graph"
	"github.com/aretw0/choicefsm/pkg/domain"
	"github.com/aretw0/choicefsm/pkg/runner"
	"github.com/aretw0/choicefsm/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager is the session manager served over HTTP.
type Manager = session.Manager[string, string, string]

// Server exposes a session manager as a small JSON API.
type Server struct {
	Sessions *Manager
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the request error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics serves the gatherer's metrics on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// SessionResponse is the JSON form of a session snapshot.
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	State     string    `json:"state"`
	History   []string  `json:"history"`
	Steps     int       `json:"steps"`
	UpdatedAt time.Time `json:"updated_at"`
	Handled   *bool     `json:"handled,omitempty"`
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates the HTTP handler:
//
//	GET    /graph                          Mermaid diagram (?session= overlay, ?format=json nodes)
//	GET    /sessions                       session ids
//	GET    /sessions/{id}                  snapshot
//	DELETE /sessions/{id}                  remove
//	POST   /sessions/{id}/events/{event}   dispatch
//	GET    /metrics                        Prometheus, when WithMetrics is set
func NewHandler(sessions *Manager, opts ...Option) http.Handler {
	s := &Server{Sessions: sessions, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/graph", s.Graph)
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Get("/{id}", s.GetSession)
		r.Delete("/{id}", s.DeleteSession)
		r.Post("/{id}/events/{event}", s.Dispatch)
	})
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Graph handles GET /graph.
func (s *Server) Graph(w http.ResponseWriter, r *http.Request) {
	nodes := s.Sessions.Machine().Inspect()
	if r.URL.Query().Get("format") == "json" {
		s.writeJSON(w, http.StatusOK, nodes)
		return
	}

	var overlay *graph.GraphOverlay
	if id := r.URL.Query().Get("session"); id != "" {
		snap, err := s.Sessions.Load(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		overlay = &graph.GraphOverlay{VisitedStates: snap.History, CurrentState: snap.StateID}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(nodes, overlay)))
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toResponse(id, snap, nil))
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Dispatch handles POST /sessions/{id}/events/{event}. Unknown sessions are
// started at the initial state first. Event names are sanitized like
// interactive input.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	event, err := runner.SanitizeEvent(chi.URLParam(r, "event"), 0)
	if err != nil {
		s.logger.Debug("event rejected", "session_id", id, "error", err)
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	snap, handled, err := s.Sessions.Dispatch(r.Context(), id, event)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toResponse(id, snap, &handled))
}

func toResponse(id string, snap *domain.Snapshot[string], handled *bool) SessionResponse {
	return SessionResponse{
		SessionID: id,
		State:     snap.StateID,
		History:   snap.History,
		Steps:     snap.Steps,
		UpdatedAt: snap.UpdatedAt,
		Handled:   handled,
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCycleDetected),
		errors.Is(err, domain.ErrUnresolvedBranch),
		errors.Is(err, domain.ErrNoSuchElement):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
