// Package api serves sessions over HTTP. Each client creates a session and
// addresses it by ID; mutations are keyed by the Idempotency-Key header so a
// retried request is applied once.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/avero-hq/avero/internal/dataset"
	"github.com/avero-hq/avero/internal/metrics"
	"github.com/avero-hq/avero/internal/model"
	"github.com/avero-hq/avero/internal/session"
	"github.com/avero-hq/avero/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// IdempotencyKeyHeader carries the event ID of a mutation.
const IdempotencyKeyHeader = "Idempotency-Key"

// ReplayedHeader is set on responses to an already applied mutation.
const ReplayedHeader = "Idempotent-Replayed"

// DatasetLister enumerates the datasets that can be loaded.
type DatasetLister interface {
	Names(ctx context.Context, fallback []string) ([]string, error)
}

// Server is the HTTP front end.
type Server struct {
	sessions *session.Manager
	datasets DatasetLister
	defaults []string
	metrics  *metrics.Metrics
	logger   *slog.Logger
	timeout  time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records request metrics and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the server's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithDefaultDatasets sets the names listed when the source cannot enumerate its datasets.
func WithDefaultDatasets(names []string) Option {
	return func(s *Server) {
		s.defaults = names
	}
}

// WithRequestTimeout bounds each request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// NewServer creates a server over sessions.
func NewServer(sessions *session.Manager, datasets DatasetLister, opts ...Option) *Server {
	s := &Server{
		sessions: sessions,
		datasets: datasets,
		logger:   slog.Default(),
		timeout:  time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Get("/datasets", s.handleListDatasets)

	r.Post("/sessions", s.handleCreateSession)
	r.Route("/sessions/{session}", func(r chi.Router) {
		r.Use(s.withSession)
		r.Delete("/", s.handleCloseSession)
		r.Get("/datasets/{name}", s.handleDataset)
		r.Get("/appointments", s.handleListAppointments)
		r.Post("/appointments", s.handleAddAppointment)
		r.Get("/tasks", s.handleListTasks)
		r.Post("/tasks", s.handleAddTask)
		r.Put("/tasks/{index}/complete", s.handleSetTaskComplete)
		r.Post("/ask", s.handleAsk)
		r.Post("/speech", s.handleSpeech)
	})

	return r
}

// observe logs and counts every request by its route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if s.metrics != nil {
			s.metrics.ObserveHTTP(route, status)
		}
		s.logger.Debug("http request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type sessionKey struct{}

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(chi.URLParam(r, "session"))
		if err != nil {
			s.writeErr(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionKey{}).(*session.Session)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	var body errorBody
	body.Error.Message = msg
	body.Error.Type = kind
	writeJSON(w, status, body)
}

// writeErr maps domain errors onto HTTP statuses.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	status, kind := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSessionClosed):
		status, kind = http.StatusNotFound, "session"
	case errors.Is(err, dataset.ErrNotFound):
		status, kind = http.StatusNotFound, "dataset"
	case errors.As(err, new(*dataset.LoadError)):
		status, kind = http.StatusUnprocessableEntity, "dataset"
	case errors.Is(err, session.ErrEventConflict):
		status, kind = http.StatusConflict, "event"
	case errors.Is(err, store.ErrIndexOutOfRange):
		status, kind = http.StatusNotFound, "task"
	case errors.Is(err, model.ErrInvalidDate), errors.Is(err, model.ErrInvalidTime),
		errors.Is(err, model.ErrMissingName), errors.Is(err, errBadRequest):
		status, kind = http.StatusBadRequest, "validation"
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeError(w, status, kind, err.Error())
}
