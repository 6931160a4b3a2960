// Package api serves the portal's HTTP surface.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/algoritmia-up/portal/internal/adapters/remote"
	service "github.com/algoritmia-up/portal/internal/app"
	"github.com/algoritmia-up/portal/internal/domain/listing"
	"github.com/algoritmia-up/portal/internal/domain/model"
	"github.com/algoritmia-up/portal/internal/domain/tier"
	"github.com/algoritmia-up/portal/internal/session"
	"github.com/algoritmia-up/portal/pkg/logger"
	"github.com/algoritmia-up/portal/pkg/metrics"
)

// Dependencies required by HTTP handlers. *service.Service implements it.
type Dependencies interface {
	Reload(ctx context.Context, creds remote.Credentials) error

	Contests(query string, sort listing.SortState) []service.ContestRow
	CreateContest(ctx context.Context, creds remote.Credentials, in model.ContestInput) (model.Contest, error)
	UpdateContest(ctx context.Context, creds remote.Credentials, id string, in model.ContestInput) (model.Contest, error)
	DeleteContest(ctx context.Context, creds remote.Credentials, id string) error

	Resources(query string, sort listing.SortState) []model.Resource
	CreateResource(ctx context.Context, creds remote.Credentials, in model.ResourceInput) (model.Resource, error)
	UpdateResource(ctx context.Context, creds remote.Credentials, id string, in model.ResourceInput) (model.Resource, error)
	DeleteResource(ctx context.Context, creds remote.Credentials, id string) error

	Events(query string, sort listing.SortState) []model.Event
	CreateEvent(ctx context.Context, creds remote.Credentials, in model.EventInput) (model.Event, error)
	UpdateEvent(ctx context.Context, creds remote.Credentials, id string, in model.EventInput) (model.Event, error)
	DeleteEvent(ctx context.Context, creds remote.Credentials, id string) error

	Leaderboard(query string, sort listing.SortState, currentUserID string) service.Leaderboard
	SyncLeaderboard(ctx context.Context, creds remote.Credentials) (int, error)
	Tiers() []tier.Band
}

// SessionResolver resolves the caller's session from their cookies.
type SessionResolver interface {
	Resolve(ctx context.Context, creds remote.Credentials) session.State
}

// Server wires HTTP routes for the portal.
type Server struct {
	deps     Dependencies
	sessions SessionResolver
	log      logger.Logger
	timeout  time.Duration
	docs     func(chi.Router)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRequestTimeout bounds each request. Zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// WithDocs mounts API documentation routes.
func WithDocs(register func(chi.Router)) Option {
	return func(s *Server) {
		s.docs = register
	}
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, sessions SessionResolver, opts ...Option) *Server {
	s := &Server{
		deps:     deps,
		sessions: sessions,
		log:      logger.NewNop(),
		timeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the handler for every route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestContext)
	r.Use(accessLog(s.log))
	r.Use(middleware.Recoverer)
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	if s.docs != nil {
		s.docs(r)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(MetricsMiddleware)

		r.Get("/session", s.handleSession)

		r.Get("/contests", s.handleListContests)
		r.Post("/contests", s.handleCreateContest)
		r.Patch("/contests/{id}", s.handleUpdateContest)
		r.Delete("/contests/{id}", s.handleDeleteContest)

		r.Get("/resources", s.handleListResources)
		r.Post("/resources", s.handleCreateResource)
		r.Patch("/resources/{id}", s.handleUpdateResource)
		r.Delete("/resources/{id}", s.handleDeleteResource)

		r.Get("/events", s.handleListEvents)
		r.Post("/events", s.handleCreateEvent)
		r.Patch("/events/{id}", s.handleUpdateEvent)
		r.Delete("/events/{id}", s.handleDeleteEvent)

		r.Get("/leaderboard", s.handleLeaderboard)
		r.Post("/leaderboard/sync", s.handleSyncLeaderboard)
		r.Get("/tiers", s.handleTiers)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed.")
	})
	return r
}

type itemsResponse[T any] struct {
	Items []T `json:"items"`
}

// items keeps an empty listing encoded as [] rather than null.
func items[T any](xs []T) itemsResponse[T] {
	if xs == nil {
		xs = []T{}
	}
	return itemsResponse[T]{Items: xs}
}

type deletedResponse struct {
	Deleted bool `json:"deleted"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
