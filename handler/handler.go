// Package handler provides the HTTP API shared by every runtime
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joeblew999/deckbind/internal/metrics"
	"github.com/joeblew999/deckbind/internal/store"
	"github.com/joeblew999/deckbind/pkg/pipeline"
)

const (
	Version = "0.1.0"
	Service = "deckbind"
)

// DefaultMaxBodyBytes bounds request bodies when Options leaves it unset
const DefaultMaxBodyBytes = 1 << 20

// Options configures a Server
type Options struct {
	Store    store.DeckStore
	Pipeline *pipeline.Pipeline
	// Metrics is optional; when set /metrics is served on the same router.
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	CORSOrigin   string
	MaxBodyBytes int64
}

// Server is the HTTP API
type Server struct {
	router    *chi.Mux
	store     store.DeckStore
	pipeline  *pipeline.Pipeline
	metrics   *metrics.Metrics
	logger    *slog.Logger
	origin    string
	maxBody   int64
	startedAt time.Time
}

// New creates the API server and its routes
func New(opts Options) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		store:     opts.Store,
		pipeline:  opts.Pipeline,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		origin:    opts.CORSOrigin,
		maxBody:   opts.MaxBodyBytes,
		startedAt: time.Now().UTC(),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.origin == "" {
		s.origin = "*"
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.metrics.Middleware)
	s.router.Use(s.cors)

	s.router.Get("/", s.handleRoot)
	s.router.Get("/health", s.handleHealth)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Get("/templates", s.handleTemplates)

		r.Route("/ppt", func(r chi.Router) {
			r.Post("/", s.handleCreate)
			r.Get("/", s.handleList)
			r.Get("/{id}", s.handleGet)
			r.Get("/{id}/slides/{n}.{ext}", s.handleSlide)
			r.Get("/{id}/export.{ext}", s.handleExport)
		})
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// cors adds CORS headers and answers preflight requests
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	formats := make([]string, 0, len(pipeline.Formats()))
	for _, f := range pipeline.Formats() {
		if s.pipeline != nil && s.pipeline.Supports(f) {
			formats = append(formats, string(f))
		}
	}
	writeJSON(w, http.StatusOK, RootResponse{
		Service: Service,
		Version: Version,
		Formats: formats,
		Endpoints: []string{
			"/health",
			"/metrics",
			"/api/v1/parse",
			"/api/v1/templates",
			"/api/v1/ppt",
			"/api/v1/ppt/{id}",
			"/api/v1/ppt/{id}/slides/{n}.{svg|png|json}",
			"/api/v1/ppt/{id}/export.{xml|dsh|pdf}",
		},
		StartedAt: s.startedAt,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Service: Service})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
