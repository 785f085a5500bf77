// Package server implements the Codelab backend: the LTI entry endpoints
// that mint session credentials, and the authenticated API the tool
// consumes (/api/me, /api/grade) plus the exercise and evaluation routes.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/codelab/internal/config"
	"github.com/me/codelab/internal/evaluate"
	"github.com/me/codelab/internal/exercise"
	"github.com/me/codelab/internal/store"
)

// Server is the Codelab backend server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	store     store.Store
	catalog   *exercise.Catalog
	evaluator evaluate.Evaluator
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, st store.Store, catalog *exercise.Catalog, ev evaluate.Evaluator, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		store:     st,
		catalog:   catalog,
		evaluator: ev,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	// LTI entry points (platform-facing)
	r.HandleFunc("/lti/login", s.handleLogin)
	r.HandleFunc("/lti/launch", s.handleLaunch)

	// Tool-facing API, authenticated by the ltik credential.
	r.Group(func(r chi.Router) {
		r.Use(s.credentialMiddleware)
		r.Get("/api/me", s.handleMe)
		r.Post("/api/grade", s.handleGrade)
	})

	// Catalog and evaluation. No credential required: evaluation runs are
	// independent of the launch protocol.
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Route("/exercises", func(r chi.Router) {
			r.Get("/", s.handleListExercises)
			r.Get("/{id}", s.handleGetExercise)
		})
		r.Post("/evaluate", s.handleEvaluate)
	})
}
