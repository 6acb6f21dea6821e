// Package server provides HTTP server management and lifecycle handling for the BDPM API.
// It includes server setup, middleware configuration, route management and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/giygas/bdpm-api/config"
	"github.com/giygas/bdpm-api/handlers"
	"github.com/giygas/bdpm-api/interfaces"
	"github.com/giygas/bdpm-api/logging"
	"github.com/giygas/bdpm-api/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server
type Server struct {
	server      *http.Server
	router      chi.Router
	dataStore   interfaces.DataStore
	httpHandler interfaces.HTTPHandler
	limiter     *RateLimiter
	config      *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, dataStore interfaces.DataStore, healthChecker interfaces.HealthChecker) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:           router,
			Addr:              cfg.Address + ":" + cfg.Port,
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		router:      router,
		dataStore:   dataStore,
		httpHandler: handlers.NewHTTPHandler(dataStore, healthChecker),
		limiter:     NewRateLimiter(),
		config:      cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(BlockDirectAccessMiddleware(s.config.Env != "prod")) // before RealIPMiddleware to see the original RemoteAddr
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.RequestLogger(logging.Logger()))
	s.router.Use(metrics.Metrics)
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.limiter.Middleware)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.httpHandler.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/v1/medicaments", func(r chi.Router) {
		r.Get("/search", s.httpHandler.GlobalSearch)
		r.Get("/specialites/{cis}", s.httpHandler.GetSpecialite)
		r.Get("/presentations/cip/{cip}", s.httpHandler.GetPresentationByCIP)
		r.Get("/generiques/groupe/{groupId}", s.httpHandler.GetGeneriqueGroup)
		r.Get("/groupes-generiques/{groupId}", s.httpHandler.GetGeneriqueGroup)
		r.Get("/{table}", s.httpHandler.ListTable)
	})

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		handlers.RespondWithJSON(w, r, http.StatusOK, map[string]any{
			"name":        "API des médicaments française",
			"attribution": handlers.Source,
			"endpoints": []string{
				"/v1/medicaments/{table}?q=&page=&limit=",
				"/v1/medicaments/specialites/{cis}",
				"/v1/medicaments/presentations/cip/{cip}",
				"/v1/medicaments/generiques/groupe/{id}",
				"/v1/medicaments/search?q=",
				"/health",
			},
		})
	})
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	if s.config.Env == "dev" {
		s.startProfilingServer()
	}
	s.limiter.StartCleanup(30 * time.Minute)

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")
	defer s.limiter.Stop()

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer starts the pprof profiling server in development mode
func (s *Server) startProfilingServer() {
	go func() {
		logging.Info("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			logging.Warn("Profiling server failed", "error", err)
		}
	}()
}
