// Package api exposes screening reports over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	handler "github.com/newthinker/screener/internal/api/handler/api"
	"github.com/newthinker/screener/internal/api/middleware"
	"github.com/newthinker/screener/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const healthPath = "/api/health"

// Server represents the HTTP server for the screener
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string
}

// Dependencies holds what the routes are served from. Metrics may be nil.
type Dependencies struct {
	App     handler.Screener
	Metrics *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.App == nil {
		return nil, fmt.Errorf("api server requires an app")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	mux := http.NewServeMux()

	s := &Server{
		logger: logger,
		mux:    mux,
	}
	s.setupRoutes(cfg, deps)

	// Scans page through the source, so writes get a longer budget than reads.
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.wrap(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	reports := handler.NewReportsHandler(deps.App)
	categories := handler.NewCategoriesHandler(deps.App)
	sizing := handler.NewSizingHandler()

	s.mux.HandleFunc("GET "+healthPath, s.handleHealth)

	s.mux.HandleFunc("GET /api/report", reports.Latest)
	s.mux.HandleFunc("GET /api/reports", reports.List)
	s.mux.HandleFunc("GET /api/reports/{id}", reports.Get)
	s.mux.HandleFunc("POST /api/scan", reports.Scan)
	s.mux.HandleFunc("GET /api/stats", reports.Stats)

	s.mux.HandleFunc("GET /api/categories", categories.List)
	s.mux.HandleFunc("GET /api/categories/{key}", categories.Get)

	s.mux.HandleFunc("POST /api/size", sizing.Calculate)

	if deps.Metrics != nil {
		s.mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// wrap applies the middleware chain, outermost first: logging, metrics, auth.
func (s *Server) wrap(cfg Config, deps Dependencies) http.Handler {
	var h http.Handler = s.mux
	h = middleware.APIKeyAuth(cfg.APIKey, healthPath, cfg.MetricsPath)(h)
	if deps.Metrics != nil {
		h = metrics.HTTPMiddleware(deps.Metrics)(h)
	}
	return metrics.LoggingMiddleware(s.logger)(h)
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
