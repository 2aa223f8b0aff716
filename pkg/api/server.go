// Package api serves the studio session as a JSON HTTP API for a browser
// front-end.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/suinft/nft-studio-go/pkg/sdk"
)

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Address        string
	AllowedOrigins []string
	// RatePerMinute limits requests per client IP; zero disables it.
	RatePerMinute int
	EnableMetrics bool
}

// DefaultServerConfig returns a default server configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:        "localhost:8080",
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		EnableMetrics:  true,
	}
}

// Server wraps the HTTP server and provides lifecycle management.
type Server struct {
	config     *ServerConfig
	httpServer *http.Server
	mux        *chi.Mux
	metrics    *metrics
}

// NewServer builds the router for core. A nil config uses DefaultServerConfig.
func NewServer(config *ServerConfig, core *sdk.Core) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}

	registry := prometheus.NewRegistry()
	m := newMetrics(registry)

	mux := chi.NewMux()
	mux.Use(zapMiddleware)
	mux.Use(zapRecoverer)
	mux.Use(middleware.RequestID)
	mux.Use(realIPMiddleware)
	mux.Use(middleware.Timeout(90 * time.Second))
	if config.RatePerMinute > 0 {
		mux.Use(httprate.LimitByIP(config.RatePerMinute, time.Minute))
	}

	if config.EnableMetrics {
		mux.Handle("/server/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	mux.Get("/server/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "nft-studio"})
	})

	mux.Get("/server/ready", func(w http.ResponseWriter, r *http.Request) {
		health := core.Heartbeat(r.Context())
		status := http.StatusOK
		if !health.Ready() {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, health)
	})

	h := &handler{core: core, metrics: m}
	mux.Route("/api", h.routes)

	httpServer := &http.Server{
		Addr:              config.Address,
		Handler:           newCORSHandler(config.AllowedOrigins, mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{config: config, httpServer: httpServer, mux: mux, metrics: m}
}

// Handler returns the full handler chain, CORS included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	zap.L().Info("NFT studio API starting",
		zap.String("address", s.config.Address),
		zap.Bool("metrics", s.config.EnableMetrics))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	zap.L().Info("Shutting down API server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		zap.L().Error("Error shutting down HTTP server", zap.Error(err))
		return err
	}
	return nil
}
