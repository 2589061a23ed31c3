// Package api provides the HTTP service boundary for markpro.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/markpro/pkg/observability"
)

// Server is the HTTP API server.
type Server struct {
	mux     *http.ServeMux
	server  *http.Server
	logger  *slog.Logger
	license *LicenseHandler
	export  *ExportHandler
	health  *observability.HealthRegistry
	metrics http.Handler
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Handlers groups the route handlers mounted by the server.
// Health and Metrics are optional.
type Handlers struct {
	License *LicenseHandler
	Export  *ExportHandler
	Health  *observability.HealthRegistry
	Metrics http.Handler
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, handlers Handlers, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		license: handlers.License,
		export:  handlers.Export,
		health:  handlers.Health,
		metrics: handlers.Metrics,
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}

	if s.license != nil {
		s.mux.HandleFunc("POST /verify", s.license.Verify)
		s.mux.HandleFunc("GET /api/v1/license", s.license.Status)
		s.mux.HandleFunc("POST /api/v1/license/activate", s.license.Activate)
		s.mux.HandleFunc("POST /api/v1/license/trial", s.license.StartTrial)
	}

	if s.export != nil {
		s.mux.HandleFunc("POST /api/v1/render", s.export.Render)
		s.mux.HandleFunc("POST /api/v1/export/{format}", s.export.Export)
	}
}

// Handler returns the root handler with request context middleware applied.
func (s *Server) Handler() http.Handler {
	return s.withRequestContext(s.mux)
}

// withRequestContext attaches request and correlation IDs and logs each request.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.NewRequestContext(r.Context(), r.Header.Get("X-Correlation-ID"))
		w.Header().Set("X-Correlation-ID", observability.CorrelationIDFromContext(ctx))

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.logger.DebugContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			observability.DurationKey, time.Since(start).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": string(observability.HealthStatusHealthy),
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	health := s.health.GetOverallHealth(r.Context())
	status := http.StatusOK
	if health.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Log error but can't do much at this point
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error      string `json:"error"`
	UpgradeURL string `json:"upgradeUrl,omitempty"`
}

// Error messages returned to clients. Provider details are never included.
const (
	MsgLicenseKeyRequired = "License key required"
	MsgInvalidLicenseKey  = "Invalid license key"
	MsgInternalError      = "Internal server error"
	MsgPremiumRequired    = "Premium license required"
	MsgInvalidRequest     = "Invalid request body"
)

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// decodeJSON decodes a bounded request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

const maxBodyBytes = 4 << 20
