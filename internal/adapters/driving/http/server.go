package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	version    string
	logger     *slog.Logger

	maxUploadBytes int64

	// Services
	authService  driving.AuthService // nil disables authentication
	docService   driving.DocumentService
	queryService driving.QueryService
	statsService driving.StatsService

	// Infrastructure
	taskQueue driven.TaskQueue
	checks    map[string]Pinger
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	MaxUploadBytes int64
	AllowedOrigins []string
	Logger         *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		MaxUploadBytes: 10 << 20,
		AllowedOrigins: []string{"*"},
	}
}

// NewServer creates a new HTTP server.
// authService may be nil, in which case every route is public.
// checks are named readiness probes (database, redis, queue).
func NewServer(
	cfg Config,
	authService driving.AuthService,
	docService driving.DocumentService,
	queryService driving.QueryService,
	statsService driving.StatsService,
	taskQueue driven.TaskQueue,
	checks map[string]Pinger,
) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}

	s := &Server{
		router:         http.NewServeMux(),
		version:        cfg.Version,
		logger:         logger,
		maxUploadBytes: cfg.MaxUploadBytes,
		authService:    authService,
		docService:     docService,
		queryService:   queryService,
		statsService:   statsService,
		taskQueue:      taskQueue,
		checks:         checks,
	}

	s.setupRoutes()

	s.handler = NewRecoveryMiddleware(logger).Handler(
		NewLoggingMiddleware(logger).Handler(
			NewCORSMiddleware(cfg.AllowedOrigins).Handler(s.router)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped root handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)
	protect := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(h)
	}

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// API documentation
	s.router.HandleFunc("GET /swagger/doc.json", s.handleSwaggerDoc)

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	// Document endpoints
	s.router.Handle("GET /api/v1/documents", protect(s.handleListDocuments))
	s.router.Handle("POST /api/v1/documents", protect(s.handleUploadDocument))
	s.router.Handle("GET /api/v1/documents/{id}", protect(s.handleGetDocument))
	s.router.Handle("DELETE /api/v1/documents/{id}", protect(s.handleDeleteDocument))
	s.router.Handle("GET /api/v1/documents/{id}/chunks", protect(s.handleGetDocumentChunks))
	s.router.Handle("GET /api/v1/chunks", protect(s.handleListChunks))

	// Query endpoints
	s.router.Handle("POST /api/v1/queries", protect(s.handleAsk))
	s.router.Handle("GET /api/v1/queries", protect(s.handleListQueries))
	s.router.Handle("GET /api/v1/queries/{id}", protect(s.handleGetQuery))
	s.router.Handle("GET /api/v1/example-questions", protect(s.handleExampleQuestions))

	// Stats
	s.router.Handle("GET /api/v1/stats", protect(s.handleGetStats))

	// Admin endpoints
	s.router.Handle("GET /api/v1/admin/queue", protect(s.handleQueueStats))
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
