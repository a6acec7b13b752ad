// Package http provides the HTTP adapter for the workflow engine and the
// query surface. It is a thin layer translating requests to application
// service calls; all transition validation lives below it.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fcastillo/hybrid-notary/internal/application/service"
	"github.com/fcastillo/hybrid-notary/internal/application/workflow"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     *zap.Logger
}

// NewServer creates a new HTTP server wired to the services
func NewServer(
	config ServerConfig,
	intake service.IntakeService,
	engine workflow.Engine,
	queries service.QueryService,
	clientConfig ClientConfig,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		handlers: NewHandlers(intake, engine, queries, clientConfig, logger),
		logger:   logger,
	}

	server.router.Use(gin.Recovery())
	server.router.Use(server.loggingMiddleware())
	server.setupRoutes(gatherer)

	return server
}

// loggingMiddleware logs each request through zap
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	s.router.GET("/health", s.handlers.HealthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := s.router.Group("/api/v1")
	{
		api.GET("/client-config", s.handlers.GetClientConfig)

		// POS terminal side
		api.POST("/transactions", s.handlers.InitiateTransaction)
		api.POST("/transactions/:id/payment", s.handlers.ConfirmPayment)

		// Query surface for the polling clients
		api.GET("/sessions", s.handlers.ListSessions)
		api.GET("/sessions/:id", s.handlers.GetSession)
		api.GET("/sessions/:id/events", s.handlers.GetSessionEvents)

		// Workflow transitions
		api.POST("/sessions/:id/accept", s.handlers.AcceptSession)
		api.POST("/sessions/:id/document", s.handlers.SendDocument)
		api.POST("/sessions/:id/approve", s.handlers.ApproveDocument)
		api.POST("/sessions/:id/signature", s.handlers.SubmitSignature)
		api.POST("/sessions/:id/finalize", s.handlers.FinalizeSession)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// server fails
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
