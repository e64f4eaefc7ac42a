// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"

	guardhttp "github.com/allisson/order-guard/internal/guard/http"
	"github.com/allisson/order-guard/internal/metrics"
)

// ServiceName identifies the service in the health endpoint.
const ServiceName = "order-guard"

// Options configures the HTTP server.
type Options struct {
	Host    string
	Port    int
	Version string

	// WebhookSecret authenticates webhook deliveries.
	WebhookSecret string
	// RateLimitWindow and RateLimitMax bound webhook delivery rate.
	RateLimitWindow time.Duration
	RateLimitMax    int

	CORSEnabled      bool
	CORSAllowOrigins string

	// MeterProvider enables HTTP request metrics when non-nil.
	MeterProvider    metric.MeterProvider
	MetricsNamespace string
}

// Server represents the HTTP server.
type Server struct {
	server  *http.Server
	router  *gin.Engine
	db      *sql.DB
	logger  *slog.Logger
	version string
}

// NewServer creates a new HTTP server with all routes and middleware wired.
func NewServer(
	opts Options,
	db *sql.DB,
	webhookHandler *guardhttp.WebhookHandler,
	logger *slog.Logger,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(opts.CORSEnabled, opts.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if opts.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(opts.MeterProvider, opts.MetricsNamespace))
	}

	s := &Server{
		router:  router,
		db:      db,
		logger:  logger,
		version: opts.Version,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", opts.Host, opts.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	limiter := guardhttp.NewSlidingWindowLimiter(opts.RateLimitWindow, opts.RateLimitMax)
	router.POST("/webhook",
		guardhttp.SignatureMiddleware(opts.WebhookSecret, logger),
		guardhttp.RateLimitMiddleware(limiter, logger),
		webhookHandler.Handle,
	)

	return s
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// healthHandler reports service liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": ServiceName,
		"version": s.version,
	})
}

// readinessHandler reports whether the service can reach its dependencies.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("database ping failed", slog.Any("error", err))
			components["database"] = "error"
			ready = false
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
