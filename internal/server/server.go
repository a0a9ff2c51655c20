// file: internal/server/server.go
// version: 2.0.0
// guid: 4c5d6e7f-8a9b-0c1d-2e3f-4a5b6c7d8e9f

// Package server exposes the roulette over HTTP for browser clients.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/art-roulette/internal/config"
	"github.com/jdfalk/art-roulette/internal/download"
	"github.com/jdfalk/art-roulette/internal/metrics"
	"github.com/jdfalk/art-roulette/internal/roulette"
	"github.com/jdfalk/art-roulette/internal/server/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxJSONBody bounds POST bodies; save requests are two short strings.
const maxJSONBody = 64 * 1024

// Deps are the collaborators the HTTP layer drives.
type Deps struct {
	Registry  *roulette.Registry
	Persister download.Persister
	Streamer  *download.AttachmentStreamer
	Settings  config.ServerSettings
	// DatabaseType is reported by the health check.
	DatabaseType string
	Version      string
}

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	router       *gin.Engine
	registry     atomic.Pointer[roulette.Registry]
	persister    download.Persister
	streamer     *download.AttachmentStreamer
	allowedHosts []string
	databaseType string
	version      string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer creates a new server instance
func NewServer(deps Deps) *Server {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(corsMiddleware())
	router.Use(middleware.RequestID())
	router.Use(middleware.MaxRequestBodySize(maxJSONBody))

	// Register metrics (idempotent)
	metrics.Register()

	server := &Server{
		router:       router,
		persister:    deps.Persister,
		streamer:     deps.Streamer,
		allowedHosts: deps.Settings.AllowedImageHosts,
		databaseType: deps.DatabaseType,
		version:      deps.Version,
	}
	server.registry.Store(deps.Registry)

	var limiter *middleware.UpstreamRateLimiter
	if deps.Settings.RequestsPerMinute > 0 {
		limiter = middleware.NewUpstreamRateLimiter(deps.Settings.RequestsPerMinute, max(1, deps.Settings.RequestsPerMinute/10), nil)
	}
	server.setupRoutes(limiter)

	return server
}

// SetRegistry swaps the catalogs served, e.g. after a config reload.
// Requests already running keep the registry they started with.
func (s *Server) SetRegistry(r *roulette.Registry) {
	s.registry.Store(r)
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(limiter *middleware.UpstreamRateLimiter) {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api/v1")
	api.GET("/health", s.healthCheck)
	api.GET("/catalogs", s.listCatalogs)

	// Routes that reach out to museum APIs or image hosts are rate limited.
	outbound := api.Group("")
	if limiter != nil {
		outbound.Use(limiter.Middleware())
	}
	outbound.GET("/catalogs/:catalog/random", s.randomArtwork)
	outbound.GET("/download", s.downloadImage)
	outbound.POST("/save", s.saveImage)
}

// Start serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, cfg ServerConfig) error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-quit:
	case <-ctx.Done():
	}

	log.Println("[INFO] Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("[INFO] Server exited")
	return nil
}

// GetDefaultServerConfig returns default server configuration
func GetDefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Host:         "localhost",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// ServerConfigFrom converts persisted settings into a ServerConfig.
func ServerConfigFrom(settings config.ServerSettings) ServerConfig {
	cfg := GetDefaultServerConfig()
	if settings.Host != "" {
		cfg.Host = settings.Host
	}
	if settings.Port > 0 {
		cfg.Port = strconv.Itoa(settings.Port)
	}
	if settings.ReadTimeout > 0 {
		cfg.ReadTimeout = settings.ReadTimeout
	}
	if settings.WriteTimeout > 0 {
		cfg.WriteTimeout = settings.WriteTimeout
	}
	if settings.IdleTimeout > 0 {
		cfg.IdleTimeout = settings.IdleTimeout
	}
	return cfg
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
