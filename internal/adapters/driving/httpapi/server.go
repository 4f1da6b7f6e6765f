package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/tillsync/internal/core/ports/driving"
	"github.com/custodia-labs/tillsync/internal/logger"
)

// ErrMissingOfflineService is returned when no offline service is provided.
var ErrMissingOfflineService = errors.New("httpapi: offline service is required")

// ConnectivityToggle flips a manually controlled connectivity source.
type ConnectivityToggle interface {
	SetOnline(online bool)
}

// Config holds the collaborators of the HTTP API.
type Config struct {
	// Offline is required.
	Offline driving.OfflineService

	// Toggle enables POST /connectivity when set.
	Toggle ConnectivityToggle

	// Metrics is served on GET /metrics when set.
	Metrics http.Handler
}

// Server is the local HTTP API.
type Server struct {
	router *gin.Engine
}

// NewServer builds the router.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Offline == nil {
		return nil, ErrMissingOfflineService
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	h := &handlers{offline: cfg.Offline, toggle: cfg.Toggle}
	h.register(router)

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	return &Server{router: router}, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// requestLogger logs each request through the verbose logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http: %s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
