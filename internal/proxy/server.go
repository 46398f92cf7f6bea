// Package proxy serves the browser dashboard: it relays /teams/* calls to
// the Admin API, sends report emails, builds xlsx files and serves static
// files.
package proxy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/j-veylop/team-usage-dashboard/internal/logger"
	"github.com/j-veylop/team-usage-dashboard/internal/mailer"
	"github.com/j-veylop/team-usage-dashboard/internal/services/adminapi"
)

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 5 * time.Second

// Forwarder relays raw requests to the Admin API.
type Forwarder interface {
	Forward(ctx context.Context, req adminapi.ForwardRequest) (*adminapi.ForwardResponse, error)
}

// Mailer sends report emails.
type Mailer interface {
	Send(ctx context.Context, req mailer.Request) (*mailer.Result, error)
}

// Config holds listener settings.
type Config struct {
	Addr            string
	StaticDir       string
	ShutdownTimeout time.Duration
	Headers         HeaderPolicy
}

// Server is the dashboard proxy.
type Server struct {
	cfg       Config
	engine    *gin.Engine
	forwarder Forwarder
	mailer    Mailer
}

// New builds the server and registers its routes.
func New(cfg Config, forwarder Forwarder, m Mailer) *Server {
	if cfg.StaticDir == "" {
		cfg.StaticDir = "."
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Headers.deny == nil {
		cfg.Headers = DefaultHeaderPolicy
	}

	s := &Server{cfg: cfg, forwarder: forwarder, mailer: m}

	engine := gin.New()
	engine.Use(
		gin.CustomRecovery(recoveryHandler),
		requestIDMiddleware(),
		loggingMiddleware(),
		corsMiddleware(),
	)

	engine.GET("/teams/*path", s.handleTeams)
	engine.POST("/teams/*path", s.handleTeams)
	engine.POST("/send-email", s.handleSendEmail)
	engine.POST("/generate-xlsx", s.handleGenerateXLSX)
	engine.NoRoute(s.handleNoRoute)

	s.engine = engine
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("proxy listening", "addr", s.cfg.Addr, "static_dir", s.cfg.StaticDir)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down proxy")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
