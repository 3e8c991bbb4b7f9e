package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/PhishGuard/backend/internal/api/http"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/api/middleware"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/monitoring"
)

// Version is reported by /health.
var Version = "dev"

const shutdownTimeout = 5 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	components *Components
	logger     *logging.Logger
	config     *config.Config
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger := logging.NewFromLevel(cfg.Logging.Level, cfg.Logging.Development)
	logger.Info("Initializing PhishGuard agent",
		zap.String("addr", cfg.Addr()),
		zap.String("remote", cfg.Remote.BaseURL),
	)

	comps, err := Build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(comps.Metrics))
	router.Use(middleware.CORS(middleware.ExtensionCORSConfig(
		append([]string{cfg.Guard.ExtensionOrigin}, cfg.Bridge.AllowedOrigins...)...,
	)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(comps.Router, Version, logger)
	handlers.AddProbe("bridge", func() any {
		return gin.H{"connected": comps.Bridge.Connected()}
	})
	handlers.AddProbe("remote", func() any {
		return gin.H{"breaker": comps.Remote.BreakerState().String()}
	})

	router.GET("/health", handlers.Health)
	router.POST("/v1/messages", handlers.Message)
	router.GET("/blocked", handlers.BlockedPage)
	router.GET("/ws", comps.Bridge.Handler(comps.Router))
	router.GET("/metrics", gin.WrapH(comps.Metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		components: comps,
		logger:     logger,
		config:     cfg,
	}, nil
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Components returns the wired components.
func (s *Server) Components() *Components {
	return s.components
}

// Run serves HTTP until Close is called.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down http server: %w", err))
	}
	if err := s.components.Close(); err != nil {
		errs = append(errs, err)
	}

	_ = s.logger.Sync()
	return errors.Join(errs...)
}
