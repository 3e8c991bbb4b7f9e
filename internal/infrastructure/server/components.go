package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/bridge"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/guard"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/identity"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/kvstore"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/messaging"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/override"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/remote"
)

// Components is the agent's object graph, shared by the server and the CLI.
type Components struct {
	Config    *config.Config
	Logger    *logging.Logger
	Metrics   *monitoring.Metrics
	Store     kvstore.Store
	Identity  *identity.Provider
	Remote    *remote.Client
	Bridge    *bridge.Hub
	Guard     *guard.Guard
	Overrides *override.Manager
	Router    *messaging.Router
}

// Build wires every component from cfg. The caller owns the result and must
// Close it.
func Build(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Components, error) {
	if logger == nil {
		logger = logging.NewFromLevel(cfg.Logging.Level, cfg.Logging.Development)
	}
	metrics := monitoring.NewMetrics()

	store, err := kvstore.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open identity store: %w", err)
	}
	ident := identity.New(store, logger)

	client := remote.NewFromConfig(cfg.Remote, metrics, logger)
	hub := bridge.New(bridge.Options{
		CommandTimeout: cfg.Bridge.CommandTimeout,
		AllowedOrigins: cfg.Bridge.AllowedOrigins,
		Metrics:        metrics,
		Logger:         logger,
	})
	g := guard.New(client, hub, ident, guard.OptionsFromConfig(cfg, metrics, logger))
	overrides := override.New(client, override.Options{
		SystemScoreThreshold: cfg.Guard.SystemScoreThreshold,
		Metrics:              metrics,
		Logger:               logger,
	})
	router := messaging.NewRouter(g, overrides, client, ident, messaging.Options{
		BlockPageURL: cfg.BlockPage(),
		Logger:       logger,
	})

	logger.Info("components initialized",
		zap.String("remote", cfg.Remote.BaseURL),
		zap.String("store", cfg.Store.Backend),
		zap.String("danger_action", cfg.Guard.DangerAction),
	)

	return &Components{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics,
		Store:     store,
		Identity:  ident,
		Remote:    client,
		Bridge:    hub,
		Guard:     g,
		Overrides: overrides,
		Router:    router,
	}, nil
}

// Close drops the bridge, waits for background evaluations and closes the
// store.
func (c *Components) Close() error {
	_ = c.Bridge.Close()
	c.Router.Wait()
	if err := c.Store.Close(); err != nil {
		return fmt.Errorf("failed to close identity store: %w", err)
	}
	return nil
}
