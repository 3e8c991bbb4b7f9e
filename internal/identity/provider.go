package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/kvstore"
)

// Key is the store key holding the client identity.
const Key = "client_id"

// Provider hands out the per-installation client identity.
type Provider struct {
	store  kvstore.Store
	logger *logging.Logger
	newID  func() string

	group singleflight.Group

	mu     sync.RWMutex
	cached string
}

// New creates a provider backed by store.
func New(store kvstore.Store, logger *logging.Logger) *Provider {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Provider{
		store:  store,
		logger: logger.Component("identity"),
		newID:  uuid.NewString,
	}
}

// Get returns the client identity, creating and persisting it on first use.
// Concurrent first callers share one store round trip and agree on the id.
// A caller whose ctx ends stops waiting without failing the others.
func (p *Provider) Get(ctx context.Context) (string, error) {
	p.mu.RLock()
	id := p.cached
	p.mu.RUnlock()
	if id != "" {
		return id, nil
	}

	// the shared load outlives any one caller's cancellation
	ch := p.group.DoChan(Key, func() (any, error) {
		return p.load(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *Provider) load(ctx context.Context) (string, error) {
	id, ok, err := p.store.Get(ctx, Key)
	if err != nil {
		return "", fmt.Errorf("read client id: %w", err)
	}
	if !ok || id == "" {
		id, err = p.store.SetIfAbsent(ctx, Key, p.newID())
		if err != nil {
			return "", fmt.Errorf("store client id: %w", err)
		}
		p.logger.Info("client identity created", zap.String("client_id", id))
	}

	p.mu.Lock()
	p.cached = id
	p.mu.Unlock()
	return id, nil
}
