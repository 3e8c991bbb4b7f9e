package override

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/remote"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/types"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/utils"
)

// ErrOverrideRejected is returned when unblocking a system-imposed block.
var ErrOverrideRejected = errors.New("system block cannot be removed")

// Remote is the part of the analysis service the manager uses.
type Remote interface {
	Analyze(ctx context.Context, url, clientID string) (types.Analysis, error)
	GlobalInfo(ctx context.Context, url string) (types.Info, error)
	Report(ctx context.Context, url, suggestedURL, clientID string) (remote.Receipt, error)
	SetOverride(ctx context.Context, url, clientID string, decision types.Decision) error
	RemoveOverride(ctx context.Context, url, clientID string) error
	ListOverrides(ctx context.Context, clientID string) ([]string, error)
}

// Navigation kinds returned to the caller after a mutation.
const (
	NavigateReload = "reload"
	NavigateGoto   = "goto"
)

// FollowUp is the navigation the caller should perform after a mutation.
type FollowUp struct {
	Navigate string `json:"navigate"`
	URL      string `json:"url"`
}

// Options configures a Manager.
type Options struct {
	SystemScoreThreshold float64
	Metrics              *monitoring.Metrics
	Logger               *logging.Logger
}

// Manager owns the personal block list.
type Manager struct {
	remote    Remote
	threshold float64
	metrics   *monitoring.Metrics
	logger    *logging.Logger
}

// New creates a manager.
func New(r Remote, opts Options) *Manager {
	if opts.SystemScoreThreshold <= 0 {
		opts.SystemScoreThreshold = DefaultSystemScoreThreshold
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Manager{
		remote:    r,
		threshold: opts.SystemScoreThreshold,
		metrics:   opts.Metrics,
		logger:    opts.Logger.Component("override"),
	}
}

// Block reports url and adds it to the client's block list. Both calls run
// concurrently; only the override decides success. Blocking twice is not an
// error. The caller should reload the page so the block list catches it.
func (m *Manager) Block(ctx context.Context, url, clientID string) (FollowUp, error) {
	if _, err := utils.ValidateHTTPURL(url); err != nil {
		return FollowUp{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := m.remote.Report(gctx, url, "", clientID)
		switch {
		case err == nil, errors.Is(err, remote.ErrAlreadyReported):
		default:
			m.logger.Warn("report failed, block still applied",
				zap.String("url", url),
				zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		return m.remote.SetOverride(gctx, url, clientID, types.DecisionBlock)
	})

	if err := g.Wait(); err != nil {
		m.metrics.RecordOverride(types.DecisionBlock.String(), "error")
		return FollowUp{}, fmt.Errorf("block %s: %w", url, err)
	}
	m.metrics.RecordOverride(types.DecisionBlock.String(), "ok")
	m.logger.Info("url blocked", zap.String("url", url))
	return FollowUp{Navigate: NavigateReload, URL: url}, nil
}

// Unblock removes the client's block on url and returns the page to go back
// to. System-imposed blocks are rejected with ErrOverrideRejected.
func (m *Manager) Unblock(ctx context.Context, url, clientID string) (FollowUp, error) {
	if _, err := utils.ValidateHTTPURL(url); err != nil {
		return FollowUp{}, err
	}

	a, info, err := m.lookup(ctx, url, clientID)
	if err != nil {
		m.metrics.RecordOverride(types.DecisionUnblock.String(), "error")
		return FollowUp{}, fmt.Errorf("unblock %s: %w", url, err)
	}
	if origin := Classify(a, knownScore(a, info), m.threshold); origin == types.OriginSystem {
		m.metrics.RecordOverride(types.DecisionUnblock.String(), "rejected")
		m.logger.Info("unblock rejected for system block", zap.String("url", url))
		return FollowUp{}, fmt.Errorf("unblock %s: %w", url, ErrOverrideRejected)
	}

	if err := m.remote.RemoveOverride(ctx, url, clientID); err != nil {
		m.metrics.RecordOverride(types.DecisionUnblock.String(), "error")
		return FollowUp{}, fmt.Errorf("unblock %s: %w", url, err)
	}
	m.metrics.RecordOverride(types.DecisionUnblock.String(), "ok")
	m.logger.Info("url unblocked", zap.String("url", url))
	return FollowUp{Navigate: NavigateGoto, URL: url}, nil
}

// ListMine returns the URLs the client has blocked.
func (m *Manager) ListMine(ctx context.Context, clientID string) ([]string, error) {
	urls, err := m.remote.ListOverrides(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list blocked urls: %w", err)
	}
	if urls == nil {
		urls = []string{}
	}
	return urls, nil
}

// lookup fetches the verdict and, best effort, the cached info.
func (m *Manager) lookup(ctx context.Context, url, clientID string) (types.Analysis, types.Info, error) {
	var (
		a    types.Analysis
		info types.Info
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a, err = m.remote.Analyze(gctx, url, clientID)
		return err
	})
	g.Go(func() error {
		var err error
		if info, err = m.remote.GlobalInfo(gctx, url); err != nil {
			m.logger.Debug("global info unavailable", zap.String("url", url), zap.Error(err))
			info = types.Info{}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return types.Analysis{}, types.Info{}, err
	}
	return a, info, nil
}
