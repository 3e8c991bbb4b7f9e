package guard

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/types"
)

// ErrTabGone reports that a tab command targeted a tab that no longer exists.
var ErrTabGone = errors.New("tab no longer exists")

// Fixed reasons synthesised by the guard.
const (
	ReasonUnreachable    = "analysis server unreachable"
	ReasonKnownMalicious = "already-known malicious site"
	ReasonUnanalyzable   = "unable to analyze this page"
)

// Tabs mutates browser tabs. Implementations return ErrTabGone when the tab
// has been closed.
type Tabs interface {
	ShowOverlay(ctx context.Context, tab types.TabID, overlay types.Overlay) error
	CloseTab(ctx context.Context, tab types.TabID) error
	RedirectTab(ctx context.Context, tab types.TabID, target string) error
}

// Analyzer is the part of the remote analysis service the guard needs.
type Analyzer interface {
	CheckBlocked(ctx context.Context, url, clientID string) (bool, error)
	Analyze(ctx context.Context, url, clientID string) (types.Analysis, error)
	GlobalInfo(ctx context.Context, url string) (types.Info, error)
}

// Identity supplies the client id sent with remote calls.
type Identity interface {
	Get(ctx context.Context) (string, error)
}

// Action is the terminal action applied to a tab.
type Action string

const (
	ActionNone     Action = "none"
	ActionOverlay  Action = "overlay"
	ActionRedirect Action = "redirect"
	ActionClose    Action = "close"
)

// Outcome is the result of one evaluation. OK is false for refused input,
// block-list hits and fail-open fallbacks.
type Outcome struct {
	OK       bool           `json:"ok"`
	Analysis types.Analysis `json:"analysis"`
	Skipped  bool           `json:"skipped,omitempty"`
	Action   Action         `json:"action,omitempty"`
}

// Resolution paths, used as a metrics label.
const (
	pathRefused   = "refused"
	pathBlockList = "blocklist"
	pathFull      = "full"
	pathFailOpen  = "fail_open"
)

// Options configures a Guard.
type Options struct {
	DangerAction    string
	OverlayDelay    time.Duration
	Debounce        time.Duration
	ExtensionOrigin string
	BlockPageURL    string
	Enrich          bool
	Metrics         *monitoring.Metrics
	Logger          *logging.Logger
}

// OptionsFromConfig maps agent configuration to guard options.
func OptionsFromConfig(cfg *config.Config, metrics *monitoring.Metrics, logger *logging.Logger) Options {
	return Options{
		DangerAction:    cfg.Guard.DangerAction,
		OverlayDelay:    cfg.Guard.OverlayDelay,
		Debounce:        cfg.Guard.Debounce,
		ExtensionOrigin: cfg.Guard.ExtensionOrigin,
		BlockPageURL:    cfg.BlockPage(),
		Enrich:          cfg.Guard.Enrich,
		Metrics:         metrics,
		Logger:          logger,
	}
}

// Guard decides what happens to a navigation.
type Guard struct {
	analyzer Analyzer
	tabs     Tabs
	identity Identity
	opts     Options
	metrics  *monitoring.Metrics
	logger   *logging.Logger

	blockPage *url.URL
	now       func() time.Time

	mu      sync.Mutex
	gen     uint64
	pending map[types.TabID]*pendingState
}

// New creates a guard. tabs may be nil when the guard only serves popup
// evaluations.
func New(analyzer Analyzer, tabs Tabs, identity Identity, opts Options) *Guard {
	if opts.DangerAction == "" {
		opts.DangerAction = config.DangerActionRedirect
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	g := &Guard{
		analyzer: analyzer,
		tabs:     tabs,
		identity: identity,
		opts:     opts,
		metrics:  opts.Metrics,
		logger:   opts.Logger.Component("guard"),
		now:      time.Now,
		pending:  make(map[types.TabID]*pendingState),
	}
	if opts.BlockPageURL != "" {
		if u, err := url.Parse(opts.BlockPageURL); err == nil {
			g.blockPage = u
		}
	}
	return g
}

// BlockPageURL returns the configured block page.
func (g *Guard) BlockPageURL() string {
	return g.opts.BlockPageURL
}
