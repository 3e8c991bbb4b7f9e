package guard

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/types"
)

// pendingState tracks the latest evaluation of one tab. It stays in the
// guard's map while in flight and, once finished, until its debounce
// window runs out.
type pendingState struct {
	gen     uint64
	url     string
	started time.Time

	// ctx gates terminal actions; cancel fires on supersede
	ctx        context.Context
	cancel     context.CancelFunc
	superseded atomic.Bool

	done    chan struct{}
	outcome Outcome
}

func (p *pendingState) supersede() {
	p.superseded.Store(true)
	p.cancel()
}

func (p *pendingState) stale() bool {
	return p.superseded.Load()
}

// wait blocks until the evaluation finishes. A coalesced caller applies no
// action of its own.
func (p *pendingState) wait(ctx context.Context) Outcome {
	select {
	case <-p.done:
		out := p.outcome
		out.Action = ActionNone
		return out
	case <-ctx.Done():
		out := FailOpen()
		out.Action = ActionNone
		return out
	}
}

// begin registers a new evaluation for tab, or returns the one already
// running for the same URL inside the debounce window.
func (g *Guard) begin(ctx context.Context, tab types.TabID, rawURL string, now time.Time) (*pendingState, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p := g.pending[tab]; p != nil {
		if p.url == rawURL && !p.stale() && now.Sub(p.started) < g.opts.Debounce {
			return p, true
		}
		g.supersedeLocked(tab, p, "newer_navigation")
	}

	g.gen++
	actx, cancel := context.WithCancel(ctx)
	p := &pendingState{
		gen:     g.gen,
		url:     rawURL,
		started: now,
		ctx:     actx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	g.pending[tab] = p
	return p, false
}

// finish publishes the outcome and schedules removal after the debounce
// window.
func (g *Guard) finish(tab types.TabID, p *pendingState, out Outcome) {
	p.outcome = out
	close(p.done)

	remaining := g.opts.Debounce - g.now().Sub(p.started)
	if remaining <= 0 {
		g.expire(tab, p)
		return
	}
	time.AfterFunc(remaining, func() { g.expire(tab, p) })
}

func (g *Guard) expire(tab types.TabID, p *pendingState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending[tab] == p {
		delete(g.pending, tab)
	}
	p.cancel()
}

func (g *Guard) supersedeLocked(tab types.TabID, p *pendingState, reason string) {
	p.supersede()
	delete(g.pending, tab)
	g.logger.Debug("pending evaluation superseded",
		zap.Int("tab_id", int(tab)),
		zap.Uint64("generation", p.gen),
		zap.String("url", p.url),
		zap.String("reason", reason))
}

// TabNavigated supersedes the tab's evaluation unless it is for url.
func (g *Guard) TabNavigated(tab types.TabID, url string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p := g.pending[tab]; p != nil && p.url != url {
		g.supersedeLocked(tab, p, "tab_navigated")
	}
}

// TabClosed drops any evaluation of the tab.
func (g *Guard) TabClosed(tab types.TabID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p := g.pending[tab]; p != nil {
		g.supersedeLocked(tab, p, "tab_closed")
	}
}

// Pending returns the URL currently tracked for tab.
func (g *Guard) Pending(tab types.TabID) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.pending[tab]
	if !ok {
		return "", false
	}
	return p.url, true
}
