package guard

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/blockpage"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/types"
)

type stepResult int

const (
	stepApplied stepResult = iota
	stepFailed
	stepStopped
)

// enforce applies the terminal action for the verdict and returns the last
// action that reached the tab.
func (g *Guard) enforce(p *pendingState, tab types.TabID, rawURL string, a *types.Analysis) Action {
	if g.tabs == nil {
		return ActionNone
	}
	ctx := p.ctx

	switch a.Rating {
	case types.RatingWarn:
		if g.overlay(ctx, p, tab, a) == stepApplied {
			return ActionOverlay
		}
		return ActionNone

	case types.RatingDanger:
		applied := ActionNone
		switch g.overlay(ctx, p, tab, a) {
		case stepApplied:
			applied = ActionOverlay
		case stepStopped:
			return applied
		}

		if !g.delay(ctx, p, tab) {
			return applied
		}

		action, target := ActionClose, ""
		if g.opts.DangerAction == config.DangerActionRedirect {
			g.enrich(ctx, rawURL, a)
			target = g.blockPageTarget(rawURL, a)
			if target != "" {
				action = ActionRedirect
			}
		}

		res := g.step(ctx, p, tab, action, func(ctx context.Context) error {
			if action == ActionRedirect {
				return g.tabs.RedirectTab(ctx, tab, target)
			}
			return g.tabs.CloseTab(ctx, tab)
		})
		if res == stepApplied {
			return action
		}
		return applied

	default:
		return ActionNone
	}
}

func (g *Guard) overlay(ctx context.Context, p *pendingState, tab types.TabID, a *types.Analysis) stepResult {
	overlay := types.Overlay{Rating: a.Rating, Reason: a.Reason}
	return g.step(ctx, p, tab, ActionOverlay, func(ctx context.Context) error {
		return g.tabs.ShowOverlay(ctx, tab, overlay)
	})
}

// delay waits OverlayDelay so the overlay is seen before the tab goes away.
func (g *Guard) delay(ctx context.Context, p *pendingState, tab types.TabID) bool {
	if g.opts.OverlayDelay <= 0 {
		return true
	}
	t := time.NewTimer(g.opts.OverlayDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		g.drop(p, tab, Action(g.opts.DangerAction), dropReason(p))
		return false
	}
}

// step applies one tab command unless the evaluation has been superseded.
// ErrTabGone ends the sequence without being reported as a failure.
func (g *Guard) step(ctx context.Context, p *pendingState, tab types.TabID, action Action, fn func(context.Context) error) stepResult {
	if p.stale() || ctx.Err() != nil {
		g.drop(p, tab, action, dropReason(p))
		return stepStopped
	}

	err := fn(ctx)
	switch {
	case err == nil:
		g.metrics.RecordTabAction(string(action), "applied")
		return stepApplied
	case errors.Is(err, ErrTabGone):
		g.metrics.RecordTabAction(string(action), "tab_gone")
		g.drop(p, tab, action, "tab_gone")
		return stepStopped
	case p.stale():
		g.drop(p, tab, action, "superseded")
		return stepStopped
	default:
		g.metrics.RecordTabAction(string(action), "error")
		g.logger.Warn("tab action failed",
			zap.Int("tab_id", int(tab)),
			zap.String("action", string(action)),
			zap.Error(err))
		return stepFailed
	}
}

func (g *Guard) drop(p *pendingState, tab types.TabID, action Action, reason string) {
	g.metrics.RecordDroppedAction(reason)
	g.logger.Debug("terminal action dropped",
		zap.Int("tab_id", int(tab)),
		zap.Uint64("generation", p.gen),
		zap.String("action", string(action)),
		zap.String("reason", reason))
}

func dropReason(p *pendingState) string {
	if p.stale() {
		return "superseded"
	}
	return "canceled"
}

func (g *Guard) blockPageTarget(rawURL string, a *types.Analysis) string {
	if g.opts.BlockPageURL == "" {
		return ""
	}
	target, err := blockpage.BuildURL(g.opts.BlockPageURL, blockpage.State{
		Reason:   a.Reason,
		URL:      rawURL,
		Score:    a.Score,
		Official: a.SuggestedOfficialURL,
	})
	if err != nil {
		g.logger.Warn("block page url unavailable, closing instead", zap.Error(err))
		return ""
	}
	return target
}
