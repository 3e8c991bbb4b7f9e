package guard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/id"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/types"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/utils"
)

// ErrInvalidInput is returned by CheckInput for URLs the guard will not analyze.
var ErrInvalidInput = errors.New("invalid input")

// Refused is the outcome for input the guard will not analyze.
func Refused() Outcome {
	return Outcome{
		OK:       false,
		Skipped:  true,
		Analysis: types.Analysis{Rating: types.RatingSafe, Reason: ReasonUnanalyzable},
		Action:   ActionNone,
	}
}

// FailOpen is the advisory outcome used when the analysis service cannot be
// consulted.
func FailOpen() Outcome {
	return Outcome{
		OK:       false,
		Analysis: types.Analysis{Rating: types.RatingWarn, Reason: ReasonUnreachable},
	}
}

func knownMalicious() Outcome {
	return Outcome{
		OK:       false,
		Analysis: types.Analysis{Rating: types.RatingDanger, Reason: ReasonKnownMalicious},
	}
}

// CheckInput reports whether rawURL can be analyzed: an absolute http(s) URL
// outside the extension's own origin and the agent's block page.
func (g *Guard) CheckInput(rawURL string) error {
	u, err := utils.ValidateHTTPURL(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if origin := g.opts.ExtensionOrigin; origin != "" &&
		strings.HasPrefix(strings.ToLower(strings.TrimSpace(rawURL)), strings.ToLower(origin)) {
		return fmt.Errorf("%w: extension page", ErrInvalidInput)
	}
	if utils.SameDocument(u, g.blockPage) {
		return fmt.Errorf("%w: block page", ErrInvalidInput)
	}
	return nil
}

// Evaluate checks rawURL against the block list and, unless it is listed,
// runs the full analysis. When tab is set the verdict is enforced on that
// tab; a nil tab is the popup path and never touches a tab. Evaluate never
// fails: remote errors resolve to the fail-open advisory.
func (g *Guard) Evaluate(ctx context.Context, rawURL string, tab *types.TabID) Outcome {
	start := g.now()

	if err := g.CheckInput(rawURL); err != nil {
		g.logger.Debug("navigation refused",
			zap.String("url", rawURL),
			tabField(tab),
			zap.Error(err))
		g.metrics.RecordEvaluation(types.RatingSafe.String(), pathRefused, 0)
		return Refused()
	}

	eid := id.NewEvaluationID()
	if tab == nil {
		out, path := g.resolve(ctx, eid, rawURL)
		out.Action = ActionNone
		g.record(eid, rawURL, tab, out, path, start)
		return out
	}
	return g.evaluateTab(ctx, eid, rawURL, *tab, start)
}

func (g *Guard) evaluateTab(ctx context.Context, eid id.EvaluationID, rawURL string, tab types.TabID, start time.Time) Outcome {
	p, dup := g.begin(ctx, tab, rawURL, start)
	if dup {
		g.logger.Debug("duplicate navigation coalesced",
			zap.Int("tab_id", int(tab)),
			zap.String("url", rawURL))
		return p.wait(ctx)
	}

	out, path := g.resolve(p.ctx, eid, rawURL)
	if p.stale() {
		out.Action = ActionNone
		g.drop(p, tab, ActionNone, "superseded")
		g.finish(tab, p, out)
		return out
	}
	out.Action = g.enforce(p, tab, rawURL, &out.Analysis)
	g.record(eid, rawURL, &tab, out, path, start)
	g.finish(tab, p, out)
	return out
}

// resolve runs the two remote phases.
func (g *Guard) resolve(ctx context.Context, eid id.EvaluationID, rawURL string) (Outcome, string) {
	g.metrics.IncPending()
	defer g.metrics.DecPending()

	clientID := g.clientID(ctx)

	blocked, err := g.analyzer.CheckBlocked(ctx, rawURL, clientID)
	if err != nil {
		g.failOpen(ctx, eid, rawURL, "block list check failed, failing open", err)
		return FailOpen(), pathFailOpen
	}
	if blocked {
		return knownMalicious(), pathBlockList
	}

	analysis, err := g.analyzer.Analyze(ctx, rawURL, clientID)
	if err != nil {
		g.failOpen(ctx, eid, rawURL, "analysis failed, failing open", err)
		return FailOpen(), pathFailOpen
	}
	return Outcome{OK: true, Analysis: analysis}, pathFull
}

// failOpen logs a remote failure. Canceled work is routine.
func (g *Guard) failOpen(ctx context.Context, eid id.EvaluationID, rawURL, msg string, err error) {
	log := g.logger.Warn
	if ctx.Err() != nil {
		log = g.logger.Debug
	}
	log(msg,
		zap.String("eval_id", eid.String()),
		zap.String("url", rawURL),
		zap.Error(err))
}

func (g *Guard) clientID(ctx context.Context) string {
	if g.identity == nil {
		return ""
	}
	cid, err := g.identity.Get(ctx)
	if err != nil {
		g.logger.Warn("client identity unavailable", zap.Error(err))
		return ""
	}
	return cid
}

// enrich fills score and official URL from the cached verdict. Best effort.
func (g *Guard) enrich(ctx context.Context, rawURL string, a *types.Analysis) {
	if !g.opts.Enrich || (a.Score != nil && a.SuggestedOfficialURL != "") {
		return
	}
	info, err := g.analyzer.GlobalInfo(ctx, rawURL)
	if err != nil {
		g.logger.Debug("enrichment skipped", zap.String("url", rawURL), zap.Error(err))
		return
	}
	if a.Score == nil && info.AIScore != nil {
		score := *info.AIScore
		a.Score = &score
	}
	if a.SuggestedOfficialURL == "" {
		a.SuggestedOfficialURL = info.OfficialURL
	}
}

func (g *Guard) record(eid id.EvaluationID, rawURL string, tab *types.TabID, out Outcome, path string, start time.Time) {
	elapsed := g.now().Sub(start)
	g.metrics.RecordEvaluation(out.Analysis.Rating.String(), path, elapsed)

	fields := []zap.Field{
		zap.String("eval_id", eid.String()),
		zap.String("url", rawURL),
		tabField(tab),
		zap.String("rating", out.Analysis.Rating.String()),
		zap.Bool("ok", out.OK),
		zap.String("path", path),
		zap.String("action", string(out.Action)),
		zap.Duration("elapsed", elapsed),
	}
	if out.Analysis.Rating == types.RatingSafe {
		g.logger.Debug("navigation evaluated", fields...)
		return
	}
	g.logger.Info("navigation evaluated", fields...)
}

func tabField(tab *types.TabID) zap.Field {
	if tab == nil {
		return zap.Skip()
	}
	return zap.Int("tab_id", int(*tab))
}
