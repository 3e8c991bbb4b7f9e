package messaging

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/blockpage"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/guard"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/override"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/remote"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/types"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/utils"
)

// Evaluator is the navigation guard as seen by the router.
type Evaluator interface {
	Evaluate(ctx context.Context, url string, tab *types.TabID) guard.Outcome
	CheckInput(url string) error
	TabNavigated(tab types.TabID, url string)
	TabClosed(tab types.TabID)
}

// Overrides manages the personal block list.
type Overrides interface {
	Block(ctx context.Context, url, clientID string) (override.FollowUp, error)
	Unblock(ctx context.Context, url, clientID string) (override.FollowUp, error)
	ListMine(ctx context.Context, clientID string) ([]string, error)
	Status(ctx context.Context, url, clientID string) override.Status
	StatusFor(ctx context.Context, url string, a types.Analysis) override.Status
}

// Reporter submits phishing reports.
type Reporter interface {
	Report(ctx context.Context, url, suggestedURL, clientID string) (remote.Receipt, error)
}

// Identity supplies the client id.
type Identity interface {
	Get(ctx context.Context) (string, error)
}

// Popup is the data answered to ANALYZE_FOR_POPUP.
type Popup struct {
	URL     string          `json:"url"`
	Outcome guard.Outcome   `json:"outcome"`
	Status  override.Status `json:"status"`
}

// Refusal is the data attached to an invalid_input error.
type Refusal struct {
	Rating types.Rating `json:"rating"`
	Reason string       `json:"reason"`
}

// Options configures a Router.
type Options struct {
	BlockPageURL string
	Logger       *logging.Logger
}

// Router dispatches extension messages to the guard, the override manager
// and the identity provider.
type Router struct {
	guard     Evaluator
	overrides Overrides
	reporter  Reporter
	identity  Identity
	tabs      *TabRegistry
	blockPage *url.URL
	logger    *logging.Logger

	wg sync.WaitGroup
}

// NewRouter creates a router.
func NewRouter(g Evaluator, o Overrides, rep Reporter, id Identity, opts Options) *Router {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	r := &Router{
		guard:     g,
		overrides: o,
		reporter:  rep,
		identity:  id,
		tabs:      NewTabRegistry(),
		logger:    opts.Logger.Component("router"),
	}
	if opts.BlockPageURL != "" {
		if u, err := url.Parse(opts.BlockPageURL); err == nil {
			r.blockPage = u
		}
	}
	return r
}

// Tabs returns the tab registry.
func (r *Router) Tabs() *TabRegistry {
	return r.tabs
}

// Wait blocks until background evaluations started by CHECK_URL finish.
func (r *Router) Wait() {
	r.wg.Wait()
}

// Handle dispatches msg and returns its response. Fire-and-forget kinds
// answer immediately with Accepted.
func (r *Router) Handle(ctx context.Context, msg Message) Response {
	resp := r.dispatch(ctx, msg)
	resp.ID = msg.ID
	return resp
}

func (r *Router) dispatch(ctx context.Context, msg Message) Response {
	switch msg.Kind {
	case KindCheckURL:
		return r.checkURL(ctx, msg)
	case KindAnalyzeForPopup:
		return r.analyzeForPopup(ctx, msg)
	case KindReportURL:
		return r.report(ctx, msg)
	case KindSetBlock:
		return r.setBlock(ctx, msg)
	case KindRemoveBlock:
		return r.removeBlock(ctx, msg)
	case KindListBlocked:
		return r.listBlocked(ctx)
	case KindGetClientID:
		return r.clientID(ctx)
	case KindTabActivated:
		if msg.TabID == nil {
			return invalid()
		}
		r.tabs.Activate(*msg.TabID, msg.URL)
		return accepted()
	case KindTabNavigated:
		if msg.TabID == nil {
			return invalid()
		}
		r.tabs.SetURL(*msg.TabID, msg.URL)
		r.guard.TabNavigated(*msg.TabID, msg.URL)
		return accepted()
	case KindTabClosed:
		if msg.TabID == nil {
			return invalid()
		}
		r.tabs.Remove(*msg.TabID)
		r.guard.TabClosed(*msg.TabID)
		return accepted()
	default:
		r.logger.Warn("unknown message kind", zap.String("kind", string(msg.Kind)))
		return Response{OK: false, Error: CodeUnknownKind}
	}
}

// checkURL starts the tab evaluation in the background. The evaluation must
// outlive the request that triggered it.
func (r *Router) checkURL(ctx context.Context, msg Message) Response {
	if msg.TabID == nil {
		return invalid()
	}
	tab := *msg.TabID
	r.tabs.SetURL(tab, msg.URL)

	bg := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		out := r.guard.Evaluate(bg, msg.URL, &tab)
		r.logger.Debug("navigation evaluated",
			zap.Int("tab_id", int(tab)),
			zap.String("url", msg.URL),
			zap.String("rating", out.Analysis.Rating.String()),
			zap.String("action", string(out.Action)))
	}()
	return accepted()
}

func (r *Router) analyzeForPopup(ctx context.Context, msg Message) Response {
	target := msg.URL
	if target == "" {
		if _, u, ok := r.tabs.Active(); ok {
			target = u
		}
	}
	target = r.unwrap(target)
	if err := r.guard.CheckInput(target); err != nil {
		return invalid()
	}

	clientID, err := r.identity.Get(ctx)
	if err != nil {
		return r.fail(msg, err)
	}

	// a full verdict is reused; block-list hits and fail-open need the
	// service's own view to classify the block
	popup := Popup{URL: target, Outcome: r.guard.Evaluate(ctx, target, nil)}
	if popup.Outcome.OK {
		popup.Status = r.overrides.StatusFor(ctx, target, popup.Outcome.Analysis)
	} else {
		popup.Status = r.overrides.Status(ctx, target, clientID)
	}
	return Response{OK: true, Data: popup}
}

func (r *Router) report(ctx context.Context, msg Message) Response {
	target := r.unwrap(msg.URL)
	if _, err := utils.ValidateHTTPURL(target); err != nil {
		return invalid()
	}
	clientID, err := r.identity.Get(ctx)
	if err != nil {
		return r.fail(msg, err)
	}
	receipt, err := r.reporter.Report(ctx, target, msg.SuggestedURL, clientID)
	switch {
	case err == nil:
		return Response{OK: true, Data: receipt}
	case errors.Is(err, remote.ErrAlreadyReported):
		return Response{OK: true, Data: remote.Receipt{Message: "already reported"}}
	default:
		return r.fail(msg, err)
	}
}

func (r *Router) setBlock(ctx context.Context, msg Message) Response {
	target := r.unwrap(msg.URL)
	clientID, err := r.identity.Get(ctx)
	if err != nil {
		return r.fail(msg, err)
	}
	follow, err := r.overrides.Block(ctx, target, clientID)
	if err != nil {
		return r.fail(msg, err)
	}
	return Response{OK: true, Data: follow}
}

func (r *Router) removeBlock(ctx context.Context, msg Message) Response {
	target := r.unwrap(msg.URL)
	clientID, err := r.identity.Get(ctx)
	if err != nil {
		return r.fail(msg, err)
	}
	follow, err := r.overrides.Unblock(ctx, target, clientID)
	if err != nil {
		return r.fail(msg, err)
	}
	return Response{OK: true, Data: follow}
}

func (r *Router) listBlocked(ctx context.Context) Response {
	clientID, err := r.identity.Get(ctx)
	if err != nil {
		return Response{OK: false, Error: ErrorCode(err)}
	}
	urls, err := r.overrides.ListMine(ctx, clientID)
	if err != nil {
		r.logger.Warn("list blocked failed", zap.Error(err))
		return Response{OK: false, Error: ErrorCode(err)}
	}
	return Response{OK: true, Data: urls}
}

func (r *Router) clientID(ctx context.Context) Response {
	id, err := r.identity.Get(ctx)
	if err != nil {
		r.logger.Error("client id unavailable", zap.Error(err))
		return Response{OK: false, Error: CodeInternal}
	}
	return Response{OK: true, Data: map[string]string{"client_id": id}}
}

// unwrap returns the blocked URL when raw is the block page itself.
func (r *Router) unwrap(raw string) string {
	if r.blockPage == nil || raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || !utils.SameDocument(u, r.blockPage) {
		return raw
	}
	st, err := blockpage.FromQuery(u.Query())
	if err != nil {
		return raw
	}
	return st.URL
}

func (r *Router) fail(msg Message, err error) Response {
	code := ErrorCode(err)
	if code == CodeInvalidInput {
		return invalid()
	}
	r.logger.Warn("message failed",
		zap.String("kind", string(msg.Kind)),
		zap.String("url", msg.URL),
		zap.String("code", code),
		zap.Error(err))
	return Response{OK: false, Error: code}
}

// ErrorCode maps an error to its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, guard.ErrInvalidInput), errors.Is(err, utils.ErrInvalidURL):
		return CodeInvalidInput
	case errors.Is(err, override.ErrOverrideRejected):
		return CodeOverrideRejected
	case errors.Is(err, remote.ErrUnreachable):
		return CodeUnreachable
	case errors.Is(err, remote.ErrServer), errors.Is(err, remote.ErrNotApplied):
		return CodeServerError
	case errors.Is(err, remote.ErrMalformed):
		return CodeMalformed
	default:
		return CodeInternal
	}
}

func invalid() Response {
	return Response{
		OK:    false,
		Error: CodeInvalidInput,
		Data:  Refusal{Rating: types.RatingSafe, Reason: guard.ReasonUnanalyzable},
	}
}

func accepted() Response {
	return Response{OK: true, Data: Accepted{Accepted: true}}
}
