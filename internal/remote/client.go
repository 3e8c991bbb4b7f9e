package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/types"
)

// Endpoint names a remote operation in logs and metrics.
type Endpoint string

const (
	EndpointCheck          Endpoint = "check_blocked"
	EndpointAnalyze        Endpoint = "analyze"
	EndpointInfo           Endpoint = "global_info"
	EndpointReport         Endpoint = "report"
	EndpointSetOverride    Endpoint = "set_override"
	EndpointRemoveOverride Endpoint = "remove_override"
	EndpointListOverrides  Endpoint = "list_overrides"
)

// Paths maps each operation to its path under the base URL.
type Paths struct {
	Check          string
	Analyze        string
	Info           string
	Report         string
	Override       string
	RemoveOverride string
	ListOverrides  string
}

// DefaultPaths returns the paths of the reference deployment.
func DefaultPaths() Paths {
	return Paths{
		Check:          "/check_blocked",
		Analyze:        "/api/evaluate",
		Info:           "/api/global-info",
		Report:         "/api/report",
		Override:       "/api/override",
		RemoveOverride: "/api/remove-override",
		ListOverrides:  "/api/my-blocked-urls",
	}
}

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	Retries           int
	RetryWait         time.Duration
	RequestsPerSecond float64
	Paths             Paths
	Breaker           resilience.Settings
	Metrics           *monitoring.Metrics
	Logger            *logging.Logger
}

// Receipt acknowledges a report.
type Receipt struct {
	Message  string `json:"message,omitempty"`
	ReportID string `json:"report_id,omitempty"`
}

// Client talks to the remote analysis service. Every call is bounded by the
// configured timeout, rate limited, and guarded by a circuit breaker so a
// dead backend fails fast.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	paths   Paths
	timeout time.Duration
	metrics *monitoring.Metrics
	logger  *logging.Logger
}

// New creates a client from options.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 4 * time.Second
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 100 * time.Millisecond
	}
	if opts.Paths == (Paths{}) {
		opts.Paths = DefaultPaths()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	// pooled transport only; retries are driven by resty with the
	// retryablehttp policy so they stay inside the call's deadline
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	restyClient := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTransport(retryClient.HTTPClient.Transport).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "PhishGuard-Agent/1.0").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetRetryCount(max(opts.Retries, 0)).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.Timeout / 2).
		AddRetryCondition(retryCondition)

	settings := opts.Breaker
	if settings.ReadyToTrip == nil {
		settings.ReadyToTrip = func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		}
	}
	if settings.Timeout == 0 {
		settings.Timeout = 15 * time.Second
	}
	if settings.IsSuccessful == nil {
		// a 4xx proves the service is alive
		settings.IsSuccessful = func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return !se.Temporary()
			}
			return err == nil
		}
	}
	logger := opts.Logger.Component("remote")
	if settings.OnStateChange == nil {
		settings.OnStateChange = func(name string, from, to resilience.State) {
			logger.Warn("circuit state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), max(int(opts.RequestsPerSecond), 1))
	}

	return &Client{
		resty:   restyClient,
		limiter: limiter,
		breaker: resilience.New("remote-analysis", settings),
		paths:   opts.Paths,
		timeout: opts.Timeout,
		metrics: opts.Metrics,
		logger:  logger,
	}
}

// NewFromConfig creates a client from the remote section of the config.
func NewFromConfig(cfg config.RemoteConfig, metrics *monitoring.Metrics, logger *logging.Logger) *Client {
	return New(Options{
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.Timeout,
		Retries:           cfg.Retries,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Paths: Paths{
			Check:          cfg.CheckPath,
			Analyze:        cfg.AnalyzePath,
			Info:           cfg.InfoPath,
			Report:         cfg.ReportPath,
			Override:       cfg.OverridePath,
			RemoveOverride: cfg.RemoveOverridePath,
			ListOverrides:  cfg.ListOverridesPath,
		},
		Metrics: metrics,
		Logger:  logger,
	})
}

// BreakerState returns the circuit breaker state.
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// CheckBlocked asks whether url is on the block list for clientID.
func (c *Client) CheckBlocked(ctx context.Context, url, clientID string) (bool, error) {
	var blocked bool
	err := c.post(ctx, EndpointCheck, c.paths.Check, map[string]any{
		"client_id": clientID,
		"url":       url,
	}, func(body []byte) (err error) {
		blocked, err = decodeCheck(body)
		return err
	})
	return blocked, err
}

// Analyze runs the full analysis of url.
func (c *Client) Analyze(ctx context.Context, url, clientID string) (types.Analysis, error) {
	var a types.Analysis
	err := c.post(ctx, EndpointAnalyze, c.paths.Analyze, map[string]any{
		"url":       url,
		"client_id": clientID,
	}, func(body []byte) (err error) {
		a, err = decodeAnalysis(body)
		return err
	})
	return a, err
}

// GlobalInfo fetches the cached verdict for url.
func (c *Client) GlobalInfo(ctx context.Context, url string) (types.Info, error) {
	var info types.Info
	err := c.post(ctx, EndpointInfo, c.paths.Info, map[string]any{
		"url": url,
	}, func(body []byte) (err error) {
		info, err = decodeInfo(body)
		return err
	})
	return info, err
}

// Report files a phishing report. A URL reported before yields ErrAlreadyReported.
func (c *Client) Report(ctx context.Context, url, suggestedURL, clientID string) (Receipt, error) {
	req := map[string]any{
		"client_id":  clientID,
		"user_token": clientID,
		"url":        url,
	}
	if suggestedURL != "" {
		req["suggested_url"] = suggestedURL
	}

	var receipt Receipt
	err := c.post(ctx, EndpointReport, c.paths.Report, req, func(body []byte) (err error) {
		receipt, err = decodeReport(body)
		return err
	})
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusConflict {
		return Receipt{}, fmt.Errorf("%w: %s", ErrAlreadyReported, url)
	}
	return receipt, err
}

// SetOverride upserts the personal decision for url.
func (c *Client) SetOverride(ctx context.Context, url, clientID string, decision types.Decision) error {
	return c.post(ctx, EndpointSetOverride, c.paths.Override, map[string]any{
		"client_id": clientID,
		"url":       url,
		"decision":  int(decision),
	}, func(body []byte) error {
		return decodeAck(EndpointSetOverride, body)
	})
}

// RemoveOverride deletes the personal decision for url.
func (c *Client) RemoveOverride(ctx context.Context, url, clientID string) error {
	return c.post(ctx, EndpointRemoveOverride, c.paths.RemoveOverride, map[string]any{
		"client_id": clientID,
		"url":       url,
	}, func(body []byte) error {
		return decodeAck(EndpointRemoveOverride, body)
	})
}

// ListOverrides returns the URLs clientID has blocked.
func (c *Client) ListOverrides(ctx context.Context, clientID string) ([]string, error) {
	var urls []string
	err := c.post(ctx, EndpointListOverrides, c.paths.ListOverrides, map[string]any{
		"client_id": clientID,
	}, func(body []byte) (err error) {
		urls, err = decodeList(body)
		return err
	})
	return urls, err
}

// post sends one JSON request under the call timeout and hands the 2xx body
// to parse.
func (c *Client) post(ctx context.Context, endpoint Endpoint, path string, payload any, parse func([]byte) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	timer := monitoring.NewTimer(c.metrics, string(endpoint))

	body, err := c.do(ctx, endpoint, path, payload)
	if err == nil {
		err = parse(body)
	}
	timer.Stop(statusLabel(err))
	if err != nil {
		c.logger.Warn("remote call failed",
			zap.String("endpoint", string(endpoint)),
			zap.Error(err))
	}
	return err
}

func (c *Client) do(ctx context.Context, endpoint Endpoint, path string, payload any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: rate limit: %w", ErrUnreachable, endpoint, err)
	}

	resp, err := resilience.Execute(c.breaker, func() (*resty.Response, error) {
		resp, err := c.resty.R().
			SetContext(ctx).
			SetBody(payload).
			Post(path)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, &StatusError{
				Endpoint: endpoint,
				Code:     resp.StatusCode(),
				Body:     truncate(resp.String(), 256),
			}
		}
		return resp, nil
	})
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreachable, endpoint, err)
	}
	return resp.Body(), nil
}

// retryCondition applies the retryablehttp policy to resty attempts.
func retryCondition(r *resty.Response, err error) bool {
	ctx := context.Background()
	var raw *http.Response
	if r != nil {
		raw = r.RawResponse
		if r.Request != nil {
			ctx = r.Request.Context()
		}
	}
	if raw == nil && err == nil {
		return false
	}
	retry, _ := retryablehttp.DefaultRetryPolicy(ctx, raw, err)
	return retry
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
