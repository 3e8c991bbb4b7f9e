package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "phishguard"

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Navigation guard metrics
	Evaluations        *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	PendingEvaluations prometheus.Gauge
	TabActions         *prometheus.CounterVec
	DroppedActions     *prometheus.CounterVec

	// Remote service metrics
	RemoteCalls    *prometheus.CounterVec
	RemoteDuration *prometheus.HistogramVec

	// Override metrics
	Overrides *prometheus.CounterVec

	// Bridge metrics
	BridgeConnections prometheus.Gauge
	BridgeMessages    *prometheus.CounterVec
}

// NewMetrics creates a metrics collector on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	start := time.Now()

	m := &Metrics{
		registry: reg,

		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		Evaluations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guard_evaluations_total",
				Help:      "Navigation guard evaluations by effective rating and resolution path",
			},
			[]string{"rating", "path"},
		),
		EvaluationDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "guard_evaluation_duration_seconds",
				Help:      "Time from evaluation start to outcome",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2, 4, 8},
			},
		),
		PendingEvaluations: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "guard_pending_evaluations",
				Help:      "Evaluations waiting on the remote service",
			},
		),
		TabActions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guard_tab_actions_total",
				Help:      "Terminal tab actions issued to the extension",
			},
			[]string{"action", "result"},
		),
		DroppedActions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guard_dropped_actions_total",
				Help:      "Terminal actions dropped before being applied",
			},
			[]string{"reason"},
		),

		RemoteCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_calls_total",
				Help:      "Calls to the remote analysis service",
			},
			[]string{"endpoint", "status"},
		),
		RemoteDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "remote_call_duration_seconds",
				Help:      "Remote analysis service call duration in seconds",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2, 4},
			},
			[]string{"endpoint"},
		),

		Overrides: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "overrides_total",
				Help:      "Personal block list mutations",
			},
			[]string{"decision", "result"},
		),

		BridgeConnections: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "bridge_connections",
				Help:      "Connected extension bridges",
			},
		),
		BridgeMessages: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bridge_messages_total",
				Help:      "Bridge frames by direction and kind",
			},
			[]string{"direction", "kind"},
		),
	}

	f.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Agent uptime in seconds",
		},
		func() float64 { return time.Since(start).Seconds() },
	)

	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordEvaluation records a finished guard evaluation.
func (m *Metrics) RecordEvaluation(rating, path string, duration time.Duration) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(rating, path).Inc()
	m.EvaluationDuration.Observe(duration.Seconds())
}

// IncPending marks an evaluation as in flight.
func (m *Metrics) IncPending() {
	if m == nil {
		return
	}
	m.PendingEvaluations.Inc()
}

// DecPending marks an in-flight evaluation as finished.
func (m *Metrics) DecPending() {
	if m == nil {
		return
	}
	m.PendingEvaluations.Dec()
}

// RecordTabAction records a terminal action sent to a tab.
func (m *Metrics) RecordTabAction(action, result string) {
	if m == nil {
		return
	}
	m.TabActions.WithLabelValues(action, result).Inc()
}

// RecordDroppedAction records a terminal action that was never applied.
func (m *Metrics) RecordDroppedAction(reason string) {
	if m == nil {
		return
	}
	m.DroppedActions.WithLabelValues(reason).Inc()
}

// RecordRemoteCall records a remote analysis service call.
func (m *Metrics) RecordRemoteCall(endpoint, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RemoteCalls.WithLabelValues(endpoint, status).Inc()
	m.RemoteDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordOverride records a personal block list mutation.
func (m *Metrics) RecordOverride(decision, result string) {
	if m == nil {
		return
	}
	m.Overrides.WithLabelValues(decision, result).Inc()
}

// IncBridgeConnections increments connected bridges.
func (m *Metrics) IncBridgeConnections() {
	if m == nil {
		return
	}
	m.BridgeConnections.Inc()
}

// DecBridgeConnections decrements connected bridges.
func (m *Metrics) DecBridgeConnections() {
	if m == nil {
		return
	}
	m.BridgeConnections.Dec()
}

// RecordBridgeMessage records a bridge frame.
func (m *Metrics) RecordBridgeMessage(direction, kind string) {
	if m == nil {
		return
	}
	m.BridgeMessages.WithLabelValues(direction, kind).Inc()
}
