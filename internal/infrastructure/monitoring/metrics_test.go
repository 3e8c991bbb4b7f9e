package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIsolatedRegistries(t *testing.T) {
	// Two collectors in one process must not collide
	a := NewMetrics()
	b := NewMetrics()

	a.RecordEvaluation("DANGER", "blocklist", 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Evaluations.WithLabelValues("DANGER", "blocklist")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Evaluations.WithLabelValues("DANGER", "blocklist")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordEvaluation("SAFE", "full", time.Millisecond)
	m.RecordRemoteCall("analyze", "ok", time.Millisecond)
	m.RecordTabAction("overlay", "applied")
	m.RecordDroppedAction("superseded")
	m.RecordOverride("block", "ok")
	m.IncPending()
	m.DecPending()
	m.IncBridgeConnections()
	m.DecBridgeConnections()
	m.RecordBridgeMessage("in", "CHECK_URL")
	m.RecordHTTPRequest("GET", "/health", "200", time.Millisecond)
	NewTimer(m, "analyze").Stop("ok")
}

func TestTimerRecordsRemoteCall(t *testing.T) {
	m := NewMetrics()
	NewTimer(m, "check_blocked").Stop("ok")
	NewTimer(m, "check_blocked").Stop("unreachable")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteCalls.WithLabelValues("check_blocked", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteCalls.WithLabelValues("check_blocked", "unreachable")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/health", "200")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "phishguard_http_requests_total"))
	assert.True(t, strings.Contains(body, "phishguard_uptime_seconds"))
}
