package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/blockpage"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/messaging"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/utils"
)

type stubRouter struct {
	got []messaging.Message
}

func (s *stubRouter) Handle(_ context.Context, msg messaging.Message) messaging.Response {
	s.got = append(s.got, msg)
	return messaging.Response{ID: msg.ID, OK: true, Data: "handled"}
}

func newEngine(router Router) (*gin.Engine, *Handlers) {
	gin.SetMode(gin.TestMode)
	h := NewHandlers(router, "test", nil)
	r := gin.New()
	r.GET("/health", h.Health)
	r.POST("/v1/messages", h.Message)
	r.GET("/blocked", h.BlockedPage)
	return r, h
}

func do(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, strings.NewReader(body)))
	return w
}

func TestHealth(t *testing.T) {
	r, h := newEngine(&stubRouter{})
	h.AddProbe("bridge", func() any { return gin.H{"connected": false} })

	w := do(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, map[string]any{"connected": false}, body["bridge"])
}

func TestMessageRouted(t *testing.T) {
	router := &stubRouter{}
	r, _ := newEngine(router)

	w := do(r, http.MethodPost, "/v1/messages", `{"id":"a","kind":"CHECK_URL","tab_id":7,"url":"http://evil.example/login"}`)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, router.got, 1)
	got := router.got[0]
	assert.Equal(t, messaging.KindCheckURL, got.Kind)
	require.NotNil(t, got.TabID)
	assert.EqualValues(t, 7, *got.TabID)

	var resp messaging.Response
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "a", resp.ID)
	assert.True(t, resp.OK)
}

func TestMessageRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"not json", `{"kind":`, http.StatusBadRequest},
		{"no kind", `{"id":"x"}`, http.StatusBadRequest},
		{"too large", `{"kind":"CHECK_URL","url":"` + strings.Repeat("a", utils.MaxMessageSize) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := &stubRouter{}
			r, _ := newEngine(router)
			w := do(r, http.MethodPost, "/v1/messages", tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.Empty(t, router.got)
		})
	}
}

func TestBlockedPage(t *testing.T) {
	r, _ := newEngine(&stubRouter{})
	score := 91.0
	target, err := blockpage.BuildURL("/blocked", blockpage.State{
		Reason: "Phishing kit detected. More details follow.",
		URL:    "http://evil.example/login",
		Score:  &score,
	})
	require.NoError(t, err)

	w := do(r, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, "http://evil.example/login", strings.TrimSpace(doc.Find("#blocked-url").Text()))
}

func TestBlockedPageWithoutURL(t *testing.T) {
	r, _ := newEngine(&stubRouter{})
	w := do(r, http.MethodGet, "/blocked?reason=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
