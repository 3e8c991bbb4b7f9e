package bridge

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/guard"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/messaging"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/types"
)

type echoRouter struct {
	got chan messaging.Message
}

func (r *echoRouter) Handle(_ context.Context, msg messaging.Message) messaging.Response {
	r.got <- msg
	return messaging.Response{ID: msg.ID, OK: true, Data: string(msg.Kind)}
}

type frame struct {
	Type    string         `json:"type"`
	ID      string         `json:"id"`
	OK      bool           `json:"ok"`
	Error   string         `json:"error"`
	Data    any            `json:"data"`
	Command string         `json:"command"`
	TabID   types.TabID    `json:"tab_id"`
	Overlay *types.Overlay `json:"overlay"`
	URL     string         `json:"url"`
}

func setup(t *testing.T, opts Options) (*Hub, *echoRouter, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := New(opts)
	router := &echoRouter{got: make(chan messaging.Message, 8)}
	engine := gin.New()
	engine.GET("/ws", hub.Handler(router))

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	t.Cleanup(func() { _ = hub.Close() })
	return hub, router, srv
}

func dial(t *testing.T, hub *Hub, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var hello frame
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, FrameSystem, hello.Type)
	require.Eventually(t, hub.Connected, time.Second, 5*time.Millisecond)
	return conn
}

func TestMessageRoundTrip(t *testing.T) {
	hub, router, srv := setup(t, Options{})
	conn := dial(t, hub, srv, nil)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"id": "m1", "kind": messaging.KindGetClientID,
	}))

	got := <-router.got
	assert.Equal(t, messaging.KindGetClientID, got.Kind)

	var resp frame
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, FrameResponse, resp.Type)
	assert.Equal(t, "m1", resp.ID)
	assert.True(t, resp.OK)
	assert.Equal(t, string(messaging.KindGetClientID), resp.Data)
}

func TestMessageWithoutIDGetsNoResponse(t *testing.T) {
	hub, router, srv := setup(t, Options{})
	conn := dial(t, hub, srv, nil)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"kind": messaging.KindTabClosed, "tab_id": 4,
	}))
	got := <-router.got
	require.NotNil(t, got.TabID)
	assert.Equal(t, types.TabID(4), *got.TabID)

	_ = conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var resp frame
	assert.Error(t, conn.ReadJSON(&resp))
}

// answer reads one command and replies with the given ack.
func answer(t *testing.T, conn *websocket.Conn, ok bool, ackErr string) <-chan frame {
	t.Helper()
	seen := make(chan frame, 1)
	go func() {
		var cmd frame
		if err := conn.ReadJSON(&cmd); err != nil {
			close(seen)
			return
		}
		seen <- cmd
		_ = conn.WriteJSON(map[string]any{"type": FrameAck, "id": cmd.ID, "ok": ok, "error": ackErr})
	}()
	return seen
}

func TestCommandsAreAcked(t *testing.T) {
	hub, _, srv := setup(t, Options{})
	conn := dial(t, hub, srv, nil)

	seen := answer(t, conn, true, "")
	overlay := types.Overlay{Rating: types.RatingDanger, Reason: "phishing"}
	require.NoError(t, hub.ShowOverlay(context.Background(), 7, overlay))

	cmd := <-seen
	assert.Equal(t, FrameCommand, cmd.Type)
	assert.Equal(t, CommandShowOverlay, cmd.Command)
	assert.Equal(t, types.TabID(7), cmd.TabID)
	require.NotNil(t, cmd.Overlay)
	assert.Equal(t, overlay, *cmd.Overlay)
	assert.True(t, strings.HasPrefix(cmd.ID, "cmd_"))

	seen = answer(t, conn, true, "")
	require.NoError(t, hub.RedirectTab(context.Background(), 7, "http://127.0.0.1/blocked?url=x"))
	cmd = <-seen
	assert.Equal(t, CommandRedirectTab, cmd.Command)
	assert.Equal(t, "http://127.0.0.1/blocked?url=x", cmd.URL)
}

func TestTabGoneAck(t *testing.T) {
	hub, _, srv := setup(t, Options{})
	conn := dial(t, hub, srv, nil)

	answer(t, conn, false, AckTabGone)
	err := hub.CloseTab(context.Background(), 9)
	assert.ErrorIs(t, err, guard.ErrTabGone)
}

func TestCommandFailureAck(t *testing.T) {
	hub, _, srv := setup(t, Options{})
	conn := dial(t, hub, srv, nil)

	answer(t, conn, false, "permission denied")
	err := hub.CloseTab(context.Background(), 9)
	assert.ErrorIs(t, err, ErrCommandFailed)
	assert.False(t, errors.Is(err, guard.ErrTabGone))
}

func TestNoConnectionIsTabGone(t *testing.T) {
	hub := New(Options{})
	err := hub.ShowOverlay(context.Background(), 1, types.Overlay{Rating: types.RatingWarn})
	assert.ErrorIs(t, err, guard.ErrTabGone)
}

func TestCommandTimeout(t *testing.T) {
	hub, _, srv := setup(t, Options{CommandTimeout: 50 * time.Millisecond})
	conn := dial(t, hub, srv, nil)

	// Read the command but never ack it.
	go func() {
		var cmd frame
		_ = conn.ReadJSON(&cmd)
	}()

	err := hub.CloseTab(context.Background(), 2)
	assert.ErrorIs(t, err, ErrCommandTimeout)
}

func TestOriginCheck(t *testing.T) {
	hub, _, srv := setup(t, Options{AllowedOrigins: []string{"chrome-extension://abc"}})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	dial(t, hub, srv, http.Header{"Origin": {"chrome-extension://abc"}})
}

func TestDefaultOriginPolicy(t *testing.T) {
	hub, _, srv := setup(t, Options{})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	ext := dial(t, hub, srv, http.Header{"Origin": {"chrome-extension://abcdefghijklmnop"}})

	for _, origin := range []string{"https://phish.example", "http://127.0.0.1:8765", "null"} {
		_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {origin}})
		require.Error(t, err, "origin %q", origin)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, "origin %q", origin)
	}

	// the rejected pages did not displace the extension
	seen := answer(t, ext, true, "")
	require.NoError(t, hub.CloseTab(context.Background(), 5))
	assert.Equal(t, CommandCloseTab, (<-seen).Command)

	dial(t, hub, srv, http.Header{"Origin": {"moz-extension://6f1c2d3e"}})
}

func TestNewerConnectionReplacesOlder(t *testing.T) {
	hub, _, srv := setup(t, Options{})
	first := dial(t, hub, srv, nil)
	second := dial(t, hub, srv, nil)

	_ = first.SetReadDeadline(time.Now().Add(time.Second))
	var f frame
	assert.Error(t, first.ReadJSON(&f), "old connection should be closed")

	seen := answer(t, second, true, "")
	require.NoError(t, hub.CloseTab(context.Background(), 1))
	assert.Equal(t, CommandCloseTab, (<-seen).Command)
}
