package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/guard"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/messaging"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/id"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/types"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/utils"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var (
	// ErrCommandTimeout means the extension did not ack a command in time.
	ErrCommandTimeout = errors.New("bridge command timed out")
	// ErrCommandFailed means the extension acked a command with an error.
	ErrCommandFailed = errors.New("bridge command failed")
)

// Router handles messages received from the extension.
type Router interface {
	Handle(ctx context.Context, msg messaging.Message) messaging.Response
}

// Options configures a Hub.
type Options struct {
	CommandTimeout time.Duration
	AllowedOrigins []string
	Metrics        *monitoring.Metrics
	Logger         *logging.Logger
}

// Hub owns the websocket connection to the extension and implements
// guard.Tabs on top of it. A newer connection replaces the older one.
type Hub struct {
	opts     Options
	upgrader websocket.Upgrader
	metrics  *monitoring.Metrics
	logger   *logging.Logger

	mu   sync.RWMutex
	conn *connection
}

// New creates a hub.
func New(opts Options) *Hub {
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = 2 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	h := &Hub{
		opts:    opts,
		metrics: opts.Metrics,
		logger:  opts.Logger.Component("bridge"),
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

// checkOrigin admits native clients, which send no Origin, and otherwise
// only the configured origins or, when none are configured, browser
// extensions. A web page must never take over the extension's connection.
func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(h.opts.AllowedOrigins) == 0 {
		return utils.IsExtensionOrigin(origin)
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if strings.EqualFold(strings.TrimRight(allowed, "/"), origin) {
			return true
		}
	}
	return false
}

// Connected reports whether an extension is attached.
func (h *Hub) Connected() bool {
	return h.current() != nil
}

func (h *Hub) current() *connection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.conn
}

// Handler returns the gin handler that upgrades /ws and serves router.
func (h *Hub) Handler(router Router) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		h.serve(c.Request.Context(), ws, router)
	}
}

func (h *Hub) serve(ctx context.Context, ws *websocket.Conn, router Router) {
	conn := newConnection(ws)
	h.attach(conn)
	h.metrics.IncBridgeConnections()
	h.logger.Info("extension connected", zap.String("remote", ws.RemoteAddr().String()))

	var wg sync.WaitGroup
	defer func() {
		h.detach(conn)
		conn.close()
		wg.Wait()
		h.metrics.DecBridgeConnections()
		h.logger.Info("extension disconnected")
	}()

	go conn.keepalive()

	_ = conn.send(map[string]any{
		"type":    FrameSystem,
		"message": "connected to phishguard agent",
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var in inbound
		if err := sonic.Unmarshal(data, &in); err != nil {
			h.logger.Debug("undecodable frame", zap.Error(err))
			_ = conn.send(responseFrame{
				Type:     FrameResponse,
				Response: messaging.Response{OK: false, Error: messaging.CodeInvalidInput},
			})
			continue
		}

		if in.Type == FrameAck {
			conn.resolve(in.ID, ack{OK: in.OK, Error: in.Error})
			continue
		}

		h.metrics.RecordBridgeMessage("in", string(in.Kind))
		wg.Add(1)
		go func(msg messaging.Message) {
			defer wg.Done()
			resp := router.Handle(ctx, msg)
			if msg.ID == "" {
				return
			}
			if err := conn.send(responseFrame{Type: FrameResponse, Response: resp}); err != nil {
				h.logger.Debug("response not delivered", zap.String("id", msg.ID), zap.Error(err))
			}
		}(in.Message)
	}
}

func (h *Hub) attach(conn *connection) {
	h.mu.Lock()
	old := h.conn
	h.conn = conn
	h.mu.Unlock()
	if old != nil {
		h.logger.Info("replacing extension connection")
		old.close()
	}
}

func (h *Hub) detach(conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn == conn {
		h.conn = nil
	}
}

// Close drops the current connection.
func (h *Hub) Close() error {
	h.mu.Lock()
	conn := h.conn
	h.conn = nil
	h.mu.Unlock()
	if conn != nil {
		conn.close()
	}
	return nil
}

// ShowOverlay implements guard.Tabs.
func (h *Hub) ShowOverlay(ctx context.Context, tab types.TabID, overlay types.Overlay) error {
	return h.command(ctx, commandFrame{Command: CommandShowOverlay, TabID: tab, Overlay: &overlay})
}

// CloseTab implements guard.Tabs.
func (h *Hub) CloseTab(ctx context.Context, tab types.TabID) error {
	return h.command(ctx, commandFrame{Command: CommandCloseTab, TabID: tab})
}

// RedirectTab implements guard.Tabs.
func (h *Hub) RedirectTab(ctx context.Context, tab types.TabID, target string) error {
	return h.command(ctx, commandFrame{Command: CommandRedirectTab, TabID: tab, URL: target})
}

// command sends cmd and waits for its ack. Without a connection there is no
// tab to act on, so that case reports guard.ErrTabGone.
func (h *Hub) command(ctx context.Context, cmd commandFrame) error {
	conn := h.current()
	if conn == nil {
		return fmt.Errorf("%s tab %d: %w", cmd.Command, cmd.TabID, guard.ErrTabGone)
	}

	cmd.Type = FrameCommand
	cmd.ID = id.NewCommandID().String()
	acks := conn.expect(cmd.ID)
	defer conn.forget(cmd.ID)

	ctx, cancel := context.WithTimeout(ctx, h.opts.CommandTimeout)
	defer cancel()

	if err := conn.send(cmd); err != nil {
		return fmt.Errorf("%s tab %d: %w", cmd.Command, cmd.TabID, guard.ErrTabGone)
	}
	h.metrics.RecordBridgeMessage("out", cmd.Command)

	select {
	case a := <-acks:
		switch {
		case a.OK:
			return nil
		case a.Error == AckTabGone:
			return fmt.Errorf("%s tab %d: %w", cmd.Command, cmd.TabID, guard.ErrTabGone)
		default:
			return fmt.Errorf("%s tab %d: %w: %s", cmd.Command, cmd.TabID, ErrCommandFailed, a.Error)
		}
	case <-conn.done:
		return fmt.Errorf("%s tab %d: %w", cmd.Command, cmd.TabID, guard.ErrTabGone)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s tab %d: %w", cmd.Command, cmd.TabID, ErrCommandTimeout)
		}
		return ctx.Err()
	}
}

var _ guard.Tabs = (*Hub)(nil)

// connection wraps one websocket. gorilla allows one concurrent writer, so
// writes are serialized.
type connection struct {
	ws      *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan ack

	done      chan struct{}
	closeOnce sync.Once
}

func newConnection(ws *websocket.Conn) *connection {
	ws.SetReadLimit(int64(utils.MaxMessageSize))
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &connection{
		ws:      ws,
		pending: make(map[string]chan ack),
		done:    make(chan struct{}),
	}
}

func (c *connection) send(v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *connection) keepalive() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *connection) expect(cmdID string) <-chan ack {
	ch := make(chan ack, 1)
	c.mu.Lock()
	c.pending[cmdID] = ch
	c.mu.Unlock()
	return ch
}

func (c *connection) forget(cmdID string) {
	c.mu.Lock()
	delete(c.pending, cmdID)
	c.mu.Unlock()
}

// resolve delivers an ack. Acks for unknown or timed out commands are
// dropped.
func (c *connection) resolve(cmdID string, a ack) {
	c.mu.Lock()
	ch, ok := c.pending[cmdID]
	delete(c.pending, cmdID)
	c.mu.Unlock()
	if ok {
		ch <- a
	}
}

func (c *connection) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}
