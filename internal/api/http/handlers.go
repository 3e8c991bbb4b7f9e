package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/api/middleware"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/blockpage"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/messaging"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/utils"
)

// Router handles extension messages.
type Router interface {
	Handle(ctx context.Context, msg messaging.Message) messaging.Response
}

// Probe reports the state of a dependency for /health.
type Probe func() any

// Handlers contains all HTTP handlers
type Handlers struct {
	router    Router
	validator *utils.JSONSizeValidator
	probes    map[string]Probe
	version   string
	logger    *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(router Router, version string, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		router:    router,
		validator: utils.DefaultJSONValidator(),
		probes:    make(map[string]Probe),
		version:   version,
		logger:    logger.Component("http"),
	}
}

// AddProbe registers a dependency shown by Health.
func (h *Handlers) AddProbe(name string, p Probe) {
	h.probes[name] = p
}

// Health handles the health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"service": "phishguard-agent",
		"version": h.version,
	}
	for name, p := range h.probes {
		body[name] = p()
	}
	c.JSON(http.StatusOK, body)
}

// Message handles POST /v1/messages, the request/response alternative to the
// websocket bridge. Routed messages always answer 200 with the envelope;
// only undecodable bodies are rejected.
func (h *Handlers) Message(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, int64(h.validator.MaxSize())))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, messaging.Response{Error: messaging.CodeInvalidInput})
			return
		}
		c.JSON(http.StatusBadRequest, messaging.Response{Error: messaging.CodeInvalidInput})
		return
	}
	if err := h.validator.ValidateJSON(body); err != nil {
		h.logger.Debug("rejected message body",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, messaging.Response{Error: messaging.CodeInvalidInput})
		return
	}

	var msg messaging.Message
	if err := sonic.Unmarshal(body, &msg); err != nil {
		c.JSON(http.StatusBadRequest, messaging.Response{Error: messaging.CodeInvalidInput})
		return
	}
	if msg.Kind == "" {
		c.JSON(http.StatusBadRequest, messaging.Response{ID: msg.ID, Error: messaging.CodeUnknownKind})
		return
	}

	c.JSON(http.StatusOK, h.router.Handle(c.Request.Context(), msg))
}

// BlockedPage renders the block page from its query parameters.
func (h *Handlers) BlockedPage(c *gin.Context) {
	st, err := blockpage.FromQuery(c.Request.URL.Query())
	if err != nil {
		c.String(http.StatusBadRequest, "missing blocked url")
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Header("Cache-Control", "no-store")
	c.Header("X-Frame-Options", "DENY")
	c.Status(http.StatusOK)
	if err := blockpage.Render(c.Writer, st); err != nil {
		h.logger.Error("block page render failed", zap.Error(err))
	}
}
