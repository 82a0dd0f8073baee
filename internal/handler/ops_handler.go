package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/saigon-transit/service-route/internal/application"
	"github.com/saigon-transit/service-route/internal/telegram"
	"go.uber.org/zap"
)

// OpsHandler exposes health and session statistics for operators.
type OpsHandler struct {
	flows     *application.FlowService
	startedAt time.Time
}

// NewOpsHandler creates an OpsHandler.
func NewOpsHandler(flows *application.FlowService) *OpsHandler {
	return &OpsHandler{flows: flows, startedAt: time.Now().UTC()}
}

// RegisterRoutes registers the ops routes on the given router group.
func (h *OpsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/health", h.Health)
	r.GET("/health/ready", h.Ready)
	r.GET("/api/v1/stats", h.Stats)
}

// Health handles GET /health.
func (h *OpsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "service-route",
	})
}

// Ready handles GET /health/ready. The bot holds no external connections
// that gate readiness; once the process serves HTTP it can take traffic.
func (h *OpsHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Stats handles GET /api/v1/stats.
func (h *OpsHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"active_sessions": h.flows.ActiveSessions(),
		"uptime_seconds":  int(time.Since(h.startedAt).Seconds()),
	})
}

// WebhookHandler receives Bot API updates pushed by Telegram when the bot
// runs in webhook mode instead of long polling.
type WebhookHandler struct {
	dispatcher *Dispatcher
	logger     *zap.Logger
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(dispatcher *Dispatcher, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher, logger: logger}
}

// RegisterRoutes registers the webhook route on the given router group.
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/telegram/webhook", h.Receive)
}

// Receive handles POST /telegram/webhook. Telegram retries non-2xx
// responses, so a malformed body is acknowledged and dropped.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.Warn("malformed webhook update", zap.Error(err))
		c.Status(http.StatusOK)
		return
	}
	h.dispatcher.Dispatch(update)
	c.Status(http.StatusOK)
}
