package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/saigon-transit/service-route/internal/application"
	"github.com/saigon-transit/service-route/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOpsRouter(flows *application.FlowService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewOpsHandler(flows).RegisterRoutes(&engine.RouterGroup)
	return engine
}

func TestOpsHandler_Health(t *testing.T) {
	flows := application.NewFlowService(
		repository.NewInMemorySessionRepository(),
		fixedGeocoder{}, fixedRouter{}, fixedLinker{},
		application.NopPublisher{}, zap.NewNop(),
	)
	engine := newOpsRouter(flows)

	for _, path := range []string{"/health", "/health/ready"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestOpsHandler_Stats(t *testing.T) {
	sessions := repository.NewInMemorySessionRepository()
	flows := application.NewFlowService(
		sessions,
		fixedGeocoder{}, fixedRouter{}, fixedLinker{},
		application.NopPublisher{}, zap.NewNop(),
	)
	flows.StartFlow(context.Background(), 1)
	flows.StartFlow(context.Background(), 2)

	engine := newOpsRouter(flows)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active_sessions":2`)
}

func TestWebhookHandler_Receive(t *testing.T) {
	d, transport := newTestDispatcher(nil)
	d.start(context.Background())

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewWebhookHandler(d, zap.NewNop()).RegisterRoutes(&engine.RouterGroup)

	body := `{"update_id":1,"message":{"message_id":1,"chat":{"id":7},"text":"/start"}}`
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)

	d.shutdown()
	texts := transport.sentTexts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Xin chào")
}

func TestWebhookHandler_MalformedBodyAcknowledged(t *testing.T) {
	d, transport := newTestDispatcher(nil)
	d.start(context.Background())

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewWebhookHandler(d, zap.NewNop()).RegisterRoutes(&engine.RouterGroup)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader("{broken")))
	assert.Equal(t, http.StatusOK, w.Code)

	d.shutdown()
	assert.Empty(t, transport.sentTexts())
}
