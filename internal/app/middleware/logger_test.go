package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ak/brewlab/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedRouter(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.Wrap(zap.New(core))

	r := gin.New()
	r.Use(RequestID(), Recovery(log), AccessLog(log))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/styles/:code", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.POST("/analyze", func(c *gin.Context) {
		SetAnalysis(c, "a-42", "recipe_optimization")
		c.Status(http.StatusOK)
	})
	r.GET("/boom", func(c *gin.Context) { panic("strategy blew up") })
	return r, logs
}

func TestAccessLog(t *testing.T) {
	r, logs := observedRouter(t)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Zero(t, logs.Len(), "health checks are not logged")

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/styles/99Z?verbose=1", nil))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "/styles/:code", fields["route"])
	assert.Equal(t, "verbose=1", fields["query"])
	assert.Equal(t, "http", fields["component"])
	assert.NotEmpty(t, fields["request_id"])

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/analyze", nil))
	fields = logs.All()[1].ContextMap()
	assert.Equal(t, "a-42", fields["analysis_id"])
	assert.Equal(t, "recipe_optimization", fields["workflow"])
}

func TestRecovery(t *testing.T) {
	r, logs := observedRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")

	panics := logs.FilterMessage("Panic recovered")
	require.Equal(t, 1, panics.Len())
	assert.Equal(t, "strategy blew up", panics.All()[0].ContextMap()["error"])
}
