package middleware

import (
	"net/http"
	"time"

	apperrors "github.com/ak/brewlab/internal/pkg/errors"
	"github.com/ak/brewlab/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	analysisIDKey = "analysis_id"
	workflowKey   = "workflow"
)

// quietPaths are health and scrape endpoints that would drown the access log
var quietPaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/metrics": true,
}

// SetAnalysis tags the request with the analysis run it produced so the
// access log line can be joined with the engine's own log lines.
func SetAnalysis(c *gin.Context, analysisID, workflow string) {
	c.Set(analysisIDKey, analysisID)
	c.Set(workflowKey, workflow)
}

// AccessLog writes one line per request. Routes are logged by template so
// ingredient ids do not explode cardinality in log search.
func AccessLog(log *logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		if quietPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.Int("body_size", c.Writer.Size()),
			zap.String("request_id", GetRequestID(c)),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if userID := GetUserID(c); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if id := c.GetString(analysisIDKey); id != "" {
			fields = append(fields, zap.String("analysis_id", id), zap.String("workflow", c.GetString(workflowKey)))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("Server error", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("Client error", fields...)
		default:
			log.Info("Request completed", fields...)
		}
	}
}

// Recovery turns a handler panic into the standard error envelope
func Recovery(log *logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("route", c.FullPath()),
					zap.String("method", c.Request.Method),
					zap.String("request_id", GetRequestID(c)),
					zap.Stack("stack"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success":    false,
					"error":      apperrors.Internal("An internal error occurred"),
					"request_id": GetRequestID(c),
				})
			}
		}()
		c.Next()
	}
}
