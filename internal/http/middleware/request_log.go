package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/screenplay-backend/internal/observability"
	"github.com/yungbote/screenplay-backend/internal/platform/ctxutil"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

// quietRoutes are polled by infrastructure; successful hits log at debug.
var quietRoutes = map[string]bool{
	"/healthcheck": true,
	"/metrics":     true,
}

// RequestLogger writes one line per request after the handler chain. The route template is logged
// rather than the raw path so script and component ids stay out of the message key.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := observability.RouteLabel(c.FullPath())
		status := c.Writer.Status()
		fields := append([]interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", c.Writer.Size(),
		}, ctxutil.LogFields(c.Request.Context())...)
		if err := c.Errors.Last(); err != nil {
			fields = append(fields, "error", err.Error())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		case quietRoutes[route]:
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
