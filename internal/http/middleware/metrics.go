package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/screenplay-backend/internal/observability"
)

// Inflight tracks concurrent requests. Per-route counters and latency come from the gin prometheus
// middleware registered by the router.
func Inflight(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		m.ApiInflightInc()
		defer m.ApiInflightDec()
		c.Next()
	}
}
