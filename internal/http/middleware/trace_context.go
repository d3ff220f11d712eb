package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/screenplay-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxCorrelationIDLen = 128
)

// AttachTraceContext stamps every request with a request id and a trace id and echoes both back. An
// active span's trace id takes precedence over the client header so logs match exported traces.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		td := &ctxutil.TraceData{
			RequestID: correlationID(c.GetHeader(headerRequestID)),
			TraceID:   spanTraceID(ctx),
		}
		if td.TraceID == "" {
			td.TraceID = correlationID(c.GetHeader(headerTraceID))
		}
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(ctx, td))

		h := c.Writer.Header()
		h.Set(headerTraceID, td.TraceID)
		h.Set(headerRequestID, td.RequestID)
		c.Next()
	}
}

func spanTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// correlationID keeps a caller-supplied id when it is short printable ASCII and mints one otherwise.
func correlationID(in string) string {
	in = strings.TrimSpace(in)
	if in == "" || len(in) > maxCorrelationIDLen {
		return uuid.NewString()
	}
	if strings.IndexFunc(in, func(r rune) bool { return r < '!' || r > '~' }) >= 0 {
		return uuid.NewString()
	}
	return in
}
