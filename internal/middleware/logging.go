package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ice-lfernandes/spring-boot-arconia/internal/logger"
)

// TraceIDHeader carries the request's trace id in both directions.
const TraceIDHeader = "X-Trace-ID"

const traceIDKey = "traceID"

// TraceID returns the trace id assigned by RequestLogger.
func TraceID(c *gin.Context) string {
	return c.GetString(traceIDKey)
}

// RequestLogger logs one line per request. An incoming X-Trace-ID is reused;
// otherwise a new one is generated and echoed back.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set(traceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		c.Next()

		fields := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
			"trace_id":    traceID,
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("http request", fields)
		case status >= 400:
			logger.Warn("http request", fields)
		default:
			logger.Info("http request", fields)
		}
	}
}
