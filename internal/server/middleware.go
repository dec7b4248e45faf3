package server

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/changeagent/internal/platform/logger"
)

const (
	headerRequestID = "X-Request-Id"
	headerTraceID   = "X-Trace-Id"
)

// AttachRequestID propagates or mints a request id and echoes the trace id
// when a span is active.
func AttachRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set("request_id", reqID)
		c.Writer.Header().Set(headerRequestID, reqID)

		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			c.Set("trace_id", sc.TraceID().String())
			c.Writer.Header().Set(headerTraceID, sc.TraceID().String())
		}
		c.Next()
	}
}

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if id := c.GetString("request_id"); id != "" {
			fields = append(fields, "request_id", id)
		}
		if id := c.GetString("trace_id"); id != "" {
			fields = append(fields, "trace_id", id)
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:5001",
			"http://localhost:5173",
			"http://127.0.0.1:5001",
			"http://127.0.0.1:5173",
		},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Requested-With", headerRequestID},
	})
}
