package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/qs3c/crew_server/internal/pkg/metrics"
)

const (
	HeaderRequestID = "X-Request-ID"
	RequestIDKey    = "requestID"
	LoggerKey       = "logger"
)

// RequestID 透传或生成请求 ID（UUID v7，按时间有序）
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			if id, err := uuid.NewV7(); err == nil {
				requestID = id.String()
			} else {
				requestID = uuid.NewString()
			}
		}

		c.Set(RequestIDKey, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// Logger 记录请求日志和耗时指标，并把带 request_id 的日志放进上下文
func Logger(log logrus.FieldLogger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		entry := log.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"ip":         c.ClientIP(),
		})
		c.Set(LoggerKey, entry)

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(latency.Seconds())

		fields := logrus.Fields{
			"status":     status,
			"latency_ms": latency.Milliseconds(),
		}
		if userID, ok := GetUserID(c); ok {
			fields["user_id"] = userID
		}

		done := entry.WithFields(fields)
		switch {
		case status >= 500:
			done.Error("http request finished")
		case status >= 400:
			done.Warn("http request finished")
		default:
			done.Info("http request finished")
		}
	}
}

// GetLogger 取出请求日志，没有时返回 fallback
func GetLogger(c *gin.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if v, ok := c.Get(LoggerKey); ok {
		if entry, ok := v.(logrus.FieldLogger); ok {
			return entry
		}
	}
	return fallback
}
