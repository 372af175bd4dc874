package middleware

import (
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is echoed back on every response
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"

	loggerKey       = "logger"
	maxRequestIDLen = 64
)

// LoggingMiddleware attaches a request-scoped logger and writes one access line per request.
// Caller-supplied request ids are reused so a trace can span the frontend and the API.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		reqLog := logger.WithContext(logger.Fields{
			RequestIDKey: requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"client_ip":  c.ClientIP(),
		})
		c.Set(loggerKey, reqLog)

		c.Next()

		status := c.Writer.Status()
		fields := logger.Fields{
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if route := c.FullPath(); route != "" {
			fields["route"] = route
		}
		if userID, ok := GetUserID(c); ok {
			fields["user_id"] = userID
		}
		if location := c.Writer.Header().Get("Location"); location != "" {
			fields["redirect"] = location
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case status >= 500:
			reqLog.Error("Request failed", nil, fields)
		case status >= 400:
			reqLog.Warn("Request rejected", fields)
		default:
			reqLog.Info("Request served", fields)
		}
	}
}

// GetLoggerFromContext returns the request logger, or the global one outside a request
func GetLoggerFromContext(c *gin.Context) *logger.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return logger.Get()
}
