package middleware

import (
	"strconv"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/monitoring"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency per route template, so
// /invoices/1 and /invoices/2 share a series.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		monitoring.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		monitoring.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
