package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kingrain94/clinic-access-core/internal/metrics"
	"github.com/kingrain94/clinic-access-core/pkg/logger"
)

// Observe logs every request and records its latency. Routes are labelled
// by their pattern so ids do not blow up metric cardinality.
func Observe(log *logger.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.HTTPRequest(c.Request.Method, route, status, elapsed)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("ip", c.ClientIP()),
		}
		if status >= 500 {
			log.Warn("Request failed", fields...)
			return
		}
		log.Debug("Request served", fields...)
	}
}
