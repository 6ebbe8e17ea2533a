package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wso2/health-consent-api/internal/metrics"
	"github.com/wso2/health-consent-api/internal/utils"
)

// RequestLogger logs each request through logrus and records HTTP metrics.
func RequestLogger(logger *logrus.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.ObserveHTTPRequest(c.Request.Method, route, strconv.Itoa(status), latency)

		entry := logger.WithFields(logrus.Fields{
			"correlation_id": utils.GetCorrelationIDFromContext(c),
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"status":         status,
			"latency_ms":     latency.Milliseconds(),
			"client_ip":      c.ClientIP(),
		})
		if identity := utils.GetIdentityFromContext(c); identity != nil {
			entry = entry.WithField("actor_id", identity.ActorID)
		}

		switch {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request completed")
		}
	}
}
