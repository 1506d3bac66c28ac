package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rentscope/geointel/internal/infrastructure/monitoring/prometheus"
)

// Metrics records per-request counters and latency.  The route template
// (c.FullPath) is used instead of the raw URL to keep label cardinality
// bounded.
func Metrics(m *prometheus.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.HTTPInFlight().Inc()
		c.Next()
		m.HTTPInFlight().Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
