package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geo-optimizer/backend/monitoring"
)

// Metrics records request count and latency by route.
func Metrics(m *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
