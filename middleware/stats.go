package middleware

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/geo-optimizer/backend/logging"
)

// AnalysisURLKey is the context key under which the analyze handler stores
// the normalized page URL for statistics.
const AnalysisURLKey = "analysisURL"

const saveEvery = 100

// StatsMiddleware tracks visitors and analysis requests. At most one
// background save runs at a time.
func StatsMiddleware(stats *logging.Statistics, logger *zap.Logger) gin.HandlerFunc {
	var saving atomic.Bool
	return func(c *gin.Context) {
		start := time.Now()
		stats.TrackVisitor(c.ClientIP())

		c.Next()

		if c.Request.Method == http.MethodPost && c.FullPath() == "/api/analyze" {
			stats.TrackAnalysis(c.GetString(AnalysisURLKey), time.Since(start), c.Writer.Status() >= http.StatusBadRequest)
		}

		if stats.Requests()%saveEvery == 0 && saving.CompareAndSwap(false, true) {
			go func() {
				defer saving.Store(false)
				stats.Prune()
				if err := stats.Save(); err != nil {
					logger.Warn("statistics save failed", zap.Error(err))
				}
			}()
		}
	}
}
