package api

import (
	"github.com/gin-gonic/gin"

	"github.com/geo-optimizer/backend/middleware"
)

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()

	r.Use(middleware.ErrorHandler(s.deps.Logger))
	r.Use(middleware.AccessLog(s.deps.Logger))
	if s.deps.Metrics != nil {
		r.Use(middleware.Metrics(s.deps.Metrics))
		r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}
	r.Use(middleware.CORS())

	api := r.Group("/api")
	if s.deps.Statistics != nil {
		api.Use(middleware.StatsMiddleware(s.deps.Statistics, s.deps.Logger))
	}
	api.GET("/health", s.handleHealth)
	api.GET("/statistics", s.handleStatistics)

	limited := api.Group("")
	if s.deps.RateLimiter != nil {
		limited.Use(s.deps.RateLimiter.RateLimit())
	}
	limited.POST("/analyze", s.handleAnalyze)
	limited.POST("/send-report", s.handleSendReport)

	return r
}
