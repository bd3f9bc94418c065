package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketdash/pkg/middleware"
	"marketdash/service"
)

// SetupRouter wires middleware and routes onto a fresh engine.
func SetupRouter(svc *service.Service, limiter *middleware.SlidingWindowLimiter,
	allowedOrigins []string, logger *zap.Logger) *gin.Engine {

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(middleware.RateLimit(limiter, logger))

	h := NewHandler(svc, logger)

	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	stocks := r.Group("/api/stock")
	{
		stocks.GET("/:symbol", h.GetStock)
		stocks.GET("/:symbol/history", h.GetHistory)
	}

	r.GET("/api/news/:symbol", h.GetNews)

	market := r.Group("/api/market")
	{
		market.GET("/overview", h.MarketOverview)
		market.GET("/insights", h.MarketInsights)
	}

	return r
}
