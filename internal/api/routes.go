package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		users := v1.Group("/users/:user_id")
		{
			users.GET("/portfolio", s.handleGetPortfolio)
			users.POST("/portfolio", s.handleAddPosition)

			users.POST("/risk", s.handleComputeRisk)
			users.GET("/risk/latest", s.handleLatestRisk)
			users.POST("/stress", s.handleStressTest)

			users.POST("/recommendations", s.handleSynthesize)
			users.GET("/recommendations", s.handleGetRecommendations)
		}

		v1.POST("/market-data", s.handleAddObservation)
		v1.GET("/market-data/:symbol", s.handleGetHistory)

		v1.POST("/articles", s.handleAddArticle)

		v1.POST("/insights", s.handleGenerateInsights)
		v1.GET("/insights", s.handleGetInsights)
	}

	s.router.GET("/health", s.handleHealth)
	s.router.GET("/", s.handleRoot)

	if s.enableMetrics {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}
