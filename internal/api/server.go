package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/quantfolio/quantfolio/internal/db"
	"github.com/quantfolio/quantfolio/internal/recommend"
	"github.com/quantfolio/quantfolio/internal/risk"
	"github.com/quantfolio/quantfolio/internal/sentiment"
)

// Server represents the REST API server
type Server struct {
	router *gin.Engine
	addr   string
	server *http.Server

	db          *db.DB
	riskEngine  *risk.Engine
	riskOptions risk.Options
	synthesizer *recommend.Synthesizer
	insights    *sentiment.Service

	positions       *db.PositionStore
	marketData      *db.MarketDataStore
	articles        *db.ArticleStore
	riskMetrics     *db.RiskMetricsStore
	recommendations *db.RecommendationStore
	sentimentStore  *db.SentimentStore

	enableMetrics bool
}

// Config contains server configuration and wired collaborators
type Config struct {
	Host string
	Port int

	DB          *db.DB
	RiskEngine  *risk.Engine
	RiskOptions risk.Options
	Synthesizer *recommend.Synthesizer
	Insights    *sentiment.Service

	Positions       *db.PositionStore
	MarketData      *db.MarketDataStore
	Articles        *db.ArticleStore
	RiskMetrics     *db.RiskMetricsStore
	Recommendations *db.RecommendationStore
	SentimentStore  *db.SentimentStore

	EnableMetrics bool
}

// NewServer creates a new API server
func NewServer(config Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	server := &Server{
		router:          router,
		addr:            fmt.Sprintf("%s:%d", config.Host, config.Port),
		db:              config.DB,
		riskEngine:      config.RiskEngine,
		riskOptions:     config.RiskOptions,
		synthesizer:     config.Synthesizer,
		insights:        config.Insights,
		positions:       config.Positions,
		marketData:      config.MarketData,
		articles:        config.Articles,
		riskMetrics:     config.RiskMetrics,
		recommendations: config.Recommendations,
		sentimentStore:  config.SentimentStore,
		enableMetrics:   config.EnableMetrics,
	}

	server.setupRoutes()

	return server
}

// Router returns the underlying gin engine (used by handler tests)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("addr", s.addr).Msg("Starting API server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	log.Info().Msg("Stopping API server")

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
	}

	return nil
}

// LoggerMiddleware is a custom logging middleware for Gin
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method

		logEvent := log.Info().
			Str("method", method).
			Str("path", path).
			Str("query", query).
			Int("status", statusCode).
			Dur("latency", latency).
			Str("client_ip", clientIP)

		if len(c.Errors) > 0 {
			logEvent.Str("errors", c.Errors.String())
		}

		logEvent.Msg("API request")
	}
}
