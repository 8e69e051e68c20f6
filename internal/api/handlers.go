package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/quantfolio/quantfolio/internal/db"
	"github.com/quantfolio/quantfolio/internal/metrics"
	"github.com/quantfolio/quantfolio/internal/risk"
	"github.com/quantfolio/quantfolio/internal/sentiment"
)

// handleRoot describes the service
func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "QuantFolio API",
		"status":  "running",
		"time":    time.Now().UTC(),
	})
}

// handleHealth reports service and database health
func (s *Server) handleHealth(c *gin.Context) {
	dbStatus := "healthy"
	if s.db != nil {
		if err := s.db.Ping(c.Request.Context()); err != nil {
			dbStatus = "unhealthy"
			log.Warn().Err(err).Msg("Database health check failed")
		}
	} else {
		dbStatus = "not_configured"
	}

	status := http.StatusOK
	if dbStatus == "unhealthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":    dbStatus,
		"timestamp": time.Now().UTC(),
	})
}

// handleGetPortfolio returns a user's current positions
func (s *Server) handleGetPortfolio(c *gin.Context) {
	userID := c.Param("user_id")

	positions, err := s.positions.ByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if positions == nil {
		positions = []db.Position{}
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":   userID,
		"positions": positions,
	})
}

type addPositionRequest struct {
	Symbol        string  `json:"symbol" binding:"required"`
	Quantity      float64 `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price"`
}

// handleAddPosition appends a position row for a user
func (s *Server) handleAddPosition(c *gin.Context) {
	userID := c.Param("user_id")

	var req addPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity < 0 || req.PurchasePrice < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity and purchase_price must be non-negative"})
		return
	}

	position := db.Position{
		UserID:        userID,
		Symbol:        req.Symbol,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
	}
	if err := s.positions.Insert(c.Request.Context(), &position); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, position)
}

// handleComputeRisk computes and persists a fresh risk snapshot.
// When computation succeeds but persistence fails, both facts are reported:
// the computed metrics are included in the error response.
func (s *Server) handleComputeRisk(c *gin.Context) {
	userID := c.Param("user_id")
	start := time.Now()

	m, err := s.riskEngine.ComputeAndPersist(c.Request.Context(), userID, s.riskOptions)
	metrics.RiskComputationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		var persistErr *db.PersistenceError
		if errors.As(err, &persistErr) {
			metrics.PersistenceFailures.WithLabelValues(persistErr.Entity).Inc()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   persistErr.Error(),
				"metrics": m,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.RiskComputations.Inc()
	c.JSON(http.StatusOK, m)
}

// handleLatestRisk returns the most recent persisted risk snapshot
func (s *Server) handleLatestRisk(c *gin.Context) {
	userID := c.Param("user_id")

	m, err := s.riskMetrics.LatestByUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, m)
}

type stressTestRequest struct {
	Scenarios []float64 `json:"scenarios"`
}

// handleStressTest projects portfolio losses under shock scenarios. The
// scenario set may be overridden in the request body.
func (s *Server) handleStressTest(c *gin.Context) {
	userID := c.Param("user_id")

	// ContentLength is -1 for chunked requests, so the body is always
	// attempted; an empty body just means no override.
	var req stressTestRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scenarios := req.Scenarios
	if len(scenarios) == 0 {
		scenarios = risk.DefaultScenarios
	}

	results, err := s.riskEngine.StressTest(c.Request.Context(), userID, scenarios)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	metrics.StressTests.Inc()

	// JSON objects cannot key on floats; report scenarios in request order.
	out := make([]gin.H, 0, len(scenarios))
	for _, shock := range scenarios {
		out = append(out, gin.H{
			"shock":          shock,
			"projected_loss": results[shock],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":   userID,
		"scenarios": out,
	})
}

// handleSynthesize generates, persists, and returns recommendations
func (s *Server) handleSynthesize(c *gin.Context) {
	userID := c.Param("user_id")

	recs, err := s.synthesizer.Synthesize(c.Request.Context(), userID)
	if err != nil {
		var persistErr *db.PersistenceError
		if errors.As(err, &persistErr) {
			metrics.PersistenceFailures.WithLabelValues(persistErr.Entity).Inc()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":           persistErr.Error(),
				"committed":       persistErr.Committed,
				"recommendations": recs,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for _, rec := range recs {
		metrics.RecommendationsEmitted.WithLabelValues(string(rec.Kind)).Inc()
	}
	if recs == nil {
		recs = []db.Recommendation{}
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":         userID,
		"recommendations": recs,
	})
}

// handleGetRecommendations returns the most recent persisted recommendations
func (s *Server) handleGetRecommendations(c *gin.Context) {
	userID := c.Param("user_id")
	limit := queryInt(c, "limit", 5)

	recs, err := s.recommendations.LatestByUser(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if recs == nil {
		recs = []db.Recommendation{}
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":         userID,
		"recommendations": recs,
	})
}

type addObservationRequest struct {
	Symbol string  `json:"symbol" binding:"required"`
	Price  float64 `json:"price" binding:"required"`
}

// handleAddObservation appends a price observation
func (s *Server) handleAddObservation(c *gin.Context) {
	var req addObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be positive"})
		return
	}

	obs := db.PriceObservation{Symbol: req.Symbol, Price: req.Price}
	if err := s.marketData.Insert(c.Request.Context(), &obs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, obs)
}

// handleGetHistory returns a symbol's recent price history
func (s *Server) handleGetHistory(c *gin.Context) {
	symbol := c.Param("symbol")
	fallback := s.riskOptions.WindowSize
	if fallback == 0 {
		fallback = risk.DefaultWindowSize
	}
	window := queryInt(c, "window", fallback)

	observations, err := s.marketData.History(c.Request.Context(), symbol, window)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":       symbol,
		"observations": observations,
	})
}

type addArticleRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	Source  string `json:"source"`
}

// handleAddArticle appends a news article for later classification
func (s *Server) handleAddArticle(c *gin.Context) {
	var req addArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	article := db.Article{Title: req.Title, Content: req.Content, Source: req.Source}
	if err := s.articles.Insert(c.Request.Context(), &article); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, article)
}

// handleGenerateInsights runs a sentiment ingestion batch
func (s *Server) handleGenerateInsights(c *gin.Context) {
	limit := queryInt(c, "limit", sentiment.DefaultReportLimit)

	reports, err := s.insights.GenerateReports(c.Request.Context(), limit)
	if err != nil {
		var persistErr *db.PersistenceError
		if errors.As(err, &persistErr) {
			metrics.PersistenceFailures.WithLabelValues(persistErr.Entity).Inc()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     persistErr.Error(),
				"committed": persistErr.Committed,
				"reports":   reports,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for _, report := range reports {
		metrics.SentimentReports.WithLabelValues(report.Label).Inc()
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// handleGetInsights returns the most recent sentiment reports
func (s *Server) handleGetInsights(c *gin.Context) {
	limit := queryInt(c, "limit", sentiment.DefaultReportLimit)

	reports, err := s.sentimentStore.Latest(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if reports == nil {
		reports = []db.SentimentReport{}
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// queryInt parses a positive integer query parameter with a fallback
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
