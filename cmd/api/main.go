package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/quantfolio/quantfolio/internal/api"
	"github.com/quantfolio/quantfolio/internal/config"
	"github.com/quantfolio/quantfolio/internal/db"
	"github.com/quantfolio/quantfolio/internal/market"
	"github.com/quantfolio/quantfolio/internal/recommend"
	"github.com/quantfolio/quantfolio/internal/risk"
	"github.com/quantfolio/quantfolio/internal/sentiment"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	config.InitLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	log.Info().
		Str("name", cfg.App.Name).
		Str("version", cfg.App.Version).
		Str("environment", cfg.App.Environment).
		Msg("Starting QuantFolio API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	database, err := db.New(ctx, cfg.Database.GetDSN(), int32(cfg.Database.PoolSize))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database schema")
	}

	// Redis is an optional latest-price cache; the service runs without it.
	var priceCache *market.Cache
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetRedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without price cache")
		} else {
			priceCache = market.NewCache(client, cfg.Redis.GetCacheTTL())
			log.Info().Str("addr", cfg.Redis.GetRedisAddr()).Msg("Price cache enabled")
		}
	}

	pool := database.Pool()
	positionStore := db.NewPositionStore(pool)
	marketDataStore := db.NewMarketDataStore(pool)
	articleStore := db.NewArticleStore(pool)
	sentimentStore := db.NewSentimentStore(pool)
	riskMetricsStore := db.NewRiskMetricsStore(pool)
	recommendationStore := db.NewRecommendationStore(pool)

	priceAccessor := market.NewService(marketDataStore, priceCache, config.NewLogger("market"))
	riskEngine := risk.NewEngine(positionStore, priceAccessor, riskMetricsStore, config.NewLogger("risk"))
	riskOptions := risk.Options{
		ConfidenceLevel: cfg.Engine.ConfidenceLevel,
		WindowSize:      cfg.Engine.WindowSize,
	}
	synthesizer := recommend.NewSynthesizer(
		positionStore, riskMetricsStore, sentimentStore, recommendationStore,
		config.NewLogger("recommend"),
	)
	synthesizer.SetReportLimit(cfg.Engine.SentimentReportLimit)
	insights := sentiment.NewService(
		articleStore, sentimentStore, sentiment.NewClassifier(nil),
		config.NewLogger("sentiment"),
	)

	server := api.NewServer(api.Config{
		Host:            cfg.API.Host,
		Port:            cfg.API.Port,
		DB:              database,
		RiskEngine:      riskEngine,
		RiskOptions:     riskOptions,
		Synthesizer:     synthesizer,
		Insights:        insights,
		Positions:       positionStore,
		MarketData:      marketDataStore,
		Articles:        articleStore,
		RiskMetrics:     riskMetricsStore,
		Recommendations: recommendationStore,
		SentimentStore:  sentimentStore,
		EnableMetrics:   cfg.Monitoring.EnableMetrics,
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	select {
	case err := <-serverErrors:
		log.Error().Err(err).Msg("Server error")
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to stop server gracefully")
	}

	log.Info().Msg("Shutdown complete")
}
