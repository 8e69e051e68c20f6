package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// schema holds the table definitions, applied idempotently on startup.
// Source tables (positions, market_data, news_articles) are append-only;
// result tables (sentiment_reports, risk_metrics, recommendations) are
// append-only from the engine's perspective and never mutated in place.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS positions (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		quantity DOUBLE PRECISION NOT NULL CHECK (quantity >= 0),
		purchase_price DOUBLE PRECISION NOT NULL CHECK (purchase_price >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_positions_user ON positions (user_id)`,
	`CREATE TABLE IF NOT EXISTS market_data (
		id UUID PRIMARY KEY,
		symbol TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL CHECK (price > 0),
		observed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_market_data_symbol_time ON market_data (symbol, observed_at DESC)`,
	`CREATE TABLE IF NOT EXISTS news_articles (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		published_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sentiment_reports (
		id UUID PRIMARY KEY,
		article_id UUID NOT NULL REFERENCES news_articles(id),
		summary TEXT NOT NULL,
		polarity DOUBLE PRECISION NOT NULL CHECK (polarity >= -1 AND polarity <= 1),
		label TEXT NOT NULL CHECK (label IN ('positive', 'neutral', 'negative')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS risk_metrics (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		total_portfolio_value DOUBLE PRECISION NOT NULL,
		value_at_risk_95 DOUBLE PRECISION NOT NULL CHECK (value_at_risk_95 >= 0),
		var_percentage DOUBLE PRECISION NOT NULL CHECK (var_percentage >= 0),
		position_count INTEGER NOT NULL CHECK (position_count >= 0),
		as_of TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_risk_metrics_user_time ON risk_metrics (user_id, as_of DESC)`,
	`CREATE TABLE IF NOT EXISTS recommendations (
		id UUID PRIMARY KEY,
		seq BIGSERIAL,
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('risk', 'sentiment', 'opportunity')),
		message TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL CHECK (confidence > 0 AND confidence <= 1),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_user_time ON recommendations (user_id, created_at DESC, seq DESC)`,
}

// Migrate creates the schema if it does not exist
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	log.Info().Int("statements", len(schema)).Msg("Database schema applied")
	return nil
}
