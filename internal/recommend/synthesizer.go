// Package recommend fuses risk metrics, market-wide news sentiment, and
// current holdings into an ordered, append-only stream of recommendation
// records.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfolio/quantfolio/internal/db"
)

// DefaultReportLimit is how many recent sentiment reports a synthesis call
// consumes. Sentiment is market-wide, not user-scoped; relevance filtering
// happens per rule.
const DefaultReportLimit = 5

// HoldingsProvider reads a user's current positions
type HoldingsProvider interface {
	ByUser(ctx context.Context, userID string) ([]db.Position, error)
}

// RiskProvider reads the most recent risk snapshot for a user
type RiskProvider interface {
	LatestByUser(ctx context.Context, userID string) (*db.RiskMetrics, error)
}

// ReportProvider reads the most recent sentiment reports system-wide
type ReportProvider interface {
	Latest(ctx context.Context, limit int) ([]db.SentimentReport, error)
}

// RecommendationSink persists emitted recommendations
type RecommendationSink interface {
	Insert(ctx context.Context, rec *db.Recommendation) error
}

// Synthesizer is the recommendation synthesis engine
type Synthesizer struct {
	holdings    HoldingsProvider
	risk        RiskProvider
	reports     ReportProvider
	sink        RecommendationSink
	reportLimit int
	log         zerolog.Logger
}

// NewSynthesizer creates a recommendation synthesizer
func NewSynthesizer(holdings HoldingsProvider, risk RiskProvider, reports ReportProvider, sink RecommendationSink, logger zerolog.Logger) *Synthesizer {
	return &Synthesizer{
		holdings:    holdings,
		risk:        risk,
		reports:     reports,
		sink:        sink,
		reportLimit: DefaultReportLimit,
		log:         logger,
	}
}

// SetReportLimit overrides how many recent sentiment reports each synthesis
// call consumes. Non-positive values are ignored.
func (s *Synthesizer) SetReportLimit(limit int) {
	if limit > 0 {
		s.reportLimit = limit
	}
}

// Synthesize generates, persists, and returns the recommendation set for a
// user. Emission order is: the risk recommendation (if the latest VaR
// percentage exceeds the alert threshold), then one sentiment recommendation
// per negative report whose headline symbol matches a held symbol (uncapped,
// in report order), then opportunity recommendations for positive reports
// (capped, in report order). The returned order is the persisted insertion
// order.
//
// Rows are inserted one at a time without a transaction; if a write fails,
// the fully computed set is still returned together with a PersistenceError
// stating how many rows committed. Per-call atomicity is not provided.
func (s *Synthesizer) Synthesize(ctx context.Context, userID string) ([]db.Recommendation, error) {
	positions, err := s.holdings.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("holdings provider: user %s: %w", userID, err)
	}

	// No snapshot yet is a valid state: the risk rule simply cannot fire.
	riskMetrics, err := s.risk.LatestByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("risk provider: user %s: %w", userID, err)
		}
		riskMetrics = nil
	}

	reports, err := s.reports.Latest(ctx, s.reportLimit)
	if err != nil {
		return nil, fmt.Errorf("sentiment provider: %w", err)
	}

	held := make(map[string]bool, len(positions))
	for _, p := range positions {
		held[p.Symbol] = true
	}

	now := time.Now().UTC()
	var recs []db.Recommendation

	if riskMetrics != nil && riskMetrics.VaRPercentage > varAlertThreshold {
		recs = append(recs, db.Recommendation{
			UserID: userID,
			Kind:   db.RecommendationRisk,
			Message: fmt.Sprintf(
				"High portfolio risk (%.1f%% VaR). Consider diversifying high-risk positions.",
				riskMetrics.VaRPercentage),
			Confidence: ConfidenceFor(db.RecommendationRisk),
			CreatedAt:  now,
		})
	}

	for _, report := range reports {
		symbol := headlineSymbol(report.Title)
		if symbol == "" || report.Label != db.SentimentNegative || !held[symbol] {
			continue
		}
		recs = append(recs, db.Recommendation{
			UserID: userID,
			Kind:   db.RecommendationSentiment,
			Message: fmt.Sprintf(
				"Consider reviewing position in %s due to negative sentiment: %s",
				symbol, report.Summary),
			Confidence: ConfidenceFor(db.RecommendationSentiment),
			CreatedAt:  now,
		})
	}

	opportunities := 0
	for _, report := range reports {
		if report.Label != db.SentimentPositive || opportunities >= maxOpportunities {
			continue
		}
		symbol := headlineSymbol(report.Title)
		if symbol == "" {
			continue
		}
		recs = append(recs, db.Recommendation{
			UserID: userID,
			Kind:   db.RecommendationOpportunity,
			Message: fmt.Sprintf(
				"Positive sentiment detected for %s: %s - may warrant consideration",
				symbol, report.Summary),
			Confidence: ConfidenceFor(db.RecommendationOpportunity),
			CreatedAt:  now,
		})
		opportunities++
	}

	for i := range recs {
		if err := s.sink.Insert(ctx, &recs[i]); err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Int("committed", i).
				Msg("Failed to persist recommendation batch")
			return recs, &db.PersistenceError{Entity: "recommendations", Committed: i, Err: err}
		}
	}

	s.log.Debug().
		Str("user_id", userID).
		Int("recommendations", len(recs)).
		Msg("Recommendations synthesized")

	return recs, nil
}

// headlineSymbol derives the candidate symbol from a report's source
// headline: the first whitespace-delimited token. This is deliberately the
// literal extraction rule, not an inferred-intent improvement; a headline
// with no token yields no candidate.
func headlineSymbol(title string) string {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
