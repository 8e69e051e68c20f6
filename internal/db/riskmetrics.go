package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RiskMetrics is one portfolio risk snapshot for a user. Snapshots are
// retained for audit and never mutated; the logical "current" snapshot is the
// most recent row per user.
//
// Invariant: VaRPercentage == 100 * ValueAtRisk95 / TotalPortfolioValue when
// TotalPortfolioValue > 0, else 0.
type RiskMetrics struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	UserID              string    `db:"user_id" json:"user_id"`
	TotalPortfolioValue float64   `db:"total_portfolio_value" json:"total_portfolio_value"`
	ValueAtRisk95       float64   `db:"value_at_risk_95" json:"value_at_risk_95"`
	VaRPercentage       float64   `db:"var_percentage" json:"var_percentage"`
	PositionCount       int       `db:"position_count" json:"position_count"`
	AsOf                time.Time `db:"as_of" json:"as_of"`
}

// RiskMetricsStore provides read/append access to risk metric snapshots
type RiskMetricsStore struct {
	q Querier
}

// NewRiskMetricsStore creates a risk metrics store
func NewRiskMetricsStore(q Querier) *RiskMetricsStore {
	return &RiskMetricsStore{q: q}
}

// Insert appends a new risk metrics snapshot
func (s *RiskMetricsStore) Insert(ctx context.Context, metrics *RiskMetrics) error {
	query := `
		INSERT INTO risk_metrics (
			id, user_id, total_portfolio_value, value_at_risk_95,
			var_percentage, position_count, as_of
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if metrics.ID == uuid.Nil {
		metrics.ID = uuid.New()
	}
	if metrics.AsOf.IsZero() {
		metrics.AsOf = time.Now().UTC()
	}

	_, err := s.q.Exec(ctx, query,
		metrics.ID,
		metrics.UserID,
		metrics.TotalPortfolioValue,
		metrics.ValueAtRisk95,
		metrics.VaRPercentage,
		metrics.PositionCount,
		metrics.AsOf,
	)
	if err != nil {
		return &PersistenceError{Entity: "risk_metrics", Err: err}
	}

	return nil
}

// LatestByUser returns the most recent risk snapshot for a user.
// Returns ErrNotFound when no snapshot has ever been computed for the user.
func (s *RiskMetricsStore) LatestByUser(ctx context.Context, userID string) (*RiskMetrics, error) {
	query := `
		SELECT id, user_id, total_portfolio_value, value_at_risk_95,
			var_percentage, position_count, as_of
		FROM risk_metrics
		WHERE user_id = $1
		ORDER BY as_of DESC
		LIMIT 1
	`

	var m RiskMetrics
	err := s.q.QueryRow(ctx, query, userID).Scan(
		&m.ID,
		&m.UserID,
		&m.TotalPortfolioValue,
		&m.ValueAtRisk95,
		&m.VaRPercentage,
		&m.PositionCount,
		&m.AsOf,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("risk metrics for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get risk metrics for user %s: %w", userID, err)
	}

	return &m, nil
}
