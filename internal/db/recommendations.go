package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecommendationKind tags which synthesis rule produced a recommendation.
// Used for downstream filtering and display, not for ranking.
type RecommendationKind string

const (
	RecommendationRisk        RecommendationKind = "risk"
	RecommendationSentiment   RecommendationKind = "sentiment"
	RecommendationOpportunity RecommendationKind = "opportunity"
)

// Recommendation is one synthesized recommendation record. The table is an
// append-only log; rows have no identity beyond insertion order.
type Recommendation struct {
	ID         uuid.UUID          `db:"id" json:"id"`
	UserID     string             `db:"user_id" json:"user_id"`
	Kind       RecommendationKind `db:"kind" json:"kind"`
	Message    string             `db:"message" json:"message"`
	Confidence float64            `db:"confidence" json:"confidence"`
	CreatedAt  time.Time          `db:"created_at" json:"created_at"`
}

// RecommendationStore provides read/append access to the recommendations log
type RecommendationStore struct {
	q Querier
}

// NewRecommendationStore creates a recommendation store
func NewRecommendationStore(q Querier) *RecommendationStore {
	return &RecommendationStore{q: q}
}

// Insert appends a single recommendation row
func (s *RecommendationStore) Insert(ctx context.Context, rec *Recommendation) error {
	query := `
		INSERT INTO recommendations (id, user_id, kind, message, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.q.Exec(ctx, query,
		rec.ID,
		rec.UserID,
		rec.Kind,
		rec.Message,
		rec.Confidence,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert recommendation: %w", err)
	}

	return nil
}

// LatestByUser returns the limit most recent recommendations for a user,
// newest first. Rows written in one synthesis batch share a created_at
// timestamp; the seq column breaks the tie so readers always observe the
// insertion order.
func (s *RecommendationStore) LatestByUser(ctx context.Context, userID string, limit int) ([]Recommendation, error) {
	query := `
		SELECT id, user_id, kind, message, confidence, created_at
		FROM recommendations
		WHERE user_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2
	`

	rows, err := s.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations for user %s: %w", userID, err)
	}
	defer rows.Close()

	var recs []Recommendation
	for rows.Next() {
		var r Recommendation
		if err := rows.Scan(&r.ID, &r.UserID, &r.Kind, &r.Message, &r.Confidence, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation row: %w", err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendation rows: %w", err)
	}

	return recs, nil
}
