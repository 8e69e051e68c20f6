package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sentiment labels. The label is a deterministic function of polarity under
// the fixed thresholds in the sentiment package.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// SentimentReport is a classified view of one source article. Reports are
// derived data, recomputed per ingestion batch and never retroactively
// corrected. Title is joined from the source article on reads; the
// recommendation engine derives candidate symbols from it.
type SentimentReport struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ArticleID uuid.UUID `db:"article_id" json:"article_id"`
	Title     string    `db:"title" json:"title"`
	Summary   string    `db:"summary" json:"summary"`
	Polarity  float64   `db:"polarity" json:"polarity"`
	Label     string    `db:"label" json:"label"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SentimentStore provides read/append access to the sentiment reports table
type SentimentStore struct {
	q Querier
}

// NewSentimentStore creates a sentiment report store
func NewSentimentStore(q Querier) *SentimentStore {
	return &SentimentStore{q: q}
}

// Insert appends a new sentiment report
func (s *SentimentStore) Insert(ctx context.Context, report *SentimentReport) error {
	query := `
		INSERT INTO sentiment_reports (id, article_id, summary, polarity, label, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	_, err := s.q.Exec(ctx, query,
		report.ID,
		report.ArticleID,
		report.Summary,
		report.Polarity,
		report.Label,
		report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sentiment report: %w", err)
	}

	return nil
}

// Latest returns the limit most recent sentiment reports system-wide, newest
// first, each joined with its source article's headline.
func (s *SentimentStore) Latest(ctx context.Context, limit int) ([]SentimentReport, error) {
	query := `
		SELECT r.id, r.article_id, a.title, r.summary, r.polarity, r.label, r.created_at
		FROM sentiment_reports r
		JOIN news_articles a ON a.id = r.article_id
		ORDER BY r.created_at DESC
		LIMIT $1
	`

	rows, err := s.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sentiment reports: %w", err)
	}
	defer rows.Close()

	var reports []SentimentReport
	for rows.Next() {
		var r SentimentReport
		if err := rows.Scan(&r.ID, &r.ArticleID, &r.Title, &r.Summary, &r.Polarity, &r.Label, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sentiment report row: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sentiment report rows: %w", err)
	}

	return reports, nil
}
