package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendationStoreInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO recommendations").
		WithArgs(pgxmock.AnyArg(), "user-1", RecommendationRisk, "High portfolio risk", 0.8, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewRecommendationStore(mock)
	rec := &Recommendation{
		UserID:     "user-1",
		Kind:       RecommendationRisk,
		Message:    "High portfolio risk",
		Confidence: 0.8,
	}

	require.NoError(t, store.Insert(context.Background(), rec))
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommendationStoreLatestByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "user_id", "kind", "message", "confidence", "created_at"}).
		AddRow(uuid.New(), "user-1", RecommendationSentiment, "Consider reviewing position in AAPL", 0.7, now).
		AddRow(uuid.New(), "user-1", RecommendationRisk, "High portfolio risk", 0.8, now.Add(-time.Minute))

	mock.ExpectQuery("SELECT id, user_id, kind, message, confidence, created_at FROM recommendations").
		WithArgs("user-1", 10).
		WillReturnRows(rows)

	store := NewRecommendationStore(mock)
	recs, err := store.LatestByUser(context.Background(), "user-1", 10)

	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, RecommendationSentiment, recs[0].Kind)
	assert.Equal(t, 0.7, recs[0].Confidence)
	assert.Equal(t, RecommendationRisk, recs[1].Kind)

	require.NoError(t, mock.ExpectationsWereMet())
}

// Batch rows share a created_at timestamp, so reads must tiebreak on the
// insertion sequence to preserve the persisted order.
func TestRecommendationStoreLatestByUserOrdersBySequence(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "user_id", "kind", "message", "confidence", "created_at"}).
		AddRow(uuid.New(), "user-1", RecommendationOpportunity, "Positive sentiment detected for NVDA", 0.65, now).
		AddRow(uuid.New(), "user-1", RecommendationRisk, "High portfolio risk", 0.8, now)

	mock.ExpectQuery("ORDER BY created_at DESC, seq DESC LIMIT").
		WithArgs("user-1", 10).
		WillReturnRows(rows)

	store := NewRecommendationStore(mock)
	recs, err := store.LatestByUser(context.Background(), "user-1", 10)

	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, RecommendationOpportunity, recs[0].Kind)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommendationStoreLatestByUserEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, user_id, kind, message, confidence, created_at FROM recommendations").
		WithArgs("user-2", 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "kind", "message", "confidence", "created_at"}))

	store := NewRecommendationStore(mock)
	recs, err := store.LatestByUser(context.Background(), "user-2", 10)

	require.NoError(t, err)
	assert.Empty(t, recs)
}
