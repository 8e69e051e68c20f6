package sentiment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/quantfolio/internal/db"
)

func TestGenerateReports(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	positiveID := uuid.New()
	negativeID := uuid.New()
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"id", "title", "content", "source", "published_at"}).
		AddRow(positiveID, "ACME stock surges", "ACME shares surge on strong record profits this quarter.", "wire", now).
		AddRow(negativeID, "GLOBEX shares plunge", "GLOBEX shares plunge amid bankruptcy fears and recession concerns.", "wire", now.Add(-time.Hour))

	mock.ExpectQuery("SELECT id, title, content, source, published_at FROM news_articles").
		WithArgs(5).
		WillReturnRows(rows)
	mock.ExpectExec("INSERT INTO sentiment_reports").
		WithArgs(pgxmock.AnyArg(), positiveID, pgxmock.AnyArg(), pgxmock.AnyArg(), db.SentimentPositive, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO sentiment_reports").
		WithArgs(pgxmock.AnyArg(), negativeID, pgxmock.AnyArg(), pgxmock.AnyArg(), db.SentimentNegative, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	service := NewService(db.NewArticleStore(mock), db.NewSentimentStore(mock), nil, zerolog.Nop())

	reports, err := service.GenerateReports(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, db.SentimentPositive, reports[0].Label)
	assert.Equal(t, "ACME stock surges", reports[0].Title)
	assert.Equal(t, db.SentimentNegative, reports[1].Label)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateReportsPersistFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	articleID := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "title", "content", "source", "published_at"}).
		AddRow(articleID, "ACME stock surges", "ACME shares surge on record profits.", "wire", time.Now().UTC())

	mock.ExpectQuery("SELECT id, title, content, source, published_at FROM news_articles").
		WithArgs(5).
		WillReturnRows(rows)
	mock.ExpectExec("INSERT INTO sentiment_reports").
		WillReturnError(errors.New("disk full"))

	service := NewService(db.NewArticleStore(mock), db.NewSentimentStore(mock), nil, zerolog.Nop())

	reports, err := service.GenerateReports(context.Background(), 5)

	require.Error(t, err)
	var persistErr *db.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, "sentiment_reports", persistErr.Entity)
	assert.Equal(t, 0, persistErr.Committed)
	assert.Empty(t, reports)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateReportsDefaultsLimit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, title, content, source, published_at FROM news_articles").
		WithArgs(DefaultReportLimit).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "content", "source", "published_at"}))

	service := NewService(db.NewArticleStore(mock), db.NewSentimentStore(mock), nil, zerolog.Nop())

	reports, err := service.GenerateReports(context.Background(), 0)

	require.NoError(t, err)
	assert.Empty(t, reports)

	require.NoError(t, mock.ExpectationsWereMet())
}
