package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskMetricsStoreInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO risk_metrics").
		WithArgs(pgxmock.AnyArg(), "user-1", 980.0, 29.0661, 2.9659, 2, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewRiskMetricsStore(mock)
	metrics := &RiskMetrics{
		UserID:              "user-1",
		TotalPortfolioValue: 980,
		ValueAtRisk95:       29.0661,
		VaRPercentage:       2.9659,
		PositionCount:       2,
	}

	require.NoError(t, store.Insert(context.Background(), metrics))
	assert.NotEqual(t, uuid.Nil, metrics.ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRiskMetricsStoreInsertFailureIsPersistenceError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO risk_metrics").
		WillReturnError(errors.New("disk full"))

	store := NewRiskMetricsStore(mock)
	err = store.Insert(context.Background(), &RiskMetrics{UserID: "user-1"})

	require.Error(t, err)
	var persistErr *PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, "risk_metrics", persistErr.Entity)
}

func TestRiskMetricsStoreLatestByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	asOf := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "user_id", "total_portfolio_value", "value_at_risk_95",
		"var_percentage", "position_count", "as_of",
	}).AddRow(id, "user-1", 980.0, 29.0661, 2.9659, 2, asOf)

	mock.ExpectQuery("SELECT id, user_id, total_portfolio_value, value_at_risk_95").
		WithArgs("user-1").
		WillReturnRows(rows)

	store := NewRiskMetricsStore(mock)
	metrics, err := store.LatestByUser(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, id, metrics.ID)
	assert.Equal(t, 980.0, metrics.TotalPortfolioValue)
	assert.Equal(t, 2.9659, metrics.VaRPercentage)
	assert.Equal(t, 2, metrics.PositionCount)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRiskMetricsStoreLatestByUserNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, user_id, total_portfolio_value, value_at_risk_95").
		WithArgs("user-2").
		WillReturnError(pgx.ErrNoRows)

	store := NewRiskMetricsStore(mock)
	_, err = store.LatestByUser(context.Background(), "user-2")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "user-2")
}
