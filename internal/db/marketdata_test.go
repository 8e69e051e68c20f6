package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketDataStoreInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO market_data").
		WithArgs(pgxmock.AnyArg(), "AAPL", 189.5, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewMarketDataStore(mock)
	obs := &PriceObservation{Symbol: "AAPL", Price: 189.5}

	require.NoError(t, store.Insert(context.Background(), obs))
	assert.NotEqual(t, uuid.Nil, obs.ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

// The query fetches newest-first for the LIMIT; the store must hand back
// ascending order.
func TestMarketDataStoreHistoryAscending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "symbol", "price", "observed_at"}).
		AddRow(uuid.New(), "AAPL", 103.0, now).
		AddRow(uuid.New(), "AAPL", 102.0, now.Add(-time.Hour)).
		AddRow(uuid.New(), "AAPL", 101.0, now.Add(-2*time.Hour))

	mock.ExpectQuery("SELECT id, symbol, price, observed_at FROM market_data").
		WithArgs("AAPL", 30).
		WillReturnRows(rows)

	store := NewMarketDataStore(mock)
	observations, err := store.History(context.Background(), "AAPL", 30)

	require.NoError(t, err)
	require.Len(t, observations, 3)
	assert.Equal(t, 101.0, observations[0].Price)
	assert.Equal(t, 102.0, observations[1].Price)
	assert.Equal(t, 103.0, observations[2].Price)
	assert.True(t, observations[0].ObservedAt.Before(observations[1].ObservedAt))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarketDataStoreHistoryUnknownSymbol(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, symbol, price, observed_at FROM market_data").
		WithArgs("NOPE", 30).
		WillReturnRows(pgxmock.NewRows([]string{"id", "symbol", "price", "observed_at"}))

	store := NewMarketDataStore(mock)
	_, err = store.History(context.Background(), "NOPE", 30)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "NOPE")
}

func TestMarketDataStoreCurrentPrice(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT price FROM market_data").
		WithArgs("AAPL").
		WillReturnRows(pgxmock.NewRows([]string{"price"}).AddRow(189.5))

	store := NewMarketDataStore(mock)
	price, err := store.CurrentPrice(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, 189.5, price)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarketDataStoreCurrentPriceNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT price FROM market_data").
		WithArgs("NOPE").
		WillReturnError(pgx.ErrNoRows)

	store := NewMarketDataStore(mock)
	_, err = store.CurrentPrice(context.Background(), "NOPE")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}
