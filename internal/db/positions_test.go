package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionStoreInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO positions").
		WithArgs(pgxmock.AnyArg(), "user-1", "AAPL", 10.0, 150.0, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewPositionStore(mock)
	position := &Position{UserID: "user-1", Symbol: "AAPL", Quantity: 10, PurchasePrice: 150}

	require.NoError(t, store.Insert(context.Background(), position))
	assert.NotEqual(t, uuid.Nil, position.ID)
	assert.False(t, position.CreatedAt.IsZero())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPositionStoreByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "user_id", "symbol", "quantity", "purchase_price", "created_at"}).
		AddRow(uuid.New(), "user-1", "AAPL", 10.0, 150.0, now.Add(-time.Hour)).
		AddRow(uuid.New(), "user-1", "MSFT", 5.0, 300.0, now)

	mock.ExpectQuery("SELECT id, user_id, symbol, quantity, purchase_price, created_at FROM positions").
		WithArgs("user-1").
		WillReturnRows(rows)

	store := NewPositionStore(mock)
	positions, err := store.ByUser(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, "AAPL", positions[0].Symbol)
	assert.Equal(t, 10.0, positions[0].Quantity)
	assert.Equal(t, "MSFT", positions[1].Symbol)

	require.NoError(t, mock.ExpectationsWereMet())
}

// An empty portfolio is a valid result, not an error.
func TestPositionStoreByUserEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, user_id, symbol, quantity, purchase_price, created_at FROM positions").
		WithArgs("user-2").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "symbol", "quantity", "purchase_price", "created_at"}))

	store := NewPositionStore(mock)
	positions, err := store.ByUser(context.Background(), "user-2")

	require.NoError(t, err)
	assert.Empty(t, positions)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPositionStoreByUserQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, user_id, symbol, quantity, purchase_price, created_at FROM positions").
		WithArgs("user-1").
		WillReturnError(errors.New("connection reset"))

	store := NewPositionStore(mock)
	_, err = store.ByUser(context.Background(), "user-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "user-1")
}
