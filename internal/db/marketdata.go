package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PriceObservation is a single point in a symbol's price history.
// The table is append-only, ordered by observed_at per symbol.
type PriceObservation struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Symbol     string    `db:"symbol" json:"symbol"`
	Price      float64   `db:"price" json:"price"`
	ObservedAt time.Time `db:"observed_at" json:"observed_at"`
}

// MarketDataStore provides read/append access to the market data table
type MarketDataStore struct {
	q Querier
}

// NewMarketDataStore creates a market data store
func NewMarketDataStore(q Querier) *MarketDataStore {
	return &MarketDataStore{q: q}
}

// Insert appends a new price observation
func (s *MarketDataStore) Insert(ctx context.Context, obs *PriceObservation) error {
	query := `
		INSERT INTO market_data (id, symbol, price, observed_at)
		VALUES ($1, $2, $3, $4)
	`

	if obs.ID == uuid.Nil {
		obs.ID = uuid.New()
	}
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now().UTC()
	}

	_, err := s.q.Exec(ctx, query, obs.ID, obs.Symbol, obs.Price, obs.ObservedAt)
	if err != nil {
		return fmt.Errorf("failed to insert price observation: %w", err)
	}

	return nil
}

// History returns up to window most recent observations for a symbol in
// ascending timestamp order. Returns fewer rows when less data exists; it
// never fabricates observations. A symbol with no rows at all is unknown to
// the store and yields ErrNotFound.
func (s *MarketDataStore) History(ctx context.Context, symbol string, window int) ([]PriceObservation, error) {
	query := `
		SELECT id, symbol, price, observed_at
		FROM market_data
		WHERE symbol = $1
		ORDER BY observed_at DESC
		LIMIT $2
	`

	rows, err := s.q.Query(ctx, query, symbol, window)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history for %s: %w", symbol, err)
	}
	defer rows.Close()

	var observations []PriceObservation
	for rows.Next() {
		var o PriceObservation
		if err := rows.Scan(&o.ID, &o.Symbol, &o.Price, &o.ObservedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		observations = append(observations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price rows: %w", err)
	}

	if len(observations) == 0 {
		return nil, fmt.Errorf("market data for symbol %s: %w", symbol, ErrNotFound)
	}

	// Query is newest-first for the LIMIT; callers expect ascending order.
	for i, j := 0, len(observations)-1; i < j; i, j = i+1, j-1 {
		observations[i], observations[j] = observations[j], observations[i]
	}

	return observations, nil
}

// CurrentPrice returns the most recent observed price for a symbol
func (s *MarketDataStore) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	query := `
		SELECT price
		FROM market_data
		WHERE symbol = $1
		ORDER BY observed_at DESC
		LIMIT 1
	`

	var price float64
	err := s.q.QueryRow(ctx, query, symbol).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("current price for symbol %s: %w", symbol, ErrNotFound)
		}
		return 0, fmt.Errorf("failed to get current price for %s: %w", symbol, err)
	}

	return price, nil
}
