package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Position represents a single holding row. Rows are immutable once recorded:
// new acquisitions append new rows rather than mutate existing ones.
type Position struct {
	ID            uuid.UUID `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	Symbol        string    `db:"symbol" json:"symbol"`
	Quantity      float64   `db:"quantity" json:"quantity"`
	PurchasePrice float64   `db:"purchase_price" json:"purchase_price"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// PositionStore provides read/append access to the holdings table
type PositionStore struct {
	q Querier
}

// NewPositionStore creates a position store
func NewPositionStore(q Querier) *PositionStore {
	return &PositionStore{q: q}
}

// Insert appends a new position row
func (s *PositionStore) Insert(ctx context.Context, position *Position) error {
	query := `
		INSERT INTO positions (id, user_id, symbol, quantity, purchase_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if position.ID == uuid.Nil {
		position.ID = uuid.New()
	}
	if position.CreatedAt.IsZero() {
		position.CreatedAt = time.Now().UTC()
	}

	_, err := s.q.Exec(ctx, query,
		position.ID,
		position.UserID,
		position.Symbol,
		position.Quantity,
		position.PurchasePrice,
		position.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}

	return nil
}

// ByUser returns all current positions for a user. An empty portfolio is a
// valid result, not an error.
func (s *PositionStore) ByUser(ctx context.Context, userID string) ([]Position, error) {
	query := `
		SELECT id, user_id, symbol, quantity, purchase_price, created_at
		FROM positions
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var positions []Position
	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.ID, &p.UserID, &p.Symbol, &p.Quantity, &p.PurchasePrice, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan position row: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position rows: %w", err)
	}

	return positions, nil
}
