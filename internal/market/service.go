// Package market provides the price history accessor over the market-data
// store, with an optional Redis cache for latest prices.
package market

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/quantfolio/quantfolio/internal/db"
)

// Store is the underlying market-data reader
type Store interface {
	History(ctx context.Context, symbol string, window int) ([]db.PriceObservation, error)
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
}

// Service is the price history accessor handed to the engines. Read-only:
// it never mutates source price data.
type Service struct {
	store Store
	cache *Cache
	log   zerolog.Logger
}

// NewService creates a price accessor. cache may be nil.
func NewService(store Store, cache *Cache, logger zerolog.Logger) *Service {
	return &Service{
		store: store,
		cache: cache,
		log:   logger,
	}
}

// History returns up to window observations for a symbol, ascending by
// timestamp. Fewer observations than requested is a valid result; a symbol
// entirely unknown to the store yields db.ErrNotFound.
func (s *Service) History(ctx context.Context, symbol string, window int) ([]db.PriceObservation, error) {
	return s.store.History(ctx, symbol, window)
}

// CurrentPrice returns the most recent price for a symbol, consulting the
// cache first. Cache failures are treated as misses and never fail a read.
func (s *Service) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	if price, ok := s.cache.Get(ctx, symbol); ok {
		return price, nil
	}

	price, err := s.store.CurrentPrice(ctx, symbol)
	if err != nil {
		return 0, err
	}

	s.cache.Set(ctx, symbol, price)
	return price, nil
}
