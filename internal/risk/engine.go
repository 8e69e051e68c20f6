// Package risk computes empirical portfolio risk: historical-simulation
// Value-at-Risk over per-position return series, and deterministic stress
// tests under assumed price shocks.
package risk

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/quantfolio/quantfolio/internal/db"
)

// Engine defaults
const (
	DefaultConfidenceLevel = 0.95
	DefaultWindowSize      = 30

	// Parallelism bound for per-symbol history fetches
	maxConcurrentFetches = 8
)

// HoldingsProvider reads a user's current positions
type HoldingsProvider interface {
	ByUser(ctx context.Context, userID string) ([]db.Position, error)
}

// PriceProvider reads price history and latest prices.
// History returns observations in ascending timestamp order, at most window
// long, and db.ErrNotFound when a symbol is entirely unknown.
type PriceProvider interface {
	History(ctx context.Context, symbol string, window int) ([]db.PriceObservation, error)
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
}

// MetricsSink persists computed risk snapshots
type MetricsSink interface {
	Insert(ctx context.Context, metrics *db.RiskMetrics) error
}

// Options control a risk computation
type Options struct {
	ConfidenceLevel float64 // defaults to 0.95
	WindowSize      int     // defaults to 30
}

func (o Options) withDefaults() Options {
	if o.ConfidenceLevel == 0 {
		o.ConfidenceLevel = DefaultConfidenceLevel
	}
	if o.WindowSize == 0 {
		o.WindowSize = DefaultWindowSize
	}
	return o
}

// Engine is the risk analytics engine. It reads holdings and market data,
// never mutating either, and writes risk snapshots through the sink.
type Engine struct {
	holdings HoldingsProvider
	prices   PriceProvider
	sink     MetricsSink
	log      zerolog.Logger
}

// NewEngine creates a risk engine
func NewEngine(holdings HoldingsProvider, prices PriceProvider, sink MetricsSink, logger zerolog.Logger) *Engine {
	return &Engine{
		holdings: holdings,
		prices:   prices,
		sink:     sink,
		log:      logger,
	}
}

// contribution is one position's isolated share of the portfolio aggregates.
// Contributions are collected per position and summed after all fetches
// complete, so the accumulation is order-independent.
type contribution struct {
	value   float64
	varPart float64
	skipped bool
}

// ComputeRisk computes the empirical Value-at-Risk snapshot for a user.
//
// An empty portfolio is success: all monetary fields zero, position count
// zero. Positions whose price series holds fewer than 2 observations (or
// whose symbol is unknown to the market-data store) are skipped silently and
// contribute to neither portfolio value nor VaR. Any other collaborator
// error aborts the computation and propagates with context attached.
func (e *Engine) ComputeRisk(ctx context.Context, userID string, opts Options) (*db.RiskMetrics, error) {
	opts = opts.withDefaults()
	if opts.ConfidenceLevel <= 0 || opts.ConfidenceLevel >= 1 {
		return nil, fmt.Errorf("confidence level must be between 0 and 1, got %v", opts.ConfidenceLevel)
	}

	positions, err := e.holdings.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("holdings provider: user %s: %w", userID, err)
	}

	metrics := &db.RiskMetrics{
		UserID:        userID,
		PositionCount: len(positions),
		AsOf:          time.Now().UTC(),
	}
	if len(positions) == 0 {
		return metrics, nil
	}

	// Per-symbol fetches are independent; each writes only its own slot.
	contributions := make([]contribution, len(positions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	percentile := (1 - opts.ConfidenceLevel) * 100
	for i, position := range positions {
		i, position := i, position
		g.Go(func() error {
			c, err := e.positionContribution(gctx, position, opts.WindowSize, percentile)
			if err != nil {
				return err
			}
			contributions[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var totalValue, varTotal float64
	skipped := 0
	for _, c := range contributions {
		if c.skipped {
			skipped++
			continue
		}
		totalValue += c.value
		varTotal += c.varPart
	}

	metrics.TotalPortfolioValue = totalValue
	metrics.ValueAtRisk95 = math.Abs(varTotal)
	if totalValue > 0 {
		metrics.VaRPercentage = 100 * metrics.ValueAtRisk95 / totalValue
	}

	e.log.Debug().
		Str("user_id", userID).
		Int("positions", len(positions)).
		Int("skipped", skipped).
		Float64("total_value", totalValue).
		Float64("value_at_risk", metrics.ValueAtRisk95).
		Float64("var_percentage", metrics.VaRPercentage).
		Msg("Risk metrics computed")

	return metrics, nil
}

// positionContribution computes one position's value and VaR contribution.
// Series shorter than 2 observations cannot form a return series and yield a
// skipped contribution, as does a symbol unknown to the store.
func (e *Engine) positionContribution(ctx context.Context, position db.Position, window int, percentile float64) (contribution, error) {
	series, err := e.prices.History(ctx, position.Symbol, window)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return contribution{skipped: true}, nil
		}
		return contribution{}, fmt.Errorf("market-data provider: symbol %s: %w", position.Symbol, err)
	}
	if len(series) < 2 {
		return contribution{skipped: true}, nil
	}

	returns := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Price
		if prev > 0 {
			returns = append(returns, (series[i].Price-prev)/prev)
		}
	}
	if len(returns) == 0 {
		return contribution{skipped: true}, nil
	}

	varPercentile := Percentile(returns, percentile)
	value := position.Quantity * series[len(series)-1].Price

	return contribution{
		value:   value,
		varPart: value * varPercentile,
	}, nil
}

// ComputeAndPersist computes a risk snapshot and writes it through the sink.
// If the computation succeeded but the write failed, the computed metrics are
// returned together with the PersistenceError: the caller gets both facts.
func (e *Engine) ComputeAndPersist(ctx context.Context, userID string, opts Options) (*db.RiskMetrics, error) {
	metrics, err := e.ComputeRisk(ctx, userID, opts)
	if err != nil {
		return nil, err
	}

	if err := e.sink.Insert(ctx, metrics); err != nil {
		e.log.Error().Err(err).Str("user_id", userID).Msg("Failed to persist risk metrics")
		return metrics, err
	}

	return metrics, nil
}
