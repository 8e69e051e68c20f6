package risk

import (
	"context"
	"errors"
	"fmt"

	"github.com/quantfolio/quantfolio/internal/db"
)

// DefaultScenarios are the signed fractional price shocks applied when the
// caller does not override the scenario set.
var DefaultScenarios = []float64{-0.2, -0.5, -0.7}

// StressTest projects the deterministic loss for each shock scenario: for
// every position with a known current price, loss is
// quantity * (price - price*(1+shock)), summed across positions. Positions
// with no price data contribute zero; that is policy, not an error. The
// result maps shock fraction to projected loss.
func (e *Engine) StressTest(ctx context.Context, userID string, scenarios []float64) (map[float64]float64, error) {
	if len(scenarios) == 0 {
		scenarios = DefaultScenarios
	}

	positions, err := e.holdings.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("holdings provider: user %s: %w", userID, err)
	}

	// One price lookup per distinct symbol; scenarios reuse the same price.
	currentPrices := make(map[string]float64)
	for _, position := range positions {
		if _, ok := currentPrices[position.Symbol]; ok {
			continue
		}
		price, err := e.prices.CurrentPrice(ctx, position.Symbol)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("market-data provider: symbol %s: %w", position.Symbol, err)
		}
		currentPrices[position.Symbol] = price
	}

	results := make(map[float64]float64, len(scenarios))
	for _, shock := range scenarios {
		var loss float64
		for _, position := range positions {
			price, ok := currentPrices[position.Symbol]
			if !ok {
				continue
			}
			shocked := price * (1 + shock)
			loss += position.Quantity * (price - shocked)
		}
		results[shock] = loss
	}

	e.log.Debug().
		Str("user_id", userID).
		Int("scenarios", len(scenarios)).
		Int("positions", len(positions)).
		Msg("Stress test computed")

	return results, nil
}
