package storage

import (
	"context"
	stderrors "errors"

	"github.com/ibor-valuation/internal/circuitbreaker"
	"github.com/ibor-valuation/internal/errors"
	"github.com/ibor-valuation/internal/models"
	"github.com/ibor-valuation/internal/types"
)

// MarketDataReader reads prices and FX quotes
type MarketDataReader interface {
	FindPrices(ctx context.Context, instrumentID int64, rng types.DateRange, source string) ([]models.PriceQuote, error)
	FindFxQuotes(ctx context.Context, a, b string, rng types.DateRange) ([]models.FxRateQuote, error)
}

// GuardedMarketData sends market data reads through a circuit breaker so a
// ClickHouse outage fails requests fast.
type GuardedMarketData struct {
	next    MarketDataReader
	breaker *circuitbreaker.CircuitBreaker
}

// NewGuardedMarketData wraps next with breaker
func NewGuardedMarketData(next MarketDataReader, breaker *circuitbreaker.CircuitBreaker) *GuardedMarketData {
	return &GuardedMarketData{next: next, breaker: breaker}
}

// FindPrices implements MarketDataReader
func (g *GuardedMarketData) FindPrices(ctx context.Context, instrumentID int64, rng types.DateRange, source string) ([]models.PriceQuote, error) {
	var out []models.PriceQuote
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		out, err = g.next.FindPrices(ctx, instrumentID, rng, source)
		return err
	})
	return out, rejected("find prices", err)
}

// FindFxQuotes implements MarketDataReader
func (g *GuardedMarketData) FindFxQuotes(ctx context.Context, a, b string, rng types.DateRange) ([]models.FxRateQuote, error) {
	var out []models.FxRateQuote
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		out, err = g.next.FindFxQuotes(ctx, a, b, rng)
		return err
	})
	return out, rejected("find fx quotes", err)
}

// rejected reports an open circuit as a database failure
func rejected(operation string, err error) error {
	if stderrors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return errors.NewDatabaseError(operation, err)
	}
	return err
}
