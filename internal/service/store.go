package service

import (
	"context"
	"time"

	"github.com/ibor-valuation/internal/models"
	"github.com/ibor-valuation/internal/types"
)

// Repository interfaces for dependency injection. Each engine component
// depends only on the reads it performs.

// DimensionStore reads effective-dated portfolio and instrument versions
type DimensionStore interface {
	FindPortfolioVersions(ctx context.Context, code string) ([]models.PortfolioVersion, error)
	FindInstrumentVersions(ctx context.Context, code string) ([]models.Instrument, error)
	FindInstrumentVersionsByID(ctx context.Context, instrumentID int64) ([]models.Instrument, error)
}

// PositionStore reads quantity facts
type PositionStore interface {
	// FindSnapshots returns snapshots dated exactly date
	FindSnapshots(ctx context.Context, portfolioID, instrumentID int64, date time.Time) ([]models.PositionSnapshot, error)
	// FindAdjustments returns adjustments effective on or before maxDate
	FindAdjustments(ctx context.Context, portfolioID, instrumentID int64, maxDate time.Time) ([]models.PositionAdjustment, error)
	// FindPortfolioInstruments lists instruments with a snapshot dated asOf
	// or an adjustment effective on or before asOf
	FindPortfolioInstruments(ctx context.Context, portfolioID int64, asOf time.Time) ([]int64, error)
}

// MarketDataStore reads price and FX quotes
type MarketDataStore interface {
	// FindPrices returns quotes timestamped within rng, through 23:59:59 of
	// rng.To. A zero rng.From leaves the range open below. source filters
	// case-insensitively when non-empty. Results are ordered by timestamp.
	FindPrices(ctx context.Context, instrumentID int64, rng types.DateRange, source string) ([]models.PriceQuote, error)
	// FindFxQuotes returns quotes of the pair in either direction within rng
	FindFxQuotes(ctx context.Context, ccyA, ccyB string, rng types.DateRange) ([]models.FxRateQuote, error)
}

// CashStore reads cash events
type CashStore interface {
	// FindCashEvents returns events valued on or before maxDate. A nil
	// portfolioIDs slice means every portfolio.
	FindCashEvents(ctx context.Context, portfolioIDs []int64, maxDate time.Time) ([]models.CashEvent, error)
}

// FactStore is everything the service layer reads
type FactStore interface {
	DimensionStore
	PositionStore
	MarketDataStore
	CashStore
}
