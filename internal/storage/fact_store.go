package storage

import (
	"context"

	"github.com/ibor-valuation/internal/models"
)

// DimensionReader reads the effective-dated dimension tables
type DimensionReader interface {
	FindPortfolioVersions(ctx context.Context, code string) ([]models.PortfolioVersion, error)
	FindInstrumentVersions(ctx context.Context, code string) ([]models.Instrument, error)
	FindInstrumentVersionsByID(ctx context.Context, instrumentID int64) ([]models.Instrument, error)
}

// FactStore serves every read the valuation engine makes. Dimensions may be
// the repository itself or a CachedDimensions in front of it; market data
// may be the repository or a GuardedMarketData.
type FactStore struct {
	DimensionReader
	MarketDataReader
	*PositionRepository
	*CashEventRepository
}

// NewFactStore composes the repositories
func NewFactStore(dims DimensionReader, positions *PositionRepository, cash *CashEventRepository, market MarketDataReader) *FactStore {
	return &FactStore{
		DimensionReader:     dims,
		MarketDataReader:    market,
		PositionRepository:  positions,
		CashEventRepository: cash,
	}
}
