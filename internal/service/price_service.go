package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ibor-valuation/internal/errors"
	"github.com/ibor-valuation/internal/models"
	"github.com/ibor-valuation/internal/types"
)

// PriceService serves instrument price series, optionally converted
type PriceService struct {
	engine *Engine
	market MarketDataStore
}

// NewPriceService creates a new price service
func NewPriceService(engine *Engine, market MarketDataStore) *PriceService {
	return &PriceService{engine: engine, market: market}
}

// ResolvePrices returns the quotes of instrumentCode timestamped between
// from and 23:59:59 of to, oldest first. The instrument is resolved as of
// to. When targetCurrency is set each quote is converted where a rate exists
// for its day. Ranges longer than MaxPriceRangeDays are rejected.
func (s *PriceService) ResolvePrices(ctx context.Context, instrumentCode string, from, to time.Time, source, targetCurrency string) ([]models.PricePoint, error) {
	instrumentCode, err := requireCode("instrumentCode", instrumentCode)
	if err != nil {
		return nil, err
	}
	if from, err = requireDate("from", from); err != nil {
		return nil, err
	}
	if to, err = requireDate("to", to); err != nil {
		return nil, err
	}
	rng := types.NewDateRange(from, to)
	if !rng.Valid() {
		return nil, errors.NewInvalidParameterError("from", "must not be after to")
	}
	if maxDays := s.engine.Options.MaxPriceRangeDays; rng.DayCount() > maxDays {
		return nil, errors.NewInvalidParameterError("to", fmt.Sprintf("range spans more than %d days", maxDays))
	}

	inst, err := s.engine.Dimensions.ResolveInstrument(ctx, instrumentCode, to)
	if err != nil {
		return nil, err
	}

	quotes, err := s.market.FindPrices(ctx, inst.Header().InstrumentID, rng, strings.TrimSpace(source))
	if err != nil {
		return nil, errors.NewDatabaseError("find prices", err)
	}

	points := make([]models.PricePoint, len(quotes))
	for i, q := range quotes {
		points[i] = models.PricePoint{
			Timestamp: q.Timestamp,
			Price:     q.Price,
			Currency:  q.Currency,
			Source:    q.Source,
		}
	}

	if strings.TrimSpace(targetCurrency) == "" {
		return points, nil
	}
	return s.engine.Converter.Convert(ctx, points, targetCurrency, rng)
}
