package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/ibor-valuation/internal/models"
	"github.com/ibor-valuation/internal/types"
)

// MarketDataRepository reads price and FX quotes from ClickHouse
type MarketDataRepository struct {
	db *ClickHouseDB
}

// NewMarketDataRepository creates a new market data repository
func NewMarketDataRepository(db *ClickHouseDB) *MarketDataRepository {
	return &MarketDataRepository{db: db}
}

// FindPrices returns the quotes of instrumentID timestamped from rng.From
// through 23:59:59 of rng.To, oldest first. A zero rng.From leaves the
// range open below. A non-empty source matches case-insensitively.
func (r *MarketDataRepository) FindPrices(ctx context.Context, instrumentID int64, rng types.DateRange, source string) ([]models.PriceQuote, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT instrument_id, ts, price, currency, source
		FROM prices
		WHERE instrument_id = ? AND ts <= ?`)
	args := []interface{}{instrumentID, types.EndOfDay(rng.To)}

	if !rng.From.IsZero() {
		sb.WriteString(` AND ts >= ?`)
		args = append(args, types.Day(rng.From))
	}
	if source != "" {
		sb.WriteString(` AND upper(source) = ?`)
		args = append(args, strings.ToUpper(source))
	}
	sb.WriteString(`
		ORDER BY ts, source`)

	var quotes []models.PriceQuote
	if err := r.db.Conn().Select(ctx, &quotes, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	return quotes, nil
}

// FindFxQuotes returns the quotes of the pair in either direction dated
// within rng, oldest first.
func (r *MarketDataRepository) FindFxQuotes(ctx context.Context, a, b string, rng types.DateRange) ([]models.FxRateQuote, error) {
	query := `
		SELECT rate_date, from_ccy, to_ccy, rate
		FROM fx_rates
		WHERE ((from_ccy = ? AND to_ccy = ?) OR (from_ccy = ? AND to_ccy = ?))
		  AND rate_date >= ? AND rate_date <= ?
		ORDER BY rate_date, from_ccy
	`

	var quotes []models.FxRateQuote
	err := r.db.Conn().Select(ctx, &quotes, query, a, b, b, a, types.Day(rng.From), types.Day(rng.To))
	if err != nil {
		return nil, fmt.Errorf("failed to query fx rates: %w", err)
	}
	return quotes, nil
}
