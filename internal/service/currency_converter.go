package service

import (
	"context"

	"github.com/ibor-valuation/internal/models"
	"github.com/ibor-valuation/internal/types"
)

// convertedScale is the fractional precision of converted prices
const convertedScale = 8

// CurrencyConverter applies daily rate tables to price series
type CurrencyConverter struct {
	rates *FXRateResolver
}

// NewCurrencyConverter creates a new currency converter
func NewCurrencyConverter(rates *FXRateResolver) *CurrencyConverter {
	return &CurrencyConverter{rates: rates}
}

// Convert returns points expressed in target where a rate exists for the
// point's UTC day. Points already in target, and points without a rate, are
// returned unchanged; the output currency tells the caller which happened.
// Rate tables are built once per source currency over rng.
func (c *CurrencyConverter) Convert(ctx context.Context, points []models.PricePoint, target string, rng types.DateRange) ([]models.PricePoint, error) {
	target = normalizeCurrency(target)
	out := make([]models.PricePoint, len(points))
	copy(out, points)
	if target == "" || len(points) == 0 {
		return out, nil
	}

	session := c.rates.NewSession()
	tables := make(map[string]RateTable)

	for i, p := range points {
		src := normalizeCurrency(p.Currency)
		if src == target || src == "" {
			continue
		}

		table, ok := tables[src]
		if !ok {
			var err error
			table, err = session.DailyRateTable(ctx, src, target, rng)
			if err != nil {
				return nil, err
			}
			tables[src] = table
		}

		rate, ok := table[types.Day(p.Timestamp)]
		if !ok {
			continue
		}
		out[i].Price = p.Price.Mul(rate).Round(convertedScale)
		out[i].Currency = target
	}
	return out, nil
}
