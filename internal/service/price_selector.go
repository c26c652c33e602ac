package service

import (
	"context"
	"strings"
	"time"

	"github.com/ibor-valuation/internal/errors"
	"github.com/ibor-valuation/internal/models"
	"github.com/ibor-valuation/internal/types"
)

// DefaultPreferredSource is the price source ranked above all others
const DefaultPreferredSource = "BBG"

// PriceSelector picks one price per instrument as of a date
type PriceSelector struct {
	store     MarketDataStore
	preferred string
}

// NewPriceSelector creates a selector ranking preferredSource first. An
// empty preferredSource means DefaultPreferredSource.
func NewPriceSelector(store MarketDataStore, preferredSource string) *PriceSelector {
	preferredSource = strings.ToUpper(strings.TrimSpace(preferredSource))
	if preferredSource == "" {
		preferredSource = DefaultPreferredSource
	}
	return &PriceSelector{store: store, preferred: preferredSource}
}

// BestPrice returns the best quote timestamped on or before 23:59:59 of
// asOf, or nil when none qualifies. A non-empty source keeps only that
// source's quotes.
func (s *PriceSelector) BestPrice(ctx context.Context, instrumentID int64, asOf time.Time, source string) (*models.PriceQuote, error) {
	quotes, err := s.store.FindPrices(ctx, instrumentID, types.DateRange{To: types.Day(asOf)}, source)
	if err != nil {
		return nil, errors.NewDatabaseError("find prices", err)
	}
	return s.selectBest(quotes, asOf, source), nil
}

func (s *PriceSelector) selectBest(quotes []models.PriceQuote, asOf time.Time, source string) *models.PriceQuote {
	cutoff := types.EndOfDay(asOf)
	source = strings.TrimSpace(source)

	var best *models.PriceQuote
	for i := range quotes {
		q := &quotes[i]
		if q.Timestamp.After(cutoff) {
			continue
		}
		if source != "" && !strings.EqualFold(q.Source, source) {
			continue
		}
		if best == nil || s.better(q, best) {
			best = q
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

// better orders quotes: preferred source tier, then latest timestamp, then
// source code and price so that equal inputs always give the same answer.
func (s *PriceSelector) better(a, b *models.PriceQuote) bool {
	aPref := strings.EqualFold(a.Source, s.preferred)
	bPref := strings.EqualFold(b.Source, s.preferred)
	if aPref != bPref {
		return aPref
	}
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	return a.Price.GreaterThan(b.Price)
}
