package service

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibor-valuation/internal/models"
)

func quote(ts, price, source string) models.PriceQuote {
	return models.PriceQuote{InstrumentID: 100, Timestamp: at(ts), Price: dec(price), Currency: "USD", Source: source}
}

func TestBestPricePrefersBBGOverLaterQuotes(t *testing.T) {
	store := newMemStore()
	store.prices = []models.PriceQuote{
		quote("2025-01-01T16:00:00Z", "149.00", "BBG"),
		quote("2025-01-02T10:00:00Z", "150.00", "REUTERS"),
	}

	got, err := NewPriceSelector(store, "").BestPrice(context.Background(), 100, day("2025-01-02"), "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "BBG", got.Source)
	assert.Equal(t, "149", got.Price.String())
}

func TestBestPriceLatestWithinTier(t *testing.T) {
	store := newMemStore()
	store.prices = []models.PriceQuote{
		quote("2025-01-02T09:00:00Z", "1", "BBG"),
		quote("2025-01-02T17:00:00Z", "3", "BBG"),
		quote("2025-01-02T12:00:00Z", "2", "BBG"),
	}

	got, err := NewPriceSelector(store, "").BestPrice(context.Background(), 100, day("2025-01-02"), "")
	require.NoError(t, err)
	assert.Equal(t, "3", got.Price.String())
}

func TestBestPriceCutoffIsEndOfDay(t *testing.T) {
	store := newMemStore()
	store.prices = []models.PriceQuote{
		quote("2025-01-02T23:59:59Z", "10", "BBG"),
		quote("2025-01-03T00:00:00Z", "11", "BBG"),
	}
	s := NewPriceSelector(store, "")

	got, err := s.BestPrice(context.Background(), 100, day("2025-01-02"), "")
	require.NoError(t, err)
	assert.Equal(t, "10", got.Price.String())

	none, err := s.BestPrice(context.Background(), 100, day("2025-01-01"), "")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestBestPriceSourceFilterAppliesFirst(t *testing.T) {
	store := newMemStore()
	store.prices = []models.PriceQuote{
		quote("2025-01-02T16:00:00Z", "150", "BBG"),
		quote("2025-01-01T16:00:00Z", "148", "ICE"),
	}

	got, err := NewPriceSelector(store, "").BestPrice(context.Background(), 100, day("2025-01-02"), "ice")
	require.NoError(t, err)
	assert.Equal(t, "ICE", got.Source)
}

func TestBestPriceConfigurablePreference(t *testing.T) {
	quotes := []models.PriceQuote{
		quote("2025-01-02T16:00:00Z", "150", "BBG"),
		quote("2025-01-01T16:00:00Z", "148", "ICE"),
	}

	got := NewPriceSelector(nil, "ice").selectBest(quotes, day("2025-01-02"), "")
	assert.Equal(t, "ICE", got.Source)
}

func TestSelectBestDoesNotAliasInput(t *testing.T) {
	quotes := []models.PriceQuote{quote("2025-01-02T16:00:00Z", "150", "BBG")}

	got := NewPriceSelector(nil, "").selectBest(quotes, day("2025-01-02"), "")
	got.Price = decimal.Zero
	assert.Equal(t, "150", quotes[0].Price.String())
}

func TestPriceSelectorProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	asOf := day("2025-01-10")
	sources := []interface{}{"BBG", "ICE", "REUTERS", "MANUAL"}

	genQuote := gopter.CombineGens(
		gen.IntRange(-5*24, 2*24),
		gen.OneConstOf(sources...),
		gen.IntRange(1, 500),
	).Map(func(v []interface{}) models.PriceQuote {
		return models.PriceQuote{
			InstrumentID: 100,
			Timestamp:    asOf.Add(time.Duration(v[0].(int)) * time.Hour),
			Price:        decimal.NewFromInt(int64(v[2].(int))),
			Currency:     "USD",
			Source:       v[1].(string),
		}
	})

	s := NewPriceSelector(nil, "")

	properties.Property("selection is deterministic and order independent", prop.ForAll(
		func(quotes []models.PriceQuote) bool {
			a := s.selectBest(quotes, asOf, "")
			reversed := make([]models.PriceQuote, len(quotes))
			for i, q := range quotes {
				reversed[len(quotes)-1-i] = q
			}
			b := s.selectBest(reversed, asOf, "")
			if a == nil || b == nil {
				return a == nil && b == nil
			}
			return a.Source == b.Source && a.Timestamp.Equal(b.Timestamp) && a.Price.Equal(b.Price)
		},
		gen.SliceOf(genQuote),
	))

	properties.Property("a qualifying BBG quote always wins", prop.ForAll(
		func(quotes []models.PriceQuote) bool {
			hasBBG := false
			for _, q := range quotes {
				if q.Source == "BBG" && !q.Timestamp.After(asOf.Add(24*time.Hour-time.Second)) {
					hasBBG = true
				}
			}
			best := s.selectBest(quotes, asOf, "")
			if !hasBBG {
				return best == nil || best.Source != "BBG"
			}
			return best != nil && best.Source == "BBG"
		},
		gen.SliceOf(genQuote),
	))

	properties.TestingRun(t)
}
