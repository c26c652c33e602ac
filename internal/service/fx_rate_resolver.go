package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/ibor-valuation/internal/errors"
	"github.com/ibor-valuation/internal/logging"
	"github.com/ibor-valuation/internal/models"
	"github.com/ibor-valuation/internal/types"
)

// DefaultPivotCurrency is the currency cross rates are triangulated through
const DefaultPivotCurrency = "USD"

// fxScale is the fractional precision of inverted and triangulated rates
const fxScale = 12

var one = decimal.NewFromInt(1)

// RateTable maps a UTC day to the rate converting one unit of the source
// currency into the target. Days without a rate are absent.
type RateTable map[time.Time]decimal.Decimal

// FXRateResolver builds daily rate tables from direct, inverse and
// pivot-triangulated quotes.
type FXRateResolver struct {
	store MarketDataStore
	pivot string
}

// NewFXRateResolver creates a resolver triangulating through pivot. An
// empty pivot means DefaultPivotCurrency.
func NewFXRateResolver(store MarketDataStore, pivot string) *FXRateResolver {
	pivot = normalizeCurrency(pivot)
	if pivot == "" {
		pivot = DefaultPivotCurrency
	}
	return &FXRateResolver{store: store, pivot: pivot}
}

// NewSession starts a quote memo for one batch of conversions. A session
// must not outlive the request that created it.
func (r *FXRateResolver) NewSession() *FXSession {
	return &FXSession{
		resolver: r,
		quotes:   make(map[pairKey][]models.FxRateQuote),
	}
}

// DailyRateTable builds the from→to table over rng with a fresh session
func (r *FXRateResolver) DailyRateTable(ctx context.Context, from, to string, rng types.DateRange) (RateTable, error) {
	return r.NewSession().DailyRateTable(ctx, from, to, rng)
}

// pairKey identifies an unordered currency pair over a range
type pairKey struct {
	a, b     string
	from, to time.Time
}

func newPairKey(x, y string, rng types.DateRange) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y, from: rng.From, to: rng.To}
}

func (k pairKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.a, k.b, types.FormatDate(k.from), types.FormatDate(k.to))
}

// FXSession memoises raw quote fetches per unordered currency pair. It is
// safe for concurrent use.
type FXSession struct {
	resolver *FXRateResolver
	group    singleflight.Group

	mu     sync.Mutex
	quotes map[pairKey][]models.FxRateQuote
}

// DailyRateTable resolves from→to for every day of rng.
//
// Pass one uses quotes of the pair itself: a direct quote as is, else the
// inverse of a reverse quote. Pass two fills the remaining days with
// rate(from→pivot) / rate(to→pivot) when both legs are present and non-zero.
func (s *FXSession) DailyRateTable(ctx context.Context, from, to string, rng types.DateRange) (RateTable, error) {
	from, to = normalizeCurrency(from), normalizeCurrency(to)
	rng = types.NewDateRange(rng.From, rng.To)

	if from == to {
		table := make(RateTable)
		for _, d := range rng.Days() {
			table[d] = one
		}
		return table, nil
	}

	quotes, err := s.fetch(ctx, from, to, rng)
	if err != nil {
		return nil, err
	}
	table := reduceLeg(quotes, from, to, rng)

	missing := missingDays(table, rng)
	if len(missing) == 0 {
		return table, nil
	}

	pivot := s.resolver.pivot
	fromLeg, err := s.leg(ctx, from, pivot, rng)
	if err != nil {
		return nil, err
	}
	toLeg, err := s.leg(ctx, to, pivot, rng)
	if err != nil {
		return nil, err
	}

	filled := 0
	for _, d := range missing {
		num, okNum := fromLeg[d]
		den, okDen := toLeg[d]
		if !okNum || !okDen || num.IsZero() || den.IsZero() {
			continue
		}
		table[d] = num.DivRound(den, fxScale)
		filled++
	}

	if filled > 0 {
		logging.FromContext(ctx).WithFields(map[string]interface{}{
			"from":   from,
			"to":     to,
			"pivot":  pivot,
			"filled": filled,
		}).Debug("Triangulated FX rates")
	}
	return table, nil
}

// leg resolves ccy→pivot with the pass-one rules. A leg from the pivot to
// itself is the identity.
func (s *FXSession) leg(ctx context.Context, ccy, pivot string, rng types.DateRange) (RateTable, error) {
	if ccy == pivot {
		table := make(RateTable)
		for _, d := range rng.Days() {
			table[d] = one
		}
		return table, nil
	}
	quotes, err := s.fetch(ctx, ccy, pivot, rng)
	if err != nil {
		return nil, err
	}
	return reduceLeg(quotes, ccy, pivot, rng), nil
}

func (s *FXSession) fetch(ctx context.Context, x, y string, rng types.DateRange) ([]models.FxRateQuote, error) {
	key := newPairKey(x, y, rng)

	s.mu.Lock()
	cached, ok := s.quotes[key]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(key.String(), func() (interface{}, error) {
		s.mu.Lock()
		cached, ok := s.quotes[key]
		s.mu.Unlock()
		if ok {
			return cached, nil
		}
		quotes, err := s.resolver.store.FindFxQuotes(ctx, key.a, key.b, rng)
		if err != nil {
			return nil, errors.NewDatabaseError("find fx quotes", err)
		}
		s.mu.Lock()
		s.quotes[key] = quotes
		s.mu.Unlock()
		return quotes, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.FxRateQuote), nil
}

// reduceLeg turns the quotes of one pair into a from→to table. Direct
// quotes beat inverse quotes on the same day; within a direction the last
// quote enumerated wins. Zero rates are never inverted.
func reduceLeg(quotes []models.FxRateQuote, from, to string, rng types.DateRange) RateTable {
	direct := make(RateTable)
	inverse := make(RateTable)

	for _, q := range quotes {
		day := types.Day(q.RateDate)
		if !rng.Contains(day) {
			continue
		}
		qFrom, qTo := normalizeCurrency(q.FromCurrency), normalizeCurrency(q.ToCurrency)
		switch {
		case qFrom == from && qTo == to:
			direct[day] = q.Rate
		case qFrom == to && qTo == from:
			if q.Rate.IsZero() {
				continue
			}
			inverse[day] = one.DivRound(q.Rate, fxScale)
		}
	}

	for day, rate := range direct {
		inverse[day] = rate
	}
	return inverse
}

func missingDays(table RateTable, rng types.DateRange) []time.Time {
	var missing []time.Time
	for _, d := range rng.Days() {
		if _, ok := table[d]; !ok {
			missing = append(missing, d)
		}
	}
	return missing
}

func normalizeCurrency(ccy string) string {
	return strings.ToUpper(strings.TrimSpace(ccy))
}
