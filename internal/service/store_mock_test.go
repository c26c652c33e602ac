package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/ibor-valuation/internal/models"
	"github.com/ibor-valuation/internal/types"
)

// memStore is an in-memory FactStore with the same filtering contract as
// the database repositories.
type memStore struct {
	portfolios  []models.PortfolioVersion
	instruments []models.Instrument
	snapshots   []models.PositionSnapshot
	adjustments []models.PositionAdjustment
	prices      []models.PriceQuote
	fx          []models.FxRateQuote
	cash        []models.CashEvent

	mu      sync.Mutex
	fxCalls map[string]int
}

func newMemStore() *memStore {
	return &memStore{fxCalls: make(map[string]int)}
}

func (m *memStore) FindPortfolioVersions(ctx context.Context, code string) ([]models.PortfolioVersion, error) {
	var out []models.PortfolioVersion
	for _, p := range m.portfolios {
		if p.Code == code {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) FindInstrumentVersions(ctx context.Context, code string) ([]models.Instrument, error) {
	var out []models.Instrument
	for _, i := range m.instruments {
		if i.Header().Code == code {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *memStore) FindInstrumentVersionsByID(ctx context.Context, id int64) ([]models.Instrument, error) {
	var out []models.Instrument
	for _, i := range m.instruments {
		if i.Header().InstrumentID == id {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *memStore) FindSnapshots(ctx context.Context, portfolioID, instrumentID int64, date time.Time) ([]models.PositionSnapshot, error) {
	var out []models.PositionSnapshot
	for _, s := range m.snapshots {
		if s.PortfolioID == portfolioID && s.InstrumentID == instrumentID && types.Day(s.SnapshotDate).Equal(types.Day(date)) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) FindAdjustments(ctx context.Context, portfolioID, instrumentID int64, maxDate time.Time) ([]models.PositionAdjustment, error) {
	var out []models.PositionAdjustment
	for _, a := range m.adjustments {
		if a.PortfolioID == portfolioID && a.InstrumentID == instrumentID && !types.Day(a.EffectiveDate).After(types.Day(maxDate)) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) FindPortfolioInstruments(ctx context.Context, portfolioID int64, asOf time.Time) ([]int64, error) {
	seen := make(map[int64]bool)
	day := types.Day(asOf)
	for _, s := range m.snapshots {
		if s.PortfolioID == portfolioID && types.Day(s.SnapshotDate).Equal(day) {
			seen[s.InstrumentID] = true
		}
	}
	for _, a := range m.adjustments {
		if a.PortfolioID == portfolioID && !types.Day(a.EffectiveDate).After(day) {
			seen[a.InstrumentID] = true
		}
	}
	var out []int64
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (m *memStore) FindPrices(ctx context.Context, instrumentID int64, rng types.DateRange, source string) ([]models.PriceQuote, error) {
	var out []models.PriceQuote
	end := types.EndOfDay(rng.To)
	for _, p := range m.prices {
		if p.InstrumentID != instrumentID || p.Timestamp.After(end) {
			continue
		}
		if !rng.From.IsZero() && p.Timestamp.Before(rng.From) {
			continue
		}
		if source != "" && !strings.EqualFold(source, p.Source) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *memStore) FindFxQuotes(ctx context.Context, a, b string, rng types.DateRange) ([]models.FxRateQuote, error) {
	m.mu.Lock()
	m.fxCalls[a+"/"+b]++
	m.mu.Unlock()

	var out []models.FxRateQuote
	for _, q := range m.fx {
		pair := (q.FromCurrency == a && q.ToCurrency == b) || (q.FromCurrency == b && q.ToCurrency == a)
		if pair && rng.Contains(q.RateDate) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memStore) FindCashEvents(ctx context.Context, portfolioIDs []int64, maxDate time.Time) ([]models.CashEvent, error) {
	want := make(map[int64]bool)
	for _, id := range portfolioIDs {
		want[id] = true
	}
	var out []models.CashEvent
	for _, e := range m.cash {
		if len(want) > 0 && !want[e.PortfolioID] {
			continue
		}
		if !types.Day(e.ValueDate).After(maxDate) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) totalFxCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.fxCalls {
		n += c
	}
	return n
}

// mockStore is a testify mock for failure paths
type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindPortfolioVersions(ctx context.Context, code string) ([]models.PortfolioVersion, error) {
	args := m.Called(ctx, code)
	rows, _ := args.Get(0).([]models.PortfolioVersion)
	return rows, args.Error(1)
}

func (m *mockStore) FindInstrumentVersions(ctx context.Context, code string) ([]models.Instrument, error) {
	args := m.Called(ctx, code)
	rows, _ := args.Get(0).([]models.Instrument)
	return rows, args.Error(1)
}

func (m *mockStore) FindInstrumentVersionsByID(ctx context.Context, id int64) ([]models.Instrument, error) {
	args := m.Called(ctx, id)
	rows, _ := args.Get(0).([]models.Instrument)
	return rows, args.Error(1)
}

func (m *mockStore) FindSnapshots(ctx context.Context, portfolioID, instrumentID int64, date time.Time) ([]models.PositionSnapshot, error) {
	args := m.Called(ctx, portfolioID, instrumentID, date)
	rows, _ := args.Get(0).([]models.PositionSnapshot)
	return rows, args.Error(1)
}

func (m *mockStore) FindAdjustments(ctx context.Context, portfolioID, instrumentID int64, maxDate time.Time) ([]models.PositionAdjustment, error) {
	args := m.Called(ctx, portfolioID, instrumentID, maxDate)
	rows, _ := args.Get(0).([]models.PositionAdjustment)
	return rows, args.Error(1)
}

func (m *mockStore) FindPortfolioInstruments(ctx context.Context, portfolioID int64, asOf time.Time) ([]int64, error) {
	args := m.Called(ctx, portfolioID, asOf)
	rows, _ := args.Get(0).([]int64)
	return rows, args.Error(1)
}

func (m *mockStore) FindPrices(ctx context.Context, instrumentID int64, rng types.DateRange, source string) ([]models.PriceQuote, error) {
	args := m.Called(ctx, instrumentID, rng, source)
	rows, _ := args.Get(0).([]models.PriceQuote)
	return rows, args.Error(1)
}

func (m *mockStore) FindFxQuotes(ctx context.Context, a, b string, rng types.DateRange) ([]models.FxRateQuote, error) {
	args := m.Called(ctx, a, b, rng)
	rows, _ := args.Get(0).([]models.FxRateQuote)
	return rows, args.Error(1)
}

func (m *mockStore) FindCashEvents(ctx context.Context, portfolioIDs []int64, maxDate time.Time) ([]models.CashEvent, error) {
	args := m.Called(ctx, portfolioIDs, maxDate)
	rows, _ := args.Get(0).([]models.CashEvent)
	return rows, args.Error(1)
}

// fixtures

func day(s string) time.Time {
	d, err := types.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func portfolioVersion(versionID, id int64, code, from, to string) models.PortfolioVersion {
	return models.PortfolioVersion{
		VersionID:   versionID,
		PortfolioID: id,
		Code:        code,
		ValidFrom:   day(from),
		ValidTo:     day(to),
	}
}

func instrumentHeader(versionID, id int64, code, ccy, from, to string) models.InstrumentHeader {
	return models.InstrumentHeader{
		VersionID:    versionID,
		InstrumentID: id,
		Code:         code,
		Currency:     ccy,
		ValidFrom:    day(from),
		ValidTo:      day(to),
	}
}

func fxQuote(date, from, to, rate string) models.FxRateQuote {
	return models.FxRateQuote{RateDate: day(date), FromCurrency: from, ToCurrency: to, Rate: dec(rate)}
}

// alphaStore holds portfolio P-ALPHA (id 1) and equity EQ-IBM (id 100)
// with a 100 share snapshot and a BBG quote on 2025-01-02.
func alphaStore() *memStore {
	m := newMemStore()
	m.portfolios = []models.PortfolioVersion{
		portfolioVersion(1, 1, "P-ALPHA", "2024-01-01", "9999-12-31"),
	}
	m.instruments = []models.Instrument{
		models.Equity{InstrumentHeader: instrumentHeader(10, 100, "EQ-IBM", "USD", "2024-01-01", "9999-12-31")},
	}
	m.snapshots = []models.PositionSnapshot{
		{PortfolioID: 1, InstrumentID: 100, SnapshotDate: day("2025-01-02"), Quantity: dec("100")},
	}
	m.prices = []models.PriceQuote{
		{InstrumentID: 100, Timestamp: at("2025-01-02T16:00:00Z"), Price: dec("150.25"), Currency: "USD", Source: "BBG"},
	}
	return m
}
