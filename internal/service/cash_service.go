package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ibor-valuation/internal/errors"
	"github.com/ibor-valuation/internal/models"
	"github.com/ibor-valuation/internal/types"
)

// Clock returns the current time
type Clock func() time.Time

// CashService projects net cash by portfolio, currency and value date
type CashService struct {
	engine *Engine
	cash   CashStore
	now    Clock
}

// NewCashService creates a new cash service. A nil now uses time.Now.
func NewCashService(engine *Engine, cash CashStore, now Clock) *CashService {
	if now == nil {
		now = time.Now
	}
	return &CashService{engine: engine, cash: cash, now: now}
}

type cashKey struct {
	portfolioID int64
	currency    string
	valueDate   time.Time
}

// ResolveCashProjection sums cash events valued through today plus
// horizonDays. Every code must name a known portfolio; no codes means every
// portfolio. A nil horizonDays uses the configured default.
func (s *CashService) ResolveCashProjection(ctx context.Context, portfolioCodes []string, horizonDays *int) ([]models.CashProjectionRow, error) {
	days := s.engine.Options.DefaultCashHorizon
	if horizonDays != nil {
		days = *horizonDays
	}
	if days < 0 {
		return nil, errors.NewInvalidParameterError("days", "must not be negative")
	}

	ids, err := s.portfolioIDs(ctx, portfolioCodes)
	if err != nil {
		return nil, err
	}

	maxDate := types.Day(s.now()).AddDate(0, 0, days)
	events, err := s.cash.FindCashEvents(ctx, ids, maxDate)
	if err != nil {
		return nil, errors.NewDatabaseError("find cash events", err)
	}

	totals := make(map[cashKey]*models.CashProjectionRow)
	for _, e := range events {
		valueDate := types.Day(e.ValueDate)
		if valueDate.After(maxDate) {
			continue
		}
		key := cashKey{portfolioID: e.PortfolioID, currency: normalizeCurrency(e.Currency), valueDate: valueDate}
		row, ok := totals[key]
		if !ok {
			row = &models.CashProjectionRow{
				PortfolioID:   e.PortfolioID,
				PortfolioCode: e.PortfolioCode,
				Currency:      key.currency,
				ValueDate:     valueDate,
				NetAmount:     decimal.Zero,
			}
			totals[key] = row
		}
		row.NetAmount = row.NetAmount.Add(e.Amount)
	}

	rows := make([]models.CashProjectionRow, 0, len(totals))
	for _, row := range totals {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.ValueDate.Equal(b.ValueDate) {
			return a.ValueDate.Before(b.ValueDate)
		}
		if a.PortfolioID != b.PortfolioID {
			return a.PortfolioID < b.PortfolioID
		}
		return a.Currency < b.Currency
	})
	return rows, nil
}

// portfolioIDs maps codes to stable identities. Codes are resolved by
// existence, not as of a date.
func (s *CashService) portfolioIDs(ctx context.Context, codes []string) ([]int64, error) {
	var ids []int64
	seen := make(map[int64]bool)
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		id, err := s.engine.Dimensions.PortfolioIdentity(ctx, code)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}
