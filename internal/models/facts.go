package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionSnapshot is a full-quantity book measurement for one day.
// Rows sharing a key are summed.
type PositionSnapshot struct {
	PortfolioID  int64           `json:"portfolioId" db:"portfolio_id"`
	InstrumentID int64           `json:"instrumentId" db:"instrument_id"`
	SnapshotDate time.Time       `json:"snapshotDate" db:"snapshot_date"`
	Quantity     decimal.Decimal `json:"quantity" db:"quantity"`
}

// PositionAdjustment is a signed quantity correction effective from a date
type PositionAdjustment struct {
	PortfolioID   int64           `json:"portfolioId" db:"portfolio_id"`
	InstrumentID  int64           `json:"instrumentId" db:"instrument_id"`
	EffectiveDate time.Time       `json:"effectiveDate" db:"effective_date"`
	QuantityDelta decimal.Decimal `json:"quantityDelta" db:"quantity_delta"`
	Reason        string          `json:"reason,omitempty" db:"reason"`
}

// PriceQuote is one source's price for an instrument at a point in time
type PriceQuote struct {
	InstrumentID int64           `json:"instrumentId" ch:"instrument_id"`
	Timestamp    time.Time       `json:"timestamp" ch:"ts"`
	Price        decimal.Decimal `json:"price" ch:"price"`
	Currency     string          `json:"currency" ch:"currency"`
	Source       string          `json:"source" ch:"source"`
}

// FxRateQuote converts one unit of FromCurrency into ToCurrency on RateDate
type FxRateQuote struct {
	RateDate     time.Time       `json:"rateDate" ch:"rate_date"`
	FromCurrency string          `json:"fromCurrency" ch:"from_ccy"`
	ToCurrency   string          `json:"toCurrency" ch:"to_ccy"`
	Rate         decimal.Decimal `json:"rate" ch:"rate"`
}

// CashEvent is a dated cash movement of a portfolio. PortfolioCode is the
// code of the portfolio's latest version.
type CashEvent struct {
	PortfolioID   int64           `json:"portfolioId" db:"portfolio_id"`
	PortfolioCode string          `json:"portfolioCode" db:"portfolio_code"`
	Currency      string          `json:"currency" db:"currency"`
	ValueDate     time.Time       `json:"valueDate" db:"value_date"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Description   string          `json:"description,omitempty" db:"description"`
}
