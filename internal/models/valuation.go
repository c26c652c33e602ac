package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ibor-valuation/internal/types"
)

// PositionValuation is the resolved, priced holding of one instrument in one
// portfolio as of a date. Price fields are nil when no quote qualified.
type PositionValuation struct {
	AsOf               time.Time            `json:"asOf"`
	PortfolioID        int64                `json:"portfolioId"`
	PortfolioCode      string               `json:"portfolioCode"`
	InstrumentID       int64                `json:"instrumentId"`
	InstrumentCode     string               `json:"instrumentCode"`
	InstrumentName     string               `json:"instrumentName,omitempty"`
	InstrumentType     types.InstrumentType `json:"instrumentType"`
	NetQuantity        decimal.Decimal      `json:"netQty"`
	Side               types.Side           `json:"side"`
	Price              *decimal.Decimal     `json:"price"`
	PriceSource        *string              `json:"priceSource"`
	PriceTimestamp     *time.Time           `json:"priceTimestamp"`
	PriceCurrency      string               `json:"priceCurrency"`
	ContractMultiplier decimal.Decimal      `json:"contractMultiplier"`
	MarketValue        decimal.Decimal      `json:"marketValue"`
}

// PricePoint is one element of a price series
type PricePoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	Source    string          `json:"source"`
}

// CashProjectionRow is the net cash of a portfolio in one currency on one value date
type CashProjectionRow struct {
	PortfolioID   int64           `json:"portfolioId"`
	PortfolioCode string          `json:"portfolioCode"`
	Currency      string          `json:"currency"`
	ValueDate     time.Time       `json:"valueDate"`
	NetAmount     decimal.Decimal `json:"netAmount"`
}

// LineageKind names the fact a lineage entry came from
type LineageKind string

const (
	LineageSnapshot   LineageKind = "SNAPSHOT"
	LineageAdjustment LineageKind = "ADJUSTMENT"
)

// LineageEntry is one fact contributing to a net quantity
type LineageEntry struct {
	Kind     LineageKind     `json:"kind"`
	Date     time.Time       `json:"date"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason,omitempty"`
}

// Lot is one open tax lot
type Lot struct {
	OpenDate  time.Time       `json:"openDate"`
	Quantity  decimal.Decimal `json:"quantity"`
	CostBasis decimal.Decimal `json:"costBasis"`
}

// PositionDetail is a valuation with the facts behind it
type PositionDetail struct {
	Position  PositionValuation `json:"position"`
	LotMethod types.LotMethod   `json:"lotMethod"`
	Lineage   []LineageEntry    `json:"lineage"`
	Lots      []Lot             `json:"lots"`
}
