package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ibor-valuation/internal/models"
	"github.com/ibor-valuation/internal/types"
)

// SideOf classifies a net quantity by sign
func SideOf(netQty decimal.Decimal) types.Side {
	switch netQty.Sign() {
	case 1:
		return types.SideLong
	case -1:
		return types.SideShort
	default:
		return types.SideFlat
	}
}

// ComposeValuation prices a net quantity. A missing price values the
// position at zero in the instrument's trading currency.
func ComposeValuation(
	asOf time.Time,
	portfolio *models.PortfolioVersion,
	inst models.Instrument,
	netQty decimal.Decimal,
	price *models.PriceQuote,
	multiplier decimal.Decimal,
) models.PositionValuation {
	h := inst.Header()
	v := models.PositionValuation{
		AsOf:               types.Day(asOf),
		PortfolioID:        portfolio.PortfolioID,
		PortfolioCode:      portfolio.Code,
		InstrumentID:       h.InstrumentID,
		InstrumentCode:     h.Code,
		InstrumentName:     h.Name,
		InstrumentType:     inst.Type(),
		NetQuantity:        netQty,
		Side:               SideOf(netQty),
		PriceCurrency:      h.Currency,
		ContractMultiplier: multiplier,
	}

	px := decimal.Zero
	if price != nil {
		px = price.Price
		src, ts := price.Source, price.Timestamp
		v.Price = &px
		v.PriceSource = &src
		v.PriceTimestamp = &ts
		if price.Currency != "" {
			v.PriceCurrency = price.Currency
		}
	}
	v.MarketValue = netQty.Mul(px).Mul(multiplier)
	return v
}
