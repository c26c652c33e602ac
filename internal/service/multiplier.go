package service

import (
	"github.com/shopspring/decimal"

	"github.com/ibor-valuation/internal/models"
)

// ContractMultiplier returns the futures contract size or the options
// multiplier when present, otherwise 1. It never fails.
func ContractMultiplier(inst models.Instrument) decimal.Decimal {
	switch v := inst.(type) {
	case models.Futures:
		if v.ContractSize != nil {
			return *v.ContractSize
		}
	case models.Option:
		if v.Multiplier != nil {
			return *v.Multiplier
		}
	case models.Equity, models.Bond, models.FX, models.Other:
	}
	return decimal.NewFromInt(1)
}
