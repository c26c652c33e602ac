package models

import (
	"time"

	"github.com/ibor-valuation/internal/types"
)

// OpenEnded is the validTo of a version that has not been retired
var OpenEnded = types.Date(9999, time.December, 31)

// PortfolioVersion is one effective-dated row of the portfolio dimension.
// PortfolioID is the stable identity facts reference.
type PortfolioVersion struct {
	VersionID    int64     `json:"versionId" db:"portfolio_version_id"`
	PortfolioID  int64     `json:"portfolioId" db:"portfolio_id"`
	Code         string    `json:"portfolioCode" db:"portfolio_code"`
	Name         string    `json:"portfolioName,omitempty" db:"portfolio_name"`
	BaseCurrency string    `json:"baseCurrency,omitempty" db:"base_currency"`
	ValidFrom    time.Time `json:"validFrom" db:"valid_from"`
	ValidTo      time.Time `json:"validTo" db:"valid_to"`
}

// Covers reports whether the version is valid on the day of asOf
func (p PortfolioVersion) Covers(asOf time.Time) bool {
	return covers(p.ValidFrom, p.ValidTo, asOf)
}

func covers(from, to, asOf time.Time) bool {
	d := types.Day(asOf)
	return !d.Before(types.Day(from)) && !d.After(types.Day(to))
}
