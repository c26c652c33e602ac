package service

import (
	"github.com/ibor-valuation/internal/models"
	"github.com/ibor-valuation/internal/types"
)

// LotCalculator derives open lots from a position's lineage
type LotCalculator interface {
	Lots(method types.LotMethod, lineage []models.LineageEntry) []models.Lot
}

// NoLots reports no lots for any method. Lineage carries no trade prices,
// so cost-based views cannot be derived from it.
type NoLots struct{}

// Lots returns an empty list
func (NoLots) Lots(types.LotMethod, []models.LineageEntry) []models.Lot {
	return []models.Lot{}
}
