package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/ibor-valuation/internal/errors"
	"github.com/ibor-valuation/internal/models"
	"github.com/ibor-valuation/internal/types"
)

// DimensionResolver picks the single version of a portfolio or instrument
// valid on a date.
type DimensionResolver struct {
	store DimensionStore
}

// NewDimensionResolver creates a new dimension resolver
func NewDimensionResolver(store DimensionStore) *DimensionResolver {
	return &DimensionResolver{store: store}
}

// ResolvePortfolio returns the portfolio version valid on asOf. A code with
// no versions at all is an unknown reference; a code whose versions all miss
// asOf is not found.
func (r *DimensionResolver) ResolvePortfolio(ctx context.Context, code string, asOf time.Time) (*models.PortfolioVersion, error) {
	code = strings.TrimSpace(code)
	versions, err := r.store.FindPortfolioVersions(ctx, code)
	if err != nil {
		return nil, errors.NewDatabaseError("find portfolio versions", err)
	}
	if len(versions) == 0 {
		return nil, errors.NewUnknownReferenceError("portfolio", code)
	}

	var best *models.PortfolioVersion
	for i := range versions {
		v := &versions[i]
		if v.Covers(asOf) && (best == nil || v.ValidFrom.After(best.ValidFrom)) {
			best = v
		}
	}
	if best == nil {
		return nil, errors.NewNotFoundError("portfolio", code, types.FormatDate(asOf))
	}
	return best, nil
}

// PortfolioIdentity returns the stable id of code regardless of date
func (r *DimensionResolver) PortfolioIdentity(ctx context.Context, code string) (int64, error) {
	code = strings.TrimSpace(code)
	versions, err := r.store.FindPortfolioVersions(ctx, code)
	if err != nil {
		return 0, errors.NewDatabaseError("find portfolio versions", err)
	}
	if len(versions) == 0 {
		return 0, errors.NewUnknownReferenceError("portfolio", code)
	}
	return versions[0].PortfolioID, nil
}

// ResolveInstrument returns the instrument version valid on asOf, with the
// same failure rules as ResolvePortfolio.
func (r *DimensionResolver) ResolveInstrument(ctx context.Context, code string, asOf time.Time) (models.Instrument, error) {
	code = strings.TrimSpace(code)
	versions, err := r.store.FindInstrumentVersions(ctx, code)
	if err != nil {
		return nil, errors.NewDatabaseError("find instrument versions", err)
	}
	return pickInstrument(versions, code, asOf)
}

// ResolveInstrumentByID resolves by stable identity rather than code
func (r *DimensionResolver) ResolveInstrumentByID(ctx context.Context, instrumentID int64, asOf time.Time) (models.Instrument, error) {
	versions, err := r.store.FindInstrumentVersionsByID(ctx, instrumentID)
	if err != nil {
		return nil, errors.NewDatabaseError("find instrument versions", err)
	}
	return pickInstrument(versions, strconv.FormatInt(instrumentID, 10), asOf)
}

func pickInstrument(versions []models.Instrument, ref string, asOf time.Time) (models.Instrument, error) {
	if len(versions) == 0 {
		return nil, errors.NewUnknownReferenceError("instrument", ref)
	}

	var best models.Instrument
	for _, v := range versions {
		if !v.Covers(asOf) {
			continue
		}
		if best == nil || v.Header().ValidFrom.After(best.Header().ValidFrom) {
			best = v
		}
	}
	if best == nil {
		return nil, errors.NewNotFoundError("instrument", ref, types.FormatDate(asOf))
	}
	return best, nil
}
