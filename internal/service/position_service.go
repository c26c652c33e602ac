package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ibor-valuation/internal/errors"
	"github.com/ibor-valuation/internal/logging"
	"github.com/ibor-valuation/internal/models"
	"github.com/ibor-valuation/internal/types"
)

// PositionService resolves and values holdings as of a date
type PositionService struct {
	engine    *Engine
	positions PositionStore
	lots      LotCalculator
}

// NewPositionService creates a new position service. A nil lots uses
// NoLots.
func NewPositionService(engine *Engine, positions PositionStore, lots LotCalculator) *PositionService {
	if lots == nil {
		lots = NoLots{}
	}
	return &PositionService{engine: engine, positions: positions, lots: lots}
}

// ResolvePosition values one instrument in one portfolio as of asOf
func (s *PositionService) ResolvePosition(ctx context.Context, asOf time.Time, portfolioCode, instrumentCode string) (*models.PositionValuation, error) {
	asOf, err := requireDate("asOf", asOf)
	if err != nil {
		return nil, err
	}
	if portfolioCode, err = requireCode("portfolioCode", portfolioCode); err != nil {
		return nil, err
	}
	if instrumentCode, err = requireCode("instrumentCode", instrumentCode); err != nil {
		return nil, err
	}

	var portfolio *models.PortfolioVersion
	var inst models.Instrument

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.engine.Dimensions.ResolvePortfolio(gctx, portfolioCode, asOf)
		portfolio = p
		return err
	})
	g.Go(func() error {
		i, err := s.engine.Dimensions.ResolveInstrument(gctx, instrumentCode, asOf)
		inst = i
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	v, err := s.value(ctx, asOf, portfolio, inst)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// value runs quantity assembly and price selection concurrently, then
// composes the result.
func (s *PositionService) value(ctx context.Context, asOf time.Time, portfolio *models.PortfolioVersion, inst models.Instrument) (models.PositionValuation, error) {
	instrumentID := inst.Header().InstrumentID

	var netQty decimal.Decimal
	var price *models.PriceQuote

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := s.engine.Quantities.NetQuantity(gctx, portfolio.PortfolioID, instrumentID, asOf)
		netQty = q
		return err
	})
	g.Go(func() error {
		p, err := s.engine.Prices.BestPrice(gctx, instrumentID, asOf, "")
		price = p
		return err
	})
	if err := g.Wait(); err != nil {
		return models.PositionValuation{}, err
	}

	return ComposeValuation(asOf, portfolio, inst, netQty, price, ContractMultiplier(inst)), nil
}

// ListPositions values every instrument held in the portfolio on asOf,
// ordered by instrument code. Instruments with no version valid on asOf
// are skipped.
func (s *PositionService) ListPositions(ctx context.Context, asOf time.Time, portfolioCode string, page, size int) (*types.PagedResult[models.PositionValuation], error) {
	asOf, err := requireDate("asOf", asOf)
	if err != nil {
		return nil, err
	}
	if portfolioCode, err = requireCode("portfolioCode", portfolioCode); err != nil {
		return nil, err
	}
	opts := s.engine.Options
	p := types.NormalizePage(page, size, opts.DefaultPageSize, opts.MaxPageSize)

	portfolio, err := s.engine.Dimensions.ResolvePortfolio(ctx, portfolioCode, asOf)
	if err != nil {
		return nil, err
	}

	ids, err := s.positions.FindPortfolioInstruments(ctx, portfolio.PortfolioID, asOf)
	if err != nil {
		return nil, errors.NewDatabaseError("find portfolio instruments", err)
	}

	logger := logging.FromContext(ctx).WithFields(map[string]interface{}{
		"portfolio":   portfolio.Code,
		"asOf":        types.FormatDate(asOf),
		"instruments": len(ids),
	})

	results := make([]*models.PositionValuation, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxParallel)
	for i, id := range ids {
		g.Go(func() error {
			inst, err := s.engine.Dimensions.ResolveInstrumentByID(gctx, id, asOf)
			if errors.IsNotFound(err) || errors.IsUnknownReference(err) {
				logger.WithField("instrumentId", id).Debug("Skipping instrument without a valid version")
				return nil
			}
			if err != nil {
				return err
			}
			v, err := s.value(gctx, asOf, portfolio, inst)
			if err != nil {
				return err
			}
			results[i] = &v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	valuations := make([]models.PositionValuation, 0, len(results))
	for _, v := range results {
		if v != nil {
			valuations = append(valuations, *v)
		}
	}
	sort.Slice(valuations, func(i, j int) bool {
		return valuations[i].InstrumentCode < valuations[j].InstrumentCode
	})

	logger.WithField("valued", len(valuations)).Debug("Listed positions")
	out := types.Paginate(valuations, p)
	return &out, nil
}

// PositionDetail returns the valuation with its contributing facts and the
// lots for lotView.
func (s *PositionService) PositionDetail(ctx context.Context, asOf time.Time, portfolioCode, instrumentCode, lotView string) (*models.PositionDetail, error) {
	method, err := types.ParseLotMethod(lotView)
	if err != nil {
		return nil, errors.NewInvalidParameterError("lotView", err.Error())
	}

	position, err := s.ResolvePosition(ctx, asOf, portfolioCode, instrumentCode)
	if err != nil {
		return nil, err
	}

	lineage, err := s.engine.Quantities.Lineage(ctx, position.PortfolioID, position.InstrumentID, position.AsOf)
	if err != nil {
		return nil, err
	}

	lots := s.lots.Lots(method, lineage)
	if lots == nil {
		lots = []models.Lot{}
	}
	return &models.PositionDetail{
		Position:  *position,
		LotMethod: method,
		Lineage:   lineage,
		Lots:      lots,
	}, nil
}
