package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ibor-valuation/internal/errors"
	"github.com/ibor-valuation/internal/models"
	"github.com/ibor-valuation/internal/types"
)

// QuantityAssembler merges same-day snapshots with cumulative adjustments.
//
// Only snapshots dated exactly asOf count, while every adjustment effective
// on or before asOf applies. An empty history is a zero quantity.
type QuantityAssembler struct {
	store PositionStore
}

// NewQuantityAssembler creates a new quantity assembler
func NewQuantityAssembler(store PositionStore) *QuantityAssembler {
	return &QuantityAssembler{store: store}
}

// NetQuantity returns the net holding of instrumentID in portfolioID on asOf
func (a *QuantityAssembler) NetQuantity(ctx context.Context, portfolioID, instrumentID int64, asOf time.Time) (decimal.Decimal, error) {
	snapshots, adjustments, err := a.facts(ctx, portfolioID, instrumentID, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return netQuantity(snapshots, adjustments, asOf), nil
}

// Lineage returns the facts behind NetQuantity, snapshots first within a day
func (a *QuantityAssembler) Lineage(ctx context.Context, portfolioID, instrumentID int64, asOf time.Time) ([]models.LineageEntry, error) {
	snapshots, adjustments, err := a.facts(ctx, portfolioID, instrumentID, asOf)
	if err != nil {
		return nil, err
	}

	day := types.Day(asOf)
	entries := make([]models.LineageEntry, 0, len(snapshots)+len(adjustments))
	for _, s := range snapshots {
		if types.Day(s.SnapshotDate).Equal(day) {
			entries = append(entries, models.LineageEntry{
				Kind:     models.LineageSnapshot,
				Date:     types.Day(s.SnapshotDate),
				Quantity: s.Quantity,
			})
		}
	}
	for _, adj := range adjustments {
		if !types.Day(adj.EffectiveDate).After(day) {
			entries = append(entries, models.LineageEntry{
				Kind:     models.LineageAdjustment,
				Date:     types.Day(adj.EffectiveDate),
				Quantity: adj.QuantityDelta,
				Reason:   adj.Reason,
			})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries, nil
}

func (a *QuantityAssembler) facts(ctx context.Context, portfolioID, instrumentID int64, asOf time.Time) ([]models.PositionSnapshot, []models.PositionAdjustment, error) {
	day := types.Day(asOf)

	var snapshots []models.PositionSnapshot
	var adjustments []models.PositionAdjustment

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := a.store.FindSnapshots(gctx, portfolioID, instrumentID, day)
		if err != nil {
			return errors.NewDatabaseError("find snapshots", err)
		}
		snapshots = rows
		return nil
	})
	g.Go(func() error {
		rows, err := a.store.FindAdjustments(gctx, portfolioID, instrumentID, day)
		if err != nil {
			return errors.NewDatabaseError("find adjustments", err)
		}
		adjustments = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return snapshots, adjustments, nil
}

// netQuantity applies the same-day and cumulative cutoffs to whatever rows
// it is given.
func netQuantity(snapshots []models.PositionSnapshot, adjustments []models.PositionAdjustment, asOf time.Time) decimal.Decimal {
	day := types.Day(asOf)
	total := decimal.Zero
	for _, s := range snapshots {
		if types.Day(s.SnapshotDate).Equal(day) {
			total = total.Add(s.Quantity)
		}
	}
	for _, adj := range adjustments {
		if !types.Day(adj.EffectiveDate).After(day) {
			total = total.Add(adj.QuantityDelta)
		}
	}
	return total
}
