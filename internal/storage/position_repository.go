package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ibor-valuation/internal/models"
	"github.com/ibor-valuation/internal/types"
	"github.com/jackc/pgx/v5/pgtype"
)

// PositionRepository reads position snapshots and adjustments
type PositionRepository struct {
	db *PostgresDB
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *PostgresDB) *PositionRepository {
	return &PositionRepository{db: db}
}

// FindSnapshots returns the snapshots dated exactly date
func (r *PositionRepository) FindSnapshots(ctx context.Context, portfolioID, instrumentID int64, date time.Time) ([]models.PositionSnapshot, error) {
	query := `
		SELECT portfolio_id, instrument_id, snapshot_date, quantity
		FROM position_snapshots
		WHERE portfolio_id = $1 AND instrument_id = $2 AND snapshot_date = $3
	`

	rows, err := r.db.Pool().Query(ctx, query, portfolioID, instrumentID, pgDate(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.PositionSnapshot
	for rows.Next() {
		var s models.PositionSnapshot
		if err := rows.Scan(&s.PortfolioID, &s.InstrumentID, &s.SnapshotDate, &s.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return snapshots, nil
}

// FindAdjustments returns the adjustments effective on or before maxDate,
// oldest first.
func (r *PositionRepository) FindAdjustments(ctx context.Context, portfolioID, instrumentID int64, maxDate time.Time) ([]models.PositionAdjustment, error) {
	query := `
		SELECT portfolio_id, instrument_id, effective_date, quantity_delta, reason
		FROM position_adjustments
		WHERE portfolio_id = $1 AND instrument_id = $2 AND effective_date <= $3
		ORDER BY effective_date, adjustment_id
	`

	rows, err := r.db.Pool().Query(ctx, query, portfolioID, instrumentID, pgDate(maxDate))
	if err != nil {
		return nil, fmt.Errorf("failed to query adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []models.PositionAdjustment
	for rows.Next() {
		var a models.PositionAdjustment
		if err := rows.Scan(&a.PortfolioID, &a.InstrumentID, &a.EffectiveDate, &a.QuantityDelta, &a.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan adjustment: %w", err)
		}
		adjustments = append(adjustments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating adjustments: %w", err)
	}
	return adjustments, nil
}

// FindPortfolioInstruments returns the instruments with a snapshot on asOf
// or an adjustment effective on or before it.
func (r *PositionRepository) FindPortfolioInstruments(ctx context.Context, portfolioID int64, asOf time.Time) ([]int64, error) {
	query := `
		SELECT instrument_id FROM position_snapshots
		WHERE portfolio_id = $1 AND snapshot_date = $2
		UNION
		SELECT instrument_id FROM position_adjustments
		WHERE portfolio_id = $1 AND effective_date <= $2
		ORDER BY instrument_id
	`

	rows, err := r.db.Pool().Query(ctx, query, portfolioID, pgDate(asOf))
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio instruments: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan instrument id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio instruments: %w", err)
	}
	return ids, nil
}

// pgDate binds the calendar day of t as a DATE
func pgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: types.Day(t), Valid: true}
}
