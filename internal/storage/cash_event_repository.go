package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ibor-valuation/internal/models"
)

// CashEventRepository reads dated cash movements
type CashEventRepository struct {
	db *PostgresDB
}

// NewCashEventRepository creates a new cash event repository
func NewCashEventRepository(db *PostgresDB) *CashEventRepository {
	return &CashEventRepository{db: db}
}

// FindCashEvents returns the events valued on or before maxDate. An empty
// portfolioIDs selects every portfolio. Each event carries the code of its
// portfolio's latest version.
func (r *CashEventRepository) FindCashEvents(ctx context.Context, portfolioIDs []int64, maxDate time.Time) ([]models.CashEvent, error) {
	query := `
		SELECT e.portfolio_id, COALESCE(p.portfolio_code, ''), e.currency,
		       e.value_date, e.amount, e.description
		FROM cash_events e
		LEFT JOIN LATERAL (
			SELECT portfolio_code FROM portfolio_versions v
			WHERE v.portfolio_id = e.portfolio_id
			ORDER BY v.valid_from DESC
			LIMIT 1
		) p ON true
		WHERE e.value_date <= $1
		  AND (cardinality($2::bigint[]) = 0 OR e.portfolio_id = ANY($2))
		ORDER BY e.value_date, e.portfolio_id, e.event_id
	`

	if portfolioIDs == nil {
		portfolioIDs = []int64{}
	}
	rows, err := r.db.Pool().Query(ctx, query, pgDate(maxDate), portfolioIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash events: %w", err)
	}
	defer rows.Close()

	var events []models.CashEvent
	for rows.Next() {
		var e models.CashEvent
		if err := rows.Scan(&e.PortfolioID, &e.PortfolioCode, &e.Currency, &e.ValueDate, &e.Amount, &e.Description); err != nil {
			return nil, fmt.Errorf("failed to scan cash event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash events: %w", err)
	}
	return events, nil
}
