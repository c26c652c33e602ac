package storage

import (
	"context"
	"fmt"

	"github.com/ibor-valuation/internal/models"
	"github.com/jackc/pgx/v5"
)

// DimensionRepository reads the effective-dated portfolio and instrument
// tables.
type DimensionRepository struct {
	db *PostgresDB
}

// NewDimensionRepository creates a new dimension repository
func NewDimensionRepository(db *PostgresDB) *DimensionRepository {
	return &DimensionRepository{db: db}
}

// FindPortfolioVersions returns every version of the portfolio code
func (r *DimensionRepository) FindPortfolioVersions(ctx context.Context, code string) ([]models.PortfolioVersion, error) {
	query := `
		SELECT portfolio_version_id, portfolio_id, portfolio_code, portfolio_name,
		       base_currency, valid_from, valid_to
		FROM portfolio_versions
		WHERE portfolio_code = $1
		ORDER BY valid_from
	`

	rows, err := r.db.Pool().Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio versions: %w", err)
	}

	versions, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.PortfolioVersion])
	if err != nil {
		return nil, fmt.Errorf("failed to scan portfolio versions: %w", err)
	}
	return versions, nil
}

const instrumentColumns = `
	instrument_version_id, instrument_id, instrument_code, instrument_name,
	instrument_type, exchange, currency, valid_from, valid_to,
	maturity_date, coupon_rate, expiry_date, contract_size,
	option_symbol, underlying_symbol, option_type, strike_price, multiplier,
	from_currency, to_currency
`

// FindInstrumentVersions returns every version of the instrument code
func (r *DimensionRepository) FindInstrumentVersions(ctx context.Context, code string) ([]models.Instrument, error) {
	query := `SELECT ` + instrumentColumns + `
		FROM instrument_versions
		WHERE instrument_code = $1
		ORDER BY valid_from
	`
	return r.queryInstruments(ctx, query, code)
}

// FindInstrumentVersionsByID returns every version of the instrument identity
func (r *DimensionRepository) FindInstrumentVersionsByID(ctx context.Context, instrumentID int64) ([]models.Instrument, error) {
	query := `SELECT ` + instrumentColumns + `
		FROM instrument_versions
		WHERE instrument_id = $1
		ORDER BY valid_from
	`
	return r.queryInstruments(ctx, query, instrumentID)
}

func (r *DimensionRepository) queryInstruments(ctx context.Context, query string, arg interface{}) ([]models.Instrument, error) {
	rows, err := r.db.Pool().Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query instrument versions: %w", err)
	}
	defer rows.Close()

	var instruments []models.Instrument
	for rows.Next() {
		rec, err := scanInstrumentRecord(rows)
		if err != nil {
			return nil, err
		}
		instruments = append(instruments, models.NewInstrument(rec))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating instrument versions: %w", err)
	}
	return instruments, nil
}

func scanInstrumentRecord(row pgx.Row) (models.InstrumentRecord, error) {
	var rec models.InstrumentRecord

	err := row.Scan(
		&rec.VersionID,
		&rec.InstrumentID,
		&rec.Code,
		&rec.Name,
		&rec.InstrumentType,
		&rec.Exchange,
		&rec.Currency,
		&rec.ValidFrom,
		&rec.ValidTo,
		&rec.MaturityDate,
		&rec.CouponRate,
		&rec.ExpiryDate,
		&rec.ContractSize,
		&rec.OptionSymbol,
		&rec.Underlying,
		&rec.OptionType,
		&rec.Strike,
		&rec.Multiplier,
		&rec.FromCurrency,
		&rec.ToCurrency,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to scan instrument version: %w", err)
	}
	return rec, nil
}
