package storage

import (
	"context"
	"strconv"

	"github.com/ibor-valuation/internal/errors"
	"github.com/ibor-valuation/internal/logging"
	"github.com/ibor-valuation/internal/models"
)

// CachedDimensions serves dimension version lists from Redis, falling back
// to the next reader on a miss. Cache failures are logged and bypassed.
type CachedDimensions struct {
	next   DimensionReader
	cache  *CacheService
	logger *logging.Logger
}

// NewCachedDimensions wraps next with cache
func NewCachedDimensions(next DimensionReader, cache *CacheService, logger *logging.Logger) *CachedDimensions {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &CachedDimensions{
		next:   next,
		cache:  cache,
		logger: logger.WithField("component", "dimension_cache"),
	}
}

// FindPortfolioVersions returns the cached versions of code
func (c *CachedDimensions) FindPortfolioVersions(ctx context.Context, code string) ([]models.PortfolioVersion, error) {
	key := c.cache.GenerateCacheKey(CacheKeyPortfolioVersions, code)

	var versions []models.PortfolioVersion
	if c.lookup(ctx, key, &versions) {
		return versions, nil
	}

	versions, err := c.next.FindPortfolioVersions(ctx, code)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, versions)
	return versions, nil
}

// FindInstrumentVersions returns the cached versions of code
func (c *CachedDimensions) FindInstrumentVersions(ctx context.Context, code string) ([]models.Instrument, error) {
	key := c.cache.GenerateCacheKey(CacheKeyInstrumentVersions, code)
	return c.instruments(ctx, key, func() ([]models.Instrument, error) {
		return c.next.FindInstrumentVersions(ctx, code)
	})
}

// FindInstrumentVersionsByID returns the cached versions of instrumentID
func (c *CachedDimensions) FindInstrumentVersionsByID(ctx context.Context, instrumentID int64) ([]models.Instrument, error) {
	key := c.cache.GenerateCacheKey(CacheKeyInstrumentByID, strconv.FormatInt(instrumentID, 10))
	return c.instruments(ctx, key, func() ([]models.Instrument, error) {
		return c.next.FindInstrumentVersionsByID(ctx, instrumentID)
	})
}

// instruments are cached in their flat record form and rebuilt on read
func (c *CachedDimensions) instruments(ctx context.Context, key string, load func() ([]models.Instrument, error)) ([]models.Instrument, error) {
	var records []models.InstrumentRecord
	if c.lookup(ctx, key, &records) {
		out := make([]models.Instrument, len(records))
		for i, rec := range records {
			out[i] = models.NewInstrument(rec)
		}
		return out, nil
	}

	instruments, err := load()
	if err != nil {
		return nil, err
	}
	records = make([]models.InstrumentRecord, len(instruments))
	for i, inst := range instruments {
		records[i] = models.ToRecord(inst)
	}
	c.store(ctx, key, records)
	return instruments, nil
}

func (c *CachedDimensions) lookup(ctx context.Context, key string, dest interface{}) bool {
	found, err := c.cache.Get(ctx, key, dest)
	if err != nil {
		c.warn(err, key, "Dimension cache read failed")
		return false
	}
	return found
}

func (c *CachedDimensions) store(ctx context.Context, key string, value interface{}) {
	if err := c.cache.Set(ctx, key, value); err != nil {
		c.warn(err, key, "Dimension cache write failed")
	}
}

func (c *CachedDimensions) warn(err error, key, message string) {
	c.logger.WithError(err).WithFields(map[string]interface{}{
		"key":      key,
		"category": string(errors.Categorize(err).Category),
	}).Warn(message)
}
