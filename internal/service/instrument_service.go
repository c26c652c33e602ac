package service

import (
	"context"
	"time"

	"github.com/ibor-valuation/internal/models"
)

// InstrumentService looks up instrument versions
type InstrumentService struct {
	engine *Engine
}

// NewInstrumentService creates a new instrument service
func NewInstrumentService(engine *Engine) *InstrumentService {
	return &InstrumentService{engine: engine}
}

// InstrumentAsOf returns the version of code valid on asOf
func (s *InstrumentService) InstrumentAsOf(ctx context.Context, code string, asOf time.Time) (models.Instrument, error) {
	code, err := requireCode("instrumentCode", code)
	if err != nil {
		return nil, err
	}
	if asOf, err = requireDate("asOf", asOf); err != nil {
		return nil, err
	}
	return s.engine.Dimensions.ResolveInstrument(ctx, code, asOf)
}
