package service

import (
	"strings"
	"time"

	"github.com/ibor-valuation/internal/errors"
	"github.com/ibor-valuation/internal/types"
)

// Options are the engine policy settings shared by the services
type Options struct {
	PreferredPriceSource string
	PivotCurrency        string
	DefaultPageSize      int
	MaxPageSize          int
	MaxParallel          int
	DefaultCashHorizon   int
	// MaxPriceRangeDays bounds the from..to span of a price series request
	MaxPriceRangeDays int
}

// DefaultOptions returns the settings used when none are configured
func DefaultOptions() Options {
	return Options{
		PreferredPriceSource: DefaultPreferredSource,
		PivotCurrency:        DefaultPivotCurrency,
		DefaultPageSize:      100,
		MaxPageSize:          500,
		MaxParallel:          8,
		DefaultCashHorizon:   7,
		MaxPriceRangeDays:    3660,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PreferredPriceSource == "" {
		o.PreferredPriceSource = d.PreferredPriceSource
	}
	if o.PivotCurrency == "" {
		o.PivotCurrency = d.PivotCurrency
	}
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = d.DefaultPageSize
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = d.MaxPageSize
	}
	if o.MaxParallel <= 0 {
		o.MaxParallel = d.MaxParallel
	}
	if o.DefaultCashHorizon < 0 {
		o.DefaultCashHorizon = d.DefaultCashHorizon
	}
	if o.MaxPriceRangeDays <= 0 {
		o.MaxPriceRangeDays = d.MaxPriceRangeDays
	}
	return o
}

// Engine wires the valuation components over one fact store
type Engine struct {
	Dimensions *DimensionResolver
	Quantities *QuantityAssembler
	Prices     *PriceSelector
	FX         *FXRateResolver
	Converter  *CurrencyConverter
	Options    Options
}

// NewEngine builds every component over store
func NewEngine(store FactStore, opts Options) *Engine {
	opts = opts.withDefaults()
	fx := NewFXRateResolver(store, opts.PivotCurrency)
	return &Engine{
		Dimensions: NewDimensionResolver(store),
		Quantities: NewQuantityAssembler(store),
		Prices:     NewPriceSelector(store, opts.PreferredPriceSource),
		FX:         fx,
		Converter:  NewCurrencyConverter(fx),
		Options:    opts,
	}
}

func requireCode(param, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.NewInvalidParameterError(param, "must not be blank")
	}
	return value, nil
}

func requireDate(param string, value time.Time) (time.Time, error) {
	if value.IsZero() {
		return time.Time{}, errors.NewInvalidParameterError(param, "is required")
	}
	return types.Day(value), nil
}
