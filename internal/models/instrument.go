package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ibor-valuation/internal/types"
)

// InstrumentHeader holds the attributes every instrument version carries.
// InstrumentID is the stable identity; VersionID identifies the temporal row.
type InstrumentHeader struct {
	VersionID    int64     `json:"versionId"`
	InstrumentID int64     `json:"instrumentId"`
	Code         string    `json:"instrumentCode"`
	Name         string    `json:"instrumentName,omitempty"`
	Exchange     string    `json:"exchangeCode,omitempty"`
	Currency     string    `json:"currencyCode,omitempty"`
	ValidFrom    time.Time `json:"validFrom"`
	ValidTo      time.Time `json:"validTo"`
}

// Header returns the common attributes
func (h InstrumentHeader) Header() InstrumentHeader { return h }

// Covers reports whether the version is valid on the day of asOf
func (h InstrumentHeader) Covers(asOf time.Time) bool {
	return covers(h.ValidFrom, h.ValidTo, asOf)
}

// Instrument is one effective-dated instrument version. The set of
// implementations is closed: Equity, Bond, Futures, Option, FX and Other.
type Instrument interface {
	Header() InstrumentHeader
	Covers(asOf time.Time) bool
	Type() types.InstrumentType
	isInstrument()
}

// Equity is a cash equity
type Equity struct {
	InstrumentHeader
}

// Bond carries fixed income terms
type Bond struct {
	InstrumentHeader
	MaturityDate *time.Time       `json:"maturityDate,omitempty"`
	CouponRate   *decimal.Decimal `json:"couponRate,omitempty"`
}

// Futures carries the listed future's contract terms
type Futures struct {
	InstrumentHeader
	ExpiryDate   *time.Time       `json:"expiryDate,omitempty"`
	ContractSize *decimal.Decimal `json:"contractSize,omitempty"`
}

// Option carries the listed option's contract terms
type Option struct {
	InstrumentHeader
	OptionSymbol string           `json:"optionSymbol,omitempty"`
	Underlying   string           `json:"underlyingSymbol,omitempty"`
	OptionType   string           `json:"optionType,omitempty"`
	Strike       *decimal.Decimal `json:"strikePrice,omitempty"`
	ExpiryDate   *time.Time       `json:"expiryDate,omitempty"`
	Multiplier   *decimal.Decimal `json:"multiplier,omitempty"`
}

// FX is a currency pair instrument
type FX struct {
	InstrumentHeader
	FromCurrency string `json:"fromCurrency,omitempty"`
	ToCurrency   string `json:"toCurrency,omitempty"`
}

// Other is any instrument type without dedicated attributes
type Other struct {
	InstrumentHeader
}

func (Equity) Type() types.InstrumentType  { return types.InstrumentEquity }
func (Bond) Type() types.InstrumentType    { return types.InstrumentBond }
func (Futures) Type() types.InstrumentType { return types.InstrumentFutures }
func (Option) Type() types.InstrumentType  { return types.InstrumentOptions }
func (FX) Type() types.InstrumentType      { return types.InstrumentFX }
func (Other) Type() types.InstrumentType   { return types.InstrumentOther }

func (Equity) isInstrument()  {}
func (Bond) isInstrument()    {}
func (Futures) isInstrument() {}
func (Option) isInstrument()  {}
func (FX) isInstrument()      {}
func (Other) isInstrument()   {}

// The JSON form of every variant is its own fields plus an instrumentType tag.

func (e Equity) MarshalJSON() ([]byte, error) {
	type alias Equity
	return json.Marshal(struct {
		Type types.InstrumentType `json:"instrumentType"`
		alias
	}{e.Type(), alias(e)})
}

func (b Bond) MarshalJSON() ([]byte, error) {
	type alias Bond
	return json.Marshal(struct {
		Type types.InstrumentType `json:"instrumentType"`
		alias
	}{b.Type(), alias(b)})
}

func (f Futures) MarshalJSON() ([]byte, error) {
	type alias Futures
	return json.Marshal(struct {
		Type types.InstrumentType `json:"instrumentType"`
		alias
	}{f.Type(), alias(f)})
}

func (o Option) MarshalJSON() ([]byte, error) {
	type alias Option
	return json.Marshal(struct {
		Type types.InstrumentType `json:"instrumentType"`
		alias
	}{o.Type(), alias(o)})
}

func (x FX) MarshalJSON() ([]byte, error) {
	type alias FX
	return json.Marshal(struct {
		Type types.InstrumentType `json:"instrumentType"`
		alias
	}{x.Type(), alias(x)})
}

func (o Other) MarshalJSON() ([]byte, error) {
	type alias Other
	return json.Marshal(struct {
		Type types.InstrumentType `json:"instrumentType"`
		alias
	}{o.Type(), alias(o)})
}

// InstrumentRecord is the flat storage form of an instrument version: one
// row with nullable columns for every variant.
type InstrumentRecord struct {
	InstrumentHeader
	InstrumentType string           `json:"instrumentType"`
	MaturityDate   *time.Time       `json:"maturityDate,omitempty"`
	CouponRate     *decimal.Decimal `json:"couponRate,omitempty"`
	ExpiryDate     *time.Time       `json:"expiryDate,omitempty"`
	ContractSize   *decimal.Decimal `json:"contractSize,omitempty"`
	OptionSymbol   *string          `json:"optionSymbol,omitempty"`
	Underlying     *string          `json:"underlyingSymbol,omitempty"`
	OptionType     *string          `json:"optionType,omitempty"`
	Strike         *decimal.Decimal `json:"strikePrice,omitempty"`
	Multiplier     *decimal.Decimal `json:"multiplier,omitempty"`
	FromCurrency   *string          `json:"fromCurrency,omitempty"`
	ToCurrency     *string          `json:"toCurrency,omitempty"`
}

// NewInstrument builds the variant named by r.InstrumentType, keeping only
// the columns that belong to it. Unknown types become Other.
func NewInstrument(r InstrumentRecord) Instrument {
	h := r.InstrumentHeader
	switch types.ParseInstrumentType(r.InstrumentType) {
	case types.InstrumentEquity:
		return Equity{InstrumentHeader: h}
	case types.InstrumentBond:
		return Bond{InstrumentHeader: h, MaturityDate: r.MaturityDate, CouponRate: r.CouponRate}
	case types.InstrumentFutures:
		return Futures{InstrumentHeader: h, ExpiryDate: r.ExpiryDate, ContractSize: r.ContractSize}
	case types.InstrumentOptions:
		return Option{
			InstrumentHeader: h,
			OptionSymbol:     deref(r.OptionSymbol),
			Underlying:       deref(r.Underlying),
			OptionType:       deref(r.OptionType),
			Strike:           r.Strike,
			ExpiryDate:       r.ExpiryDate,
			Multiplier:       r.Multiplier,
		}
	case types.InstrumentFX:
		return FX{InstrumentHeader: h, FromCurrency: deref(r.FromCurrency), ToCurrency: deref(r.ToCurrency)}
	default:
		return Other{InstrumentHeader: h}
	}
}

// ToRecord flattens an instrument back into its storage form
func ToRecord(inst Instrument) InstrumentRecord {
	r := InstrumentRecord{InstrumentHeader: inst.Header(), InstrumentType: string(inst.Type())}
	switch v := inst.(type) {
	case Equity, Other:
	case Bond:
		r.MaturityDate, r.CouponRate = v.MaturityDate, v.CouponRate
	case Futures:
		r.ExpiryDate, r.ContractSize = v.ExpiryDate, v.ContractSize
	case Option:
		r.OptionSymbol = ref(v.OptionSymbol)
		r.Underlying = ref(v.Underlying)
		r.OptionType = ref(v.OptionType)
		r.Strike, r.ExpiryDate, r.Multiplier = v.Strike, v.ExpiryDate, v.Multiplier
	case FX:
		r.FromCurrency, r.ToCurrency = ref(v.FromCurrency), ref(v.ToCurrency)
	}
	return r
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
