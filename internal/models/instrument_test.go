package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibor-valuation/internal/types"
)

func header(code string) InstrumentHeader {
	return InstrumentHeader{
		VersionID:    1,
		InstrumentID: 10,
		Code:         code,
		Currency:     "USD",
		ValidFrom:    types.Date(2024, time.January, 1),
		ValidTo:      OpenEnded,
	}
}

func TestNewInstrumentKeepsOnlyVariantFields(t *testing.T) {
	size := decimal.NewFromInt(50)
	mult := decimal.NewFromInt(100)
	rec := InstrumentRecord{
		InstrumentHeader: header("ES-H5"),
		InstrumentType:   "futures",
		ContractSize:     &size,
		Multiplier:       &mult,
	}

	inst := NewInstrument(rec)
	fut, ok := inst.(Futures)
	require.True(t, ok, "expected Futures, got %T", inst)
	assert.True(t, fut.ContractSize.Equal(size))
	assert.Equal(t, types.InstrumentFutures, fut.Type())
	assert.Nil(t, ToRecord(fut).Multiplier)
}

func TestNewInstrumentUnknownTypeIsOther(t *testing.T) {
	inst := NewInstrument(InstrumentRecord{InstrumentHeader: header("SWAP-1"), InstrumentType: "IRS"})

	_, ok := inst.(Other)
	assert.True(t, ok)
	assert.Equal(t, "SWAP-1", inst.Header().Code)
}

func TestRecordRoundTripForEveryVariant(t *testing.T) {
	strike := decimal.RequireFromString("125.5")
	expiry := types.Date(2025, time.March, 21)
	coupon := decimal.RequireFromString("0.0425")

	variants := []Instrument{
		Equity{InstrumentHeader: header("EQ-IBM")},
		Bond{InstrumentHeader: header("BD-UST"), MaturityDate: &expiry, CouponRate: &coupon},
		Option{InstrumentHeader: header("OPT-1"), OptionSymbol: "IBM250321C125", Underlying: "IBM", OptionType: "CALL", Strike: &strike, ExpiryDate: &expiry},
		FX{InstrumentHeader: header("EURUSD"), FromCurrency: "EUR", ToCurrency: "USD"},
		Other{InstrumentHeader: header("X")},
	}

	for _, v := range variants {
		assert.Equal(t, v, NewInstrument(ToRecord(v)), "%T", v)
	}
}

func TestInstrumentJSONCarriesTypeTag(t *testing.T) {
	expiry := types.Date(2025, time.March, 21)
	raw, err := json.Marshal(Futures{InstrumentHeader: header("ES-H5"), ExpiryDate: &expiry})
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "FUTURES", out["instrumentType"])
	assert.Equal(t, "ES-H5", out["instrumentCode"])
	assert.Contains(t, out, "expiryDate")
	assert.NotContains(t, out, "strikePrice")
}

func TestCoversIsInclusive(t *testing.T) {
	p := PortfolioVersion{
		ValidFrom: types.Date(2025, time.January, 1),
		ValidTo:   types.Date(2025, time.January, 31),
	}

	assert.True(t, p.Covers(types.Date(2025, time.January, 1)))
	assert.True(t, p.Covers(time.Date(2025, 1, 31, 18, 0, 0, 0, time.UTC)))
	assert.False(t, p.Covers(types.Date(2025, time.February, 1)))
	assert.False(t, p.Covers(types.Date(2024, time.December, 31)))
}
