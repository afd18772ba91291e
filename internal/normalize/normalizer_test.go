package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfuentes/insider-scout/internal/common"
	"github.com/mfuentes/insider-scout/internal/model"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func validRaw() model.RawFiling {
	return model.RawFiling{
		FilingDate:       "2025-06-13 09:31:02",
		TradeDate:        "2025-06-12",
		Ticker:           "acme",
		CompanyName:      "Acme Corp",
		InsiderName:      "Doe Jane",
		Title:            "CEO",
		TransactionType:  "P - Purchase",
		Price:            "$10.50",
		Quantity:         "+100,000",
		SharesOwned:      "1,250,000",
		OwnershipChange:  "+9%",
		TransactionValue: "+$1,050,000",
	}
}

func TestNormalize(t *testing.T) {
	n := New(testNow)

	filing, err := n.Normalize(validRaw())
	require.NoError(t, err)

	assert.Equal(t, "ACME", filing.Ticker)
	assert.Equal(t, "Doe Jane", filing.InsiderName)
	assert.InDelta(t, 10.50, filing.Price, 0.001)
	assert.InDelta(t, 100000, filing.Quantity, 0.001)
	assert.InDelta(t, 1050000, filing.TransactionValue, 0.001)
	assert.InDelta(t, 9, filing.OwnershipChange, 0.001)
	assert.Equal(t, 3, filing.DaysSinceTrade)
	assert.Equal(t, time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC), filing.FilingDate)
	assert.True(t, filing.IsPurchase())
}

func TestNormalizeRejectsInvalidRows(t *testing.T) {
	tests := []struct {
		mutate func(*model.RawFiling)
		name   string
	}{
		{name: "empty ticker", mutate: func(r *model.RawFiling) { r.Ticker = "  " }},
		{name: "ticker too long", mutate: func(r *model.RawFiling) { r.Ticker = "TOOLONG" }},
		{name: "zero value", mutate: func(r *model.RawFiling) { r.TransactionValue = "$0" }},
		{name: "unparseable value", mutate: func(r *model.RawFiling) { r.TransactionValue = "??" }},
		{name: "n/a value", mutate: func(r *model.RawFiling) { r.TransactionValue = "N/A" }},
		{name: "zero quantity", mutate: func(r *model.RawFiling) { r.Quantity = "0" }},
	}

	n := New(testNow)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)
			_, err := n.Normalize(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidRecord), "expected ErrInvalidRecord, got %v", err)
		})
	}
}

func TestNormalizeUnparseableDateGetsSentinel(t *testing.T) {
	n := New(testNow)

	raw := validRaw()
	raw.TradeDate = "soon"

	filing, err := n.Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, model.StaleDaysSentinel, filing.DaysSinceTrade)
	assert.True(t, filing.TradeDate.IsZero())
}

func TestNormalizeUSFormatDate(t *testing.T) {
	n := New(testNow)

	raw := validRaw()
	raw.TradeDate = "06/01/2025"

	filing, err := n.Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, 14, filing.DaysSinceTrade)
}

func TestNormalizeFutureDateClampsToZero(t *testing.T) {
	n := New(testNow)

	raw := validRaw()
	raw.TradeDate = "2025-06-20"

	filing, err := n.Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, 0, filing.DaysSinceTrade)
}

func TestNormalizeAllDropsInvalidAndDuplicates(t *testing.T) {
	n := New(testNow)

	good := validRaw()
	dup := validRaw()
	bad := validRaw()
	bad.Ticker = ""
	other := validRaw()
	other.InsiderName = "Smith John"

	filings, invalid, duplicates := n.NormalizeAll([]model.RawFiling{good, dup, bad, other})

	assert.Len(t, filings, 2)
	assert.Equal(t, 1, invalid)
	assert.Equal(t, 1, duplicates)
}

func TestNormalizeAllEmptyInput(t *testing.T) {
	n := New(testNow)

	filings, invalid, duplicates := n.NormalizeAll(nil)
	assert.Empty(t, filings)
	assert.Zero(t, invalid)
	assert.Zero(t, duplicates)
}
