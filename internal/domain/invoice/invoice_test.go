package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "INV-2025-00042", FormatNumber(2025, 42))
	assert.Equal(t, "INV-2026-123456", FormatNumber(2026, 123456))
}

func TestSplitVAT(t *testing.T) {
	tests := []struct {
		name         string
		total        int64
		percent      string
		wantSubtotal int64
		wantVAT      int64
	}{
		{"18 percent round total", 118000, "18", 100000, 18000},
		{"18 percent odd total", 14990, "18", 12703, 2287},
		{"17 percent", 117, "17", 100, 17},
		{"zero vat", 5000, "0", 5000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, vat := SplitVAT(money.New(tt.total, "ILS"), decimal.RequireFromString(tt.percent))
			assert.Equal(t, tt.wantSubtotal, sub.Amount())
			assert.Equal(t, tt.wantVAT, vat.Amount())
			assert.Equal(t, tt.total, sub.Amount()+vat.Amount())
		})
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	inv, err := NewInvoice(NewInvoiceParams{
		Number:     FormatNumber(2025, 1),
		PaymentID:  10,
		ContactID:  3,
		Total:      money.New(118000, "ILS"),
		VATPercent: decimal.NewFromInt(18),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusIssued, inv.Status())
	assert.Equal(t, int64(18000), inv.VAT().Amount())

	require.NoError(t, inv.MarkCredited())
	assert.Error(t, inv.Cancel())

	_, err = NewInvoice(NewInvoiceParams{Number: "INV-1", PaymentID: 1, ContactID: 1, Total: money.New(100, "ILS"), VATPercent: decimal.NewFromInt(-1)})
	assert.Error(t, err)
}

func TestParseNumber(t *testing.T) {
	year, seq, err := ParseNumber(FormatNumber(2025, 42))
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, 42, seq)

	_, _, err = ParseNumber("42")
	assert.Error(t, err)
}
