package gofpdf

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiline/go_backend/internal/domain/quote"
)

func sampleQuote() *quote.Quote {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	q := &quote.Quote{
		Number:            "QT-20260301-0001",
		CustomerName:      "Dana Reyes",
		CustomerCompany:   "Apex Construction LLC",
		ShippingAddress:   "4500 Quarry Road Boulder, CO 80301",
		QuoteDate:         day,
		ValidUntil:        day.AddDate(0, 0, 30),
		TaxRate:           decimal.RequireFromString("0.08"),
		Status:            quote.StatusDraft,
		Urgency:           "urgent",
		EstimatedDelivery: "10 days (by March 11, 2026)",
		Notes:             "Generated from customer conversation.",
		Terms:             quote.StandardTerms,
		Items: []quote.LineItem{
			{
				LineNumber:      1,
				ProductCode:     "CAT320-NG",
				ProductName:     "CAT 320 Next Gen Excavator",
				Quantity:        2,
				UnitPrice:       decimal.RequireFromString("250000.00"),
				DiscountPercent: decimal.RequireFromString("12.5"),
			},
		},
	}
	q.Recompute()
	return q
}

func TestGenerate(t *testing.T) {
	gen := New()

	data, err := gen.Generate(sampleQuote())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF-", string(data[:5]))
}

func TestGenerateEmptyQuote(t *testing.T) {
	gen := New()
	q := &quote.Quote{
		Number:    "QT-20260301-0002",
		QuoteDate: time.Now(),
		Status:    quote.StatusDraft,
	}
	q.Recompute()

	data, err := gen.Generate(q)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
