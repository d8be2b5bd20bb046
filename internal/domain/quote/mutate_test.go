package quote_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiline/go_backend/internal/domain/catalog"
	"equiline/go_backend/internal/domain/conversation"
	"equiline/go_backend/internal/domain/quote"
	"equiline/go_backend/internal/infra/store/memory"
)

func dd(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedQuote(t *testing.T, store quote.Store) *quote.Quote {
	t.Helper()
	q, err := quote.Assemble(quote.AssembleRequest{
		Summary: conversation.Summary{
			Products:   []string{"CAT 320 Excavator"},
			Quantities: []int{2},
			Urgency:    conversation.UrgencyNormal,
		},
		Pricing: []catalog.Pricing{{
			ProductCode:     "CAT320-NG",
			ProductName:     "CAT 320 Next Gen Excavator",
			BasePrice:       dd("250000.00"),
			DiscountPercent: dd("12.5"),
			Currency:        "USD",
			LeadTimeDays:    30,
		}},
		CustomerName: "Dana Reyes",
		Now:          time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), q))
	require.NotEmpty(t, q.Number)
	return q
}

func TestEngineAddLineItem(t *testing.T) {
	ctx := context.Background()
	store := memory.New(quote.SchemeDaily)
	engine := quote.Engine{Store: store}
	q := seedQuote(t, store)

	updated, err := engine.AddLineItem(ctx, q.Number, quote.AddItemRequest{
		ProductCode: "KOM-WA380",
		ProductName: "Komatsu WA380 Wheel Loader",
		Quantity:    1,
		UnitPrice:   dd("180000.00"),
	})
	require.NoError(t, err)

	require.Len(t, updated.Items, 2)
	assert.Equal(t, 2, updated.Items[1].LineNumber)
	// 437500 + 180000, then 8% tax
	assert.True(t, updated.Subtotal.Equal(dd("617500.00")), "subtotal %s", updated.Subtotal)
	assert.True(t, updated.TotalAmount.Equal(dd("666900.00")), "total %s", updated.TotalAmount)
	require.NoError(t, updated.CheckInvariants())
}

func TestEngineAddLineItemValidation(t *testing.T) {
	ctx := context.Background()
	store := memory.New(quote.SchemeDaily)
	engine := quote.Engine{Store: store}
	q := seedQuote(t, store)

	cases := []struct {
		name string
		req  quote.AddItemRequest
	}{
		{"no name or code", quote.AddItemRequest{Quantity: 1, UnitPrice: dd("10")}},
		{"zero quantity", quote.AddItemRequest{ProductName: "x", UnitPrice: dd("10")}},
		{"negative price", quote.AddItemRequest{ProductName: "x", Quantity: 1, UnitPrice: dd("-10")}},
		{"discount above hundred", quote.AddItemRequest{ProductName: "x", Quantity: 1, UnitPrice: dd("10"), DiscountPercent: dd("101")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.AddLineItem(ctx, q.Number, tc.req)
			assert.ErrorIs(t, err, quote.ErrValidation)
		})
	}

	// Nothing was persisted by the rejected requests.
	got, err := store.Get(ctx, q.Number)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
}

func TestEngineRemoveLineItem(t *testing.T) {
	ctx := context.Background()
	store := memory.New(quote.SchemeDaily)
	engine := quote.Engine{Store: store}
	q := seedQuote(t, store)
	before := q.TotalAmount

	t.Run("add then remove restores totals", func(t *testing.T) {
		added, err := engine.AddLineItem(ctx, q.Number, quote.AddItemRequest{
			ProductName: "Komatsu WA380 Wheel Loader",
			Quantity:    1,
			UnitPrice:   dd("180000.00"),
		})
		require.NoError(t, err)
		assert.False(t, added.TotalAmount.Equal(before))

		removed, err := engine.RemoveLineItem(ctx, q.Number, added.Items[1].LineNumber)
		require.NoError(t, err)
		assert.True(t, removed.TotalAmount.Equal(before), "total %s want %s", removed.TotalAmount, before)
		require.NoError(t, removed.CheckInvariants())
	})

	t.Run("remaining lines keep their numbers", func(t *testing.T) {
		_, err := engine.AddLineItem(ctx, q.Number, quote.AddItemRequest{
			ProductName: "Loader", Quantity: 1, UnitPrice: dd("100.00"),
		})
		require.NoError(t, err)
		three, err := engine.AddLineItem(ctx, q.Number, quote.AddItemRequest{
			ProductName: "Dozer", Quantity: 1, UnitPrice: dd("200.00"),
		})
		require.NoError(t, err)
		require.Len(t, three.Items, 3)

		// drop the middle line
		after, err := engine.RemoveLineItem(ctx, q.Number, 2)
		require.NoError(t, err)
		require.Len(t, after.Items, 2)
		assert.Equal(t, 1, after.Items[0].LineNumber)
		assert.Equal(t, 3, after.Items[1].LineNumber)

		// the freed number is never reused
		next, err := engine.AddLineItem(ctx, q.Number, quote.AddItemRequest{
			ProductName: "Grader", Quantity: 1, UnitPrice: dd("300.00"),
		})
		require.NoError(t, err)
		assert.Equal(t, 4, next.Items[2].LineNumber)
	})

	t.Run("unknown line number", func(t *testing.T) {
		_, err := engine.RemoveLineItem(ctx, q.Number, 99)
		assert.ErrorIs(t, err, quote.ErrNotFound)
	})

	t.Run("unknown quote", func(t *testing.T) {
		_, err := engine.RemoveLineItem(ctx, "QT-19700101-0001", 1)
		assert.ErrorIs(t, err, quote.ErrNotFound)
	})
}

func TestEngineSetStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.New(quote.SchemeDaily)
	engine := quote.Engine{Store: store}
	q := seedQuote(t, store)

	t.Run("valid transition", func(t *testing.T) {
		updated, err := engine.SetStatus(ctx, q.Number, quote.StatusSent)
		require.NoError(t, err)
		assert.Equal(t, quote.StatusSent, updated.Status)
	})

	t.Run("invalid status leaves quote unchanged", func(t *testing.T) {
		_, err := engine.SetStatus(ctx, q.Number, quote.Status("CANCELLED"))
		assert.ErrorIs(t, err, quote.ErrValidation)

		got, err := store.Get(ctx, q.Number)
		require.NoError(t, err)
		assert.Equal(t, quote.StatusSent, got.Status)
	})
}

func TestStoreAssignsDistinctDailyNumbers(t *testing.T) {
	store := memory.New(quote.SchemeDaily)
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		q := seedQuote(t, store)
		assert.True(t, strings.HasPrefix(q.Number, "QT-20260301-"), q.Number)
		assert.False(t, seen[q.Number], "duplicate %s", q.Number)
		seen[q.Number] = true
	}
	assert.True(t, seen["QT-20260301-0001"])
	assert.True(t, seen["QT-20260301-0005"])
}
