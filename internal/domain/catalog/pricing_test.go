package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePricingStore struct {
	prices    map[string]PriceRecord
	history   map[string]DiscountHistory
	priceErr  error
	histErr   error
	histCalls int
}

func (f *fakePricingStore) CurrentPrice(_ context.Context, code string) (*PriceRecord, error) {
	if f.priceErr != nil {
		return nil, f.priceErr
	}
	rec, ok := f.prices[code]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakePricingStore) DiscountHistory(_ context.Context, code string, _ int64) (*DiscountHistory, error) {
	f.histCalls++
	if f.histErr != nil {
		return nil, f.histErr
	}
	hist, ok := f.history[code]
	if !ok {
		return nil, nil
	}
	return &hist, nil
}

func catStore() *fakePricingStore {
	return &fakePricingStore{
		prices: map[string]PriceRecord{
			"CAT320-NG": {
				ProductName:  "CAT 320 Next Gen Excavator",
				Category:     "Excavators",
				BasePrice:    decimal.RequireFromString("250000.00"),
				Currency:     "USD",
				LeadTimeDays: 30,
			},
		},
		history: map[string]DiscountHistory{},
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("history average wins over default", func(t *testing.T) {
		store := catStore()
		store.history["CAT320-NG"] = DiscountHistory{
			PurchaseCount: 3,
			AvgDiscount:   decimal.RequireFromString("12.50"),
		}
		r := &Resolver{Store: store}

		p := r.Resolve(ctx, "CAT320-NG", 42)
		assert.Equal(t, "12.5", p.DiscountPercent.String())
		assert.Equal(t, "218750", p.FinalPrice.String())
	})

	t.Run("no history falls back to flat default", func(t *testing.T) {
		r := &Resolver{Store: catStore()}
		p := r.Resolve(ctx, "CAT320-NG", 42)
		assert.Equal(t, "5", p.DiscountPercent.String())
		assert.Equal(t, "237500", p.FinalPrice.String())
	})

	t.Run("anonymous customer skips history lookup", func(t *testing.T) {
		store := catStore()
		r := &Resolver{Store: store}
		p := r.Resolve(ctx, "CAT320-NG", 0)
		assert.Equal(t, "5", p.DiscountPercent.String())
		assert.Equal(t, 0, store.histCalls)
	})

	t.Run("unknown product resolves to fallback pricing", func(t *testing.T) {
		r := &Resolver{Store: catStore()}
		p := r.Resolve(ctx, "NO-SUCH-CODE", 42)
		assert.Equal(t, "100000", p.BasePrice.String())
		assert.True(t, p.DiscountPercent.IsZero())
		assert.Equal(t, 30, p.LeadTimeDays)
		assert.Equal(t, "NO-SUCH-CODE", p.ProductCode)
	})

	t.Run("price lookup error degrades to fallback", func(t *testing.T) {
		store := catStore()
		store.priceErr = errors.New("connection refused")
		r := &Resolver{Store: store}
		p := r.Resolve(ctx, "CAT320-NG", 42)
		assert.Equal(t, "100000", p.BasePrice.String())
		assert.True(t, p.DiscountPercent.IsZero())
	})

	t.Run("history error keeps the real price with zero discount", func(t *testing.T) {
		store := catStore()
		store.histErr = errors.New("timeout")
		r := &Resolver{Store: store}
		p := r.Resolve(ctx, "CAT320-NG", 42)
		assert.Equal(t, "250000", p.BasePrice.String())
		assert.True(t, p.DiscountPercent.IsZero())
		assert.Equal(t, "250000", p.FinalPrice.String())
	})

	t.Run("nil store always falls back", func(t *testing.T) {
		r := &Resolver{}
		p := r.Resolve(ctx, "CAT320-NG", 42)
		assert.Equal(t, "100000", p.BasePrice.String())
	})
}

func TestResolveAll(t *testing.T) {
	r := &Resolver{Store: catStore()}
	got := r.ResolveAll(context.Background(), []string{"CAT320-NG", "UNKNOWN"}, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "CAT320-NG", got[0].ProductCode)
	assert.Equal(t, "UNKNOWN", got[1].ProductCode)
}

func TestVolumeAdjusted(t *testing.T) {
	base := decimal.RequireFromString("250000.00")

	t.Run("below three units no change", func(t *testing.T) {
		assert.True(t, VolumeAdjusted(base, 1).Equal(base))
		assert.True(t, VolumeAdjusted(base, 2).Equal(base))
	})

	t.Run("three and four units get five percent off", func(t *testing.T) {
		want := decimal.RequireFromString("237500.00")
		assert.True(t, VolumeAdjusted(base, 3).Equal(want))
		assert.True(t, VolumeAdjusted(base, 4).Equal(want))
	})

	t.Run("five plus units get ten percent off", func(t *testing.T) {
		want := decimal.RequireFromString("225000.00")
		assert.True(t, VolumeAdjusted(base, 5).Equal(want))
		assert.True(t, VolumeAdjusted(base, 50).Equal(want))
	})

	t.Run("unit price never increases with quantity", func(t *testing.T) {
		prev := VolumeAdjusted(base, 1)
		for qty := 2; qty <= 10; qty++ {
			cur := VolumeAdjusted(base, qty)
			assert.True(t, cur.LessThanOrEqual(prev), "qty %d", qty)
			prev = cur
		}
	})
}
