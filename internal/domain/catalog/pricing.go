package catalog

import (
	"context"
	"log"

	"github.com/shopspring/decimal"
)

// Pricing is the resolved price for one product code. FinalPrice already
// carries the catalog discount; the volume discount is applied separately
// at line-item pricing.
type Pricing struct {
	ProductCode     string
	ProductName     string
	Category        string
	BasePrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	FinalPrice      decimal.Decimal
	Currency        string
	LeadTimeDays    int
}

// PriceRecord is the current catalog price supplied by the pricing store.
type PriceRecord struct {
	ProductName  string
	Category     string
	BasePrice    decimal.Decimal
	Currency     string
	LeadTimeDays int
}

// DiscountHistory aggregates a customer's accepted purchases for a product.
type DiscountHistory struct {
	PurchaseCount int
	AvgDiscount   decimal.Decimal
}

// PricingStore supplies current prices and purchase history. A nil record
// with nil error means the product is unknown to the catalog.
type PricingStore interface {
	CurrentPrice(ctx context.Context, productCode string) (*PriceRecord, error)
	DiscountHistory(ctx context.Context, productCode string, customerID int64) (*DiscountHistory, error)
}

var (
	fallbackBasePrice = decimal.RequireFromString("100000.00")
	defaultDiscount   = decimal.RequireFromString("5.00")
	zeroDiscount      = decimal.Zero

	volumeFactorFive  = decimal.RequireFromString("0.90")
	volumeFactorThree = decimal.RequireFromString("0.95")

	hundred = decimal.NewFromInt(100)
)

const fallbackLeadTimeDays = 30

// Resolver computes ProductPricing per product code. Store may be nil, in
// which case every code resolves to fallback pricing.
type Resolver struct {
	Store PricingStore
}

// Resolve prices a single product code. It never returns an error: a store
// fault is logged and converted into fallback pricing so quote generation
// is not aborted by a pricing lookup. customerID 0 means anonymous.
func (r *Resolver) Resolve(ctx context.Context, productCode string, customerID int64) Pricing {
	if r.Store == nil {
		return fallbackPricing(productCode)
	}
	rec, err := r.Store.CurrentPrice(ctx, productCode)
	if err != nil {
		log.Printf("pricing: current price lookup failed code=%s: %v", productCode, err)
		return fallbackPricing(productCode)
	}
	if rec == nil {
		log.Printf("pricing: product %s not in catalog, using fallback", productCode)
		return fallbackPricing(productCode)
	}

	discount := r.discountFor(ctx, productCode, customerID)
	return Pricing{
		ProductCode:     productCode,
		ProductName:     rec.ProductName,
		Category:        rec.Category,
		BasePrice:       rec.BasePrice,
		DiscountPercent: discount,
		FinalPrice:      applyDiscount(rec.BasePrice, discount),
		Currency:        rec.Currency,
		LeadTimeDays:    rec.LeadTimeDays,
	}
}

// ResolveAll prices every code; the result is index-aligned with codes.
func (r *Resolver) ResolveAll(ctx context.Context, productCodes []string, customerID int64) []Pricing {
	out := make([]Pricing, 0, len(productCodes))
	for _, code := range productCodes {
		out = append(out, r.Resolve(ctx, code, customerID))
	}
	return out
}

// discountFor returns the average discount from the customer's accepted
// purchase history, or the flat default when there is none.
func (r *Resolver) discountFor(ctx context.Context, productCode string, customerID int64) decimal.Decimal {
	if customerID > 0 {
		hist, err := r.Store.DiscountHistory(ctx, productCode, customerID)
		if err != nil {
			log.Printf("pricing: discount history lookup failed code=%s customer=%d: %v", productCode, customerID, err)
			return zeroDiscount
		}
		if hist != nil && hist.PurchaseCount > 0 {
			return hist.AvgDiscount
		}
	}
	return defaultDiscount
}

// VolumeAdjusted applies the quantity-tier price reduction. The tiers are
// multiplicative and independent of the catalog discount.
func VolumeAdjusted(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	switch {
	case quantity >= 5:
		return unitPrice.Mul(volumeFactorFive).Round(2)
	case quantity >= 3:
		return unitPrice.Mul(volumeFactorThree).Round(2)
	}
	return unitPrice
}

func applyDiscount(base, discountPercent decimal.Decimal) decimal.Decimal {
	return base.Mul(decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))).Round(2)
}

func fallbackPricing(productCode string) Pricing {
	return Pricing{
		ProductCode:     productCode,
		ProductName:     "Product " + productCode,
		Category:        "Unknown",
		BasePrice:       fallbackBasePrice,
		DiscountPercent: zeroDiscount,
		FinalPrice:      fallbackBasePrice,
		Currency:        "USD",
		LeadTimeDays:    fallbackLeadTimeDays,
	}
}
