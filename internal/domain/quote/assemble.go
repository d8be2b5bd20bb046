package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"equiline/go_backend/internal/domain/catalog"
	"equiline/go_backend/internal/domain/conversation"
)

// DefaultTaxRate is applied unless the request overrides it.
var DefaultTaxRate = decimal.RequireFromString("0.08")

// DefaultValidityDays is the validity window added to the quote date.
const DefaultValidityDays = 30

// AssembleRequest carries everything needed to build a DRAFT quote.
// Pricing must be index-aligned with Summary.Products.
type AssembleRequest struct {
	Summary conversation.Summary
	Pricing []catalog.Pricing

	CustomerName    string
	CustomerEmail   string
	CustomerCompany string

	DiscountPercent decimal.Decimal // quote-level, optional
	TaxRate         decimal.Decimal // fraction; zero means DefaultTaxRate
	ValidityDays    int             // zero means DefaultValidityDays
	Notes           string
	Now             time.Time
}

// Assemble builds a complete priced quote in status DRAFT. The quote is
// fully derived before it is returned: line items, subtotal, discount, tax
// and total are never observable separately. The Number is left empty and
// assigned by the store on insert.
func Assemble(req AssembleRequest) (*Quote, error) {
	if len(req.Summary.Products) == 0 {
		return nil, fmt.Errorf("no products to quote: %w", ErrValidation)
	}
	if len(req.Pricing) != len(req.Summary.Products) {
		return nil, fmt.Errorf("pricing count %d != product count %d: %w",
			len(req.Pricing), len(req.Summary.Products), ErrValidation)
	}
	if req.DiscountPercent.IsNegative() || req.DiscountPercent.GreaterThan(hundred) {
		return nil, fmt.Errorf("discount percent out of range: %w", ErrValidation)
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	taxRate := req.TaxRate
	if taxRate.IsZero() {
		taxRate = DefaultTaxRate
	}
	validity := req.ValidityDays
	if validity <= 0 {
		validity = DefaultValidityDays
	}

	quantities := req.Summary.PairedQuantities()
	totalQty := 0
	items := make([]LineItem, 0, len(req.Summary.Products))
	for i := range req.Summary.Products {
		qty := quantities[i]
		if qty <= 0 {
			return nil, fmt.Errorf("quantity must be positive on line %d: %w", i+1, ErrValidation)
		}
		p := req.Pricing[i]
		unit := catalog.VolumeAdjusted(p.BasePrice, qty)
		items = append(items, LineItem{
			LineNumber:      i + 1,
			ProductCode:     p.ProductCode,
			ProductName:     p.ProductName,
			Quantity:        qty,
			UnitPrice:       unit,
			DiscountPercent: p.DiscountPercent,
			LeadTimeDays:    p.LeadTimeDays,
		})
		totalQty += qty
	}

	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		notes = req.Summary.Digest()
	}

	q := &Quote{
		CustomerName:      req.CustomerName,
		CustomerEmail:     req.CustomerEmail,
		CustomerCompany:   req.CustomerCompany,
		ShippingAddress:   req.Summary.ShippingAddress,
		QuoteDate:         now,
		ValidUntil:        now.AddDate(0, 0, validity),
		Items:             items,
		DiscountPercent:   req.DiscountPercent,
		TaxRate:           taxRate,
		Status:            StatusDraft,
		Urgency:           req.Summary.Urgency,
		EstimatedDelivery: EstimateDelivery(req.Summary.Urgency, totalQty, now),
		Notes:             notes,
		Terms:             StandardTerms,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	q.Recompute()
	if err := q.CheckInvariants(); err != nil {
		return nil, err
	}
	return q, nil
}
