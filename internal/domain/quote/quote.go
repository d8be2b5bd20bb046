package quote

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusSent            Status = "SENT"
	StatusAccepted        Status = "ACCEPTED"
	StatusRejected        Status = "REJECTED"
	StatusExpired         Status = "EXPIRED"
)

// statuses is the closed set of allowed values. There is no transition
// graph beyond membership: any listed status may move to any other.
var statuses = []Status{
	StatusDraft,
	StatusPendingApproval,
	StatusApproved,
	StatusSent,
	StatusAccepted,
	StatusRejected,
	StatusExpired,
}

func (s Status) Valid() bool {
	for _, known := range statuses {
		if s == known {
			return true
		}
	}
	return false
}

// LineItemConfig is owned exclusively by its line item and is removed with
// it in the same operation.
type LineItemConfig struct {
	Notes   string
	Options map[string]string
}

// LineItem is one priced product entry. Line numbers are 1-based and
// order-significant; after a removal the remaining numbers keep their
// values and the next number is max+1, so numbers are never reused.
type LineItem struct {
	LineNumber      int
	ProductCode     string
	ProductName     string
	Description     string
	Quantity        int
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	LineTotal       decimal.Decimal
	LeadTimeDays    int
	Config          *LineItemConfig
}

type Quote struct {
	ID              int64
	Number          string
	CustomerName    string
	CustomerEmail   string
	CustomerCompany string
	ShippingAddress string
	QuoteDate       time.Time
	ValidUntil      time.Time
	Items           []LineItem

	DiscountPercent decimal.Decimal // quote-level, on top of line discounts
	Subtotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	TaxRate         decimal.Decimal // fraction, e.g. 0.08
	TaxAmount       decimal.Decimal
	TotalAmount     decimal.Decimal

	Status            Status
	Urgency           string
	EstimatedDelivery string
	Notes             string
	Terms             string

	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// ComputeLineTotal applies the line formula:
// unit price x quantity x (1 - discount/100), rounded to cents.
func ComputeLineTotal(unitPrice decimal.Decimal, quantity int, discountPercent decimal.Decimal) decimal.Decimal {
	return unitPrice.
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(one.Sub(discountPercent.Div(hundred))).
		Round(2)
}

// Recompute re-derives every line total and all quote totals from the
// current line items. It never patches totals incrementally.
func (q *Quote) Recompute() {
	subtotal := decimal.Zero
	for i := range q.Items {
		it := &q.Items[i]
		it.LineTotal = ComputeLineTotal(it.UnitPrice, it.Quantity, it.DiscountPercent)
		subtotal = subtotal.Add(it.LineTotal)
	}
	q.Subtotal = subtotal.Round(2)
	q.DiscountAmount = q.Subtotal.Mul(q.DiscountPercent.Div(hundred)).Round(2)
	taxable := q.Subtotal.Sub(q.DiscountAmount)
	q.TaxAmount = taxable.Mul(q.TaxRate).Round(2)
	q.TotalAmount = taxable.Add(q.TaxAmount).Round(2)
}

// CheckInvariants verifies the totals against the line items. A violation
// means the quote must not be observed or persisted.
func (q *Quote) CheckInvariants() error {
	sum := decimal.Zero
	for _, it := range q.Items {
		want := ComputeLineTotal(it.UnitPrice, it.Quantity, it.DiscountPercent)
		if !it.LineTotal.Equal(want) {
			return fmt.Errorf("line %d total %s != %s: %w", it.LineNumber, it.LineTotal, want, ErrComputation)
		}
		sum = sum.Add(it.LineTotal)
	}
	if !q.Subtotal.Equal(sum.Round(2)) {
		return fmt.Errorf("subtotal %s != sum of line totals %s: %w", q.Subtotal, sum, ErrComputation)
	}
	taxable := q.Subtotal.Sub(q.DiscountAmount)
	if !q.TaxAmount.Equal(taxable.Mul(q.TaxRate).Round(2)) {
		return fmt.Errorf("tax amount %s inconsistent: %w", q.TaxAmount, ErrComputation)
	}
	if !q.TotalAmount.Equal(taxable.Add(q.TaxAmount).Round(2)) {
		return fmt.Errorf("total %s inconsistent: %w", q.TotalAmount, ErrComputation)
	}
	return nil
}

// NextLineNumber returns max existing line number + 1.
func (q *Quote) NextLineNumber() int {
	next := 1
	for _, it := range q.Items {
		if it.LineNumber >= next {
			next = it.LineNumber + 1
		}
	}
	return next
}

// Clone returns a deep copy safe to mutate without touching the original.
func (q *Quote) Clone() *Quote {
	cp := *q
	cp.Items = make([]LineItem, len(q.Items))
	copy(cp.Items, q.Items)
	for i := range cp.Items {
		if cfg := cp.Items[i].Config; cfg != nil {
			cfgCopy := *cfg
			if cfg.Options != nil {
				cfgCopy.Options = make(map[string]string, len(cfg.Options))
				for k, v := range cfg.Options {
					cfgCopy.Options[k] = v
				}
			}
			cp.Items[i].Config = &cfgCopy
		}
	}
	return &cp
}
