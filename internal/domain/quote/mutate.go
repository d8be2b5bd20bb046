package quote

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Engine applies line-item and status mutations to stored quotes. All
// mutations go through Store.Mutate, so they are serialized per quote and
// either apply entirely or not at all.
type Engine struct {
	Store Store
}

// AddItemRequest describes a line item to append. Either a catalog product
// (code + name + price from the resolver) or an ad hoc entry (name + price)
// is acceptable.
type AddItemRequest struct {
	ProductCode     string
	ProductName     string
	Description     string
	Quantity        int
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	LeadTimeDays    int
	Config          *LineItemConfig
}

func (r AddItemRequest) validate() error {
	if strings.TrimSpace(r.ProductName) == "" && strings.TrimSpace(r.ProductCode) == "" {
		return fmt.Errorf("product name or code is required: %w", ErrValidation)
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive: %w", ErrValidation)
	}
	if r.UnitPrice.IsNegative() {
		return fmt.Errorf("unit price must not be negative: %w", ErrValidation)
	}
	if r.DiscountPercent.IsNegative() || r.DiscountPercent.GreaterThan(hundred) {
		return fmt.Errorf("discount percent out of range: %w", ErrValidation)
	}
	return nil
}

// AddLineItem appends a line item with the next sequential line number and
// recomputes all totals from scratch.
func (e *Engine) AddLineItem(ctx context.Context, number string, req AddItemRequest) (*Quote, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	return e.Store.Mutate(ctx, number, func(q *Quote) error {
		name := strings.TrimSpace(req.ProductName)
		if name == "" {
			name = "Product " + strings.TrimSpace(req.ProductCode)
		}
		q.Items = append(q.Items, LineItem{
			LineNumber:      q.NextLineNumber(),
			ProductCode:     strings.TrimSpace(req.ProductCode),
			ProductName:     name,
			Description:     req.Description,
			Quantity:        req.Quantity,
			UnitPrice:       req.UnitPrice,
			DiscountPercent: req.DiscountPercent,
			LeadTimeDays:    req.LeadTimeDays,
			Config:          req.Config,
		})
		q.Recompute()
		return q.CheckInvariants()
	})
}

// RemoveLineItem deletes the named line item and its attached config, then
// recomputes totals. Remaining line numbers are not renumbered.
func (e *Engine) RemoveLineItem(ctx context.Context, number string, lineNumber int) (*Quote, error) {
	if lineNumber <= 0 {
		return nil, fmt.Errorf("line number must be positive: %w", ErrValidation)
	}
	return e.Store.Mutate(ctx, number, func(q *Quote) error {
		idx := -1
		for i, it := range q.Items {
			if it.LineNumber == lineNumber {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("line item %d: %w", lineNumber, ErrNotFound)
		}
		q.Items = append(q.Items[:idx], q.Items[idx+1:]...)
		q.Recompute()
		return q.CheckInvariants()
	})
}

// SetStatus moves the quote to the requested status. Values outside the
// closed set are rejected and the quote is left unchanged.
func (e *Engine) SetStatus(ctx context.Context, number string, status Status) (*Quote, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrValidation)
	}
	return e.Store.Mutate(ctx, number, func(q *Quote) error {
		q.Status = status
		return q.CheckInvariants()
	})
}
