package quotes

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"equiline/go_backend/internal/domain/ai/narrative"
	"equiline/go_backend/internal/domain/catalog"
	"equiline/go_backend/internal/domain/conversation"
	"equiline/go_backend/internal/domain/quote"
	"equiline/go_backend/internal/domain/quote/pdf"
)

// Service owns the conversation-to-quote flow and all quote mutations.
// External work (pricing lookups, narrative generation) happens before the
// store transaction, so no quote is locked while waiting on a collaborator.
type Service struct {
	Store     quote.Store
	Pricing   *catalog.Resolver
	Narrative narrative.Generator
	PDF       pdf.Generator

	TaxRate      decimal.Decimal
	ValidityDays int
	Currency     string

	engine quote.Engine
}

func New(store quote.Store, pricing *catalog.Resolver, gen narrative.Generator, pdfGen pdf.Generator, taxRate decimal.Decimal, validityDays int, currency string) *Service {
	if currency == "" {
		currency = "USD"
	}
	return &Service{
		Store:        store,
		Pricing:      pricing,
		Narrative:    gen,
		PDF:          pdfGen,
		TaxRate:      taxRate,
		ValidityDays: validityDays,
		Currency:     currency,
		engine:       quote.Engine{Store: store},
	}
}

// ConversationInput is one customer conversation plus optional identity.
type ConversationInput struct {
	Subject         string
	Body            string
	SenderName      string
	SenderEmail     string
	CustomerID      int64
	DiscountPercent decimal.Decimal
}

// GenerateFromConversation runs the full pipeline: extract, resolve codes,
// price, narrate, assemble, persist. Only validation of the assembled quote
// can fail it; collaborator faults degrade to fallbacks.
func (s *Service) GenerateFromConversation(ctx context.Context, reqID string, in ConversationInput) (*quote.Quote, error) {
	if strings.TrimSpace(in.Body) == "" {
		return nil, fmt.Errorf("conversation body is required: %w", quote.ErrValidation)
	}

	summary := conversation.Analyze(in.Subject, in.Body, in.SenderName)
	codes := catalog.ResolveCodes(summary.Products)
	log.Printf("quotes req=%s extracted products=%d urgency=%s codes=%s",
		reqID, len(summary.Products), summary.Urgency, strings.Join(codes, ","))

	pricing := s.Pricing.ResolveAll(ctx, codes, in.CustomerID)

	description := narrative.GenericDescription
	if s.Narrative != nil {
		narStart := time.Now()
		if desc, err := s.Narrative.QuoteDescription(ctx, summary, pricing); err != nil {
			log.Printf("quotes req=%s narrative failed, using generic: %v", reqID, err)
		} else {
			description = desc
			log.Printf("quotes req=%s narrative ok len=%d took=%s", reqID, len(desc), time.Since(narStart))
		}
	}

	customerName := summary.CustomerName
	if customerName == "" {
		customerName = "Customer"
	}

	q, err := quote.Assemble(quote.AssembleRequest{
		Summary:         summary,
		Pricing:         pricing,
		CustomerName:    customerName,
		CustomerEmail:   strings.TrimSpace(in.SenderEmail),
		CustomerCompany: summary.CustomerCompany,
		DiscountPercent: in.DiscountPercent,
		TaxRate:         s.TaxRate,
		ValidityDays:    s.ValidityDays,
		Notes:           description + "\n\n" + summary.Digest(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Store.Create(ctx, q); err != nil {
		return nil, err
	}
	log.Printf("quotes req=%s generated number=%s items=%d total=%s",
		reqID, q.Number, len(q.Items), q.TotalAmount)
	return q, nil
}

// ExplicitItem is one caller-specified line for direct quote creation.
// UnitPrice nil means "resolve from the catalog by product code".
type ExplicitItem struct {
	ProductCode     string
	ProductName     string
	Description     string
	Quantity        int
	UnitPrice       *decimal.Decimal
	DiscountPercent decimal.Decimal
}

// ExplicitInput creates a quote without a conversation.
type ExplicitInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerCompany string
	ShippingAddress string
	CustomerID      int64
	DiscountPercent decimal.Decimal
	Notes           string
	Items           []ExplicitItem
}

// GenerateExplicit assembles and persists a quote from explicit line items.
func (s *Service) GenerateExplicit(ctx context.Context, reqID string, in ExplicitInput) (*quote.Quote, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("at least one line item is required: %w", quote.ErrValidation)
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, fmt.Errorf("customer name is required: %w", quote.ErrValidation)
	}

	products := make([]string, 0, len(in.Items))
	quantities := make([]int, 0, len(in.Items))
	pricing := make([]catalog.Pricing, 0, len(in.Items))
	for i, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive on item %d: %w", i+1, quote.ErrValidation)
		}
		p := s.priceExplicitItem(ctx, it)
		products = append(products, p.ProductName)
		quantities = append(quantities, it.Quantity)
		pricing = append(pricing, p)
	}

	q, err := quote.Assemble(quote.AssembleRequest{
		Summary: conversation.Summary{
			Products:        products,
			Quantities:      quantities,
			Urgency:         conversation.UrgencyNormal,
			ShippingAddress: in.ShippingAddress,
		},
		Pricing:         pricing,
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		CustomerCompany: in.CustomerCompany,
		DiscountPercent: in.DiscountPercent,
		TaxRate:         s.TaxRate,
		ValidityDays:    s.ValidityDays,
		Notes:           in.Notes,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Store.Create(ctx, q); err != nil {
		return nil, err
	}
	log.Printf("quotes req=%s created number=%s items=%d total=%s",
		reqID, q.Number, len(q.Items), q.TotalAmount)
	return q, nil
}

func (s *Service) priceExplicitItem(ctx context.Context, it ExplicitItem) catalog.Pricing {
	if it.UnitPrice != nil {
		name := strings.TrimSpace(it.ProductName)
		if name == "" {
			name = "Product " + strings.TrimSpace(it.ProductCode)
		}
		return catalog.Pricing{
			ProductCode:     strings.TrimSpace(it.ProductCode),
			ProductName:     name,
			BasePrice:       *it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			FinalPrice:      *it.UnitPrice,
			Currency:        s.Currency,
		}
	}
	code := strings.TrimSpace(it.ProductCode)
	if code == "" {
		code = catalog.ResolveCode(it.ProductName)
	}
	p := s.Pricing.Resolve(ctx, code, 0)
	if name := strings.TrimSpace(it.ProductName); name != "" {
		p.ProductName = name
	}
	if !it.DiscountPercent.IsZero() {
		p.DiscountPercent = it.DiscountPercent
	}
	return p
}

// AddItemInput mirrors quote.AddItemRequest at the service boundary.
// UnitPrice nil triggers catalog resolution by product code.
type AddItemInput struct {
	ProductCode     string
	ProductName     string
	Description     string
	Quantity        int
	UnitPrice       *decimal.Decimal
	DiscountPercent *decimal.Decimal
	CustomerID      int64
}

func (s *Service) AddItem(ctx context.Context, number string, in AddItemInput) (*quote.Quote, error) {
	req := quote.AddItemRequest{
		ProductCode: strings.TrimSpace(in.ProductCode),
		ProductName: strings.TrimSpace(in.ProductName),
		Description: in.Description,
		Quantity:    in.Quantity,
	}
	if in.UnitPrice != nil {
		req.UnitPrice = *in.UnitPrice
		if in.DiscountPercent != nil {
			req.DiscountPercent = *in.DiscountPercent
		}
	} else {
		code := req.ProductCode
		if code == "" {
			code = catalog.ResolveCode(req.ProductName)
			req.ProductCode = code
		}
		// Resolve pricing before the store mutation so no lock is held
		// during the lookup.
		p := s.Pricing.Resolve(ctx, code, in.CustomerID)
		req.UnitPrice = catalog.VolumeAdjusted(p.BasePrice, in.Quantity)
		req.DiscountPercent = p.DiscountPercent
		req.LeadTimeDays = p.LeadTimeDays
		if req.ProductName == "" {
			req.ProductName = p.ProductName
		}
		if in.DiscountPercent != nil {
			req.DiscountPercent = *in.DiscountPercent
		}
	}
	return s.engine.AddLineItem(ctx, number, req)
}

func (s *Service) RemoveItem(ctx context.Context, number string, lineNumber int) (*quote.Quote, error) {
	return s.engine.RemoveLineItem(ctx, number, lineNumber)
}

func (s *Service) SetStatus(ctx context.Context, number string, status string) (*quote.Quote, error) {
	return s.engine.SetStatus(ctx, number, quote.Status(status))
}

func (s *Service) Get(ctx context.Context, number string) (*quote.Quote, error) {
	return s.Store.Get(ctx, number)
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]*quote.Quote, error) {
	if status != "" && !quote.Status(status).Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", status, quote.ErrValidation)
	}
	return s.Store.List(ctx, quote.Status(status), limit, offset)
}

func (s *Service) Delete(ctx context.Context, number string) error {
	return s.Store.Delete(ctx, number)
}

// RenderPDF fetches the quote and hands it to the document renderer.
func (s *Service) RenderPDF(ctx context.Context, number string) ([]byte, error) {
	q, err := s.Store.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	data, err := s.PDF.Generate(q)
	if err != nil {
		return nil, fmt.Errorf("pdf rendering: %v: %w", err, quote.ErrDependency)
	}
	return data, nil
}
