package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"equiline/go_backend/internal/domain/catalog"
)

// PricingStore is an in-memory catalog.PricingStore seeded with the base
// equipment catalog. It replaces the hidden global mock store of earlier
// iterations: construct it explicitly and inject it.
type PricingStore struct {
	mu      sync.RWMutex
	prices  map[string]catalog.PriceRecord
	history map[historyKey]catalog.DiscountHistory
}

type historyKey struct {
	productCode string
	customerID  int64
}

func NewPricingStore() *PricingStore {
	s := &PricingStore{
		prices:  make(map[string]catalog.PriceRecord),
		history: make(map[historyKey]catalog.DiscountHistory),
	}
	s.SetPrice("CAT320-NG", catalog.PriceRecord{
		ProductName:  "CAT 320 Next Gen Excavator",
		Category:     "Excavators",
		BasePrice:    decimal.RequireFromString("250000.00"),
		Currency:     "USD",
		LeadTimeDays: 30,
	})
	s.SetPrice("KOM-WA380", catalog.PriceRecord{
		ProductName:  "Komatsu WA380 Wheel Loader",
		Category:     "Loaders",
		BasePrice:    decimal.RequireFromString("180000.00"),
		Currency:     "USD",
		LeadTimeDays: 21,
	})
	s.SetPrice("KUB-KX040", catalog.PriceRecord{
		ProductName:  "Kubota KX040 Mini Excavator",
		Category:     "Excavators",
		BasePrice:    decimal.RequireFromString("95000.00"),
		Currency:     "USD",
		LeadTimeDays: 14,
	})
	s.SetPrice("CAT-D6", catalog.PriceRecord{
		ProductName:  "CAT D6 Bulldozer",
		Category:     "Dozers",
		BasePrice:    decimal.RequireFromString("320000.00"),
		Currency:     "USD",
		LeadTimeDays: 45,
	})
	return s
}

func (s *PricingStore) SetPrice(code string, rec catalog.PriceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[code] = rec
}

func (s *PricingStore) SetHistory(code string, customerID int64, hist catalog.DiscountHistory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[historyKey{code, customerID}] = hist
}

func (s *PricingStore) CurrentPrice(ctx context.Context, productCode string) (*catalog.PriceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.prices[productCode]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (s *PricingStore) DiscountHistory(ctx context.Context, productCode string, customerID int64) (*catalog.DiscountHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hist, ok := s.history[historyKey{productCode, customerID}]
	if !ok {
		return nil, nil
	}
	out := hist
	return &out, nil
}
