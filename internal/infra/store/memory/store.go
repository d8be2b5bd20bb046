package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"equiline/go_backend/internal/domain/quote"
)

// Store is an in-memory quote.Store. It backs tests and local runs without
// postgres; all access goes through one mutex so mutations are serialized
// per quote (single writer at a time).
type Store struct {
	mu     sync.Mutex
	scheme quote.NumberScheme
	nextID int64
	quotes map[string]*quote.Quote
	order  []string
}

func New(scheme quote.NumberScheme) *Store {
	if !scheme.Valid() {
		scheme = quote.SchemeDaily
	}
	return &Store{scheme: scheme, quotes: make(map[string]*quote.Quote)}
}

func (s *Store) Create(ctx context.Context, q *quote.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := q.QuoteDate
	if now.IsZero() {
		now = time.Now().UTC()
	}
	number := s.assignNumber(now)
	s.nextID++

	q.Number = number
	q.ID = s.nextID
	s.quotes[number] = q.Clone()
	s.order = append(s.order, number)
	return nil
}

func (s *Store) assignNumber(now time.Time) string {
	if s.scheme == quote.SchemeRandom {
		for {
			n := quote.RandomNumber(now)
			if _, exists := s.quotes[n]; !exists {
				return n
			}
		}
	}
	prefix := quote.DailyPrefix(now)
	count := 0
	for number := range s.quotes {
		if strings.HasPrefix(number, prefix) {
			count++
		}
	}
	for seq := count + 1; ; seq++ {
		n := quote.DailyNumber(now, seq)
		if _, exists := s.quotes[n]; !exists {
			return n
		}
	}
}

func (s *Store) Get(ctx context.Context, number string) (*quote.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[number]
	if !ok {
		return nil, fmt.Errorf("quote %s: %w", number, quote.ErrNotFound)
	}
	return q.Clone(), nil
}

func (s *Store) List(ctx context.Context, status quote.Status, limit, offset int) ([]*quote.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	out := make([]*quote.Quote, 0, limit)
	skipped := 0
	// newest first
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		q := s.quotes[s.order[i]]
		if q == nil || (status != "" && q.Status != status) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, q.Clone())
	}
	return out, nil
}

func (s *Store) Mutate(ctx context.Context, number string, fn func(*quote.Quote) error) (*quote.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.quotes[number]
	if !ok {
		return nil, fmt.Errorf("quote %s: %w", number, quote.ErrNotFound)
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now().UTC()
	s.quotes[number] = next
	return next.Clone(), nil
}

func (s *Store) Delete(ctx context.Context, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quotes[number]; !ok {
		return fmt.Errorf("quote %s: %w", number, quote.ErrNotFound)
	}
	delete(s.quotes, number)
	for i, n := range s.order {
		if n == number {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
