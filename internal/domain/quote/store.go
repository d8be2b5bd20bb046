package quote

import "context"

// Store persists quotes. Implementations must guarantee:
//   - Create assigns a unique Number (per the configured scheme) atomically
//     with the insert; same-day concurrent creation must not collide.
//   - Mutate serializes writers per quote: it loads the current state,
//     applies fn to a private copy, and persists only when fn returns nil.
//     Callers never observe a half-applied mutation.
type Store interface {
	Create(ctx context.Context, q *Quote) error
	Get(ctx context.Context, number string) (*Quote, error)
	List(ctx context.Context, status Status, limit, offset int) ([]*Quote, error)
	Mutate(ctx context.Context, number string, fn func(*Quote) error) (*Quote, error)
	Delete(ctx context.Context, number string) error
}
