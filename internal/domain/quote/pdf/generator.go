package pdf

import "equiline/go_backend/internal/domain/quote"

// Generator renders a quote into an opaque document byte stream. The
// engine never inspects the output.
type Generator interface {
	Generate(q *quote.Quote) ([]byte, error)
}
