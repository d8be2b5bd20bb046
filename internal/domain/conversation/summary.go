package conversation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	UrgencyLow    = "low"
	UrgencyNormal = "normal"
	UrgencyHigh   = "high"
	UrgencyUrgent = "urgent"
)

// Summary is the structured view of one customer conversation.
// It is produced once by Analyze and never modified afterwards.
type Summary struct {
	Products        []string
	Quantities      []int
	Urgency         string
	Deadline        string
	ShippingAddress string
	Comment         string
	Budget          decimal.NullDecimal
	CustomerName    string
	CustomerCompany string
}

// PairedQuantities returns one quantity per product, pairing by position.
// When the lists differ in length the quantity list is padded with 1 or
// truncated. Best-effort: a quantity mentioned near one product can end up
// attached to another.
func (s Summary) PairedQuantities() []int {
	out := make([]int, len(s.Products))
	for i := range out {
		if i < len(s.Quantities) {
			out[i] = s.Quantities[i]
		} else {
			out[i] = 1
		}
	}
	return out
}

// Digest renders a one-line summary suitable for quote notes.
func (s Summary) Digest() string {
	parts := make([]string, 0, 4)
	if len(s.Products) > 0 {
		qtys := s.PairedQuantities()
		items := make([]string, 0, len(s.Products))
		for i, p := range s.Products {
			items = append(items, fmt.Sprintf("%dx %s", qtys[i], p))
		}
		parts = append(parts, "Customer requesting: "+strings.Join(items, ", "))
	}
	parts = append(parts, "Urgency: "+capitalize(s.Urgency))
	if s.Deadline != "" {
		parts = append(parts, "Deadline: "+s.Deadline)
	}
	if s.Comment != "" {
		parts = append(parts, "Note: "+s.Comment)
	}
	return strings.Join(parts, " | ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
