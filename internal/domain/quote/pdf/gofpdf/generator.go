package gofpdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"equiline/go_backend/internal/domain/quote"
)

type Generator struct{}

func New() *Generator { return &Generator{} }

func (g *Generator) Generate(q *quote.Quote) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Quotation "+q.Number, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Commercial Quotation")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("No. %s, issued %s", q.Number, q.QuoteDate.Format("January 2, 2006")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Valid until %s", q.ValidUntil.Format("January 2, 2006")))
	pdf.Ln(6)

	if q.CustomerName != "" || q.CustomerCompany != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Customer: %s %s", q.CustomerName, q.CustomerCompany))
		pdf.Ln(6)
	}
	if q.ShippingAddress != "" {
		pdf.Cell(0, 6, "Ship to: "+trim(q.ShippingAddress, 90))
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(10, 7, "#")
	pdf.Cell(75, 7, "Product")
	pdf.Cell(18, 7, "Qty")
	pdf.Cell(30, 7, "Unit Price")
	pdf.Cell(20, 7, "Disc %")
	pdf.Cell(30, 7, "Line Total")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range q.Items {
		pdf.Cell(10, 6, fmt.Sprintf("%d", it.LineNumber))
		pdf.Cell(75, 6, trim(it.ProductName, 42))
		pdf.Cell(18, 6, fmt.Sprintf("%d", it.Quantity))
		pdf.Cell(30, 6, it.UnitPrice.StringFixed(2))
		pdf.Cell(20, 6, it.DiscountPercent.StringFixed(1))
		pdf.Cell(30, 6, it.LineTotal.StringFixed(2))
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Subtotal: "+q.Subtotal.StringFixed(2))
	pdf.Ln(5)
	if !q.DiscountAmount.IsZero() {
		pdf.Cell(0, 6, "Discount: -"+q.DiscountAmount.StringFixed(2))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Tax (%s%%): %s", q.TaxRate.Mul(decimal.NewFromInt(100)).StringFixed(0), q.TaxAmount.StringFixed(2)))
	pdf.Ln(5)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+q.TotalAmount.StringFixed(2))
	pdf.Ln(8)

	if q.EstimatedDelivery != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 6, "Estimated delivery: "+q.EstimatedDelivery)
		pdf.Ln(6)
	}
	if q.Notes != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, trim(q.Notes, 600), "", "L", false)
		pdf.Ln(2)
	}
	if q.Terms != "" {
		pdf.SetFont("Helvetica", "", 7)
		pdf.MultiCell(0, 3.5, q.Terms, "", "L", false)
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.Ln(4)
	pdf.Cell(0, 5, fmt.Sprintf("Generated: %s", time.Now().Format(time.RFC3339)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "..."
}
