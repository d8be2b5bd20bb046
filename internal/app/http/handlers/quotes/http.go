package quotes

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"equiline/go_backend/internal/domain/quote"
)

// FromConversationRequest is the POST /v1/quotes/from-conversation body.
type FromConversationRequest struct {
	Conversation struct {
		Subject     string `json:"subject"`
		Body        string `json:"body"`
		SenderName  string `json:"sender_name"`
		SenderEmail string `json:"sender_email"`
	} `json:"conversation"`
	CustomerID      int64   `json:"customer_id"`
	DiscountPercent *string `json:"discount_percent"`
}

// CreateQuoteRequest is the POST /v1/quotes body for explicit creation.
type CreateQuoteRequest struct {
	Customer struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Company string `json:"company"`
	} `json:"customer"`
	ShippingAddress string  `json:"shipping_address"`
	CustomerID      int64   `json:"customer_id"`
	DiscountPercent *string `json:"discount_percent"`
	Notes           string  `json:"notes"`
	Items           []struct {
		ProductCode     string  `json:"product_code"`
		ProductName     string  `json:"product_name"`
		Description     string  `json:"description"`
		Quantity        int     `json:"quantity"`
		UnitPrice       *string `json:"unit_price"`
		DiscountPercent *string `json:"discount_percent"`
	} `json:"items"`
}

// AddItemHTTPRequest is the POST /v1/quotes/{number}/items body.
type AddItemHTTPRequest struct {
	ProductCode     string  `json:"product_code"`
	ProductName     string  `json:"product_name"`
	Description     string  `json:"description"`
	Quantity        int     `json:"quantity"`
	UnitPrice       *string `json:"unit_price"`
	DiscountPercent *string `json:"discount_percent"`
	CustomerID      int64   `json:"customer_id"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type LineItemResponse struct {
	LineNumber      int    `json:"line_number"`
	ProductCode     string `json:"product_code"`
	ProductName     string `json:"product_name"`
	Description     string `json:"description,omitempty"`
	Quantity        int    `json:"quantity"`
	UnitPrice       string `json:"unit_price"`
	DiscountPercent string `json:"discount_percent"`
	LineTotal       string `json:"line_total"`
	LeadTimeDays    int    `json:"lead_time_days,omitempty"`
}

type QuoteResponse struct {
	Number            string             `json:"quote_number"`
	Status            string             `json:"status"`
	CustomerName      string             `json:"customer_name"`
	CustomerEmail     string             `json:"customer_email,omitempty"`
	CustomerCompany   string             `json:"customer_company,omitempty"`
	ShippingAddress   string             `json:"shipping_address,omitempty"`
	QuoteDate         time.Time          `json:"quote_date"`
	ValidUntil        time.Time          `json:"valid_until"`
	Urgency           string             `json:"urgency,omitempty"`
	EstimatedDelivery string             `json:"estimated_delivery,omitempty"`
	Items             []LineItemResponse `json:"items"`
	Subtotal          string             `json:"subtotal"`
	DiscountPercent   string             `json:"discount_percent"`
	DiscountAmount    string             `json:"discount_amount"`
	TaxRate           string             `json:"tax_rate"`
	TaxAmount         string             `json:"tax_amount"`
	TotalAmount       string             `json:"total_amount"`
	Notes             string             `json:"notes,omitempty"`
	Terms             string             `json:"terms,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func toResponse(q *quote.Quote) QuoteResponse {
	resp := QuoteResponse{
		Number:            q.Number,
		Status:            string(q.Status),
		CustomerName:      q.CustomerName,
		CustomerEmail:     q.CustomerEmail,
		CustomerCompany:   q.CustomerCompany,
		ShippingAddress:   q.ShippingAddress,
		QuoteDate:         q.QuoteDate,
		ValidUntil:        q.ValidUntil,
		Urgency:           q.Urgency,
		EstimatedDelivery: q.EstimatedDelivery,
		Items:             make([]LineItemResponse, 0, len(q.Items)),
		Subtotal:          q.Subtotal.StringFixed(2),
		DiscountPercent:   q.DiscountPercent.StringFixed(2),
		DiscountAmount:    q.DiscountAmount.StringFixed(2),
		TaxRate:           q.TaxRate.String(),
		TaxAmount:         q.TaxAmount.StringFixed(2),
		TotalAmount:       q.TotalAmount.StringFixed(2),
		Notes:             q.Notes,
		Terms:             q.Terms,
		CreatedAt:         q.CreatedAt,
		UpdatedAt:         q.UpdatedAt,
	}
	for _, it := range q.Items {
		resp.Items = append(resp.Items, LineItemResponse{
			LineNumber:      it.LineNumber,
			ProductCode:     it.ProductCode,
			ProductName:     it.ProductName,
			Description:     it.Description,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice.StringFixed(2),
			DiscountPercent: it.DiscountPercent.StringFixed(2),
			LineTotal:       it.LineTotal.StringFixed(2),
			LeadTimeDays:    it.LeadTimeDays,
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels to HTTP statuses. Internal detail is
// logged, not leaked.
func writeError(w http.ResponseWriter, reqID string, err error) {
	switch {
	case errors.Is(err, quote.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, quote.ErrNotFound):
		http.Error(w, "quote not found", http.StatusNotFound)
	case errors.Is(err, quote.ErrDependency):
		log.Printf("quotes req=%s dependency error: %v", reqID, err)
		http.Error(w, "upstream dependency failed", http.StatusBadGateway)
	default:
		log.Printf("quotes req=%s internal error: %v", reqID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseDecimal(s *string, field string) (decimal.Decimal, error) {
	if s == nil || *s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, *s, quote.ErrValidation)
	}
	return d, nil
}

func parseOptDecimal(s *string, field string) (*decimal.Decimal, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", field, *s, quote.ErrValidation)
	}
	return &d, nil
}

func (s *Service) HandleFromConversation(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()[:8]
	start := time.Now()

	var req FromConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	disc, err := parseDecimal(req.DiscountPercent, "discount_percent")
	if err != nil {
		writeError(w, reqID, err)
		return
	}

	q, err := s.GenerateFromConversation(r.Context(), reqID, ConversationInput{
		Subject:         req.Conversation.Subject,
		Body:            req.Conversation.Body,
		SenderName:      req.Conversation.SenderName,
		SenderEmail:     req.Conversation.SenderEmail,
		CustomerID:      req.CustomerID,
		DiscountPercent: disc,
	})
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	log.Printf("quotes req=%s from-conversation done took=%s", reqID, time.Since(start))
	writeJSON(w, http.StatusCreated, toResponse(q))
}

func (s *Service) HandleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()[:8]

	var req CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	disc, err := parseDecimal(req.DiscountPercent, "discount_percent")
	if err != nil {
		writeError(w, reqID, err)
		return
	}

	in := ExplicitInput{
		CustomerName:    req.Customer.Name,
		CustomerEmail:   req.Customer.Email,
		CustomerCompany: req.Customer.Company,
		ShippingAddress: req.ShippingAddress,
		CustomerID:      req.CustomerID,
		DiscountPercent: disc,
		Notes:           req.Notes,
	}
	for _, it := range req.Items {
		unit, err := parseOptDecimal(it.UnitPrice, "unit_price")
		if err != nil {
			writeError(w, reqID, err)
			return
		}
		itemDisc, err := parseDecimal(it.DiscountPercent, "discount_percent")
		if err != nil {
			writeError(w, reqID, err)
			return
		}
		in.Items = append(in.Items, ExplicitItem{
			ProductCode:     it.ProductCode,
			ProductName:     it.ProductName,
			Description:     it.Description,
			Quantity:        it.Quantity,
			UnitPrice:       unit,
			DiscountPercent: itemDisc,
		})
	}

	q, err := s.GenerateExplicit(r.Context(), reqID, in)
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(q))
}

func (s *Service) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()[:8]
	number := chi.URLParam(r, "number")

	var req AddItemHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	unit, err := parseOptDecimal(req.UnitPrice, "unit_price")
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	disc, err := parseOptDecimal(req.DiscountPercent, "discount_percent")
	if err != nil {
		writeError(w, reqID, err)
		return
	}

	q, err := s.AddItem(r.Context(), number, AddItemInput{
		ProductCode:     req.ProductCode,
		ProductName:     req.ProductName,
		Description:     req.Description,
		Quantity:        req.Quantity,
		UnitPrice:       unit,
		DiscountPercent: disc,
		CustomerID:      req.CustomerID,
	})
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(q))
}

func (s *Service) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()[:8]
	number := chi.URLParam(r, "number")
	line, err := strconv.Atoi(chi.URLParam(r, "line"))
	if err != nil {
		http.Error(w, "invalid line number", http.StatusBadRequest)
		return
	}

	q, err := s.RemoveItem(r.Context(), number, line)
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(q))
}

func (s *Service) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()[:8]
	number := chi.URLParam(r, "number")

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	q, err := s.SetStatus(r.Context(), number, req.Status)
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(q))
}

func (s *Service) HandleGet(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()[:8]
	q, err := s.Get(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(q))
}

func (s *Service) HandleList(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()[:8]
	qp := r.URL.Query()
	limit, _ := strconv.Atoi(qp.Get("limit"))
	offset, _ := strconv.Atoi(qp.Get("offset"))

	quotes, err := s.List(r.Context(), qp.Get("status"), limit, offset)
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	out := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, toResponse(q))
	}
	writeJSON(w, http.StatusOK, map[string]any{"quotes": out, "count": len(out)})
}

func (s *Service) HandleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()[:8]
	if err := s.Delete(r.Context(), chi.URLParam(r, "number")); err != nil {
		writeError(w, reqID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) HandlePDF(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()[:8]
	number := chi.URLParam(r, "number")

	data, err := s.RenderPDF(r.Context(), number)
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, number))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
