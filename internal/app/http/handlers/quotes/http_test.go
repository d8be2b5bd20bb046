package quotes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiline/go_backend/internal/app/config"
	apphttp "equiline/go_backend/internal/app/http"
	"equiline/go_backend/internal/app/http/handlers/quotes"
	"equiline/go_backend/internal/domain/catalog"
	"equiline/go_backend/internal/domain/conversation"
	"equiline/go_backend/internal/domain/quote"
	pdfgen "equiline/go_backend/internal/domain/quote/pdf/gofpdf"
	"equiline/go_backend/internal/infra/store/memory"
)

const testToken = "test-token"

// failingGenerator simulates a broken AI collaborator.
type failingGenerator struct{}

func (failingGenerator) QuoteDescription(context.Context, conversation.Summary, []catalog.Pricing) (string, error) {
	return "", errors.New("model unavailable")
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Config{
		InternalToken:   testToken,
		CORSAllowOrigin: "*",
	}
	svc := quotes.New(
		memory.New(quote.SchemeDaily),
		&catalog.Resolver{Store: memory.NewPricingStore()},
		failingGenerator{},
		pdfgen.New(),
		decimal.RequireFromString("0.08"),
		30,
		"USD",
	)
	srv := httptest.NewServer(apphttp.NewRouter(cfg, svc))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Token", testToken)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

const conversationBody = `{
	"conversation": {
		"subject": "Need equipment ASAP",
		"body": "Hi, we urgently need 2 CAT 320 Excavators for a highway project. Ship to: 4500 Quarry Road\nBoulder, CO 80301",
		"sender_name": "Dana Reyes",
		"sender_email": "dana@apex.example"
	},
	"customer_id": 42
}`

func TestFromConversation(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/quotes/from-conversation", conversationBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	number, _ := body["quote_number"].(string)
	assert.True(t, strings.HasPrefix(number, "QT-"), "number %q", number)
	assert.Equal(t, "DRAFT", body["status"])
	assert.Equal(t, "Dana Reyes", body["customer_name"])
	assert.Equal(t, "urgent", body["urgency"])

	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "CAT320-NG", item["product_code"])
	assert.Equal(t, float64(2), item["quantity"])
	// catalog base price 250000, qty 2, default 5% discount
	assert.Equal(t, "250000.00", item["unit_price"])
	assert.Equal(t, "475000.00", body["subtotal"])
	assert.Equal(t, "38000.00", body["tax_amount"])
	assert.Equal(t, "513000.00", body["total_amount"])

	// the broken narrative generator degrades to the generic description
	notes, _ := body["notes"].(string)
	assert.Contains(t, notes, "Thank you for your inquiry")
}

func TestFromConversationValidation(t *testing.T) {
	srv := newTestServer(t)

	t.Run("empty body rejected", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/quotes/from-conversation",
			`{"conversation":{"subject":"x","body":""}}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/quotes/from-conversation", `{not json`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/quotes/from-conversation",
		strings.NewReader(conversationBody))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestExplicitCreate(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/quotes", `{
		"customer": {"name": "Apex Construction LLC", "email": "buyer@apex.example"},
		"items": [
			{"product_name": "Komatsu WA380 Wheel Loader", "quantity": 1, "unit_price": "180000.00"},
			{"product_code": "KUB-KX040", "quantity": 1}
		]
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	items := body["items"].([]any)
	require.Len(t, items, 2)
	second := items[1].(map[string]any)
	// resolved from the catalog: base 95000 with the 5% default discount
	assert.Equal(t, "95000.00", second["unit_price"])
	assert.Equal(t, "5.00", second["discount_percent"])
}

func TestExplicitCreateValidation(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/quotes", `{
		"customer": {"name": "Apex"},
		"items": []
	}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestItemLifecycle(t *testing.T) {
	srv := newTestServer(t)

	_, created := doJSON(t, http.MethodPost, srv.URL+"/v1/quotes/from-conversation", conversationBody)
	number := created["quote_number"].(string)
	originalTotal := created["total_amount"].(string)

	resp, withItem := doJSON(t, http.MethodPost, srv.URL+"/v1/quotes/"+number+"/items", `{
		"product_name": "Komatsu WA380 Wheel Loader",
		"quantity": 1,
		"unit_price": "180000.00"
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, withItem["items"].([]any), 2)
	assert.NotEqual(t, originalTotal, withItem["total_amount"])

	resp, afterRemove := doJSON(t, http.MethodDelete, srv.URL+"/v1/quotes/"+number+"/items/2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, afterRemove["items"].([]any), 1)
	assert.Equal(t, originalTotal, afterRemove["total_amount"])

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/v1/quotes/"+number+"/items/99", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t)

	_, created := doJSON(t, http.MethodPost, srv.URL+"/v1/quotes/from-conversation", conversationBody)
	number := created["quote_number"].(string)

	resp, updated := doJSON(t, http.MethodPut, srv.URL+"/v1/quotes/"+number+"/status", `{"status":"SENT"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SENT", updated["status"])

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/v1/quotes/"+number+"/status", `{"status":"CANCELLED"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, got := doJSON(t, http.MethodGet, srv.URL+"/v1/quotes/"+number, "")
	assert.Equal(t, "SENT", got["status"])
}

func TestGetListDelete(t *testing.T) {
	srv := newTestServer(t)

	_, created := doJSON(t, http.MethodPost, srv.URL+"/v1/quotes/from-conversation", conversationBody)
	number := created["quote_number"].(string)

	t.Run("get", func(t *testing.T) {
		resp, got := doJSON(t, http.MethodGet, srv.URL+"/v1/quotes/"+number, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, number, got["quote_number"])
	})

	t.Run("get unknown", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/quotes/QT-19700101-0001", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("list", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/quotes?status=DRAFT", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(1), body["count"])
	})

	t.Run("list bad status", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/quotes?status=bogus", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodDelete, srv.URL+"/v1/quotes/"+number, "")
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = doJSON(t, http.MethodGet, srv.URL+"/v1/quotes/"+number, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestPDFEndpoint(t *testing.T) {
	srv := newTestServer(t)

	_, created := doJSON(t, http.MethodPost, srv.URL+"/v1/quotes/from-conversation", conversationBody)
	number := created["quote_number"].(string)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/quotes/"+number+"/pdf", nil)
	require.NoError(t, err)
	req.Header.Set("X-Internal-Token", testToken)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	buf := make([]byte, 5)
	_, err = resp.Body.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(buf))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
