package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"equiline/go_backend/internal/domain/catalog"
	"equiline/go_backend/internal/domain/conversation"
)

// GenericDescription is substituted whenever the AI collaborator fails or
// is not configured.
const GenericDescription = "Thank you for your inquiry. Please find our quotation for the requested equipment below. Pricing reflects current availability and any applicable volume discounts."

// Generator produces a human-readable quote description from the extracted
// summary and the priced products.
type Generator interface {
	QuoteDescription(ctx context.Context, summary conversation.Summary, pricing []catalog.Pricing) (string, error)
}

// OpenAI calls an OpenAI-compatible chat-completions endpoint.
type OpenAI struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
}

func New(baseURL, apiKey, model string, httpClient *http.Client) *OpenAI {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &OpenAI{BaseURL: baseURL, APIKey: apiKey, Model: model, HTTP: httpClient}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_completion_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *OpenAI) QuoteDescription(ctx context.Context, summary conversation.Summary, pricing []catalog.Pricing) (string, error) {
	if c.APIKey == "" {
		return "", errors.New("narrative: api key not configured")
	}

	system := "You write short professional introductions for commercial equipment quotations. 2-3 sentences, no prices, no made-up products."
	prompt := buildPrompt(summary, pricing)

	payload := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens: 200,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	urlStr := strings.TrimRight(c.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("openai status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("empty openai response")
	}
	answer := strings.TrimSpace(out.Choices[0].Message.Content)
	if answer == "" {
		return "", errors.New("blank openai answer")
	}
	return answer, nil
}

func buildPrompt(summary conversation.Summary, pricing []catalog.Pricing) string {
	var b strings.Builder
	b.WriteString("Customer request summary:\n")
	b.WriteString(summary.Digest())
	b.WriteString("\n\nQuoted products:\n")
	for _, p := range pricing {
		b.WriteString("- ")
		b.WriteString(p.ProductName)
		if p.Category != "" {
			b.WriteString(" (")
			b.WriteString(p.Category)
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	return b.String()
}
