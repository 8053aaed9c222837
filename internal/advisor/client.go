// Package advisor talks to the optional term recommendation service. The service
// picks one of the three suggested installment options; any failure means no pick.
package advisor

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

	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/engine"
)

// ErrInvalidResponse is returned when the service answers with something other than
// an index in 1..3.
var ErrInvalidResponse = errors.New("advisor: invalid response")

const maxResponseBytes = 64 << 10

// Term is one option as exchanged with the service.
type Term struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Request carries the figures the service bases its pick on. Amounts are encoded as
// decimal strings.
type Request struct {
	BondAmount  decimal.Decimal `json:"bond_amount"`
	Premium     decimal.Decimal `json:"premium"`
	DownPayment decimal.Decimal `json:"down_payment"`
	Remaining   decimal.Decimal `json:"remaining"`
	Term1       Term            `json:"term_1"`
	Term2       Term            `json:"term_2"`
	Term3       Term            `json:"term_3"`
}

// NewRequest builds a request from a quote and its suggested terms.
func NewRequest(bondAmount decimal.Decimal, quote engine.Quote, terms [3]engine.TermOption) Request {
	return Request{
		BondAmount:  bondAmount,
		Premium:     quote.Premium,
		DownPayment: quote.DownPayment,
		Remaining:   quote.Remaining,
		Term1:       Term{Label: terms[0].Label, Amount: terms[0].Amount},
		Term2:       Term{Label: terms[1].Label, Amount: terms[1].Amount},
		Term3:       Term{Label: terms[2].Label, Amount: terms[2].Amount},
	}
}

// Recommendation is the service's pick.
type Recommendation struct {
	Index  int    `json:"recommended_index"`
	Reason string `json:"reason"`
}

// Advisor recommends one of three term options.
type Advisor interface {
	Recommend(ctx context.Context, req Request) (*Recommendation, error)
}

// Client is the HTTP implementation of Advisor.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewClient creates a client for the service at baseURL. Every call is bounded by
// timeout regardless of the caller's context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Recommend posts the request to <baseURL>/recommend.
func (c *Client) Recommend(ctx context.Context, req Request) (*Recommendation, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("advisor: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recommend", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("advisor: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("advisor: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("advisor: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("advisor: status %d", resp.StatusCode)
	}

	var rec Recommendation
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if rec.Index < 1 || rec.Index > 3 {
		return nil, fmt.Errorf("%w: recommended_index %d", ErrInvalidResponse, rec.Index)
	}
	rec.Reason = strings.TrimSpace(rec.Reason)
	return &rec, nil
}
