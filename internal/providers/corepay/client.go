package corepay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
)

const errorBodyReadLimit int64 = 4096

var (
	errBaseURLRequired = errors.New("corepay base url is required")
	errAPIKeyRequired  = errors.New("corepay api key is required")
)

// Client speaks the in-house CorePay ledger's REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithTimeout overrides the default HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the CorePay client for the given deployment.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	trimmedURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmedURL == "" {
		return nil, errBaseURLRequired
	}
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    trimmedURL,
		apiKey:     trimmedKey,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Wire types for the CorePay API.

type tokenRequest struct {
	Card cardPayload `json:"card"`
}

type cardPayload struct {
	Number     string `json:"number"`
	ExpMonth   int    `json:"exp_month"`
	ExpYear    int    `json:"exp_year"`
	CVC        string `json:"cvc,omitempty"`
	HolderName string `json:"holder_name,omitempty"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type chargeRequest struct {
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Source       string            `json:"source,omitempty"`
	SourceType   string            `json:"source_type,omitempty"`
	Rail         string            `json:"rail,omitempty"`
	Confirm      bool              `json:"confirm"`
	Description  string            `json:"description,omitempty"`
	ReceiptEmail string            `json:"receipt_email,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type chargePayload struct {
	ID          string            `json:"id"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Status      string            `json:"status"`
	Source      *sourcePayload    `json:"source,omitempty"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

type sourcePayload struct {
	Type     string `json:"type"`
	Brand    string `json:"brand,omitempty"`
	Last4    string `json:"last4,omitempty"`
	ExpMonth int    `json:"exp_month,omitempty"`
	ExpYear  int    `json:"exp_year,omitempty"`
}

type chargeListPayload struct {
	Data       []chargePayload `json:"data"`
	HasMore    bool            `json:"has_more"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

type refundRequest struct {
	ChargeID string `json:"charge_id"`
	Amount   int64  `json:"amount,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type refundPayload struct {
	ID        string    `json:"id"`
	ChargeID  string    `json:"charge_id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type balancePayload struct {
	Available map[string]int64 `json:"available"`
	Pending   map[string]int64 `json:"pending"`
}

type errorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Type    string `json:"type"`
		Message string `json:"message"`
		Field   string `json:"field,omitempty"`
	} `json:"error"`
}

func (c *Client) CreateToken(ctx context.Context, req tokenRequest) (*tokenResponse, error) {
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/v1/tokens", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateCharge(ctx context.Context, idempotencyKey string, req chargeRequest) (*chargePayload, error) {
	var resp chargePayload
	if err := c.do(ctx, http.MethodPost, "/v1/charges", idempotencyKey, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetCharge(ctx context.Context, id string) (*chargePayload, error) {
	var resp chargePayload
	path := "/v1/charges/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListCharges(ctx context.Context, query url.Values) (*chargeListPayload, error) {
	path := "/v1/charges"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var resp chargeListPayload
	if err := c.do(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateRefund(ctx context.Context, idempotencyKey string, req refundRequest) (*refundPayload, error) {
	var resp refundPayload
	if err := c.do(ctx, http.MethodPost, "/v1/refunds", idempotencyKey, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetBalance(ctx context.Context) (*balancePayload, error) {
	var resp balancePayload
	if err := c.do(ctx, http.MethodGet, "/v1/balance", "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path, idempotencyKey string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return domainErrors.NewFault(providerName, "marshal request", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return domainErrors.NewFault(providerName, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainErrors.NewFault(providerName, "execute request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return c.mapError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domainErrors.NewFault(providerName, "decode response", err)
		}
	}
	return nil
}

// mapError converts a non-2xx response into the canonical taxonomy. Rate
// limits and 5xx are upstream faults; the rest are declines carrying the
// ledger's code/type pair.
func (c *Client) mapError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	var payload errorPayload
	_ = json.Unmarshal(raw, &payload)
	message := payload.Error.Message
	if message == "" {
		message = fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	ge := &domainErrors.GatewayError{
		Provider:     providerName,
		HTTPStatus:   resp.StatusCode,
		ProviderCode: payload.Error.Code,
		ProviderType: payload.Error.Type,
		Field:        payload.Error.Field,
		Message:      message,
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		ge.Kind = domainErrors.KindUpstreamFault
	} else {
		ge.Kind = domainErrors.KindUpstreamDeclined
	}
	return ge
}
