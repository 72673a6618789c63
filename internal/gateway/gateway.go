package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/bazaarhq/checkout/pkg/httpclient"
)

// Order is a payment order opened at the gateway. Its ID anchors the
// verification triple and the local payment intent.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Client opens payment orders at the external gateway.
type Client interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error)
}

// HTTPDoer is satisfied by httpclient.Client and httpclient.CircuitBreakerClient.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// HTTPClient talks to the gateway's REST API with basic key auth.
type HTTPClient struct {
	client    HTTPDoer
	baseURL   string
	keyID     string
	keySecret string
}

// NewHTTPClient creates a gateway client.
func NewHTTPClient(client HTTPDoer, baseURL, keyID, keySecret string) *HTTPClient {
	return &HTTPClient{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
	}
}

// CreateOrder opens a gateway order for the given amount. Any transport
// failure, timeout, or non-2xx reply is returned as an error; the caller
// must treat ambiguity as failure and create nothing locally.
func (c *HTTPClient) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	payload := map[string]any{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal gateway order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create gateway order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, httpclient.ParseResponseError(resp, "gateway")
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode gateway order response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("gateway returned order without id")
	}

	return &order, nil
}
