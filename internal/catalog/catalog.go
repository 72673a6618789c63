package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bazaarhq/checkout/pkg/httpclient"
)

// Variant is one purchasable variation of a product.
type Variant struct {
	ID    string `json:"id"`
	SKU   string `json:"sku"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
}

// Product is the catalog view of a product as served by the catalog service.
// A product with variants carries no sellable stock of its own; stock and
// price live on the variants.
type Product struct {
	ID       string    `json:"id"`
	SellerID string    `json:"seller_id"`
	Name     string    `json:"name"`
	SKU      string    `json:"sku"`
	Price    int64     `json:"price"`
	Stock    int       `json:"stock"`
	Active   bool      `json:"active"`
	Variants []Variant `json:"variants,omitempty"`
}

// HasVariants reports whether purchases must name a variant.
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// Variant returns the variant with the given ID, or nil.
func (p *Product) Variant(id string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

// Client fetches product data from the catalog service. A removed or
// deactivated product surfaces as apperrors.ErrNotFound.
type Client interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetProducts(ctx context.Context, ids []string) (map[string]*Product, error)
}

// HTTPDoer is satisfied by httpclient.Client and httpclient.CircuitBreakerClient.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// HTTPClient is the HTTP implementation of Client.
type HTTPClient struct {
	client  HTTPDoer
	baseURL string
}

// NewHTTPClient creates a catalog client against the given base URL.
func NewHTTPClient(client HTTPDoer, baseURL string) *HTTPClient {
	return &HTTPClient{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

type productEnvelope struct {
	Data *Product `json:"data"`
}

type productListEnvelope struct {
	Data []Product `json:"data"`
}

// GetProduct fetches a single product by ID.
func (c *HTTPClient) GetProduct(ctx context.Context, id string) (*Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/products/"+url.PathEscape(id), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create product request: %w", err)
	}

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}

	var envelope productEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode product response: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("catalog returned empty product body")
	}

	return envelope.Data, nil
}

// GetProducts batch-fetches products by ID. Missing products are simply
// absent from the returned map; callers decide whether absence is an error.
func (c *HTTPClient) GetProducts(ctx context.Context, ids []string) (map[string]*Product, error) {
	if len(ids) == 0 {
		return map[string]*Product{}, nil
	}

	q := url.Values{"ids": {strings.Join(ids, ",")}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/products?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create products request: %w", err)
	}

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}

	var envelope productListEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode products response: %w", err)
	}

	products := make(map[string]*Product, len(envelope.Data))
	for i := range envelope.Data {
		products[envelope.Data[i].ID] = &envelope.Data[i]
	}
	return products, nil
}
