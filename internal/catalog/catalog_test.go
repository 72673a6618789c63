package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bazaarhq/checkout/pkg/errors"
	"github.com/bazaarhq/checkout/pkg/httpclient"
)

func newCatalogServer(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(httpclient.New(httpclient.DefaultConfig()), srv.URL)
}

func TestGetProduct(t *testing.T) {
	client := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/products/p1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"p1","seller_id":"s1","name":"Bottle","sku":"BTL-1","price":49900,"stock":3,"active":true}}`))
	})

	product, err := client.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "s1", product.SellerID)
	assert.Equal(t, 3, product.Stock)
}

func TestGetProduct_NotFound(t *testing.T) {
	client := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"product not found"}}`))
	})

	_, err := client.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetProducts(t *testing.T) {
	client := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "p1,p2", r.URL.Query().Get("ids"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"p1","active":true},{"id":"p2","active":true}]}`))
	})

	products, err := client.GetProducts(context.Background(), []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.NotNil(t, products["p1"])
}

func TestGetProducts_Empty(t *testing.T) {
	client := NewHTTPClient(httpclient.New(httpclient.DefaultConfig()), "http://unused")

	products, err := client.GetProducts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, products)
}
