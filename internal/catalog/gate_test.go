package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bazaarhq/checkout/pkg/errors"
)

func simpleProduct() *Product {
	return &Product{
		ID:       "p1",
		SellerID: "s1",
		Name:     "Steel Bottle",
		SKU:      "BTL-1",
		Price:    49900,
		Stock:    7,
		Active:   true,
	}
}

func variantProduct() *Product {
	return &Product{
		ID:       "p2",
		SellerID: "s2",
		Name:     "Cotton Tee",
		Active:   true,
		Variants: []Variant{
			{ID: "v1", SKU: "TEE-S", Price: 29900, Stock: 4},
			{ID: "v2", SKU: "TEE-M", Price: 29900, Stock: 0},
		},
	}
}

func TestResolve_SimpleProduct(t *testing.T) {
	av, err := Resolve(simpleProduct(), "")
	require.NoError(t, err)
	assert.Equal(t, "s1", av.SellerID)
	assert.Equal(t, "BTL-1", av.SKU)
	assert.Equal(t, int64(49900), av.UnitPrice)
	assert.Equal(t, 7, av.Stock)
}

func TestResolve_VariantProduct(t *testing.T) {
	av, err := Resolve(variantProduct(), "v1")
	require.NoError(t, err)
	assert.Equal(t, "TEE-S", av.SKU)
	assert.Equal(t, 4, av.Stock)
}

func TestResolve_VariantRequired(t *testing.T) {
	_, err := Resolve(variantProduct(), "")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VARIANT_REQUIRED", appErr.Code)
}

func TestResolve_VariantRemoved(t *testing.T) {
	_, err := Resolve(variantProduct(), "v9")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VARIANT_REMOVED", appErr.Code)

	// A variant named on a variantless product is equally gone.
	_, err = Resolve(simpleProduct(), "v1")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VARIANT_REMOVED", appErr.Code)
}

func TestResolve_MissingOrInactive(t *testing.T) {
	_, err := Resolve(nil, "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	p := simpleProduct()
	p.Active = false
	_, err = Resolve(p, "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 3, Clamp(3, 7))
	assert.Equal(t, 7, Clamp(10, 7))
	assert.Equal(t, 0, Clamp(5, 0))
	assert.Equal(t, 0, Clamp(5, -1))
}
