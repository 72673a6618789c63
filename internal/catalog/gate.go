package catalog

import (
	"net/http"

	apperrors "github.com/bazaarhq/checkout/pkg/errors"
)

// Availability is the purchasable state of one (product, variant) pair at a
// point in time. UnitPrice and identity fields come from the variant when one
// is named, otherwise from the product.
type Availability struct {
	SellerID  string
	Name      string
	SKU       string
	UnitPrice int64
	Stock     int
}

// Resolve maps a product and an optional variant ID to its availability.
//
// A product with variants requires a variant ID; naming a variant on a
// variantless product, or naming a variant the product no longer carries,
// is rejected. An inactive product resolves as not found.
func Resolve(p *Product, variantID string) (*Availability, error) {
	if p == nil || !p.Active {
		id := ""
		if p != nil {
			id = p.ID
		}
		return nil, apperrors.NotFound("product", id)
	}

	if p.HasVariants() {
		if variantID == "" {
			return nil, apperrors.New("VARIANT_REQUIRED", "product requires a variant selection", http.StatusBadRequest)
		}
		v := p.Variant(variantID)
		if v == nil {
			return nil, apperrors.New("VARIANT_REMOVED", "selected variant no longer exists", http.StatusUnprocessableEntity)
		}
		return &Availability{
			SellerID:  p.SellerID,
			Name:      p.Name,
			SKU:       v.SKU,
			UnitPrice: v.Price,
			Stock:     v.Stock,
		}, nil
	}

	if variantID != "" {
		return nil, apperrors.New("VARIANT_REMOVED", "product has no variants", http.StatusUnprocessableEntity)
	}

	return &Availability{
		SellerID:  p.SellerID,
		Name:      p.Name,
		SKU:       p.SKU,
		UnitPrice: p.Price,
		Stock:     p.Stock,
	}, nil
}

// Clamp caps a requested quantity at the available stock. Zero stock yields
// zero; the caller turns that into an out-of-stock rejection.
func Clamp(requested, stock int) int {
	if stock < 0 {
		return 0
	}
	if requested > stock {
		return stock
	}
	return requested
}
