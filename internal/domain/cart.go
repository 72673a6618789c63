package domain

import "time"

// CartRow is one stored cart line. A given owner has at most one row per
// (product, variant) pair; re-adding combines quantities. Totals are never
// stored, they are computed from live catalog prices on read.
type CartRow struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	ProductID string    `json:"product_id"`
	VariantID string    `json:"variant_id,omitempty"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartItem is a cart row joined with live catalog data for rendering.
type CartItem struct {
	CartRow
	SellerID       string `json:"seller_id"`
	Name           string `json:"name"`
	SKU            string `json:"sku"`
	UnitPrice      int64  `json:"unit_price"`
	AvailableStock int    `json:"available_stock"`
	LineTotal      int64  `json:"line_total"`
}

// Cart is the rendered cart with computed totals.
type Cart struct {
	OwnerID  string     `json:"owner_id"`
	Items    []CartItem `json:"items"`
	Subtotal int64      `json:"subtotal"`
	Currency string     `json:"currency"`
}

// Violation reasons reported by cart validation.
const (
	ViolationProductRemoved    = "product_removed"
	ViolationVariantRemoved    = "variant_removed"
	ViolationInsufficientStock = "insufficient_stock"
)

// Violation describes one invalid cart row. Validation reports findings as
// data; it never mutates the cart.
type Violation struct {
	RowID        string `json:"row_id"`
	ProductID    string `json:"product_id"`
	VariantID    string `json:"variant_id,omitempty"`
	Reason       string `json:"reason"`
	RequestedQty int    `json:"requested_qty,omitempty"`
	AvailableQty int    `json:"available_qty,omitempty"`
}

// ValidationReport is the outcome of validating a cart against the catalog.
type ValidationReport struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
}
