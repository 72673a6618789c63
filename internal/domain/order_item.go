package domain

// OrderItem is one line of an order. Name, SKU, SellerID, and Price are
// snapshots taken at checkout; later catalog edits do not rewrite history.
type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	SellerID  string `json:"seller_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// LineTotal returns price times quantity for the item.
func (i *OrderItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}
