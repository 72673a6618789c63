package domain

import "time"

// Order status constants.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment method constants.
const (
	PaymentMethodCOD     = "cod"
	PaymentMethodGateway = "gateway"
)

// DefaultCurrency is used when the catalog does not price in anything else.
const DefaultCurrency = "INR"

// Actor roles recognized by the order workflow.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// Order represents a placed order. PaidAt is independent of Status: a
// gateway order is paid before fulfilment starts, a COD order only on
// delivery.
type Order struct {
	ID               string      `json:"id"`
	BuyerID          string      `json:"buyer_id"`
	Status           string      `json:"status"`
	Items            []OrderItem `json:"items"`
	SubtotalAmount   int64       `json:"subtotal_amount"`
	TotalAmount      int64       `json:"total_amount"`
	Currency         string      `json:"currency"`
	ShippingAddress  *Address    `json:"shipping_address,omitempty"`
	PaymentMethod    string      `json:"payment_method"`
	PaidAt           *time.Time  `json:"paid_at,omitempty"`
	GatewayOrderID   string      `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string      `json:"gateway_payment_id,omitempty"`
	CancelReason     string      `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// Address represents a shipping address.
type Address struct {
	FullName    string `json:"full_name"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	Phone       string `json:"phone,omitempty"`
}

// ValidStatuses returns all valid order statuses.
func ValidStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// AllowedTransitions defines which status transitions are valid.
// Delivered and cancelled are terminal.
func AllowedTransitions() map[string][]string {
	return map[string][]string{
		OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
		OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
		OrderStatusShipped:    {OrderStatusDelivered},
		OrderStatusDelivered:  {},
		OrderStatusCancelled:  {},
	}
}

// CanTransitionTo checks if the order can move to the target status.
func (o *Order) CanTransitionTo(target string) bool {
	allowed, ok := AllowedTransitions()[o.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// IsPaid reports whether payment has been captured for the order.
func (o *Order) IsPaid() bool {
	return o.PaidAt != nil
}

// ContainsSeller reports whether any item in the order belongs to the given
// seller. Sellers may only drive transitions on orders containing their items.
func (o *Order) ContainsSeller(sellerID string) bool {
	for _, item := range o.Items {
		if item.SellerID == sellerID {
			return true
		}
	}
	return false
}
