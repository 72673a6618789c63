package domain

import "time"

// Payment intent modes.
const (
	IntentModeCart   = "cart"
	IntentModeBuyNow = "buy_now"
)

// Payment intent statuses. An intent is created when the gateway order is
// opened and consumed when the local order exists. Consumed is terminal;
// re-confirming a consumed intent returns the existing order.
const (
	IntentStatusCreated  = "created"
	IntentStatusConsumed = "consumed"
)

// BuyNowLine is the single line captured by a buy-now intent.
type BuyNowLine struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

// PaymentIntent records a gateway payment attempt. The shipping address and
// mode are captured at creation so confirmation, whether from the client or
// the webhook, needs no further input.
type PaymentIntent struct {
	GatewayOrderID   string      `json:"gateway_order_id"`
	OwnerID          string      `json:"owner_id"`
	Amount           int64       `json:"amount"`
	Currency         string      `json:"currency"`
	Receipt          string      `json:"receipt"`
	Mode             string      `json:"mode"`
	BuyNow           *BuyNowLine `json:"buy_now,omitempty"`
	ShippingAddress  *Address    `json:"shipping_address,omitempty"`
	Status           string      `json:"status"`
	GatewayPaymentID string      `json:"gateway_payment_id,omitempty"`
	OrderID          string      `json:"order_id,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	VerifiedAt       *time.Time  `json:"verified_at,omitempty"`
}
