package repository

import (
	"context"
	"time"

	"github.com/bazaarhq/checkout/internal/domain"
)

// CartRepository persists cart rows. One row per (owner, product, variant);
// totals are always derived, never stored.
type CartRepository interface {
	// Upsert inserts a row or, when the (owner, product, variant) row already
	// exists, adds the quantity to it. The resulting quantity never exceeds
	// maxQuantity. Returns the stored row.
	Upsert(ctx context.Context, row *domain.CartRow, maxQuantity int) (*domain.CartRow, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.CartRow, error)
	GetByID(ctx context.Context, id string) (*domain.CartRow, error)
	// UpdateQuantity sets an absolute quantity on a row owned by ownerID.
	UpdateQuantity(ctx context.Context, id, ownerID string, quantity int) (*domain.CartRow, error)
	Delete(ctx context.Context, id, ownerID string) error
	Clear(ctx context.Context, ownerID string) error
	// DeleteRows removes the given rows for an owner and reports how many
	// were actually deleted.
	DeleteRows(ctx context.Context, ownerID string, ids []string) (int64, error)
}

// OrderFilter narrows order listings. BuyerID and SellerID scope the result
// to orders the caller may see; Status is an optional exact match.
type OrderFilter struct {
	BuyerID  string
	SellerID string
	Status   *string
	Page     int
	PerPage  int
}

// StatusUpdate is a guarded transition applied only when the order is still
// in the expected status.
type StatusUpdate struct {
	OrderID      string
	FromStatus   string
	ToStatus     string
	CancelReason string
	PaidAt       *time.Time
}

// OrderRepository reads and transitions committed orders. Order creation
// happens only through CheckoutRepository.Commit.
type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int64, error)
	// UpdateStatus applies a guarded transition. A concurrent transition that
	// already moved the order out of FromStatus surfaces as a conflict.
	UpdateStatus(ctx context.Context, update StatusUpdate) error
}

// IntentRepository persists payment intents keyed by the gateway order ID.
type IntentRepository interface {
	Create(ctx context.Context, intent *domain.PaymentIntent) error
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.PaymentIntent, error)
	// GetByGatewayPaymentID finds the intent a gateway payment already
	// consumed, if any. Drives replay short-circuiting.
	GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*domain.PaymentIntent, error)
}

// IntentConsume marks an intent verified and consumed as part of a checkout
// commit.
type IntentConsume struct {
	GatewayOrderID   string
	GatewayPaymentID string
}

// CheckoutCommit is everything a checkout writes in one transaction: the
// order with its items, the cart rows it empties, and the intent it consumes.
// ClearRowIDs is empty for buy-now; Consume is nil for cash on delivery.
type CheckoutCommit struct {
	Order       *domain.Order
	ClearRowIDs []string
	Consume     *IntentConsume
}

// CheckoutRepository performs the atomic checkout commit.
type CheckoutRepository interface {
	Commit(ctx context.Context, commit CheckoutCommit) error
}

// CheckoutLocker serializes checkouts per owner. Acquire fails with a
// conflict while another checkout for the same owner is in flight.
type CheckoutLocker interface {
	Acquire(ctx context.Context, ownerID string) (release func(), err error)
}
