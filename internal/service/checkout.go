package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bazaarhq/checkout/internal/catalog"
	"github.com/bazaarhq/checkout/internal/domain"
	"github.com/bazaarhq/checkout/internal/gateway"
	"github.com/bazaarhq/checkout/internal/repository"
	apperrors "github.com/bazaarhq/checkout/pkg/errors"
)

// CheckoutService turns carts and buy-now requests into orders. Every
// checkout snapshots prices and stock from the live catalog first, then
// commits the order, its items, the cart clearing, and the payment intent
// consumption as one transaction.
type CheckoutService struct {
	carts         repository.CartRepository
	orders        repository.OrderRepository
	intents       repository.IntentRepository
	commits       repository.CheckoutRepository
	locker        repository.CheckoutLocker
	catalog       catalog.Client
	gateway       gateway.Client
	events        EventEmitter
	webhookSecret string
	logger        *slog.Logger
}

type CheckoutServiceDeps struct {
	Carts         repository.CartRepository
	Orders        repository.OrderRepository
	Intents       repository.IntentRepository
	Commits       repository.CheckoutRepository
	Locker        repository.CheckoutLocker
	Catalog       catalog.Client
	Gateway       gateway.Client
	Events        EventEmitter
	WebhookSecret string
	Logger        *slog.Logger
}

func NewCheckoutService(deps CheckoutServiceDeps) *CheckoutService {
	return &CheckoutService{
		carts:         deps.Carts,
		orders:        deps.Orders,
		intents:       deps.Intents,
		commits:       deps.Commits,
		locker:        deps.Locker,
		catalog:       deps.Catalog,
		gateway:       deps.Gateway,
		events:        deps.Events,
		webhookSecret: deps.WebhookSecret,
		logger:        deps.Logger,
	}
}

// cartSnapshot is the priced state of a cart at one instant. The order is
// built from the snapshot, never from the live cart again.
type cartSnapshot struct {
	items    []domain.OrderItem
	rowIDs   []string
	subtotal int64
}

// snapshotCart prices the owner's cart. Any divergence from the catalog
// rejects the whole checkout; nothing is clamped or repaired here.
func (s *CheckoutService) snapshotCart(ctx context.Context, ownerID string) (*cartSnapshot, error) {
	rows, err := s.carts.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.Unprocessable("EMPTY_CART", "cart is empty")
	}

	products, err := s.catalog.GetProducts(ctx, productIDs(rows))
	if err != nil {
		return nil, err
	}

	var violations []domain.Violation
	snapshot := &cartSnapshot{}
	for _, state := range resolveRows(rows, products) {
		if state.violation != nil {
			violations = append(violations, *state.violation)
			continue
		}
		snapshot.items = append(snapshot.items, domain.OrderItem{
			ID:        uuid.NewString(),
			ProductID: state.row.ProductID,
			VariantID: state.row.VariantID,
			SellerID:  state.avail.SellerID,
			Name:      state.avail.Name,
			SKU:       state.avail.SKU,
			Price:     state.avail.UnitPrice,
			Quantity:  state.row.Quantity,
			Subtotal:  state.avail.UnitPrice * int64(state.row.Quantity),
		})
		snapshot.rowIDs = append(snapshot.rowIDs, state.row.ID)
		snapshot.subtotal += state.avail.UnitPrice * int64(state.row.Quantity)
	}

	if len(violations) > 0 {
		return nil, apperrors.Unprocessable("CART_INVALID", "cart no longer matches the catalog").
			WithDetails(violations)
	}

	return snapshot, nil
}

// snapshotLine prices a single buy-now line. Unlike cart additions the
// requested quantity is never clamped; asking for more than is in stock
// rejects the purchase.
func (s *CheckoutService) snapshotLine(ctx context.Context, line domain.BuyNowLine) (*domain.OrderItem, error) {
	if line.ProductID == "" || line.Quantity < 1 {
		return nil, apperrors.InvalidInput("product id and a positive quantity are required")
	}

	product, err := s.catalog.GetProduct(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	avail, err := catalog.Resolve(product, line.VariantID)
	if err != nil {
		return nil, err
	}
	if avail.Stock == 0 {
		return nil, apperrors.Unprocessable("OUT_OF_STOCK", "product is out of stock")
	}
	if line.Quantity > avail.Stock {
		return nil, apperrors.Unprocessable("INSUFFICIENT_STOCK", "requested quantity exceeds available stock").
			WithDetails(domain.Violation{
				ProductID:    line.ProductID,
				VariantID:    line.VariantID,
				Reason:       domain.ViolationInsufficientStock,
				RequestedQty: line.Quantity,
				AvailableQty: avail.Stock,
			})
	}

	return &domain.OrderItem{
		ID:        uuid.NewString(),
		ProductID: line.ProductID,
		VariantID: line.VariantID,
		SellerID:  avail.SellerID,
		Name:      avail.Name,
		SKU:       avail.SKU,
		Price:     avail.UnitPrice,
		Quantity:  line.Quantity,
		Subtotal:  avail.UnitPrice * int64(line.Quantity),
	}, nil
}

func newOrder(buyerID string, items []domain.OrderItem, subtotal int64, address *domain.Address, paymentMethod string) *domain.Order {
	order := &domain.Order{
		ID:              uuid.NewString(),
		BuyerID:         buyerID,
		Status:          domain.OrderStatusPending,
		Items:           items,
		SubtotalAmount:  subtotal,
		TotalAmount:     subtotal,
		Currency:        domain.DefaultCurrency,
		ShippingAddress: address,
		PaymentMethod:   paymentMethod,
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	return order
}

// CheckoutCOD places a cash-on-delivery order from the owner's cart. The
// cart is emptied in the same transaction that creates the order.
func (s *CheckoutService) CheckoutCOD(ctx context.Context, ownerID string, address *domain.Address) (*domain.Order, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("owner id is required")
	}
	if address == nil {
		return nil, apperrors.InvalidInput("shipping address is required")
	}

	release, err := s.locker.Acquire(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	defer release()

	snapshot, err := s.snapshotCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	order := newOrder(ownerID, snapshot.items, snapshot.subtotal, address, domain.PaymentMethodCOD)
	err = s.commits.Commit(ctx, repository.CheckoutCommit{
		Order:       order,
		ClearRowIDs: snapshot.rowIDs,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "order placed",
		"order_id", order.ID, "buyer_id", ownerID, "payment_method", order.PaymentMethod, "total", order.TotalAmount)
	s.events.OrderCreated(ctx, order)
	s.events.CartCleared(ctx, ownerID, len(snapshot.rowIDs))

	return s.orders.GetByID(ctx, order.ID)
}

// BuyNowCOD places a cash-on-delivery order for a single line without
// touching the cart.
func (s *CheckoutService) BuyNowCOD(ctx context.Context, ownerID string, line domain.BuyNowLine, address *domain.Address) (*domain.Order, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("owner id is required")
	}
	if address == nil {
		return nil, apperrors.InvalidInput("shipping address is required")
	}

	item, err := s.snapshotLine(ctx, line)
	if err != nil {
		return nil, err
	}

	order := newOrder(ownerID, []domain.OrderItem{*item}, item.Subtotal, address, domain.PaymentMethodCOD)
	if err := s.commits.Commit(ctx, repository.CheckoutCommit{Order: order}); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "order placed",
		"order_id", order.ID, "buyer_id", ownerID, "payment_method", order.PaymentMethod, "total", order.TotalAmount)
	s.events.OrderCreated(ctx, order)

	return s.orders.GetByID(ctx, order.ID)
}

// CreateCartIntent opens a payment order at the gateway for the current cart
// total and records the matching intent. No local order exists yet; that
// happens only on a verified confirmation.
func (s *CheckoutService) CreateCartIntent(ctx context.Context, ownerID string, address *domain.Address) (*domain.PaymentIntent, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("owner id is required")
	}
	if address == nil {
		return nil, apperrors.InvalidInput("shipping address is required")
	}

	snapshot, err := s.snapshotCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return s.createIntent(ctx, &domain.PaymentIntent{
		OwnerID:         ownerID,
		Amount:          snapshot.subtotal,
		Currency:        domain.DefaultCurrency,
		Mode:            domain.IntentModeCart,
		ShippingAddress: address,
	})
}

// CreateBuyNowIntent opens a payment order at the gateway for a single line.
// The line is pinned inside the intent so confirmation needs no further
// input and never reads the cart.
func (s *CheckoutService) CreateBuyNowIntent(ctx context.Context, ownerID string, line domain.BuyNowLine, address *domain.Address) (*domain.PaymentIntent, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("owner id is required")
	}
	if address == nil {
		return nil, apperrors.InvalidInput("shipping address is required")
	}

	item, err := s.snapshotLine(ctx, line)
	if err != nil {
		return nil, err
	}

	return s.createIntent(ctx, &domain.PaymentIntent{
		OwnerID:         ownerID,
		Amount:          item.Subtotal,
		Currency:        domain.DefaultCurrency,
		Mode:            domain.IntentModeBuyNow,
		BuyNow:          &line,
		ShippingAddress: address,
	})
}

func (s *CheckoutService) createIntent(ctx context.Context, intent *domain.PaymentIntent) (*domain.PaymentIntent, error) {
	intent.Receipt = "rcpt_" + uuid.NewString()
	intent.Status = domain.IntentStatusCreated

	gwOrder, err := s.gateway.CreateOrder(ctx, intent.Amount, intent.Currency, intent.Receipt)
	if err != nil {
		// The gateway call is ambiguous on failure. Creating nothing locally
		// keeps an unconfirmed gateway order harmless.
		s.logger.ErrorContext(ctx, "gateway order creation failed", "owner_id", intent.OwnerID, "error", err)
		return nil, apperrors.Unavailable("payment gateway is unavailable")
	}
	intent.GatewayOrderID = gwOrder.ID

	if err := s.intents.Create(ctx, intent); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "payment intent created",
		"gateway_order_id", intent.GatewayOrderID, "owner_id", intent.OwnerID, "mode", intent.Mode, "amount", intent.Amount)

	return intent, nil
}

// ConfirmPayment settles a gateway payment into an order. It verifies the
// (order, payment, signature) triple, short-circuits replays to the already
// created order, and otherwise commits the order atomically with the intent
// consumption and, for cart intents, the cart clearing.
//
// callerID is the authenticated buyer on the client confirmation path and
// empty on the webhook path, where the signature alone authenticates.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, callerID, gatewayOrderID, gatewayPaymentID, signature string) (*domain.Order, error) {
	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" {
		return nil, apperrors.InvalidInput("gateway order id, payment id, and signature are required")
	}

	// Replays are settled payments; return the order they already created.
	if existing, err := s.intents.GetByGatewayPaymentID(ctx, gatewayPaymentID); err == nil {
		if existing.Status != domain.IntentStatusConsumed || existing.OrderID == "" {
			return nil, apperrors.Unprocessable("PAYMENT_VERIFICATION_FAILED", "payment could not be verified")
		}
		return s.orders.GetByID(ctx, existing.OrderID)
	}

	intent, err := s.intents.GetByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return nil, apperrors.Unprocessable("UNKNOWN_INTENT", "no payment intent matches this gateway order")
	}

	if !gateway.VerifySignature(s.webhookSecret, gatewayOrderID, gatewayPaymentID, signature) {
		s.logger.WarnContext(ctx, "payment signature mismatch", "gateway_order_id", gatewayOrderID)
		return nil, apperrors.Unprocessable("PAYMENT_VERIFICATION_FAILED", "payment could not be verified")
	}
	if callerID != "" && callerID != intent.OwnerID {
		return nil, apperrors.Forbidden("payment intent belongs to another buyer")
	}
	if intent.Status == domain.IntentStatusConsumed {
		if intent.OrderID == "" {
			return nil, apperrors.Unprocessable("PAYMENT_VERIFICATION_FAILED", "payment could not be verified")
		}
		return s.orders.GetByID(ctx, intent.OrderID)
	}

	release, err := s.locker.Acquire(ctx, intent.OwnerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		items    []domain.OrderItem
		rowIDs   []string
		subtotal int64
	)
	switch intent.Mode {
	case domain.IntentModeBuyNow:
		if intent.BuyNow == nil {
			return nil, apperrors.Unprocessable("PAYMENT_VERIFICATION_FAILED", "payment could not be verified")
		}
		item, err := s.snapshotLine(ctx, *intent.BuyNow)
		if err != nil {
			return nil, err
		}
		items = []domain.OrderItem{*item}
		subtotal = item.Subtotal
	default:
		snapshot, err := s.snapshotCart(ctx, intent.OwnerID)
		if err != nil {
			return nil, err
		}
		items = snapshot.items
		rowIDs = snapshot.rowIDs
		subtotal = snapshot.subtotal
	}

	// The paid amount must still match what the order is worth. A cart
	// edited after the intent was created cannot settle against it.
	if subtotal != intent.Amount {
		return nil, apperrors.Unprocessable("PAYMENT_VERIFICATION_FAILED", "paid amount no longer matches the cart")
	}

	now := time.Now().UTC()
	order := newOrder(intent.OwnerID, items, subtotal, intent.ShippingAddress, domain.PaymentMethodGateway)
	order.GatewayOrderID = gatewayOrderID
	order.GatewayPaymentID = gatewayPaymentID
	order.PaidAt = &now

	err = s.commits.Commit(ctx, repository.CheckoutCommit{
		Order:       order,
		ClearRowIDs: rowIDs,
		Consume:     &repository.IntentConsume{GatewayOrderID: gatewayOrderID, GatewayPaymentID: gatewayPaymentID},
	})
	if err != nil {
		// A concurrent confirmation may have consumed the intent first;
		// that confirmation's order is the answer.
		if existing, lookupErr := s.intents.GetByGatewayPaymentID(ctx, gatewayPaymentID); lookupErr == nil && existing.OrderID != "" {
			return s.orders.GetByID(ctx, existing.OrderID)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "gateway payment settled",
		"order_id", order.ID, "buyer_id", order.BuyerID, "gateway_payment_id", gatewayPaymentID, "total", order.TotalAmount)
	s.events.OrderCreated(ctx, order)
	s.events.OrderPaid(ctx, order)
	if len(rowIDs) > 0 {
		s.events.CartCleared(ctx, intent.OwnerID, len(rowIDs))
	}

	return s.orders.GetByID(ctx, order.ID)
}
