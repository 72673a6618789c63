// Package event publishes checkout domain events. Publishing is best effort;
// a broker outage never fails the request that produced the event.
package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/bazaarhq/checkout/internal/domain"
	"github.com/bazaarhq/checkout/pkg/kafka"
	"github.com/bazaarhq/checkout/pkg/logger"
)

const (
	TopicOrders = "checkout.orders"
	TopicCarts  = "checkout.carts"

	TypeOrderCreated       = "checkout.order.created"
	TypeOrderPaid          = "checkout.order.paid"
	TypeOrderStatusChanged = "checkout.order.status_changed"
	TypeCartCleared        = "checkout.cart.cleared"

	source = "checkout-service"
)

// Publisher is the subset of the Kafka producer the event layer needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// Producer emits checkout events to Kafka.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

func NewProducer(publisher Publisher, log *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: log}
}

// OrderCreatedPayload is the data of an order.created event.
type OrderCreatedPayload struct {
	OrderID       string `json:"order_id"`
	BuyerID       string `json:"buyer_id"`
	TotalAmount   int64  `json:"total_amount"`
	Currency      string `json:"currency"`
	PaymentMethod string `json:"payment_method"`
	ItemCount     int    `json:"item_count"`
}

// OrderPaidPayload is the data of an order.paid event.
type OrderPaidPayload struct {
	OrderID          string    `json:"order_id"`
	BuyerID          string    `json:"buyer_id"`
	TotalAmount      int64     `json:"total_amount"`
	GatewayPaymentID string    `json:"gateway_payment_id,omitempty"`
	PaidAt           time.Time `json:"paid_at"`
}

// OrderStatusChangedPayload is the data of an order.status_changed event.
type OrderStatusChangedPayload struct {
	OrderID    string `json:"order_id"`
	BuyerID    string `json:"buyer_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	ActorID    string `json:"actor_id"`
	Reason     string `json:"reason,omitempty"`
}

// CartClearedPayload is the data of a cart.cleared event.
type CartClearedPayload struct {
	OwnerID  string `json:"owner_id"`
	RowCount int    `json:"row_count"`
}

func (p *Producer) OrderCreated(ctx context.Context, order *domain.Order) {
	p.emit(ctx, TopicOrders, TypeOrderCreated, order.ID, "order", OrderCreatedPayload{
		OrderID:       order.ID,
		BuyerID:       order.BuyerID,
		TotalAmount:   order.TotalAmount,
		Currency:      order.Currency,
		PaymentMethod: order.PaymentMethod,
		ItemCount:     len(order.Items),
	})
}

func (p *Producer) OrderPaid(ctx context.Context, order *domain.Order) {
	if order.PaidAt == nil {
		return
	}
	p.emit(ctx, TopicOrders, TypeOrderPaid, order.ID, "order", OrderPaidPayload{
		OrderID:          order.ID,
		BuyerID:          order.BuyerID,
		TotalAmount:      order.TotalAmount,
		GatewayPaymentID: order.GatewayPaymentID,
		PaidAt:           *order.PaidAt,
	})
}

func (p *Producer) OrderStatusChanged(ctx context.Context, order *domain.Order, fromStatus, actorID, reason string) {
	p.emit(ctx, TopicOrders, TypeOrderStatusChanged, order.ID, "order", OrderStatusChangedPayload{
		OrderID:    order.ID,
		BuyerID:    order.BuyerID,
		FromStatus: fromStatus,
		ToStatus:   order.Status,
		ActorID:    actorID,
		Reason:     reason,
	})
}

func (p *Producer) CartCleared(ctx context.Context, ownerID string, rowCount int) {
	p.emit(ctx, TopicCarts, TypeCartCleared, ownerID, "cart", CartClearedPayload{
		OwnerID:  ownerID,
		RowCount: rowCount,
	})
}

func (p *Producer) emit(ctx context.Context, topic, eventType, aggregateID, aggregateType string, payload any) {
	evt, err := kafka.NewEvent(eventType, aggregateID, aggregateType, source, payload)
	if err != nil {
		p.logger.Error("failed to build event", "event_type", eventType, "error", err)
		return
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		evt.WithCorrelationID(cid)
	}

	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		p.logger.Error("failed to publish event",
			"event_type", eventType, "aggregate_id", aggregateID, "error", err)
	}
}
