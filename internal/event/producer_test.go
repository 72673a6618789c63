package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazaarhq/checkout/internal/domain"
	"github.com/bazaarhq/checkout/pkg/kafka"
)

type capturePublisher struct {
	topic  string
	events []*kafka.Event
	err    error
}

func (c *capturePublisher) Publish(_ context.Context, topic string, event *kafka.Event) error {
	c.topic = topic
	c.events = append(c.events, event)
	return c.err
}

func testOrder() *domain.Order {
	return &domain.Order{
		ID:            "order-1",
		BuyerID:       "buyer-1",
		Status:        domain.OrderStatusPending,
		TotalAmount:   59800,
		Currency:      "INR",
		PaymentMethod: domain.PaymentMethodCOD,
		Items:         []domain.OrderItem{{ID: "item-1"}},
	}
}

func TestOrderCreated(t *testing.T) {
	pub := &capturePublisher{}
	p := NewProducer(pub, slog.New(slog.NewTextHandler(io.Discard, nil)))

	p.OrderCreated(context.Background(), testOrder())

	require.Len(t, pub.events, 1)
	assert.Equal(t, TopicOrders, pub.topic)
	assert.Equal(t, TypeOrderCreated, pub.events[0].EventType)
	assert.Equal(t, "order-1", pub.events[0].AggregateID)

	var payload OrderCreatedPayload
	require.NoError(t, pub.events[0].UnmarshalData(&payload))
	assert.Equal(t, int64(59800), payload.TotalAmount)
	assert.Equal(t, 1, payload.ItemCount)
}

func TestOrderPaid_SkipsUnpaid(t *testing.T) {
	pub := &capturePublisher{}
	p := NewProducer(pub, slog.New(slog.NewTextHandler(io.Discard, nil)))

	p.OrderPaid(context.Background(), testOrder())
	assert.Empty(t, pub.events)

	order := testOrder()
	now := time.Now()
	order.PaidAt = &now
	order.GatewayPaymentID = "pay-1"
	p.OrderPaid(context.Background(), order)
	require.Len(t, pub.events, 1)
	assert.Equal(t, TypeOrderPaid, pub.events[0].EventType)
}

func TestEmit_PublishFailureIsSwallowed(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}
	p := NewProducer(pub, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// Must not panic or surface the error.
	p.CartCleared(context.Background(), "owner-1", 3)
	require.Len(t, pub.events, 1)
	assert.Equal(t, TypeCartCleared, pub.events[0].EventType)
}
