package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bazaarhq/checkout/internal/catalog"
	"github.com/bazaarhq/checkout/internal/domain"
	"github.com/bazaarhq/checkout/internal/gateway"
	"github.com/bazaarhq/checkout/internal/repository"
)

type mockCartRepo struct{ mock.Mock }

func (m *mockCartRepo) Upsert(ctx context.Context, row *domain.CartRow, maxQuantity int) (*domain.CartRow, error) {
	args := m.Called(ctx, row, maxQuantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartRow), args.Error(1)
}

func (m *mockCartRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.CartRow, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartRow), args.Error(1)
}

func (m *mockCartRepo) GetByID(ctx context.Context, id string) (*domain.CartRow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartRow), args.Error(1)
}

func (m *mockCartRepo) UpdateQuantity(ctx context.Context, id, ownerID string, quantity int) (*domain.CartRow, error) {
	args := m.Called(ctx, id, ownerID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartRow), args.Error(1)
}

func (m *mockCartRepo) Delete(ctx context.Context, id, ownerID string) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

func (m *mockCartRepo) Clear(ctx context.Context, ownerID string) error {
	return m.Called(ctx, ownerID).Error(0)
}

func (m *mockCartRepo) DeleteRows(ctx context.Context, ownerID string, ids []string) (int64, error) {
	args := m.Called(ctx, ownerID, ids)
	return args.Get(0).(int64), args.Error(1)
}

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, update repository.StatusUpdate) error {
	return m.Called(ctx, update).Error(0)
}

type mockIntentRepo struct{ mock.Mock }

func (m *mockIntentRepo) Create(ctx context.Context, intent *domain.PaymentIntent) error {
	return m.Called(ctx, intent).Error(0)
}

func (m *mockIntentRepo) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, gatewayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}

func (m *mockIntentRepo) GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, gatewayPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}

type mockCheckoutRepo struct{ mock.Mock }

func (m *mockCheckoutRepo) Commit(ctx context.Context, commit repository.CheckoutCommit) error {
	return m.Called(ctx, commit).Error(0)
}

type mockLocker struct{ mock.Mock }

func (m *mockLocker) Acquire(ctx context.Context, ownerID string) (func(), error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *mockCatalog) GetProducts(ctx context.Context, ids []string) (map[string]*catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*catalog.Product), args.Error(1)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*gateway.Order, error) {
	args := m.Called(ctx, amount, currency, receipt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Order), args.Error(1)
}

type mockEvents struct{ mock.Mock }

func (m *mockEvents) OrderCreated(ctx context.Context, order *domain.Order) {
	m.Called(ctx, order)
}

func (m *mockEvents) OrderPaid(ctx context.Context, order *domain.Order) {
	m.Called(ctx, order)
}

func (m *mockEvents) OrderStatusChanged(ctx context.Context, order *domain.Order, fromStatus, actorID, reason string) {
	m.Called(ctx, order, fromStatus, actorID, reason)
}

func (m *mockEvents) CartCleared(ctx context.Context, ownerID string, rowCount int) {
	m.Called(ctx, ownerID, rowCount)
}

// quietEvents ignores every event. Tests that assert on events use
// mockEvents instead.
type quietEvents struct{}

func (quietEvents) OrderCreated(context.Context, *domain.Order)                         {}
func (quietEvents) OrderPaid(context.Context, *domain.Order)                            {}
func (quietEvents) OrderStatusChanged(context.Context, *domain.Order, string, string, string) {}
func (quietEvents) CartCleared(context.Context, string, int)                            {}
