package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bazaarhq/checkout/internal/domain"
	"github.com/bazaarhq/checkout/internal/repository"
	apperrors "github.com/bazaarhq/checkout/pkg/errors"
	"github.com/bazaarhq/checkout/pkg/pagination"
)

func pendingCODOrder() *domain.Order {
	return &domain.Order{
		ID:            "order-1",
		BuyerID:       "buyer-1",
		Status:        domain.OrderStatusPending,
		PaymentMethod: domain.PaymentMethodCOD,
		TotalAmount:   59800,
		Items: []domain.OrderItem{
			{ID: "item-1", OrderID: "order-1", SellerID: "seller-1", Quantity: 2, Price: 29900, Subtotal: 59800},
		},
	}
}

func newOrderService() (*mockOrderRepo, *OrderService) {
	orders := &mockOrderRepo{}
	return orders, NewOrderService(orders, quietEvents{}, discardLogger())
}

func TestList_RoleScoping(t *testing.T) {
	tests := []struct {
		role string
		want repository.OrderFilter
	}{
		{domain.RoleBuyer, repository.OrderFilter{BuyerID: "actor-1", Page: 1, PerPage: 20}},
		{domain.RoleSeller, repository.OrderFilter{SellerID: "actor-1", Page: 1, PerPage: 20}},
		{domain.RoleAdmin, repository.OrderFilter{Page: 1, PerPage: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			orders, svc := newOrderService()
			orders.On("List", mock.Anything, tt.want).Return([]domain.Order{}, int64(0), nil)

			_, err := svc.List(context.Background(), "actor-1", tt.role, nil, pagination.Params{Page: 1, PerPage: 20})
			require.NoError(t, err)
			orders.AssertExpectations(t)
		})
	}
}

func TestList_RejectsUnknownStatus(t *testing.T) {
	_, svc := newOrderService()
	bogus := "refunded"

	_, err := svc.List(context.Background(), "actor-1", domain.RoleBuyer, &bogus, pagination.Params{Page: 1, PerPage: 20})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_STATUS", appErr.Code)
}

func TestGet_Visibility(t *testing.T) {
	tests := []struct {
		name    string
		actorID string
		role    string
		visible bool
	}{
		{"owning buyer", "buyer-1", domain.RoleBuyer, true},
		{"other buyer", "buyer-2", domain.RoleBuyer, false},
		{"owning seller", "seller-1", domain.RoleSeller, true},
		{"other seller", "seller-2", domain.RoleSeller, false},
		{"admin", "admin-1", domain.RoleAdmin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, svc := newOrderService()
			orders.On("GetByID", mock.Anything, "order-1").Return(pendingCODOrder(), nil)

			order, err := svc.Get(context.Background(), tt.actorID, tt.role, "order-1")
			if tt.visible {
				require.NoError(t, err)
				assert.Equal(t, "order-1", order.ID)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrNotFound)
			}
		})
	}
}

func TestGet_Missing(t *testing.T) {
	orders, svc := newOrderService()
	orders.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NotFound("order", "missing"))

	_, err := svc.Get(context.Background(), "buyer-1", domain.RoleBuyer, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateStatus_SellerAdvancesOwnOrder(t *testing.T) {
	orders, svc := newOrderService()
	orders.On("GetByID", mock.Anything, "order-1").Return(pendingCODOrder(), nil).Once()
	orders.On("UpdateStatus", mock.Anything, repository.StatusUpdate{
		OrderID:    "order-1",
		FromStatus: domain.OrderStatusPending,
		ToStatus:   domain.OrderStatusProcessing,
	}).Return(nil)

	updated := pendingCODOrder()
	updated.Status = domain.OrderStatusProcessing
	orders.On("GetByID", mock.Anything, "order-1").Return(updated, nil).Once()

	order, err := svc.UpdateStatus(context.Background(), "seller-1", domain.RoleSeller, "order-1", domain.OrderStatusProcessing, "")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, order.Status)
	orders.AssertExpectations(t)
}

func TestUpdateStatus_ForeignSellerSeesNothing(t *testing.T) {
	orders, svc := newOrderService()
	orders.On("GetByID", mock.Anything, "order-1").Return(pendingCODOrder(), nil)

	_, err := svc.UpdateStatus(context.Background(), "seller-9", domain.RoleSeller, "order-1", domain.OrderStatusProcessing, "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestUpdateStatus_BuyerForbidden(t *testing.T) {
	orders, svc := newOrderService()
	orders.On("GetByID", mock.Anything, "order-1").Return(pendingCODOrder(), nil)

	_, err := svc.UpdateStatus(context.Background(), "buyer-1", domain.RoleBuyer, "order-1", domain.OrderStatusProcessing, "")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	orders, svc := newOrderService()
	delivered := pendingCODOrder()
	delivered.Status = domain.OrderStatusDelivered
	orders.On("GetByID", mock.Anything, "order-1").Return(delivered, nil)

	_, err := svc.UpdateStatus(context.Background(), "admin-1", domain.RoleAdmin, "order-1", domain.OrderStatusShipped, "")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_TRANSITION", appErr.Code)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	_, svc := newOrderService()

	_, err := svc.UpdateStatus(context.Background(), "admin-1", domain.RoleAdmin, "order-1", "refunded", "")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_STATUS", appErr.Code)
}

func TestUpdateStatus_CODDeliveryMarksPaid(t *testing.T) {
	orders, svc := newOrderService()
	shipped := pendingCODOrder()
	shipped.Status = domain.OrderStatusShipped
	orders.On("GetByID", mock.Anything, "order-1").Return(shipped, nil).Once()
	orders.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(u repository.StatusUpdate) bool {
		return u.ToStatus == domain.OrderStatusDelivered && u.PaidAt != nil
	})).Return(nil)

	delivered := pendingCODOrder()
	delivered.Status = domain.OrderStatusDelivered
	orders.On("GetByID", mock.Anything, "order-1").Return(delivered, nil).Once()

	_, err := svc.UpdateStatus(context.Background(), "admin-1", domain.RoleAdmin, "order-1", domain.OrderStatusDelivered, "")
	require.NoError(t, err)
	orders.AssertExpectations(t)
}

func TestCancel_OwnPendingOrder(t *testing.T) {
	orders, svc := newOrderService()
	orders.On("GetByID", mock.Anything, "order-1").Return(pendingCODOrder(), nil).Once()
	orders.On("UpdateStatus", mock.Anything, repository.StatusUpdate{
		OrderID:      "order-1",
		FromStatus:   domain.OrderStatusPending,
		ToStatus:     domain.OrderStatusCancelled,
		CancelReason: "ordered twice",
	}).Return(nil)

	cancelled := pendingCODOrder()
	cancelled.Status = domain.OrderStatusCancelled
	orders.On("GetByID", mock.Anything, "order-1").Return(cancelled, nil).Once()

	order, err := svc.Cancel(context.Background(), "buyer-1", "order-1", "ordered twice")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
}

func TestCancel_NotOwner(t *testing.T) {
	orders, svc := newOrderService()
	orders.On("GetByID", mock.Anything, "order-1").Return(pendingCODOrder(), nil)

	_, err := svc.Cancel(context.Background(), "buyer-2", "order-1", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCancel_AlreadyProcessing(t *testing.T) {
	orders, svc := newOrderService()
	processing := pendingCODOrder()
	processing.Status = domain.OrderStatusProcessing
	orders.On("GetByID", mock.Anything, "order-1").Return(processing, nil)

	_, err := svc.Cancel(context.Background(), "buyer-1", "order-1", "")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_TRANSITION", appErr.Code)
}
