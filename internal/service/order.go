package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bazaarhq/checkout/internal/domain"
	"github.com/bazaarhq/checkout/internal/repository"
	apperrors "github.com/bazaarhq/checkout/pkg/errors"
	"github.com/bazaarhq/checkout/pkg/pagination"
)

// OrderService reads orders and drives their status machine. Buyers see
// their own orders, sellers the orders containing their items, admins
// everything.
type OrderService struct {
	orders repository.OrderRepository
	events EventEmitter
	logger *slog.Logger
}

func NewOrderService(orders repository.OrderRepository, events EventEmitter, log *slog.Logger) *OrderService {
	return &OrderService{orders: orders, events: events, logger: log}
}

// List returns the orders the actor may see, scoped by role.
func (s *OrderService) List(ctx context.Context, actorID, role string, status *string, page pagination.Params) (*pagination.Result[domain.Order], error) {
	if actorID == "" {
		return nil, apperrors.InvalidInput("actor id is required")
	}
	if status != nil && !domain.IsValidStatus(*status) {
		return nil, apperrors.New("INVALID_STATUS", fmt.Sprintf("unknown order status %q", *status), 400)
	}

	filter := repository.OrderFilter{Status: status, Page: page.Page, PerPage: page.PerPage}
	switch role {
	case domain.RoleAdmin:
	case domain.RoleSeller:
		filter.SellerID = actorID
	default:
		filter.BuyerID = actorID
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := pagination.NewResult(orders, int(total), page)
	return &result, nil
}

// Get returns one order. An order the actor may not see is reported as
// missing, not as forbidden.
func (s *OrderService) Get(ctx context.Context, actorID, role, orderID string) (*domain.Order, error) {
	if actorID == "" || orderID == "" {
		return nil, apperrors.InvalidInput("actor id and order id are required")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.canSee(order, actorID, role) {
		return nil, apperrors.NotFound("order", orderID)
	}

	return order, nil
}

func (s *OrderService) canSee(order *domain.Order, actorID, role string) bool {
	switch role {
	case domain.RoleAdmin:
		return true
	case domain.RoleSeller:
		return order.ContainsSeller(actorID) || order.BuyerID == actorID
	default:
		return order.BuyerID == actorID
	}
}

// UpdateStatus moves an order along the status machine. Admins may drive any
// allowed transition; a seller only on orders containing their items. A COD
// order is marked paid the moment it is delivered.
func (s *OrderService) UpdateStatus(ctx context.Context, actorID, role, orderID, newStatus, reason string) (*domain.Order, error) {
	if actorID == "" || orderID == "" {
		return nil, apperrors.InvalidInput("actor id and order id are required")
	}
	if !domain.IsValidStatus(newStatus) {
		return nil, apperrors.New("INVALID_STATUS", fmt.Sprintf("unknown order status %q", newStatus), 400)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch role {
	case domain.RoleAdmin:
	case domain.RoleSeller:
		if !order.ContainsSeller(actorID) {
			return nil, apperrors.NotFound("order", orderID)
		}
	default:
		return nil, apperrors.Forbidden("buyers cannot change order status")
	}

	if !order.CanTransitionTo(newStatus) {
		return nil, apperrors.Conflict("INVALID_TRANSITION",
			fmt.Sprintf("cannot move order from %s to %s", order.Status, newStatus))
	}

	update := repository.StatusUpdate{
		OrderID:    orderID,
		FromStatus: order.Status,
		ToStatus:   newStatus,
	}
	if newStatus == domain.OrderStatusCancelled {
		update.CancelReason = reason
	}
	if newStatus == domain.OrderStatusDelivered && order.PaymentMethod == domain.PaymentMethodCOD && !order.IsPaid() {
		now := time.Now().UTC()
		update.PaidAt = &now
	}

	if err := s.orders.UpdateStatus(ctx, update); err != nil {
		return nil, err
	}

	updated, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "order status changed",
		"order_id", orderID, "from", order.Status, "to", newStatus, "actor_id", actorID)
	s.events.OrderStatusChanged(ctx, updated, order.Status, actorID, reason)
	if update.PaidAt != nil {
		s.events.OrderPaid(ctx, updated)
	}

	return updated, nil
}

// Cancel lets a buyer cancel their own order while it is still pending.
// Anything later in the lifecycle needs the seller or an admin.
func (s *OrderService) Cancel(ctx context.Context, actorID, orderID, reason string) (*domain.Order, error) {
	if actorID == "" || orderID == "" {
		return nil, apperrors.InvalidInput("actor id and order id are required")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != actorID {
		return nil, apperrors.NotFound("order", orderID)
	}
	if order.Status != domain.OrderStatusPending {
		return nil, apperrors.Conflict("INVALID_TRANSITION",
			fmt.Sprintf("cannot cancel an order that is %s", order.Status))
	}

	update := repository.StatusUpdate{
		OrderID:      orderID,
		FromStatus:   domain.OrderStatusPending,
		ToStatus:     domain.OrderStatusCancelled,
		CancelReason: reason,
	}
	if err := s.orders.UpdateStatus(ctx, update); err != nil {
		return nil, err
	}

	updated, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "order cancelled by buyer", "order_id", orderID, "buyer_id", actorID)
	s.events.OrderStatusChanged(ctx, updated, domain.OrderStatusPending, actorID, reason)

	return updated, nil
}
