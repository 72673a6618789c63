package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazaarhq/checkout/internal/domain"
	"github.com/bazaarhq/checkout/internal/repository"
	"github.com/bazaarhq/checkout/pkg/database"
	apperrors "github.com/bazaarhq/checkout/pkg/errors"
)

var orderCols = []string{
	"id", "buyer_id", "status", "subtotal_amount", "total_amount", "currency",
	"shipping_address", "payment_method", "paid_at",
	"gateway_order_id", "gateway_payment_id", "cancel_reason",
	"created_at", "updated_at",
}

var itemCols = []string{
	"id", "order_id", "product_id", "variant_id", "seller_id", "name", "sku", "price", "quantity", "subtotal",
}

func newOrderTest(t *testing.T) (pgxmock.PgxPoolIface, *OrderRepository) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewOrderRepository(mock)
}

func TestOrderGetByID(t *testing.T) {
	mock, repo := newOrderTest(t)
	now := time.Now()
	shipping := []byte(`{"full_name":"Asha Rao","city":"Pune"}`)

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("order-1").
		WillReturnRows(pgxmock.NewRows(orderCols).
			AddRow("order-1", "buyer-1", domain.OrderStatusPending, int64(59800), int64(59800), "INR",
				shipping, domain.PaymentMethodCOD, nil,
				"", "", "", now, now))

	mock.ExpectQuery("SELECT (.+) FROM order_items").
		WithArgs([]string{"order-1"}).
		WillReturnRows(pgxmock.NewRows(itemCols).
			AddRow("item-1", "order-1", "p1", "v1", "seller-1", "Cotton Tee", "TEE-S", int64(29900), 2, int64(59800)))

	order, err := repo.GetByID(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, "buyer-1", order.BuyerID)
	require.NotNil(t, order.ShippingAddress)
	assert.Equal(t, "Pune", order.ShippingAddress.City)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "seller-1", order.Items[0].SellerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderGetByID_NotFound(t *testing.T) {
	mock, repo := newOrderTest(t)

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(orderCols))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderList_BuyerScope(t *testing.T) {
	mock, repo := newOrderTest(t)
	now := time.Now()

	listCols := append(append([]string{}, orderCols...), "total")

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("buyer-1", (*string)(nil), "", 20, 0).
		WillReturnRows(pgxmock.NewRows(listCols).
			AddRow("order-1", "buyer-1", domain.OrderStatusDelivered, int64(1000), int64(1000), "INR",
				[]byte(nil), domain.PaymentMethodGateway, &now,
				"gw-1", "pay-1", "", now, now, int64(1)))

	mock.ExpectQuery("SELECT (.+) FROM order_items").
		WithArgs([]string{"order-1"}).
		WillReturnRows(pgxmock.NewRows(itemCols).
			AddRow("item-1", "order-1", "p1", "", "seller-1", "Bottle", "BTL-1", int64(1000), 1, int64(1000)))

	orders, total, err := repo.List(context.Background(), repository.OrderFilter{BuyerID: "buyer-1", Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].IsPaid())
	require.Len(t, orders[0].Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderList_Empty(t *testing.T) {
	mock, repo := newOrderTest(t)

	listCols := append(append([]string{}, orderCols...), "total")

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("", (*string)(nil), "seller-9", 20, 0).
		WillReturnRows(pgxmock.NewRows(listCols))

	orders, total, err := repo.List(context.Background(), repository.OrderFilter{SellerID: "seller-9", Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderUpdateStatus(t *testing.T) {
	mock, repo := newOrderTest(t)
	paidAt := time.Now()

	mock.ExpectExec("UPDATE orders").
		WithArgs("order-1", domain.OrderStatusShipped, domain.OrderStatusDelivered, "", &paidAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateStatus(context.Background(), repository.StatusUpdate{
		OrderID:    "order-1",
		FromStatus: domain.OrderStatusShipped,
		ToStatus:   domain.OrderStatusDelivered,
		PaidAt:     &paidAt,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderUpdateStatus_LostRace(t *testing.T) {
	mock, repo := newOrderTest(t)

	mock.ExpectExec("UPDATE orders").
		WithArgs("order-1", domain.OrderStatusPending, domain.OrderStatusCancelled, "changed my mind", (*time.Time)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), repository.StatusUpdate{
		OrderID:      "order-1",
		FromStatus:   domain.OrderStatusPending,
		ToStatus:     domain.OrderStatusCancelled,
		CancelReason: "changed my mind",
	})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_TRANSITION", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
