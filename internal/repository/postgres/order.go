package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bazaarhq/checkout/internal/domain"
	"github.com/bazaarhq/checkout/internal/repository"
	"github.com/bazaarhq/checkout/pkg/database"
	apperrors "github.com/bazaarhq/checkout/pkg/errors"
)

// OrderRepository reads and transitions orders in Postgres.
type OrderRepository struct {
	db database.DBTX
}

func NewOrderRepository(db database.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, buyer_id, status, subtotal_amount, total_amount, currency,
		shipping_address, payment_method, paid_at,
		COALESCE(gateway_order_id, ''), COALESCE(gateway_payment_id, ''), COALESCE(cancel_reason, ''),
		created_at, updated_at`

func scanOrder(row pgx.Row, o *domain.Order) error {
	var shipping []byte
	err := row.Scan(
		&o.ID, &o.BuyerID, &o.Status, &o.SubtotalAmount, &o.TotalAmount, &o.Currency,
		&shipping, &o.PaymentMethod, &o.PaidAt,
		&o.GatewayOrderID, &o.GatewayPaymentID, &o.CancelReason,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if len(shipping) > 0 {
		if err := json.Unmarshal(shipping, &o.ShippingAddress); err != nil {
			return fmt.Errorf("unmarshal shipping address: %w", err)
		}
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1`

	ctx, done := database.TraceQuery(ctx, "order.get", query)

	var order domain.Order
	err := scanOrder(r.db.QueryRow(ctx, query, id), &order)
	done(err)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.loadItems(ctx, []string{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]

	return &order, nil
}

// List returns orders matching the filter, newest first, with the total
// match count. A seller filter narrows to orders containing that seller's
// items; the order rows themselves are returned whole.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int64, error) {
	query := `
		SELECT ` + orderColumns + `, COUNT(*) OVER() AS total
		FROM orders
		WHERE ($1 = '' OR buyer_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3 = '' OR id IN (SELECT order_id FROM order_items WHERE seller_id = $3))
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * perPage
	}

	ctx, done := database.TraceQuery(ctx, "order.list", query)

	rows, err := r.db.Query(ctx, query, filter.BuyerID, filter.Status, filter.SellerID, perPage, offset)
	done(err)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var (
		orders []domain.Order
		total  int64
	)
	for rows.Next() {
		var (
			o        domain.Order
			shipping []byte
		)
		err := rows.Scan(
			&o.ID, &o.BuyerID, &o.Status, &o.SubtotalAmount, &o.TotalAmount, &o.Currency,
			&shipping, &o.PaymentMethod, &o.PaidAt,
			&o.GatewayOrderID, &o.GatewayPaymentID, &o.CancelReason,
			&o.CreatedAt, &o.UpdatedAt, &total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		if len(shipping) > 0 {
			if err := json.Unmarshal(shipping, &o.ShippingAddress); err != nil {
				return nil, 0, fmt.Errorf("unmarshal shipping address: %w", err)
			}
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}

	if len(orders) > 0 {
		ids := make([]string, len(orders))
		for i := range orders {
			ids[i] = orders[i].ID
		}
		items, err := r.loadItems(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range orders {
			orders[i].Items = items[orders[i].ID]
		}
	}

	return orders, total, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, COALESCE(variant_id, ''), seller_id, name, sku, price, quantity, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id`

	ctx, done := database.TraceQuery(ctx, "order.load_items", query)

	rows, err := r.db.Query(ctx, query, orderIDs)
	done(err)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]domain.OrderItem)
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.VariantID,
			&item.SellerID, &item.Name, &item.SKU, &item.Price, &item.Quantity, &item.Subtotal,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

// UpdateStatus applies a transition only while the order is still in the
// expected status. Zero rows updated means another transition won the race.
func (r *OrderRepository) UpdateStatus(ctx context.Context, update repository.StatusUpdate) error {
	query := `
		UPDATE orders
		SET status = $3,
			cancel_reason = NULLIF($4, ''),
			paid_at = COALESCE($5, paid_at),
			updated_at = NOW()
		WHERE id = $1 AND status = $2`

	ctx, done := database.TraceQuery(ctx, "order.update_status", query)

	tag, err := r.db.Exec(ctx, query,
		update.OrderID, update.FromStatus, update.ToStatus, update.CancelReason, update.PaidAt,
	)
	done(err)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Conflict("INVALID_TRANSITION",
			fmt.Sprintf("order %s is no longer %s", update.OrderID, update.FromStatus))
	}

	return nil
}
