package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bazaarhq/checkout/internal/domain"
	"github.com/bazaarhq/checkout/internal/repository"
	"github.com/bazaarhq/checkout/pkg/database"
	apperrors "github.com/bazaarhq/checkout/pkg/errors"
)

// CheckoutRepository writes a checkout as one transaction: order, items,
// cart clearing, and intent consumption either all land or none do.
type CheckoutRepository struct {
	db database.DBTX
}

func NewCheckoutRepository(db database.DBTX) *CheckoutRepository {
	return &CheckoutRepository{db: db}
}

func (r *CheckoutRepository) Commit(ctx context.Context, commit repository.CheckoutCommit) error {
	ctx, done := database.TraceQuery(ctx, "checkout.commit", "checkout transaction")

	tx, err := r.db.Begin(ctx)
	if err != nil {
		done(err)
		return fmt.Errorf("begin checkout transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	order := commit.Order

	var shipping []byte
	if order.ShippingAddress != nil {
		if shipping, err = json.Marshal(order.ShippingAddress); err != nil {
			done(err)
			return fmt.Errorf("marshal shipping address: %w", err)
		}
	}

	insertOrder := `
		INSERT INTO orders (id, buyer_id, status, subtotal_amount, total_amount, currency,
			shipping_address, payment_method, paid_at, gateway_order_id, gateway_payment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''))`

	_, err = tx.Exec(ctx, insertOrder,
		order.ID, order.BuyerID, order.Status, order.SubtotalAmount, order.TotalAmount, order.Currency,
		shipping, order.PaymentMethod, order.PaidAt, order.GatewayOrderID, order.GatewayPaymentID,
	)
	if err != nil {
		done(err)
		return fmt.Errorf("insert order: %w", err)
	}

	insertItem := `
		INSERT INTO order_items (id, order_id, product_id, variant_id, seller_id, name, sku, price, quantity, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for _, item := range order.Items {
		_, err = tx.Exec(ctx, insertItem,
			item.ID, order.ID, item.ProductID, variantParam(item.VariantID),
			item.SellerID, item.Name, item.SKU, item.Price, item.Quantity, item.Subtotal,
		)
		if err != nil {
			done(err)
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if len(commit.ClearRowIDs) > 0 {
		_, err = tx.Exec(ctx,
			`DELETE FROM cart_items WHERE owner_id = $1 AND id = ANY($2)`,
			order.BuyerID, commit.ClearRowIDs,
		)
		if err != nil {
			done(err)
			return fmt.Errorf("clear cart rows: %w", err)
		}
	}

	if c := commit.Consume; c != nil {
		tag, err := tx.Exec(ctx, `
			UPDATE payment_intents
			SET status = $3, gateway_payment_id = $4, order_id = $5, verified_at = NOW()
			WHERE gateway_order_id = $1 AND status = $2`,
			c.GatewayOrderID, domain.IntentStatusCreated, domain.IntentStatusConsumed, c.GatewayPaymentID, order.ID,
		)
		if err != nil {
			done(err)
			return fmt.Errorf("consume payment intent: %w", err)
		}
		if tag.RowsAffected() == 0 {
			done(nil)
			return apperrors.Conflict("INTENT_CONSUMED",
				fmt.Sprintf("payment intent %s was already consumed", c.GatewayOrderID))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		done(err)
		return fmt.Errorf("commit checkout transaction: %w", err)
	}
	done(nil)

	return nil
}
