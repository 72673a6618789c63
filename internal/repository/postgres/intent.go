package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bazaarhq/checkout/internal/domain"
	"github.com/bazaarhq/checkout/pkg/database"
	apperrors "github.com/bazaarhq/checkout/pkg/errors"
)

// IntentRepository stores payment intents keyed by the gateway order ID.
type IntentRepository struct {
	db database.DBTX
}

func NewIntentRepository(db database.DBTX) *IntentRepository {
	return &IntentRepository{db: db}
}

const intentColumns = `gateway_order_id, owner_id, amount, currency, receipt, mode,
		buy_now, shipping_address, status,
		COALESCE(gateway_payment_id, ''), COALESCE(order_id, ''),
		created_at, verified_at`

func scanIntent(row pgx.Row, in *domain.PaymentIntent) error {
	var buyNow, shipping []byte
	err := row.Scan(
		&in.GatewayOrderID, &in.OwnerID, &in.Amount, &in.Currency, &in.Receipt, &in.Mode,
		&buyNow, &shipping, &in.Status,
		&in.GatewayPaymentID, &in.OrderID,
		&in.CreatedAt, &in.VerifiedAt,
	)
	if err != nil {
		return err
	}
	if len(buyNow) > 0 {
		if err := json.Unmarshal(buyNow, &in.BuyNow); err != nil {
			return fmt.Errorf("unmarshal buy-now line: %w", err)
		}
	}
	if len(shipping) > 0 {
		if err := json.Unmarshal(shipping, &in.ShippingAddress); err != nil {
			return fmt.Errorf("unmarshal shipping address: %w", err)
		}
	}
	return nil
}

func (r *IntentRepository) Create(ctx context.Context, intent *domain.PaymentIntent) error {
	query := `
		INSERT INTO payment_intents (gateway_order_id, owner_id, amount, currency, receipt, mode, buy_now, shipping_address, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	var (
		buyNow   []byte
		shipping []byte
		err      error
	)
	if intent.BuyNow != nil {
		if buyNow, err = json.Marshal(intent.BuyNow); err != nil {
			return fmt.Errorf("marshal buy-now line: %w", err)
		}
	}
	if intent.ShippingAddress != nil {
		if shipping, err = json.Marshal(intent.ShippingAddress); err != nil {
			return fmt.Errorf("marshal shipping address: %w", err)
		}
	}

	ctx, done := database.TraceQuery(ctx, "intent.create", query)

	_, err = r.db.Exec(ctx, query,
		intent.GatewayOrderID, intent.OwnerID, intent.Amount, intent.Currency,
		intent.Receipt, intent.Mode, buyNow, shipping, intent.Status,
	)
	done(err)
	if err != nil {
		return fmt.Errorf("create payment intent: %w", err)
	}

	return nil
}

func (r *IntentRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.PaymentIntent, error) {
	query := `
		SELECT ` + intentColumns + `
		FROM payment_intents
		WHERE gateway_order_id = $1`

	ctx, done := database.TraceQuery(ctx, "intent.get", query)

	var intent domain.PaymentIntent
	err := scanIntent(r.db.QueryRow(ctx, query, gatewayOrderID), &intent)
	done(err)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("payment intent", gatewayOrderID)
	}
	if err != nil {
		return nil, fmt.Errorf("get payment intent: %w", err)
	}

	return &intent, nil
}

func (r *IntentRepository) GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*domain.PaymentIntent, error) {
	query := `
		SELECT ` + intentColumns + `
		FROM payment_intents
		WHERE gateway_payment_id = $1`

	ctx, done := database.TraceQuery(ctx, "intent.get_by_payment", query)

	var intent domain.PaymentIntent
	err := scanIntent(r.db.QueryRow(ctx, query, gatewayPaymentID), &intent)
	done(err)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("payment intent", gatewayPaymentID)
	}
	if err != nil {
		return nil, fmt.Errorf("get payment intent by payment id: %w", err)
	}

	return &intent, nil
}
