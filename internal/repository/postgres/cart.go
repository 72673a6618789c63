package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bazaarhq/checkout/internal/domain"
	"github.com/bazaarhq/checkout/pkg/database"
	apperrors "github.com/bazaarhq/checkout/pkg/errors"
)

// CartRepository stores cart rows in Postgres.
type CartRepository struct {
	db database.DBTX
}

func NewCartRepository(db database.DBTX) *CartRepository {
	return &CartRepository{db: db}
}

const cartColumns = `id, owner_id, product_id, COALESCE(variant_id, ''), quantity, created_at, updated_at`

func scanCartRow(row pgx.Row, r *domain.CartRow) error {
	return row.Scan(&r.ID, &r.OwnerID, &r.ProductID, &r.VariantID, &r.Quantity, &r.CreatedAt, &r.UpdatedAt)
}

// variantParam maps the empty variant to NULL so the storage shape stays
// nullable while the domain uses plain strings.
func variantParam(variantID string) any {
	if variantID == "" {
		return nil
	}
	return variantID
}

// Upsert inserts a row or folds the quantity into the existing
// (owner, product, variant) row, capped at maxQuantity.
func (r *CartRepository) Upsert(ctx context.Context, row *domain.CartRow, maxQuantity int) (*domain.CartRow, error) {
	query := `
		INSERT INTO cart_items (id, owner_id, product_id, variant_id, quantity)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, product_id, COALESCE(variant_id, ''))
		DO UPDATE SET
			quantity = LEAST(cart_items.quantity + EXCLUDED.quantity, $6),
			updated_at = NOW()
		RETURNING ` + cartColumns

	ctx, done := database.TraceQuery(ctx, "cart.upsert", query)

	var stored domain.CartRow
	err := scanCartRow(r.db.QueryRow(ctx, query,
		row.ID, row.OwnerID, row.ProductID, variantParam(row.VariantID), row.Quantity, maxQuantity,
	), &stored)
	done(err)
	if err != nil {
		return nil, fmt.Errorf("upsert cart row: %w", err)
	}

	return &stored, nil
}

func (r *CartRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.CartRow, error) {
	query := `
		SELECT ` + cartColumns + `
		FROM cart_items
		WHERE owner_id = $1
		ORDER BY created_at`

	ctx, done := database.TraceQuery(ctx, "cart.list", query)

	rows, err := r.db.Query(ctx, query, ownerID)
	done(err)
	if err != nil {
		return nil, fmt.Errorf("list cart rows: %w", err)
	}
	defer rows.Close()

	var result []domain.CartRow
	for rows.Next() {
		var row domain.CartRow
		if err := scanCartRow(rows, &row); err != nil {
			return nil, fmt.Errorf("scan cart row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart rows: %w", err)
	}

	return result, nil
}

func (r *CartRepository) GetByID(ctx context.Context, id string) (*domain.CartRow, error) {
	query := `
		SELECT ` + cartColumns + `
		FROM cart_items
		WHERE id = $1`

	ctx, done := database.TraceQuery(ctx, "cart.get", query)

	var row domain.CartRow
	err := scanCartRow(r.db.QueryRow(ctx, query, id), &row)
	done(err)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("cart item", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get cart row: %w", err)
	}

	return &row, nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, id, ownerID string, quantity int) (*domain.CartRow, error) {
	query := `
		UPDATE cart_items
		SET quantity = $3, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + cartColumns

	ctx, done := database.TraceQuery(ctx, "cart.update_quantity", query)

	var row domain.CartRow
	err := scanCartRow(r.db.QueryRow(ctx, query, id, ownerID, quantity), &row)
	done(err)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("cart item", id)
	}
	if err != nil {
		return nil, fmt.Errorf("update cart quantity: %w", err)
	}

	return &row, nil
}

// Delete removes a row. Deleting a row that is already gone is not an error.
func (r *CartRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM cart_items WHERE id = $1 AND owner_id = $2`

	ctx, done := database.TraceQuery(ctx, "cart.delete", query)

	_, err := r.db.Exec(ctx, query, id, ownerID)
	done(err)
	if err != nil {
		return fmt.Errorf("delete cart row: %w", err)
	}

	return nil
}

func (r *CartRepository) Clear(ctx context.Context, ownerID string) error {
	query := `DELETE FROM cart_items WHERE owner_id = $1`

	ctx, done := database.TraceQuery(ctx, "cart.clear", query)

	_, err := r.db.Exec(ctx, query, ownerID)
	done(err)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}

func (r *CartRepository) DeleteRows(ctx context.Context, ownerID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `DELETE FROM cart_items WHERE owner_id = $1 AND id = ANY($2)`

	ctx, done := database.TraceQuery(ctx, "cart.delete_rows", query)

	tag, err := r.db.Exec(ctx, query, ownerID, ids)
	done(err)
	if err != nil {
		return 0, fmt.Errorf("delete cart rows: %w", err)
	}

	return tag.RowsAffected(), nil
}
