package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazaarhq/checkout/internal/domain"
	"github.com/bazaarhq/checkout/pkg/database"
	apperrors "github.com/bazaarhq/checkout/pkg/errors"
)

var cartCols = []string{"id", "owner_id", "product_id", "variant_id", "quantity", "created_at", "updated_at"}

func newCartTest(t *testing.T) (pgxmock.PgxPoolIface, *CartRepository) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewCartRepository(mock)
}

func TestCartUpsert(t *testing.T) {
	mock, repo := newCartTest(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO cart_items").
		WithArgs("row-1", "owner-1", "p1", "v1", 2, 5).
		WillReturnRows(pgxmock.NewRows(cartCols).
			AddRow("row-1", "owner-1", "p1", "v1", 4, now, now))

	row, err := repo.Upsert(context.Background(), &domain.CartRow{
		ID: "row-1", OwnerID: "owner-1", ProductID: "p1", VariantID: "v1", Quantity: 2,
	}, 5)
	require.NoError(t, err)
	assert.Equal(t, 4, row.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartUpsert_NilVariant(t *testing.T) {
	mock, repo := newCartTest(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO cart_items").
		WithArgs("row-1", "owner-1", "p1", nil, 1, 9).
		WillReturnRows(pgxmock.NewRows(cartCols).
			AddRow("row-1", "owner-1", "p1", "", 1, now, now))

	row, err := repo.Upsert(context.Background(), &domain.CartRow{
		ID: "row-1", OwnerID: "owner-1", ProductID: "p1", Quantity: 1,
	}, 9)
	require.NoError(t, err)
	assert.Empty(t, row.VariantID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartListByOwner(t *testing.T) {
	mock, repo := newCartTest(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM cart_items").
		WithArgs("owner-1").
		WillReturnRows(pgxmock.NewRows(cartCols).
			AddRow("row-1", "owner-1", "p1", "v1", 2, now, now).
			AddRow("row-2", "owner-1", "p2", "", 1, now, now))

	rows, err := repo.ListByOwner(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "p2", rows[1].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartGetByID_NotFound(t *testing.T) {
	mock, repo := newCartTest(t)

	mock.ExpectQuery("SELECT (.+) FROM cart_items").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(cartCols))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartUpdateQuantity_WrongOwner(t *testing.T) {
	mock, repo := newCartTest(t)

	mock.ExpectQuery("UPDATE cart_items").
		WithArgs("row-1", "intruder", 3).
		WillReturnRows(pgxmock.NewRows(cartCols))

	_, err := repo.UpdateQuantity(context.Background(), "row-1", "intruder", 3)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartDeleteRows(t *testing.T) {
	mock, repo := newCartTest(t)

	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs("owner-1", []string{"row-1", "row-2"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	n, err := repo.DeleteRows(context.Background(), "owner-1", []string{"row-1", "row-2"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartDeleteRows_Empty(t *testing.T) {
	_, repo := newCartTest(t)

	n, err := repo.DeleteRows(context.Background(), "owner-1", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
