package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bazaarhq/checkout/internal/catalog"
	"github.com/bazaarhq/checkout/internal/domain"
	"github.com/bazaarhq/checkout/internal/repository"
	apperrors "github.com/bazaarhq/checkout/pkg/errors"
)

// CartService manages an owner's cart rows. Prices, names, and stock are
// never stored with the cart; they are read from the catalog on every access.
type CartService struct {
	carts   repository.CartRepository
	catalog catalog.Client
	events  EventEmitter
	logger  *slog.Logger
}

func NewCartService(carts repository.CartRepository, cat catalog.Client, events EventEmitter, log *slog.Logger) *CartService {
	return &CartService{carts: carts, catalog: cat, events: events, logger: log}
}

// Get returns the owner's cart priced against the live catalog. Rows whose
// product or variant has vanished are still listed, with no price or stock;
// only live rows count toward the subtotal.
func (s *CartService) Get(ctx context.Context, ownerID string) (*domain.Cart, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("owner id is required")
	}

	rows, err := s.carts.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	cart := &domain.Cart{OwnerID: ownerID, Items: []domain.CartItem{}, Currency: domain.DefaultCurrency}
	if len(rows) == 0 {
		return cart, nil
	}

	products, err := s.catalog.GetProducts(ctx, productIDs(rows))
	if err != nil {
		return nil, fmt.Errorf("price cart against catalog: %w", err)
	}

	for _, state := range resolveRows(rows, products) {
		item := domain.CartItem{CartRow: state.row}
		if state.avail != nil {
			item.SellerID = state.avail.SellerID
			item.Name = state.avail.Name
			item.SKU = state.avail.SKU
			item.UnitPrice = state.avail.UnitPrice
			item.AvailableStock = state.avail.Stock
			item.LineTotal = state.avail.UnitPrice * int64(state.row.Quantity)
			cart.Subtotal += item.LineTotal
		}
		cart.Items = append(cart.Items, item)
	}

	return cart, nil
}

// AddItem puts a product in the cart. The stored quantity is clamped at the
// available stock, both for the new row and when folding into an existing
// one. Zero stock rejects the addition outright.
func (s *CartService) AddItem(ctx context.Context, ownerID, productID, variantID string, quantity int) (*domain.CartItem, error) {
	if ownerID == "" || productID == "" {
		return nil, apperrors.InvalidInput("owner id and product id are required")
	}
	if quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	avail, err := catalog.Resolve(product, variantID)
	if err != nil {
		return nil, err
	}
	if avail.Stock == 0 {
		return nil, apperrors.Unprocessable("OUT_OF_STOCK", "product is out of stock")
	}

	row := &domain.CartRow{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  catalog.Clamp(quantity, avail.Stock),
	}

	stored, err := s.carts.Upsert(ctx, row, avail.Stock)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "cart item added",
		"owner_id", ownerID, "product_id", productID, "quantity", stored.Quantity)

	return &domain.CartItem{
		CartRow:        *stored,
		SellerID:       avail.SellerID,
		Name:           avail.Name,
		SKU:            avail.SKU,
		UnitPrice:      avail.UnitPrice,
		AvailableStock: avail.Stock,
		LineTotal:      avail.UnitPrice * int64(stored.Quantity),
	}, nil
}

// UpdateQuantity sets an absolute quantity on a row the owner holds. A zero
// or negative quantity removes the row. The stored quantity is clamped at
// the current stock.
func (s *CartService) UpdateQuantity(ctx context.Context, ownerID, rowID string, quantity int) (*domain.CartItem, error) {
	if ownerID == "" || rowID == "" {
		return nil, apperrors.InvalidInput("owner id and cart item id are required")
	}

	if quantity <= 0 {
		if err := s.carts.Delete(ctx, rowID, ownerID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	row, err := s.carts.GetByID(ctx, rowID)
	if err != nil {
		return nil, err
	}
	// Another owner's row is indistinguishable from a missing one.
	if row.OwnerID != ownerID {
		return nil, apperrors.NotFound("cart item", rowID)
	}

	product, err := s.catalog.GetProduct(ctx, row.ProductID)
	if err != nil {
		return nil, err
	}
	avail, err := catalog.Resolve(product, row.VariantID)
	if err != nil {
		return nil, err
	}
	if avail.Stock == 0 {
		return nil, apperrors.Unprocessable("OUT_OF_STOCK", "product is out of stock")
	}

	stored, err := s.carts.UpdateQuantity(ctx, rowID, ownerID, catalog.Clamp(quantity, avail.Stock))
	if err != nil {
		return nil, err
	}

	return &domain.CartItem{
		CartRow:        *stored,
		SellerID:       avail.SellerID,
		Name:           avail.Name,
		SKU:            avail.SKU,
		UnitPrice:      avail.UnitPrice,
		AvailableStock: avail.Stock,
		LineTotal:      avail.UnitPrice * int64(stored.Quantity),
	}, nil
}

// RemoveItem deletes a row. Removing a row that is already gone succeeds.
func (s *CartService) RemoveItem(ctx context.Context, ownerID, rowID string) error {
	if ownerID == "" || rowID == "" {
		return apperrors.InvalidInput("owner id and cart item id are required")
	}
	return s.carts.Delete(ctx, rowID, ownerID)
}

// Clear empties the owner's cart.
func (s *CartService) Clear(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return apperrors.InvalidInput("owner id is required")
	}

	rows, err := s.carts.ListByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	if err := s.carts.Clear(ctx, ownerID); err != nil {
		return err
	}

	s.events.CartCleared(ctx, ownerID, len(rows))
	return nil
}
