// Package service implements the checkout business rules on top of the
// repositories and the catalog and payment gateway collaborators.
package service

import (
	"context"

	"github.com/bazaarhq/checkout/internal/catalog"
	"github.com/bazaarhq/checkout/internal/domain"
)

// EventEmitter publishes domain events. Emitting never fails the operation
// that produced the event.
type EventEmitter interface {
	OrderCreated(ctx context.Context, order *domain.Order)
	OrderPaid(ctx context.Context, order *domain.Order)
	OrderStatusChanged(ctx context.Context, order *domain.Order, fromStatus, actorID, reason string)
	CartCleared(ctx context.Context, ownerID string, rowCount int)
}

// rowState is one cart row checked against the live catalog. violation is set
// when the row cannot ship as-is; avail is set whenever the product and
// variant still resolve, so an over-stock row carries both.
type rowState struct {
	row       domain.CartRow
	avail     *catalog.Availability
	violation *domain.Violation
}

// resolveRows checks every cart row against the catalog. A vanished product
// or variant and a quantity above stock all surface as violations; nothing is
// repaired here.
func resolveRows(rows []domain.CartRow, products map[string]*catalog.Product) []rowState {
	states := make([]rowState, 0, len(rows))
	for _, row := range rows {
		product := products[row.ProductID]
		if product == nil || !product.Active {
			states = append(states, rowState{row: row, violation: &domain.Violation{
				RowID:     row.ID,
				ProductID: row.ProductID,
				VariantID: row.VariantID,
				Reason:    domain.ViolationProductRemoved,
			}})
			continue
		}

		avail, err := catalog.Resolve(product, row.VariantID)
		if err != nil {
			states = append(states, rowState{row: row, violation: &domain.Violation{
				RowID:     row.ID,
				ProductID: row.ProductID,
				VariantID: row.VariantID,
				Reason:    domain.ViolationVariantRemoved,
			}})
			continue
		}

		if row.Quantity > avail.Stock {
			states = append(states, rowState{row: row, avail: avail, violation: &domain.Violation{
				RowID:        row.ID,
				ProductID:    row.ProductID,
				VariantID:    row.VariantID,
				Reason:       domain.ViolationInsufficientStock,
				RequestedQty: row.Quantity,
				AvailableQty: avail.Stock,
			}})
			continue
		}

		states = append(states, rowState{row: row, avail: avail})
	}
	return states
}

func productIDs(rows []domain.CartRow) []string {
	seen := make(map[string]struct{}, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.ProductID]; ok {
			continue
		}
		seen[row.ProductID] = struct{}{}
		ids = append(ids, row.ProductID)
	}
	return ids
}
