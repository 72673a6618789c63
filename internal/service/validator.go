package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bazaarhq/checkout/internal/catalog"
	"github.com/bazaarhq/checkout/internal/domain"
	"github.com/bazaarhq/checkout/internal/repository"
	apperrors "github.com/bazaarhq/checkout/pkg/errors"
)

// CartValidator checks cart rows against the live catalog and reports
// findings as data. It never repairs the cart on its own; Cleanup removes
// invalid rows only when explicitly asked.
type CartValidator struct {
	carts   repository.CartRepository
	catalog catalog.Client
	logger  *slog.Logger
}

func NewCartValidator(carts repository.CartRepository, cat catalog.Client, log *slog.Logger) *CartValidator {
	return &CartValidator{carts: carts, catalog: cat, logger: log}
}

// Validate reports every way the cart diverged from the catalog since rows
// were added: removed products, removed variants, and quantities above stock.
func (v *CartValidator) Validate(ctx context.Context, ownerID string) (*domain.ValidationReport, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("owner id is required")
	}

	rows, err := v.carts.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	report := &domain.ValidationReport{Valid: true, Violations: []domain.Violation{}}
	if len(rows) == 0 {
		return report, nil
	}

	products, err := v.catalog.GetProducts(ctx, productIDs(rows))
	if err != nil {
		return nil, fmt.Errorf("validate cart against catalog: %w", err)
	}

	for _, state := range resolveRows(rows, products) {
		if state.violation != nil {
			report.Violations = append(report.Violations, *state.violation)
		}
	}
	report.Valid = len(report.Violations) == 0

	return report, nil
}

// Cleanup removes every invalid row, whatever the violation, and reports how
// many were deleted. Whole rows go; quantities are never reduced in place.
func (v *CartValidator) Cleanup(ctx context.Context, ownerID string) (int64, error) {
	report, err := v.Validate(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	invalid := make([]string, 0, len(report.Violations))
	for _, violation := range report.Violations {
		invalid = append(invalid, violation.RowID)
	}
	if len(invalid) == 0 {
		return 0, nil
	}

	deleted, err := v.carts.DeleteRows(ctx, ownerID, invalid)
	if err != nil {
		return 0, err
	}

	v.logger.InfoContext(ctx, "cart cleanup removed invalid rows",
		"owner_id", ownerID, "removed", deleted)

	return deleted, nil
}
