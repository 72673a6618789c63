package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bazaarhq/checkout/internal/domain"
	"github.com/bazaarhq/checkout/pkg/httputil"
	"github.com/bazaarhq/checkout/pkg/middleware"
	"github.com/bazaarhq/checkout/pkg/validator"
)

// cartService is the cart surface the handler needs.
type cartService interface {
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)
	AddItem(ctx context.Context, ownerID, productID, variantID string, quantity int) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, ownerID, rowID string, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, ownerID, rowID string) error
	Clear(ctx context.Context, ownerID string) error
}

type cartValidator interface {
	Validate(ctx context.Context, ownerID string) (*domain.ValidationReport, error)
	Cleanup(ctx context.Context, ownerID string) (int64, error)
}

// CartHandler exposes the cart over HTTP. The owner is always the
// authenticated caller; cart routes never accept an owner ID.
type CartHandler struct {
	cart      cartService
	validator cartValidator
	logger    *slog.Logger
}

func NewCartHandler(cart cartService, validator cartValidator, log *slog.Logger) *CartHandler {
	return &CartHandler{cart: cart, validator: validator, logger: log}
}

func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.get)
		r.Delete("/", h.clear)
		r.Get("/validate", h.validate)
		r.Post("/cleanup", h.cleanup)
		r.Post("/items", h.addItem)
		r.Patch("/items/{itemID}", h.updateItem)
		r.Delete("/items/{itemID}", h.removeItem)
	})
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.Get(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	item, err := h.cart.AddItem(r.Context(), middleware.UserIDFromContext(r.Context()),
		req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: item})
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := httputil.ParseUUID(w, chi.URLParam(r, "itemID"))
	if !ok {
		return
	}

	var req updateItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	item, err := h.cart.UpdateQuantity(r.Context(), middleware.UserIDFromContext(r.Context()),
		itemID.String(), req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if item == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: item})
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := httputil.ParseUUID(w, chi.URLParam(r, "itemID"))
	if !ok {
		return
	}

	if err := h.cart.RemoveItem(r.Context(), middleware.UserIDFromContext(r.Context()), itemID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) validate(w http.ResponseWriter, r *http.Request) {
	report, err := h.validator.Validate(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: report})
}

type cleanupResponse struct {
	Removed int64 `json:"removed"`
}

func (h *CartHandler) cleanup(w http.ResponseWriter, r *http.Request) {
	removed, err := h.validator.Cleanup(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cleanupResponse{Removed: removed}})
}
