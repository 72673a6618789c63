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

// checkoutService is the checkout surface the handler needs.
type checkoutService interface {
	CheckoutCOD(ctx context.Context, ownerID string, address *domain.Address) (*domain.Order, error)
	BuyNowCOD(ctx context.Context, ownerID string, line domain.BuyNowLine, address *domain.Address) (*domain.Order, error)
	CreateCartIntent(ctx context.Context, ownerID string, address *domain.Address) (*domain.PaymentIntent, error)
	CreateBuyNowIntent(ctx context.Context, ownerID string, line domain.BuyNowLine, address *domain.Address) (*domain.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, callerID, gatewayOrderID, gatewayPaymentID, signature string) (*domain.Order, error)
}

// CheckoutHandler exposes cart checkout, buy-now, and payment confirmation.
type CheckoutHandler struct {
	checkout checkoutService
	logger   *slog.Logger
}

func NewCheckoutHandler(checkout checkoutService, log *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, logger: log}
}

func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Route("/checkout", func(r chi.Router) {
		r.Post("/cod", h.checkoutCOD)
		r.Post("/intent", h.createCartIntent)
		r.Post("/buy-now/cod", h.buyNowCOD)
		r.Post("/buy-now/intent", h.createBuyNowIntent)
		r.Post("/confirm", h.confirm)
	})
}

type addressRequest struct {
	FullName    string `json:"full_name" validate:"required"`
	AddressLine string `json:"address_line" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state" validate:"required"`
	PostalCode  string `json:"postal_code" validate:"required"`
	Country     string `json:"country" validate:"required"`
	Phone       string `json:"phone"`
}

func (a *addressRequest) toDomain() *domain.Address {
	return &domain.Address{
		FullName:    a.FullName,
		AddressLine: a.AddressLine,
		City:        a.City,
		State:       a.State,
		PostalCode:  a.PostalCode,
		Country:     a.Country,
		Phone:       a.Phone,
	}
}

type checkoutCODRequest struct {
	ShippingAddress addressRequest `json:"shipping_address" validate:"required"`
}

func (h *CheckoutHandler) checkoutCOD(w http.ResponseWriter, r *http.Request) {
	var req checkoutCODRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.checkout.CheckoutCOD(r.Context(), middleware.UserIDFromContext(r.Context()),
		req.ShippingAddress.toDomain())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

type buyNowRequest struct {
	ProductID       string         `json:"product_id" validate:"required,uuid"`
	VariantID       string         `json:"variant_id"`
	Quantity        int            `json:"quantity" validate:"required,gte=1"`
	ShippingAddress addressRequest `json:"shipping_address" validate:"required"`
}

func (r *buyNowRequest) line() domain.BuyNowLine {
	return domain.BuyNowLine{ProductID: r.ProductID, VariantID: r.VariantID, Quantity: r.Quantity}
}

func (h *CheckoutHandler) buyNowCOD(w http.ResponseWriter, r *http.Request) {
	var req buyNowRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.checkout.BuyNowCOD(r.Context(), middleware.UserIDFromContext(r.Context()),
		req.line(), req.ShippingAddress.toDomain())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

func (h *CheckoutHandler) createCartIntent(w http.ResponseWriter, r *http.Request) {
	var req checkoutCODRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	intent, err := h.checkout.CreateCartIntent(r.Context(), middleware.UserIDFromContext(r.Context()),
		req.ShippingAddress.toDomain())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: intent})
}

func (h *CheckoutHandler) createBuyNowIntent(w http.ResponseWriter, r *http.Request) {
	var req buyNowRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	intent, err := h.checkout.CreateBuyNowIntent(r.Context(), middleware.UserIDFromContext(r.Context()),
		req.line(), req.ShippingAddress.toDomain())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: intent})
}

type confirmRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
}

func (h *CheckoutHandler) confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.checkout.ConfirmPayment(r.Context(), middleware.UserIDFromContext(r.Context()),
		req.GatewayOrderID, req.GatewayPaymentID, req.Signature)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}
