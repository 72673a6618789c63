package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bazaarhq/checkout/pkg/httputil"
	"github.com/bazaarhq/checkout/pkg/validator"
)

// WebhookHandler receives gateway payment notifications. The route is
// unauthenticated; the HMAC signature in the payload is the credential.
type WebhookHandler struct {
	checkout checkoutService
	logger   *slog.Logger
}

func NewWebhookHandler(checkout checkoutService, log *slog.Logger) *WebhookHandler {
	return &WebhookHandler{checkout: checkout, logger: log}
}

func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/webhooks/payment", h.paymentCaptured)
}

type paymentWebhookRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
}

type paymentWebhookResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

func (h *WebhookHandler) paymentCaptured(w http.ResponseWriter, r *http.Request) {
	var req paymentWebhookRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.checkout.ConfirmPayment(r.Context(), "",
		req.GatewayOrderID, req.GatewayPaymentID, req.Signature)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: paymentWebhookResponse{OrderID: order.ID, Status: order.Status},
	})
}
