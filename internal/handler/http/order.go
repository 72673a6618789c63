package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bazaarhq/checkout/internal/domain"
	"github.com/bazaarhq/checkout/pkg/httputil"
	"github.com/bazaarhq/checkout/pkg/middleware"
	"github.com/bazaarhq/checkout/pkg/pagination"
	"github.com/bazaarhq/checkout/pkg/validator"
)

// orderService is the order surface the handler needs.
type orderService interface {
	List(ctx context.Context, actorID, role string, status *string, page pagination.Params) (*pagination.Result[domain.Order], error)
	Get(ctx context.Context, actorID, role, orderID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, actorID, role, orderID, newStatus, reason string) (*domain.Order, error)
	Cancel(ctx context.Context, actorID, orderID, reason string) (*domain.Order, error)
}

// OrderHandler exposes order reads and status transitions.
type OrderHandler struct {
	orders orderService
	logger *slog.Logger
}

func NewOrderHandler(orders orderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: log}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{orderID}", h.get)
		r.With(middleware.RequireRole(domain.RoleSeller, domain.RoleAdmin)).
			Patch("/{orderID}/status", h.updateStatus)
		r.With(middleware.RequireRole(domain.RoleBuyer)).
			Post("/{orderID}/cancel", h.cancel)
	})
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	var status *string
	if s := r.URL.Query().Get("status"); s != "" {
		status = &s
	}

	result, err := h.orders.List(r.Context(),
		middleware.UserIDFromContext(r.Context()),
		middleware.RoleFromContext(r.Context()),
		status, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	orderID, ok := httputil.ParseUUID(w, chi.URLParam(r, "orderID"))
	if !ok {
		return
	}

	order, err := h.orders.Get(r.Context(),
		middleware.UserIDFromContext(r.Context()),
		middleware.RoleFromContext(r.Context()),
		orderID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason"`
}

func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := httputil.ParseUUID(w, chi.URLParam(r, "orderID"))
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(),
		middleware.UserIDFromContext(r.Context()),
		middleware.RoleFromContext(r.Context()),
		orderID.String(), req.Status, req.Reason)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *OrderHandler) cancel(w http.ResponseWriter, r *http.Request) {
	orderID, ok := httputil.ParseUUID(w, chi.URLParam(r, "orderID"))
	if !ok {
		return
	}

	var req cancelRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.orders.Cancel(r.Context(),
		middleware.UserIDFromContext(r.Context()),
		orderID.String(), req.Reason)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}
