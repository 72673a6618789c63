// Package http wires the service's HTTP surface: cart, checkout, orders,
// the payment webhook, health probes, and metrics.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bazaarhq/checkout/internal/domain"
	"github.com/bazaarhq/checkout/pkg/health"
	"github.com/bazaarhq/checkout/pkg/middleware"
)

// RouterConfig carries everything the router needs.
type RouterConfig struct {
	ServiceName      string
	Logger           *slog.Logger
	TokenValidator   middleware.TokenValidator
	Health           *health.Handler
	Cart             *CartHandler
	Checkout         *CheckoutHandler
	Orders           *OrderHandler
	Webhook          *WebhookHandler
	WebhookRateLimit int
	WebhookRateBurst int
}

// NewRouter assembles the full middleware chain and route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// The webhook authenticates by payload signature, not by bearer token,
	// and is rate limited per source IP.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.WebhookRateLimit, cfg.WebhookRateBurst, cfg.Logger))
		cfg.Webhook.RegisterRoutes(r)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.TokenValidator))
		r.Use(middleware.RequestLogger(cfg.Logger))

		cfg.Orders.RegisterRoutes(r)

		// Anyone with a known role can shop; sellers and admins buy too.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleBuyer, domain.RoleSeller, domain.RoleAdmin))
			cfg.Cart.RegisterRoutes(r)
			cfg.Checkout.RegisterRoutes(r)
		})
	})

	return r
}
