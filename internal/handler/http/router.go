package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Abanoub-Magdy-gabra/style-checkout/pkg/health"
	"github.com/Abanoub-Magdy-gabra/style-checkout/pkg/middleware"
)

// RouterConfig carries the router's cross-cutting dependencies.
type RouterConfig struct {
	Logger   *slog.Logger
	Health   *health.Handler
	CORS     middleware.CORSConfig
	Checkout *CheckoutHandler
}

// NewRouter builds the HTTP routing tree for the checkout service.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(contentTypeJSON)

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/checkout/confirmation", func(r chi.Router) {
		r.Post("/", cfg.Checkout.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", cfg.Checkout.GetSession)
			r.Delete("/", cfg.Checkout.Teardown)
			r.Post("/payment", cfg.Checkout.PaymentSuccess)
			r.Post("/payment-failure", cfg.Checkout.PaymentFailure)
			r.Post("/retry", cfg.Checkout.Retry)
		})
	})

	return r
}

// contentTypeJSON sets the default response content type for API routes.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
