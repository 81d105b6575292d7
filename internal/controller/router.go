package controller

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meshpay/gateway/internal/infrastructure/config"
	"github.com/meshpay/gateway/internal/infrastructure/observability"
	customMW "github.com/meshpay/gateway/internal/middleware"
	"github.com/meshpay/gateway/internal/service"
)

type RouterDeps struct {
	Gateway    *service.Gateway
	Metrics    *observability.Metrics
	CORSConfig config.CORSConfig
	RateLimit  int
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(customMW.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	if deps.RateLimit > 0 {
		r.Use(customMW.RateLimit(deps.RateLimit))
	}
	if deps.Metrics != nil {
		r.Use(customMW.Metrics(deps.Metrics))
	}

	healthH := NewHealthController(deps.Gateway)
	paymentH := NewPaymentController(deps.Gateway)
	billingH := NewBillingController(deps.Gateway)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/providers", billingH.ListProviders)

		// Payments
		r.Post("/payments", paymentH.ProcessPayment)
		r.Get("/payments/{id}", paymentH.GetPayment)
		r.Get("/payments", paymentH.ListPayments)
		r.Post("/payments/{id}/refunds", paymentH.CreateRefund)

		// Customers and subscriptions
		r.Post("/customers", billingH.CreateCustomer)
		r.Get("/customers/{id}/payment-methods", billingH.ListPaymentMethods)
		r.Post("/subscriptions", billingH.CreateSubscription)

		// Balances
		r.Get("/balance", billingH.GetBalance)
		r.Get("/balances", billingH.GetBalances)
	})

	return r
}
