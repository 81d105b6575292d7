package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meshpay/gateway/internal/domain/billing"
	"github.com/meshpay/gateway/internal/providers"
	"github.com/meshpay/gateway/internal/service"
)

// BillingController handles customer, subscription, payment-method, and
// balance HTTP requests.
type BillingController struct {
	gateway *service.Gateway
}

// NewBillingController creates a new BillingController.
func NewBillingController(gateway *service.Gateway) *BillingController {
	return &BillingController{gateway: gateway}
}

// CreateCustomer handles POST /api/v1/customers
func (h *BillingController) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	record, err := h.gateway.CreateCustomer(r.Context(), providerParam(r), billing.CustomerRequest{
		Email:          req.Email,
		Name:           req.Name,
		Phone:          req.Phone,
		Metadata:       req.Metadata,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromCustomer(record))
}

// CreateSubscription handles POST /api/v1/subscriptions
func (h *BillingController) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req CreateSubscriptionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	record, err := h.gateway.CreateSubscription(r.Context(), providerParam(r), billing.SubscriptionRequest{
		CustomerID:      req.CustomerID,
		PlanID:          req.PlanID,
		PaymentMethodID: req.PaymentMethodID,
		Metadata:        req.Metadata,
		IdempotencyKey:  r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromSubscription(record))
}

// ListPaymentMethods handles GET /api/v1/customers/{id}/payment-methods
func (h *BillingController) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.gateway.ListPaymentMethods(r.Context(), providerParam(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]StoredMethodResponse, 0, len(methods))
	for _, m := range methods {
		resp = append(resp, FromStoredMethod(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetBalance handles GET /api/v1/balance
func (h *BillingController) GetBalance(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.gateway.GetBalance(r.Context(), providerParam(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromBalance("", snapshot))
}

// GetBalances handles GET /api/v1/balances, fanning out to every provider
// that supports balance reads. Per-provider failures ride along in the body.
func (h *BillingController) GetBalances(w http.ResponseWriter, r *http.Request) {
	reports := h.gateway.GetBalances(r.Context())

	resp := make([]BalanceResponse, 0, len(reports))
	for _, report := range reports {
		if report.Err != nil {
			resp = append(resp, BalanceResponse{
				Provider: report.Provider,
				Error:    &ErrorResponse{Error: report.Err.Error(), Code: "balance_unavailable"},
			})
			continue
		}
		resp = append(resp, FromBalance(report.Provider, report.Balance))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListProviders handles GET /api/v1/providers
func (h *BillingController) ListProviders(w http.ResponseWriter, r *http.Request) {
	ops := []providers.Operation{
		providers.OpProcessPayment,
		providers.OpGetPayment,
		providers.OpListPayments,
		providers.OpCreateRefund,
		providers.OpCreateCustomer,
		providers.OpCreateSubscription,
		providers.OpListPaymentMethods,
		providers.OpGetBalance,
	}

	resp := make([]ProviderResponse, 0)
	for _, name := range h.gateway.Providers() {
		supported := make([]string, 0, len(ops))
		for _, op := range ops {
			if ok, err := h.gateway.Supports(name, op); err == nil && ok {
				supported = append(supported, string(op))
			}
		}
		resp = append(resp, ProviderResponse{Name: name, Operations: supported})
	}
	writeJSON(w, http.StatusOK, resp)
}
