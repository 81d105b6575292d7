package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meshpay/gateway/internal/domain/payment"
	"github.com/meshpay/gateway/internal/service"
)

// PaymentController handles payment and refund HTTP requests. The target
// provider comes from the "provider" query parameter, defaulting to the
// configured provider when absent.
type PaymentController struct {
	gateway *service.Gateway
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(gateway *service.Gateway) *PaymentController {
	return &PaymentController{gateway: gateway}
}

// ProcessPayment handles POST /api/v1/payments
func (h *PaymentController) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req ProcessPaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.gateway.ProcessPayment(r.Context(), providerParam(r), payment.Request{
		Amount:         req.Amount,
		Currency:       req.Currency,
		Method:         req.PaymentMethod.toDomain(),
		Description:    req.Description,
		Metadata:       req.Metadata,
		ReceiptEmail:   req.ReceiptEmail,
		Country:        req.Country,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromPaymentResult(result))
}

// GetPayment handles GET /api/v1/payments/{id}
func (h *PaymentController) GetPayment(w http.ResponseWriter, r *http.Request) {
	result, err := h.gateway.GetPayment(r.Context(), providerParam(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromPaymentResult(result))
}

// ListPayments handles GET /api/v1/payments
func (h *PaymentController) ListPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := payment.ListOptions{
		StartingAfter: q.Get("starting_after"),
		EndingBefore:  q.Get("ending_before"),
	}
	opts.Limit, _ = strconv.Atoi(q.Get("limit"))
	if s := q.Get("created_from"); s != "" {
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			opts.CreatedFrom = ts
		}
	}
	if s := q.Get("created_to"); s != "" {
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			opts.CreatedTo = ts
		}
	}

	page, err := h.gateway.ListPayments(r.Context(), providerParam(r), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromPage(page))
}

// CreateRefund handles POST /api/v1/payments/{id}/refunds
func (h *PaymentController) CreateRefund(w http.ResponseWriter, r *http.Request) {
	var req CreateRefundRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.gateway.CreateRefund(r.Context(), providerParam(r), payment.RefundRequest{
		PaymentID:      chi.URLParam(r, "id"),
		Amount:         req.Amount,
		Reason:         payment.ParseRefundReason(req.Reason),
		Metadata:       req.Metadata,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromRefundResult(result))
}
