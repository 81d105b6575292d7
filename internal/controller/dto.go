package controller

import (
	"time"

	"github.com/meshpay/gateway/internal/domain/billing"
	"github.com/meshpay/gateway/internal/domain/payment"
)

// --- Request DTOs ---
// DTOs carry HTTP/JSON concerns (tags, validation); controllers convert them
// to domain requests before calling the gateway. Amounts are minor units.

// ProcessPaymentRequest holds the input for creating a payment.
type ProcessPaymentRequest struct {
	Amount        int64             `json:"amount" validate:"required,gt=0"`
	Currency      string            `json:"currency" validate:"required,len=3"`
	PaymentMethod PaymentMethodDTO  `json:"payment_method"`
	Description   string            `json:"description,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	ReceiptEmail  string            `json:"receipt_email,omitempty" validate:"omitempty,email"`
	Country       string            `json:"country,omitempty" validate:"omitempty,len=2"`
}

// PaymentMethodDTO is the wire form of the payment-method union.
type PaymentMethodDTO struct {
	Type  string   `json:"type,omitempty"`
	Token string   `json:"token,omitempty"`
	Card  *CardDTO `json:"card,omitempty"`
}

// CardDTO carries raw card fields inbound. It is never echoed in responses.
type CardDTO struct {
	Number     string `json:"number" validate:"required"`
	ExpMonth   int    `json:"exp_month" validate:"required,min=1,max=12"`
	ExpYear    int    `json:"exp_year" validate:"required"`
	CVC        string `json:"cvc,omitempty"`
	HolderName string `json:"holder_name,omitempty"`
}

// CreateRefundRequest holds the input for refunding a payment.
// Amount zero or absent requests a full refund.
type CreateRefundRequest struct {
	Amount   int64             `json:"amount,omitempty" validate:"gte=0"`
	Reason   string            `json:"reason,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CreateCustomerRequest holds the input for creating a customer.
type CreateCustomerRequest struct {
	Email    string            `json:"email" validate:"required,email"`
	Name     string            `json:"name,omitempty"`
	Phone    string            `json:"phone,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CreateSubscriptionRequest holds the input for creating a subscription.
type CreateSubscriptionRequest struct {
	CustomerID      string            `json:"customer_id" validate:"required"`
	PlanID          string            `json:"plan_id" validate:"required"`
	PaymentMethodID string            `json:"payment_method_id,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// --- Response DTOs ---

// PaymentMethodSummaryResponse echoes the method with masked card data only.
type PaymentMethodSummaryResponse struct {
	Type     string `json:"type"`
	Brand    string `json:"brand,omitempty"`
	Last4    string `json:"last4,omitempty"`
	ExpMonth int    `json:"exp_month,omitempty"`
	ExpYear  int    `json:"exp_year,omitempty"`
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID            string                       `json:"id"`
	Amount        int64                        `json:"amount"`
	Currency      string                       `json:"currency"`
	Status        string                       `json:"status"`
	PaymentMethod PaymentMethodSummaryResponse `json:"payment_method"`
	Description   string                       `json:"description,omitempty"`
	Metadata      map[string]string            `json:"metadata,omitempty"`
	CreatedAt     time.Time                    `json:"created_at"`
}

// PaymentPageResponse is one page of payments plus continuation state.
type PaymentPageResponse struct {
	Payments   []PaymentResponse `json:"payments"`
	HasMore    bool              `json:"has_more"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// RefundResponse represents a refund in API responses.
type RefundResponse struct {
	ID        string    `json:"id"`
	PaymentID string    `json:"payment_id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency,omitempty"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CustomerResponse represents a customer in API responses.
type CustomerResponse struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	Name      string            `json:"name,omitempty"`
	Phone     string            `json:"phone,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// SubscriptionResponse represents a subscription in API responses.
type SubscriptionResponse struct {
	ID                 string            `json:"id"`
	CustomerID         string            `json:"customer_id"`
	PlanID             string            `json:"plan_id"`
	PaymentMethodID    string            `json:"payment_method_id,omitempty"`
	Status             string            `json:"status"`
	CurrentPeriodStart *time.Time        `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time        `json:"current_period_end,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

// StoredMethodResponse represents a saved payment method.
type StoredMethodResponse struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Brand    string `json:"brand,omitempty"`
	Last4    string `json:"last4,omitempty"`
	ExpMonth int    `json:"exp_month,omitempty"`
	ExpYear  int    `json:"exp_year,omitempty"`
}

// BalanceResponse represents one provider's balance snapshot.
type BalanceResponse struct {
	Provider  string           `json:"provider,omitempty"`
	Available map[string]int64 `json:"available"`
	Pending   map[string]int64 `json:"pending"`
	UpdatedAt time.Time        `json:"updated_at"`
	Error     *ErrorResponse   `json:"error,omitempty"`
}

// ProviderResponse describes one registered provider and its capabilities.
type ProviderResponse struct {
	Name       string   `json:"name"`
	Operations []string `json:"operations"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error        string `json:"error"`
	Code         string `json:"code"`
	Provider     string `json:"provider,omitempty"`
	ProviderCode string `json:"provider_code,omitempty"`
	ProviderType string `json:"provider_type,omitempty"`
	Field        string `json:"field,omitempty"`
}

// --- Conversion helpers ---

func (d PaymentMethodDTO) toDomain() payment.Method {
	m := payment.Method{Type: d.Type, Token: d.Token}
	if d.Card != nil {
		m.Card = &payment.CardInput{
			Number:     d.Card.Number,
			ExpMonth:   d.Card.ExpMonth,
			ExpYear:    d.Card.ExpYear,
			CVC:        d.Card.CVC,
			HolderName: d.Card.HolderName,
		}
	}
	return m
}

// FromPaymentResult converts a domain payment result to an API response.
func FromPaymentResult(p *payment.Result) PaymentResponse {
	return PaymentResponse{
		ID:       p.ID,
		Amount:   p.Amount,
		Currency: p.Currency,
		Status:   string(p.Status),
		PaymentMethod: PaymentMethodSummaryResponse{
			Type:     p.Method.Type,
			Brand:    p.Method.Brand,
			Last4:    p.Method.Last4,
			ExpMonth: p.Method.ExpMonth,
			ExpYear:  p.Method.ExpYear,
		},
		Description: p.Description,
		Metadata:    p.Metadata,
		CreatedAt:   p.CreatedAt,
	}
}

// FromPage converts a domain page to an API response.
func FromPage(page *payment.Page) PaymentPageResponse {
	resp := PaymentPageResponse{
		Payments:   make([]PaymentResponse, 0, len(page.Payments)),
		HasMore:    page.HasMore,
		NextCursor: page.NextCursor,
	}
	for i := range page.Payments {
		resp.Payments = append(resp.Payments, FromPaymentResult(&page.Payments[i]))
	}
	return resp
}

// FromRefundResult converts a domain refund result to an API response.
func FromRefundResult(r *payment.RefundResult) RefundResponse {
	return RefundResponse{
		ID:        r.ID,
		PaymentID: r.PaymentID,
		Amount:    r.Amount,
		Currency:  r.Currency,
		Status:    string(r.Status),
		Reason:    string(r.Reason),
		CreatedAt: r.CreatedAt,
	}
}

// FromCustomer converts a domain customer record to an API response.
func FromCustomer(c *billing.CustomerRecord) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Email:     c.Email,
		Name:      c.Name,
		Phone:     c.Phone,
		Metadata:  c.Metadata,
		CreatedAt: c.CreatedAt,
	}
}

// FromSubscription converts a domain subscription record to an API response.
func FromSubscription(s *billing.SubscriptionRecord) SubscriptionResponse {
	resp := SubscriptionResponse{
		ID:              s.ID,
		CustomerID:      s.CustomerID,
		PlanID:          s.PlanID,
		PaymentMethodID: s.PaymentMethodID,
		Status:          string(s.Status),
		Metadata:        s.Metadata,
		CreatedAt:       s.CreatedAt,
	}
	if !s.CurrentPeriodStart.IsZero() {
		start := s.CurrentPeriodStart
		resp.CurrentPeriodStart = &start
	}
	if !s.CurrentPeriodEnd.IsZero() {
		end := s.CurrentPeriodEnd
		resp.CurrentPeriodEnd = &end
	}
	return resp
}

// FromStoredMethod converts a stored payment method to an API response.
func FromStoredMethod(m billing.PaymentMethodRecord) StoredMethodResponse {
	return StoredMethodResponse{
		ID:       m.ID,
		Type:     m.Type,
		Brand:    m.Brand,
		Last4:    m.Last4,
		ExpMonth: m.ExpMonth,
		ExpYear:  m.ExpYear,
	}
}

// FromBalance converts a balance snapshot to an API response.
func FromBalance(provider string, b *billing.BalanceSnapshot) BalanceResponse {
	return BalanceResponse{
		Provider:  provider,
		Available: b.Available,
		Pending:   b.Pending,
		UpdatedAt: b.UpdatedAt,
	}
}
