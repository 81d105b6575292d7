package payment

import (
	"strings"
	"time"

	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
)

// Status is the canonical payment/refund status exposed to callers.
// Adapters must never leak a provider-specific status string.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// Terminal reports whether no further transition is expected for the entity.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// Valid reports whether s is one of the five canonical values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// RefundReason is the canonical refund reason vocabulary. Each adapter maps
// it outbound through its own table; unmapped reasons translate to the
// provider's "unspecified" value rather than being omitted.
type RefundReason string

const (
	ReasonDuplicate         RefundReason = "duplicate"
	ReasonFraudulent        RefundReason = "fraudulent"
	ReasonCustomerRequested RefundReason = "customer_requested"
	ReasonUnspecified       RefundReason = "unspecified"
)

// ParseRefundReason normalizes a raw reason string, falling back to
// unspecified for anything unrecognized.
func ParseRefundReason(raw string) RefundReason {
	switch RefundReason(strings.ToLower(strings.TrimSpace(raw))) {
	case ReasonDuplicate:
		return ReasonDuplicate
	case ReasonFraudulent:
		return ReasonFraudulent
	case ReasonCustomerRequested:
		return ReasonCustomerRequested
	default:
		return ReasonUnspecified
	}
}

// Request describes a charge to create. Amount is in minor currency units.
type Request struct {
	Amount         int64
	Currency       string
	Method         Method
	Description    string
	Metadata       map[string]string
	ReceiptEmail   string
	Country        string
	IdempotencyKey string
}

// Validate checks the request before any network call is made.
func (r Request) Validate() error {
	if r.Amount <= 0 {
		return domainErrors.NewValidation("amount", "must be greater than 0")
	}
	if len(r.Currency) != 3 {
		return domainErrors.NewValidation("currency", "must be a 3-letter ISO code")
	}
	return r.Method.Validate()
}

// Result is a point-in-time snapshot of a charge as reported by a provider.
type Result struct {
	ID          string
	Amount      int64
	Currency    string
	Status      Status
	Method      MethodSummary
	Description string
	Metadata    map[string]string
	CreatedAt   time.Time
}

// RefundRequest describes a refund against an earlier payment.
// Amount zero means a full refund.
type RefundRequest struct {
	PaymentID      string
	Amount         int64
	Reason         RefundReason
	Metadata       map[string]string
	IdempotencyKey string
}

// Validate checks the refund request before any network call is made.
func (r RefundRequest) Validate() error {
	if strings.TrimSpace(r.PaymentID) == "" {
		return domainErrors.NewValidation("payment_id", "is required")
	}
	if r.Amount < 0 {
		return domainErrors.NewValidation("amount", "must not be negative")
	}
	return nil
}

// RefundResult is a point-in-time snapshot of a refund.
type RefundResult struct {
	ID        string
	PaymentID string
	Amount    int64
	Currency  string
	Status    Status
	Reason    RefundReason
	CreatedAt time.Time
}

// ListOptions narrows a payment listing. Cursor semantics and result
// ordering are provider-defined; callers must not assume they are identical
// across adapters.
type ListOptions struct {
	Limit         int
	StartingAfter string
	EndingBefore  string
	CreatedFrom   time.Time
	CreatedTo     time.Time
}

// Page is one page of payments plus continuation state.
type Page struct {
	Payments   []Result
	HasMore    bool
	NextCursor string
}

// NormalizeCurrency upper-cases a currency code for canonical output.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
