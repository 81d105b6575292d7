package billing

import (
	"strings"
	"time"

	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
)

// SubscriptionStatus is the canonical subscription status vocabulary.
type SubscriptionStatus string

const (
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionTrialing   SubscriptionStatus = "trialing"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
	SubscriptionUnpaid     SubscriptionStatus = "unpaid"
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
	SubscriptionUnknown    SubscriptionStatus = "unknown"
)

// CustomerRequest describes a customer to create at the provider.
type CustomerRequest struct {
	Email          string
	Name           string
	Phone          string
	Metadata       map[string]string
	IdempotencyKey string
}

// Validate checks the request before any network call is made.
func (r CustomerRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return domainErrors.NewValidation("email", "is required")
	}
	return nil
}

// CustomerRecord is a snapshot of a provider-side customer.
type CustomerRecord struct {
	ID        string
	Email     string
	Name      string
	Phone     string
	Metadata  map[string]string
	CreatedAt time.Time
}

// SubscriptionRequest describes a recurring billing agreement to create.
type SubscriptionRequest struct {
	CustomerID      string
	PaymentMethodID string
	PlanID          string
	Metadata        map[string]string
	IdempotencyKey  string
}

// Validate checks the request before any network call is made.
func (r SubscriptionRequest) Validate() error {
	if strings.TrimSpace(r.CustomerID) == "" {
		return domainErrors.NewValidation("customer_id", "is required")
	}
	if strings.TrimSpace(r.PlanID) == "" {
		return domainErrors.NewValidation("plan_id", "is required")
	}
	return nil
}

// SubscriptionRecord is a snapshot of a provider-side subscription.
// It references exactly one CustomerRecord via CustomerID.
type SubscriptionRecord struct {
	ID                 string
	CustomerID         string
	PaymentMethodID    string
	PlanID             string
	Status             SubscriptionStatus
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	Metadata           map[string]string
	CreatedAt          time.Time
}

// PaymentMethodRecord is a stored payment method summary: masked card data
// only, never raw numbers.
type PaymentMethodRecord struct {
	ID       string
	Type     string
	Brand    string
	Last4    string
	ExpMonth int
	ExpYear  int
}

// BalanceSnapshot reports provider-held funds per uppercase currency code,
// in minor units, at the moment of the call.
type BalanceSnapshot struct {
	Available map[string]int64
	Pending   map[string]int64
	UpdatedAt time.Time
}
