package providers

import (
	"context"

	"github.com/meshpay/gateway/internal/domain/billing"
	"github.com/meshpay/gateway/internal/domain/payment"
)

// Operation names every call an adapter can expose. The first three are
// required; the rest are optional capabilities.
type Operation string

const (
	OpProcessPayment     Operation = "processPayment"
	OpGetPayment         Operation = "getPayment"
	OpListPayments       Operation = "listPayments"
	OpCreateRefund       Operation = "createRefund"
	OpCreateCustomer     Operation = "createCustomer"
	OpCreateSubscription Operation = "createSubscription"
	OpListPaymentMethods Operation = "listPaymentMethods"
	OpGetBalance         Operation = "getBalance"
)

// OptionalOperations lists the capabilities an adapter may decline.
var OptionalOperations = []Operation{
	OpCreateRefund,
	OpCreateCustomer,
	OpCreateSubscription,
	OpListPaymentMethods,
	OpGetBalance,
}

// CapabilitySet records which operations an adapter implements.
type CapabilitySet map[Operation]bool

// NewCapabilitySet builds a set containing the required operations plus the
// given optional ones.
func NewCapabilitySet(optional ...Operation) CapabilitySet {
	set := CapabilitySet{
		OpProcessPayment: true,
		OpGetPayment:     true,
		OpListPayments:   true,
	}
	for _, op := range optional {
		set[op] = true
	}
	return set
}

// Adapter translates between the canonical domain model and one external
// processor's wire format. Every adapter implements the full method set;
// Supports reports which optional operations are actually backed by the
// provider so the gateway can detect support without calling and failing.
//
// Each implementation documents whether concurrent calls against the same
// instance are safe; all four shipped adapters are safe for concurrent use
// because their transport clients are.
type Adapter interface {
	Name() string
	Supports(op Operation) bool

	ProcessPayment(ctx context.Context, req payment.Request) (*payment.Result, error)
	GetPayment(ctx context.Context, id string) (*payment.Result, error)
	ListPayments(ctx context.Context, opts payment.ListOptions) (*payment.Page, error)

	CreateRefund(ctx context.Context, req payment.RefundRequest) (*payment.RefundResult, error)
	CreateCustomer(ctx context.Context, req billing.CustomerRequest) (*billing.CustomerRecord, error)
	CreateSubscription(ctx context.Context, req billing.SubscriptionRequest) (*billing.SubscriptionRecord, error)
	ListPaymentMethods(ctx context.Context, customerID string) ([]billing.PaymentMethodRecord, error)
	GetBalance(ctx context.Context) (*billing.BalanceSnapshot, error)
}
