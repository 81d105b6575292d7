package providers

import (
	"context"

	"github.com/meshpay/gateway/internal/domain/billing"
	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
	"github.com/meshpay/gateway/internal/domain/payment"
)

// Unsupported provides declining stubs for every optional operation.
// Adapters embed it and override only the capabilities their provider backs,
// so an unimplemented operation is a capability fact until invoked, and a
// direct call still fails with the canonical error rather than panicking.
type Unsupported struct {
	Provider string
}

func (u Unsupported) CreateRefund(ctx context.Context, req payment.RefundRequest) (*payment.RefundResult, error) {
	return nil, domainErrors.NewUnsupportedOperation(u.Provider, string(OpCreateRefund))
}

func (u Unsupported) CreateCustomer(ctx context.Context, req billing.CustomerRequest) (*billing.CustomerRecord, error) {
	return nil, domainErrors.NewUnsupportedOperation(u.Provider, string(OpCreateCustomer))
}

func (u Unsupported) CreateSubscription(ctx context.Context, req billing.SubscriptionRequest) (*billing.SubscriptionRecord, error) {
	return nil, domainErrors.NewUnsupportedOperation(u.Provider, string(OpCreateSubscription))
}

func (u Unsupported) ListPaymentMethods(ctx context.Context, customerID string) ([]billing.PaymentMethodRecord, error) {
	return nil, domainErrors.NewUnsupportedOperation(u.Provider, string(OpListPaymentMethods))
}

func (u Unsupported) GetBalance(ctx context.Context) (*billing.BalanceSnapshot, error) {
	return nil, domainErrors.NewUnsupportedOperation(u.Provider, string(OpGetBalance))
}
