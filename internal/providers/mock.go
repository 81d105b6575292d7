package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meshpay/gateway/internal/domain/billing"
	"github.com/meshpay/gateway/internal/domain/payment"
)

// MockAdapter is a fully in-memory adapter used by gateway and registry
// tests. It records every invocation so tests can assert on call counts and
// outbound payloads.
type MockAdapter struct {
	name         string
	capabilities CapabilitySet
	latency      time.Duration
	err          error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall is one recorded invocation.
type MockCall struct {
	Op      Operation
	Request any
}

type MockOption func(*MockAdapter)

// WithCapabilities replaces the default full capability set.
func WithCapabilities(set CapabilitySet) MockOption {
	return func(a *MockAdapter) { a.capabilities = set }
}

// WithLatency makes every call sleep, honoring context cancellation.
func WithLatency(d time.Duration) MockOption {
	return func(a *MockAdapter) { a.latency = d }
}

// WithError makes every call fail with err.
func WithError(err error) MockOption {
	return func(a *MockAdapter) { a.err = err }
}

func NewMockAdapter(name string, opts ...MockOption) *MockAdapter {
	a := &MockAdapter{
		name: name,
		capabilities: NewCapabilitySet(
			OpCreateRefund,
			OpCreateCustomer,
			OpCreateSubscription,
			OpListPaymentMethods,
			OpGetBalance,
		),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *MockAdapter) Name() string { return a.name }

func (a *MockAdapter) Supports(op Operation) bool { return a.capabilities[op] }

// Calls returns a copy of the recorded invocations.
func (a *MockAdapter) Calls() []MockCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]MockCall(nil), a.calls...)
}

// CallsTo counts recorded invocations of one operation.
func (a *MockAdapter) CallsTo(op Operation) int {
	n := 0
	for _, c := range a.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// FailNext makes every subsequent call fail with err until cleared with nil.
func (a *MockAdapter) FailNext(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}

func (a *MockAdapter) record(ctx context.Context, op Operation, req any) error {
	a.mu.Lock()
	a.calls = append(a.calls, MockCall{Op: op, Request: req})
	err := a.err
	a.mu.Unlock()

	if a.latency > 0 {
		select {
		case <-time.After(a.latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (a *MockAdapter) ProcessPayment(ctx context.Context, req payment.Request) (*payment.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := a.record(ctx, OpProcessPayment, req); err != nil {
		return nil, err
	}
	summary := payment.MethodSummary{Type: req.Method.EffectiveType()}
	if req.Method.HasRawCard() {
		summary.Last4 = payment.Last4(req.Method.Card.Number)
	}
	return &payment.Result{
		ID:          fmt.Sprintf("%s_pay_%s", a.name, uuid.NewString()[:8]),
		Amount:      req.Amount,
		Currency:    payment.NormalizeCurrency(req.Currency),
		Status:      payment.StatusSucceeded,
		Method:      summary,
		Description: req.Description,
		Metadata:    req.Metadata,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (a *MockAdapter) GetPayment(ctx context.Context, id string) (*payment.Result, error) {
	if err := a.record(ctx, OpGetPayment, id); err != nil {
		return nil, err
	}
	return &payment.Result{
		ID:        id,
		Status:    payment.StatusSucceeded,
		Currency:  "USD",
		Method:    payment.UnknownMethodSummary(),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (a *MockAdapter) ListPayments(ctx context.Context, opts payment.ListOptions) (*payment.Page, error) {
	if err := a.record(ctx, OpListPayments, opts); err != nil {
		return nil, err
	}
	return &payment.Page{}, nil
}

func (a *MockAdapter) CreateRefund(ctx context.Context, req payment.RefundRequest) (*payment.RefundResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := a.record(ctx, OpCreateRefund, req); err != nil {
		return nil, err
	}
	return &payment.RefundResult{
		ID:        fmt.Sprintf("%s_re_%s", a.name, uuid.NewString()[:8]),
		PaymentID: req.PaymentID,
		Amount:    req.Amount,
		Status:    payment.StatusSucceeded,
		Reason:    req.Reason,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (a *MockAdapter) CreateCustomer(ctx context.Context, req billing.CustomerRequest) (*billing.CustomerRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := a.record(ctx, OpCreateCustomer, req); err != nil {
		return nil, err
	}
	return &billing.CustomerRecord{
		ID:        fmt.Sprintf("%s_cus_%s", a.name, uuid.NewString()[:8]),
		Email:     req.Email,
		Name:      req.Name,
		Phone:     req.Phone,
		Metadata:  req.Metadata,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (a *MockAdapter) CreateSubscription(ctx context.Context, req billing.SubscriptionRequest) (*billing.SubscriptionRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := a.record(ctx, OpCreateSubscription, req); err != nil {
		return nil, err
	}
	return &billing.SubscriptionRecord{
		ID:              fmt.Sprintf("%s_sub_%s", a.name, uuid.NewString()[:8]),
		CustomerID:      req.CustomerID,
		PaymentMethodID: req.PaymentMethodID,
		PlanID:          req.PlanID,
		Status:          billing.SubscriptionActive,
		Metadata:        req.Metadata,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

func (a *MockAdapter) ListPaymentMethods(ctx context.Context, customerID string) ([]billing.PaymentMethodRecord, error) {
	if err := a.record(ctx, OpListPaymentMethods, customerID); err != nil {
		return nil, err
	}
	return []billing.PaymentMethodRecord{}, nil
}

func (a *MockAdapter) GetBalance(ctx context.Context) (*billing.BalanceSnapshot, error) {
	if err := a.record(ctx, OpGetBalance, nil); err != nil {
		return nil, err
	}
	return &billing.BalanceSnapshot{
		Available: map[string]int64{"USD": 100_000},
		Pending:   map[string]int64{"USD": 5_000},
		UpdatedAt: time.Now().UTC(),
	}, nil
}
