package square

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/square/square-go-sdk"
	sqclient "github.com/square/square-go-sdk/client"
	sqcore "github.com/square/square-go-sdk/core"
	sqoption "github.com/square/square-go-sdk/option"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"
)

var (
	errAccessTokenRequired = errors.New("square access token is required")
	errLocationRequired    = errors.New("square location id is required")
	errInvalidEnv          = fmt.Errorf("square environment must be %q or %q", sandboxEnv, productionEnv)
)

var baseURLs = map[string]string{
	sandboxEnv:    "https://connect.squareupsandbox.com",
	productionEnv: "https://connect.squareup.com",
}

// API is the subset of Square operations the adapter relies on. Tests
// substitute a recording fake; production uses the SDK-backed client below.
type API interface {
	CreatePayment(ctx context.Context, req *sq.CreatePaymentRequest) (*sq.Payment, error)
	GetPayment(ctx context.Context, id string) (*sq.Payment, error)
	ListPayments(ctx context.Context, req *sq.ListPaymentsRequest, limit int) ([]*sq.Payment, bool, error)
	RefundPayment(ctx context.Context, req *sq.RefundPaymentRequest) (*sq.PaymentRefund, error)
	CreateCustomer(ctx context.Context, req *sq.CreateCustomerRequest) (*sq.Customer, error)
	CreateSubscription(ctx context.Context, req *sq.CreateSubscriptionRequest) (*sq.Subscription, error)
	ListCards(ctx context.Context, req *sq.ListCardsRequest) ([]*sq.Card, error)
}

// NewAPI builds the SDK-backed client for the given environment.
func NewAPI(accessToken, environment string) (API, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, errAccessTokenRequired
	}
	env := strings.TrimSpace(strings.ToLower(environment))
	if env == "" {
		env = sandboxEnv
	}
	baseURL, ok := baseURLs[env]
	if !ok {
		return nil, errInvalidEnv
	}

	sdk := sqclient.NewClient(
		sqoption.WithBaseURL(baseURL),
		sqoption.WithToken(token),
	)
	return &liveAPI{sdk: sdk}, nil
}

type liveAPI struct {
	sdk *sqclient.Client
}

func (c *liveAPI) CreatePayment(ctx context.Context, req *sq.CreatePaymentRequest) (*sq.Payment, error) {
	resp, err := c.sdk.Payments.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.GetPayment(), nil
}

func (c *liveAPI) GetPayment(ctx context.Context, id string) (*sq.Payment, error) {
	resp, err := c.sdk.Payments.Get(ctx, &sq.GetPaymentsRequest{PaymentID: id})
	if err != nil {
		return nil, err
	}
	return resp.GetPayment(), nil
}

func (c *liveAPI) ListPayments(ctx context.Context, req *sq.ListPaymentsRequest, limit int) ([]*sq.Payment, bool, error) {
	page, err := c.sdk.Payments.List(ctx, req)
	if err != nil {
		return nil, false, err
	}
	var payments []*sq.Payment
	for page != nil {
		payments = append(payments, page.Results...)
		if limit > 0 && len(payments) >= limit {
			return payments[:limit], true, nil
		}
		page, err = page.GetNextPage(ctx)
		if errors.Is(err, sqcore.ErrNoPages) {
			break
		}
		if err != nil {
			return nil, false, err
		}
	}
	return payments, false, nil
}

func (c *liveAPI) RefundPayment(ctx context.Context, req *sq.RefundPaymentRequest) (*sq.PaymentRefund, error) {
	resp, err := c.sdk.Refunds.RefundPayment(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.GetRefund(), nil
}

func (c *liveAPI) CreateCustomer(ctx context.Context, req *sq.CreateCustomerRequest) (*sq.Customer, error) {
	resp, err := c.sdk.Customers.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.GetCustomer(), nil
}

func (c *liveAPI) CreateSubscription(ctx context.Context, req *sq.CreateSubscriptionRequest) (*sq.Subscription, error) {
	resp, err := c.sdk.Subscriptions.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.GetSubscription(), nil
}

func (c *liveAPI) ListCards(ctx context.Context, req *sq.ListCardsRequest) ([]*sq.Card, error) {
	page, err := c.sdk.Cards.List(ctx, req)
	if err != nil {
		return nil, err
	}
	var cards []*sq.Card
	for page != nil {
		cards = append(cards, page.Results...)
		page, err = page.GetNextPage(ctx)
		if errors.Is(err, sqcore.ErrNoPages) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return cards, nil
}

func ptrString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func int64Ptr(value int64) *int64 {
	return &value
}

func boolPtr(value bool) *bool {
	return &value
}

func currencyPtr(code string) *sq.Currency {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	c := sq.Currency(trimmed)
	return &c
}

func moneyPtr(amount int64, currency string) *sq.Money {
	if amount == 0 {
		return nil
	}
	return &sq.Money{
		Amount:   int64Ptr(amount),
		Currency: currencyPtr(currency),
	}
}

func stringValue(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
