package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/balance"
	"github.com/stripe/stripe-go/v84/customer"
	"github.com/stripe/stripe-go/v84/paymentintent"
	"github.com/stripe/stripe-go/v84/paymentmethod"
	"github.com/stripe/stripe-go/v84/refund"
	"github.com/stripe/stripe-go/v84/subscription"
)

var (
	errAPIKeyRequired = errors.New("stripe api key is required")
	errInvalidEnv     = errors.New(`stripe environment must be "sandbox" or "production"`)
)

// API is the subset of Stripe operations the adapter relies on. Tests
// substitute a recording fake; production uses the SDK-backed client below.
type API interface {
	CreatePaymentMethod(ctx context.Context, params *stripe.PaymentMethodParams) (*stripe.PaymentMethod, error)
	CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	ListPaymentIntents(ctx context.Context, params *stripe.PaymentIntentListParams) ([]*stripe.PaymentIntent, bool, error)
	CreateRefund(ctx context.Context, params *stripe.RefundParams) (*stripe.Refund, error)
	CreateCustomer(ctx context.Context, params *stripe.CustomerParams) (*stripe.Customer, error)
	CreateSubscription(ctx context.Context, params *stripe.SubscriptionParams) (*stripe.Subscription, error)
	ListPaymentMethods(ctx context.Context, params *stripe.PaymentMethodListParams) ([]*stripe.PaymentMethod, error)
	GetBalance(ctx context.Context) (*stripe.Balance, error)
}

// NewAPI initializes the Stripe binding once with the configured key and
// environment, validating that the key prefix matches the environment.
func NewAPI(apiKey, environment string) (API, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, errAPIKeyRequired
	}
	if err := validateAPIKey(environment, key); err != nil {
		return nil, err
	}
	stripe.Key = key
	return &liveAPI{}, nil
}

func validateAPIKey(env, key string) error {
	switch env {
	case "sandbox":
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("sandbox environment requires a test secret key (sk_test/rk_test)")
	case "production":
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("production environment requires a live secret key (sk_live/rk_live)")
	default:
		return errInvalidEnv
	}
}

type liveAPI struct{}

func (liveAPI) CreatePaymentMethod(ctx context.Context, params *stripe.PaymentMethodParams) (*stripe.PaymentMethod, error) {
	params.Context = ctx
	return paymentmethod.New(params)
}

func (liveAPI) CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	params.Context = ctx
	return paymentintent.New(params)
}

func (liveAPI) GetPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	return paymentintent.Get(id, params)
}

func (liveAPI) ListPaymentIntents(ctx context.Context, params *stripe.PaymentIntentListParams) ([]*stripe.PaymentIntent, bool, error) {
	params.Context = ctx
	iter := paymentintent.List(params)
	var intents []*stripe.PaymentIntent
	for iter.Next() {
		intents = append(intents, iter.PaymentIntent())
	}
	if err := iter.Err(); err != nil {
		return nil, false, err
	}
	hasMore := false
	if list := iter.PaymentIntentList(); list != nil {
		hasMore = list.HasMore
	}
	return intents, hasMore, nil
}

func (liveAPI) CreateRefund(ctx context.Context, params *stripe.RefundParams) (*stripe.Refund, error) {
	params.Context = ctx
	return refund.New(params)
}

func (liveAPI) CreateCustomer(ctx context.Context, params *stripe.CustomerParams) (*stripe.Customer, error) {
	params.Context = ctx
	return customer.New(params)
}

func (liveAPI) CreateSubscription(ctx context.Context, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	params.Context = ctx
	return subscription.New(params)
}

func (liveAPI) ListPaymentMethods(ctx context.Context, params *stripe.PaymentMethodListParams) ([]*stripe.PaymentMethod, error) {
	params.Context = ctx
	iter := paymentmethod.List(params)
	var methods []*stripe.PaymentMethod
	for iter.Next() {
		methods = append(methods, iter.PaymentMethod())
	}
	return methods, iter.Err()
}

func (liveAPI) GetBalance(ctx context.Context) (*stripe.Balance, error) {
	params := &stripe.BalanceParams{}
	params.Context = ctx
	return balance.Get(params)
}
