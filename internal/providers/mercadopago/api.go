package mercadopago

import (
	"context"
	"errors"
	"strings"

	"github.com/mercadopago/sdk-go/pkg/cardtoken"
	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/customer"
	"github.com/mercadopago/sdk-go/pkg/customercard"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/refund"
)

var errAccessTokenRequired = errors.New("mercado pago access token is required")

// API is the subset of Mercado Pago operations the adapter relies on. Tests
// substitute a recording fake; production uses the SDK-backed client below.
type API interface {
	CreateCardToken(ctx context.Context, req cardtoken.Request) (*cardtoken.Response, error)
	CreatePayment(ctx context.Context, req payment.Request) (*payment.Response, error)
	GetPayment(ctx context.Context, id int) (*payment.Response, error)
	SearchPayments(ctx context.Context, req payment.SearchRequest) (*payment.SearchResponse, error)
	CreateRefund(ctx context.Context, paymentID int) (*refund.Response, error)
	CreatePartialRefund(ctx context.Context, paymentID int, amount float64) (*refund.Response, error)
	CreateCustomer(ctx context.Context, req customer.Request) (*customer.Response, error)
	ListCards(ctx context.Context, customerID string) ([]customercard.Response, error)
}

// NewAPI initializes every SDK client off one shared credential config.
func NewAPI(accessToken string) (API, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, errAccessTokenRequired
	}
	cfg, err := config.New(token)
	if err != nil {
		return nil, err
	}
	return &liveAPI{
		payments:  payment.NewClient(cfg),
		refunds:   refund.NewClient(cfg),
		customers: customer.NewClient(cfg),
		tokens:    cardtoken.NewClient(cfg),
		cards:     customercard.NewClient(cfg),
	}, nil
}

type liveAPI struct {
	payments  payment.Client
	refunds   refund.Client
	customers customer.Client
	tokens    cardtoken.Client
	cards     customercard.Client
}

func (c *liveAPI) CreateCardToken(ctx context.Context, req cardtoken.Request) (*cardtoken.Response, error) {
	return c.tokens.Create(ctx, req)
}

func (c *liveAPI) CreatePayment(ctx context.Context, req payment.Request) (*payment.Response, error) {
	return c.payments.Create(ctx, req)
}

func (c *liveAPI) GetPayment(ctx context.Context, id int) (*payment.Response, error) {
	return c.payments.Get(ctx, id)
}

func (c *liveAPI) SearchPayments(ctx context.Context, req payment.SearchRequest) (*payment.SearchResponse, error) {
	return c.payments.Search(ctx, req)
}

func (c *liveAPI) CreateRefund(ctx context.Context, paymentID int) (*refund.Response, error) {
	return c.refunds.Create(ctx, paymentID)
}

func (c *liveAPI) CreatePartialRefund(ctx context.Context, paymentID int, amount float64) (*refund.Response, error) {
	return c.refunds.CreatePartialRefund(ctx, paymentID, amount)
}

func (c *liveAPI) CreateCustomer(ctx context.Context, req customer.Request) (*customer.Response, error) {
	return c.customers.Create(ctx, req)
}

func (c *liveAPI) ListCards(ctx context.Context, customerID string) ([]customercard.Response, error) {
	return c.cards.List(ctx, customerID)
}
