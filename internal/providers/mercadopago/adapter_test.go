package mercadopago

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mercadopago/sdk-go/pkg/cardtoken"
	"github.com/mercadopago/sdk-go/pkg/customer"
	"github.com/mercadopago/sdk-go/pkg/customercard"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/refund"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshpay/gateway/internal/domain/billing"
	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
	"github.com/meshpay/gateway/internal/domain/payment"
	"github.com/meshpay/gateway/internal/providers"
)

// fakeAPI records every call so tests can assert on call counts and
// outbound payloads.
type fakeAPI struct {
	tokenReqs         []cardtoken.Request
	paymentReqs       []mppayment.Request
	searchReqs        []mppayment.SearchRequest
	getIDs            []int
	fullRefundIDs     []int
	partialRefundArgs []float64

	err     error
	payment *mppayment.Response
	search  *mppayment.SearchResponse
}

func (f *fakeAPI) defaultPayment() *mppayment.Response {
	return &mppayment.Response{
		ID:                123456,
		Status:            "approved",
		TransactionAmount: 50.00,
		CurrencyID:        "brl",
		DateCreated:       time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (f *fakeAPI) CreateCardToken(ctx context.Context, req cardtoken.Request) (*cardtoken.Response, error) {
	f.tokenReqs = append(f.tokenReqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &cardtoken.Response{ID: "mp_tok_1"}, nil
}

func (f *fakeAPI) CreatePayment(ctx context.Context, req mppayment.Request) (*mppayment.Response, error) {
	f.paymentReqs = append(f.paymentReqs, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.payment != nil {
		return f.payment, nil
	}
	return f.defaultPayment(), nil
}

func (f *fakeAPI) GetPayment(ctx context.Context, id int) (*mppayment.Response, error) {
	f.getIDs = append(f.getIDs, id)
	if f.err != nil {
		return nil, f.err
	}
	if f.payment != nil {
		return f.payment, nil
	}
	return f.defaultPayment(), nil
}

func (f *fakeAPI) SearchPayments(ctx context.Context, req mppayment.SearchRequest) (*mppayment.SearchResponse, error) {
	f.searchReqs = append(f.searchReqs, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.search != nil {
		return f.search, nil
	}
	return &mppayment.SearchResponse{Results: []mppayment.Response{*f.defaultPayment()}}, nil
}

func (f *fakeAPI) CreateRefund(ctx context.Context, paymentID int) (*refund.Response, error) {
	f.fullRefundIDs = append(f.fullRefundIDs, paymentID)
	if f.err != nil {
		return nil, f.err
	}
	return &refund.Response{ID: 9001, Amount: 50.00, Status: "approved"}, nil
}

func (f *fakeAPI) CreatePartialRefund(ctx context.Context, paymentID int, amount float64) (*refund.Response, error) {
	f.partialRefundArgs = append(f.partialRefundArgs, amount)
	if f.err != nil {
		return nil, f.err
	}
	return &refund.Response{ID: 9002, Amount: amount, Status: "approved"}, nil
}

func (f *fakeAPI) CreateCustomer(ctx context.Context, req customer.Request) (*customer.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &customer.Response{ID: "mp_cus_1", Email: req.Email}, nil
}

func (f *fakeAPI) ListCards(ctx context.Context, customerID string) ([]customercard.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []customercard.Response{
		{ID: "mp_card_1", LastFourDigits: "4242", ExpirationMonth: 12, ExpirationYear: 2030},
	}, nil
}

func TestProcessPayment_RawCardTokenizesFirst(t *testing.T) {
	api := &fakeAPI{}
	a := NewWithAPI(api)

	res, err := a.ProcessPayment(context.Background(), payment.Request{
		Amount:       5000,
		Currency:     "brl",
		ReceiptEmail: "jo@example.com",
		Method: payment.Method{
			Type: payment.MethodTypeCard,
			Card: &payment.CardInput{Number: "5031433215406351", ExpMonth: 11, ExpYear: 2030, CVC: "123", HolderName: "JO SILVA"},
		},
	})
	require.NoError(t, err)

	require.Len(t, api.tokenReqs, 1)
	assert.Equal(t, "11", api.tokenReqs[0].ExpirationMonth)
	require.Len(t, api.paymentReqs, 1)
	req := api.paymentReqs[0]
	assert.Equal(t, "mp_tok_1", req.Token)
	assert.InDelta(t, 50.00, req.TransactionAmount, 0.001)
	require.NotNil(t, req.Payer)
	assert.Equal(t, "jo@example.com", req.Payer.Email)

	assert.Equal(t, "BRL", res.Currency)
	assert.Equal(t, payment.StatusSucceeded, res.Status)
	assert.Equal(t, int64(5000), res.Amount)
}

func TestProcessPayment_TokenSkipsTokenization(t *testing.T) {
	api := &fakeAPI{}
	a := NewWithAPI(api)

	_, err := a.ProcessPayment(context.Background(), payment.Request{
		Amount:   5000,
		Currency: "brl",
		Method:   payment.Method{Type: payment.MethodTypeCard, Token: "mp_tok_existing"},
	})
	require.NoError(t, err)

	assert.Empty(t, api.tokenReqs)
	assert.Equal(t, "mp_tok_existing", api.paymentReqs[0].Token)
}

func TestProcessPayment_CardWithoutSourceFailsBeforeNetwork(t *testing.T) {
	api := &fakeAPI{}
	a := NewWithAPI(api)

	_, err := a.ProcessPayment(context.Background(), payment.Request{
		Amount:   5000,
		Currency: "brl",
		Method:   payment.Method{Type: payment.MethodTypeCard},
	})
	require.Error(t, err)
	assert.Equal(t, domainErrors.KindValidation, domainErrors.KindOf(err))
	assert.Empty(t, api.tokenReqs)
	assert.Empty(t, api.paymentReqs)
}

func TestProcessPayment_BankTransferUsesPix(t *testing.T) {
	api := &fakeAPI{}
	a := NewWithAPI(api)

	_, err := a.ProcessPayment(context.Background(), payment.Request{
		Amount:   10_000,
		Currency: "BRL",
		Method:   payment.Method{Type: payment.MethodTypeBankTransfer},
	})
	require.NoError(t, err)
	assert.Equal(t, "pix", api.paymentReqs[0].PaymentMethodID)
	assert.Empty(t, api.paymentReqs[0].Token)

	_, err = a.ProcessPayment(context.Background(), payment.Request{
		Amount:   10_000,
		Currency: "USD",
		Method:   payment.Method{Type: payment.MethodTypeBankTransfer},
	})
	require.Error(t, err)
	assert.Equal(t, domainErrors.KindValidation, domainErrors.KindOf(err))
}

func TestProcessPayment_RejectedMapsToFailedResult(t *testing.T) {
	api := &fakeAPI{}
	api.payment = &mppayment.Response{
		ID:                777,
		Status:            "rejected",
		StatusDetail:      "cc_rejected_insufficient_amount",
		TransactionAmount: 50.00,
		CurrencyID:        "BRL",
	}
	a := NewWithAPI(api)

	res, err := a.ProcessPayment(context.Background(), payment.Request{
		Amount:   5000,
		Currency: "brl",
		Method:   payment.Method{Type: payment.MethodTypeCard, Token: "mp_tok_1"},
	})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, res.Status)
}

func TestGetPayment_RejectsNonNumericID(t *testing.T) {
	a := NewWithAPI(&fakeAPI{})

	_, err := a.GetPayment(context.Background(), "pay_abc")
	require.Error(t, err)
	assert.Equal(t, domainErrors.KindValidation, domainErrors.KindOf(err))
}

func TestListPayments_OffsetCursor(t *testing.T) {
	api := &fakeAPI{}
	api.search = &mppayment.SearchResponse{
		Results: []mppayment.Response{*api.defaultPayment(), *api.defaultPayment()},
		Paging:  mppayment.PagingResponse{Total: 5},
	}
	a := NewWithAPI(api)

	page, err := a.ListPayments(context.Background(), payment.ListOptions{Limit: 2, StartingAfter: "2"})
	require.NoError(t, err)

	assert.Equal(t, "2", api.searchReqs[0].Filters["offset"])
	assert.Equal(t, "2", api.searchReqs[0].Filters["limit"])
	assert.True(t, page.HasMore)
	assert.Equal(t, "4", page.NextCursor)
}

func TestCreateRefund_FullVersusPartial(t *testing.T) {
	api := &fakeAPI{}
	a := NewWithAPI(api)

	res, err := a.CreateRefund(context.Background(), payment.RefundRequest{PaymentID: "123456"})
	require.NoError(t, err)
	require.Len(t, api.fullRefundIDs, 1)
	assert.Equal(t, 123456, api.fullRefundIDs[0])
	assert.Equal(t, int64(5000), res.Amount)
	assert.Equal(t, payment.StatusSucceeded, res.Status)

	_, err = a.CreateRefund(context.Background(), payment.RefundRequest{PaymentID: "123456", Amount: 2500})
	require.NoError(t, err)
	require.Len(t, api.partialRefundArgs, 1)
	assert.InDelta(t, 25.00, api.partialRefundArgs[0], 0.001)
}

func TestCreateCustomer(t *testing.T) {
	a := NewWithAPI(&fakeAPI{})

	rec, err := a.CreateCustomer(context.Background(), billing.CustomerRequest{
		Email: "jo@example.com",
		Name:  "Jo Silva",
	})
	require.NoError(t, err)
	assert.Equal(t, "mp_cus_1", rec.ID)
	assert.Equal(t, "jo@example.com", rec.Email)
}

func TestUnsupportedOperations(t *testing.T) {
	a := NewWithAPI(&fakeAPI{})

	assert.False(t, a.Supports(providers.OpCreateSubscription))
	assert.False(t, a.Supports(providers.OpGetBalance))

	_, err := a.CreateSubscription(context.Background(), billing.SubscriptionRequest{CustomerID: "c", PlanID: "p"})
	require.Error(t, err)
	assert.Equal(t, domainErrors.KindUnsupportedOperation, domainErrors.KindOf(err))

	_, err = a.GetBalance(context.Background())
	require.Error(t, err)
	assert.Equal(t, domainErrors.KindUnsupportedOperation, domainErrors.KindOf(err))
}

func TestNormalizeError_WrapsAsFault(t *testing.T) {
	err := normalizeError(errors.New("boom"))
	assert.Equal(t, domainErrors.KindUpstreamFault, domainErrors.KindOf(err))
	assert.True(t, domainErrors.IsRetryable(err))
}
