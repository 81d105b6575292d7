package corepay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
	"github.com/meshpay/gateway/internal/domain/payment"
	"github.com/meshpay/gateway/internal/providers"
)

// recordedRequest captures one inbound request for assertions.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   map[string]any
}

type testServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	handler  http.HandlerFunc
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *testServer {
	t.Helper()
	ts := &testServer{handler: handler}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
		}
		if r.Body != nil {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			rec.Body = body
		}
		ts.mu.Lock()
		ts.requests = append(ts.requests, rec)
		ts.mu.Unlock()
		ts.handler(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) recorded() []recordedRequest {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]recordedRequest(nil), ts.requests...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func chargeBody(status string) map[string]any {
	return map[string]any{
		"id":       "ch_123",
		"amount":   5000,
		"currency": "usd",
		"status":   status,
		"source": map[string]any{
			"type":  "card",
			"brand": "visa",
			"last4": "4242",
		},
		"created_at": time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
}

func newTestAdapter(t *testing.T, ts *testServer) *Adapter {
	t.Helper()
	a, err := New(ts.URL, "cp_test_key")
	require.NoError(t, err)
	return a
}

func TestProcessPayment_RawCardTokenizesFirst(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/tokens":
			writeJSON(w, http.StatusOK, map[string]any{"token": "cptok_1"})
		case "/v1/charges":
			writeJSON(w, http.StatusOK, chargeBody("settled"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	a := newTestAdapter(t, ts)

	res, err := a.ProcessPayment(context.Background(), payment.Request{
		Amount:         5000,
		Currency:       "usd",
		IdempotencyKey: "idem-1",
		Method: payment.Method{
			Type: payment.MethodTypeCard,
			Card: &payment.CardInput{Number: "4242424242424242", ExpMonth: 12, ExpYear: 2030, CVC: "123"},
		},
	})
	require.NoError(t, err)

	reqs := ts.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/v1/tokens", reqs[0].Path)
	assert.Equal(t, "Bearer cp_test_key", reqs[0].Header.Get("Authorization"))
	assert.Equal(t, "/v1/charges", reqs[1].Path)
	assert.Equal(t, "idem-1", reqs[1].Header.Get("Idempotency-Key"))
	assert.Equal(t, "cptok_1", reqs[1].Body["source"])
	assert.Equal(t, true, reqs[1].Body["confirm"])

	assert.Equal(t, "USD", res.Currency)
	assert.Equal(t, payment.StatusSucceeded, res.Status)
	assert.Equal(t, "visa", res.Method.Brand)
}

func TestProcessPayment_TokenSkipsTokenization(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, chargeBody("authorized"))
	})
	a := newTestAdapter(t, ts)

	res, err := a.ProcessPayment(context.Background(), payment.Request{
		Amount:   5000,
		Currency: "usd",
		Method:   payment.Method{Type: payment.MethodTypeCard, Token: "cptok_existing"},
	})
	require.NoError(t, err)

	reqs := ts.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/v1/charges", reqs[0].Path)
	assert.Equal(t, "cptok_existing", reqs[0].Body["source"])
	assert.Equal(t, payment.StatusProcessing, res.Status)
}

func TestProcessPayment_CardWithoutSourceFailsBeforeNetwork(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	a := newTestAdapter(t, ts)

	_, err := a.ProcessPayment(context.Background(), payment.Request{
		Amount:   5000,
		Currency: "usd",
		Method:   payment.Method{Type: payment.MethodTypeCard},
	})
	require.Error(t, err)
	assert.Equal(t, domainErrors.KindValidation, domainErrors.KindOf(err))
	assert.Empty(t, ts.recorded())
}

func TestProcessPayment_BankTransfer(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, chargeBody("created"))
	})
	a := newTestAdapter(t, ts)

	res, err := a.ProcessPayment(context.Background(), payment.Request{
		Amount:   10_000,
		Currency: "EUR",
		Method:   payment.Method{Type: payment.MethodTypeBankTransfer},
	})
	require.NoError(t, err)

	body := ts.recorded()[0].Body
	assert.Equal(t, "sepa", body["rail"])
	assert.Equal(t, false, body["confirm"])
	assert.Equal(t, payment.StatusPending, res.Status)

	_, err = a.ProcessPayment(context.Background(), payment.Request{
		Amount:   10_000,
		Currency: "CHF",
		Method:   payment.Method{Type: payment.MethodTypeBankTransfer},
	})
	require.Error(t, err)
	assert.Equal(t, domainErrors.KindValidation, domainErrors.KindOf(err))
}

func TestProcessPayment_DeclineCarriesProviderCode(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusPaymentRequired, map[string]any{
			"error": map[string]any{
				"code":    "insufficient_funds",
				"type":    "card_error",
				"message": "the card has insufficient funds",
			},
		})
	})
	a := newTestAdapter(t, ts)

	_, err := a.ProcessPayment(context.Background(), payment.Request{
		Amount:   5000,
		Currency: "usd",
		Method:   payment.Method{Type: payment.MethodTypeCard, Token: "cptok_1"},
	})
	require.Error(t, err)

	var ge *domainErrors.GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, domainErrors.KindUpstreamDeclined, ge.Kind)
	assert.Equal(t, http.StatusPaymentRequired, ge.HTTPStatus)
	assert.Equal(t, "insufficient_funds", ge.ProviderCode)
	assert.Equal(t, "card_error", ge.ProviderType)
	assert.False(t, domainErrors.IsRetryable(err))
}

func TestServerErrorIsRetryableFault(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	a := newTestAdapter(t, ts)

	_, err := a.GetPayment(context.Background(), "ch_123")
	require.Error(t, err)
	assert.Equal(t, domainErrors.KindUpstreamFault, domainErrors.KindOf(err))
	assert.True(t, domainErrors.IsRetryable(err))
}

func TestListPayments_ForwardsQuery(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"data":        []any{chargeBody("settled")},
			"has_more":    true,
			"next_cursor": "ch_123",
		})
	})
	a := newTestAdapter(t, ts)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	page, err := a.ListPayments(context.Background(), payment.ListOptions{
		Limit:         10,
		StartingAfter: "ch_100",
		CreatedFrom:   from,
	})
	require.NoError(t, err)

	req := ts.recorded()[0]
	assert.Equal(t, "/v1/charges", req.Path)
	assert.Contains(t, req.Query, "limit=10")
	assert.Contains(t, req.Query, "starting_after=ch_100")
	assert.Contains(t, req.Query, "created_from=")

	require.Len(t, page.Payments, 1)
	assert.True(t, page.HasMore)
	assert.Equal(t, "ch_123", page.NextCursor)
}

func TestCreateRefund_MapsReason(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id":         "rf_1",
			"charge_id":  "ch_123",
			"amount":     5000,
			"currency":   "usd",
			"status":     "settled",
			"created_at": time.Now().UTC(),
		})
	})
	a := newTestAdapter(t, ts)

	res, err := a.CreateRefund(context.Background(), payment.RefundRequest{
		PaymentID: "ch_123",
		Reason:    payment.ReasonDuplicate,
	})
	require.NoError(t, err)

	body := ts.recorded()[0].Body
	assert.Equal(t, "ch_123", body["charge_id"])
	assert.Equal(t, "duplicate", body["reason"])
	assert.Nil(t, body["amount"], "zero amount is omitted for a full refund")

	assert.Equal(t, payment.StatusSucceeded, res.Status)
	assert.Equal(t, "USD", res.Currency)
}

func TestGetBalance(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"available": map[string]int64{"usd": 250_000},
			"pending":   map[string]int64{"eur": 1_200},
		})
	})
	a := newTestAdapter(t, ts)

	snap, err := a.GetBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(250_000), snap.Available["USD"])
	assert.Equal(t, int64(1_200), snap.Pending["EUR"])
}

func TestUnsupportedOperations(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	a := newTestAdapter(t, ts)

	for _, op := range []providers.Operation{
		providers.OpCreateCustomer,
		providers.OpCreateSubscription,
		providers.OpListPaymentMethods,
	} {
		assert.False(t, a.Supports(op), string(op))
	}
	_, err := a.ListPaymentMethods(context.Background(), "cus_1")
	require.Error(t, err)
	assert.Equal(t, domainErrors.KindUnsupportedOperation, domainErrors.KindOf(err))
}
