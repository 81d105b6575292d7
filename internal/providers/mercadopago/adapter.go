// Package mercadopago adapts the canonical payment model onto the Mercado
// Pago SDK. Declines come back as "rejected" payment results rather than
// errors, and amounts are converted between minor-unit integers and the
// SDK's major-unit floats. Subscriptions and balance reporting are not
// offered.
package mercadopago

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/mercadopago/sdk-go/pkg/cardtoken"
	"github.com/mercadopago/sdk-go/pkg/customer"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"

	"github.com/meshpay/gateway/internal/domain/billing"
	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
	"github.com/meshpay/gateway/internal/domain/payment"
	"github.com/meshpay/gateway/internal/providers"
)

const providerName = "mercadopago"

// Adapter implements providers.Adapter over the Mercado Pago SDK.
type Adapter struct {
	providers.Unsupported

	api          API
	capabilities providers.CapabilitySet
}

// New builds the adapter over a live SDK binding.
func New(accessToken string) (*Adapter, error) {
	api, err := NewAPI(accessToken)
	if err != nil {
		return nil, err
	}
	return NewWithAPI(api), nil
}

// NewWithAPI builds the adapter over any API implementation. Tests use it
// to inject a recording fake.
func NewWithAPI(api API) *Adapter {
	return &Adapter{
		Unsupported: providers.Unsupported{Provider: providerName},
		api:         api,
		capabilities: providers.NewCapabilitySet(
			providers.OpCreateRefund,
			providers.OpCreateCustomer,
			providers.OpListPaymentMethods,
		),
	}
}

func (a *Adapter) Name() string { return providerName }

func (a *Adapter) Supports(op providers.Operation) bool { return a.capabilities[op] }

func (a *Adapter) ProcessPayment(ctx context.Context, req payment.Request) (*payment.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	mpReq := mppayment.Request{
		TransactionAmount: toMajorUnits(req.Amount, req.Currency),
		Description:       req.Description,
		Installments:      1,
	}
	if req.ReceiptEmail != "" {
		mpReq.Payer = &mppayment.PayerRequest{Email: req.ReceiptEmail}
	}
	if len(req.Metadata) > 0 {
		meta := make(map[string]any, len(req.Metadata))
		for k, v := range req.Metadata {
			meta[k] = v
		}
		mpReq.Metadata = meta
	}

	switch {
	case req.Method.EffectiveType() == payment.MethodTypeCard && req.Method.HasRawCard():
		// Tokenize first, then charge the returned token.
		token, err := a.tokenizeCard(ctx, req.Method.Card)
		if err != nil {
			return nil, err
		}
		mpReq.Token = token

	case req.Method.EffectiveType() == payment.MethodTypeCard:
		mpReq.Token = req.Method.Token

	case req.Method.EffectiveType() == payment.MethodTypeBankTransfer:
		rail, ok := bankTransferRails[payment.NormalizeCurrency(req.Currency)]
		if !ok {
			return nil, domainErrors.NewValidation("currency", "no bank transfer rail for currency "+payment.NormalizeCurrency(req.Currency))
		}
		// Pix charges stay pending until the payer confirms out of band.
		mpReq.PaymentMethodID = rail

	default:
		mpReq.PaymentMethodID = req.Method.EffectiveType()
		if req.Method.HasToken() {
			mpReq.Token = req.Method.Token
		}
	}

	resp, err := a.api.CreatePayment(ctx, mpReq)
	if err != nil {
		return nil, normalizeError(err)
	}
	return resultFromResponse(resp), nil
}

func (a *Adapter) tokenizeCard(ctx context.Context, card *payment.CardInput) (string, error) {
	tokReq := cardtoken.Request{
		CardNumber:      card.Number,
		ExpirationMonth: strconv.Itoa(card.ExpMonth),
		ExpirationYear:  strconv.Itoa(card.ExpYear),
		SecurityCode:    card.CVC,
	}
	if card.HolderName != "" {
		tokReq.Cardholder = &cardtoken.CardholderRequest{Name: card.HolderName}
	}

	tok, err := a.api.CreateCardToken(ctx, tokReq)
	if err != nil {
		return "", normalizeError(err)
	}
	return tok.ID, nil
}

func (a *Adapter) GetPayment(ctx context.Context, id string) (*payment.Result, error) {
	numeric, err := parsePaymentID(id)
	if err != nil {
		return nil, err
	}

	resp, err := a.api.GetPayment(ctx, numeric)
	if err != nil {
		return nil, normalizeError(err)
	}
	return resultFromResponse(resp), nil
}

func (a *Adapter) ListPayments(ctx context.Context, opts payment.ListOptions) (*payment.Page, error) {
	offset := 0
	if opts.StartingAfter != "" {
		parsed, err := strconv.Atoi(opts.StartingAfter)
		if err != nil || parsed < 0 {
			return nil, domainErrors.NewValidation("starting_after", "must be a non-negative offset")
		}
		offset = parsed
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 30
	}

	filters := map[string]string{
		"sort":     "date_created",
		"criteria": "desc",
		"limit":    strconv.Itoa(limit),
		"offset":   strconv.Itoa(offset),
	}
	if !opts.CreatedFrom.IsZero() {
		filters["begin_date"] = opts.CreatedFrom.UTC().Format(time.RFC3339)
	}
	if !opts.CreatedTo.IsZero() {
		filters["end_date"] = opts.CreatedTo.UTC().Format(time.RFC3339)
	}

	resp, err := a.api.SearchPayments(ctx, mppayment.SearchRequest{Filters: filters})
	if err != nil {
		return nil, normalizeError(err)
	}

	page := &payment.Page{}
	for i := range resp.Results {
		page.Payments = append(page.Payments, *resultFromResponse(&resp.Results[i]))
	}
	next := offset + len(page.Payments)
	if next < resp.Paging.Total {
		page.HasMore = true
		page.NextCursor = strconv.Itoa(next)
	}
	return page, nil
}

func (a *Adapter) CreateRefund(ctx context.Context, req payment.RefundRequest) (*payment.RefundResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	numeric, err := parsePaymentID(req.PaymentID)
	if err != nil {
		return nil, err
	}

	// The refund endpoint takes major units; the original payment supplies
	// the currency for the conversion.
	original, err := a.api.GetPayment(ctx, numeric)
	if err != nil {
		return nil, normalizeError(err)
	}
	currency := original.CurrencyID

	var resp *refundResponse
	if req.Amount > 0 {
		r, err := a.api.CreatePartialRefund(ctx, numeric, toMajorUnits(req.Amount, currency))
		if err != nil {
			return nil, normalizeError(err)
		}
		resp = newRefundResponse(r.ID, r.Amount, r.Status, r.DateCreated)
	} else {
		r, err := a.api.CreateRefund(ctx, numeric)
		if err != nil {
			return nil, normalizeError(err)
		}
		resp = newRefundResponse(r.ID, r.Amount, r.Status, r.DateCreated)
	}

	return &payment.RefundResult{
		ID:        strconv.Itoa(resp.id),
		PaymentID: req.PaymentID,
		Amount:    toMinorUnits(resp.amount, currency),
		Currency:  payment.NormalizeCurrency(currency),
		Status:    refundStatuses.Map(strings.ToLower(resp.status), payment.StatusFailed),
		Reason:    req.Reason,
		CreatedAt: resp.created.UTC(),
	}, nil
}

func (a *Adapter) CreateCustomer(ctx context.Context, req billing.CustomerRequest) (*billing.CustomerRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	mpReq := customer.Request{Email: req.Email}
	given, family := splitName(req.Name)
	mpReq.FirstName = given
	mpReq.LastName = family

	resp, err := a.api.CreateCustomer(ctx, mpReq)
	if err != nil {
		return nil, normalizeError(err)
	}

	return &billing.CustomerRecord{
		ID:        resp.ID,
		Email:     resp.Email,
		Name:      req.Name,
		Phone:     req.Phone,
		Metadata:  req.Metadata,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (a *Adapter) ListPaymentMethods(ctx context.Context, customerID string) ([]billing.PaymentMethodRecord, error) {
	if customerID == "" {
		return nil, domainErrors.NewValidation("customer_id", "is required")
	}

	cards, err := a.api.ListCards(ctx, customerID)
	if err != nil {
		return nil, normalizeError(err)
	}

	records := make([]billing.PaymentMethodRecord, 0, len(cards))
	for _, card := range cards {
		records = append(records, billing.PaymentMethodRecord{
			ID:       card.ID,
			Type:     payment.MethodTypeCard,
			Brand:    card.PaymentMethod.ID,
			Last4:    card.LastFourDigits,
			ExpMonth: card.ExpirationMonth,
			ExpYear:  card.ExpirationYear,
		})
	}
	return records, nil
}

// refundResponse flattens the two refund call shapes for result mapping.
type refundResponse struct {
	id      int
	amount  float64
	status  string
	created time.Time
}

func newRefundResponse(id int, amount float64, status string, created time.Time) *refundResponse {
	return &refundResponse{id: id, amount: amount, status: status, created: created}
}

func parsePaymentID(id string) (int, error) {
	numeric, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || numeric <= 0 {
		return 0, domainErrors.NewValidation("payment_id", "must be a numeric mercado pago id")
	}
	return numeric, nil
}

func resultFromResponse(resp *mppayment.Response) *payment.Result {
	res := &payment.Result{
		ID:          strconv.Itoa(resp.ID),
		Amount:      toMinorUnits(resp.TransactionAmount, resp.CurrencyID),
		Currency:    payment.NormalizeCurrency(resp.CurrencyID),
		Status:      paymentStatuses.Map(strings.ToLower(resp.Status), payment.StatusFailed),
		Method:      summaryFromResponse(resp),
		Description: resp.Description,
		CreatedAt:   resp.DateCreated.UTC(),
	}
	if len(resp.Metadata) > 0 {
		meta := make(map[string]string, len(resp.Metadata))
		for k, v := range resp.Metadata {
			if s, ok := v.(string); ok {
				meta[k] = s
			}
		}
		res.Metadata = meta
	}
	return res
}

func summaryFromResponse(resp *mppayment.Response) payment.MethodSummary {
	if resp.Card.LastFourDigits == "" {
		return payment.UnknownMethodSummary()
	}
	return payment.MethodSummary{
		Type:     payment.MethodTypeCard,
		Brand:    resp.PaymentMethodID,
		Last4:    resp.Card.LastFourDigits,
		ExpMonth: resp.Card.ExpirationMonth,
		ExpYear:  resp.Card.ExpirationYear,
	}
}

func splitName(full string) (given, family string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
