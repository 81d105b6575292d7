// Package stripe adapts the canonical payment model onto Stripe's
// payment-intent API. Raw cards are exchanged for a payment-method token
// before charging; bank transfers open an unconfirmed intent on the local
// debit rail for the request currency.
//
// The adapter is safe for concurrent use; the SDK client carries no
// per-call state.
package stripe

import (
	"context"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/meshpay/gateway/internal/domain/billing"
	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
	"github.com/meshpay/gateway/internal/domain/payment"
	"github.com/meshpay/gateway/internal/providers"
)

const providerName = "stripe"

// Adapter implements providers.Adapter over the Stripe SDK.
type Adapter struct {
	api          API
	capabilities providers.CapabilitySet
}

// New builds the adapter over a live SDK binding.
func New(apiKey, environment string) (*Adapter, error) {
	api, err := NewAPI(apiKey, environment)
	if err != nil {
		return nil, err
	}
	return NewWithAPI(api), nil
}

// NewWithAPI builds the adapter over any API implementation. Tests use it
// to inject a recording fake.
func NewWithAPI(api API) *Adapter {
	return &Adapter{
		api: api,
		capabilities: providers.NewCapabilitySet(
			providers.OpCreateRefund,
			providers.OpCreateCustomer,
			providers.OpCreateSubscription,
			providers.OpListPaymentMethods,
			providers.OpGetBalance,
		),
	}
}

func (a *Adapter) Name() string { return providerName }

func (a *Adapter) Supports(op providers.Operation) bool { return a.capabilities[op] }

func (a *Adapter) ProcessPayment(ctx context.Context, req payment.Request) (*payment.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(strings.ToLower(req.Currency)),
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(req.ReceiptEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	switch {
	case req.Method.EffectiveType() == payment.MethodTypeCard && req.Method.HasRawCard():
		// Tokenize first, then create-and-confirm with the returned token.
		token, err := a.tokenizeCard(ctx, req.Method.Card)
		if err != nil {
			return nil, err
		}
		params.PaymentMethod = stripe.String(token)
		params.Confirm = stripe.Bool(true)

	case req.Method.EffectiveType() == payment.MethodTypeCard:
		params.PaymentMethod = stripe.String(req.Method.Token)
		params.Confirm = stripe.Bool(true)

	case req.Method.EffectiveType() == payment.MethodTypeBankTransfer:
		rail, ok := bankTransferRails[payment.NormalizeCurrency(req.Currency)]
		if !ok {
			return nil, domainErrors.NewValidation("currency", "no bank transfer rail for currency "+payment.NormalizeCurrency(req.Currency))
		}
		// Bank debits settle asynchronously; the intent stays unconfirmed.
		params.PaymentMethodTypes = stripe.StringSlice([]string{rail})

	default:
		params.PaymentMethodTypes = stripe.StringSlice([]string{req.Method.EffectiveType()})
		if req.Method.HasToken() {
			params.PaymentMethod = stripe.String(req.Method.Token)
			params.Confirm = stripe.Bool(true)
		}
	}

	pi, err := a.api.CreatePaymentIntent(ctx, params)
	if err != nil {
		return nil, normalizeError(err)
	}
	return resultFromIntent(pi), nil
}

func (a *Adapter) tokenizeCard(ctx context.Context, card *payment.CardInput) (string, error) {
	pm, err := a.api.CreatePaymentMethod(ctx, &stripe.PaymentMethodParams{
		Type: stripe.String("card"),
		Card: &stripe.PaymentMethodCardParams{
			Number:   stripe.String(card.Number),
			ExpMonth: stripe.Int64(int64(card.ExpMonth)),
			ExpYear:  stripe.Int64(int64(card.ExpYear)),
			CVC:      stripe.String(card.CVC),
		},
	})
	if err != nil {
		return "", normalizeError(err)
	}
	return pm.ID, nil
}

func (a *Adapter) GetPayment(ctx context.Context, id string) (*payment.Result, error) {
	pi, err := a.api.GetPaymentIntent(ctx, id)
	if err != nil {
		return nil, normalizeError(err)
	}
	return resultFromIntent(pi), nil
}

func (a *Adapter) ListPayments(ctx context.Context, opts payment.ListOptions) (*payment.Page, error) {
	params := &stripe.PaymentIntentListParams{}
	if opts.Limit > 0 {
		params.Limit = stripe.Int64(int64(opts.Limit))
	}
	if opts.StartingAfter != "" {
		params.StartingAfter = stripe.String(opts.StartingAfter)
	}
	if opts.EndingBefore != "" {
		params.EndingBefore = stripe.String(opts.EndingBefore)
	}
	if !opts.CreatedFrom.IsZero() || !opts.CreatedTo.IsZero() {
		rng := &stripe.RangeQueryParams{}
		if !opts.CreatedFrom.IsZero() {
			rng.GreaterThanOrEqual = opts.CreatedFrom.Unix()
		}
		if !opts.CreatedTo.IsZero() {
			rng.LesserThanOrEqual = opts.CreatedTo.Unix()
		}
		params.CreatedRange = rng
	}

	intents, hasMore, err := a.api.ListPaymentIntents(ctx, params)
	if err != nil {
		return nil, normalizeError(err)
	}

	page := &payment.Page{HasMore: hasMore}
	for _, pi := range intents {
		page.Payments = append(page.Payments, *resultFromIntent(pi))
	}
	if n := len(page.Payments); n > 0 {
		page.NextCursor = page.Payments[n-1].ID
	}
	return page, nil
}

func (a *Adapter) CreateRefund(ctx context.Context, req payment.RefundRequest) (*payment.RefundResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.PaymentID),
	}
	if req.Amount > 0 {
		params.Amount = stripe.Int64(req.Amount)
	}
	if reason := refundReasons.Map(req.Reason, ""); reason != "" {
		params.Reason = stripe.String(reason)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	r, err := a.api.CreateRefund(ctx, params)
	if err != nil {
		return nil, normalizeError(err)
	}

	res := &payment.RefundResult{
		ID:        r.ID,
		PaymentID: req.PaymentID,
		Amount:    r.Amount,
		Currency:  payment.NormalizeCurrency(string(r.Currency)),
		Status:    refundStatuses.Map(string(r.Status), payment.StatusFailed),
		Reason:    req.Reason,
		CreatedAt: time.Unix(r.Created, 0).UTC(),
	}
	if r.PaymentIntent != nil && r.PaymentIntent.ID != "" {
		res.PaymentID = r.PaymentIntent.ID
	}
	return res, nil
}

func (a *Adapter) CreateCustomer(ctx context.Context, req billing.CustomerRequest) (*billing.CustomerRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(req.Email),
	}
	if req.Name != "" {
		params.Name = stripe.String(req.Name)
	}
	if req.Phone != "" {
		params.Phone = stripe.String(req.Phone)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	c, err := a.api.CreateCustomer(ctx, params)
	if err != nil {
		return nil, normalizeError(err)
	}
	return &billing.CustomerRecord{
		ID:        c.ID,
		Email:     c.Email,
		Name:      c.Name,
		Phone:     c.Phone,
		Metadata:  c.Metadata,
		CreatedAt: time.Unix(c.Created, 0).UTC(),
	}, nil
}

func (a *Adapter) CreateSubscription(ctx context.Context, req billing.SubscriptionRequest) (*billing.SubscriptionRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := &stripe.SubscriptionParams{
		Customer: stripe.String(req.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(req.PlanID)},
		},
	}
	if req.PaymentMethodID != "" {
		params.DefaultPaymentMethod = stripe.String(req.PaymentMethodID)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	s, err := a.api.CreateSubscription(ctx, params)
	if err != nil {
		return nil, normalizeError(err)
	}

	rec := &billing.SubscriptionRecord{
		ID:              s.ID,
		CustomerID:      req.CustomerID,
		PaymentMethodID: req.PaymentMethodID,
		PlanID:          req.PlanID,
		Status:          subscriptionStatuses.Map(string(s.Status), billing.SubscriptionUnknown),
		Metadata:        s.Metadata,
		CreatedAt:       time.Unix(s.Created, 0).UTC(),
	}
	if s.Customer != nil && s.Customer.ID != "" {
		rec.CustomerID = s.Customer.ID
	}
	// Billing periods live on the subscription items.
	if s.Items != nil && len(s.Items.Data) > 0 {
		item := s.Items.Data[0]
		rec.CurrentPeriodStart = time.Unix(item.CurrentPeriodStart, 0).UTC()
		rec.CurrentPeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
	}
	return rec, nil
}

func (a *Adapter) ListPaymentMethods(ctx context.Context, customerID string) ([]billing.PaymentMethodRecord, error) {
	if customerID == "" {
		return nil, domainErrors.NewValidation("customer_id", "is required")
	}

	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String("card"),
	}
	methods, err := a.api.ListPaymentMethods(ctx, params)
	if err != nil {
		return nil, normalizeError(err)
	}

	records := make([]billing.PaymentMethodRecord, 0, len(methods))
	for _, pm := range methods {
		rec := billing.PaymentMethodRecord{ID: pm.ID, Type: string(pm.Type)}
		if pm.Card != nil {
			rec.Brand = string(pm.Card.Brand)
			rec.Last4 = pm.Card.Last4
			rec.ExpMonth = int(pm.Card.ExpMonth)
			rec.ExpYear = int(pm.Card.ExpYear)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (a *Adapter) GetBalance(ctx context.Context) (*billing.BalanceSnapshot, error) {
	b, err := a.api.GetBalance(ctx)
	if err != nil {
		return nil, normalizeError(err)
	}

	snap := &billing.BalanceSnapshot{
		Available: map[string]int64{},
		Pending:   map[string]int64{},
		UpdatedAt: time.Now().UTC(),
	}
	for _, amt := range b.Available {
		snap.Available[payment.NormalizeCurrency(string(amt.Currency))] += amt.Amount
	}
	for _, amt := range b.Pending {
		snap.Pending[payment.NormalizeCurrency(string(amt.Currency))] += amt.Amount
	}
	return snap, nil
}

func resultFromIntent(pi *stripe.PaymentIntent) *payment.Result {
	return &payment.Result{
		ID:          pi.ID,
		Amount:      pi.Amount,
		Currency:    payment.NormalizeCurrency(string(pi.Currency)),
		Status:      paymentStatuses.Map(string(pi.Status), payment.StatusFailed),
		Method:      summaryFromIntent(pi),
		Description: pi.Description,
		Metadata:    pi.Metadata,
		CreatedAt:   time.Unix(pi.Created, 0).UTC(),
	}
}

func summaryFromIntent(pi *stripe.PaymentIntent) payment.MethodSummary {
	pm := pi.PaymentMethod
	if pm == nil {
		return payment.UnknownMethodSummary()
	}
	summary := payment.MethodSummary{Type: string(pm.Type)}
	if summary.Type == "" {
		return payment.UnknownMethodSummary()
	}
	if pm.Card != nil {
		summary.Brand = string(pm.Card.Brand)
		summary.Last4 = pm.Card.Last4
		summary.ExpMonth = int(pm.Card.ExpMonth)
		summary.ExpYear = int(pm.Card.ExpYear)
	}
	return summary
}
