// Package square adapts the canonical payment model onto Square's Payments
// API. Square only charges client-generated tokens (card nonces, vaulted
// card ids, bank authorization tokens), so raw card numbers are rejected
// before any network call. Balance reporting is not offered.
package square

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"

	"github.com/meshpay/gateway/internal/domain/billing"
	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
	"github.com/meshpay/gateway/internal/domain/payment"
	"github.com/meshpay/gateway/internal/providers"
)

const providerName = "square"

// Square settles bank debits in USD only.
const bankTransferCurrency = "USD"

// Adapter implements providers.Adapter over the Square SDK.
type Adapter struct {
	providers.Unsupported

	api          API
	locationID   string
	capabilities providers.CapabilitySet
}

// New builds the adapter over a live SDK binding.
func New(accessToken, environment, locationID string) (*Adapter, error) {
	api, err := NewAPI(accessToken, environment)
	if err != nil {
		return nil, err
	}
	return NewWithAPI(api, locationID)
}

// NewWithAPI builds the adapter over any API implementation. Tests use it
// to inject a recording fake.
func NewWithAPI(api API, locationID string) (*Adapter, error) {
	location := strings.TrimSpace(locationID)
	if location == "" {
		return nil, errLocationRequired
	}
	return &Adapter{
		Unsupported: providers.Unsupported{Provider: providerName},
		api:         api,
		locationID:  location,
		capabilities: providers.NewCapabilitySet(
			providers.OpCreateRefund,
			providers.OpCreateCustomer,
			providers.OpCreateSubscription,
			providers.OpListPaymentMethods,
		),
	}, nil
}

func (a *Adapter) Name() string { return providerName }

func (a *Adapter) Supports(op providers.Operation) bool { return a.capabilities[op] }

func (a *Adapter) ProcessPayment(ctx context.Context, req payment.Request) (*payment.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sqReq := &sq.CreatePaymentRequest{
		IdempotencyKey: ensureIdempotencyKey("payment.create", req.IdempotencyKey),
		LocationID:     ptrString(a.locationID),
		AmountMoney:    moneyPtr(req.Amount, req.Currency),
	}
	if req.Description != "" {
		sqReq.Note = ptrString(req.Description)
	}
	if req.ReceiptEmail != "" {
		sqReq.BuyerEmailAddress = ptrString(req.ReceiptEmail)
	}
	if ref := req.Metadata["reference_id"]; ref != "" {
		sqReq.ReferenceID = ptrString(ref)
	}

	switch {
	case req.Method.EffectiveType() == payment.MethodTypeCard && req.Method.HasToken():
		sqReq.SourceID = req.Method.Token

	case req.Method.EffectiveType() == payment.MethodTypeCard:
		// Square has no server-side tokenization for raw PANs.
		return nil, domainErrors.NewValidation("payment_method.card", "square accepts only client-tokenized cards (source id)")

	case req.Method.EffectiveType() == payment.MethodTypeBankTransfer:
		if payment.NormalizeCurrency(req.Currency) != bankTransferCurrency {
			return nil, domainErrors.NewValidation("currency", "square bank transfers settle in USD only")
		}
		if !req.Method.HasToken() {
			return nil, domainErrors.NewValidation("payment_method.token", "square bank transfers require a bank authorization token")
		}
		sqReq.SourceID = req.Method.Token
		// ACH settles asynchronously; the payment stays uncompleted.
		sqReq.Autocomplete = boolPtr(false)

	default:
		if !req.Method.HasToken() {
			return nil, domainErrors.NewValidation("payment_method.token", "square payments require a source token")
		}
		sqReq.SourceID = req.Method.Token
	}

	p, err := a.api.CreatePayment(ctx, sqReq)
	if err != nil {
		return nil, normalizeError(err)
	}
	return resultFromPayment(p), nil
}

func (a *Adapter) GetPayment(ctx context.Context, id string) (*payment.Result, error) {
	p, err := a.api.GetPayment(ctx, id)
	if err != nil {
		return nil, normalizeError(err)
	}
	return resultFromPayment(p), nil
}

func (a *Adapter) ListPayments(ctx context.Context, opts payment.ListOptions) (*payment.Page, error) {
	sqReq := &sq.ListPaymentsRequest{}
	if !opts.CreatedFrom.IsZero() {
		sqReq.BeginTime = ptrString(opts.CreatedFrom.UTC().Format(time.RFC3339))
	}
	if !opts.CreatedTo.IsZero() {
		sqReq.EndTime = ptrString(opts.CreatedTo.UTC().Format(time.RFC3339))
	}
	if opts.StartingAfter != "" {
		sqReq.Cursor = ptrString(opts.StartingAfter)
	}

	results, hasMore, err := a.api.ListPayments(ctx, sqReq, opts.Limit)
	if err != nil {
		return nil, normalizeError(err)
	}

	page := &payment.Page{HasMore: hasMore}
	for _, p := range results {
		page.Payments = append(page.Payments, *resultFromPayment(p))
	}
	if n := len(page.Payments); n > 0 && hasMore {
		page.NextCursor = page.Payments[n-1].ID
	}
	return page, nil
}

func (a *Adapter) CreateRefund(ctx context.Context, req payment.RefundRequest) (*payment.RefundResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Square requires an explicit amount and currency, so the original
	// payment is read first; a zero request amount refunds it in full.
	original, err := a.api.GetPayment(ctx, req.PaymentID)
	if err != nil {
		return nil, normalizeError(err)
	}
	amount := req.Amount
	currency := ""
	if money := original.GetAmountMoney(); money != nil {
		if money.Currency != nil {
			currency = string(*money.Currency)
		}
		if amount == 0 && money.Amount != nil {
			amount = *money.Amount
		}
	}
	// A permanent condition, not a transient one; callers must not retry it.
	if amount == 0 {
		return nil, domainErrors.NewDeclined(providerName, 0, "", "", "amount",
			fmt.Sprintf("payment %s has no refundable amount", req.PaymentID), nil)
	}

	sqReq := &sq.RefundPaymentRequest{
		IdempotencyKey: ensureIdempotencyKey("refund.create", req.IdempotencyKey),
		PaymentID:      ptrString(req.PaymentID),
		AmountMoney:    moneyPtr(amount, currency),
	}
	if reason := refundReasons.Map(req.Reason, ""); reason != "" {
		sqReq.Reason = ptrString(reason)
	}

	r, err := a.api.RefundPayment(ctx, sqReq)
	if err != nil {
		return nil, normalizeError(err)
	}

	res := &payment.RefundResult{
		ID:        r.GetID(),
		PaymentID: req.PaymentID,
		Status:    refundStatuses.Map(stringValue(r.GetStatus()), payment.StatusFailed),
		Reason:    req.Reason,
		CreatedAt: parseTime(r.GetCreatedAt()),
	}
	if pid := stringValue(r.GetPaymentID()); pid != "" {
		res.PaymentID = pid
	}
	if money := r.GetAmountMoney(); money != nil {
		if money.Amount != nil {
			res.Amount = *money.Amount
		}
		if money.Currency != nil {
			res.Currency = payment.NormalizeCurrency(string(*money.Currency))
		}
	}
	return res, nil
}

func (a *Adapter) CreateCustomer(ctx context.Context, req billing.CustomerRequest) (*billing.CustomerRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sqReq := &sq.CreateCustomerRequest{
		IdempotencyKey: ptrString(ensureIdempotencyKey("customer.create", req.IdempotencyKey)),
		EmailAddress:   ptrString(req.Email),
	}
	given, family := splitName(req.Name)
	sqReq.GivenName = ptrString(given)
	sqReq.FamilyName = ptrString(family)
	sqReq.PhoneNumber = ptrString(req.Phone)
	if ref := req.Metadata["reference_id"]; ref != "" {
		sqReq.ReferenceID = ptrString(ref)
	}

	c, err := a.api.CreateCustomer(ctx, sqReq)
	if err != nil {
		return nil, normalizeError(err)
	}

	return &billing.CustomerRecord{
		ID:        stringValue(c.GetID()),
		Email:     stringValue(c.GetEmailAddress()),
		Name:      joinName(stringValue(c.GetGivenName()), stringValue(c.GetFamilyName())),
		Phone:     stringValue(c.GetPhoneNumber()),
		Metadata:  req.Metadata,
		CreatedAt: parseTime(c.GetCreatedAt()),
	}, nil
}

func (a *Adapter) CreateSubscription(ctx context.Context, req billing.SubscriptionRequest) (*billing.SubscriptionRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sqReq := &sq.CreateSubscriptionRequest{
		IdempotencyKey:  ptrString(ensureIdempotencyKey("subscription.create", req.IdempotencyKey)),
		LocationID:      a.locationID,
		CustomerID:      req.CustomerID,
		PlanVariationID: ptrString(req.PlanID),
		CardID:          ptrString(req.PaymentMethodID),
	}

	s, err := a.api.CreateSubscription(ctx, sqReq)
	if err != nil {
		return nil, normalizeError(err)
	}

	rec := &billing.SubscriptionRecord{
		ID:                 stringValue(s.GetID()),
		CustomerID:         req.CustomerID,
		PaymentMethodID:    req.PaymentMethodID,
		PlanID:             req.PlanID,
		Status:             subscriptionStatuses.Map(subscriptionStatusString(s.GetStatus()), billing.SubscriptionUnknown),
		Metadata:           req.Metadata,
		CreatedAt:          parseTime(s.GetCreatedAt()),
		CurrentPeriodStart: parseDate(s.GetStartDate()),
		CurrentPeriodEnd:   parseDate(s.GetChargedThroughDate()),
	}
	if cid := stringValue(s.GetCustomerID()); cid != "" {
		rec.CustomerID = cid
	}
	return rec, nil
}

func (a *Adapter) ListPaymentMethods(ctx context.Context, customerID string) ([]billing.PaymentMethodRecord, error) {
	if customerID == "" {
		return nil, domainErrors.NewValidation("customer_id", "is required")
	}

	cards, err := a.api.ListCards(ctx, &sq.ListCardsRequest{CustomerID: ptrString(customerID)})
	if err != nil {
		return nil, normalizeError(err)
	}

	records := make([]billing.PaymentMethodRecord, 0, len(cards))
	for _, card := range cards {
		if card == nil {
			continue
		}
		rec := billing.PaymentMethodRecord{
			ID:    stringValue(card.GetID()),
			Type:  payment.MethodTypeCard,
			Last4: stringValue(card.GetLast4()),
		}
		if brand := card.GetCardBrand(); brand != nil {
			rec.Brand = strings.ToLower(string(*brand))
		}
		if m := card.GetExpMonth(); m != nil {
			rec.ExpMonth = int(*m)
		}
		if y := card.GetExpYear(); y != nil {
			rec.ExpYear = int(*y)
		}
		records = append(records, rec)
	}
	return records, nil
}

func resultFromPayment(p *sq.Payment) *payment.Result {
	res := &payment.Result{
		ID:          stringValue(p.GetID()),
		Status:      paymentStatuses.Map(stringValue(p.GetStatus()), payment.StatusFailed),
		Method:      summaryFromPayment(p),
		Description: stringValue(p.GetNote()),
		CreatedAt:   parseTime(p.GetCreatedAt()),
	}
	if money := p.GetAmountMoney(); money != nil {
		if money.Amount != nil {
			res.Amount = *money.Amount
		}
		if money.Currency != nil {
			res.Currency = payment.NormalizeCurrency(string(*money.Currency))
		}
	}
	return res
}

func summaryFromPayment(p *sq.Payment) payment.MethodSummary {
	details := p.GetCardDetails()
	if details == nil {
		return payment.UnknownMethodSummary()
	}
	card := details.GetCard()
	if card == nil {
		return payment.UnknownMethodSummary()
	}
	summary := payment.MethodSummary{
		Type:  payment.MethodTypeCard,
		Last4: stringValue(card.GetLast4()),
	}
	if brand := card.GetCardBrand(); brand != nil {
		summary.Brand = strings.ToLower(string(*brand))
	}
	if m := card.GetExpMonth(); m != nil {
		summary.ExpMonth = int(*m)
	}
	if y := card.GetExpYear(); y != nil {
		summary.ExpYear = int(*y)
	}
	return summary
}

func ensureIdempotencyKey(prefix, provided string) string {
	if strings.TrimSpace(provided) != "" {
		return provided
	}
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

func splitName(full string) (given, family string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func joinName(given, family string) string {
	return strings.TrimSpace(given + " " + family)
}

func parseTime(ptr *string) time.Time {
	if ptr == nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, *ptr)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func parseDate(ptr *string) time.Time {
	if ptr == nil {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", *ptr)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func subscriptionStatusString(status *sq.SubscriptionStatus) string {
	if status == nil {
		return ""
	}
	return string(*status)
}
