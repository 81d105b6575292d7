// Package corepay adapts the canonical payment model onto the in-house
// CorePay ledger. CorePay exposes charges, refunds, and account balance
// over REST; customers, subscriptions, and stored payment methods live in
// other systems and are not offered here.
package corepay

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/meshpay/gateway/internal/domain/billing"
	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
	"github.com/meshpay/gateway/internal/domain/payment"
	"github.com/meshpay/gateway/internal/providers"
)

const providerName = "corepay"

// Adapter implements providers.Adapter over the CorePay REST API.
type Adapter struct {
	providers.Unsupported

	client       *Client
	capabilities providers.CapabilitySet
}

// New builds the adapter for one CorePay deployment.
func New(baseURL, apiKey string, opts ...Option) (*Adapter, error) {
	client, err := NewClient(baseURL, apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		Unsupported: providers.Unsupported{Provider: providerName},
		client:      client,
		capabilities: providers.NewCapabilitySet(
			providers.OpCreateRefund,
			providers.OpGetBalance,
		),
	}, nil
}

func (a *Adapter) Name() string { return providerName }

func (a *Adapter) Supports(op providers.Operation) bool { return a.capabilities[op] }

func (a *Adapter) ProcessPayment(ctx context.Context, req payment.Request) (*payment.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	charge := chargeRequest{
		Amount:       req.Amount,
		Currency:     payment.NormalizeCurrency(req.Currency),
		Description:  req.Description,
		ReceiptEmail: req.ReceiptEmail,
		Metadata:     req.Metadata,
	}

	switch {
	case req.Method.EffectiveType() == payment.MethodTypeCard && req.Method.HasRawCard():
		// Tokenize first, then charge the returned token.
		token, err := a.tokenizeCard(ctx, req.Method.Card)
		if err != nil {
			return nil, err
		}
		charge.Source = token
		charge.Confirm = true

	case req.Method.EffectiveType() == payment.MethodTypeCard:
		charge.Source = req.Method.Token
		charge.Confirm = true

	case req.Method.EffectiveType() == payment.MethodTypeBankTransfer:
		rail, ok := bankTransferRails[payment.NormalizeCurrency(req.Currency)]
		if !ok {
			return nil, domainErrors.NewValidation("currency", "no bank transfer rail for currency "+payment.NormalizeCurrency(req.Currency))
		}
		// Bank rails settle asynchronously; the charge stays unconfirmed.
		charge.Rail = rail
		charge.Source = req.Method.Token

	default:
		charge.SourceType = req.Method.EffectiveType()
		if req.Method.HasToken() {
			charge.Source = req.Method.Token
			charge.Confirm = true
		}
	}

	resp, err := a.client.CreateCharge(ctx, req.IdempotencyKey, charge)
	if err != nil {
		return nil, err
	}
	return resultFromCharge(resp), nil
}

func (a *Adapter) tokenizeCard(ctx context.Context, card *payment.CardInput) (string, error) {
	resp, err := a.client.CreateToken(ctx, tokenRequest{Card: cardPayload{
		Number:     card.Number,
		ExpMonth:   card.ExpMonth,
		ExpYear:    card.ExpYear,
		CVC:        card.CVC,
		HolderName: card.HolderName,
	}})
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (a *Adapter) GetPayment(ctx context.Context, id string) (*payment.Result, error) {
	resp, err := a.client.GetCharge(ctx, id)
	if err != nil {
		return nil, err
	}
	return resultFromCharge(resp), nil
}

func (a *Adapter) ListPayments(ctx context.Context, opts payment.ListOptions) (*payment.Page, error) {
	query := url.Values{}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.StartingAfter != "" {
		query.Set("starting_after", opts.StartingAfter)
	}
	if opts.EndingBefore != "" {
		query.Set("ending_before", opts.EndingBefore)
	}
	if !opts.CreatedFrom.IsZero() {
		query.Set("created_from", opts.CreatedFrom.UTC().Format(time.RFC3339))
	}
	if !opts.CreatedTo.IsZero() {
		query.Set("created_to", opts.CreatedTo.UTC().Format(time.RFC3339))
	}

	resp, err := a.client.ListCharges(ctx, query)
	if err != nil {
		return nil, err
	}

	page := &payment.Page{HasMore: resp.HasMore, NextCursor: resp.NextCursor}
	for i := range resp.Data {
		page.Payments = append(page.Payments, *resultFromCharge(&resp.Data[i]))
	}
	return page, nil
}

func (a *Adapter) CreateRefund(ctx context.Context, req payment.RefundRequest) (*payment.RefundResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := a.client.CreateRefund(ctx, req.IdempotencyKey, refundRequest{
		ChargeID: req.PaymentID,
		Amount:   req.Amount,
		Reason:   refundReasons.Map(req.Reason, "unspecified"),
	})
	if err != nil {
		return nil, err
	}

	return &payment.RefundResult{
		ID:        resp.ID,
		PaymentID: resp.ChargeID,
		Amount:    resp.Amount,
		Currency:  payment.NormalizeCurrency(resp.Currency),
		Status:    refundStatuses.Map(resp.Status, payment.StatusFailed),
		Reason:    req.Reason,
		CreatedAt: resp.CreatedAt.UTC(),
	}, nil
}

func (a *Adapter) GetBalance(ctx context.Context) (*billing.BalanceSnapshot, error) {
	resp, err := a.client.GetBalance(ctx)
	if err != nil {
		return nil, err
	}

	snap := &billing.BalanceSnapshot{
		Available: map[string]int64{},
		Pending:   map[string]int64{},
		UpdatedAt: time.Now().UTC(),
	}
	for currency, amount := range resp.Available {
		snap.Available[payment.NormalizeCurrency(currency)] += amount
	}
	for currency, amount := range resp.Pending {
		snap.Pending[payment.NormalizeCurrency(currency)] += amount
	}
	return snap, nil
}

func resultFromCharge(charge *chargePayload) *payment.Result {
	return &payment.Result{
		ID:          charge.ID,
		Amount:      charge.Amount,
		Currency:    payment.NormalizeCurrency(charge.Currency),
		Status:      chargeStatuses.Map(charge.Status, payment.StatusFailed),
		Method:      summaryFromSource(charge.Source),
		Description: charge.Description,
		Metadata:    charge.Metadata,
		CreatedAt:   charge.CreatedAt.UTC(),
	}
}

func summaryFromSource(source *sourcePayload) payment.MethodSummary {
	if source == nil || source.Type == "" {
		return payment.UnknownMethodSummary()
	}
	return payment.MethodSummary{
		Type:     source.Type,
		Brand:    source.Brand,
		Last4:    source.Last4,
		ExpMonth: source.ExpMonth,
		ExpYear:  source.ExpYear,
	}
}
