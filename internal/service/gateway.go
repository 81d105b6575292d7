// Package service exposes the gateway facade: one entry point per
// operation, fronting whichever provider the caller selects.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/meshpay/gateway/internal/domain/billing"
	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
	"github.com/meshpay/gateway/internal/domain/payment"
	"github.com/meshpay/gateway/internal/infrastructure/observability"
	"github.com/meshpay/gateway/internal/providers"
	"github.com/meshpay/gateway/internal/registry"
	"github.com/meshpay/gateway/pkg/retry"
)

// Gateway routes canonical requests to provider adapters. It resolves the
// provider, checks capabilities, applies per-call timeouts and the provider's
// circuit breaker, and retries reads that failed transiently. Results and
// errors from adapters pass through unchanged.
type Gateway struct {
	registry     *registry.Registry
	logger       zerolog.Logger
	metrics      *observability.Metrics
	timeout      time.Duration
	readRetry    retry.Config
	tuning       map[string]Tuning
	baseMetadata map[string]string
}

// Tuning overrides the gateway-wide call timeout and read-retry attempts
// for one provider. Zero fields keep the gateway defaults.
type Tuning struct {
	Timeout    time.Duration
	MaxRetries uint
}

// Options tunes the facade. Zero values fall back to sane defaults.
type Options struct {
	Logger          zerolog.Logger
	Metrics         *observability.Metrics
	ProviderTimeout time.Duration
	ReadRetry       retry.Config
	// ProviderTuning carries per-provider timeout/retry overrides, keyed by
	// provider name.
	ProviderTuning map[string]Tuning
	// BaseMetadata is stamped onto outbound requests that carry metadata.
	// Caller-supplied keys win on collision.
	BaseMetadata map[string]string
}

// NewGateway builds the facade over a constructed registry.
func NewGateway(reg *registry.Registry, opts Options) *Gateway {
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = 30 * time.Second
	}
	if opts.ReadRetry.MaxAttempts == 0 {
		opts.ReadRetry = retry.DefaultConfig()
	}
	// Reads only retry transient upstream faults, never declines.
	opts.ReadRetry.RetryIf = domainErrors.IsRetryable

	return &Gateway{
		registry:     reg,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		timeout:      opts.ProviderTimeout,
		readRetry:    opts.ReadRetry,
		tuning:       opts.ProviderTuning,
		baseMetadata: opts.BaseMetadata,
	}
}

// tuningFor resolves the effective timeout and read-retry config for one
// provider, falling back to the gateway defaults.
func (g *Gateway) tuningFor(provider string) (time.Duration, retry.Config) {
	timeout := g.timeout
	readCfg := g.readRetry
	if t, ok := g.tuning[provider]; ok {
		if t.Timeout > 0 {
			timeout = t.Timeout
		}
		if t.MaxRetries > 0 {
			readCfg.MaxAttempts = t.MaxRetries
		}
	}
	return timeout, readCfg
}

// Providers lists the registered provider names.
func (g *Gateway) Providers() []string {
	return g.registry.Names()
}

// Supports reports whether the named provider (default when empty) backs op.
func (g *Gateway) Supports(provider string, op providers.Operation) (bool, error) {
	adapter, _, err := g.registry.Resolve(provider)
	if err != nil {
		return false, err
	}
	return adapter.Supports(op), nil
}

// ProcessPayment creates a charge on the selected provider.
func (g *Gateway) ProcessPayment(ctx context.Context, provider string, req payment.Request) (*payment.Result, error) {
	req.Metadata = g.mergeMetadata(req.Metadata)
	result, err := invoke(ctx, g, provider, providers.OpProcessPayment, false,
		func(ctx context.Context, a providers.Adapter) (*payment.Result, error) {
			return a.ProcessPayment(ctx, req)
		})
	if err == nil && g.metrics != nil {
		g.metrics.PaymentsTotal.WithLabelValues(g.providerLabel(provider), string(result.Status)).Inc()
	}
	return result, err
}

// GetPayment fetches a payment snapshot. Reads retry on transient faults.
func (g *Gateway) GetPayment(ctx context.Context, provider, id string) (*payment.Result, error) {
	return invoke(ctx, g, provider, providers.OpGetPayment, true,
		func(ctx context.Context, a providers.Adapter) (*payment.Result, error) {
			return a.GetPayment(ctx, id)
		})
}

// ListPayments returns one provider-defined page of payments.
func (g *Gateway) ListPayments(ctx context.Context, provider string, opts payment.ListOptions) (*payment.Page, error) {
	return invoke(ctx, g, provider, providers.OpListPayments, true,
		func(ctx context.Context, a providers.Adapter) (*payment.Page, error) {
			return a.ListPayments(ctx, opts)
		})
}

// CreateRefund refunds an earlier payment on the selected provider.
func (g *Gateway) CreateRefund(ctx context.Context, provider string, req payment.RefundRequest) (*payment.RefundResult, error) {
	req.Metadata = g.mergeMetadata(req.Metadata)
	result, err := invoke(ctx, g, provider, providers.OpCreateRefund, false,
		func(ctx context.Context, a providers.Adapter) (*payment.RefundResult, error) {
			return a.CreateRefund(ctx, req)
		})
	if err == nil && g.metrics != nil {
		g.metrics.RefundsTotal.WithLabelValues(g.providerLabel(provider), string(result.Status)).Inc()
	}
	return result, err
}

// CreateCustomer creates a provider-side customer.
func (g *Gateway) CreateCustomer(ctx context.Context, provider string, req billing.CustomerRequest) (*billing.CustomerRecord, error) {
	req.Metadata = g.mergeMetadata(req.Metadata)
	return invoke(ctx, g, provider, providers.OpCreateCustomer, false,
		func(ctx context.Context, a providers.Adapter) (*billing.CustomerRecord, error) {
			return a.CreateCustomer(ctx, req)
		})
}

// CreateSubscription creates a recurring billing agreement.
func (g *Gateway) CreateSubscription(ctx context.Context, provider string, req billing.SubscriptionRequest) (*billing.SubscriptionRecord, error) {
	req.Metadata = g.mergeMetadata(req.Metadata)
	return invoke(ctx, g, provider, providers.OpCreateSubscription, false,
		func(ctx context.Context, a providers.Adapter) (*billing.SubscriptionRecord, error) {
			return a.CreateSubscription(ctx, req)
		})
}

// ListPaymentMethods lists a customer's stored payment methods.
func (g *Gateway) ListPaymentMethods(ctx context.Context, provider, customerID string) ([]billing.PaymentMethodRecord, error) {
	return invoke(ctx, g, provider, providers.OpListPaymentMethods, true,
		func(ctx context.Context, a providers.Adapter) ([]billing.PaymentMethodRecord, error) {
			return a.ListPaymentMethods(ctx, customerID)
		})
}

// GetBalance fetches the selected provider's balance snapshot.
func (g *Gateway) GetBalance(ctx context.Context, provider string) (*billing.BalanceSnapshot, error) {
	return invoke(ctx, g, provider, providers.OpGetBalance, true,
		func(ctx context.Context, a providers.Adapter) (*billing.BalanceSnapshot, error) {
			return a.GetBalance(ctx)
		})
}

// BalanceReport is the outcome of one provider in a balance fan-out.
type BalanceReport struct {
	Provider string
	Balance  *billing.BalanceSnapshot
	Err      error
}

// GetBalances queries every provider that supports balances, in parallel.
// One provider failing never hides another's snapshot.
func (g *Gateway) GetBalances(ctx context.Context) []BalanceReport {
	names := g.registry.Names()
	reports := make([]BalanceReport, 0, len(names))
	idx := make(map[string]int, len(names))
	for _, name := range names {
		adapter, _, err := g.registry.Resolve(name)
		if err != nil || !adapter.Supports(providers.OpGetBalance) {
			continue
		}
		idx[name] = len(reports)
		reports = append(reports, BalanceReport{Provider: name})
	}

	var eg errgroup.Group
	for name, i := range idx {
		name, i := name, i
		eg.Go(func() error {
			balance, err := g.GetBalance(ctx, name)
			reports[i].Balance = balance
			reports[i].Err = err
			return nil
		})
	}
	_ = eg.Wait()
	return reports
}

// invoke is the shared call path: resolve, capability check, timeout,
// breaker, optional read retry, metrics, and structured logging.
func invoke[T any](ctx context.Context, g *Gateway, provider string, op providers.Operation, read bool, call func(context.Context, providers.Adapter) (T, error)) (T, error) {
	var zero T

	adapter, breaker, err := g.registry.Resolve(provider)
	if err != nil {
		return zero, err
	}
	name := adapter.Name()
	if !adapter.Supports(op) {
		return zero, domainErrors.NewUnsupportedOperation(name, string(op))
	}

	timeout, readCfg := g.tuningFor(name)

	log := g.logger.With().Str("provider", name).Str("operation", string(op)).Logger()
	log.Debug().Msg("provider call start")
	start := time.Now()

	attempt := func() (T, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		result, err := breaker.Execute(func() (any, error) {
			return call(callCtx, adapter)
		})
		if g.metrics != nil {
			outcome := "success"
			switch {
			case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
				outcome = "rejected"
			case err != nil:
				outcome = "failure"
			}
			g.metrics.CircuitBreakerRequests.WithLabelValues(name, outcome).Inc()
		}
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return zero, domainErrors.NewFault(name, "circuit breaker open", err)
			}
			return zero, err
		}
		typed, _ := result.(T)
		return typed, nil
	}

	var result T
	if read {
		attempts := 0
		result, err = retry.DoWithResult(ctx, readCfg, func() (T, error) {
			attempts++
			if attempts > 1 && g.metrics != nil {
				g.metrics.ProviderRetriesTotal.WithLabelValues(name, string(op)).Inc()
			}
			return attempt()
		})
	} else {
		result, err = attempt()
	}

	duration := time.Since(start)
	g.observe(name, op, duration, err)
	if err != nil {
		log.Warn().
			Err(err).
			Str("error_kind", string(domainErrors.KindOf(err))).
			Dur("duration_ms", duration).
			Msg("provider call failed")
		return zero, err
	}

	log.Info().Dur("duration_ms", duration).Msg("provider call succeeded")
	return result, nil
}

func (g *Gateway) observe(provider string, op providers.Operation, d time.Duration, err error) {
	if g.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
		g.metrics.ProviderErrorsTotal.WithLabelValues(provider, string(op), string(domainErrors.KindOf(err))).Inc()
	}
	g.metrics.ProviderRequestsTotal.WithLabelValues(provider, string(op), outcome).Inc()
	g.metrics.ProviderRequestDuration.WithLabelValues(provider, string(op)).Observe(d.Seconds())
}

// mergeMetadata stamps gateway base metadata under the caller's keys.
func (g *Gateway) mergeMetadata(caller map[string]string) map[string]string {
	if len(g.baseMetadata) == 0 {
		return caller
	}
	merged := make(map[string]string, len(g.baseMetadata)+len(caller))
	for k, v := range g.baseMetadata {
		merged[k] = v
	}
	for k, v := range caller {
		merged[k] = v
	}
	return merged
}

// providerLabel resolves the metric label for a possibly-empty provider name.
func (g *Gateway) providerLabel(provider string) string {
	if provider == "" {
		return g.registry.DefaultProvider()
	}
	return provider
}
