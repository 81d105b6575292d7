// Package registry builds the provider set once at startup and resolves
// adapters by name afterwards. A provider whose construction fails is
// logged and skipped so one bad credential cannot take the whole gateway
// down.
package registry

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	domainErrors "github.com/meshpay/gateway/internal/domain/errors"
	"github.com/meshpay/gateway/internal/infrastructure/config"
	"github.com/meshpay/gateway/internal/infrastructure/observability"
	"github.com/meshpay/gateway/internal/providers"
	"github.com/meshpay/gateway/internal/providers/corepay"
	"github.com/meshpay/gateway/internal/providers/mercadopago"
	"github.com/meshpay/gateway/internal/providers/square"
	"github.com/meshpay/gateway/internal/providers/stripe"
)

// Breaker is the per-provider circuit breaker type. Adapter operations
// return heterogeneous results, so the breaker carries any.
type Breaker = gobreaker.CircuitBreaker[any]

// Options tunes breaker behavior and observability for registered providers.
type Options struct {
	Logger           zerolog.Logger
	Metrics          *observability.Metrics
	BreakerThreshold uint32
	BreakerTimeout   time.Duration
}

// Registry is read-only after construction; no locking is needed.
type Registry struct {
	defaultProvider string
	opts            Options
	adapters        map[string]providers.Adapter
	breakers        map[string]*Breaker
}

// New builds an empty registry with the given default provider name.
func New(defaultProvider string, opts Options) *Registry {
	if opts.BreakerThreshold == 0 {
		opts.BreakerThreshold = 10
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	return &Registry{
		defaultProvider: defaultProvider,
		opts:            opts,
		adapters:        make(map[string]providers.Adapter),
		breakers:        make(map[string]*Breaker),
	}
}

// Build constructs every enabled provider from config. Construction
// failures are logged and the provider is skipped.
func Build(cfg *config.Config, logger zerolog.Logger, metrics *observability.Metrics) *Registry {
	r := New(cfg.Gateway.DefaultProvider, Options{
		Logger:           logger,
		Metrics:          metrics,
		BreakerThreshold: cfg.Gateway.CircuitBreakerThreshold,
		BreakerTimeout:   cfg.Gateway.CircuitBreakerTimeout,
	})

	if cfg.Providers.Stripe.Enabled {
		r.register(func() (providers.Adapter, error) {
			return stripe.New(cfg.Providers.Stripe.APIKey, cfg.Providers.Stripe.Environment)
		})
	}
	if cfg.Providers.Square.Enabled {
		r.register(func() (providers.Adapter, error) {
			return square.New(cfg.Providers.Square.AccessToken, cfg.Providers.Square.Environment, cfg.Providers.Square.LocationID)
		})
	}
	if cfg.Providers.MercadoPago.Enabled {
		r.register(func() (providers.Adapter, error) {
			return mercadopago.New(cfg.Providers.MercadoPago.AccessToken)
		})
	}
	if cfg.Providers.CorePay.Enabled {
		r.register(func() (providers.Adapter, error) {
			return corepay.New(cfg.Providers.CorePay.BaseURL, cfg.Providers.CorePay.APIKey,
				corepay.WithTimeout(cfg.Providers.CorePay.Timeout))
		})
	}

	return r
}

func (r *Registry) register(construct func() (providers.Adapter, error)) {
	adapter, err := construct()
	if err != nil {
		r.opts.Logger.Warn().Err(err).Msg("provider construction failed, skipping")
		return
	}
	r.Register(adapter)
}

// Register adds an adapter and its circuit breaker.
func (r *Registry) Register(adapter providers.Adapter) {
	name := adapter.Name()
	threshold := r.opts.BreakerThreshold

	r.adapters[name] = adapter
	r.breakers[name] = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 10,
		Interval:    60 * time.Second,
		Timeout:     r.opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= threshold && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.opts.Logger.Warn().
				Str("provider", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			if r.opts.Metrics != nil {
				r.opts.Metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			}
		},
	})
}

// Resolve returns the adapter and breaker for name; an empty name resolves
// to the default provider.
func (r *Registry) Resolve(name string) (providers.Adapter, *Breaker, error) {
	if name == "" {
		name = r.defaultProvider
	}
	adapter, ok := r.adapters[name]
	if !ok {
		return nil, nil, domainErrors.NewProviderNotAvailable(name)
	}
	return adapter, r.breakers[name], nil
}

// Names lists the registered providers in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultProvider reports the configured fallback provider name.
func (r *Registry) DefaultProvider() string {
	return r.defaultProvider
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
