package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/meshpay/gateway/internal/infrastructure/config"
	"github.com/meshpay/gateway/internal/infrastructure/observability"
	"github.com/meshpay/gateway/internal/registry"
	"github.com/meshpay/gateway/internal/service"
	"github.com/meshpay/gateway/pkg/retry"
)

type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Metrics  *observability.Metrics
	Registry *registry.Registry
	Gateway  *service.Gateway
}

func New(ctx context.Context, serviceName string, metricsNamespace string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.InitLogger(serviceName, cfg.Observability.LogLevel, os.Stdout)
	logger.Info().Msg("Starting")

	if cfg.Observability.EnableTracing {
		tp, err := observability.InitTracer(serviceName, cfg.Observability.JaegerEndpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		} else {
			go func() {
				<-ctx.Done()
				observability.Shutdown(context.Background(), tp)
			}()
			logger.Info().Msg("Tracing enabled")
		}
	}

	metrics := observability.NewMetrics(metricsNamespace, nil)
	logger.Info().Msg("Metrics initialized")

	reg := registry.Build(cfg, logger, metrics)
	if names := reg.Names(); len(names) == 0 {
		logger.Warn().Msg("No providers registered, gateway starting degraded")
	} else {
		logger.Info().Strs("providers", names).Msg("Providers registered")
	}

	tuning := make(map[string]service.Tuning)
	for name, t := range cfg.Providers.Tunings() {
		if t.Timeout > 0 || t.MaxRetries > 0 {
			tuning[name] = service.Tuning{Timeout: t.Timeout, MaxRetries: t.MaxRetries}
		}
	}

	gateway := service.NewGateway(reg, service.Options{
		Logger:          logger,
		Metrics:         metrics,
		ProviderTimeout: cfg.Gateway.ProviderTimeout,
		ReadRetry: retry.Config{
			MaxAttempts:  cfg.Gateway.ReadRetryAttempts,
			InitialDelay: cfg.Gateway.ReadRetryDelay,
			MaxDelay:     cfg.Gateway.ReadRetryMaxDelay,
		},
		ProviderTuning: tuning,
		BaseMetadata:   map[string]string{"gateway_instance": cfg.InstanceID},
	})

	return &App{
		Config:   cfg,
		Logger:   logger,
		Metrics:  metrics,
		Registry: reg,
		Gateway:  gateway,
	}, nil
}
