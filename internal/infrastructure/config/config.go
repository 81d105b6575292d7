package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Gateway       GatewayConfig       `mapstructure:"gateway"`
	Providers     ProvidersConfig     `mapstructure:"providers"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	InstanceID    string              `mapstructure:"instance_id"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       int           `mapstructure:"rate_limit"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

// GatewayConfig tunes how the facade talks to providers. Retries apply to
// reads only; writes are never replayed.
type GatewayConfig struct {
	DefaultProvider         string        `mapstructure:"default_provider"`
	ProviderTimeout         time.Duration `mapstructure:"provider_timeout"`
	ReadRetryAttempts       uint          `mapstructure:"read_retry_attempts"`
	ReadRetryDelay          time.Duration `mapstructure:"read_retry_delay"`
	ReadRetryMaxDelay       time.Duration `mapstructure:"read_retry_max_delay"`
	CircuitBreakerThreshold uint32        `mapstructure:"circuit_breaker_threshold"`
	CircuitBreakerTimeout   time.Duration `mapstructure:"circuit_breaker_timeout"`
}

type ProvidersConfig struct {
	Stripe      StripeConfig      `mapstructure:"stripe"`
	Square      SquareConfig      `mapstructure:"square"`
	MercadoPago MercadoPagoConfig `mapstructure:"mercadopago"`
	CorePay     CorePayConfig     `mapstructure:"corepay"`
}

// Tunings returns the per-provider overrides keyed by provider name.
func (p ProvidersConfig) Tunings() map[string]ProviderTuning {
	return map[string]ProviderTuning{
		"stripe":      p.Stripe.ProviderTuning,
		"square":      p.Square.ProviderTuning,
		"mercadopago": p.MercadoPago.ProviderTuning,
		"corepay":     p.CorePay.ProviderTuning,
	}
}

// ProviderTuning overrides the gateway-wide call timeout and read-retry
// attempts for one provider. Zero values fall back to GatewayConfig.
type ProviderTuning struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries uint          `mapstructure:"max_retries"`
}

type StripeConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	APIKey         string `mapstructure:"api_key"`
	Environment    string `mapstructure:"environment"`
	ProviderTuning `mapstructure:",squash"`
}

type SquareConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	AccessToken    string `mapstructure:"access_token"`
	Environment    string `mapstructure:"environment"`
	LocationID     string `mapstructure:"location_id"`
	ProviderTuning `mapstructure:",squash"`
}

type MercadoPagoConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	AccessToken    string `mapstructure:"access_token"`
	ProviderTuning `mapstructure:",squash"`
}

type CorePayConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	ProviderTuning `mapstructure:",squash"`
}

type ObservabilityConfig struct {
	LogLevel       string `mapstructure:"log_level"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	EnableMetrics  bool   `mapstructure:"enable_metrics"`
	EnableTracing  bool   `mapstructure:"enable_tracing"`
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("GATEWAY")
	v.AutomaticEnv()

	// Read from config file if exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/gateway")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.write_timeout must be positive"))
	}
	if c.Gateway.DefaultProvider == "" {
		errs = append(errs, fmt.Errorf("gateway.default_provider is required"))
	}
	if c.Gateway.ProviderTimeout <= 0 {
		errs = append(errs, fmt.Errorf("gateway.provider_timeout must be positive"))
	}
	if c.Providers.Stripe.Enabled && c.Providers.Stripe.APIKey == "" {
		errs = append(errs, fmt.Errorf("providers.stripe.api_key required when stripe is enabled"))
	}
	if c.Providers.Square.Enabled {
		if c.Providers.Square.AccessToken == "" {
			errs = append(errs, fmt.Errorf("providers.square.access_token required when square is enabled"))
		}
		if c.Providers.Square.LocationID == "" {
			errs = append(errs, fmt.Errorf("providers.square.location_id required when square is enabled"))
		}
	}
	if c.Providers.MercadoPago.Enabled && c.Providers.MercadoPago.AccessToken == "" {
		errs = append(errs, fmt.Errorf("providers.mercadopago.access_token required when mercadopago is enabled"))
	}
	if c.Providers.CorePay.Enabled {
		if c.Providers.CorePay.BaseURL == "" {
			errs = append(errs, fmt.Errorf("providers.corepay.base_url required when corepay is enabled"))
		}
		if c.Providers.CorePay.APIKey == "" {
			errs = append(errs, fmt.Errorf("providers.corepay.api_key required when corepay is enabled"))
		}
	}

	// Production environment checks
	env := os.Getenv("ENV")
	if env == "production" || env == "prod" {
		if c.Providers.Stripe.Enabled && c.Providers.Stripe.Environment != "production" {
			errs = append(errs, fmt.Errorf("providers.stripe.environment must be production in production"))
		}
		if c.Providers.Square.Enabled && c.Providers.Square.Environment != "production" {
			errs = append(errs, fmt.Errorf("providers.square.environment must be production in production"))
		}
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.cors.allow_credentials", false)

	// Gateway defaults
	v.SetDefault("gateway.default_provider", "stripe")
	v.SetDefault("gateway.provider_timeout", "30s")
	v.SetDefault("gateway.read_retry_attempts", 3)
	v.SetDefault("gateway.read_retry_delay", "200ms")
	v.SetDefault("gateway.read_retry_max_delay", "2s")
	v.SetDefault("gateway.circuit_breaker_threshold", 10)
	v.SetDefault("gateway.circuit_breaker_timeout", "30s")

	// Provider defaults
	v.SetDefault("providers.stripe.environment", "sandbox")
	v.SetDefault("providers.square.environment", "sandbox")

	// Observability defaults
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.enable_tracing", true)

	// Instance ID
	v.SetDefault("instance_id", "gateway-1")
}
