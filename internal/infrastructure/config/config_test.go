package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Gateway: GatewayConfig{
			DefaultProvider: "stripe",
			ProviderTimeout: 30 * time.Second,
		},
		Providers: ProvidersConfig{
			Stripe: StripeConfig{
				Enabled:     true,
				APIKey:      "sk_test_123",
				Environment: "sandbox",
			},
		},
	}
}

func TestConfig_Validate_Success(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)
}

func TestConfig_Validate_InvalidServerPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"port too low", 0},
		{"port negative", -1},
		{"port too high", 99999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "server.port")
		})
	}
}

func TestConfig_Validate_InvalidTimeouts(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ReadTimeout = 0

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read_timeout")

	cfg = validConfig()
	cfg.Server.WriteTimeout = 0

	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "write_timeout")
}

func TestConfig_Validate_MissingDefaultProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Gateway.DefaultProvider = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "gateway.default_provider")
}

func TestConfig_Validate_EnabledProviderNeedsCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Providers.Stripe.APIKey = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "providers.stripe.api_key")

	cfg = validConfig()
	cfg.Providers.Square = SquareConfig{Enabled: true, AccessToken: "sq_token"}

	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "providers.square.location_id")

	cfg = validConfig()
	cfg.Providers.MercadoPago = MercadoPagoConfig{Enabled: true}

	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "providers.mercadopago.access_token")

	cfg = validConfig()
	cfg.Providers.CorePay = CorePayConfig{Enabled: true, BaseURL: "https://corepay.internal"}

	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "providers.corepay.api_key")
}

func TestConfig_Validate_DisabledProviderNeedsNothing(t *testing.T) {
	cfg := validConfig()
	cfg.Providers.Square = SquareConfig{Enabled: false}
	cfg.Providers.MercadoPago = MercadoPagoConfig{Enabled: false}
	cfg.Providers.CorePay = CorePayConfig{Enabled: false}

	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		Providers: ProvidersConfig{
			Stripe: StripeConfig{Enabled: true},
		},
	}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "server.port")
	assert.Contains(t, errStr, "read_timeout")
	assert.Contains(t, errStr, "write_timeout")
	assert.Contains(t, errStr, "gateway.default_provider")
	assert.Contains(t, errStr, "providers.stripe.api_key")
}

func TestProvidersConfig_Tunings(t *testing.T) {
	p := ProvidersConfig{
		Stripe: StripeConfig{
			ProviderTuning: ProviderTuning{Timeout: 10 * time.Second, MaxRetries: 5},
		},
		CorePay: CorePayConfig{
			ProviderTuning: ProviderTuning{Timeout: 5 * time.Second},
		},
	}

	tunings := p.Tunings()

	require.Len(t, tunings, 4)
	assert.Equal(t, 10*time.Second, tunings["stripe"].Timeout)
	assert.Equal(t, uint(5), tunings["stripe"].MaxRetries)
	assert.Equal(t, 5*time.Second, tunings["corepay"].Timeout)

	// Untuned providers report zero values so callers fall back to the
	// gateway-wide settings.
	assert.Zero(t, tunings["square"].Timeout)
	assert.Zero(t, tunings["mercadopago"].MaxRetries)
}

func TestGatewayConfig_Fields(t *testing.T) {
	cfg := GatewayConfig{
		DefaultProvider:         "corepay",
		ProviderTimeout:         45 * time.Second,
		ReadRetryAttempts:       4,
		ReadRetryDelay:          100 * time.Millisecond,
		ReadRetryMaxDelay:       5 * time.Second,
		CircuitBreakerThreshold: 20,
		CircuitBreakerTimeout:   time.Minute,
	}

	assert.Equal(t, "corepay", cfg.DefaultProvider)
	assert.Equal(t, 45*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, uint(4), cfg.ReadRetryAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.ReadRetryDelay)
	assert.Equal(t, 5*time.Second, cfg.ReadRetryMaxDelay)
	assert.Equal(t, uint32(20), cfg.CircuitBreakerThreshold)
	assert.Equal(t, time.Minute, cfg.CircuitBreakerTimeout)
}

func TestCORSConfig_Fields(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins:   []string{"https://example.com", "https://app.example.com"},
		AllowCredentials: true,
	}

	assert.Equal(t, []string{"https://example.com", "https://app.example.com"}, cfg.AllowedOrigins)
	assert.True(t, cfg.AllowCredentials)
}
