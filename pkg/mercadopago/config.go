package mercadopago

import "time"

// Config is read once at startup and never mutated.
type Config struct {
	AccessToken string        `env:"MERCADO_PAGO_ACCESS_TOKEN,required"`
	BaseURL     string        `env:"MERCADO_PAGO_BASE_URL" envDefault:"https://api.mercadopago.com"`
	Timeout     time.Duration `env:"MERCADO_PAGO_TIMEOUT" envDefault:"10s"`
	MaxRetries  int           `env:"MERCADO_PAGO_MAX_RETRIES" envDefault:"2"`

	RetryInitialInterval time.Duration `env:"MERCADO_PAGO_RETRY_INITIAL_INTERVAL" envDefault:"250ms"`
	RetryMaxInterval     time.Duration `env:"MERCADO_PAGO_RETRY_MAX_INTERVAL" envDefault:"2s"`

	// Breaker settings. A zero threshold disables the circuit breaker.
	BreakerFailureThreshold int           `env:"MERCADO_PAGO_BREAKER_FAILURES" envDefault:"5"`
	BreakerRecoveryTimeout  time.Duration `env:"MERCADO_PAGO_BREAKER_RECOVERY" envDefault:"30s"`

	// WebhookSecret enables x-signature verification when set.
	WebhookSecret string `env:"MP_WEBHOOK_SECRET"`
}
