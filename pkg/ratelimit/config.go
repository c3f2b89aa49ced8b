package ratelimit

import "time"

// Config for the checkout form limiter. Rate is in requests per second.
type Config struct {
	Rate    float64       `env:"CHECKOUT_RATE_LIMIT" envDefault:"0.2"`
	Burst   int           `env:"CHECKOUT_RATE_BURST" envDefault:"5"`
	IdleTTL time.Duration `env:"CHECKOUT_RATE_IDLE_TTL" envDefault:"3m"`
}
