package mercadopago

import (
	"log/slog"
	"net/http"
)

type Option func(*Client)

// WithHTTPClient replaces the default pooled client. Per-attempt timeouts are
// still enforced through the request context.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

func WithBackoff(b Backoff) Option {
	return func(cl *Client) {
		if b != nil {
			cl.backoff = b
		}
	}
}

// WithCircuitBreaker overrides the breaker built from Config. Nil disables it.
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(cl *Client) { cl.breaker = cb }
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.log = l
		}
	}
}

func WithAttemptHook(h AttemptHook) Option {
	return func(cl *Client) { cl.onAttempt = h }
}

// WithIdempotencyKeyFunc sets the generator for X-Idempotency-Key values.
func WithIdempotencyKeyFunc(fn func() string) Option {
	return func(cl *Client) {
		if fn != nil {
			cl.newKey = fn
		}
	}
}
