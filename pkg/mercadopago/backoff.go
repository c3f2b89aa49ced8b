package mercadopago

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff yields the pause before retry number attempt (1-based).
type Backoff interface {
	NextInterval(attempt int) time.Duration
}

// ExponentialBackoff grows Initial by Multiplier per attempt, capped at Max,
// with an optional symmetric jitter expressed as a fraction of the interval.
type ExponentialBackoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

func (b ExponentialBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	initial := b.Initial
	if initial <= 0 {
		initial = 250 * time.Millisecond
	}
	ceiling := b.Max
	if ceiling <= 0 {
		ceiling = 5 * time.Second
	}
	mult := b.Multiplier
	if mult <= 0 {
		mult = 2
	}

	interval := float64(initial) * math.Pow(mult, float64(attempt-1))
	if b.Jitter > 0 {
		interval *= 1 + (rand.Float64()*2-1)*b.Jitter
	}
	if interval > float64(ceiling) {
		interval = float64(ceiling)
	}
	return time.Duration(interval)
}

// NoBackoff retries immediately. Meant for tests.
type NoBackoff struct{}

func (NoBackoff) NextInterval(int) time.Duration { return 0 }
