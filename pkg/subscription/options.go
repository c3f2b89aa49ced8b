package subscription

import (
	"log/slog"
	"time"
)

// Recorder receives outcome counts for monitoring. Implementations must be
// safe for concurrent use.
type Recorder interface {
	LinkIssued(err error)
	NotificationHandled(notificationType string, outcome Outcome)
}

type noopRecorder struct{}

func (noopRecorder) LinkIssued(error)                    {}
func (noopRecorder) NotificationHandled(string, Outcome) {}

// Config holds the fixed values the service needs at runtime.
type Config struct {
	// SuccessURL is the back_url the processor returns payers to.
	SuccessURL string
	// WebhookTimeout bounds the whole reconciliation of one notification.
	WebhookTimeout time.Duration
}

type ServiceOption func(*service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithRecorder(r Recorder) ServiceOption {
	return func(s *service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}
