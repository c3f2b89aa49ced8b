// Package metrics exposes Prometheus collectors for the billing flow: HTTP
// traffic, checkout link issuance, notification outcomes and processor API
// attempts. All collectors live in the registry passed to New, so tests and
// multiple instances never collide on the default registry.
package metrics

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/mpsubs/pkg/mercadopago"
	"github.com/dmitrymomot/mpsubs/pkg/subscription"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	linksIssued   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	apiAttempts   *prometheus.CounterVec
	apiDuration   *prometheus.HistogramVec
}

type Option func(*options)

type options struct {
	namespace      string
	runtimeMetrics bool
}

// WithNamespace prefixes every metric name.
func WithNamespace(ns string) Option {
	return func(o *options) { o.namespace = ns }
}

// WithRuntimeMetrics adds the Go runtime and process collectors.
func WithRuntimeMetrics() Option {
	return func(o *options) { o.runtimeMetrics = true }
}

// New registers all collectors in registry. A nil registry gets a fresh one.
func New(registry *prometheus.Registry, opts ...Option) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.runtimeMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	f := promauto.With(registry)
	return &Metrics{
		registry: registry,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		linksIssued: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "checkout_links_total",
			Help:      "Checkout links requested, by result.",
		}, []string{"result"}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "notifications_total",
			Help:      "Processor notifications handled, by type and outcome.",
		}, []string{"type", "outcome"}),
		apiAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "mercadopago_attempts_total",
			Help:      "HTTP attempts against the MercadoPago API, by operation and status code.",
		}, []string{"operation", "code"}),
		apiDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "mercadopago_attempt_duration_seconds",
			Help:      "Duration of MercadoPago API attempts.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 8),
		}, []string{"operation"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

var _ subscription.Recorder = (*Metrics)(nil)

// LinkIssued counts a checkout link request. Failures are split by the
// dependency that failed.
func (m *Metrics) LinkIssued(err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, subscription.ErrExternalService):
		result = "processor_error"
	case errors.Is(err, subscription.ErrPersistence):
		result = "persistence_error"
	default:
		result = "error"
	}
	m.linksIssued.WithLabelValues(result).Inc()
}

// NotificationHandled counts a notification by type and outcome. The type
// comes from an unauthenticated body, so it is folded into a fixed label set.
func (m *Metrics) NotificationHandled(notificationType string, outcome subscription.Outcome) {
	m.notifications.WithLabelValues(notificationTypeLabel(notificationType), string(outcome)).Inc()
}

func notificationTypeLabel(t string) string {
	switch t {
	case "":
		return "unknown"
	case subscription.NotificationPreapproval:
		return "preapproval"
	case subscription.NotificationAuthorizedPayment:
		return "authorized_payment"
	default:
		return "other"
	}
}

// ObserveAttempt is a mercadopago.AttemptHook. Transport failures are
// recorded with code "error".
func (m *Metrics) ObserveAttempt(a mercadopago.Attempt) {
	code := "error"
	if a.StatusCode > 0 {
		code = strconv.Itoa(a.StatusCode)
	}
	m.apiAttempts.WithLabelValues(a.Operation, code).Inc()
	m.apiDuration.WithLabelValues(a.Operation).Observe(a.Duration.Seconds())
}
