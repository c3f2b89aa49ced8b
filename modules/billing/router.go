package billing

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/mpsubs/handler"
	"github.com/dmitrymomot/mpsubs/pkg/binder"
	"github.com/dmitrymomot/mpsubs/pkg/clientip"
	"github.com/dmitrymomot/mpsubs/pkg/logger"
	"github.com/dmitrymomot/mpsubs/pkg/metrics"
	"github.com/dmitrymomot/mpsubs/pkg/ratelimit"
	"github.com/dmitrymomot/mpsubs/pkg/requestid"
	"github.com/dmitrymomot/mpsubs/pkg/subscription"
)

// Paths served by Router.
const (
	PathIndex        = "/"
	PathNotification = "/mercadopago/notificacao"
	PathSuccess      = "/mercadopago/sucesso"
)

// MaxNotificationBytes caps webhook bodies.
const MaxNotificationBytes = 64 << 10

// PlanLister lists plans for the registration form.
type PlanLister interface {
	ListPlans(ctx context.Context) ([]subscription.Plan, error)
}

// Options wires Router. Service and Plans are required.
type Options struct {
	Service subscription.Service
	Plans   PlanLister
	Logger  *slog.Logger

	// Metrics, when set, instruments every route.
	Metrics *metrics.Metrics
	// CheckoutLimiter, when set, throttles form submissions per client IP.
	CheckoutLimiter *ratelimit.Limiter
	// ClientIP resolves the client address for rate limiting. Defaults to
	// the TCP peer.
	ClientIP *clientip.Resolver
}

type module struct {
	svc   subscription.Service
	plans PlanLister
	log   *slog.Logger
}

// Router builds the billing routes with request id, logging, recovery and
// optional metrics middleware.
func Router(opts Options) chi.Router {
	if opts.Service == nil || opts.Plans == nil {
		panic("billing: Service and Plans are required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	m := &module{svc: opts.Service, plans: opts.Plans, log: log.With(logger.Component("billing"))}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(logger.RequestLogger(m.log))
	r.Use(middleware.Recoverer)

	errs := handler.DefaultErrorHandler(m.log)

	r.Get(PathIndex, handler.Wrap(m.index, handler.WithErrorHandler[struct{}](errs)))

	checkout := handler.Wrap(m.checkout,
		handler.WithBinders[checkoutForm](binder.Form()),
		handler.WithErrorHandler[checkoutForm](errs),
	)
	if opts.CheckoutLimiter != nil {
		resolver := opts.ClientIP
		if resolver == nil {
			resolver = clientip.New()
		}
		r.With(ratelimit.Middleware(opts.CheckoutLimiter, ratelimit.ByIP(resolver))).Post(PathIndex, checkout)
	} else {
		r.Post(PathIndex, checkout)
	}

	r.Post(PathNotification, m.notification)
	r.Get(PathNotification, m.notificationCheck)
	r.Get(PathSuccess, handler.Wrap(m.success, handler.WithErrorHandler[struct{}](errs)))

	return r
}
