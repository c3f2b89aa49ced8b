package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/mpsubs/internal/db"
	"github.com/dmitrymomot/mpsubs/internal/seed"
	"github.com/dmitrymomot/mpsubs/internal/store"
	"github.com/dmitrymomot/mpsubs/modules/billing"
	"github.com/dmitrymomot/mpsubs/pkg/clientip"
	"github.com/dmitrymomot/mpsubs/pkg/config"
	"github.com/dmitrymomot/mpsubs/pkg/httpserver"
	"github.com/dmitrymomot/mpsubs/pkg/logger"
	"github.com/dmitrymomot/mpsubs/pkg/mercadopago"
	"github.com/dmitrymomot/mpsubs/pkg/metrics"
	"github.com/dmitrymomot/mpsubs/pkg/pg"
	"github.com/dmitrymomot/mpsubs/pkg/ratelimit"
	"github.com/dmitrymomot/mpsubs/pkg/requestid"
	"github.com/dmitrymomot/mpsubs/pkg/subscription"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		appCfg  appConfig
		dbCfg   pg.Config
		mpCfg   mercadopago.Config
		httpCfg httpserver.Config
		rlCfg   ratelimit.Config
	)
	if err := errors.Join(
		config.Load(&appCfg),
		config.Load(&dbCfg),
		config.Load(&mpCfg),
		config.Load(&httpCfg),
		config.Load(&rlCfg),
	); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(appCfg.Env, appCfg.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pg.Connect(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, db.Migrations(), dbCfg, log); err != nil {
		return err
	}

	st := store.NewPostgres(pool)
	if _, err := seed.File(ctx, st, appCfg.PlansSeedFile, log); err != nil {
		return err
	}

	m := metrics.New(prometheus.NewRegistry(), metrics.WithRuntimeMetrics())

	client, err := mercadopago.New(mpCfg,
		mercadopago.WithLogger(log),
		mercadopago.WithAttemptHook(m.ObserveAttempt),
	)
	if err != nil {
		return err
	}
	if mpCfg.WebhookSecret == "" {
		log.WarnContext(ctx, "MP_WEBHOOK_SECRET is not set, notification signatures are not verified")
	}

	svc := subscription.NewService(
		subscription.NewMercadoPagoProvider(client, mpCfg.WebhookSecret),
		st,
		subscription.Config{SuccessURL: appCfg.SuccessURL, WebhookTimeout: appCfg.WebhookTimeout},
		subscription.WithLogger(log),
		subscription.WithRecorder(m),
	)

	limiter, err := ratelimit.New(rlCfg)
	if err != nil {
		return err
	}
	go limiter.Cleanup(ctx, time.Minute)

	r := chi.NewRouter()
	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(log, pg.Healthcheck(pool)))
	r.Handle("/metrics", m.Handler())
	r.Mount("/", billing.Router(billing.Options{
		Service:         svc,
		Plans:           st,
		Logger:          log,
		Metrics:         m,
		CheckoutLimiter: limiter,
		ClientIP:        clientip.New(clientip.WithHeaders(appCfg.TrustedProxyHeaders...)),
	}))

	return httpserver.New(httpCfg, r, httpserver.WithLogger(log)).Run(ctx)
}
