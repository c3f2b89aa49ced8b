package main

import "time"

type appConfig struct {
	Name string `env:"APP_NAME" envDefault:"mpsubs"`
	Env  string `env:"APP_ENV" envDefault:"development"`

	// SuccessURL is where the processor sends payers after checkout.
	SuccessURL     string        `env:"SUCCESS_URL,required"`
	PlansSeedFile  string        `env:"PLANS_SEED_FILE"`
	WebhookTimeout time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`

	// TrustedProxyHeaders lists headers carrying the client address, in
	// priority order. Leave empty when not behind a proxy.
	TrustedProxyHeaders []string `env:"TRUSTED_PROXY_HEADERS" envSeparator:","`
}
