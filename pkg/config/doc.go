// Package config loads process configuration from environment variables into
// typed structs.
//
// It combines github.com/joho/godotenv (optional .env files) with
// github.com/caarlos0/env/v11 (struct tag parsing). Every configuration type is
// parsed once and cached, so components can call Load for their own struct at
// startup without re-reading the environment.
//
// # Usage
//
//	type Config struct {
//		AccessToken string        `env:"MERCADO_PAGO_ACCESS_TOKEN,required"`
//		Timeout     time.Duration `env:"MERCADO_PAGO_TIMEOUT" envDefault:"10s"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Values are read once and never reloaded while the process runs. Pass the
// resulting struct to the components that need it instead of reading the
// environment from inside them.
//
// # Error Handling
//
// Parsing failures are joined with ErrParsingConfig so callers can use
// errors.Is. A nil destination yields ErrNilPointer.
package config
