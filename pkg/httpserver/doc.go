// Package httpserver runs an http.Server bound to a context: Run blocks until
// the context is cancelled (typically by SIGINT/SIGTERM through
// signal.NotifyContext) and then drains in-flight requests within the
// configured shutdown timeout.
package httpserver
