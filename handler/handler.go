package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mpsubs/pkg/binder"
	"github.com/dmitrymomot/mpsubs/pkg/logger"
)

type HandlerFunc[R any] func(ctx Context, req R) Response

// Response renders itself. A non-nil error is passed to the ErrorHandler,
// so implementations must not write anything before they can fail.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// Bind populates v from r.
type Bind func(r *http.Request, v any) error

type ErrorHandler func(ctx Context, err error)

type WrapOption[R any] func(*wrapConfig[R])

type wrapConfig[R any] struct {
	binders      []Bind
	errorHandler ErrorHandler
}

// WithBinders applies binders in order. Binders returning
// binder.ErrNotApplicable are skipped.
func WithBinders[R any](binders ...Bind) WrapOption[R] {
	return func(c *wrapConfig[R]) {
		c.binders = append(c.binders, binders...)
	}
}

func WithErrorHandler[R any](h ErrorHandler) WrapOption[R] {
	return func(c *wrapConfig[R]) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// DefaultErrorHandler replies with the HTTPError status, or 500. Server
// errors are logged with the request context.
func DefaultErrorHandler(log *slog.Logger) ErrorHandler {
	return func(ctx Context, err error) {
		code := http.StatusInternalServerError
		msg := http.StatusText(code)

		var httpErr HTTPError
		if errors.As(err, &httpErr) {
			code, msg = httpErr.Code, httpErr.Message
		}
		if code >= http.StatusInternalServerError && log != nil {
			log.ErrorContext(ctx, "request failed",
				slog.String("path", ctx.Request().URL.Path),
				logger.Error(err),
			)
		}
		http.Error(ctx.ResponseWriter(), msg, code)
	}
}

// Wrap converts h into an http.HandlerFunc.
func Wrap[R any](h HandlerFunc[R], opts ...WrapOption[R]) http.HandlerFunc {
	cfg := &wrapConfig[R]{errorHandler: DefaultErrorHandler(nil)}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := NewContext(w, r)

		var req R
		for _, bind := range cfg.binders {
			if err := bind(r, &req); err != nil {
				if errors.Is(err, binder.ErrNotApplicable) {
					continue
				}
				cfg.errorHandler(ctx, NewHTTPError(http.StatusBadRequest, "", err))
				return
			}
		}

		resp := h(ctx, req)
		if resp == nil {
			cfg.errorHandler(ctx, ErrNilResponse)
			return
		}
		if err := resp.Render(w, r); err != nil {
			cfg.errorHandler(ctx, err)
		}
	}
}
