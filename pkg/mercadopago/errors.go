package mercadopago

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig      = errors.New("mercadopago: invalid configuration")
	ErrInvalidRequest     = errors.New("mercadopago: invalid request")
	ErrUnexpectedStatus   = errors.New("mercadopago: unexpected response status")
	ErrTemporaryFailure   = errors.New("mercadopago: temporary failure")
	ErrTimeout            = errors.New("mercadopago: request timeout")
	ErrCircuitOpen        = errors.New("mercadopago: circuit breaker is open")
	ErrDecodeResponse     = errors.New("mercadopago: failed to decode response")
	ErrInvalidSignature   = errors.New("mercadopago: invalid webhook signature")
	ErrMalformedSignature = errors.New("mercadopago: malformed x-signature header")
)

// StatusError is returned when the API answers with a status the call does
// not accept. It matches ErrUnexpectedStatus under errors.Is.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("mercadopago: %s returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("mercadopago: %s returned status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return retryableStatus(e.StatusCode)
}

func retryableStatus(code int) bool {
	switch {
	case code == 408, code == 425, code == 429:
		return true
	case code >= 500:
		return true
	default:
		return false
	}
}
