package ratelimit

import "errors"

var (
	ErrInvalidLimit = errors.New("ratelimit: rate must be positive")
	ErrInvalidBurst = errors.New("ratelimit: burst must be positive")
)
