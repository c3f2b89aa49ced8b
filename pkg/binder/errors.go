package binder

import "errors"

var (
	ErrNotApplicable        = errors.New("binder not applicable to request")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMissingContentType   = errors.New("missing content type")
	ErrInvalidForm          = errors.New("invalid form data")
	ErrInvalidTarget        = errors.New("bind target must be a non-nil pointer to struct")
)
