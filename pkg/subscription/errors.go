package subscription

import "errors"

var (
	ErrPlanNotFound              = errors.New("subscription plan not found")
	ErrSubscriptionNotFound      = errors.New("subscription not found")
	ErrSubscriptionAlreadyExists = errors.New("subscription already exists")
	ErrEmailTaken                = errors.New("email already registered")
	ErrInvalidArgument           = errors.New("invalid argument")

	// ErrExternalService marks failures of the payment processor: transport
	// errors, timeouts and any response other than the expected one.
	ErrExternalService = errors.New("payment processor request failed")
	// ErrPersistence marks database failures other than the typed not-found
	// and uniqueness errors above.
	ErrPersistence = errors.New("persistence failure")

	ErrInvalidNotification = errors.New("invalid notification payload")
	ErrInvalidSignature    = errors.New("invalid notification signature")
)
