package subscription

import "context"

// Store persists users, plans and subscriptions. Implementations map
// not-found and uniqueness violations to the typed errors of this package
// and wrap every other failure with ErrPersistence.
type Store interface {
	// CreateUser assigns u.ID. A duplicate email yields ErrEmailTaken.
	CreateUser(ctx context.Context, u *User) error

	GetPlan(ctx context.Context, id PlanID) (*Plan, error)
	ListPlans(ctx context.Context) ([]Plan, error)

	// CreateSubscription inserts a pending subscription and assigns s.ID.
	// A duplicate PreapprovalPlanID yields ErrSubscriptionAlreadyExists.
	CreateSubscription(ctx context.Context, s *Subscription) error

	GetSubscriptionByPreapprovalPlanID(ctx context.Context, id PreapprovalPlanID) (*Subscription, error)

	// SaveSubscription updates the mutable fields of an existing row.
	SaveSubscription(ctx context.Context, s *Subscription) error
}
