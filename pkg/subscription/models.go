package subscription

import "time"

// User is created at registration and never changed afterwards.
type User struct {
	ID    UserID
	Name  string
	Email string
}

// Plan is reference data seeded out of band.
type Plan struct {
	ID             PlanID
	Name           string
	Price          Money
	IntervalMonths int
}

// Subscription links a user to a plan through the processor's ids.
// A pending subscription has Active false and no dates.
type Subscription struct {
	ID                SubscriptionID
	UserID            UserID
	PlanID            PlanID
	PreapprovalPlanID PreapprovalPlanID
	PreapprovalID     PreapprovalID
	Active            bool
	StartDate         *time.Time
	EndDate           *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsPending reports whether the subscription has never been activated.
func (s *Subscription) IsPending() bool {
	return !s.Active && s.StartDate == nil
}

// ActivatedBy reports whether the subscription is already active for id.
func (s *Subscription) ActivatedBy(id PreapprovalID) bool {
	return s.Active && s.PreapprovalID == id
}

// Activate marks the subscription as paid for intervalMonths starting at now.
func (s *Subscription) Activate(id PreapprovalID, now time.Time, intervalMonths int) {
	start := now.UTC()
	end := AddMonths(start, intervalMonths)
	s.PreapprovalID = id
	s.Active = true
	s.StartDate = &start
	s.EndDate = &end
	s.UpdatedAt = start
}

// CheckoutLink is the hosted checkout a payer is redirected to.
type CheckoutLink struct {
	PreapprovalPlanID PreapprovalPlanID
	URL               string
}
