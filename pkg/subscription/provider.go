package subscription

import "context"

// BillingProvider is the subset of the payment processor the service uses.
// Implementations return errors wrapping ErrExternalService for any failure
// to reach the processor or any unexpected answer.
type BillingProvider interface {
	// CreatePlan creates a recurring billing plan and returns its
	// plan-approval id and hosted checkout URL.
	CreatePlan(ctx context.Context, req PlanRequest) (*ProviderPlan, error)

	// GetPreapproval returns the processor's current view of a payer's
	// subscription.
	GetPreapproval(ctx context.Context, id PreapprovalID) (*PreapprovalStatus, error)

	// VerifyNotification authenticates a webhook delivery. Implementations
	// without a configured secret accept every delivery.
	VerifyNotification(ctx context.Context, meta NotificationMeta, dataID string) error
}

// PlanRequest describes the recurring plan created for one checkout. Amount
// is charged every IntervalMonths and the payer returns to BackURL.
type PlanRequest struct {
	Reason         string
	IntervalMonths int
	Amount         Money
	BackURL        string
}

// ProviderPlan is a plan created at the processor. CheckoutURL is where the
// payer authorizes the first charge.
type ProviderPlan struct {
	ID          PreapprovalPlanID
	CheckoutURL string
}

// PreapprovalStatus is the processor's state of a payer's enrolment in a
// plan.
type PreapprovalStatus struct {
	ID                PreapprovalID
	PreapprovalPlanID PreapprovalPlanID
	Status            string
}

// StatusAuthorized is the preapproval status once the payer's first charge
// has been approved.
const StatusAuthorized = "authorized"

// Authorized reports whether the payer has approved the subscription.
func (p *PreapprovalStatus) Authorized() bool {
	return p.Status == StatusAuthorized
}
