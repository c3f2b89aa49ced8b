// Package subscription implements recurring billing on top of an external
// payment processor.
//
// # Lifecycle
//
// A Subscription starts pending: IssueLink asks the BillingProvider to create
// a recurring plan, stores a Subscription keyed by the returned
// PreapprovalPlanID (inactive, no dates) and hands back the hosted checkout
// URL. The payer finishes checkout on the processor's pages. The processor
// then delivers a "subscription_preapproval" notification whose data.id is a
// PreapprovalID; HandleNotification looks that id up, and when the processor
// reports it as authorized, activates the matching Subscription with
//
//	StartDate = now
//	EndDate   = AddMonths(now, plan.IntervalMonths)
//
// Renewal, cancellation and expiry are not modelled.
//
// # Identifiers
//
// The processor uses two unrelated ids: the plan-approval id returned when a
// plan is created, and the subscription id a payer gets once they enrol.
// They are distinct types (PreapprovalPlanID and PreapprovalID) so one cannot
// be passed where the other is expected.
//
// # Delivery semantics
//
// Notifications are delivered at least once and may arrive out of order.
// Reapplying an authorization to a Subscription that is already active with
// the same PreapprovalID writes nothing. Unknown plan-approval ids are logged
// as warnings and acknowledged with 200. Failures talking to the processor or
// the database answer 500 so the processor redelivers later.
//
// # Errors
//
// Errors are package-level sentinels, joined with their cause:
//
//	link, err := svc.Checkout(ctx, in)
//	switch {
//	case errors.Is(err, subscription.ErrPlanNotFound):
//	case errors.Is(err, subscription.ErrExternalService):
//	case validator.Extract(err) != nil:
//	}
package subscription
