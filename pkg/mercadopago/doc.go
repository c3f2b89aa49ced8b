// Package mercadopago is a small client for the MercadoPago subscriptions
// API ("preapproval").
//
// It covers the two calls the billing flow needs:
//
//   - CreatePreapprovalPlan: POST /preapproval_plan, expects 201 {id, init_point}
//   - GetPreapproval: GET /preapproval/{id}, expects 200 {preapproval_plan_id, status}
//
// Every attempt runs under its own timeout. Transport errors and 408, 425,
// 429 and 5xx responses are retried with exponential backoff; other statuses
// fail immediately with a *StatusError. POST requests carry an
// X-Idempotency-Key that stays the same across the retries of one call, so a
// retried plan creation cannot create a second plan. An optional
// CircuitBreaker stops hammering the API once it keeps failing.
//
// VerifySignature checks the x-signature header MercadoPago attaches to
// webhook deliveries.
package mercadopago
