package mercadopago

import "time"

const (
	FrequencyMonths = "months"
	CurrencyBRL     = "BRL"

	// StatusAuthorized is the preapproval status of a subscription whose
	// first payment went through.
	StatusAuthorized = "authorized"
)

// PreapprovalPlanRequest is the body of POST /preapproval_plan.
type PreapprovalPlanRequest struct {
	BackURL       string        `json:"back_url"`
	Reason        string        `json:"reason"`
	AutoRecurring AutoRecurring `json:"auto_recurring"`
}

type AutoRecurring struct {
	Frequency         int     `json:"frequency"`
	FrequencyType     string  `json:"frequency_type"`
	TransactionAmount float64 `json:"transaction_amount"`
	CurrencyID        string  `json:"currency_id"`
}

// PreapprovalPlan is the subset of the plan resource the service reads.
type PreapprovalPlan struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
	Status    string `json:"status,omitempty"`
}

// Preapproval is a payer's subscription to a plan.
type Preapproval struct {
	ID                string `json:"id"`
	PreapprovalPlanID string `json:"preapproval_plan_id"`
	Status            string `json:"status"`
}

// Attempt describes one HTTP exchange with the API. StatusCode is zero when
// no response was received.
type Attempt struct {
	Operation  string
	Number     int
	StatusCode int
	Duration   time.Duration
	Err        error
}

// AttemptHook observes every attempt, including retried ones.
type AttemptHook func(Attempt)
