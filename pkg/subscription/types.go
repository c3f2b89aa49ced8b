package subscription

import (
	"fmt"
	"strconv"
)

// Local row ids.
type (
	UserID         int64
	PlanID         int64
	SubscriptionID int64
)

func (id PlanID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParsePlanID parses a plan id from a form value.
func ParsePlanID(s string) (PlanID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: plan id %q", ErrInvalidArgument, s)
	}
	return PlanID(n), nil
}

// PreapprovalPlanID is the processor's id for a recurring plan created at
// checkout. It is the only key that ties a notification back to a local
// Subscription.
type PreapprovalPlanID string

func (id PreapprovalPlanID) String() string { return string(id) }

// PreapprovalID is the processor's id for a payer's enrolment in a plan.
type PreapprovalID string

func (id PreapprovalID) String() string { return string(id) }

// CurrencyBRL is the only currency plans are billed in.
const CurrencyBRL = "BRL"

// Money is an amount in minor units (centavos).
type Money struct {
	Amount   int64
	Currency string
}

// BRL returns an amount of cents in Brazilian reais.
func BRL(cents int64) Money { return Money{Amount: cents, Currency: CurrencyBRL} }

// Float returns the amount in major units.
func (m Money) Float() float64 { return float64(m.Amount) / 100 }

// String formats the amount as "29.90 BRL".
func (m Money) String() string {
	sign := ""
	amount := m.Amount
	if amount < 0 {
		sign, amount = "-", -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, m.Currency)
}
