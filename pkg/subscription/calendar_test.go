package subscription_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mpsubs/pkg/subscription"
)

func TestAddMonths(t *testing.T) {
	t.Parallel()

	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 14, 30, 15, 500, time.UTC)
	}

	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"same day next month", date(2024, time.March, 15), 1, date(2024, time.April, 15)},
		{"jan 31 to feb 29 in leap year", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"jan 31 to feb 28 in common year", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"mar 31 to apr 30", date(2024, time.March, 31), 1, date(2024, time.April, 30)},
		{"crosses year", date(2024, time.December, 31), 2, date(2025, time.February, 28)},
		{"quarterly", date(2024, time.November, 30), 3, date(2025, time.February, 28)},
		{"yearly from leap day", date(2024, time.February, 29), 12, date(2025, time.February, 28)},
		{"zero months", date(2024, time.May, 31), 0, date(2024, time.May, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, subscription.AddMonths(tt.start, tt.months))
		})
	}
}

func TestAddMonthsKeepsLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("BRT", -3*60*60)
	start := time.Date(2024, time.January, 31, 23, 0, 0, 0, loc)
	got := subscription.AddMonths(start, 1)

	assert.Equal(t, loc, got.Location())
	assert.Equal(t, time.Date(2024, time.February, 29, 23, 0, 0, 0, loc), got)
}

func TestSubscriptionActivate(t *testing.T) {
	t.Parallel()

	sub := &subscription.Subscription{PreapprovalPlanID: "PLAN123"}
	assert.True(t, sub.IsPending())
	assert.False(t, sub.ActivatedBy("SUB999"))

	now := time.Date(2024, time.January, 31, 10, 0, 0, 0, time.UTC)
	sub.Activate("SUB999", now, 1)

	assert.False(t, sub.IsPending())
	assert.True(t, sub.Active)
	assert.True(t, sub.ActivatedBy("SUB999"))
	assert.False(t, sub.ActivatedBy("SUB000"))
	assert.Equal(t, now, *sub.StartDate)
	assert.Equal(t, time.Date(2024, time.February, 29, 10, 0, 0, 0, time.UTC), *sub.EndDate)
}

func TestMoney(t *testing.T) {
	t.Parallel()

	m := subscription.BRL(2990)
	assert.InDelta(t, 29.90, m.Float(), 1e-9)
	assert.Equal(t, "29.90 BRL", m.String())
	assert.Equal(t, "-0.05 BRL", subscription.BRL(-5).String())
}

func TestParsePlanID(t *testing.T) {
	t.Parallel()

	id, err := subscription.ParsePlanID("42")
	assert.NoError(t, err)
	assert.Equal(t, subscription.PlanID(42), id)
	assert.Equal(t, "42", id.String())

	for _, bad := range []string{"", "abc", "0", "-1"} {
		_, err := subscription.ParsePlanID(bad)
		assert.ErrorIs(t, err, subscription.ErrInvalidArgument, bad)
	}
}
