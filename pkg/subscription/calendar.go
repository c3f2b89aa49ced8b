package subscription

import "time"

// AddMonths moves t by n calendar months, keeping the time of day. When the
// target month is shorter than t's day, the result is clamped to the last
// day of that month: Jan 31 + 1 month is Feb 28 (Feb 29 in leap years), not
// Mar 3 as time.AddDate would give.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()

	// Normalize to the first of the target month to find its length.
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := daysIn(first.Year(), first.Month())
	if d > last {
		d = last
	}

	hh, mm, ss := t.Clock()
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
