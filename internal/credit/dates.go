package credit

import "time"

// AddMonths adds calendar months to a date, clamping the day to the end of the
// target month (Jan 31 + 1 month is Feb 28, or Feb 29 in a leap year).
// The result is midnight in t's location.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(firstOfTarget); d > last {
		d = last
	}
	ty, tm, _ := firstOfTarget.Date()
	return time.Date(ty, tm, d, 0, 0, 0, 0, t.Location())
}

// DateOnly truncates t to midnight in its location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
