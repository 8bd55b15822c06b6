package utils

import "time"

// Unix seconds are the storage unit for all DB timestamps.
func NowUnixSeconds() int64 { return time.Now().Unix() }

// BillingPeriodStart returns the UTC start of the calendar month containing t.
// Monthly usage counters are scoped to this boundary.
func BillingPeriodStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// SamePeriod reports whether two unix-second timestamps fall in the same
// billing month.
func SamePeriod(a, b int64) bool {
	return BillingPeriodStart(time.Unix(a, 0)).Equal(BillingPeriodStart(time.Unix(b, 0)))
}

func FromUnixSeconds(t int64) time.Time {
	if t <= 0 {
		return time.Time{}
	}
	return time.Unix(t, 0).UTC()
}

func FormatRFC3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
