package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBillingPeriodStart(t *testing.T) {
	in := time.Date(2026, time.August, 29, 15, 4, 5, 0, time.UTC)
	want := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, BillingPeriodStart(in))

	// Local times are normalised to UTC before bucketing.
	loc := time.FixedZone("UTC+7", 7*3600)
	early := time.Date(2026, time.September, 1, 3, 0, 0, 0, loc) // still Aug 31 in UTC
	assert.Equal(t, want, BillingPeriodStart(early))
}

func TestSamePeriod(t *testing.T) {
	aug1 := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC).Unix()
	aug31 := time.Date(2026, time.August, 31, 23, 59, 59, 0, time.UTC).Unix()
	sep1 := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC).Unix()

	assert.True(t, SamePeriod(aug1, aug31))
	assert.False(t, SamePeriod(aug31, sep1))
}

func TestFromUnixSeconds_Zero(t *testing.T) {
	assert.True(t, FromUnixSeconds(0).IsZero())
	assert.True(t, FromUnixSeconds(-5).IsZero())
	assert.Equal(t, 2025, FromUnixSeconds(1756684800).Year())
}
