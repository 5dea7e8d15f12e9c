package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthWindows(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	current, previous := MonthWindows(now)

	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), current.Start)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), current.End)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), previous.Start)
	assert.Equal(t, current.Start, previous.End)
}

func TestMonthWindowsAcrossYearBoundary(t *testing.T) {
	now := time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC)
	current, previous := MonthWindows(now)

	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), current.Start)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), previous.Start)
}

func TestMonthWindowsNormalizesToUTC(t *testing.T) {
	zone := time.FixedZone("UTC-5", -5*60*60)
	// 2025-03-31 22:00 at UTC-5 is already April in UTC.
	now := time.Date(2025, 3, 31, 22, 0, 0, 0, zone)
	current, _ := MonthWindows(now)

	assert.Equal(t, time.April, current.Start.Month())
}

func TestWindowContainsIsHalfOpen(t *testing.T) {
	current, _ := MonthWindows(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

	assert.True(t, current.Contains(current.Start))
	assert.True(t, current.Contains(current.End.Add(-time.Second)))
	assert.False(t, current.Contains(current.End))
	assert.False(t, current.Contains(current.Start.Add(-time.Nanosecond)))
}
