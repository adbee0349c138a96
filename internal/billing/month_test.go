package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthRefNext(t *testing.T) {
	assert.Equal(t, MonthRef{2025, time.February}, MonthRef{2025, time.January}.Next())
	assert.Equal(t, MonthRef{2026, time.January}, MonthRef{2025, time.December}.Next())
}

func TestMonthRefOrdering(t *testing.T) {
	jan := MonthRef{2025, time.January}
	dec24 := MonthRef{2024, time.December}

	assert.True(t, dec24.Before(jan))
	assert.True(t, jan.After(dec24))
	assert.False(t, jan.Before(jan))
	assert.False(t, jan.After(jan))
}

func TestMonthRefString(t *testing.T) {
	assert.Equal(t, "2025-03", MonthRef{2025, time.March}.String())
	assert.Equal(t, "2025-11", MonthRef{2025, time.November}.String())
}

func TestDueDateInClampsShortMonths(t *testing.T) {
	// April has 30 days
	due := DueDateIn(MonthRef{2025, time.April}, 31)
	assert.Equal(t, time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC), due)

	// February in a non-leap year
	due = DueDateIn(MonthRef{2025, time.February}, 30)
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), due)

	// February in a leap year
	due = DueDateIn(MonthRef{2024, time.February}, 31)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), due)

	// No clamping needed
	due = DueDateIn(MonthRef{2025, time.January}, 15)
	assert.Equal(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), due)
}

func TestMonthRefOf(t *testing.T) {
	ref := MonthRefOf(time.Date(2025, time.July, 19, 14, 30, 0, 0, time.UTC))
	assert.Equal(t, MonthRef{2025, time.July}, ref)
}
