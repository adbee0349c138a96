package billing

import "time"

// Clock supplies the current date to the scheduling engine. Status derivation
// compares due dates against "today", so tests inject a fixed clock instead of
// the wall clock.
type Clock interface {
	Today() time.Time
}

// SystemClock reads the wall clock, truncated to a UTC date.
type SystemClock struct{}

func (SystemClock) Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// FixedClock always reports the same date.
type FixedClock struct {
	Date time.Time
}

func (c FixedClock) Today() time.Time {
	return c.Date
}
