package billing

import (
	"fmt"
	"time"
)

// MonthRef identifies one billing month. Keeping year and month as separate
// fields gives chronological ordering without string tricks and maps onto the
// (reference_year, reference_month) columns on payments.
type MonthRef struct {
	Year  int
	Month time.Month
}

// MonthRefOf returns the billing month containing t.
func MonthRefOf(t time.Time) MonthRef {
	return MonthRef{Year: t.Year(), Month: t.Month()}
}

// Next returns the following month, rolling the year over December.
func (m MonthRef) Next() MonthRef {
	if m.Month == time.December {
		return MonthRef{Year: m.Year + 1, Month: time.January}
	}
	return MonthRef{Year: m.Year, Month: m.Month + 1}
}

// FirstDay returns midnight UTC on the first day of the month.
func (m MonthRef) FirstDay() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns midnight UTC on the last day of the month. Day zero of the
// following month normalizes to it, leap years included.
func (m MonthRef) LastDay() time.Time {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC)
}

// Before reports whether m is chronologically before other.
func (m MonthRef) Before(other MonthRef) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// After reports whether m is chronologically after other.
func (m MonthRef) After(other MonthRef) bool {
	return other.Before(m)
}

// String renders the month as "AAAA-MM".
func (m MonthRef) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// DueDateIn places dueDay inside the month, clamping to the last day when the
// month is shorter (due day 31 in April falls on the 30th, in February on the
// 28th or 29th).
func DueDateIn(m MonthRef, dueDay int) time.Time {
	last := m.LastDay()
	if dueDay > last.Day() {
		return last
	}
	return time.Date(m.Year, m.Month, dueDay, 0, 0, 0, 0, time.UTC)
}
