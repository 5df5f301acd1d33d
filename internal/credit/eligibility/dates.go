// internal/credit/eligibility/dates.go
package eligibility

import (
	"time"

	"cloud.google.com/go/civil"
)

// AddMonths advances d by months, keeping the day of month. When the target
// month is too short the day is pinned to its last day and clamped is true.
func AddMonths(d civil.Date, months int) (result civil.Date, clamped bool) {
	total := int(d.Month) - 1 + months
	year := d.Year + floorDiv(total, 12)
	month := time.Month(floorMod(total, 12) + 1)

	day := d.Day
	if last := daysIn(year, month); day > last {
		day = last
		clamped = true
	}

	return civil.Date{Year: year, Month: month, Day: day}, clamped
}

// Today returns the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.UTC
	}
	return civil.DateOf(now.In(loc))
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
