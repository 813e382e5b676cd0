// Package businessday computes the business-calendar anchors for report
// date-range defaults.
package businessday

import "time"

// PreviousBusinessDay returns the business day before the given date.
// Weekend-aware only; no holiday calendar is consulted.
func PreviousBusinessDay(date time.Time) time.Time {
	switch date.Weekday() {
	case time.Sunday:
		return date.AddDate(0, 0, -2)
	case time.Monday:
		return date.AddDate(0, 0, -3)
	default:
		// Tuesday through Saturday roll back one calendar day.
		return date.AddDate(0, 0, -1)
	}
}

// QueryStartDate returns the default report window start for a reference
// date: midnight of the previous business day in loc. On the first weekday
// strictly after January 1 it instead looks back five calendar days, since
// the plain business-day walk under-covers the year-end holiday gap.
func QueryStartDate(reference time.Time, loc *time.Location) time.Time {
	ref := reference.In(loc)
	refDate := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)

	var start time.Time
	if isFirstBusinessDayAfterNewYear(refDate) {
		start = refDate.AddDate(0, 0, -5)
	} else {
		start = PreviousBusinessDay(refDate)
	}
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
}

// isFirstBusinessDayAfterNewYear reports whether date is the first weekday
// strictly after January 1 of its year. January 1 itself never qualifies.
func isFirstBusinessDayAfterNewYear(date time.Time) bool {
	if date.Month() != time.January || date.Day() > 7 {
		return false
	}
	first := time.Date(date.Year(), time.January, 2, 0, 0, 0, 0, date.Location())
	for first.Weekday() == time.Saturday || first.Weekday() == time.Sunday {
		first = first.AddDate(0, 0, 1)
	}
	return date.Equal(first)
}
