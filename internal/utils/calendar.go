package utils

import "time"

const dateLayout = "2006-01-02"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share at least one instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DateOf returns the calendar date of t as seen in loc, normalized to UTC midnight.
// Every date-only value in the engine uses this form so dates compare with ==.
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfDate returns the first instant of a UTC-midnight date in loc.
func StartOfDate(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DateRangeInterval converts an inclusive date range into the half-open
// instant interval [first midnight, midnight after last) in loc.
func DateRangeInterval(startDate, endDate time.Time, loc *time.Location) (time.Time, time.Time) {
	return StartOfDate(startDate, loc), StartOfDate(endDate, loc).AddDate(0, 0, 1)
}

// DateWithin reports whether date lies in the inclusive range [from, to].
func DateWithin(date, from, to time.Time) bool {
	return !date.Before(from) && !date.After(to)
}

// BillingDays is the number of whole billing units in [start, end),
// rounding any partial unit up.
func BillingDays(start, end time.Time, unit time.Duration) int {
	elapsed := end.Sub(start)
	if elapsed <= 0 || unit <= 0 {
		return 0
	}
	days := int(elapsed / unit)
	if elapsed%unit != 0 {
		days++
	}
	return days
}

// BillingDates lists the calendar date each billing unit starts on.
func BillingDates(start, end time.Time, unit time.Duration, loc *time.Location) []time.Time {
	n := BillingDays(start, end, unit)
	dates := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, DateOf(start.Add(time.Duration(i)*unit), loc))
	}
	return dates
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
