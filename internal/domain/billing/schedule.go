package billing

import (
	"time"

	"github.com/kesher-io/kesher/internal/shared/biztime"
)

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// AddMonthsClamped moves t by n calendar months and lands on anchorDay,
// or on the last day of the target month when it is shorter.
// Jan 31 +1 -> Feb 28 (29 in leap years); with the same anchor, Feb 28 +1 -> Mar 31.
// Calendar math happens in the business timezone; the result is UTC.
func AddMonthsClamped(t time.Time, n int, anchorDay int) time.Time {
	loc := biztime.Location()
	b := t.In(loc)

	first := time.Date(b.Year(), b.Month()+time.Month(n), 1, b.Hour(), b.Minute(), b.Second(), 0, loc)
	day := anchorDay
	if day < 1 {
		day = b.Day()
	}
	if last := daysIn(first.Year(), first.Month(), loc); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, b.Hour(), b.Minute(), b.Second(), 0, loc).UTC()
}

// NextDate returns the charge date following from.
func NextDate(from time.Time, freq Frequency, anchorDay int) time.Time {
	if m := freq.months(); m > 0 {
		return AddMonthsClamped(from, m, anchorDay)
	}
	return from.In(biztime.Location()).AddDate(0, 0, 7).UTC()
}

// AnchorDay is the business-timezone day of month of t.
func AnchorDay(t time.Time) int {
	return t.In(biztime.Location()).Day()
}

// ScheduleDates lists count dates starting at start.
func ScheduleDates(start time.Time, freq Frequency, count int) []time.Time {
	if count <= 0 {
		return nil
	}
	anchor := AnchorDay(start)
	dates := make([]time.Time, count)
	dates[0] = start.UTC()
	for i := 1; i < count; i++ {
		dates[i] = NextDate(dates[i-1], freq, anchor)
	}
	return dates
}
