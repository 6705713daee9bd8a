// Package biztime computes calendar boundaries in the business timezone.
// Timestamps are stored in UTC; the business zone is only used to decide where
// a day or a month starts.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const DefaultTimezone = "Asia/Jerusalem"

var (
	mu  sync.RWMutex
	loc *time.Location
)

// Init sets the business timezone. An empty name selects DefaultTimezone.
func Init(tz string) error {
	if tz == "" {
		tz = DefaultTimezone
	}
	l, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", tz, err)
	}
	mu.Lock()
	loc = l
	mu.Unlock()
	return nil
}

// Location returns the business timezone, loading the default on first use.
func Location() *time.Location {
	mu.RLock()
	l := loc
	mu.RUnlock()
	if l != nil {
		return l
	}
	if err := Init(""); err != nil {
		panic(err)
	}
	return Location()
}

func NowUTC() time.Time {
	return time.Now().UTC()
}

// StartOfMonthUTC returns midnight of the first day of the business month containing t.
func StartOfMonthUTC(t time.Time) time.Time {
	b := t.In(Location())
	return time.Date(b.Year(), b.Month(), 1, 0, 0, 0, 0, Location()).UTC()
}

// AddMonthsUTC returns the start of the business month n months after the one containing t.
func AddMonthsUTC(t time.Time, n int) time.Time {
	b := t.In(Location())
	return time.Date(b.Year(), b.Month()+time.Month(n), 1, 0, 0, 0, 0, Location()).UTC()
}

// MonthKey formats t as YYYY-MM in the business timezone.
func MonthKey(t time.Time) string {
	return t.In(Location()).Format("2006-01")
}

// ParseDate parses YYYY-MM-DD as business-timezone midnight and returns it in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t.UTC(), nil
}

func Format(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}
