package aggregate

import (
	"time"
)

// DefaultWindowDays is the chart window used when a caller does not ask for one
const DefaultWindowDays = 30

// TimeRange bounds a query. A zero End means "now" at the time of the call.
// Days are calendar days in Start's location.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end,omitempty"`
}

// Since returns a range from start to the current time
func Since(start time.Time) TimeRange {
	return TimeRange{Start: start, End: time.Now()}
}

// LastDays returns the range covering the n calendar days ending on now's day,
// starting at midnight so the first day is complete.
func LastDays(n int, now time.Time) TimeRange {
	if n < 1 {
		n = 1
	}
	return TimeRange{Start: StartOfDay(now).AddDate(0, 0, -(n - 1)), End: now}
}

func (r TimeRange) resolve(now time.Time) TimeRange {
	if r.End.IsZero() {
		r.End = now
	}
	return r
}

// Days returns the number of calendar days in the inclusive range, or 0 when
// End falls on a day before Start.
func Days(r TimeRange) int {
	r = r.resolve(time.Now())
	first := StartOfDay(r.Start)
	last := StartOfDay(r.End.In(r.Start.Location()))
	n := 0
	for day := first; !day.After(last); day = NextDay(day) {
		n++
	}
	return n
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextDay returns midnight of the following calendar day. Uses AddDate so days
// that are 23 or 25 hours long across DST changes still step by one.
func NextDay(t time.Time) time.Time {
	next := t.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, t.Location())
}

