// Package aggregate turns raw dated observations into day-bucketed, gap-filled
// point sequences ready for charting. Everything here is pure: no I/O, no
// shared state, and the same input always yields the same output.
package aggregate

import (
	"math"
	"time"

	"github.com/grey280/trendlines/internal/models"
)

// Point is one chart point. Ranged points (minMax mode) carry ValueMin and
// ValueMax, with Value set to their midpoint.
type Point struct {
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
	ValueMin float64   `json:"value_min"`
	ValueMax float64   `json:"value_max"`
	Ranged   bool      `json:"ranged"`
}

// ScalarPoint builds a single-value point
func ScalarPoint(date time.Time, value float64) Point {
	return Point{Date: date, Value: value, ValueMin: value, ValueMax: value}
}

// RangedPoint builds a (min, max) point. Arguments are swapped if given out of order.
func RangedPoint(date time.Time, lo, hi float64) Point {
	if hi < lo {
		lo, hi = hi, lo
	}
	return Point{Date: date, Value: (lo + hi) / 2, ValueMin: lo, ValueMax: hi, Ranged: true}
}

// Low is the bottom of the point on the y axis
func (p Point) Low() float64 {
	if p.Ranged {
		return p.ValueMin
	}
	return p.Value
}

// High is the top of the point on the y axis
func (p Point) High() float64 {
	if p.Ranged {
		return p.ValueMax
	}
	return p.Value
}

// Midpoint returns (min+max)/2 for ranged points and the value otherwise
func (p Point) Midpoint() float64 {
	if p.Ranged {
		return (p.ValueMin + p.ValueMax) / 2
	}
	return p.Value
}

// Result is the output of Summarize
type Result struct {
	Points []Point `json:"points"`
	// Skipped counts malformed entries (non-finite value or zero date) that were ignored
	Skipped int `json:"skipped"`
}

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{y, m, d}
}

type bucket struct {
	count    int
	sum      float64
	min, max float64
}

func (b *bucket) add(v float64) {
	if b.count == 0 {
		b.min, b.max = v, v
	} else {
		b.min = math.Min(b.min, v)
		b.max = math.Max(b.max, v)
	}
	b.count++
	b.sum += v
}

func (b *bucket) point(day time.Time, mode models.AggregationMode) Point {
	switch mode {
	case models.ModeCount:
		return ScalarPoint(day, float64(b.count))
	case models.ModeSum:
		return ScalarPoint(day, b.sum)
	case models.ModeAverage:
		return ScalarPoint(day, b.sum/float64(b.count))
	default:
		return RangedPoint(day, b.min, b.max)
	}
}

// Aggregate filters entries to rng, buckets them by calendar day, reduces each
// bucket according to mode and fills every day of the range that has no
// entries with a zero point. The result has exactly one point per day in rng,
// in ascending date order.
func Aggregate(entries []models.Entry, mode models.AggregationMode, rng TimeRange) []Point {
	return Summarize(entries, mode, rng).Points
}

// Summarize is Aggregate that also reports how many malformed entries were skipped.
func Summarize(entries []models.Entry, mode models.AggregationMode, rng TimeRange) Result {
	rng = rng.resolve(time.Now())
	loc := rng.Start.Location()
	first := StartOfDay(rng.Start)
	last := StartOfDay(rng.End.In(loc))

	var res Result
	buckets := make(map[dayKey]*bucket)
	for _, e := range entries {
		if e.Date.IsZero() || math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
			res.Skipped++
			continue
		}
		if e.Date.Before(rng.Start) || e.Date.After(rng.End) {
			continue
		}
		key := keyOf(e.Date.In(loc))
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.add(e.Value)
	}

	res.Points = make([]Point, 0, Days(rng))
	for day := first; !day.After(last); day = NextDay(day) {
		if b, ok := buckets[keyOf(day)]; ok {
			res.Points = append(res.Points, b.point(day, mode))
			continue
		}
		if mode.Ranged() {
			res.Points = append(res.Points, RangedPoint(day, 0, 0))
		} else {
			res.Points = append(res.Points, ScalarPoint(day, 0))
		}
	}
	return res
}

// ValueRange returns the y-axis bounds of points. The zero baseline is always
// included, so min <= 0 <= max. Empty input yields (0, 0).
func ValueRange(points []Point) (min, max float64) {
	for _, p := range points {
		if lo := p.Low(); lo < min {
			min = lo
		}
		if hi := p.High(); hi > max {
			max = hi
		}
	}
	return min, max
}
