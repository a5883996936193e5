package aggregate

import (
	"hash/fnv"
	"math"
	"time"

	"github.com/grey280/trendlines/internal/models"
)

const demoPeak = 100.0

// DemoPoints returns placeholder data for a chart that has no source bound
// yet: one point per day of rng with values between 20 and 100. Values depend only on
// the calendar day, so repeated calls draw the same chart.
func DemoPoints(mode models.AggregationMode, rng TimeRange) []Point {
	rng = rng.resolve(time.Now())
	var points []Point
	last := StartOfDay(rng.End.In(rng.Start.Location()))
	for day := StartOfDay(rng.Start); !day.After(last); day = NextDay(day) {
		v := demoValue(day.Format("2006-01-02"))
		if mode.Ranged() {
			spread := v * 0.25
			points = append(points, RangedPoint(day, v-spread, v+spread))
		} else {
			points = append(points, ScalarPoint(day, v))
		}
	}
	return points
}

func demoValue(day string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(day))
	sum := h.Sum32()
	wave := (math.Sin(float64(sum%628)/100) + 1) / 2
	return math.Round((0.2+0.8*wave)*demoPeak*10) / 10
}
