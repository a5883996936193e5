package aggregate

import (
	"reflect"
	"testing"
	"time"

	"github.com/grey280/trendlines/internal/models"
)

func TestLastDays(t *testing.T) {
	now := time.Date(2024, 5, 20, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		n         int
		wantStart time.Time
	}{
		{30, time.Date(2024, 4, 21, 0, 0, 0, 0, time.UTC)},
		{7, time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC)},
		{1, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)},
		{0, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		rng := LastDays(tt.n, now)
		if !rng.Start.Equal(tt.wantStart) {
			t.Errorf("LastDays(%d).Start = %v, want %v", tt.n, rng.Start, tt.wantStart)
		}
		if !rng.End.Equal(now) {
			t.Errorf("LastDays(%d).End = %v, want %v", tt.n, rng.End, now)
		}
		want := tt.n
		if want < 1 {
			want = 1
		}
		if got := Days(rng); got != want {
			t.Errorf("Days(LastDays(%d)) = %d, want %d", tt.n, got, want)
		}
	}
}

func TestZeroEndMeansNow(t *testing.T) {
	start := StartOfDay(time.Now()).AddDate(0, 0, -2)
	rng := TimeRange{Start: start}

	if got := Days(rng); got != 3 {
		t.Errorf("Days with open end = %d, want 3", got)
	}
	if got := len(Aggregate(nil, models.ModeSum, rng)); got != 3 {
		t.Errorf("Aggregate with open end returned %d points, want 3", got)
	}
	if got := Days(Since(start)); got != 3 {
		t.Errorf("Days(Since) = %d, want 3", got)
	}
}

func TestDemoPointsDeterministic(t *testing.T) {
	rng := TimeRange{Start: day(1), End: at(10, 12)}

	first := DemoPoints(models.ModeSum, rng)
	second := DemoPoints(models.ModeSum, rng)
	if len(first) != 10 {
		t.Fatalf("expected 10 demo points, got %d", len(first))
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("demo points differ between calls")
	}
	for _, p := range first {
		if p.Value < 20 || p.Value > 100 {
			t.Errorf("demo value %f out of [20, 100]", p.Value)
		}
	}

	ranged := DemoPoints(models.ModeMinMax, rng)
	for _, p := range ranged {
		if !p.Ranged || p.ValueMin > p.ValueMax {
			t.Errorf("demo ranged point %+v is not a valid range", p)
		}
	}
}
