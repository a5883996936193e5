package models

import (
	"testing"
)

func TestHealthMetricTable(t *testing.T) {
	seen := map[HealthMetric]bool{}
	for _, info := range AllHealthMetrics() {
		if seen[info.HealthMetric] {
			t.Errorf("duplicate metric %s", info.HealthMetric)
		}
		seen[info.HealthMetric] = true

		if info.DisplayName == "" || info.Unit == "" {
			t.Errorf("%s is missing display name or unit", info.HealthMetric)
		}
		if !info.Mode.Valid() {
			t.Errorf("%s has invalid mode %q", info.HealthMetric, info.Mode)
		}
		if info.Group != "" && info.Category != CategoryNutrition {
			t.Errorf("%s has group %s outside nutrition", info.HealthMetric, info.Group)
		}
		if info.Group != "" && !isNutritionGroup(info.Group) {
			t.Errorf("%s has unknown group %s", info.HealthMetric, info.Group)
		}
		// a metric named like a group would make the encoding ambiguous
		if isNutritionGroup(info.Metric) {
			t.Errorf("metric %s collides with a group name", info.Metric)
		}
	}
}

func TestLookupHealthMetric(t *testing.T) {
	tests := []struct {
		metric HealthMetric
		unit   string
		mode   AggregationMode
		found  bool
	}{
		{HealthMetric{CategoryActivity, "steps"}, "steps", ModeSum, true},
		{HealthMetric{CategoryBody, "heartRate"}, "bpm", ModeMinMax, true},
		{HealthMetric{CategoryBody, "bodyWeight"}, "kg", ModeAverage, true},
		{HealthMetric{CategoryNutrition, "vitaminC"}, "mg", ModeSum, true},
		{HealthMetric{CategoryBody, "steps"}, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.metric.String(), func(t *testing.T) {
			info, ok := LookupHealthMetric(tt.metric)
			if ok != tt.found {
				t.Fatalf("LookupHealthMetric(%s) found = %v, want %v", tt.metric, ok, tt.found)
			}
			if info.Unit != tt.unit || info.Mode != tt.mode {
				t.Errorf("LookupHealthMetric(%s) = (%s, %s), want (%s, %s)", tt.metric, info.Unit, info.Mode, tt.unit, tt.mode)
			}
		})
	}
}

func TestParseHealthMetric(t *testing.T) {
	m, err := ParseHealthMetric("activity.steps")
	if err != nil {
		t.Fatalf("ParseHealthMetric: %v", err)
	}
	if m != (HealthMetric{CategoryActivity, "steps"}) {
		t.Errorf("ParseHealthMetric = %+v", m)
	}
	if m.String() != "activity.steps" {
		t.Errorf("String() = %s", m.String())
	}

	for _, bad := range []string{"steps", "activity.", "body.steps", ""} {
		if _, err := ParseHealthMetric(bad); err == nil {
			t.Errorf("ParseHealthMetric(%q) should fail", bad)
		}
	}
}
