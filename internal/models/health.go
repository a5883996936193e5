package models

import (
	"fmt"
	"strings"
	"time"
)

// HealthCategory is the top level of the health metric taxonomy
type HealthCategory string

const (
	CategoryBody      HealthCategory = "body"
	CategoryActivity  HealthCategory = "activity"
	CategoryNutrition HealthCategory = "nutrition"
)

// Nutrition sub-groups. Metrics in a group are encoded with an extra level
// (tertiary = group, quaternary = metric) in the persisted source key.
const (
	GroupVitamin       = "vitamin"
	GroupMineral       = "mineral"
	GroupMicronutrient = "micronutrient"
)

// HealthMetric identifies one platform metric as a (category, metric) pair.
type HealthMetric struct {
	Category HealthCategory `json:"category"`
	Metric   string         `json:"metric"`
}

func (m HealthMetric) String() string {
	return string(m.Category) + "." + m.Metric
}

// HealthMetricInfo describes a metric for display and aggregation
type HealthMetricInfo struct {
	HealthMetric
	Group       string          `json:"group,omitempty"`
	DisplayName string          `json:"display_name"`
	Unit        string          `json:"unit"`
	Mode        AggregationMode `json:"mode"`
}

// healthMetrics is the metric taxonomy. Order is the display order.
var healthMetrics = []HealthMetricInfo{
	{HealthMetric{CategoryBody, "restingHeartRate"}, "", "Resting Heart Rate", "bpm", ModeAverage},
	{HealthMetric{CategoryBody, "heartRateVariability"}, "", "Heart Rate Variability", "ms", ModeAverage},
	{HealthMetric{CategoryBody, "heartRate"}, "", "Heart Rate", "bpm", ModeMinMax},
	{HealthMetric{CategoryBody, "bloodPressure"}, "", "Blood Pressure", "mmHg", ModeMinMax},
	{HealthMetric{CategoryBody, "bodyWeight"}, "", "Body Weight", "kg", ModeAverage},
	{HealthMetric{CategoryBody, "leanBodyMass"}, "", "Lean Body Mass", "kg", ModeAverage},
	{HealthMetric{CategoryBody, "bodyFatPercentage"}, "", "Body Fat Percentage", "%", ModeAverage},

	{HealthMetric{CategoryActivity, "activeEnergy"}, "", "Active Energy", "kcal", ModeSum},
	{HealthMetric{CategoryActivity, "walkRunDistance"}, "", "Walking + Running Distance", "km", ModeSum},
	{HealthMetric{CategoryActivity, "swimDistance"}, "", "Swimming Distance", "m", ModeSum},
	{HealthMetric{CategoryActivity, "cyclingDistance"}, "", "Cycling Distance", "km", ModeSum},
	{HealthMetric{CategoryActivity, "flightsClimbed"}, "", "Flights Climbed", "flights", ModeSum},
	{HealthMetric{CategoryActivity, "steps"}, "", "Steps", "steps", ModeSum},
	{HealthMetric{CategoryActivity, "standHours"}, "", "Stand Hours", "hr", ModeSum},
	{HealthMetric{CategoryActivity, "mindfulMinutes"}, "", "Mindful Minutes", "min", ModeSum},
	{HealthMetric{CategoryActivity, "sleep"}, "", "Sleep", "hr", ModeSum},
	{HealthMetric{CategoryActivity, "workoutTime"}, "", "Workout Time", "min", ModeSum},

	{HealthMetric{CategoryNutrition, "calories"}, "", "Calories", "kcal", ModeSum},
	{HealthMetric{CategoryNutrition, "carbohydrates"}, "", "Carbohydrates", "g", ModeSum},
	{HealthMetric{CategoryNutrition, "fat"}, "", "Fat", "g", ModeSum},
	{HealthMetric{CategoryNutrition, "protein"}, "", "Protein", "g", ModeSum},
	{HealthMetric{CategoryNutrition, "water"}, "", "Water", "mL", ModeSum},
	{HealthMetric{CategoryNutrition, "caffeine"}, "", "Caffeine", "mg", ModeSum},
	{HealthMetric{CategoryNutrition, "sugar"}, "", "Sugar", "g", ModeSum},
	{HealthMetric{CategoryNutrition, "vitaminA"}, GroupVitamin, "Vitamin A", "mcg", ModeSum},
	{HealthMetric{CategoryNutrition, "vitaminC"}, GroupVitamin, "Vitamin C", "mg", ModeSum},
	{HealthMetric{CategoryNutrition, "vitaminD"}, GroupVitamin, "Vitamin D", "mcg", ModeSum},
	{HealthMetric{CategoryNutrition, "vitaminB12"}, GroupVitamin, "Vitamin B12", "mcg", ModeSum},
	{HealthMetric{CategoryNutrition, "calcium"}, GroupMineral, "Calcium", "mg", ModeSum},
	{HealthMetric{CategoryNutrition, "iron"}, GroupMineral, "Iron", "mg", ModeSum},
	{HealthMetric{CategoryNutrition, "magnesium"}, GroupMineral, "Magnesium", "mg", ModeSum},
	{HealthMetric{CategoryNutrition, "potassium"}, GroupMineral, "Potassium", "mg", ModeSum},
	{HealthMetric{CategoryNutrition, "sodium"}, GroupMineral, "Sodium", "mg", ModeSum},
	{HealthMetric{CategoryNutrition, "fiber"}, GroupMicronutrient, "Fiber", "g", ModeSum},
	{HealthMetric{CategoryNutrition, "cholesterol"}, GroupMicronutrient, "Cholesterol", "mg", ModeSum},
}

var healthMetricIndex = func() map[HealthMetric]int {
	idx := make(map[HealthMetric]int, len(healthMetrics))
	for i, info := range healthMetrics {
		idx[info.HealthMetric] = i
	}
	return idx
}()

// AllHealthMetrics returns a copy of the metric taxonomy in display order
func AllHealthMetrics() []HealthMetricInfo {
	out := make([]HealthMetricInfo, len(healthMetrics))
	copy(out, healthMetrics)
	return out
}

// LookupHealthMetric returns the table entry for m.
func LookupHealthMetric(m HealthMetric) (HealthMetricInfo, bool) {
	i, ok := healthMetricIndex[m]
	if !ok {
		return HealthMetricInfo{}, false
	}
	return healthMetrics[i], true
}

// Valid reports whether m is in the taxonomy
func (m HealthMetric) Valid() bool {
	_, ok := healthMetricIndex[m]
	return ok
}

// ParseHealthMetric parses the "category.metric" form produced by String.
func ParseHealthMetric(s string) (HealthMetric, error) {
	category, metric, ok := strings.Cut(s, ".")
	if !ok {
		return HealthMetric{}, fmt.Errorf("health metric %q must be category.metric", s)
	}
	m := HealthMetric{Category: HealthCategory(category), Metric: metric}
	if !m.Valid() {
		return HealthMetric{}, fmt.Errorf("unknown health metric %q", s)
	}
	return m, nil
}

func isNutritionGroup(s string) bool {
	return s == GroupVitamin || s == GroupMineral || s == GroupMicronutrient
}

// HealthSample is one already-converted reading imported from the health platform
type HealthSample struct {
	ID       uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Category HealthCategory `json:"category" gorm:"not null;index:idx_sample_metric_date"`
	Metric   string         `json:"metric" gorm:"not null;index:idx_sample_metric_date"`
	Date     time.Time      `json:"date" gorm:"not null;index:idx_sample_metric_date"`
	Value    float64        `json:"value"`
}

type HealthSampleInput struct {
	Date  time.Time `json:"date" binding:"required"`
	Value *float64  `json:"value" binding:"required"`
}

type AddHealthSamplesRequest struct {
	Category HealthCategory      `json:"category" binding:"required"`
	Metric   string              `json:"metric" binding:"required"`
	Samples  []HealthSampleInput `json:"samples" binding:"required,dive"`
}
