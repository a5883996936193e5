package models

import (
	"fmt"
	"strings"
)

// AggregationMode determines how same-day entries combine into one chart point
type AggregationMode string

const (
	ModeCount   AggregationMode = "count"
	ModeSum     AggregationMode = "sum"
	ModeAverage AggregationMode = "average"
	ModeMinMax  AggregationMode = "minMax"
)

// AllAggregationModes returns all valid aggregation modes
func AllAggregationModes() []AggregationMode {
	return []AggregationMode{ModeCount, ModeSum, ModeAverage, ModeMinMax}
}

// Valid reports whether m is one of the known modes.
func (m AggregationMode) Valid() bool {
	switch m {
	case ModeCount, ModeSum, ModeAverage, ModeMinMax:
		return true
	}
	return false
}

// Ranged returns true if points produced in this mode carry a (min, max) pair
func (m AggregationMode) Ranged() bool {
	return m == ModeMinMax
}

// ParseAggregationMode maps user input to a mode. Matching is case-insensitive
// and accepts the short forms used in the CLI ("avg", "minmax", "range").
func ParseAggregationMode(s string) (AggregationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "count":
		return ModeCount, nil
	case "sum", "total":
		return ModeSum, nil
	case "average", "avg", "mean":
		return ModeAverage, nil
	case "minmax", "min_max", "range":
		return ModeMinMax, nil
	}
	return "", fmt.Errorf("unknown aggregation mode %q", s)
}

// ChartType is how a data source is drawn
type ChartType string

const (
	ChartBar         ChartType = "bar"
	ChartFloatingBar ChartType = "floatingBar"
	ChartLine        ChartType = "line"
)

func (c ChartType) Valid() bool {
	return c == ChartBar || c == ChartFloatingBar || c == ChartLine
}

// Title returns the display name of the chart type
func (c ChartType) Title() string {
	switch c {
	case ChartBar:
		return "Bar"
	case ChartFloatingBar:
		return "Floating Bar"
	case ChartLine:
		return "Line"
	default:
		return string(c)
	}
}
