package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// SourceKind is the tag of a SourceKey
type SourceKind string

const (
	SourceEmpty   SourceKind = "empty"
	SourceEntries SourceKind = "entries"
	SourceHealth  SourceKind = "health"
)

// SourceKey identifies where a chart's points come from. It is a closed
// tagged union: only the payload fields of Kind are set, the rest stay zero,
// so two keys are equal with == exactly when they select the same data.
type SourceKey struct {
	Kind     SourceKind
	SeriesID uint
	Mode     AggregationMode
	Metric   HealthMetric
}

// EmptySource selects demo data for a chart with no bound series
func EmptySource() SourceKey {
	return SourceKey{Kind: SourceEmpty}
}

// SeriesSource selects a custom series aggregated with mode
func SeriesSource(seriesID uint, mode AggregationMode) SourceKey {
	return SourceKey{Kind: SourceEntries, SeriesID: seriesID, Mode: mode}
}

// HealthSource selects a health platform metric
func HealthSource(metric HealthMetric) SourceKey {
	return SourceKey{Kind: SourceHealth, Metric: metric}
}

var ErrInvalidSourceKey = errors.New("invalid source key")

// Validate checks that the payload matches the tag
func (k SourceKey) Validate() error {
	switch k.Kind {
	case SourceEmpty:
		if k != EmptySource() {
			return fmt.Errorf("%w: empty source carries a payload", ErrInvalidSourceKey)
		}
	case SourceEntries:
		if k.SeriesID == 0 {
			return fmt.Errorf("%w: series id is required", ErrInvalidSourceKey)
		}
		if !k.Mode.Valid() {
			return fmt.Errorf("%w: unknown mode %q", ErrInvalidSourceKey, k.Mode)
		}
		if k.Metric != (HealthMetric{}) {
			return fmt.Errorf("%w: series source carries a health metric", ErrInvalidSourceKey)
		}
	case SourceHealth:
		if !k.Metric.Valid() {
			return fmt.Errorf("%w: unknown health metric %q", ErrInvalidSourceKey, k.Metric)
		}
		if k.SeriesID != 0 || k.Mode != "" {
			return fmt.Errorf("%w: health source carries series fields", ErrInvalidSourceKey)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSourceKey, k.Kind)
	}
	return nil
}

func (k SourceKey) String() string {
	switch k.Kind {
	case SourceEntries:
		return fmt.Sprintf("entries:%d:%s", k.SeriesID, k.Mode)
	case SourceHealth:
		return "health:" + k.Metric.String()
	default:
		return string(k.Kind)
	}
}

// encodedSourceKey is the persisted shape. Secondary is a number for entries
// sources and a category string for health sources.
type encodedSourceKey struct {
	Primary    SourceKind      `json:"primary"`
	Secondary  json.RawMessage `json:"secondary,omitempty"`
	Tertiary   string          `json:"tertiary,omitempty"`
	Quaternary string          `json:"quaternary,omitempty"`
}

func (k SourceKey) MarshalJSON() ([]byte, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}

	enc := encodedSourceKey{Primary: k.Kind}
	switch k.Kind {
	case SourceEntries:
		enc.Secondary = json.RawMessage(strconv.FormatUint(uint64(k.SeriesID), 10))
		enc.Tertiary = string(k.Mode)
	case SourceHealth:
		info, _ := LookupHealthMetric(k.Metric)
		category, err := json.Marshal(k.Metric.Category)
		if err != nil {
			return nil, err
		}
		enc.Secondary = category
		if info.Group != "" {
			enc.Tertiary = info.Group
			enc.Quaternary = k.Metric.Metric
		} else {
			enc.Tertiary = k.Metric.Metric
		}
	}
	return json.Marshal(enc)
}

func (k *SourceKey) UnmarshalJSON(data []byte) error {
	var enc encodedSourceKey
	if err := json.Unmarshal(data, &enc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSourceKey, err)
	}

	var key SourceKey
	switch enc.Primary {
	case SourceEmpty:
		key = EmptySource()
	case SourceEntries:
		if len(enc.Secondary) == 0 {
			return fmt.Errorf("%w: entries source without series id", ErrInvalidSourceKey)
		}
		var seriesID uint
		if err := json.Unmarshal(enc.Secondary, &seriesID); err != nil {
			return fmt.Errorf("%w: series id: %v", ErrInvalidSourceKey, err)
		}
		key = SeriesSource(seriesID, AggregationMode(enc.Tertiary))
	case SourceHealth:
		if len(enc.Secondary) == 0 {
			return fmt.Errorf("%w: health source without category", ErrInvalidSourceKey)
		}
		var category HealthCategory
		if err := json.Unmarshal(enc.Secondary, &category); err != nil {
			return fmt.Errorf("%w: category: %v", ErrInvalidSourceKey, err)
		}
		metric := enc.Tertiary
		if category == CategoryNutrition && isNutritionGroup(enc.Tertiary) {
			metric = enc.Quaternary
			info, ok := LookupHealthMetric(HealthMetric{Category: category, Metric: metric})
			if ok && info.Group != enc.Tertiary {
				return fmt.Errorf("%w: %s is not a %s", ErrInvalidSourceKey, metric, enc.Tertiary)
			}
		}
		key = HealthSource(HealthMetric{Category: category, Metric: metric})
	default:
		return fmt.Errorf("%w: unknown primary %q", ErrInvalidSourceKey, enc.Primary)
	}

	if err := key.Validate(); err != nil {
		return err
	}
	*k = key
	return nil
}

// Value stores the key as its JSON encoding in a TEXT column
func (k SourceKey) Value() (driver.Value, error) {
	data, err := k.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (k *SourceKey) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*k = SourceKey{}
		return nil
	case string:
		return k.UnmarshalJSON([]byte(v))
	case []byte:
		return k.UnmarshalJSON(v)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidSourceKey, src)
	}
}
