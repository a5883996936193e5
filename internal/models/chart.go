package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DataSource is one plotted source of a chart
type DataSource struct {
	Source    SourceKey `json:"source"`
	Title     string    `json:"title"`
	Color     string    `json:"color"`
	ChartType ChartType `json:"chart_type"`
}

// Value stores the data source as a JSON TEXT column
func (d DataSource) Value() (driver.Value, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (d *DataSource) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = DataSource{}
		return nil
	case string:
		return json.Unmarshal([]byte(v), d)
	case []byte:
		return json.Unmarshal(v, d)
	default:
		return fmt.Errorf("cannot scan %T into DataSource", src)
	}
}

// Chart is one entry of the user's chart list. A chart plots one or two sources.
type Chart struct {
	ID      uint        `json:"id" gorm:"primaryKey;autoIncrement"`
	SortNo  int         `json:"sort_no" gorm:"not null;uniqueIndex"`
	Source1 DataSource  `json:"source1" gorm:"type:text;not null"`
	Source2 *DataSource `json:"source2" gorm:"type:text"`

	// Shadow foreign keys so a chart is removed with the series it plots
	Source1SeriesID *uint   `json:"-" gorm:"index"`
	Source1Series   *Series `json:"-" gorm:"foreignKey:Source1SeriesID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Source2SeriesID *uint   `json:"-" gorm:"index"`
	Source2Series   *Series `json:"-" gorm:"foreignKey:Source2SeriesID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// Sources returns the chart's data sources in plot order
func (c *Chart) Sources() []DataSource {
	if c.Source2 == nil {
		return []DataSource{c.Source1}
	}
	return []DataSource{c.Source1, *c.Source2}
}

// SeriesIDs returns the IDs of all custom series the chart plots
func (c *Chart) SeriesIDs() []uint {
	var ids []uint
	for _, src := range c.Sources() {
		if src.Source.Kind == SourceEntries {
			ids = append(ids, src.Source.SeriesID)
		}
	}
	return ids
}

func (c *Chart) BeforeSave(tx *gorm.DB) error {
	c.Source1SeriesID = seriesIDOf(&c.Source1)
	c.Source2SeriesID = seriesIDOf(c.Source2)
	return nil
}

func (c *Chart) AfterFind(tx *gorm.DB) error {
	if c.Source2 != nil && c.Source2.Source.Kind == "" {
		c.Source2 = nil
	}
	return nil
}

func seriesIDOf(d *DataSource) *uint {
	if d == nil || d.Source.Kind != SourceEntries {
		return nil
	}
	id := d.Source.SeriesID
	return &id
}

// PointsRequest resolves an arbitrary source. Start/End win over Days.
type PointsRequest struct {
	Source SourceKey  `json:"source"`
	Start  *time.Time `json:"start"`
	End    *time.Time `json:"end"`
	Days   int        `json:"days"`
}
