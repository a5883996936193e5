package models

import (
	"time"
)

// Series is a named collection of user-entered observations.
type Series struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"not null"`
	Entries   []Entry   `json:"-" gorm:"foreignKey:SeriesID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

// Entry is one dated observation belonging to a series. Entries are never
// updated in place, only created and deleted.
type Entry struct {
	ID       uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	SeriesID uint      `json:"series_id" gorm:"not null;index:idx_entry_series_date"`
	Date     time.Time `json:"date" gorm:"not null;index:idx_entry_series_date"`
	Value    float64   `json:"value" gorm:"not null"`
}

type CreateSeriesRequest struct {
	Name string `json:"name" binding:"required"`
}

type AddEntryRequest struct {
	Date  *time.Time `json:"date"`
	Value *float64   `json:"value" binding:"required"`
}

type AddEntriesRequest struct {
	Entries []AddEntryRequest `json:"entries" binding:"required,dive"`
}

type DeleteEntriesRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

// SeriesSummary is a series with its entry count, used by list views
type SeriesSummary struct {
	Series
	EntryCount int64      `json:"entry_count"`
	LastEntry  *time.Time `json:"last_entry,omitempty"`
}
