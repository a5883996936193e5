package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/grey280/trendlines/internal/metrics"
	"github.com/grey280/trendlines/internal/models"
)

var (
	ErrSeriesNotFound = errors.New("series not found")
	ErrEntryNotFound  = errors.New("entry not found")
	ErrInvalidEntry   = errors.New("invalid entry")
)

// EntryService stores series and their entries
type EntryService struct {
	db *gorm.DB

	mu        sync.RWMutex
	listeners []func(seriesID uint)
}

// NewEntryService creates a new entry store backed by db
func NewEntryService(db *gorm.DB) *EntryService {
	return &EntryService{db: db}
}

// Subscribe registers fn to be called with the series ID after every
// successful write to that series (entries added or deleted, series deleted).
func (s *EntryService) Subscribe(fn func(seriesID uint)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *EntryService) notify(seriesIDs ...uint) {
	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()

	seen := make(map[uint]bool, len(seriesIDs))
	for _, id := range seriesIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		for _, fn := range listeners {
			fn(id)
		}
	}
}

// CreateSeries stores a new, empty series
func (s *EntryService) CreateSeries(ctx context.Context, name string) (*models.Series, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: series name is required", ErrInvalidEntry)
	}

	series := models.Series{Name: name}
	if err := s.db.WithContext(ctx).Create(&series).Error; err != nil {
		return nil, fmt.Errorf("failed to create series: %w", err)
	}
	log.Printf("Entry store: created series %d (%s)", series.ID, series.Name)
	return &series, nil
}

// GetSeries returns the series with the given ID or ErrSeriesNotFound
func (s *EntryService) GetSeries(ctx context.Context, id uint) (*models.Series, error) {
	var series models.Series
	err := s.db.WithContext(ctx).First(&series, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSeriesNotFound
	}
	if err != nil {
		return nil, err
	}
	return &series, nil
}

// ListSeries returns all series ordered by name, with entry counts
func (s *EntryService) ListSeries(ctx context.Context) ([]models.SeriesSummary, error) {
	var series []models.Series
	if err := s.db.WithContext(ctx).Order("name ASC, id ASC").Find(&series).Error; err != nil {
		return nil, err
	}

	type countRow struct {
		SeriesID   uint
		EntryCount int64
		LastEntry  string
	}
	var counts []countRow
	err := s.db.WithContext(ctx).Model(&models.Entry{}).
		Select("series_id, COUNT(*) as entry_count, MAX(date) as last_entry").
		Group("series_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]countRow, len(counts))
	for _, c := range counts {
		byID[c.SeriesID] = c
	}

	summaries := make([]models.SeriesSummary, 0, len(series))
	for _, ser := range series {
		summary := models.SeriesSummary{Series: ser}
		if c, ok := byID[ser.ID]; ok {
			summary.EntryCount = c.EntryCount
			summary.LastEntry = parseStoredTime(c.LastEntry)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// DeleteSeries deletes a series, its entries and every chart bound to it
func (s *EntryService) DeleteSeries(ctx context.Context, id uint) error {
	n, err := s.DeleteSeriesBatch(ctx, []uint{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSeriesNotFound
	}
	return nil
}

// DeleteSeriesBatch deletes the given series with their entries and charts.
// Returns the number of series deleted.
func (s *EntryService) DeleteSeriesBatch(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("series_id IN ?", ids).Delete(&models.Entry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("source1_series_id IN ? OR source2_series_id IN ?", ids, ids).Delete(&models.Chart{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&models.Series{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("delete_series").Inc()
		return 0, fmt.Errorf("failed to delete series: %w", err)
	}

	if deleted != int64(len(ids)) {
		log.Printf("Entry store: attempted to delete %d series, but could only delete %d", len(ids), deleted)
	}
	s.notify(ids...)
	return deleted, nil
}

// ListEntries returns all entries of a series ordered by date
func (s *EntryService) ListEntries(ctx context.Context, seriesID uint) ([]models.Entry, error) {
	return s.ListEntriesSince(ctx, seriesID, time.Time{})
}

// ListEntriesSince returns entries of a series dated at or after since, ordered
// by date. A zero since returns every entry.
func (s *EntryService) ListEntriesSince(ctx context.Context, seriesID uint, since time.Time) ([]models.Entry, error) {
	query := s.db.WithContext(ctx).Where("series_id = ?", seriesID)
	if !since.IsZero() {
		query = query.Where("date >= ?", since.UTC())
	}

	var entries []models.Entry
	if err := query.Order("date ASC, id ASC").Find(&entries).Error; err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("list_entries").Inc()
		return nil, fmt.Errorf("failed to load entries for series %d: %w", seriesID, err)
	}
	return entries, nil
}

// AddEntry stores a single entry
func (s *EntryService) AddEntry(ctx context.Context, seriesID uint, date time.Time, value float64) (*models.Entry, error) {
	entries := []models.Entry{{SeriesID: seriesID, Date: date, Value: value}}
	if err := s.AddEntries(ctx, entries); err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// AddEntries stores entries in one transaction. Either every entry is written
// or none is. IDs are filled in on success and dates normalized to UTC.
func (s *EntryService) AddEntries(ctx context.Context, entries []models.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	seriesIDs := make(map[uint]bool)
	for i, e := range entries {
		if err := validateEntry(e); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		seriesIDs[e.SeriesID] = true
		// Dates are stored as text, so keep one zone for range queries to compare
		entries[i].Date = e.Date.UTC()
	}

	ids := make([]uint, 0, len(seriesIDs))
	for id := range seriesIDs {
		ids = append(ids, id)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found int64
		if err := tx.Model(&models.Series{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
			return err
		}
		if found != int64(len(ids)) {
			return ErrSeriesNotFound
		}
		return tx.CreateInBatches(&entries, 500).Error
	})
	if errors.Is(err, ErrSeriesNotFound) {
		return err
	}
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("add_entries").Inc()
		return fmt.Errorf("failed to save entries: %w", err)
	}

	metrics.EntriesWrittenTotal.Add(float64(len(entries)))
	s.notify(ids...)
	return nil
}

// DeleteEntry deletes one entry by ID
func (s *EntryService) DeleteEntry(ctx context.Context, id uint) error {
	n, err := s.DeleteEntries(ctx, []uint{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// DeleteEntries deletes the entries with the given IDs and returns how many
// were actually deleted.
func (s *EntryService) DeleteEntries(ctx context.Context, ids []uint) (int64, error) {
	return s.deleteEntries(ctx, 0, ids)
}

// DeleteEntriesInSeries deletes the given entries that belong to seriesID.
// IDs of entries in other series are left alone.
func (s *EntryService) DeleteEntriesInSeries(ctx context.Context, seriesID uint, ids []uint) (int64, error) {
	if seriesID == 0 {
		return 0, fmt.Errorf("%w: series id is required", ErrInvalidEntry)
	}
	return s.deleteEntries(ctx, seriesID, ids)
}

// deleteEntries scopes the delete to seriesID unless it is 0
func (s *EntryService) deleteEntries(ctx context.Context, seriesID uint, ids []uint) (int64, error) {
	var affected []uint
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if seriesID != 0 {
			var count int64
			if err := tx.Model(&models.Series{}).Where("id = ?", seriesID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%w: %d", ErrSeriesNotFound, seriesID)
			}
		}
		if len(ids) == 0 {
			return nil
		}

		scope := func(db *gorm.DB) *gorm.DB {
			db = db.Where("id IN ?", ids)
			if seriesID != 0 {
				db = db.Where("series_id = ?", seriesID)
			}
			return db
		}
		if err := tx.Model(&models.Entry{}).Scopes(scope).Distinct().Pluck("series_id", &affected).Error; err != nil {
			return err
		}
		result := tx.Scopes(scope).Delete(&models.Entry{})
		deleted = result.RowsAffected
		return result.Error
	})
	if errors.Is(err, ErrSeriesNotFound) {
		return 0, err
	}
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("delete_entries").Inc()
		return 0, fmt.Errorf("failed to delete entries: %w", err)
	}

	if deleted != int64(len(ids)) {
		log.Printf("Entry store: attempted to delete %d entries, but could only delete %d", len(ids), deleted)
	}
	metrics.EntriesDeletedTotal.Add(float64(deleted))
	s.notify(affected...)
	return deleted, nil
}

func validateEntry(e models.Entry) error {
	if e.SeriesID == 0 {
		return fmt.Errorf("%w: series id is required", ErrInvalidEntry)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidEntry)
	}
	if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
		return fmt.Errorf("%w: value must be finite", ErrInvalidEntry)
	}
	return nil
}

// parseStoredTime parses a datetime aggregate (MAX(date)) which SQLite returns as text
func parseStoredTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
