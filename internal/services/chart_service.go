package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"

	"gorm.io/gorm"

	"github.com/grey280/trendlines/internal/models"
)

var (
	ErrChartNotFound = errors.New("chart not found")
	ErrInvalidChart  = errors.New("invalid chart")
)

// ChartService owns the user's ordered chart list
type ChartService struct {
	db *gorm.DB
}

// NewChartService creates a new chart list store
func NewChartService(db *gorm.DB) *ChartService {
	return &ChartService{db: db}
}

// Load returns all charts in display order
func (s *ChartService) Load(ctx context.Context) ([]models.Chart, error) {
	var charts []models.Chart
	if err := s.db.WithContext(ctx).Order("sort_no ASC").Find(&charts).Error; err != nil {
		return nil, fmt.Errorf("failed to load charts: %w", err)
	}
	return charts, nil
}

// Get returns one chart by ID
func (s *ChartService) Get(ctx context.Context, id uint) (*models.Chart, error) {
	var chart models.Chart
	err := s.db.WithContext(ctx).First(&chart, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChartNotFound
	}
	if err != nil {
		return nil, err
	}
	return &chart, nil
}

// Save replaces the whole chart list with charts, in the given order.
// SortNo is renumbered from 0 and IDs are reassigned.
func (s *ChartService) Save(ctx context.Context, charts []models.Chart) ([]models.Chart, error) {
	saved := make([]models.Chart, len(charts))
	for i, c := range charts {
		saved[i] = models.Chart{SortNo: i, Source1: c.Source1, Source2: c.Source2}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range saved {
			if err := validateChart(tx, &saved[i]); err != nil {
				return fmt.Errorf("chart %d: %w", i, err)
			}
		}
		if err := tx.Where("1 = 1").Delete(&models.Chart{}).Error; err != nil {
			return err
		}
		if len(saved) == 0 {
			return nil
		}
		return tx.Create(&saved).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Chart store: saved %d charts", len(saved))
	return saved, nil
}

// Add appends chart to the end of the list
func (s *ChartService) Add(ctx context.Context, chart models.Chart) (*models.Chart, error) {
	added := models.Chart{Source1: chart.Source1, Source2: chart.Source2}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateChart(tx, &added); err != nil {
			return err
		}
		var next int
		if err := tx.Model(&models.Chart{}).Select("COALESCE(MAX(sort_no) + 1, 0)").Scan(&next).Error; err != nil {
			return err
		}
		added.SortNo = next
		return tx.Create(&added).Error
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// Delete removes one chart and closes the gap in the sort order
func (s *ChartService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chart models.Chart
		err := tx.First(&chart, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChartNotFound
		}
		if err != nil {
			return err
		}
		if err := tx.Delete(&chart).Error; err != nil {
			return err
		}
		// Shift through negative values so the unique index never sees a duplicate
		if err := tx.Exec("UPDATE charts SET sort_no = -sort_no - 1 WHERE sort_no > ?", chart.SortNo).Error; err != nil {
			return err
		}
		return tx.Exec("UPDATE charts SET sort_no = -sort_no - 2 WHERE sort_no < 0").Error
	})
}

func validateChart(tx *gorm.DB, c *models.Chart) error {
	for _, src := range c.Sources() {
		if !src.ChartType.Valid() {
			return fmt.Errorf("%w: unknown chart type %q", ErrInvalidChart, src.ChartType)
		}
		if err := src.Source.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidChart, err)
		}
	}

	ids := c.SeriesIDs()
	if len(ids) == 0 {
		return nil
	}
	var found []uint
	if err := tx.Model(&models.Series{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if !slices.Contains(found, id) {
			return fmt.Errorf("%w: series %d", ErrSeriesNotFound, id)
		}
	}
	return nil
}
