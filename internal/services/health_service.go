package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/grey280/trendlines/internal/metrics"
	"github.com/grey280/trendlines/internal/models"
)

var ErrUnknownHealthMetric = errors.New("unknown health metric")

// HealthProvider supplies platform samples for one metric
type HealthProvider interface {
	Samples(ctx context.Context, metric models.HealthMetric, since time.Time) ([]models.Entry, error)
}

// HealthService stores health platform samples that were already converted
// to the metric's unit by the client.
type HealthService struct {
	db *gorm.DB

	mu        sync.RWMutex
	listeners []func(metric models.HealthMetric)
}

// NewHealthService creates a new health sample store
func NewHealthService(db *gorm.DB) *HealthService {
	return &HealthService{db: db}
}

// Subscribe registers fn to be called after samples for a metric are written
func (s *HealthService) Subscribe(fn func(metric models.HealthMetric)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// AddSamples stores samples for metric in one transaction
func (s *HealthService) AddSamples(ctx context.Context, metric models.HealthMetric, samples []models.HealthSampleInput) (int, error) {
	if !metric.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnknownHealthMetric, metric)
	}
	if len(samples) == 0 {
		return 0, nil
	}

	rows := make([]models.HealthSample, 0, len(samples))
	for i, in := range samples {
		if in.Date.IsZero() {
			return 0, fmt.Errorf("sample %d: %w: date is required", i, ErrInvalidEntry)
		}
		if in.Value == nil {
			return 0, fmt.Errorf("sample %d: %w: value is required", i, ErrInvalidEntry)
		}
		if math.IsNaN(*in.Value) || math.IsInf(*in.Value, 0) {
			return 0, fmt.Errorf("sample %d: %w: value must be finite", i, ErrInvalidEntry)
		}
		rows = append(rows, models.HealthSample{
			Category: metric.Category,
			Metric:   metric.Metric,
			Date:     in.Date.UTC(),
			Value:    *in.Value,
		})
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&rows, 500).Error; err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("add_samples").Inc()
		return 0, fmt.Errorf("failed to save health samples: %w", err)
	}

	metrics.HealthSamplesWrittenTotal.WithLabelValues(string(metric.Category)).Add(float64(len(rows)))
	log.Printf("Health store: stored %d samples for %s", len(rows), metric)

	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(metric)
	}
	return len(rows), nil
}

// Samples returns the samples of metric dated at or after since, as entries
// ready for aggregation.
func (s *HealthService) Samples(ctx context.Context, metric models.HealthMetric, since time.Time) ([]models.Entry, error) {
	if !metric.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHealthMetric, metric)
	}

	query := s.db.WithContext(ctx).
		Where("category = ? AND metric = ?", metric.Category, metric.Metric)
	if !since.IsZero() {
		query = query.Where("date >= ?", since.UTC())
	}

	var samples []models.HealthSample
	if err := query.Order("date ASC").Find(&samples).Error; err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("samples").Inc()
		return nil, fmt.Errorf("failed to load samples for %s: %w", metric, err)
	}

	entries := make([]models.Entry, len(samples))
	for i, sample := range samples {
		entries[i] = models.Entry{ID: sample.ID, Date: sample.Date, Value: sample.Value}
	}
	return entries, nil
}
