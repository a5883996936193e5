package services

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/grey280/trendlines/internal/metrics"
	"github.com/grey280/trendlines/internal/models"
)

// Stats are the database size counters exported as gauges
type Stats struct {
	Series        int64     `json:"series"`
	Entries       int64     `json:"entries"`
	Charts        int64     `json:"charts"`
	HealthSamples int64     `json:"health_samples"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StatsService periodically refreshes the database size gauges
type StatsService struct {
	db            *gorm.DB
	mu            sync.RWMutex
	last          Stats
	checkInterval time.Duration
}

// NewStatsService creates a new stats service. STATS_INTERVAL overrides the
// refresh interval (Go duration, default 1m).
func NewStatsService(db *gorm.DB) *StatsService {
	interval := time.Minute
	if v := os.Getenv("STATS_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		} else {
			log.Printf("Stats service: ignoring invalid STATS_INTERVAL %q", v)
		}
	}
	return &StatsService{db: db, checkInterval: interval}
}

// Start begins the background refresh loop
func (s *StatsService) Start(ctx context.Context) {
	log.Printf("Stats service started: refreshing every %s", s.checkInterval)

	s.refreshAndLog(ctx)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Stats service stopping...")
			return
		case <-ticker.C:
			s.refreshAndLog(ctx)
		}
	}
}

func (s *StatsService) refreshAndLog(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("Stats service: failed to refresh: %v", err)
	}
}

// Refresh counts rows and updates the gauges
func (s *StatsService) Refresh(ctx context.Context) (Stats, error) {
	db := s.db.WithContext(ctx)
	stats := Stats{UpdatedAt: time.Now()}

	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&models.Series{}, &stats.Series},
		{&models.Entry{}, &stats.Entries},
		{&models.Chart{}, &stats.Charts},
		{&models.HealthSample{}, &stats.HealthSamples},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return Stats{}, err
		}
	}

	metrics.SeriesTotal.Set(float64(stats.Series))
	metrics.EntriesTotal.Set(float64(stats.Entries))
	metrics.ChartsTotal.Set(float64(stats.Charts))
	metrics.HealthSamplesTotal.Set(float64(stats.HealthSamples))

	s.mu.Lock()
	s.last = stats
	s.mu.Unlock()
	return stats, nil
}

// Last returns the most recent refresh
func (s *StatsService) Last() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}
