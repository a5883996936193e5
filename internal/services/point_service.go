package services

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/grey280/trendlines/internal/aggregate"
	"github.com/grey280/trendlines/internal/metrics"
	"github.com/grey280/trendlines/internal/models"
)

const defaultPointCacheSize = 256

// EntryReader is the read side of the entry store used for aggregation
type EntryReader interface {
	GetSeries(ctx context.Context, id uint) (*models.Series, error)
	ListEntriesSince(ctx context.Context, seriesID uint, since time.Time) ([]models.Entry, error)
}

// PointSeries is the resolved data of one chart source, ready to plot
type PointSeries struct {
	Source  models.SourceKey  `json:"source"`
	Title   string            `json:"title,omitempty"`
	Color   string            `json:"color,omitempty"`
	Type    models.ChartType  `json:"chart_type,omitempty"`
	Unit    string            `json:"unit,omitempty"`
	Points  []aggregate.Point `json:"points"`
	Min     float64           `json:"min"`
	Max     float64           `json:"max"`
	Skipped int               `json:"skipped,omitempty"`
}

type pointCacheKey struct {
	source models.SourceKey
	ranged bool
	start  string
	end    string
}

// PointService resolves a SourceKey over a time range into plotted points
type PointService struct {
	entries EntryReader
	health  HealthProvider
	cache   *lru.Cache[pointCacheKey, PointSeries]
}

// NewPointService creates a point resolver. The cache size comes from
// POINT_CACHE_SIZE; 0 disables caching.
func NewPointService(entries EntryReader, health HealthProvider) *PointService {
	size := defaultPointCacheSize
	if v := os.Getenv("POINT_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			size = n
		} else {
			log.Printf("Point service: ignoring invalid POINT_CACHE_SIZE %q", v)
		}
	}

	svc := &PointService{entries: entries, health: health}
	if size > 0 {
		cache, err := lru.New[pointCacheKey, PointSeries](size)
		if err != nil {
			log.Printf("Failed to create point cache: %v", err)
		}
		svc.cache = cache
	}
	return svc
}

// Points resolves key over rng
func (s *PointService) Points(ctx context.Context, key models.SourceKey, rng aggregate.TimeRange) (PointSeries, error) {
	return s.resolve(ctx, key, false, rng)
}

// ChartPoints resolves one chart data source. Unbound sources drawn as
// floating bars get ranged demo data.
func (s *PointService) ChartPoints(ctx context.Context, src models.DataSource, rng aggregate.TimeRange) (PointSeries, error) {
	ranged := src.Source.Kind == models.SourceEmpty && src.ChartType == models.ChartFloatingBar
	series, err := s.resolve(ctx, src.Source, ranged, rng)
	if err != nil {
		return PointSeries{}, err
	}
	series.Title = src.Title
	if series.Title == "" {
		series.Title = src.ChartType.Title()
	}
	series.Color = src.Color
	series.Type = src.ChartType
	return series, nil
}

func (s *PointService) resolve(ctx context.Context, key models.SourceKey, ranged bool, rng aggregate.TimeRange) (PointSeries, error) {
	if err := key.Validate(); err != nil {
		return PointSeries{}, err
	}
	if rng.End.IsZero() {
		rng.End = time.Now()
	}

	// The filter is inclusive of the exact end instant, so the key carries
	// both bounds at full precision.
	cacheKey := pointCacheKey{
		source: key,
		ranged: ranged,
		start:  rng.Start.Format(time.RFC3339Nano),
		end:    rng.End.In(rng.Start.Location()).Format(time.RFC3339Nano),
	}
	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey); ok {
			metrics.PointCacheHits.Inc()
			return cached, nil
		}
		metrics.PointCacheMisses.Inc()
	}

	start := time.Now()
	var series PointSeries
	switch key.Kind {
	case models.SourceEmpty:
		mode := models.ModeSum
		if ranged {
			mode = models.ModeMinMax
		}
		series = PointSeries{Points: aggregate.DemoPoints(mode, rng)}
		metrics.AggregationsTotal.WithLabelValues(string(key.Kind), string(mode)).Inc()
	case models.SourceEntries:
		series = s.seriesPoints(ctx, key, rng)
		metrics.AggregationsTotal.WithLabelValues(string(key.Kind), string(key.Mode)).Inc()
	case models.SourceHealth:
		info, _ := models.LookupHealthMetric(key.Metric)
		var err error
		series, err = s.healthPoints(ctx, info, rng)
		if err != nil {
			return PointSeries{}, err
		}
		metrics.AggregationsTotal.WithLabelValues(string(key.Kind), string(info.Mode)).Inc()
	}
	metrics.AggregationDuration.Observe(time.Since(start).Seconds())

	series.Source = key
	series.Min, series.Max = aggregate.ValueRange(series.Points)

	if s.cache != nil {
		s.cache.Add(cacheKey, series)
	}
	return series, nil
}

// seriesPoints never fails: a missing series or a failed read is logged and
// plotted as a flat zero line.
func (s *PointService) seriesPoints(ctx context.Context, key models.SourceKey, rng aggregate.TimeRange) PointSeries {
	var entries []models.Entry
	if _, err := s.entries.GetSeries(ctx, key.SeriesID); err != nil {
		if errors.Is(err, ErrSeriesNotFound) {
			log.Printf("Point service: series %d not found, plotting zeros", key.SeriesID)
		} else {
			log.Printf("Point service: failed to load series %d: %v", key.SeriesID, err)
		}
	} else {
		entries, err = s.entries.ListEntriesSince(ctx, key.SeriesID, rng.Start)
		if err != nil {
			log.Printf("Point service: %v, plotting zeros", err)
			entries = nil
		}
	}

	res := aggregate.Summarize(entries, key.Mode, rng)
	if res.Skipped > 0 {
		log.Printf("Point service: skipped %d malformed entries in series %d", res.Skipped, key.SeriesID)
		metrics.MalformedEntriesSkipped.Add(float64(res.Skipped))
	}
	return PointSeries{Points: res.Points, Skipped: res.Skipped}
}

func (s *PointService) healthPoints(ctx context.Context, info models.HealthMetricInfo, rng aggregate.TimeRange) (PointSeries, error) {
	var entries []models.Entry
	if s.health != nil {
		var err error
		entries, err = s.health.Samples(ctx, info.HealthMetric, rng.Start)
		if err != nil {
			return PointSeries{}, err
		}
	}

	res := aggregate.Summarize(entries, info.Mode, rng)
	if res.Skipped > 0 {
		metrics.MalformedEntriesSkipped.Add(float64(res.Skipped))
	}
	return PointSeries{Points: res.Points, Unit: info.Unit, Skipped: res.Skipped}, nil
}

// InvalidateSeries drops cached points of every source reading seriesID
func (s *PointService) InvalidateSeries(seriesID uint) {
	s.invalidate(func(k models.SourceKey) bool {
		return k.Kind == models.SourceEntries && k.SeriesID == seriesID
	})
}

// InvalidateHealth drops cached points of metric
func (s *PointService) InvalidateHealth(metric models.HealthMetric) {
	s.invalidate(func(k models.SourceKey) bool {
		return k.Kind == models.SourceHealth && k.Metric == metric
	})
}

func (s *PointService) invalidate(match func(models.SourceKey) bool) {
	if s.cache == nil {
		return
	}
	for _, k := range s.cache.Keys() {
		if match(k.source) && s.cache.Remove(k) {
			metrics.PointCacheInvalidations.Inc()
		}
	}
}
