// Package metrics provides Prometheus metrics for the Trendlines backend.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendlines_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trendlines_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Aggregation Metrics
	AggregationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendlines_aggregations_total",
			Help: "Total number of point series computed",
		},
		[]string{"source", "mode"}, // source: "empty", "entries", "health"
	)

	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trendlines_aggregation_duration_seconds",
			Help:    "Time taken to load and aggregate one point series",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	MalformedEntriesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trendlines_malformed_entries_skipped_total",
			Help: "Entries skipped during aggregation because their value or date was invalid",
		},
	)

	// Point Cache Metrics
	PointCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trendlines_point_cache_hits_total",
			Help: "Point cache hit count",
		},
	)

	PointCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trendlines_point_cache_misses_total",
			Help: "Point cache miss count",
		},
	)

	PointCacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trendlines_point_cache_invalidations_total",
			Help: "Point cache entries dropped because their source changed",
		},
	)

	// Store Metrics
	StoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendlines_store_errors_total",
			Help: "Store errors by operation",
		},
		[]string{"op"}, // "list_entries", "add_entries", "delete_entries", "samples", ...
	)

	EntriesWrittenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trendlines_entries_written_total",
			Help: "Total number of entries written",
		},
	)

	EntriesDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trendlines_entries_deleted_total",
			Help: "Total number of entries deleted",
		},
	)

	HealthSamplesWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendlines_health_samples_written_total",
			Help: "Health samples ingested by category",
		},
		[]string{"category"},
	)

	// CSV Metrics
	CSVImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendlines_csv_imports_total",
			Help: "CSV imports by result",
		},
		[]string{"result"}, // "success", "invalid", "error", "rate_limited"
	)

	CSVExportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trendlines_csv_exports_total",
			Help: "Total number of CSV exports",
		},
	)

	// Database Size Metrics (refreshed by the stats service)
	SeriesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trendlines_series_total",
			Help: "Number of custom series",
		},
	)

	EntriesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trendlines_entries_total",
			Help: "Number of stored entries across all series",
		},
	)

	ChartsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trendlines_charts_total",
			Help: "Number of charts in the chart list",
		},
	)

	HealthSamplesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trendlines_health_samples_total",
			Help: "Number of stored health samples",
		},
	)
)
