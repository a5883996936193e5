package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grey280/trendlines/internal/aggregate"
	"github.com/grey280/trendlines/internal/models"
	"github.com/grey280/trendlines/internal/services"
)

type PointHandler struct {
	pointService  *services.PointService
	healthService *services.HealthService
}

func NewPointHandler(points *services.PointService, health *services.HealthService) *PointHandler {
	return &PointHandler{
		pointService:  points,
		healthService: health,
	}
}

// GetPoints resolves an arbitrary source key. Without start the last
// days (default 30) are used; start without end runs to now.
func (h *PointHandler) GetPoints(c *gin.Context) {
	var req models.PointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var rng aggregate.TimeRange
	switch {
	case req.Start != nil && req.End != nil:
		rng = aggregate.TimeRange{Start: *req.Start, End: *req.End}
	case req.Start != nil:
		rng = aggregate.Since(*req.Start)
	case req.Days < 0 || req.Days > maxWindowDays:
		c.JSON(http.StatusBadRequest, gin.H{"error": "days out of range"})
		return
	default:
		days := req.Days
		if days == 0 {
			days = aggregate.DefaultWindowDays
		}
		rng = aggregate.LastDays(days, time.Now())
	}

	if rng.End.Before(rng.Start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must not be before start"})
		return
	}
	if rng.End.Sub(rng.Start) > maxWindowDays*24*time.Hour {
		c.JSON(http.StatusBadRequest, gin.H{"error": "range is too long"})
		return
	}

	series, err := h.pointService.Points(c.Request.Context(), req.Source, rng)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

// ListHealthMetrics returns the metric taxonomy
func (h *PointHandler) ListHealthMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, models.AllHealthMetrics())
}

// AddHealthSamples ingests already-converted samples for one metric
func (h *PointHandler) AddHealthSamples(c *gin.Context) {
	var req models.AddHealthSamplesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metric := models.HealthMetric{Category: req.Category, Metric: req.Metric}
	count, err := h.healthService.AddSamples(c.Request.Context(), metric, req.Samples)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stored": count})
}
