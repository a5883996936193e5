package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grey280/trendlines/internal/aggregate"
	"github.com/grey280/trendlines/internal/models"
	"github.com/grey280/trendlines/internal/services"
)

// Longest window a caller may ask for, roughly ten years
const maxWindowDays = 3660

type ChartHandler struct {
	chartService *services.ChartService
	pointService *services.PointService
}

func NewChartHandler(charts *services.ChartService, points *services.PointService) *ChartHandler {
	return &ChartHandler{
		chartService: charts,
		pointService: points,
	}
}

func (h *ChartHandler) ListCharts(c *gin.Context) {
	charts, err := h.chartService.Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, charts)
}

// SaveCharts replaces the whole chart list with the request body, in order
func (h *ChartHandler) SaveCharts(c *gin.Context) {
	var charts []models.Chart
	if err := c.ShouldBindJSON(&charts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.chartService.Save(c.Request.Context(), charts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *ChartHandler) AddChart(c *gin.Context) {
	var chart models.Chart
	if err := c.ShouldBindJSON(&chart); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	added, err := h.chartService.Add(c.Request.Context(), chart)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

func (h *ChartHandler) GetChart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	chart, err := h.chartService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chart)
}

func (h *ChartHandler) DeleteChart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.chartService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "chart deleted"})
}

// GetChartPoints resolves every source of the chart over the last ?days days
func (h *ChartHandler) GetChartPoints(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	days, ok := parseDays(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	chart, err := h.chartService.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	rng := aggregate.LastDays(days, time.Now())
	var series []services.PointSeries
	for _, src := range chart.Sources() {
		s, err := h.pointService.ChartPoints(ctx, src, rng)
		if err != nil {
			respondError(c, err)
			return
		}
		series = append(series, s)
	}

	c.JSON(http.StatusOK, gin.H{
		"chart":  chart,
		"range":  rng,
		"series": series,
	})
}

func parseDays(c *gin.Context) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return aggregate.DefaultWindowDays, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > maxWindowDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and " + strconv.Itoa(maxWindowDays)})
		return 0, false
	}
	return days, true
}
