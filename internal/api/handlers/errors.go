package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/grey280/trendlines/internal/models"
	"github.com/grey280/trendlines/internal/services"
)

// respondError maps store sentinels to status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSeriesNotFound),
		errors.Is(err, services.ErrEntryNotFound),
		errors.Is(err, services.ErrChartNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidEntry),
		errors.Is(err, services.ErrInvalidChart),
		errors.Is(err, services.ErrInvalidCSV),
		errors.Is(err, services.ErrUnknownHealthMetric),
		errors.Is(err, models.ErrInvalidSourceKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
