package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grey280/trendlines/internal/models"
	"github.com/grey280/trendlines/internal/services"
)

// Maximum accepted CSV upload size
const maxImportBytes = 10 << 20

type SeriesHandler struct {
	entryService  *services.EntryService
	csvService    *services.CSVService
	exportService *services.ExportStorageService
}

func NewSeriesHandler(entries *services.EntryService, csv *services.CSVService, exports *services.ExportStorageService) *SeriesHandler {
	return &SeriesHandler{
		entryService:  entries,
		csvService:    csv,
		exportService: exports,
	}
}

func (h *SeriesHandler) ListSeries(c *gin.Context) {
	series, err := h.entryService.ListSeries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *SeriesHandler) CreateSeries(c *gin.Context) {
	var req models.CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	series, err := h.entryService.CreateSeries(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, series)
}

func (h *SeriesHandler) GetSeries(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	series, err := h.entryService.GetSeries(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

// DeleteSeries removes the series with its entries and every chart plotting it
func (h *SeriesHandler) DeleteSeries(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.entryService.DeleteSeries(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "series deleted"})
}

func (h *SeriesHandler) ListEntries(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var since time.Time
	if s := c.Query("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be an RFC3339 timestamp"})
			return
		}
		since = t
	}

	ctx := c.Request.Context()
	if _, err := h.entryService.GetSeries(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	entries, err := h.entryService.ListEntriesSince(ctx, id, since)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *SeriesHandler) AddEntries(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.AddEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	entries := make([]models.Entry, 0, len(req.Entries))
	for _, e := range req.Entries {
		date := now
		if e.Date != nil {
			date = *e.Date
		}
		entries = append(entries, models.Entry{SeriesID: id, Date: date, Value: *e.Value})
	}

	if err := h.entryService.AddEntries(c.Request.Context(), entries); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entries)
}

func (h *SeriesHandler) DeleteEntries(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.DeleteEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, err := h.entryService.DeleteEntriesInSeries(c.Request.Context(), id, req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *SeriesHandler) DeleteEntry(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.entryService.DeleteEntry(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "entry deleted"})
}

// DownloadCSV streams the series as a CSV attachment
func (h *SeriesHandler) DownloadCSV(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var buf bytes.Buffer
	if _, err := h.csvService.Export(c.Request.Context(), id, &buf); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=series-%d.csv", id))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// SaveExport writes the CSV to the exports directory for later download
func (h *SeriesHandler) SaveExport(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	filename, count, err := h.exportService.SaveExport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"filename": filename,
		"url":      "/exports/" + filename,
		"entries":  count,
	})
}

// ImportCSV accepts a multipart "file" field or a raw text/csv body
func (h *SeriesHandler) ImportCSV(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)

	var r io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer f.Close()
		r = f
	}

	count, err := h.csvService.Import(c.Request.Context(), id, r)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"imported": count})
}
