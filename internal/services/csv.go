package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/grey280/trendlines/internal/metrics"
	"github.com/grey280/trendlines/internal/models"
)

var csvHeader = []string{"Value", "Date"}

// ErrInvalidCSV is returned when an import file cannot be parsed. Nothing is
// written when it is returned.
var ErrInvalidCSV = errors.New("invalid csv")

// CSVService imports and exports series entries as CSV
type CSVService struct {
	entries *EntryService
}

// NewCSVService creates a new CSV import/export service
func NewCSVService(entries *EntryService) *CSVService {
	return &CSVService{entries: entries}
}

// Export writes every entry of the series to w, oldest first
func (s *CSVService) Export(ctx context.Context, seriesID uint, w io.Writer) (int, error) {
	if _, err := s.entries.GetSeries(ctx, seriesID); err != nil {
		return 0, err
	}
	entries, err := s.entries.ListEntries(ctx, seriesID)
	if err != nil {
		return 0, err
	}
	if err := WriteEntriesCSV(w, entries); err != nil {
		return 0, err
	}
	metrics.CSVExportsTotal.Inc()
	return len(entries), nil
}

// Import reads r and adds every row to the series in one transaction.
// The first malformed row rejects the whole file.
func (s *CSVService) Import(ctx context.Context, seriesID uint, r io.Reader) (int, error) {
	if _, err := s.entries.GetSeries(ctx, seriesID); err != nil {
		return 0, err
	}

	entries, err := ReadEntriesCSV(r)
	if err != nil {
		metrics.CSVImportsTotal.WithLabelValues("invalid").Inc()
		return 0, err
	}
	for i := range entries {
		entries[i].SeriesID = seriesID
	}

	if err := s.entries.AddEntries(ctx, entries); err != nil {
		metrics.CSVImportsTotal.WithLabelValues("error").Inc()
		return 0, err
	}
	metrics.CSVImportsTotal.WithLabelValues("success").Inc()
	return len(entries), nil
}

// WriteEntriesCSV writes the Value,Date header followed by one row per entry
func WriteEntriesCSV(w io.Writer, entries []models.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			strconv.FormatFloat(e.Value, 'f', -1, 64),
			e.Date.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadEntriesCSV parses a Value,Date file. Entries come back without a
// series ID.
func ReadEntriesCSV(r io.Reader) ([]models.Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	if len(header) < 2 ||
		!strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(header[0], "\ufeff")), csvHeader[0]) ||
		!strings.EqualFold(strings.TrimSpace(header[1]), csvHeader[1]) {
		return nil, fmt.Errorf("%w: line 1: expected header %q", ErrInvalidCSV, strings.Join(csvHeader, ","))
	}

	var entries []models.Entry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}
		line, _ := cr.FieldPos(0)
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) != 2 {
			return nil, fmt.Errorf("%w: line %d: expected 2 fields, got %d", ErrInvalidCSV, line, len(record))
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("%w: line %d: invalid value %q", ErrInvalidCSV, line, record[0])
		}
		date, err := time.Parse(time.RFC3339, strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid date %q", ErrInvalidCSV, line, record[1])
		}
		entries = append(entries, models.Entry{Date: date, Value: value})
	}
	return entries, nil
}
