package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grey280/trendlines/internal/models"
)

func TestWriteEntriesCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteEntriesCSV(&buf, []models.Entry{
		{Date: time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), Value: 1.5},
		{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Value: -2},
	})
	if err != nil {
		t.Fatalf("WriteEntriesCSV: %v", err)
	}

	want := "Value,Date\n1.5,2024-03-01T08:30:00Z\n-2,2024-03-02T00:00:00Z\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestReadEntriesCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr string
	}{
		{"valid", "Value,Date\n1,2024-03-01T08:30:00Z\n2.5,2024-03-02T00:00:00+02:00\n", 2, ""},
		{"header only", "Value,Date\n", 0, ""},
		{"lowercase header and blank lines", "value, date\n\n3,2024-03-01T00:00:00Z\n\n", 1, ""},
		{"empty file", "", 0, "file is empty"},
		{"missing header", "1,2024-03-01T00:00:00Z\n", 0, "line 1"},
		{"bad value", "Value,Date\n1,2024-03-01T00:00:00Z\nabc,2024-03-02T00:00:00Z\n", 0, "line 3: invalid value"},
		{"bad date", "Value,Date\n1,yesterday\n", 0, "line 2: invalid date"},
		{"nan value", "Value,Date\nNaN,2024-03-01T00:00:00Z\n", 0, "line 2: invalid value"},
		{"extra field", "Value,Date\n1,2024-03-01T00:00:00Z,x\n", 0, "line 2: expected 2 fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ReadEntriesCSV(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				if !errors.Is(err, ErrInvalidCSV) {
					t.Fatalf("err = %v, want ErrInvalidCSV", err)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("err = %q, want it to mention %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(entries) != tt.want {
				t.Errorf("got %d entries, want %d", len(entries), tt.want)
			}
		})
	}
}

func TestCSVExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	entries := NewEntryService(db)
	svc := NewCSVService(entries)

	src := createSeries(t, entries, "Source")
	dst := createSeries(t, entries, "Copy")
	err := entries.AddEntries(ctx, []models.Entry{
		{SeriesID: src.ID, Date: day(1).Add(9 * time.Hour), Value: 2.25},
		{SeriesID: src.ID, Date: day(0).Add(7 * time.Hour), Value: 10},
	})
	if err != nil {
		t.Fatalf("AddEntries: %v", err)
	}

	var buf bytes.Buffer
	n, err := svc.Export(ctx, src.ID, &buf)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 2 {
		t.Errorf("exported %d entries, want 2", n)
	}

	n, err = svc.Import(ctx, dst.ID, &buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d entries, want 2", n)
	}

	want, _ := entries.ListEntries(ctx, src.ID)
	copied, _ := entries.ListEntries(ctx, dst.ID)
	if len(copied) != len(want) {
		t.Fatalf("copied %d entries, want %d", len(copied), len(want))
	}
	for i := range want {
		if !copied[i].Date.Equal(want[i].Date) || copied[i].Value != want[i].Value {
			t.Errorf("entry %d = %v/%v, want %v/%v", i, copied[i].Date, copied[i].Value, want[i].Date, want[i].Value)
		}
	}
}

func TestCSVImportRejectsWholeFile(t *testing.T) {
	ctx := context.Background()
	entries := NewEntryService(newTestDB(t))
	svc := NewCSVService(entries)
	series := createSeries(t, entries, "Target")

	input := "Value,Date\n1,2024-03-01T00:00:00Z\n2,not-a-date\n"
	if _, err := svc.Import(ctx, series.ID, strings.NewReader(input)); !errors.Is(err, ErrInvalidCSV) {
		t.Fatalf("err = %v, want ErrInvalidCSV", err)
	}
	if stored, _ := entries.ListEntries(ctx, series.ID); len(stored) != 0 {
		t.Errorf("%d entries written from a rejected file", len(stored))
	}

	if _, err := svc.Import(ctx, 999, strings.NewReader("Value,Date\n")); !errors.Is(err, ErrSeriesNotFound) {
		t.Errorf("err = %v, want ErrSeriesNotFound", err)
	}
}

func TestSaveExport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	t.Setenv("EXPORTS_DIR", dir)

	entries := NewEntryService(newTestDB(t))
	storage := NewExportStorageService(NewCSVService(entries))
	series := createSeries(t, entries, "Export")
	if _, err := entries.AddEntry(ctx, series.ID, day(0), 4); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	filename, n, err := storage.SaveExport(ctx, series.ID)
	if err != nil {
		t.Fatalf("SaveExport: %v", err)
	}
	if n != 1 || !strings.HasSuffix(filename, ".csv") {
		t.Errorf("got %q with %d entries", filename, n)
	}

	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "Value,Date\n4,") {
		t.Errorf("unexpected export contents: %q", data)
	}

	if _, _, err := storage.SaveExport(ctx, 999); !errors.Is(err, ErrSeriesNotFound) {
		t.Errorf("err = %v, want ErrSeriesNotFound", err)
	}
}
