package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grey280/trendlines/internal/database"
	"github.com/grey280/trendlines/internal/models"
	"github.com/grey280/trendlines/internal/services"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSeriesImportExportPoints(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "cli.db")

	out, err := run(t, "--db", db, "series", "create", "Morning", "run")
	if err != nil {
		t.Fatalf("series create: %v", err)
	}
	if !strings.Contains(out, "Created series 1: Morning run") {
		t.Errorf("unexpected output: %q", out)
	}

	csvPath := filepath.Join(dir, "in.csv")
	if err := os.WriteFile(csvPath, []byte("Value,Date\n5,2024-01-01T07:00:00Z\n7,2024-01-03T07:00:00Z\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if out, err = run(t, "--db", db, "import", "1", csvPath); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported 2 entries") {
		t.Errorf("unexpected output: %q", out)
	}

	exportPath := filepath.Join(dir, "out.csv")
	if _, err = run(t, "--db", db, "export", "1", "--out", exportPath); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Value,Date\n5,2024-01-01T07:00:00Z\n7,2024-01-03T07:00:00Z\n" {
		t.Errorf("export = %q", data)
	}

	out, err = run(t, "--db", db, "series", "list")
	if err != nil {
		t.Fatalf("series list: %v", err)
	}
	if !strings.Contains(out, "Morning run") || !strings.Contains(out, "2") {
		t.Errorf("unexpected list output: %q", out)
	}

	out, err = run(t, "--db", db, "points", "1", "--mode", "minmax", "--days", "5", "--json=false")
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	if !strings.Contains(out, "DATE") || !strings.Contains(out, "MIN") {
		t.Errorf("unexpected points output: %q", out)
	}
	// header, five days and the range line
	if lines := strings.Count(strings.TrimSpace(out), "\n") + 1; lines != 7 {
		t.Errorf("points printed %d lines, want 7:\n%s", lines, out)
	}

	if _, err = run(t, "--db", db, "points", "1", "--mode", "median"); err == nil {
		t.Error("expected an error for an unknown mode")
	}

	out, err = run(t, "--db", db, "series", "delete", "1", "9")
	if err != nil {
		t.Fatalf("series delete: %v", err)
	}
	if !strings.Contains(out, "Deleted 1 of 2 series") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestImportRejectsBadFile(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "cli.db")

	if _, err := run(t, "--db", db, "series", "create", "Target"); err != nil {
		t.Fatalf("series create: %v", err)
	}
	csvPath := filepath.Join(dir, "bad.csv")
	os.WriteFile(csvPath, []byte("Value,Date\n1,2024-01-01T00:00:00Z\noops,2024-01-02T00:00:00Z\n"), 0644)

	_, err := run(t, "--db", db, "import", "1", csvPath)
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("err = %v, want a line 3 error", err)
	}

	out, err := run(t, "--db", db, "export", "1", "--out", "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if out != "Value,Date\n" {
		t.Errorf("rejected import left entries behind: %q", out)
	}
}

func TestPointsForHealthMetric(t *testing.T) {
	t.Cleanup(func() { pointsMetric = "" })
	db := filepath.Join(t.TempDir(), "cli.db")

	store, err := database.Open(db)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	value := 8000.0
	steps := models.HealthMetric{Category: models.CategoryActivity, Metric: "steps"}
	_, err = services.NewHealthService(store).AddSamples(context.Background(), steps, []models.HealthSampleInput{{Date: time.Now(), Value: &value}})
	database.Close(store)
	if err != nil {
		t.Fatalf("AddSamples: %v", err)
	}

	out, err := run(t, "--db", db, "points", "--metric", "activity.steps", "--days", "3", "--json=false")
	if err != nil {
		t.Fatalf("points --metric: %v", err)
	}
	if !strings.Contains(out, "8000") {
		t.Errorf("expected today's steps in output: %q", out)
	}

	if _, err := run(t, "--db", db, "points", "--metric", "activity.mood"); err == nil {
		t.Error("expected an error for an unknown metric")
	}
	if _, err := run(t, "--db", db, "points", "1", "--metric", "activity.steps"); err == nil {
		t.Error("expected an error when both a series and a metric are given")
	}
}
