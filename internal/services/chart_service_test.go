package services

import (
	"context"
	"errors"
	"testing"

	"github.com/grey280/trendlines/internal/models"
)

func barChart(key models.SourceKey, title string) models.Chart {
	return models.Chart{Source1: models.DataSource{Source: key, Title: title, ChartType: models.ChartBar}}
}

func TestChartSaveRenumbers(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	entries := NewEntryService(db)
	svc := NewChartService(db)
	series := createSeries(t, entries, "Coffee")

	input := []models.Chart{
		barChart(models.EmptySource(), "first"),
		barChart(models.SeriesSource(series.ID, models.ModeCount), "second"),
		barChart(models.HealthSource(models.HealthMetric{Category: models.CategoryNutrition, Metric: "iron"}), "third"),
	}
	input[0].SortNo = 7
	input[2].SortNo = 7

	if _, err := svc.Save(ctx, input); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 charts, got %d", len(loaded))
	}
	for i, c := range loaded {
		if c.SortNo != i {
			t.Errorf("chart %d sort_no = %d", i, c.SortNo)
		}
		if c.Source1.Source != input[i].Source1.Source {
			t.Errorf("chart %d source = %v, want %v", i, c.Source1.Source, input[i].Source1.Source)
		}
		if c.Source2 != nil {
			t.Errorf("chart %d has an unexpected second source", i)
		}
	}

	// Saving again replaces the list
	if _, err := svc.Save(ctx, input[:1]); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, _ = svc.Load(ctx)
	if len(loaded) != 1 || loaded[0].Source1.Title != "first" {
		t.Errorf("expected the list to be replaced, got %+v", loaded)
	}
}

func TestChartAddAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewChartService(newTestDB(t))

	var ids []uint
	for _, title := range []string{"a", "b", "c"} {
		c, err := svc.Add(ctx, barChart(models.EmptySource(), title))
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		ids = append(ids, c.ID)
	}

	if err := svc.Delete(ctx, ids[0]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	loaded, _ := svc.Load(ctx)
	if len(loaded) != 2 {
		t.Fatalf("expected 2 charts, got %d", len(loaded))
	}
	for i, want := range []string{"b", "c"} {
		if loaded[i].Source1.Title != want || loaded[i].SortNo != i {
			t.Errorf("chart %d = %q sort %d, want %q sort %d", i, loaded[i].Source1.Title, loaded[i].SortNo, want, i)
		}
	}

	c, err := svc.Add(ctx, barChart(models.EmptySource(), "d"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if c.SortNo != 2 {
		t.Errorf("appended chart sort_no = %d, want 2", c.SortNo)
	}

	if err := svc.Delete(ctx, ids[0]); !errors.Is(err, ErrChartNotFound) {
		t.Errorf("err = %v, want ErrChartNotFound", err)
	}
	if _, err := svc.Get(ctx, ids[0]); !errors.Is(err, ErrChartNotFound) {
		t.Errorf("err = %v, want ErrChartNotFound", err)
	}
}

func TestChartValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewChartService(newTestDB(t))

	tests := []struct {
		name    string
		chart   models.Chart
		wantErr error
	}{
		{"unknown chart type", models.Chart{Source1: models.DataSource{Source: models.EmptySource(), ChartType: "pie"}}, ErrInvalidChart},
		{"invalid mode", barChart(models.SourceKey{Kind: models.SourceEntries, SeriesID: 1, Mode: "median"}, ""), ErrInvalidChart},
		{"missing series", barChart(models.SeriesSource(42, models.ModeSum), ""), ErrSeriesNotFound},
		{"bad second source", models.Chart{
			Source1: models.DataSource{Source: models.EmptySource(), ChartType: models.ChartBar},
			Source2: &models.DataSource{Source: models.SourceKey{Kind: "weather"}, ChartType: models.ChartLine},
		}, ErrInvalidChart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Add(ctx, tt.chart); !errors.Is(err, tt.wantErr) {
				t.Errorf("Add: err = %v, want %v", err, tt.wantErr)
			}
			if _, err := svc.Save(ctx, []models.Chart{tt.chart}); !errors.Is(err, tt.wantErr) {
				t.Errorf("Save: err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if charts, _ := svc.Load(ctx); len(charts) != 0 {
		t.Errorf("invalid charts were stored: %+v", charts)
	}
}

func TestChartSecondSourceRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewChartService(newTestDB(t))

	heart := models.HealthSource(models.HealthMetric{Category: models.CategoryBody, Metric: "heartRate"})
	chart := models.Chart{
		Source1: models.DataSource{Source: models.EmptySource(), Title: "Demo", ChartType: models.ChartBar},
		Source2: &models.DataSource{Source: heart, Title: "Heart", Color: "#ff0000", ChartType: models.ChartFloatingBar},
	}
	added, err := svc.Add(ctx, chart)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := svc.Get(ctx, added.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Source2 == nil {
		t.Fatal("second source was lost")
	}
	if *got.Source2 != *chart.Source2 {
		t.Errorf("second source = %+v, want %+v", *got.Source2, *chart.Source2)
	}
}
