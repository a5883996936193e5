package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/grey280/trendlines/internal/models"
)

func TestHealthSamples(t *testing.T) {
	ctx := context.Background()
	svc := NewHealthService(newTestDB(t))

	iron := models.HealthMetric{Category: models.CategoryNutrition, Metric: "iron"}
	calcium := models.HealthMetric{Category: models.CategoryNutrition, Metric: "calcium"}

	var notified []models.HealthMetric
	svc.Subscribe(func(m models.HealthMetric) { notified = append(notified, m) })

	v := func(f float64) *float64 { return &f }
	n, err := svc.AddSamples(ctx, iron, []models.HealthSampleInput{
		{Date: day(2), Value: v(3)},
		{Date: day(0), Value: v(1)},
		{Date: day(1), Value: v(2)},
	})
	if err != nil {
		t.Fatalf("AddSamples: %v", err)
	}
	if n != 3 {
		t.Errorf("stored %d samples, want 3", n)
	}
	if _, err := svc.AddSamples(ctx, calcium, []models.HealthSampleInput{{Date: day(0), Value: v(900)}}); err != nil {
		t.Fatalf("AddSamples: %v", err)
	}
	if len(notified) != 2 || notified[0] != iron || notified[1] != calcium {
		t.Errorf("notified = %v", notified)
	}

	got, err := svc.Samples(ctx, iron, day(1))
	if err != nil {
		t.Fatalf("Samples: %v", err)
	}
	if len(got) != 2 || got[0].Value != 2 || got[1].Value != 3 {
		t.Errorf("samples since day 1 = %+v", got)
	}
}

func TestHealthSamplesValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewHealthService(newTestDB(t))
	steps := models.HealthMetric{Category: models.CategoryActivity, Metric: "steps"}
	v := func(f float64) *float64 { return &f }

	tests := []struct {
		name    string
		metric  models.HealthMetric
		samples []models.HealthSampleInput
		wantErr error
	}{
		{"unknown metric", models.HealthMetric{Category: models.CategoryActivity, Metric: "teleports"}, []models.HealthSampleInput{{Date: day(0), Value: v(1)}}, ErrUnknownHealthMetric},
		{"missing value", steps, []models.HealthSampleInput{{Date: day(0)}}, ErrInvalidEntry},
		{"infinite value", steps, []models.HealthSampleInput{{Date: day(0), Value: v(math.Inf(-1))}}, ErrInvalidEntry},
		{"zero date", steps, []models.HealthSampleInput{{Value: v(1)}}, ErrInvalidEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddSamples(ctx, tt.metric, tt.samples); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := svc.Samples(ctx, models.HealthMetric{Category: "mood", Metric: "happy"}, day(0)); !errors.Is(err, ErrUnknownHealthMetric) {
		t.Errorf("err = %v, want ErrUnknownHealthMetric", err)
	}
}
