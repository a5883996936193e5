package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/grey280/trendlines/internal/aggregate"
	"github.com/grey280/trendlines/internal/database"
	"github.com/grey280/trendlines/internal/models"
	"github.com/grey280/trendlines/internal/services"
)

var (
	pointsMode   string
	pointsMetric string
	pointsDays   int
	pointsJSON   bool
)

var pointsCmd = &cobra.Command{
	Use:   "points [series-id]",
	Short: "Print one aggregated point per day for a series or health metric",
	Args: func(cmd *cobra.Command, args []string) error {
		if pointsMetric != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runPoints,
}

func init() {
	pointsCmd.Flags().StringVar(&pointsMode, "mode", string(models.ModeSum), "Aggregation: count, sum, average, minMax")
	pointsCmd.Flags().StringVar(&pointsMetric, "metric", "", "Health metric as category.metric, instead of a series")
	pointsCmd.Flags().IntVar(&pointsDays, "days", aggregate.DefaultWindowDays, "Number of days ending today")
	pointsCmd.Flags().BoolVar(&pointsJSON, "json", false, "Print the series as JSON")
}

func runPoints(cmd *cobra.Command, args []string) error {
	if pointsDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	var key models.SourceKey
	var mode models.AggregationMode
	if pointsMetric != "" {
		metric, err := models.ParseHealthMetric(pointsMetric)
		if err != nil {
			return err
		}
		info, _ := models.LookupHealthMetric(metric)
		key, mode = models.HealthSource(metric), info.Mode
	} else {
		seriesID, err := parseSeriesID(args[0])
		if err != nil {
			return err
		}
		mode, err = models.ParseAggregationMode(pointsMode)
		if err != nil {
			return err
		}
		key = models.SeriesSource(seriesID, mode)
	}

	db, entries, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close(db)

	if key.Kind == models.SourceEntries {
		if _, err := entries.GetSeries(cmd.Context(), key.SeriesID); err != nil {
			return err
		}
	}

	points := services.NewPointService(entries, services.NewHealthService(db))
	series, err := points.Points(cmd.Context(), key, aggregate.LastDays(pointsDays, time.Now()))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if pointsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(series)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if mode.Ranged() {
		fmt.Fprintln(w, "DATE\tMIN\tMAX")
		for _, p := range series.Points {
			fmt.Fprintf(w, "%s\t%g\t%g\n", p.Date.Format("2006-01-02"), p.Low(), p.High())
		}
	} else {
		fmt.Fprintln(w, "DATE\tVALUE")
		for _, p := range series.Points {
			fmt.Fprintf(w, "%s\t%g\n", p.Date.Format("2006-01-02"), p.Value)
		}
	}
	fmt.Fprintf(w, "range\t%g\t%g\n", series.Min, series.Max)
	return w.Flush()
}
