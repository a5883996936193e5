package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/grey280/trendlines/internal/database"
)

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "List, create and delete series",
}

var seriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all series with their entry counts",
	Args:  cobra.NoArgs,
	RunE:  runSeriesList,
}

var seriesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty series",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSeriesCreate,
}

var seriesDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete series with their entries and charts",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSeriesDelete,
}

func init() {
	seriesCmd.AddCommand(seriesListCmd)
	seriesCmd.AddCommand(seriesCreateCmd)
	seriesCmd.AddCommand(seriesDeleteCmd)
}

func runSeriesList(cmd *cobra.Command, args []string) error {
	db, entries, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close(db)

	summaries, err := entries.ListSeries(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No series.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tENTRIES\tLAST ENTRY")
	for _, s := range summaries {
		last := "-"
		if s.LastEntry != nil {
			last = s.LastEntry.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", s.ID, s.Name, s.EntryCount, last)
	}
	return w.Flush()
}

func runSeriesCreate(cmd *cobra.Command, args []string) error {
	db, entries, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close(db)

	series, err := entries.CreateSeries(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created series %d: %s\n", series.ID, series.Name)
	return nil
}

func runSeriesDelete(cmd *cobra.Command, args []string) error {
	ids := make([]uint, 0, len(args))
	for _, arg := range args {
		id, err := parseSeriesID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	db, entries, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close(db)

	deleted, err := entries.DeleteSeriesBatch(cmd.Context(), ids)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d of %d series\n", deleted, len(ids))
	return nil
}
