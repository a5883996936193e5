package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/grey280/trendlines/internal/database"
	"github.com/grey280/trendlines/internal/services"
)

var exportOut string

var importCmd = &cobra.Command{
	Use:   "import <series-id> <file>",
	Short: "Import a Value,Date CSV file into a series",
	Long: `Import reads a CSV file with a Value,Date header and RFC3339 dates.
The whole file is rejected if any row is malformed.`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export <series-id>",
	Short: "Export a series as Value,Date CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to this file instead of stdout")
}

func runImport(cmd *cobra.Command, args []string) error {
	seriesID, err := parseSeriesID(args[0])
	if err != nil {
		return err
	}

	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	db, entries, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close(db)

	n, err := services.NewCSVService(entries).Import(cmd.Context(), seriesID, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries into series %d\n", n, seriesID)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	seriesID, err := parseSeriesID(args[0])
	if err != nil {
		return err
	}

	db, entries, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close(db)

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	n, err := services.NewCSVService(entries).Export(cmd.Context(), seriesID, w)
	if err != nil {
		return err
	}
	if exportOut != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", n, exportOut)
	}
	return nil
}
