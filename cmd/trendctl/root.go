package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/grey280/trendlines/internal/database"
	"github.com/grey280/trendlines/internal/services"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "trendctl",
	Short: "trendctl manages a Trendlines database from the command line",
	Long: `trendctl works directly on the SQLite file used by the Trendlines server.
It can list and edit series, move entries in and out as CSV and print
aggregated points.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDB := os.Getenv("DB_PATH")
	if defaultDB == "" {
		defaultDB = "./trendlines.db"
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "Path to the SQLite database")

	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(pointsCmd)
}

// openStore opens the database and returns it with an entry store on top.
// Callers close the database when done.
func openStore() (*gorm.DB, *services.EntryService, error) {
	db, err := database.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return db, services.NewEntryService(db), nil
}

func parseSeriesID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid series id %q", s)
	}
	return uint(id), nil
}
