package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grey280/trendlines/internal/api"
	"github.com/grey280/trendlines/internal/database"
	"github.com/grey280/trendlines/internal/services"
)

func main() {
	// Database path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./trendlines.db"
	}

	// Initialize database
	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close(db)

	// Initialize stores
	entryService := services.NewEntryService(db)
	chartService := services.NewChartService(db)
	healthService := services.NewHealthService(db)

	// Point resolution with cache invalidation on every write
	pointService := services.NewPointService(entryService, healthService)
	entryService.Subscribe(pointService.InvalidateSeries)
	healthService.Subscribe(pointService.InvalidateHealth)

	// CSV import/export
	csvService := services.NewCSVService(entryService)
	exportService := services.NewExportStorageService(csvService)

	// Stats service for the database size gauges
	statsService := services.NewStatsService(db)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start stats service in background with panic recovery
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("PANIC in stats service: %v - restarting in 30 seconds", r)
					}
				}()
				statsService.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				return // Graceful shutdown
			case <-time.After(30 * time.Second):
				log.Println("Stats service restarting after panic recovery...")
			}
		}
	}()

	// Setup router
	router := api.SetupRouter(entryService, chartService, pointService, healthService, csvService, exportService, statsService)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop the stats service
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
