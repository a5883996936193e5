package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/grey280/trendlines/internal/api/handlers"
	"github.com/grey280/trendlines/internal/metrics"
	"github.com/grey280/trendlines/internal/services"
)

func SetupRouter(entryService *services.EntryService, chartService *services.ChartService, pointService *services.PointService, healthService *services.HealthService, csvService *services.CSVService, exportService *services.ExportStorageService, statsService *services.StatsService) *gin.Engine {
	router := gin.Default()
	router.Use(RequestID(), Metrics())

	// CORS configuration - allow origins from environment or use defaults
	config := cors.DefaultConfig()
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		config.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", requestIDHeader}
	config.ExposeHeaders = []string{requestIDHeader, "Content-Disposition"}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	// Initialize handlers
	seriesHandler := handlers.NewSeriesHandler(entryService, csvService, exportService)
	chartHandler := handlers.NewChartHandler(chartService, pointService)
	pointHandler := handlers.NewPointHandler(pointService, healthService)

	// Serve saved CSV exports
	if exportService != nil {
		router.Static("/exports", exportService.GetStorageDir())
	}

	importLimit := RateLimit(importRatePerMinute(), func() {
		metrics.CSVImportsTotal.WithLabelValues("rate_limited").Inc()
	})

	// API routes
	api := router.Group("/api")
	{
		// Series routes
		series := api.Group("/series")
		{
			series.GET("", seriesHandler.ListSeries)
			series.POST("", seriesHandler.CreateSeries)
			series.GET("/:id", seriesHandler.GetSeries)
			series.DELETE("/:id", seriesHandler.DeleteSeries)
			series.GET("/:id/entries", seriesHandler.ListEntries)
			series.POST("/:id/entries", seriesHandler.AddEntries)
			series.DELETE("/:id/entries", seriesHandler.DeleteEntries)
			series.GET("/:id/export", seriesHandler.DownloadCSV)
			series.POST("/:id/export", seriesHandler.SaveExport)
			series.POST("/:id/import", importLimit, seriesHandler.ImportCSV)
		}

		api.DELETE("/entries/:id", seriesHandler.DeleteEntry)

		// Chart routes
		charts := api.Group("/charts")
		{
			charts.GET("", chartHandler.ListCharts)
			charts.PUT("", chartHandler.SaveCharts)
			charts.POST("", chartHandler.AddChart)
			charts.GET("/:id", chartHandler.GetChart)
			charts.DELETE("/:id", chartHandler.DeleteChart)
			charts.GET("/:id/points", chartHandler.GetChartPoints)
		}

		api.POST("/points", pointHandler.GetPoints)

		// Health platform routes
		health := api.Group("/health")
		{
			health.GET("/metrics", pointHandler.ListHealthMetrics)
			health.POST("/samples", pointHandler.AddHealthSamples)
		}

		if statsService != nil {
			api.GET("/stats", func(c *gin.Context) {
				c.JSON(http.StatusOK, statsService.Last())
			})
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
