package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ExportStorageService writes CSV exports to disk so they can be downloaded later
type ExportStorageService struct {
	csv        *CSVService
	storageDir string
}

// NewExportStorageService creates a new export storage service
func NewExportStorageService(csv *CSVService) *ExportStorageService {
	storageDir := os.Getenv("EXPORTS_DIR")
	if storageDir == "" {
		storageDir = "./data/exports"
	}

	// Log error but don't fail - will fail on actual writes
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		log.Printf("Warning: could not create exports directory: %v", err)
	}

	return &ExportStorageService{
		csv:        csv,
		storageDir: storageDir,
	}
}

// SaveExport writes the series as CSV and returns the generated file name
func (s *ExportStorageService) SaveExport(ctx context.Context, seriesID uint) (string, int, error) {
	var buf bytes.Buffer
	n, err := s.csv.Export(ctx, seriesID, &buf)
	if err != nil {
		return "", 0, err
	}

	filename := uuid.New().String() + ".csv"
	if err := os.WriteFile(filepath.Join(s.storageDir, filename), buf.Bytes(), 0644); err != nil {
		return "", 0, fmt.Errorf("failed to save export: %w", err)
	}

	log.Printf("Export storage: wrote %d entries of series %d to %s", n, seriesID, filename)
	return filename, n, nil
}

// GetStorageDir returns the storage directory path
func (s *ExportStorageService) GetStorageDir() string {
	return s.storageDir
}
