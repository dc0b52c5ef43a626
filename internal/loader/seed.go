// Package loader reads seed datasets and imports them into the record store.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"carbonintensity/internal/domain"
	"carbonintensity/internal/observability"
	"carbonintensity/internal/repository"
)

// Load reads a seed file, choosing the format by extension
func Load(path string) ([]domain.IntensityInput, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return nil, fmt.Errorf("unsupported seed format %q", filepath.Ext(path))
	}
}

// Seed imports the records in path. Intervals already stored are skipped,
// so seeding the same file twice inserts nothing the second time.
func Seed(ctx context.Context, importer repository.Importer, path string, logger *slog.Logger, metrics *observability.Metrics) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	inputs, err := Load(path)
	if err != nil {
		return 0, fmt.Errorf("load seed %s: %w", path, err)
	}

	inserted, err := importer.ImportRecords(ctx, inputs)
	if err != nil {
		metrics.RecordWrite("import", "error")
		return 0, fmt.Errorf("import seed %s: %w", path, err)
	}

	metrics.RecordWriteN("import", "ok", inserted)
	metrics.RecordWriteN("import", "duplicate", len(inputs)-inserted)

	logger.Info("seed imported", "path", path, "read", len(inputs), "inserted", inserted)
	return inserted, nil
}
