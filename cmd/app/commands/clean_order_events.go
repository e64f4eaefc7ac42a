package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/allisson/order-guard/internal/app"
	"github.com/allisson/order-guard/internal/config"
	"github.com/allisson/order-guard/internal/guard/usecase"
)

// RunCleanOrderEvents deletes order events older than the specified number of
// days. Supports dry-run mode to preview deletion count and both text/JSON
// output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanOrderEvents(ctx context.Context, days int, dryRun bool, format string) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg, "")

	// Get logger from container
	logger := container.Logger()

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get maintenance use case from container
	maintenance, err := container.MaintenanceUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize maintenance use case: %w", err)
	}

	return runCleanOrderEvents(ctx, maintenance, logger, os.Stdout, days, dryRun, format)
}

// runCleanOrderEvents executes the retention pass with injected dependencies.
func runCleanOrderEvents(
	ctx context.Context,
	maintenance usecase.MaintenanceUseCase,
	logger *slog.Logger,
	w io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	// Validate parameters
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	logger.Info("cleaning order events",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	// Execute deletion or count operation
	count, err := maintenance.DeleteOlderThan(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to delete order events: %w", err)
	}

	// Output result based on format
	if format == "json" {
		outputCleanJSON(w, count, days, dryRun)
	} else {
		outputCleanText(w, count, days, dryRun)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

// outputCleanText outputs the result in human-readable text format.
func outputCleanText(w io.Writer, count int64, days int, dryRun bool) {
	if dryRun {
		fmt.Fprintf(w, "Dry-run mode: Would delete %d order event(s) older than %d day(s)\n", count, days)
	} else {
		fmt.Fprintf(w, "Successfully deleted %d order event(s) older than %d day(s)\n", count, days)
	}
}

// outputCleanJSON outputs the result in JSON format for machine consumption.
func outputCleanJSON(w io.Writer, count int64, days int, dryRun bool) {
	result := map[string]interface{}{
		"count":   count,
		"days":    days,
		"dry_run": dryRun,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(w, string(jsonBytes))
}
