package main

import (
	"context"
	"fmt"

	"github.com/credlens/credlens/internal/config"
	"github.com/credlens/credlens/internal/engine"
	"github.com/credlens/credlens/internal/ingest"
	"github.com/credlens/credlens/internal/storage"
)

// openStore opens the SQLite report store configured for the CLI and runs
// migrations. The returned cleanup closes the connection.
func openStore(ctx context.Context, cfg config.Config) (*storage.ReportStore, func(), error) {
	store, err := storage.NewReportStore(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open report store: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to migrate report store: %w", err)
	}

	cleanup := func() { _ = store.Close() }
	return store, cleanup, nil
}

// buildExtractors assembles file extractors for whichever document paths
// were supplied.
func buildExtractors(statementPath, slipPath, taxPath string) []engine.Extractor {
	var extractors []engine.Extractor
	if statementPath != "" {
		extractors = append(extractors, ingest.LedgerFileExtractor{Path: statementPath})
	}
	if slipPath != "" {
		extractors = append(extractors, ingest.SalarySlipFileExtractor{Path: slipPath})
	}
	if taxPath != "" {
		extractors = append(extractors, ingest.TaxReturnFileExtractor{Path: taxPath})
	}
	return extractors
}
