package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pos_ledger/internal/config"
	"pos_ledger/internal/metrics"
	"pos_ledger/internal/sales"
	"pos_ledger/internal/sheets"
	"pos_ledger/internal/workbook"
)

// newStore builds the configured spreadsheet backend.
func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (sales.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSheets:
		return sheets.New(ctx, sheets.Options{
			BaseURL:         cfg.SheetsBaseURL,
			CredentialsJSON: []byte(cfg.CredentialsJSON),
			CredentialsFile: cfg.CredentialsFile,
			Timeout:         cfg.SheetsTimeout,
			Logger:          logger.Named("sheets"),
		})
	case config.DriverWorkbook:
		return workbook.New(cfg.WorkbookDir, logger.Named("workbook"))
	case config.DriverMemory:
		st := sales.NewLocalStorage()
		if err := workbook.ImportFile(cfg.ReferenceWorkbook, cfg.ReferenceSpreadsheetID, st); err != nil {
			return nil, fmt.Errorf("loading reference workbook: %w", err)
		}
		logger.Info("reference workbook loaded", zap.String("path", cfg.ReferenceWorkbook))
		return st, nil
	default:
		return nil, fmt.Errorf("%w: unknown store_driver %q", config.ErrInvalidConfig, cfg.StoreDriver)
	}
}

// newPriceResolver builds the resolver, cached when configured.
func newPriceResolver(cfg *config.Config, store sales.ValueReader) (*sales.PriceResolver, error) {
	layout, err := cfg.ReferenceLayout()
	if err != nil {
		return nil, err
	}
	reader := store
	if cfg.PriceCacheEnabled {
		cached, err := sales.NewCachedReader(store, cfg.PriceCacheSize, cfg.PriceCacheTTL)
		if err != nil {
			return nil, err
		}
		reader = cached
	}
	return sales.NewPriceResolver(reader, cfg.ReferenceSpreadsheetID, layout), nil
}

// newService wires store, metrics, resolver and service together.
func newService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sales.Service, *metrics.Manager, error) {
	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	m := metrics.NewManager()
	instrumented := metrics.InstrumentStore(store, m)

	prices, err := newPriceResolver(cfg, instrumented)
	if err != nil {
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	svc := sales.NewService(instrumented, cfg.LedgerSpreadsheetID, prices, logger.Named("sales"),
		sales.WithObserver(m),
		sales.WithLocation(loc),
	)
	return svc, m, nil
}
