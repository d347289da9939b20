package server

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/luc4spas/erp-joy-maker/internal/calculator"
	"github.com/luc4spas/erp-joy-maker/internal/config"
	"github.com/luc4spas/erp-joy-maker/internal/importer"
	"github.com/luc4spas/erp-joy-maker/internal/parser"
	"github.com/luc4spas/erp-joy-maker/internal/storage"
	"github.com/luc4spas/erp-joy-maker/internal/store"
)

// OpenStore opens the configured database; sqlite without a DSN uses the data directory
func OpenStore(cfg *config.AppConfig) (*store.Store, error) {
	driver := cfg.Database.Driver
	if driver == "" {
		driver = store.DriverSQLite
	}

	var (
		st  *store.Store
		err error
	)
	if driver == store.DriverSQLite && cfg.Database.DSN == "" {
		if _, err := config.EnsureDataDir(cfg); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		st, err = store.New(config.DatabasePath(cfg))
	} else {
		st, err = store.Open(driver, cfg.Database.DSN)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	log.WithField("driver", driver).Info("database ready")
	return st, nil
}

// NewCoordinator import pipeline with the configured column spellings and archive bucket
func NewCoordinator(ctx context.Context, cfg *config.AppConfig, st *store.Store) (*importer.Coordinator, error) {
	calc := calculator.NewCalculator(parser.NewFieldMapper(cfg.ColumnAliases()), cfg.Rateio.CommissionRate)

	opts := storage.Options{
		Endpoint:  cfg.Storage.Endpoint,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		BaseURL:   cfg.Storage.BaseURL,
	}
	if !opts.Enabled() {
		return importer.NewCoordinator(st, calc, nil), nil
	}

	archive, err := storage.NewR2Client(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload archive: %w", err)
	}
	log.WithField("bucket", opts.Bucket).Info("upload archive enabled")
	return importer.NewCoordinator(st, calc, archive), nil
}
