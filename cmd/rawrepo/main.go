// Command rawrepo runs the rawrepo cataloging update service.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/blob/s3"
	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/codec/marcxchange"
	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/config/file"
	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/rules/native"
	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/rawrepo-update/internal/adapters/driving/cli"
	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
	"github.com/custodia-labs/rawrepo-update/internal/core/services"
	"github.com/custodia-labs/rawrepo-update/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	cli.SetVersion(version)

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		// Leave the settings commands usable so the config can be repaired.
		logger.Error("invalid settings in %s: %v", configStore.Path(), err)
		cli.SetServices(cli.Services{Settings: settingsService})
		return cli.Execute()
	}

	store, holdings, closer, err := openStorage(ctx, settings.Storage)
	if err != nil {
		return err
	}
	defer closer.Close()

	rawRepo := services.NewRawRepo(store, marcxchange.NewCodec())
	rules := native.New(native.Config{
		ClassificationFields: settings.Rules.ClassificationFields,
		DBCEnrichment:        settings.Rules.DBCEnrichment,
	})
	metrics := prometheus.New()
	updater := services.NewUpdater(rawRepo, holdings, rules, metrics, settings.Update.Provider)

	readiness := services.NewReadiness(rawRepo, rules)
	if err := readiness.Warmup(ctx); err != nil {
		logger.Error("warmup failed: %v", err)
	}

	var blobs driven.BlobSource
	source, err := s3.New(ctx, s3.Config{
		Region:    settings.S3.Region,
		Endpoint:  settings.S3.Endpoint,
		PathStyle: settings.S3.PathStyle,
	})
	if err != nil {
		logger.Warn("object storage unavailable: %v", err)
	} else {
		blobs = source
	}

	cli.SetServices(cli.Services{
		Update:    updater,
		Records:   services.NewRecordService(rawRepo),
		Import:    services.NewImportService(updater, settings.Import.Rate, settings.Import.Burst),
		Holdings:  services.NewHoldingsService(holdings),
		Settings:  settingsService,
		Readiness: readiness,
		Blobs:     blobs,
		Metrics:   metrics.Handler(),
	})
	return cli.Execute()
}

// openStorage opens the record and holdings stores for the configured driver.
func openStorage(ctx context.Context, cfg domain.StorageSettings) (driven.RecordStore, driven.HoldingsStore, io.Closer, error) {
	switch cfg.Driver {
	case domain.StorageMemory:
		return memory.NewRecordStore(), memory.NewHoldingsStore(), io.NopCloser(nil), nil
	case domain.StoragePostgres:
		db, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening postgres: %w", err)
		}
		return db.RecordStore(), db.HoldingsStore(), db, nil
	default:
		db, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening sqlite: %w", err)
		}
		return db.RecordStore(), db.HoldingsStore(), db, nil
	}
}
