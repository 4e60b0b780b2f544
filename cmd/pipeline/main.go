// cmd/pipeline/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/cleaner"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/config"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/connector"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/logging"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/masker"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/pipeline"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/source"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/store"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/tracking"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/validator"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/warehouse"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pipeline failed:", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	artifacts, closeStore, err := buildArtifactStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sfDB, err := connector.OpenSnowflake(ctx, cfg.Snowflake, logger)
	if err != nil {
		return err
	}
	defer sfDB.Close()

	wh, err := warehouse.NewSnowflake(sfDB, artifacts, cfg.Snowflake, logger)
	if err != nil {
		return err
	}

	sources, err := buildSources(cfg, logger)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(
		sources,
		artifacts,
		wh,
		validator.New(logger),
		masker.New(cfg.MaskingSalt, logger),
		logger,
	).
		WithRecordsPerSource(cfg.RecordsPerSource).
		WithWorkerCount(cfg.WorkerPoolSize)

	if cfg.NormalizeBeforeValidate {
		runner = runner.WithNormalization(cleaner.New(logger))
	}

	run, runErr := runner.Run(ctx)

	if cfg.TrackingDBPath != "" {
		if history, err := tracking.Open(cfg.TrackingDBPath, logger); err != nil {
			logger.Warn("Could not open run history", zap.Error(err))
		} else {
			if err := history.SaveRun(ctx, run); err != nil {
				logger.Warn("Could not save run history", zap.Error(err))
			}
			history.Close()
		}
	}

	summary, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		logger.Warn("Could not render run summary", zap.Error(err))
	} else {
		fmt.Println(string(summary))
	}

	return runErr
}

func buildArtifactStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.ArtifactStore, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemory(logger), func() {}, nil
	default:
		db, err := connector.OpenPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		pg, err := store.NewPostgres(db, logger)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return pg, func() { db.Close() }, nil
	}
}

func buildSources(cfg *config.Config, logger *zap.Logger) ([]source.Source, error) {
	sources := make([]source.Source, 0, len(cfg.Sources))
	for _, name := range cfg.Sources {
		switch name {
		case "faker":
			sources = append(sources, source.NewSynthetic(name, 0, logger))
		case "api":
			sources = append(sources, source.NewAPI(name, cfg.APIBaseURL, logger))
		case "csv":
			sources = append(sources, source.NewCSV(name, cfg.CSVPath, logger))
		default:
			return nil, fmt.Errorf("unknown pipeline source %q", name)
		}
	}
	return sources, nil
}
