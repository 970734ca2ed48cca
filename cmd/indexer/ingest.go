package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stakeLedger/internal/config"
	"stakeLedger/internal/ingest"
	"stakeLedger/internal/ledger"
	"stakeLedger/internal/ledger/postgres"
)

const ingestStateName = "ingest"

func runIngest(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadIngest(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := startMetrics(cfg.MetricsAddr, logger)
	defer stopMetrics(metrics)

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	var (
		store      ledger.Store
		stateStore ingest.StateStore
	)

	switch cfg.Driver {
	case config.DriverMemory:
		mem := ledger.NewMemoryStore()
		store = mem
		stateStore = &ingest.DBStateStore{Backend: mem, Name: ingestStateName}
	default:
		pg, err := postgres.NewStore(ctx, cfg.PGDSN, cfg.Schema)
		if err != nil {
			return err
		}
		defer pg.Close()

		if cfg.EnsureSchema {
			if err := pg.EnsureSchema(ctx); err != nil {
				return err
			}
		}
		store = pg
		stateStore = &ingest.DBStateStore{Backend: pg, Name: ingestStateName}
	}

	if cfg.StateFile != "" {
		stateStore = &ingest.FileStateStore{Path: cfg.StateFile}
	}

	logger.Info("ingest start",
		zap.String("in", cfg.In),
		zap.String("driver", cfg.Driver),
		zap.String("schema", cfg.Schema),
		zap.Int("batch_size", cfg.BatchSize),
		zap.String("state_file", cfg.StateFile),
	)

	ingester := ingest.NewIngester(ingest.Config{
		BatchSize:  cfg.BatchSize,
		StateStore: stateStore,
	}, store, logger)

	result, err := ingester.Run(ctx, inputFile)
	if err != nil {
		return err
	}

	logger.Info("ingest complete",
		zap.Int("lines", result.Lines),
		zap.Int("resumed", result.Resumed),
		zap.Int("appended", result.Appended),
		zap.Int("duplicates", result.Duplicates),
		zap.Uint64("last_sequence", result.LastSequence),
	)

	return nil
}
