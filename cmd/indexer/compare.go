package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stakeLedger/internal/compare"
	"stakeLedger/internal/compare/pgsource"
	"stakeLedger/internal/config"
)

const compareUsage = `usage: indexer compare
  OLD_DATABASE_URL   old indexer database (required)
  NEW_DATABASE_URL   ledger database, DATABASE_URL is used when unset (required)
  NETWORK_SCHEMA     ledger schema (default sepolia)
  OLD_SCHEMA         old indexer schema (default public)
`

func runCompare(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadCompare(cfgFile, cmd.Flags())
	if errors.Is(err, config.ErrMissingDatabaseURL) {
		fmt.Fprint(os.Stderr, compareUsage)
		return err
	}
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	plans, err := compare.BuildPlans(cfg.Tables, cfg.OldSchema, cfg.NetworkSchema)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	oldSrc, err := pgsource.Connect(ctx, cfg.OldDatabaseURL)
	if err != nil {
		return fmt.Errorf("old database: %w", err)
	}
	defer oldSrc.Close(context.Background())

	newSrc, err := pgsource.Connect(ctx, cfg.NewDatabaseURL)
	if err != nil {
		return fmt.Errorf("new database: %w", err)
	}
	defer newSrc.Close(context.Background())

	logger.Info("compare start",
		zap.String("old_schema", cfg.OldSchema),
		zap.String("network_schema", cfg.NetworkSchema),
		zap.Int("tables", len(plans)),
	)

	report, err := compare.NewComparator(oldSrc, newSrc, logger).Run(ctx, plans)
	report.Print(os.Stdout, cfg.Examples)
	return err
}
