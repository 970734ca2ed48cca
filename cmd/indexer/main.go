package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stakeLedger/internal/chain"
	"stakeLedger/internal/config"
	"stakeLedger/internal/indexer"
	"stakeLedger/internal/prom"
	"stakeLedger/internal/staking"
	"stakeLedger/internal/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Staking ledger indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch raw staking logs into JSONL",
		RunE:  runIndexer,
	}

	runCmd.Flags().String("rpc", "", "Ethereum RPC URL")
	runCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	runCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	runCmd.Flags().Uint64("confirmations", 0, "blocks to stay behind the head when --to is 0")
	runCmd.Flags().StringSlice("address", nil, "staking, factory and vault addresses (comma-separated); vault events are only fetched for listed vaults")
	runCmd.Flags().StringSlice("topic0", nil, "topic0 signatures (comma-separated), defaults to every staking event")
	runCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	runCmd.Flags().String("out", "./data/logs.jsonl", "output JSONL path")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode raw logs into ledger events",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("in", "", "input raw logs JSONL")
	decodeCmd.Flags().String("sink", "jsonl", "event sink (jsonl, kafka, stdio)")
	decodeCmd.Flags().String("out", "./data/events.jsonl", "output events JSONL for the jsonl sink")
	decodeCmd.Flags().StringSlice("kafka-brokers", nil, "kafka brokers for the kafka sink")
	decodeCmd.Flags().String("kafka-topic", "stake-ledger-events", "kafka topic for the kafka sink")
	decodeCmd.Flags().Bool("kafka-tls", false, "use TLS for kafka")
	decodeCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	decodeCmd.Flags().String("factory-map", "", "factory address -> position type (comma-separated addr=MATP|LATP|NCATP)")
	decodeCmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Append decoded events to the ledger",
		RunE:  runIngest,
	}

	ingestCmd.Flags().String("in", "", "input events JSONL")
	ingestCmd.Flags().String("driver", config.DriverPostgres, "ledger driver (postgres, memory)")
	ingestCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	ingestCmd.Flags().String("schema", "", "Postgres schema for ledger tables")
	ingestCmd.Flags().Int("batch-size", 500, "events per append")
	ingestCmd.Flags().String("state-file", "", "optional local state file; defaults to the indexer_state table")
	ingestCmd.Flags().Bool("ensure-schema", false, "create ledger tables before ingesting")
	ingestCmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address")
	ingestCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(ingestCmd)

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Create the ledger tables",
		RunE:  runSchema,
	}
	schemaCmd.Flags().Bool("print", false, "print the DDL instead of applying it")
	addQueryFlags(schemaCmd)
	root.AddCommand(schemaCmd)

	positionCmd := &cobra.Command{
		Use:   "position <address>",
		Short: "Show the derived state of a position",
		Args:  cobra.ExactArgs(1),
		RunE:  runPosition,
	}
	positionCmd.Flags().Bool("history", false, "include stake events")
	addQueryFlags(positionCmd)
	root.AddCommand(positionCmd)

	providerCmd := &cobra.Command{
		Use:   "provider <identifier>",
		Short: "Show the derived state of a provider",
		Args:  cobra.ExactArgs(1),
		RunE:  runProvider,
	}
	addQueryFlags(providerCmd)
	root.AddCommand(providerCmd)

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the old indexer schema against the ledger schema",
		RunE:  runCompare,
	}

	compareCmd.Flags().String("old-database-url", "", "old indexer database (env OLD_DATABASE_URL)")
	compareCmd.Flags().String("new-database-url", "", "ledger database (env NEW_DATABASE_URL or DATABASE_URL)")
	compareCmd.Flags().String("network-schema", config.DefaultNetworkSchema, "ledger schema (env NETWORK_SCHEMA)")
	compareCmd.Flags().String("old-schema", config.DefaultOldSchema, "old indexer schema (env OLD_SCHEMA)")
	compareCmd.Flags().StringSlice("tables", nil, "only compare these tables")
	compareCmd.Flags().Int("examples", config.DefaultExamples, "mismatch examples shown per table")
	compareCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(compareCmd)

	return root
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().String("schema", "", "Postgres schema for ledger tables")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func runIndexer(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	addresses, err := indexer.ParseAddresses(cfg.Addresses)
	if err != nil {
		return err
	}
	if len(addresses) == 0 {
		return fmt.Errorf("address list is required")
	}

	topic0, err := indexer.ParseTopic0(cfg.Topic0)
	if err != nil {
		return err
	}
	if len(topic0) == 0 {
		decoder, err := staking.NewDecoder(staking.DecoderConfig{})
		if err != nil {
			return err
		}
		topic0 = decoder.Topics()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := startMetrics(cfg.MetricsAddr, logger)
	defer stopMetrics(metrics)

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	storageSink := storage.NewJsonlStorage(cfg.Out)

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:         cfg.FromBlock,
		ToBlock:           cfg.ToBlock,
		Confirmations:     cfg.Confirmations,
		Addresses:         addresses,
		Topic0:            topic0,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, chainClient, storageSink, logger)

	logger.Info("indexer start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Uint64("confirmations", cfg.Confirmations),
		zap.Int("addresses", len(addresses)),
		zap.Int("topic0", len(topic0)),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("out", cfg.Out),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	return runner.Run(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func startMetrics(addr string, logger *zap.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	prom.Init()
	logger.Info("serving metrics", zap.String("addr", addr))
	return prom.Serve(addr, logger)
}

func stopMetrics(srv *http.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
