package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stakeLedger/internal/config"
	"stakeLedger/internal/ledger"
	"stakeLedger/internal/ledger/postgres"
	"stakeLedger/internal/model"
)

func runSchema(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuery(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	printOnly, _ := cmd.Flags().GetBool("print")
	if printOnly {
		_, err := fmt.Fprint(os.Stdout, postgres.SchemaSQL(cfg.Schema))
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()
	store, err := postgres.NewStore(ctx, cfg.PGDSN, cfg.Schema)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	logger.Info("schema ready", zap.String("schema", cfg.Schema), zap.Int("tables", len(model.Tables())))
	return nil
}

type positionOutput struct {
	ledger.PositionView
	Stakes []model.EventRecord `json:"stakes,omitempty"`
}

func runPosition(cmd *cobra.Command, args []string) error {
	history, _ := cmd.Flags().GetBool("history")
	address := strings.ToLower(strings.TrimSpace(args[0]))

	return withReader(cmd, func(ctx context.Context, reader *ledger.Reader) (any, error) {
		view, err := reader.PositionSummary(ctx, address)
		if err != nil {
			return nil, err
		}
		out := positionOutput{PositionView: view}
		if !history {
			return out, nil
		}

		stakes, err := reader.StakesForPosition(ctx, address)
		if err != nil {
			return nil, err
		}
		for _, ev := range stakes {
			record, err := model.Wrap(ev)
			if err != nil {
				return nil, err
			}
			out.Stakes = append(out.Stakes, record)
		}
		return out, nil
	})
}

func runProvider(cmd *cobra.Command, args []string) error {
	identifier := strings.TrimSpace(args[0])

	return withReader(cmd, func(ctx context.Context, reader *ledger.Reader) (any, error) {
		return reader.ProviderState(ctx, identifier)
	})
}

func withReader(cmd *cobra.Command, fn func(context.Context, *ledger.Reader) (any, error)) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuery(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()
	store, err := postgres.NewStore(ctx, cfg.PGDSN, cfg.Schema)
	if err != nil {
		return err
	}
	defer store.Close()

	value, err := fn(ctx, ledger.NewReader(store, logger))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
