package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stakeLedger/internal/config"
	"stakeLedger/internal/model"
	"stakeLedger/internal/prom"
	"stakeLedger/internal/staking"
	"stakeLedger/internal/storage"
)

const decodeBatchSize = 256

func runDecode(cmd *cobra.Command, _ []string) (err error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDecode(cfgFile, cmd.Flags())
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

	decoder, err := staking.NewDecoder(staking.DecoderConfig{Factories: cfg.Factories})
	if err != nil {
		return err
	}

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	sink, err := storage.NewEventSink(storage.SinkConfig{
		Driver:  cfg.Sink,
		Path:    cfg.Out,
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
		TLS:     cfg.KafkaTLS,
	})
	if err != nil {
		return err
	}
	defer closeJoin(&err, "event sink", sink)

	errWriter, err := storage.NewJSONLWriter(cfg.Errors, false)
	if err != nil {
		return err
	}
	defer closeJoin(&err, "decode errors", errWriter)

	logger.Info("decode start",
		zap.String("in", cfg.In),
		zap.String("sink", cfg.Sink),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.Int("factories", len(cfg.Factories)),
	)

	var total, decoded, skipped, removed, failed int
	batch := make([]model.Event, 0, decodeBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := sink.PutEvents(ctx, batch); err != nil {
			return fmt.Errorf("write events: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	err = storage.ScanJSONL(inputFile, func(_ int, line []byte) error {
		total++

		var record model.LogRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			prom.IncDecodeFailure()
			writeDecodeError(errWriter, model.DecodeError{Error: err.Error()})
			return nil
		}
		if len(record.Topics) == 0 {
			failed++
			prom.IncDecodeFailure()
			writeDecodeError(errWriter, decodeErrorFromRecord(record, "", fmt.Errorf("missing topic0")))
			return nil
		}
		if !decoder.CanDecode(record.Topics[0]) {
			skipped++
			return nil
		}

		event, err := decoder.Decode(record)
		if errors.Is(err, staking.ErrRemovedLog) {
			removed++
			return nil
		}
		if err != nil {
			failed++
			prom.IncDecodeFailure()
			writeDecodeError(errWriter, decodeErrorFromRecord(record, decoder.EventName(record.Topics[0]), err))
			return nil
		}

		prom.IncEventDecoded(event.TableName())
		batch = append(batch, event)
		decoded++
		if len(batch) >= decodeBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	logger.Info("decode complete",
		zap.Int("total", total),
		zap.Int("decoded", decoded),
		zap.Int("skipped", skipped),
		zap.Int("removed", removed),
		zap.Int("failed", failed),
	)

	return nil
}

// closeJoin closes c and joins a close failure into *errp. Buffered sinks
// only flush on close, so the failure means output was lost.
func closeJoin(errp *error, what string, c io.Closer) {
	if cerr := c.Close(); cerr != nil {
		*errp = errors.Join(*errp, fmt.Errorf("close %s: %w", what, cerr))
	}
}

func decodeErrorFromRecord(record model.LogRecord, eventName string, err error) model.DecodeError {
	topic0 := ""
	if len(record.Topics) > 0 {
		topic0 = record.Topics[0]
	}

	return model.DecodeError{
		ChainID:     record.ChainID,
		BlockNumber: record.BlockNumber,
		TxHash:      record.TxHash,
		LogIndex:    record.LogIndex,
		Address:     record.Address,
		Topic0:      topic0,
		EventName:   eventName,
		Error:       err.Error(),
	}
}

func writeDecodeError(writer *storage.JSONLWriter, errRecord model.DecodeError) {
	if writer == nil {
		return
	}
	_ = writer.Write(errRecord)
}
