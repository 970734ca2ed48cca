package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"stakeLedger/internal/ledger"
	"stakeLedger/internal/model"
	"stakeLedger/internal/prom"
	"stakeLedger/internal/storage"
)

// Config controls ingestion behavior.
type Config struct {
	BatchSize  int
	StateStore StateStore
}

// Result summarizes an ingestion run.
type Result struct {
	Lines        int
	Resumed      int
	Appended     int
	Duplicates   int
	LastSequence uint64
}

// Ingester appends decoded event records to a ledger store in batches.
type Ingester struct {
	cfg    Config
	store  ledger.Store
	logger *zap.Logger
}

func NewIngester(cfg Config, store ledger.Store, logger *zap.Logger) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	return &Ingester{cfg: cfg, store: store, logger: logger}
}

// Run reads EventRecord lines from r. Lines at or before the saved state are
// skipped; progress is saved after every committed batch.
func (i *Ingester) Run(ctx context.Context, r io.Reader) (Result, error) {
	var res Result
	if i.store == nil {
		return res, fmt.Errorf("store is nil")
	}

	var resumeAfter uint64
	if i.cfg.StateStore != nil {
		last, ok, err := i.cfg.StateStore.Load(ctx)
		if err != nil {
			return res, fmt.Errorf("load state: %w", err)
		}
		if ok {
			resumeAfter = last
			i.logger.Info("resume from state", zap.Uint64("last_line", last))
		}
	}

	batch := make([]model.Event, 0, i.cfg.BatchSize)
	var batchEnd uint64
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		out, err := i.store.Append(ctx, batch)
		if err != nil {
			return fmt.Errorf("append batch ending at line %d: %w", batchEnd, err)
		}
		res.Appended += out.Appended
		res.Duplicates += len(out.Duplicates)
		if out.LastSequence > 0 {
			res.LastSequence = out.LastSequence
		}
		prom.AddDuplicates(len(out.Duplicates))
		for _, ev := range batch {
			if ev.Meta().Sequence > 0 {
				prom.IncEventAppended(ev.TableName())
			}
		}
		for _, key := range out.Duplicates {
			i.logger.Debug("duplicate log skipped", zap.String("log", key.String()))
		}

		if i.cfg.StateStore != nil {
			if err := i.cfg.StateStore.Save(ctx, batchEnd); err != nil {
				return fmt.Errorf("save state: %w", err)
			}
		}
		i.logger.Info("batch committed",
			zap.Int("events", len(batch)),
			zap.Int("appended", out.Appended),
			zap.Int("duplicates", len(out.Duplicates)),
			zap.Uint64("line", batchEnd),
		)
		batch = batch[:0]
		return nil
	}

	err := storage.ScanJSONL(r, func(lineNo int, line []byte) error {
		res.Lines++
		if uint64(lineNo) <= resumeAfter {
			res.Resumed++
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var record model.EventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return fmt.Errorf("line %d: decode record: %w", lineNo, err)
		}
		ev, err := record.Unwrap()
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		batch = append(batch, ev)
		batchEnd = uint64(lineNo)

		if len(batch) >= i.cfg.BatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	if err := flush(); err != nil {
		return res, err
	}

	i.logger.Info("ingest complete",
		zap.Int("lines", res.Lines),
		zap.Int("resumed", res.Resumed),
		zap.Int("appended", res.Appended),
		zap.Int("duplicates", res.Duplicates),
		zap.Uint64("last_sequence", res.LastSequence),
	)
	return res, nil
}
