package indexer

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"stakeLedger/internal/model"
	"stakeLedger/internal/prom"
	"stakeLedger/internal/storage"
)

// LogSource is the subset of the chain client the runner needs.
type LogSource interface {
	GetChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// RunConfig holds runtime settings for the indexer.
type RunConfig struct {
	FromBlock         uint64
	ToBlock           uint64
	Confirmations     uint64
	Addresses         []common.Address
	Topic0            []common.Hash
	BatchSize         uint64
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Runner streams logs from the chain and writes them to storage.
type Runner struct {
	cfg        RunConfig
	chain      LogSource
	storage    storage.Storage
	logger     *zap.Logger
	checkpoint *CheckpointStore
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, chainClient LogSource, storageSink storage.Storage, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		chain:      chainClient,
		storage:    storageSink,
		logger:     logger,
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
}

// Run executes the indexing loop.
func (r *Runner) Run(ctx context.Context) error {
	switch {
	case r.chain == nil:
		return fmt.Errorf("chain client is nil")
	case r.storage == nil:
		return fmt.Errorf("storage is nil")
	case r.cfg.BatchSize == 0:
		return fmt.Errorf("batch size must be greater than zero")
	case len(r.cfg.Addresses) == 0:
		return fmt.Errorf("at least one address is required")
	}

	id, err := r.chain.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !id.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", id)
	}
	chainID := id.Uint64()

	from, to, err := r.window(ctx, chainID)
	if err != nil {
		return err
	}
	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}
	for _, br := range ranges {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.syncRange(ctx, chainID, br); err != nil {
			return err
		}
	}
	return nil
}

// window resolves the block window to sync: the configured start or the
// block after the checkpoint, up to the configured end or the head minus
// the confirmation depth. An empty window is returned as from > to.
func (r *Runner) window(ctx context.Context, chainID uint64) (uint64, uint64, error) {
	from, to := r.cfg.FromBlock, r.cfg.ToBlock
	if to == 0 {
		head, err := retryValue(ctx, r, "latest block", func(ctx context.Context) (uint64, error) {
			return r.chain.LatestBlockNumber(ctx)
		})
		if err != nil {
			return 0, 0, fmt.Errorf("get latest block: %w", err)
		}
		if head < r.cfg.Confirmations {
			r.logger.Info("chain shorter than confirmation depth", zap.Uint64("latest", head))
			return 1, 0, nil
		}
		to = head - r.cfg.Confirmations
	}

	cp, ok, err := r.checkpoint.Load()
	if err != nil || !ok {
		return from, to, err
	}
	if cp.ChainID != 0 && cp.ChainID != chainID {
		return 0, 0, fmt.Errorf("checkpoint %s belongs to chain %d, connected to %d", r.cfg.CheckpointPath, cp.ChainID, chainID)
	}
	if cp.LastProcessedBlock >= from {
		if cp.LastProcessedBlock == ^uint64(0) {
			return 1, 0, nil
		}
		from = cp.LastProcessedBlock + 1
		r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", cp.LastProcessedBlock), zap.Uint64("from", from))
	}
	return from, to, nil
}

// syncRange fetches one batch, drops removed and repeated logs, writes the
// rest and then advances the checkpoint.
func (r *Runner) syncRange(ctx context.Context, chainID uint64, br BlockRange) error {
	r.logger.Debug("fetch logs", zap.Uint64("from", br.From), zap.Uint64("to", br.To))

	logs, err := retryValue(ctx, r, "filter logs", func(ctx context.Context) ([]types.Log, error) {
		return r.chain.FilterLogs(ctx, br.From, br.To, r.cfg.Addresses, r.cfg.Topic0)
	})
	if err != nil {
		return fmt.Errorf("filter logs %d-%d: %w", br.From, br.To, err)
	}

	ingestedAt := time.Now().UTC()
	seen := make(map[model.LogKey]struct{}, len(logs))
	records := make([]model.LogRecord, 0, len(logs))
	var removed, duplicates int
	for _, log := range logs {
		if log.Removed {
			removed++
			continue
		}
		key := model.LogKey{TxHash: log.TxHash.Hex(), LogIndex: uint32(log.Index)}
		if _, dup := seen[key]; dup {
			duplicates++
			continue
		}
		seen[key] = struct{}{}

		ts, err := retryValue(ctx, r, "block timestamp", func(ctx context.Context) (uint64, error) {
			return r.chain.BlockTimestamp(ctx, log.BlockNumber)
		})
		if err != nil {
			return fmt.Errorf("block timestamp %d: %w", log.BlockNumber, err)
		}
		records = append(records, logRecord(chainID, log, ts, ingestedAt))
	}

	if err := r.storage.PutLogBatch(records); err != nil {
		return fmt.Errorf("store logs: %w", err)
	}
	prom.AddLogsFetched(len(records))

	if err := r.checkpoint.Save(chainID, br.To); err != nil {
		return err
	}
	prom.SetLastBlock(br.To)

	r.logger.Info("batch complete",
		zap.Uint64("from", br.From),
		zap.Uint64("to", br.To),
		zap.Int("logs", len(records)),
		zap.Int("removed", removed),
		zap.Int("duplicates", duplicates),
	)
	return nil
}

// retryValue runs fn under the runner's retry policy, logging each failure.
func retryValue[T any](ctx context.Context, r *Runner, op string, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			r.logger.Warn("rpc call failed", zap.String("op", op), zap.Error(err))
			return err
		}
		out = v
		return nil
	})
	return out, err
}
