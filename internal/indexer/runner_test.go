package indexer

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"stakeLedger/internal/model"
)

type fakeChain struct {
	chainID    int64
	latest     uint64
	logs       []types.Log
	failFilter int
	calls      []BlockRange
}

func (f *fakeChain) GetChainID(context.Context) (*big.Int, error) {
	return big.NewInt(f.chainID), nil
}

func (f *fakeChain) LatestBlockNumber(context.Context) (uint64, error) {
	return f.latest, nil
}

func (f *fakeChain) BlockTimestamp(_ context.Context, number uint64) (uint64, error) {
	return 1_700_000_000 + number, nil
}

func (f *fakeChain) FilterLogs(_ context.Context, from, to uint64, _ []common.Address, _ []common.Hash) ([]types.Log, error) {
	if f.failFilter > 0 {
		f.failFilter--
		return nil, errors.New("rate limited")
	}
	f.calls = append(f.calls, BlockRange{From: from, To: to})
	var out []types.Log
	for _, l := range f.logs {
		if l.BlockNumber >= from && l.BlockNumber <= to {
			out = append(out, l)
		}
	}
	return out, nil
}

type memStorage struct {
	records []model.LogRecord
}

func (m *memStorage) PutLogBatch(logs []model.LogRecord) error {
	m.records = append(m.records, logs...)
	return nil
}

func testLog(block uint64, tx string, index uint, removed bool) types.Log {
	return types.Log{
		Address:     common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Topics:      []common.Hash{common.HexToHash("0x01")},
		BlockNumber: block,
		TxHash:      common.HexToHash(tx),
		Index:       index,
		Removed:     removed,
	}
}

func TestRunnerSkipsRemovedAndDuplicateLogs(t *testing.T) {
	chain := &fakeChain{
		chainID:    11155111,
		latest:     20,
		failFilter: 1,
		logs: []types.Log{
			testLog(10, "0xaa", 0, false),
			testLog(10, "0xaa", 0, false),
			testLog(11, "0xbb", 1, true),
			testLog(12, "0xcc", 2, false),
		},
	}
	sink := &memStorage{}
	checkpoint := filepath.Join(t.TempDir(), "checkpoint.json")

	runner := NewRunner(RunConfig{
		FromBlock:         10,
		ToBlock:           13,
		Addresses:         []common.Address{common.HexToAddress("0x1111111111111111111111111111111111111111")},
		BatchSize:         2,
		CheckpointPath:    checkpoint,
		CheckpointEnabled: true,
		MaxRetries:        2,
		RetryBackoff:      time.Millisecond,
	}, chain, sink, nil)

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(sink.records))
	}
	if sink.records[0].Timestamp != 1_700_000_010 || sink.records[1].LogIndex != 2 {
		t.Fatalf("unexpected records: %+v", sink.records)
	}

	cp, ok, err := NewCheckpointStore(checkpoint, true).Load()
	if err != nil || !ok {
		t.Fatalf("load checkpoint: ok=%v err=%v", ok, err)
	}
	if cp.LastProcessedBlock != 13 || cp.ChainID != 11155111 {
		t.Fatalf("unexpected checkpoint: %+v", cp)
	}
}

func TestRunnerResumesFromCheckpoint(t *testing.T) {
	checkpoint := filepath.Join(t.TempDir(), "checkpoint.json")
	if err := NewCheckpointStore(checkpoint, true).Save(1, 15); err != nil {
		t.Fatalf("save: %v", err)
	}

	chain := &fakeChain{chainID: 1, latest: 30}
	runner := NewRunner(RunConfig{
		FromBlock:         10,
		Confirmations:     10,
		Addresses:         []common.Address{common.HexToAddress("0x1111111111111111111111111111111111111111")},
		BatchSize:         100,
		CheckpointPath:    checkpoint,
		CheckpointEnabled: true,
	}, chain, &memStorage{}, nil)

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(chain.calls) != 1 || chain.calls[0] != (BlockRange{From: 16, To: 20}) {
		t.Fatalf("unexpected fetch ranges: %+v", chain.calls)
	}
}

func TestRunnerRejectsForeignCheckpoint(t *testing.T) {
	checkpoint := filepath.Join(t.TempDir(), "checkpoint.json")
	if err := NewCheckpointStore(checkpoint, true).Save(56, 15); err != nil {
		t.Fatalf("save: %v", err)
	}

	runner := NewRunner(RunConfig{
		FromBlock:         10,
		ToBlock:           20,
		Addresses:         []common.Address{common.HexToAddress("0x1111111111111111111111111111111111111111")},
		BatchSize:         100,
		CheckpointPath:    checkpoint,
		CheckpointEnabled: true,
	}, &fakeChain{chainID: 1}, &memStorage{}, nil)

	if err := runner.Run(context.Background()); err == nil {
		t.Fatalf("expected chain id mismatch error")
	}
}

func TestParseAddressesDedupes(t *testing.T) {
	addrs, err := ParseAddresses([]string{
		"0x1111111111111111111111111111111111111111",
		" 0x1111111111111111111111111111111111111111 ",
		"",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(addrs) != 1 {
		t.Fatalf("expected 1 address, got %d", len(addrs))
	}
	if _, err := ParseAddresses([]string{"0x12"}); err == nil {
		t.Fatalf("expected invalid address error")
	}
	if _, err := ParseTopic0([]string{"0x01"}); err == nil {
		t.Fatalf("expected invalid topic length error")
	}
}
