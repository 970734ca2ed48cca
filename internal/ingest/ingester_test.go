package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"stakeLedger/internal/ledger"
	"stakeLedger/internal/model"
)

func recordLine(t *testing.T, ev model.Event) string {
	t.Helper()
	record, err := model.Wrap(ev)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func deposit(tx string, logIndex uint32, block uint64) *model.Deposit {
	return &model.Deposit{
		ID:                model.EventID(tx, logIndex),
		AttesterAddress:   "0xaaaa",
		WithdrawerAddress: "0xbbbb",
		Amount:            "100",
		Provenance:        model.Provenance{BlockNumber: block, TxHash: tx, LogIndex: logIndex, Timestamp: 1700000000 + block},
	}
}

func slash(tx string, logIndex uint32, block uint64) *model.Slashed {
	return &model.Slashed{
		ID:              model.EventID(tx, logIndex),
		AttesterAddress: "0xaaaa",
		Amount:          "5",
		Provenance:      model.Provenance{BlockNumber: block, TxHash: tx, LogIndex: logIndex, Timestamp: 1700000000 + block},
	}
}

func TestIngesterAppendsAndCountsDuplicates(t *testing.T) {
	lines := []string{
		recordLine(t, deposit("0x01", 0, 10)),
		recordLine(t, slash("0x02", 1, 11)),
		"",
		// Same log as the first line under a different table.
		recordLine(t, slash("0X01", 0, 10)),
	}
	store := ledger.NewMemoryStore()
	ing := NewIngester(Config{BatchSize: 2}, store, nil)

	res, err := ing.Run(context.Background(), strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Appended != 2 || res.Duplicates != 1 || res.LastSequence != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 stored events, got %d", store.Len())
	}
}

func TestIngesterResumesFromState(t *testing.T) {
	input := strings.Join([]string{
		recordLine(t, deposit("0x01", 0, 10)),
		recordLine(t, deposit("0x02", 0, 11)),
		recordLine(t, deposit("0x03", 0, 12)),
	}, "\n")

	store := ledger.NewMemoryStore()
	state := &FileStateStore{Path: filepath.Join(t.TempDir(), "state.json")}
	if err := state.Save(context.Background(), 2); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := NewIngester(Config{BatchSize: 10, StateStore: state}, store, nil).Run(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Resumed != 2 || res.Appended != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	last, ok, err := state.Load(context.Background())
	if err != nil || !ok || last != 3 {
		t.Fatalf("unexpected state: last=%d ok=%v err=%v", last, ok, err)
	}
}

func TestIngesterDBStateStore(t *testing.T) {
	store := ledger.NewMemoryStore()
	state := &DBStateStore{Backend: store, Name: "ingest"}
	input := recordLine(t, deposit("0x01", 0, 10))

	if _, err := NewIngester(Config{StateStore: state}, store, nil).Run(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("run: %v", err)
	}
	last, ok, err := store.LoadState(context.Background(), "ingest")
	if err != nil || !ok || last != 1 {
		t.Fatalf("unexpected state: last=%d ok=%v err=%v", last, ok, err)
	}
}

func TestIngesterRejectsInvalidBatch(t *testing.T) {
	bad := deposit("", 0, 10)
	input := strings.Join([]string{
		recordLine(t, deposit("0x01", 0, 10)),
		recordLine(t, bad),
	}, "\n")
	store := ledger.NewMemoryStore()

	_, err := NewIngester(Config{BatchSize: 10}, store, nil).Run(context.Background(), strings.NewReader(input))
	if !errors.Is(err, ledger.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("invalid batch must not be partially written")
	}
}

func TestIngesterRejectsPresetSequence(t *testing.T) {
	stamped := deposit("0x02", 0, 11)
	stamped.Sequence = 42
	input := strings.Join([]string{
		recordLine(t, deposit("0x01", 0, 10)),
		recordLine(t, stamped),
	}, "\n")
	store := ledger.NewMemoryStore()

	_, err := NewIngester(Config{BatchSize: 10}, store, nil).Run(context.Background(), strings.NewReader(input))
	if !errors.Is(err, ledger.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("batch with a preset sequence must not be written")
	}
}

func TestIngesterUnknownTable(t *testing.T) {
	input := `{"table":"pool","event":{}}`
	_, err := NewIngester(Config{}, ledger.NewMemoryStore(), nil).Run(context.Background(), strings.NewReader(input))
	if !errors.Is(err, model.ErrUnknownTable) {
		t.Fatalf("expected ErrUnknownTable, got %v", err)
	}
}
