package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"stakeLedger/internal/model"
)

func sampleSlash(logIndex uint32) *model.Slashed {
	return &model.Slashed{
		ID:              model.EventID("0xAB", logIndex),
		AttesterAddress: "0xaaaa",
		Amount:          "10",
		Provenance:      model.Provenance{BlockNumber: 5, TxHash: "0xab", LogIndex: logIndex, Timestamp: 1700000000},
	}
}

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "logs.jsonl")
	s := NewJsonlStorage(path)

	if err := s.PutLogBatch([]model.LogRecord{{TxHash: "0x1", LogIndex: 0}}); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := s.PutLogBatch([]model.LogRecord{{TxHash: "0x2", LogIndex: 3}}); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var hashes []string
	err = ScanJSONL(file, func(_ int, line []byte) error {
		var rec model.LogRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return err
		}
		hashes = append(hashes, rec.TxHash)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(hashes) != 2 || hashes[0] != "0x1" || hashes[1] != "0x2" {
		t.Fatalf("unexpected records: %v", hashes)
	}
}

func TestScanJSONLSkipsBlankLines(t *testing.T) {
	input := "{\"a\":1}\n\n   \n{\"a\":2}\n"
	var lines []int
	err := ScanJSONL(bytes.NewBufferString(input), func(lineNo int, _ []byte) error {
		lines = append(lines, lineNo)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(lines) != 2 || lines[0] != 1 || lines[1] != 4 {
		t.Fatalf("unexpected line numbers: %v", lines)
	}
}

func TestJSONLEventSinkWritesEnvelopes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	sink, err := NewEventSink(SinkConfig{Driver: SinkJSONL, Path: path})
	if err != nil {
		t.Fatalf("sink: %v", err)
	}
	if err := sink.PutEvents(context.Background(), []model.Event{sampleSlash(0), sampleSlash(1)}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got []model.Event
	err = ScanJSONL(bytes.NewReader(data), func(_ int, line []byte) error {
		var record model.EventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return err
		}
		ev, err := record.Unwrap()
		if err != nil {
			return err
		}
		got = append(got, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	slash, ok := got[1].(*model.Slashed)
	if !ok || slash.ID != "0xab-1" || slash.Amount != "10" {
		t.Fatalf("unexpected event: %#v", got[1])
	}
}

func TestStdioEventSink(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewEventSink(SinkConfig{Driver: SinkStdio, Writer: &buf})
	if err != nil {
		t.Fatalf("sink: %v", err)
	}
	if err := sink.PutEvents(context.Background(), []model.Event{sampleSlash(2)}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"table":"slashed"`)) {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestNewEventSinkValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  SinkConfig
	}{
		{name: "unsupported driver", cfg: SinkConfig{Driver: "unknown"}},
		{name: "jsonl missing path", cfg: SinkConfig{Driver: SinkJSONL}},
		{name: "kafka missing brokers", cfg: SinkConfig{Driver: SinkKafka, Topic: "events"}},
		{name: "kafka missing topic", cfg: SinkConfig{Driver: SinkKafka, Brokers: []string{"127.0.0.1:9092"}}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sink, err := NewEventSink(tc.cfg)
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if sink != nil {
				t.Fatalf("expected nil sink on error")
			}
		})
	}
}

func TestKafkaMessagesKeyedByLog(t *testing.T) {
	msgs, err := kafkaMessages([]model.Event{sampleSlash(4)})
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if string(msgs[0].Key) != "0xab:4" {
		t.Fatalf("unexpected key: %s", msgs[0].Key)
	}
	if len(msgs[0].Headers) != 1 || string(msgs[0].Headers[0].Value) != model.TableSlashed {
		t.Fatalf("unexpected headers: %+v", msgs[0].Headers)
	}
}
