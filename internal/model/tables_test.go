package model

import (
	"testing"
)

func TestTableColumnsMatchEventShape(t *testing.T) {
	seen := make(map[string]struct{})
	for _, def := range Tables() {
		if _, ok := seen[def.Name]; ok {
			t.Fatalf("duplicate table %s", def.Name)
		}
		seen[def.Name] = struct{}{}

		ev := def.New()
		if ev.TableName() != def.Name {
			t.Fatalf("%s: event reports table %s", def.Name, ev.TableName())
		}
		if got := len(ev.Values()); got != len(def.Columns) {
			t.Fatalf("%s: %d values for %d columns", def.Name, got, len(def.Columns))
		}
		if got := len(ev.Fields()); got != len(def.Columns) {
			t.Fatalf("%s: %d fields for %d columns", def.Name, got, len(def.Columns))
		}
		if !def.HasColumn(def.Key) {
			t.Fatalf("%s: key column %s missing", def.Name, def.Key)
		}
		for _, idx := range def.Indexes {
			if !def.HasColumn(idx) {
				t.Fatalf("%s: index column %s missing", def.Name, idx)
			}
		}
		for _, col := range []string{"block_number", "tx_hash", "log_index", "timestamp"} {
			if !def.HasColumn(col) {
				t.Fatalf("%s: provenance column %s missing", def.Name, col)
			}
		}
	}
	if len(seen) != 18 {
		t.Fatalf("expected 18 tables, got %d", len(seen))
	}
}

func TestParsePositionType(t *testing.T) {
	for _, valid := range []string{"MATP", "LATP", "NCATP", "Unknown"} {
		got, err := ParsePositionType(valid)
		if err != nil {
			t.Fatalf("ParsePositionType(%q): %v", valid, err)
		}
		if string(got) != valid {
			t.Fatalf("ParsePositionType(%q) = %q", valid, got)
		}
	}
	for _, invalid := range []string{"", "matp", "ATP", "unknown", " MATP"} {
		if _, err := ParsePositionType(invalid); err == nil {
			t.Fatalf("expected error for %q", invalid)
		}
	}
}

func TestEventRecordUnwrap(t *testing.T) {
	op := "0x4444444444444444444444444444444444444444"
	original := &Position{
		Address:         "0x1111111111111111111111111111111111111111",
		Beneficiary:     "0x2222222222222222222222222222222222222222",
		Allocation:      "25000000000000000000000",
		Type:            PositionLATP,
		StakerAddress:   "0x3333333333333333333333333333333333333333",
		OperatorAddress: &op,
		Provenance: Provenance{
			BlockNumber: 9000,
			TxHash:      "0xabc",
			LogIndex:    3,
			Timestamp:   1700000000,
		},
	}

	rec, err := Wrap(original)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if rec.Table != TablePosition {
		t.Fatalf("table: got %s", rec.Table)
	}

	ev, err := rec.Unwrap()
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	pos, ok := ev.(*Position)
	if !ok {
		t.Fatalf("unwrap type %T", ev)
	}
	if pos.Type != PositionLATP || pos.BlockNumber != 9000 || pos.LogIndex != 3 {
		t.Fatalf("unwrap mismatch: %+v", pos)
	}
	if pos.OperatorAddress == nil || *pos.OperatorAddress != op {
		t.Fatalf("operator mismatch")
	}

	if _, err := (EventRecord{Table: "nope"}).Unwrap(); err == nil {
		t.Fatalf("expected unknown table error")
	}
}

func TestBeforeOrdersByBlockThenLogIndex(t *testing.T) {
	a := &Provenance{BlockNumber: 10, LogIndex: 5}
	b := &Provenance{BlockNumber: 10, LogIndex: 6}
	c := &Provenance{BlockNumber: 11, LogIndex: 0}
	if !Before(a, b) || !Before(b, c) || Before(c, a) || Before(a, a) {
		t.Fatalf("unexpected ordering")
	}
}

func TestLogKeyIgnoresHashCase(t *testing.T) {
	a := LogKey{TxHash: "0xAA", LogIndex: 0}
	b := LogKey{TxHash: "0xaa", LogIndex: 0}
	if a.String() != b.String() {
		t.Fatalf("keys differ: %s vs %s", a, b)
	}
	if EventID("0xAB", 2) != "0xab-2" {
		t.Fatalf("event id: %s", EventID("0xAB", 2))
	}
}
