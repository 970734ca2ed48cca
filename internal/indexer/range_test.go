package indexer

import (
	"math"
	"reflect"
	"testing"
)

func TestSplitRange(t *testing.T) {
	cases := []struct {
		name      string
		from, to  uint64
		batchSize uint64
		want      []BlockRange
	}{
		{
			name: "even batches", from: 100, to: 105, batchSize: 2,
			want: []BlockRange{{From: 100, To: 101}, {From: 102, To: 103}, {From: 104, To: 105}},
		},
		{
			name: "short tail", from: 1, to: 7, batchSize: 3,
			want: []BlockRange{{From: 1, To: 3}, {From: 4, To: 6}, {From: 7, To: 7}},
		},
		{
			name: "single block", from: 5, to: 5, batchSize: 10,
			want: []BlockRange{{From: 5, To: 5}},
		},
		{
			name: "top of range", from: math.MaxUint64 - 1, to: math.MaxUint64, batchSize: 1,
			want: []BlockRange{{From: math.MaxUint64 - 1, To: math.MaxUint64 - 1}, {From: math.MaxUint64, To: math.MaxUint64}},
		},
	}
	for _, tc := range cases {
		got, err := SplitRange(tc.from, tc.to, tc.batchSize)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: ranges mismatch: %+v != %+v", tc.name, got, tc.want)
		}
	}
}

func TestSplitRangeInvalid(t *testing.T) {
	if _, err := SplitRange(10, 9, 1); err == nil {
		t.Fatalf("expected error for invalid range")
	}
	if _, err := SplitRange(1, 10, 0); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
}

func TestBlockRangeBlocks(t *testing.T) {
	if got := (BlockRange{From: 10, To: 19}).Blocks(); got != 10 {
		t.Fatalf("expected 10 blocks, got %d", got)
	}
}
