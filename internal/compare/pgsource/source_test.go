package pgsource

import (
	"testing"

	"stakeLedger/internal/compare"
)

func TestFindSQL(t *testing.T) {
	table := compare.TableRef{Schema: "sepolia", Name: "provider_attester"}
	query, args := findSQL(table, []compare.Criterion{
		{Column: "provider_identifier", Value: "7"},
		{Column: "tx_hash", Value: "0xabc"},
	})

	want := `SELECT * FROM "sepolia"."provider_attester" WHERE lower(trim("provider_identifier"::text)) = $1 AND lower(trim("tx_hash"::text)) = $2 LIMIT 1`
	if query != want {
		t.Fatalf("query mismatch:\n got: %s\nwant: %s", query, want)
	}
	if len(args) != 2 || args[0] != "7" || args[1] != "0xabc" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestIdentWithoutSchema(t *testing.T) {
	if got := ident(compare.TableRef{Name: "atpPosition"}); got != `"atpPosition"` {
		t.Fatalf("unexpected ident: %s", got)
	}
}
