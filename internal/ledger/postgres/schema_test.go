package postgres

import (
	"strings"
	"testing"

	"stakeLedger/internal/model"
)

func TestSchemaSQLCoversEveryTable(t *testing.T) {
	ddl := SchemaSQL("sepolia")
	if !strings.Contains(ddl, `CREATE SCHEMA IF NOT EXISTS "sepolia"`) {
		t.Fatalf("missing schema statement")
	}
	if !strings.Contains(ddl, `UNIQUE (tx_hash, log_index)`) {
		t.Fatalf("missing event log uniqueness")
	}
	for _, def := range model.Tables() {
		if !strings.Contains(ddl, `CREATE TABLE IF NOT EXISTS "sepolia".`+`"`+def.Name+`"`) {
			t.Fatalf("missing table %s", def.Name)
		}
		for _, idx := range def.Indexes {
			if !strings.Contains(ddl, `"`+def.Name+"_"+idx+`_idx"`) {
				t.Fatalf("missing index %s.%s", def.Name, idx)
			}
		}
	}
	if !strings.Contains(ddl, `CREATE UNIQUE INDEX IF NOT EXISTS "atp_position_key_lower_unique" ON "sepolia"."atp_position" (lower("address"))`) {
		t.Fatalf("missing case-insensitive key uniqueness")
	}
	if !strings.Contains(ddl, "'MATP', 'LATP', 'NCATP', 'Unknown'") {
		t.Fatalf("missing position type constraint")
	}
}

func TestInsertSQLCastsNumeric(t *testing.T) {
	def, err := model.LookupTable(model.TableSlashed)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	got := insertSQL("", def)
	want := `INSERT INTO "slashed" ("id", "attester_address", "amount", "block_number", "tx_hash", "log_index", "timestamp", "sequence") VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8)`
	if got != want {
		t.Fatalf("insert sql:\n got %s\nwant %s", got, want)
	}
	if sel := selectList(def); !strings.Contains(sel, `"amount"::text`) {
		t.Fatalf("select list: %s", sel)
	}
}
