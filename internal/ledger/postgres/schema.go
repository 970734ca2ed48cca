package postgres

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"stakeLedger/internal/model"
)

const eventLogTable = "event_log"
const stateTable = "indexer_state"

// SchemaSQL renders the DDL for every ledger table under schema. An empty
// schema uses the connection's search path.
func SchemaSQL(schema string) string {
	var b strings.Builder
	if schema != "" {
		fmt.Fprintf(&b, "CREATE SCHEMA IF NOT EXISTS %s;\n\n", pgx.Identifier{schema}.Sanitize())
	}

	fmt.Fprintf(&b, `CREATE TABLE IF NOT EXISTS %s (
	sequence BIGSERIAL PRIMARY KEY,
	tx_hash TEXT NOT NULL,
	log_index INTEGER NOT NULL,
	table_name TEXT NOT NULL,
	block_number BIGINT NOT NULL,
	ingested_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT event_log_tx_log_unique UNIQUE (tx_hash, log_index),
	CONSTRAINT event_log_tx_hash_lower CHECK (tx_hash = lower(tx_hash))
);

CREATE TABLE IF NOT EXISTS %s (
	name TEXT PRIMARY KEY,
	last_position BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`, qualify(schema, eventLogTable), qualify(schema, stateTable))

	for _, def := range model.Tables() {
		b.WriteString("\n")
		b.WriteString(tableSQL(schema, def))
	}
	return b.String()
}

func tableSQL(schema string, def model.TableDef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", qualify(schema, def.Name))
	for _, col := range def.Columns {
		null := " NOT NULL"
		if col.Nullable {
			null = ""
		}
		pk := ""
		if col.Name == def.Key {
			pk = " PRIMARY KEY"
		}
		fmt.Fprintf(&b, "\t%s %s%s%s,\n", pgx.Identifier{col.Name}.Sanitize(), col.Type, null, pk)
	}
	fmt.Fprintf(&b, "\tCONSTRAINT %s CHECK (log_index >= 0 AND block_number >= 0)\n", pgx.Identifier{def.Name + "_provenance_nonneg"}.Sanitize())
	b.WriteString(");\n")

	if def.Name == model.TablePosition {
		fmt.Fprintf(&b, "ALTER TABLE %s DROP CONSTRAINT IF EXISTS atp_position_type_enum;\n", qualify(schema, def.Name))
		fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT atp_position_type_enum CHECK (position_type IN ('MATP', 'LATP', 'NCATP', 'Unknown'));\n", qualify(schema, def.Name))
	}

	// Lookups compare lower-cased hex, so the indexes are on lower(col) and
	// the key is unique regardless of case.
	fmt.Fprintf(&b, "CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (lower(%s));\n",
		pgx.Identifier{def.Name + "_key_lower_unique"}.Sanitize(), qualify(schema, def.Name), pgx.Identifier{def.Key}.Sanitize())
	for _, idx := range def.Indexes {
		name := pgx.Identifier{fmt.Sprintf("%s_%s_idx", def.Name, idx)}.Sanitize()
		fmt.Fprintf(&b, "CREATE INDEX IF NOT EXISTS %s ON %s (lower(%s));\n", name, qualify(schema, def.Name), pgx.Identifier{idx}.Sanitize())
	}
	return b.String()
}

func qualify(schema, table string) string {
	if schema == "" {
		return pgx.Identifier{table}.Sanitize()
	}
	return pgx.Identifier{schema, table}.Sanitize()
}
