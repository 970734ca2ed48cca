package compare

import (
	"fmt"
	"strings"

	"stakeLedger/internal/model"
)

const (
	blockColumn    = "block_number"
	logIndexColumn = "log_index"
)

// excludedColumns are never compared.
var excludedColumns = map[string]bool{
	"id": true,
}

// newOnlyColumns exist only in the new schema.
var newOnlyColumns = map[string]bool{
	"sequence": true,
}

// columnOverrides maps table -> new column -> old column where the old name is
// not the camelCase of the new one.
var columnOverrides = map[string]map[string]string{
	model.TablePosition: {
		"position_type": "type",
		"address":       "atpAddress",
	},
	model.TableProvider: {
		"identifier": "providerIdentifier",
	},
}

// matchOverrides lists tables whose rows are not matched by (tx_hash, log_index).
var matchOverrides = map[string][]string{
	model.TableProviderAttester: {"provider_identifier", "attester_address", "tx_hash", "block_number"},
}

var defaultMatch = []string{"tx_hash", logIndexColumn}

// TableRef names a table inside a schema.
type TableRef struct {
	Schema string
	Name   string
}

func (r TableRef) String() string {
	if r.Schema == "" {
		return r.Name
	}
	return r.Schema + "." + r.Name
}

// ColumnPair maps an old column name to its new name.
type ColumnPair struct {
	Old string
	New string
}

// TablePlan describes how one table is compared.
type TablePlan struct {
	Table   string
	Old     TableRef
	New     TableRef
	Columns []ColumnPair
	Match   []ColumnPair
	Block   ColumnPair
	Order   []ColumnPair
}

// CamelCase converts a snake_case identifier to lowerCamelCase.
func CamelCase(snake string) string {
	parts := strings.Split(snake, "_")
	var b strings.Builder
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 || b.Len() == 0 {
			b.WriteString(part)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// OldColumn returns the old schema column for a new column of a table.
func OldColumn(table, column string) string {
	if old, ok := columnOverrides[table][column]; ok {
		return old
	}
	return CamelCase(column)
}

// BuildPlan builds the comparison plan for a table.
func BuildPlan(def model.TableDef, oldSchema, newSchema string) TablePlan {
	pair := func(col string) ColumnPair {
		return ColumnPair{Old: OldColumn(def.Name, col), New: col}
	}

	plan := TablePlan{
		Table: def.Name,
		Old:   TableRef{Schema: oldSchema, Name: CamelCase(def.Name)},
		New:   TableRef{Schema: newSchema, Name: def.Name},
		Block: pair(blockColumn),
		Order: []ColumnPair{pair(blockColumn), pair(logIndexColumn)},
	}
	for _, col := range def.Columns {
		if excludedColumns[col.Name] || newOnlyColumns[col.Name] {
			continue
		}
		plan.Columns = append(plan.Columns, pair(col.Name))
	}
	match := defaultMatch
	if override, ok := matchOverrides[def.Name]; ok {
		match = override
	}
	for _, col := range match {
		plan.Match = append(plan.Match, pair(col))
	}
	return plan
}

// BuildPlans returns plans for the named tables, or for every table when
// names is empty.
func BuildPlans(names []string, oldSchema, newSchema string) ([]TablePlan, error) {
	if len(names) == 0 {
		defs := model.Tables()
		plans := make([]TablePlan, 0, len(defs))
		for _, def := range defs {
			plans = append(plans, BuildPlan(def, oldSchema, newSchema))
		}
		return plans, nil
	}

	plans := make([]TablePlan, 0, len(names))
	for _, name := range names {
		def, err := model.LookupTable(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("plan: %w", err)
		}
		plans = append(plans, BuildPlan(def, oldSchema, newSchema))
	}
	return plans, nil
}
