package model

import (
	"errors"
	"fmt"
)

var ErrUnknownTable = errors.New("model: unknown table")

// ColumnType is the Postgres type of a ledger column.
type ColumnType string

const (
	TypeText    ColumnType = "TEXT"
	TypeNumeric ColumnType = "NUMERIC(78, 0)"
	TypeBigint  ColumnType = "BIGINT"
	TypeInteger ColumnType = "INTEGER"
)

// Column describes one column of a ledger table.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Event is a single append-only ledger record.
type Event interface {
	TableName() string
	Meta() *Provenance
	// Key returns the primary key value.
	Key() string
	// Values returns column values in TableDef.Columns order.
	Values() []any
	// Fields returns scan destinations in TableDef.Columns order.
	Fields() []any
}

// TableDef describes a ledger table. Columns are ordered and end with the
// provenance columns.
type TableDef struct {
	Name    string
	Key     string
	Columns []Column
	Indexes []string
	New     func() Event
}

// ColumnNames returns the ordered column names.
func (t TableDef) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		names = append(names, col.Name)
	}
	return names
}

// HasColumn reports whether the table defines a column.
func (t TableDef) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col.Name == name {
			return true
		}
	}
	return false
}

// Indexed reports whether a column is the key or carries an index.
func (t TableDef) Indexed(name string) bool {
	if name == t.Key {
		return true
	}
	for _, idx := range t.Indexes {
		if idx == name {
			return true
		}
	}
	return false
}

func table(name, key string, indexes []string, newFn func() Event, cols ...Column) TableDef {
	all := make([]Column, 0, len(cols)+len(provenanceColumns))
	all = append(all, cols...)
	all = append(all, provenanceColumns...)
	return TableDef{Name: name, Key: key, Columns: all, Indexes: indexes, New: newFn}
}

func text(name string) Column    { return Column{Name: name, Type: TypeText} }
func numeric(name string) Column { return Column{Name: name, Type: TypeNumeric} }

var tables = []TableDef{
	table(TablePosition, "address", []string{"beneficiary", "staker_address"},
		func() Event { return &Position{} },
		text("address"), text("beneficiary"), numeric("allocation"), text("position_type"),
		text("staker_address"), Column{Name: "operator_address", Type: TypeText, Nullable: true}),
	table(TableProvider, "identifier", []string{"provider_admin"},
		func() Event { return &Provider{} },
		text("identifier"), text("provider_admin"), Column{Name: "provider_take_rate", Type: TypeInteger},
		text("rewards_recipient")),
	table(TableStakedWithProvider, "id", []string{"atp_address", "provider_identifier", "attester_address"},
		func() Event { return &StakedWithProvider{} },
		text("id"), text("atp_address"), text("staker_address"), text("provider_identifier"),
		text("attester_address"), text("rollup_address"), text("coinbase_split_address")),
	table(TableStaked, "id", []string{"atp_address", "attester_address"},
		func() Event { return &Staked{} },
		text("id"), text("atp_address"), text("staker_address"), text("attester_address"),
		text("rollup_address"), text("withdrawer_address")),
	table(TableERC20StakedWithProvider, "id", []string{"staker_address", "provider_identifier", "attester_address"},
		func() Event { return &ERC20StakedWithProvider{} },
		text("id"), text("staker_address"), text("provider_identifier"), text("attester_address"),
		text("rollup_address"), text("coinbase_split_address"), numeric("amount")),
	table(TableDeposit, "id", []string{"attester_address"},
		func() Event { return &Deposit{} },
		text("id"), text("attester_address"), text("withdrawer_address"), numeric("amount")),
	table(TableFailedDeposit, "id", []string{"attester_address"},
		func() Event { return &FailedDeposit{} },
		text("id"), text("attester_address"), text("withdrawer_address"), numeric("amount")),
	table(TableWithdrawInitiated, "id", []string{"attester_address"},
		func() Event { return &WithdrawInitiated{} },
		text("id"), text("attester_address"), text("recipient_address"), numeric("amount")),
	table(TableWithdrawFinalized, "id", []string{"attester_address"},
		func() Event { return &WithdrawFinalized{} },
		text("id"), text("attester_address"), text("recipient_address"), numeric("amount")),
	table(TableSlashed, "id", []string{"attester_address"},
		func() Event { return &Slashed{} },
		text("id"), text("attester_address"), numeric("amount")),
	table(TableTokensWithdrawnToBeneficiary, "id", []string{"atp_address"},
		func() Event { return &TokensWithdrawnToBeneficiary{} },
		text("id"), text("atp_address"), text("beneficiary"), numeric("amount")),
	table(TableProviderAttester, "id", []string{"provider_identifier", "attester_address"},
		func() Event { return &ProviderAttester{} },
		text("id"), text("provider_identifier"), text("attester_address")),
	table(TableProviderQueueDrip, "id", []string{"provider_identifier", "attester_address"},
		func() Event { return &ProviderQueueDrip{} },
		text("id"), text("provider_identifier"), text("attester_address")),
	table(TableStakerOperatorUpdate, "id", []string{"atp_address"},
		func() Event { return &StakerOperatorUpdate{} },
		text("id"), text("atp_address"), text("staker_address"), text("operator_address")),
	table(TableProviderTakeRateUpdate, "id", []string{"provider_identifier"},
		func() Event { return &ProviderTakeRateUpdate{} },
		text("id"), text("provider_identifier"), Column{Name: "new_take_rate", Type: TypeInteger}),
	table(TableProviderRewardsRecipientUpdate, "id", []string{"provider_identifier"},
		func() Event { return &ProviderRewardsRecipientUpdate{} },
		text("id"), text("provider_identifier"), text("new_rewards_recipient")),
	table(TableProviderAdminUpdateInitiated, "id", []string{"provider_identifier"},
		func() Event { return &ProviderAdminUpdateInitiated{} },
		text("id"), text("provider_identifier"), text("new_admin")),
	table(TableProviderAdminUpdated, "id", []string{"provider_identifier"},
		func() Event { return &ProviderAdminUpdated{} },
		text("id"), text("provider_identifier"), text("new_admin")),
}

var tablesByName = func() map[string]TableDef {
	out := make(map[string]TableDef, len(tables))
	for _, t := range tables {
		out[t.Name] = t
	}
	return out
}()

// Tables returns every ledger table in a stable order.
func Tables() []TableDef {
	out := make([]TableDef, len(tables))
	copy(out, tables)
	return out
}

// LookupTable returns the definition of a table by its snake_case name.
func LookupTable(name string) (TableDef, error) {
	t, ok := tablesByName[name]
	if !ok {
		return TableDef{}, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return t, nil
}

// NewEvent returns an empty event for a table.
func NewEvent(name string) (Event, error) {
	t, err := LookupTable(name)
	if err != nil {
		return nil, err
	}
	return t.New(), nil
}
