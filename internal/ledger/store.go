package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stakeLedger/internal/model"
)

var (
	ErrNotFound     = errors.New("ledger: not found")
	ErrInvalidEvent = errors.New("ledger: invalid event")
	ErrInvalidQuery = errors.New("ledger: invalid query")
	// ErrKeyConflict means a different log already wrote the same primary key.
	ErrKeyConflict = errors.New("ledger: primary key conflict")
)

// Store is an append-only mirror of protocol events. Rows are never updated
// or deleted.
type Store interface {
	// Append writes events that are not already present. A (txHash, logIndex)
	// pair already in the store, in any table, is reported as a duplicate and
	// skipped. Validation failures reject the whole batch.
	Append(ctx context.Context, events []model.Event) (AppendResult, error)
	// Events returns the rows of one table whose indexed column equals
	// Value, in (blockNumber, logIndex) order.
	Events(ctx context.Context, f Filter) ([]model.Event, error)
}

// AppendResult reports the outcome of an Append call.
type AppendResult struct {
	Appended   int
	Duplicates []model.LogKey
	// LastSequence is the sequence assigned to the last appended event.
	LastSequence uint64
}

// Filter selects rows of a table by an indexed column.
type Filter struct {
	Table  string
	Column string
	Value  string
}

// Validate checks the table exists and the column is the key or indexed.
func (f Filter) Validate() (model.TableDef, error) {
	def, err := model.LookupTable(f.Table)
	if err != nil {
		return model.TableDef{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if !def.Indexed(f.Column) {
		return model.TableDef{}, fmt.Errorf("%w: %s.%s is not indexed", ErrInvalidQuery, f.Table, f.Column)
	}
	return def, nil
}

// ValidateEvent checks the write-side invariants of a single event.
func ValidateEvent(ev model.Event) error {
	if ev == nil {
		return fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}
	if _, err := model.LookupTable(ev.TableName()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	meta := ev.Meta()
	if strings.TrimSpace(meta.TxHash) == "" {
		return fmt.Errorf("%w: %s: empty tx hash", ErrInvalidEvent, ev.TableName())
	}
	if meta.Sequence != 0 {
		return fmt.Errorf("%w: %s: sequence %d set before append at %s", ErrInvalidEvent, ev.TableName(), meta.Sequence, meta.LogKey())
	}
	if strings.TrimSpace(ev.Key()) == "" {
		return fmt.Errorf("%w: %s: empty key at %s", ErrInvalidEvent, ev.TableName(), meta.LogKey())
	}
	if pos, ok := ev.(*model.Position); ok && !pos.Type.Valid() {
		return fmt.Errorf("%w: position %s: type %q", ErrInvalidEvent, pos.Address, pos.Type)
	}
	return nil
}

// ValidateBatch validates every event before any is written.
func ValidateBatch(events []model.Event) error {
	for _, ev := range events {
		if err := ValidateEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

func sameValue(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
