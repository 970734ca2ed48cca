package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"stakeLedger/internal/model"
)

// MemoryStore is an in-process Store. It backs tests and dry-run ingestion.
type MemoryStore struct {
	mu      sync.Mutex
	seq     uint64
	logs    map[string]struct{}
	keys    map[string]struct{}
	byTable map[string][]model.Event
	state   map[string]uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logs:    make(map[string]struct{}),
		keys:    make(map[string]struct{}),
		byTable: make(map[string][]model.Event),
		state:   make(map[string]uint64),
	}
}

func (s *MemoryStore) Append(_ context.Context, events []model.Event) (AppendResult, error) {
	if err := ValidateBatch(events); err != nil {
		return AppendResult{}, err
	}

	copies := make([]model.Event, 0, len(events))
	for _, ev := range events {
		cp, err := cloneEvent(ev)
		if err != nil {
			return AppendResult{}, err
		}
		copies = append(copies, cp)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Check primary keys first so a conflict leaves the store untouched.
	pending := make(map[string]struct{}, len(copies))
	pendingLogs := make(map[string]struct{}, len(copies))
	for _, ev := range copies {
		lk := ev.Meta().LogKey().String()
		if _, ok := s.logs[lk]; ok {
			continue
		}
		if _, ok := pendingLogs[lk]; ok {
			continue
		}
		pendingLogs[lk] = struct{}{}
		pk := primaryKey(ev)
		if _, ok := s.keys[pk]; ok {
			return AppendResult{}, fmt.Errorf("%w: %s %s", ErrKeyConflict, ev.TableName(), ev.Key())
		}
		if _, ok := pending[pk]; ok {
			return AppendResult{}, fmt.Errorf("%w: %s %s", ErrKeyConflict, ev.TableName(), ev.Key())
		}
		pending[pk] = struct{}{}
	}

	var res AppendResult
	for i, ev := range copies {
		key := ev.Meta().LogKey()
		if _, ok := s.logs[key.String()]; ok {
			res.Duplicates = append(res.Duplicates, key)
			continue
		}
		s.logs[key.String()] = struct{}{}
		s.keys[primaryKey(ev)] = struct{}{}
		s.seq++
		ev.Meta().Sequence = s.seq
		events[i].Meta().Sequence = s.seq
		s.byTable[ev.TableName()] = append(s.byTable[ev.TableName()], ev)
		res.Appended++
		res.LastSequence = s.seq
	}
	return res, nil
}

func (s *MemoryStore) Events(_ context.Context, f Filter) ([]model.Event, error) {
	def, err := f.Validate()
	if err != nil {
		return nil, err
	}
	col := columnIndex(def, f.Column)

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Event
	for _, ev := range s.byTable[f.Table] {
		if !sameValue(valueString(ev.Values()[col]), f.Value) {
			continue
		}
		cp, err := cloneEvent(ev)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return model.Before(out[i].Meta(), out[j].Meta())
	})
	return out, nil
}

// LoadState returns the saved progress position of a named consumer.
func (s *MemoryStore) LoadState(_ context.Context, name string) (uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.state[name]
	return v, ok, nil
}

// SaveState records the progress position of a named consumer.
func (s *MemoryStore) SaveState(_ context.Context, name string, position uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[name] = position
	return nil
}

// Len returns the number of stored events across all tables.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs)
}

// primaryKey folds hex case so keys conflict the way lookups match.
func primaryKey(ev model.Event) string {
	return ev.TableName() + "/" + strings.ToLower(strings.TrimSpace(ev.Key()))
}

func cloneEvent(ev model.Event) (model.Event, error) {
	rec, err := model.Wrap(ev)
	if err != nil {
		return nil, err
	}
	return rec.Unwrap()
}

func columnIndex(def model.TableDef, column string) int {
	for i, col := range def.Columns {
		if col.Name == column {
			return i
		}
	}
	return -1
}

func valueString(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case *string:
		if typed == nil {
			return ""
		}
		return *typed
	default:
		return fmt.Sprintf("%v", typed)
	}
}
