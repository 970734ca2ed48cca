package model

import (
	"encoding/json"
	"fmt"
)

// EventRecord is the JSONL / queue envelope for a decoded event.
type EventRecord struct {
	Table string          `json:"table"`
	Event json.RawMessage `json:"event"`
}

// Wrap encodes an event into its envelope.
func Wrap(ev Event) (EventRecord, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, fmt.Errorf("marshal %s: %w", ev.TableName(), err)
	}
	return EventRecord{Table: ev.TableName(), Event: data}, nil
}

// Unwrap decodes the envelope into a typed event.
func (r EventRecord) Unwrap() (Event, error) {
	ev, err := NewEvent(r.Table)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(r.Event, ev); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.Table, err)
	}
	return ev, nil
}
