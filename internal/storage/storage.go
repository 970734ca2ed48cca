package storage

import (
	"context"

	"stakeLedger/internal/model"
)

// Storage defines a sink for raw log records.
type Storage interface {
	PutLogBatch(logs []model.LogRecord) error
}

// EventSink receives decoded ledger events.
type EventSink interface {
	PutEvents(ctx context.Context, events []model.Event) error
	Close() error
}
