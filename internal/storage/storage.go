package storage

import "eventScope/internal/model"

// LogSink is a sink for raw log records.
type LogSink interface {
	PutLogBatch(logs []model.LogRecord) error
}

// EventSink is a sink for decoded events and their failures.
type EventSink interface {
	PutEventBatch(events []model.DecodedEvent) error
	PutErrorBatch(errs []model.DecodeError) error
}
