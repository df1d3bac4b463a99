package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"eventScope/internal/model"
)

// JsonlLogSink appends raw log records to a JSONL file.
type JsonlLogSink struct {
	path string
	mu   sync.Mutex
}

func NewJsonlLogSink(path string) *JsonlLogSink {
	return &JsonlLogSink{path: path}
}

// PutLogBatch appends a batch of log records as JSON lines.
func (s *JsonlLogSink) PutLogBatch(logs []model.LogRecord) error {
	if len(logs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]interface{}, len(logs))
	for i, log := range logs {
		records[i] = log
	}
	return appendLines(s.path, records)
}

// JsonlEventSink appends decoded events and decode errors to JSONL files.
type JsonlEventSink struct {
	eventPath string
	errorPath string
	mu        sync.Mutex
}

func NewJsonlEventSink(eventPath, errorPath string) *JsonlEventSink {
	return &JsonlEventSink{eventPath: eventPath, errorPath: errorPath}
}

// PutEventBatch appends a batch of decoded events as JSON lines.
func (s *JsonlEventSink) PutEventBatch(events []model.DecodedEvent) error {
	if len(events) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]interface{}, len(events))
	for i, event := range events {
		records[i] = event
	}
	return appendLines(s.eventPath, records)
}

// PutErrorBatch appends a batch of decode errors as JSON lines.
func (s *JsonlEventSink) PutErrorBatch(errs []model.DecodeError) error {
	if len(errs) == 0 {
		return nil
	}
	if s.errorPath == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]interface{}, len(errs))
	for i, decodeErr := range errs {
		records[i] = decodeErr
	}
	return appendLines(s.errorPath, records)
}

func appendLines(path string, records []interface{}) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
