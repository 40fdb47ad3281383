package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultFilename is the activation log file created inside the log directory.
const DefaultFilename = "activations.jsonl"

// FileSink appends ActivationEvents to a JSONL file. Existing content is
// never rewritten.
type FileSink struct {
	path   string
	file   *os.File
	writer *bufio.Writer
	mu     sync.Mutex
}

// NewFileSink opens dir/activations.jsonl for appending, creating dir if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, DefaultFilename)
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open activation log: %w", err)
	}

	return &FileSink{
		path:   path,
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

// Write appends events, one JSON object per line, and flushes.
func (s *FileSink) Write(events []ActivationEvent) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return fmt.Errorf("activation log %s is closed", s.path)
	}

	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		if _, err := s.writer.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write event: %w", err)
		}
	}

	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush events: %w", err)
	}
	return nil
}

// WriteOne appends a single event.
func (s *FileSink) WriteOne(event ActivationEvent) error {
	return s.Write([]ActivationEvent{event})
}

// Close flushes buffered data and closes the file. Closing twice is a no-op.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	flushErr := s.writer.Flush()
	closeErr := s.file.Close()
	s.file = nil

	if flushErr != nil {
		return fmt.Errorf("failed to flush before close: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close activation log: %w", closeErr)
	}
	return nil
}

// Path returns the activation log path.
func (s *FileSink) Path() string {
	return s.path
}

// ReadEvents reads every event from a JSONL activation log.
func ReadEvents(path string) ([]ActivationEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open activation log: %w", err)
	}
	defer func() { _ = file.Close() }()

	var events []ActivationEvent
	scanner := bufio.NewScanner(file)
	const maxLineSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event ActivationEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("failed to parse event on line %d: %w", lineNum, err)
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activation log: %w", err)
	}
	return events, nil
}

// FilterByOutcome keeps events with one of the given outcomes.
// With no outcomes, events is returned unchanged.
func FilterByOutcome(events []ActivationEvent, outcomes ...Outcome) []ActivationEvent {
	if len(outcomes) == 0 {
		return events
	}

	want := make(map[Outcome]bool, len(outcomes))
	for _, o := range outcomes {
		want[o] = true
	}

	var filtered []ActivationEvent
	for _, event := range events {
		if want[event.Outcome] {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// FilterBySkill keeps events in which skill was matched.
func FilterBySkill(events []ActivationEvent, skill string) []ActivationEvent {
	var filtered []ActivationEvent
	for _, event := range events {
		for _, s := range event.Skills {
			if s == skill {
				filtered = append(filtered, event)
				break
			}
		}
	}
	return filtered
}

// FilterSince keeps events recorded at or after since.
func FilterSince(events []ActivationEvent, since time.Time) []ActivationEvent {
	var filtered []ActivationEvent
	for _, event := range events {
		if !event.Timestamp.Before(since) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// Tail returns the last n events. n <= 0 returns every event.
func Tail(events []ActivationEvent, n int) []ActivationEvent {
	if n <= 0 || len(events) <= n {
		return events
	}
	return events[len(events)-n:]
}
