package audit

import (
	"context"
	"sync"
)

// MemorySink retains records in memory. It backs tests and the scratch
// store configuration, where persistence would outlive its usefulness.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Append retains one record.
func (s *MemorySink) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// Tail returns the last limit records, oldest first.
func (s *MemorySink) Tail(ctx context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return tailOf(out, limit), nil
}

// Len returns the number of retained records.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Close is a no-op.
func (s *MemorySink) Close() error {
	return nil
}
