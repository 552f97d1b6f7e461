package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testRecord(desc string, dir Direction, at time.Time) Record {
	return Record{Description: desc, Direction: dir, Timestamp: at}
}

func appendAll(t *testing.T, sink Sink, records ...Record) {
	t.Helper()
	ctx := context.Background()
	for _, rec := range records {
		if err := sink.Append(ctx, rec); err != nil {
			t.Fatalf("Append(%q) error = %v", rec.Description, err)
		}
	}
}

func TestMemorySinkTail(t *testing.T) {
	sink := NewMemorySink()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	appendAll(t, sink,
		testRecord("first", Do, base),
		testRecord("second", Do, base.Add(time.Minute)),
		testRecord("third", Undo, base.Add(2*time.Minute)),
	)

	got, err := sink.Tail(context.Background(), 2)
	if err != nil {
		t.Fatalf("Tail(2) error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Tail(2) returned %d records, want 2", len(got))
	}
	if got[0].Description != "second" || got[1].Description != "third" {
		t.Errorf("Tail(2) = [%s %s], want [second third]", got[0].Description, got[1].Description)
	}
	if got[1].Direction != Undo {
		t.Errorf("Direction = %q, want %q", got[1].Direction, Undo)
	}

	all, err := sink.Tail(context.Background(), 0)
	if err != nil {
		t.Fatalf("Tail(0) error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Tail(0) returned %d records, want 3", len(all))
	}
}

func TestFileSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink() error = %v", err)
	}

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	appendAll(t, sink,
		testRecord("first", Do, base),
		testRecord("second", Undo, base.Add(time.Minute)),
		testRecord("third", Redo, base.Add(2*time.Minute)),
	)

	got, err := sink.Tail(context.Background(), 2)
	if err != nil {
		t.Fatalf("Tail(2) error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Tail(2) returned %d records, want 2", len(got))
	}
	if got[0].Description != "second" || got[1].Description != "third" {
		t.Errorf("Tail(2) = [%s %s], want [second third]", got[0].Description, got[1].Description)
	}
	if !got[0].Timestamp.Equal(base.Add(time.Minute)) {
		t.Errorf("Timestamp = %v, want %v", got[0].Timestamp, base.Add(time.Minute))
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopening appends; the existing trail is preserved.
	sink, err = NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink() reopen error = %v", err)
	}
	defer sink.Close()
	appendAll(t, sink, testRecord("fourth", Do, base.Add(3*time.Minute)))

	all, err := sink.Tail(context.Background(), 0)
	if err != nil {
		t.Fatalf("Tail(0) error = %v", err)
	}
	if len(all) != 4 {
		t.Errorf("Tail(0) returned %d records, want 4", len(all))
	}
}

func TestFileSinkAppendAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	err = sink.Append(context.Background(), testRecord("late", Do, time.Now()))
	if err != ErrClosed {
		t.Errorf("Append() after Close error = %v, want %v", err, ErrClosed)
	}
}

func TestFileSinkSkipsTornLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	content := `{"description":"ok","direction":"do","timestamp":"2025-03-10T12:00:00Z"}
{"description":"torn","direc`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink() error = %v", err)
	}
	defer sink.Close()

	got, err := sink.Tail(context.Background(), 0)
	if err != nil {
		t.Fatalf("Tail(0) error = %v", err)
	}
	if len(got) != 1 || got[0].Description != "ok" {
		t.Errorf("Tail(0) = %v, want the single intact record", got)
	}
}

func TestSQLiteSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	sink, err := NewSQLiteSink(path)
	if err != nil {
		t.Fatalf("NewSQLiteSink() error = %v", err)
	}
	defer sink.Close()

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	appendAll(t, sink,
		testRecord("first", Do, base),
		testRecord("second", Do, base.Add(time.Minute)),
		testRecord("third", Undo, base.Add(2*time.Minute)),
	)

	got, err := sink.Tail(context.Background(), 2)
	if err != nil {
		t.Fatalf("Tail(2) error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Tail(2) returned %d records, want 2", len(got))
	}
	if got[0].Description != "second" || got[1].Description != "third" {
		t.Errorf("Tail(2) = [%s %s], want [second third]", got[0].Description, got[1].Description)
	}
	if got[1].Direction != Undo {
		t.Errorf("Direction = %q, want %q", got[1].Direction, Undo)
	}
	if !got[0].Timestamp.Equal(base.Add(time.Minute)) {
		t.Errorf("Timestamp = %v, want %v", got[0].Timestamp, base.Add(time.Minute))
	}
}
