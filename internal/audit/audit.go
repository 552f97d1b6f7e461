// Package audit persists the descriptive trail of engine operations.
//
// The history manager writes one record per successful execute, undo,
// and redo. The trail is append-only and diagnostic: it is never read
// back to reconstruct command state, and it outlives stack eviction.
//
// Three sinks are provided: a JSON Lines file, a sqlite table, and an
// in-memory sink for tests. File and sqlite sinks survive restarts; the
// records they hold are descriptions, not replayable commands.
package audit

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned when appending to a closed sink.
var ErrClosed = errors.New("audit sink is closed")

// Direction tags which history operation produced a record.
type Direction string

const (
	// Do marks a record written by execute.
	Do Direction = "do"
	// Undo marks a record written by undo.
	Undo Direction = "undo"
	// Redo marks a record written by redo.
	Redo Direction = "redo"
)

// Record is one line in the audit trail. Timestamps serialize as
// RFC 3339 in JSON and as UTC milliseconds in sqlite.
type Record struct {
	Description string    `json:"description"`
	Direction   Direction `json:"direction"`
	Timestamp   time.Time `json:"timestamp"`
}

// Sink is an append-only destination for audit records.
type Sink interface {
	// Append writes one record. Records are ordered by append call.
	Append(ctx context.Context, rec Record) error

	// Tail returns up to limit of the most recent records, oldest first.
	// A limit <= 0 returns everything the sink retains.
	Tail(ctx context.Context, limit int) ([]Record, error)

	// Close releases the sink's resources.
	Close() error
}

// tailOf trims records to the last limit entries. A limit <= 0 keeps
// everything.
func tailOf(records []Record, limit int) []Record {
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records
}
