package history

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ledesma/centavo/internal/audit"
	"github.com/ledesma/centavo/internal/engine/command"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries caps stack depth when no explicit limit is given.
const DefaultMaxEntries = 25

// undoEntry wraps a command with metadata.
type undoEntry struct {
	command   command.Command
	timestamp time.Time
}

// History manages bounded undo/redo stacks over reversible commands.
type History struct {
	mu sync.Mutex

	undoStack []*undoEntry
	redoStack []*undoEntry

	// Configuration
	maxEntries int
	sink       audit.Sink
	now        func() time.Time
	onAuditErr func(error)
}

// Option configures a History.
type Option func(*History)

// WithAudit attaches an append-only sink that receives one record per
// successful execute, undo, and redo.
func WithAudit(sink audit.Sink) Option {
	return func(h *History) { h.sink = sink }
}

// WithClock overrides the time source used for entry and audit
// timestamps. Tests use it for deterministic records.
func WithClock(now func() time.Time) Option {
	return func(h *History) { h.now = now }
}

// WithAuditErrorHandler routes audit append failures. Append failures
// never fail the operation that triggered them.
func WithAuditErrorHandler(fn func(error)) Option {
	return func(h *History) { h.onAuditErr = fn }
}

// NewHistory creates a new history manager.
func NewHistory(maxEntries int, opts ...Option) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	h := &History{
		maxEntries: maxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute runs a command and, on success, pushes it onto the undo stack
// and clears the redo stack: history cannot branch. On failure the
// stacks are unchanged and the command's error is returned.
//
// The lock is held for the whole run so other callers observe each
// execute/undo/redo as one atomic step.
func (h *History) Execute(ctx context.Context, cmd command.Command) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := cmd.Execute(ctx); err != nil {
		return err
	}

	h.pushLocked(&h.undoStack, &undoEntry{command: cmd, timestamp: h.now()})
	h.redoStack = nil
	h.auditLocked(ctx, cmd.Description(), audit.Do)
	return nil
}

// Undo reverts the most recent command, moves it to the redo stack, and
// returns its description. If the revert fails the entry is pushed back
// onto the undo stack; the command stays applied and is not lost.
func (h *History) Undo(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return "", ErrNothingToUndo
	}

	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]

	if err := entry.command.Undo(ctx); err != nil {
		// Restore entry on failure
		h.undoStack = append(h.undoStack, entry)
		return "", err
	}

	h.pushLocked(&h.redoStack, entry)
	desc := entry.command.Description()
	h.auditLocked(ctx, desc, audit.Undo)
	return desc, nil
}

// Redo re-applies the most recent undone command, moves it to the undo
// stack, and returns its description. If the apply fails the entry is
// pushed back onto the redo stack.
func (h *History) Redo(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return "", ErrNothingToRedo
	}

	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]

	if err := entry.command.Execute(ctx); err != nil {
		// Restore entry on failure
		h.redoStack = append(h.redoStack, entry)
		return "", err
	}

	h.pushLocked(&h.undoStack, entry)
	desc := entry.command.Description()
	h.auditLocked(ctx, desc, audit.Redo)
	return desc, nil
}

// pushLocked appends to a stack and enforces maxEntries by evicting the
// oldest entries.
func (h *History) pushLocked(stack *[]*undoEntry, entry *undoEntry) {
	*stack = append(*stack, entry)
	if len(*stack) > h.maxEntries {
		excess := len(*stack) - h.maxEntries
		*stack = (*stack)[excess:]
	}
}

// auditLocked appends one record to the sink, if any. A failed append is
// reported to the handler and otherwise ignored.
func (h *History) auditLocked(ctx context.Context, desc string, dir audit.Direction) {
	if h.sink == nil {
		return
	}
	rec := audit.Record{
		Description: desc,
		Direction:   dir,
		Timestamp:   h.now(),
	}
	if err := h.sink.Append(ctx, rec); err != nil && h.onAuditErr != nil {
		h.onAuditErr(err)
	}
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// OperationInfo provides read-only info about a stack entry.
// Used for displaying undo/redo history to users.
type OperationInfo struct {
	Description string    // Human-readable description
	Timestamp   time.Time // When the entry was pushed
}

// PeekUndo returns info about the next undo operation without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return OperationInfo{}, false
	}

	entry := h.undoStack[len(h.undoStack)-1]
	return OperationInfo{
		Description: entry.command.Description(),
		Timestamp:   entry.timestamp,
	}, true
}

// PeekRedo returns info about the next redo operation without removing it.
func (h *History) PeekRedo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return OperationInfo{}, false
	}

	entry := h.redoStack[len(h.redoStack)-1]
	return OperationInfo{
		Description: entry.command.Description(),
		Timestamp:   entry.timestamp,
	}, true
}

// Recent returns up to limit of the most recent audit records, oldest
// first. A limit <= 0 returns everything the sink retains; without a
// sink the result is empty.
func (h *History) Recent(ctx context.Context, limit int) ([]audit.Record, error) {
	h.mu.Lock()
	sink := h.sink
	h.mu.Unlock()

	if sink == nil {
		return nil, nil
	}
	return sink.Tail(ctx, limit)
}

// Snapshot captures both stacks' counts and descriptions, bottom first.
type Snapshot struct {
	UndoCount        int
	RedoCount        int
	UndoDescriptions []string
	RedoDescriptions []string
}

// Snapshot returns a point-in-time view of both stacks for status
// displays and the diagnostic snapshot file.
func (h *History) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	snap := Snapshot{
		UndoCount:        len(h.undoStack),
		RedoCount:        len(h.redoStack),
		UndoDescriptions: make([]string, len(h.undoStack)),
		RedoDescriptions: make([]string, len(h.redoStack)),
	}
	for i, entry := range h.undoStack {
		snap.UndoDescriptions[i] = entry.command.Description()
	}
	for i, entry := range h.redoStack {
		snap.RedoDescriptions[i] = entry.command.Description()
	}
	return snap
}

// Clear removes all undo/redo history, e.g. when the active project
// changes. The audit trail is untouched.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
}

// SetMaxEntries changes the maximum stack depth. If a stack is larger,
// oldest entries are evicted.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max

	if len(h.undoStack) > max {
		excess := len(h.undoStack) - max
		h.undoStack = h.undoStack[excess:]
	}
	if len(h.redoStack) > max {
		excess := len(h.redoStack) - max
		h.redoStack = h.redoStack[excess:]
	}
}

// MaxEntries returns the maximum stack depth.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
