package command

import (
	"errors"
	"fmt"
)

// ErrEmptyBatch is returned when a batch is constructed with no commands.
var ErrEmptyBatch = errors.New("batch requires at least one command")

// ExecutionError reports a failed Execute. For a batch it names the
// failing sub-command and carries the outcome of sweeping already-applied
// sub-commands back; for a leaf, Index is -1 and Rollback is empty.
// Either way no partial mutation remains applied, except for the entries
// listed in Rollback, whose reverts themselves failed.
type ExecutionError struct {
	Description string  // command that failed
	Index       int     // failing sub-command index, -1 outside a batch
	Err         error   // underlying cause
	Rollback    []error // revert failures collected during the sweep back
}

// Error returns a single-line summary of the failure.
func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("execute '%s'", e.Description)
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s step %d", msg, e.Index)
	}
	msg += ": " + e.Err.Error()
	if n := len(e.Rollback); n > 0 {
		msg = fmt.Sprintf("%s (%d rollback failures)", msg, n)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// RollbackError reports a failed Undo. For a batch it names the failing
// sub-command and lists every sub-command left applied so the caller can
// reconcile external state by hand; for a leaf, Index is -1 and
// Unreverted is empty.
type RollbackError struct {
	Description string   // command whose revert failed
	Index       int      // failing sub-command index, -1 outside a batch
	Unreverted  []string // descriptions of sub-commands still applied, lowest index first
	Err         error    // underlying cause
}

// Error returns a single-line summary of the failure.
func (e *RollbackError) Error() string {
	msg := fmt.Sprintf("undo '%s'", e.Description)
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s step %d", msg, e.Index)
	}
	msg += ": " + e.Err.Error()
	if n := len(e.Unreverted); n > 0 {
		msg = fmt.Sprintf("%s (%d sub-commands still applied)", msg, n)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RollbackError) Unwrap() error {
	return e.Err
}
