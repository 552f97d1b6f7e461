package command

import (
	"context"
	"fmt"
)

// State identifies where a command sits in its execute/undo cycle.
type State int

const (
	// StateUnexecuted is the initial state; the command has never run.
	StateUnexecuted State = iota
	// StateExecuted means the command's mutation is currently applied.
	StateExecuted
	// StateUndone means the command ran and was subsequently reverted.
	StateUndone
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateUnexecuted:
		return "unexecuted"
	case StateExecuted:
		return "executed"
	case StateUndone:
		return "undone"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Command represents a reversible action against external state.
type Command interface {
	// Execute performs the command's mutation. Valid from StateUnexecuted
	// or StateUndone; on success the command is StateExecuted.
	Execute(ctx context.Context) error

	// Undo reverses a previously executed command. Valid only from
	// StateExecuted; on success the command is StateUndone.
	Undo(ctx context.Context) error

	// Description returns a human-readable description of the command.
	// Pure; valid in any state.
	Description() string

	// State reports the command's current lifecycle state.
	State() State
}

// Lifecycle tracks a command's lifecycle state and enforces the legal
// transitions. Concrete commands embed it and bracket their Execute/Undo
// bodies with the guard and mark helpers:
//
//	func (c *MyCommand) Execute(ctx context.Context) error {
//	    c.MustBeExecutable(c.Description())
//	    if err := doTheWork(ctx); err != nil {
//	        return err // state unchanged
//	    }
//	    c.MarkExecuted()
//	    return nil
//	}
type Lifecycle struct {
	state State
}

// State reports the command's current lifecycle state.
func (l *Lifecycle) State() State {
	return l.state
}

// MustBeExecutable panics unless Execute is legal from the current state.
func (l *Lifecycle) MustBeExecutable(desc string) {
	if l.state == StateExecuted {
		panic(fmt.Sprintf("command: execute '%s' in state %s", desc, l.state))
	}
}

// MarkExecuted records a successful Execute.
func (l *Lifecycle) MarkExecuted() {
	l.state = StateExecuted
}

// MustBeUndoable panics unless Undo is legal from the current state.
func (l *Lifecycle) MustBeUndoable(desc string) {
	if l.state != StateExecuted {
		panic(fmt.Sprintf("command: undo '%s' in state %s", desc, l.state))
	}
}

// MarkUndone records a successful Undo.
func (l *Lifecycle) MarkUndone() {
	l.state = StateUndone
}
