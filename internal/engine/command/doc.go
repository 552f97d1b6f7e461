// Package command defines the reversible unit of work the engine is built
// around: an action that can be executed against external state, undone,
// and described to a user.
//
// # Lifecycle
//
// Every command moves through a small state machine:
//
//	Unexecuted -> Executed <-> Undone
//
// Execute is valid from Unexecuted or Undone and moves the command to
// Executed. Undo is valid only from Executed and moves it to Undone.
// Calling either from any other state is a programming error and panics;
// a command never silently no-ops. Concrete commands embed Lifecycle to
// get the state tracking and the transition guards.
//
// # Failure semantics
//
// A failed Execute leaves the command in its originating state and
// returns an *ExecutionError. A failed Undo leaves the command Executed
// and returns a *RollbackError. Both are plain values that wrap their
// cause; nothing is thrown past the caller.
//
// # Batches
//
// Batch groups an ordered, non-empty sequence of commands into one atomic
// unit. If a sub-command fails mid-apply, everything already applied is
// swept back in reverse order before the error is returned, so a batch is
// never left partially applied at rest. Undo walks the sequence in
// reverse and fails fast, reporting which sub-commands are still applied.
package command
