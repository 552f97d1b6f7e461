// Package history provides bounded undo/redo over reversible commands.
//
// The History type owns two stacks. Executing a command pushes it onto
// the undo stack and clears the redo stack, so history stays strictly
// linear: undoing and then executing something new forfeits the redo
// path. Undo and redo move one command between the stacks, invoking its
// Undo or Execute.
//
// # Bounded stacks
//
// Both stacks are capped at maxEntries. When a push would exceed the
// cap, the oldest (bottom) entry is evicted silently; it can no longer
// be undone or redone, but its audit records remain in the sink.
//
// # Failure discipline
//
// A command whose revert fails is pushed back onto the undo stack, never
// dropped: it is still applied and must stay reachable. The symmetric
// rule holds for a redo whose apply fails. Empty-stack calls return
// ErrNothingToUndo / ErrNothingToRedo.
//
// # Audit
//
// With a sink attached, every successful execute, undo, and redo appends
// one descriptive record. The sink is diagnostic only: append failures
// are routed to an optional handler and never fail the operation, and
// records are never read back to rebuild stack state.
//
// # Serialization
//
// One mutex is held across the whole pop/run/push sequence, so
// concurrent callers observe each operation as a single atomic step.
// Store-backed commands may block on I/O while the lock is held;
// timeouts belong to the store adapter, not to this layer.
package history
