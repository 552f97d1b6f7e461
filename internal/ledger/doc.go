// Package ledger builds the reversible commands that mutate the
// transaction store and the maintenance tooling layered on them.
//
// # Commands
//
// Create inserts one transaction and deletes it again on revert.
// Delete is the inverse: built from a stored row snapshot, it removes
// the row and re-inserts the snapshot on revert. Both wrap store
// failures in the engine's error taxonomy so callers see apply and
// revert failures as plain data.
//
// # Maintenance
//
// FindDuplicates groups rows whose date, description, and amount
// match. SweepDuplicates turns the redundant copies into one
// reversible batch. ParseImport reads a JSON export, accepting the
// legacy Spanish field names alongside the current ones.
package ledger
