package app

import (
	"encoding/json"
	"os"
)

// snapshotDigestSize caps how many descriptions each stack contributes
// to the snapshot file.
const snapshotDigestSize = 10

// historySnapshot is the on-disk digest layout.
type historySnapshot struct {
	UndoCount        int      `json:"undo_count"`
	RedoCount        int      `json:"redo_count"`
	UndoDescriptions []string `json:"undo_descriptions"`
	RedoDescriptions []string `json:"redo_descriptions"`
}

// WriteHistorySnapshot writes a small JSON digest of the undo state to
// the configured snapshot path, keeping the last ten descriptions per
// stack. The file is diagnostic only; nothing reads it back to restore
// state. An empty snapshot path disables the writer.
func (app *Application) WriteHistorySnapshot() error {
	path := app.cfg.History.SnapshotPath
	if path == "" {
		return nil
	}

	snap := app.history.Snapshot()
	digest := historySnapshot{
		UndoCount:        snap.UndoCount,
		RedoCount:        snap.RedoCount,
		UndoDescriptions: lastN(snap.UndoDescriptions, snapshotDigestSize),
		RedoDescriptions: lastN(snap.RedoDescriptions, snapshotDigestSize),
	}

	data, err := json.MarshalIndent(digest, "", "  ")
	if err != nil {
		return WrapError(err, "encode history snapshot")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return WrapError(err, "write history snapshot %s", path)
	}
	return nil
}

// snapshotHistory mirrors the stacks to the snapshot file after a
// history-mutating operation. Failures are logged, never returned; the
// file has the same diagnostic-only standing as the audit log.
func (app *Application) snapshotHistory() {
	if err := app.WriteHistorySnapshot(); err != nil {
		app.logger.Warn("history snapshot failed: %v", err)
	}
}

// lastN returns the final n elements of items.
func lastN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
