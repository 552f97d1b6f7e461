package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ledesma/centavo/internal/audit"
	"github.com/ledesma/centavo/internal/engine/command"
	"github.com/ledesma/centavo/internal/engine/history"
	"github.com/ledesma/centavo/internal/ledger"
	"github.com/ledesma/centavo/internal/record"
)

// ExecuteCommand runs cmd through the history manager. On success the
// redo stack is cleared and the command becomes the next undo target.
func (app *Application) ExecuteCommand(ctx context.Context, cmd command.Command) error {
	if app.closed.Load() {
		return ErrClosed
	}
	timer := StartTimer()
	err := app.history.Execute(ctx, cmd)
	app.metrics.RecordExecute(timer.Elapsed(), err == nil)
	if err != nil {
		app.logger.Error("execute failed: %s: %v", cmd.Description(), err)
		return err
	}
	app.logger.Info("executed: %s", cmd.Description())
	app.snapshotHistory()
	return nil
}

// AddTransaction stamps tx with the active project, builds the create
// command, and executes it. It returns the command description.
func (app *Application) AddTransaction(ctx context.Context, tx record.Transaction) (string, error) {
	if app.closed.Load() {
		return "", ErrClosed
	}
	if tx.Project == "" {
		tx.Project = app.cfg.Project
	}
	cmd, err := app.ledger.Create(tx)
	if err != nil {
		return "", NewOperationError("add transaction", tx.Description, err)
	}
	if err := app.ExecuteCommand(ctx, cmd); err != nil {
		return "", err
	}
	return cmd.Description(), nil
}

// AddBatch stamps every transaction with the active project and
// executes them as one atomic reversible batch.
func (app *Application) AddBatch(ctx context.Context, description string, txs ...record.Transaction) (string, error) {
	if app.closed.Load() {
		return "", ErrClosed
	}
	for i := range txs {
		if txs[i].Project == "" {
			txs[i].Project = app.cfg.Project
		}
	}
	batch, err := app.ledger.CreateBatch(description, txs...)
	if err != nil {
		return "", NewOperationError("add batch", description, err)
	}
	if err := app.ExecuteCommand(ctx, batch); err != nil {
		return "", err
	}
	return batch.Description(), nil
}

// RemoveTransaction builds the delete command for the stored row and
// executes it. It returns the command description.
func (app *Application) RemoveTransaction(ctx context.Context, id string) (string, error) {
	if app.closed.Load() {
		return "", ErrClosed
	}
	cmd, err := app.ledger.DeleteByID(ctx, id)
	if err != nil {
		return "", NewOperationError("remove transaction", id, err)
	}
	if err := app.ExecuteCommand(ctx, cmd); err != nil {
		return "", err
	}
	return cmd.Description(), nil
}

// Undo reverts the most recent command and returns its description.
func (app *Application) Undo(ctx context.Context) (string, error) {
	if app.closed.Load() {
		return "", ErrClosed
	}
	timer := StartTimer()
	desc, err := app.history.Undo(ctx)
	app.metrics.RecordUndo(timer.Elapsed(), err == nil)
	if err != nil {
		if !errors.Is(err, history.ErrNothingToUndo) {
			app.logger.Error("undo failed: %v", err)
		}
		return "", err
	}
	app.logger.Info("undone: %s", desc)
	app.snapshotHistory()
	return desc, nil
}

// Redo re-applies the most recently undone command and returns its
// description.
func (app *Application) Redo(ctx context.Context) (string, error) {
	if app.closed.Load() {
		return "", ErrClosed
	}
	timer := StartTimer()
	desc, err := app.history.Redo(ctx)
	app.metrics.RecordRedo(timer.Elapsed(), err == nil)
	if err != nil {
		if !errors.Is(err, history.ErrNothingToRedo) {
			app.logger.Error("redo failed: %v", err)
		}
		return "", err
	}
	app.logger.Info("redone: %s", desc)
	app.snapshotHistory()
	return desc, nil
}

// CanUndo reports whether an undo target exists.
func (app *Application) CanUndo() bool {
	return app.history.CanUndo()
}

// CanRedo reports whether a redo target exists.
func (app *Application) CanRedo() bool {
	return app.history.CanRedo()
}

// PeekUndoDescription returns the description of the next undo target
// without mutating anything.
func (app *Application) PeekUndoDescription() (string, bool) {
	info, ok := app.history.PeekUndo()
	if !ok {
		return "", false
	}
	return info.Description, true
}

// PeekRedoDescription returns the description of the next redo target
// without mutating anything.
func (app *Application) PeekRedoDescription() (string, bool) {
	info, ok := app.history.PeekRedo()
	if !ok {
		return "", false
	}
	return info.Description, true
}

// AuditTrail returns the most recent audit records, oldest first. A
// limit of zero or less returns the full trail.
func (app *Application) AuditTrail(ctx context.Context, limit int) ([]audit.Record, error) {
	return app.history.Recent(ctx, limit)
}

// Transactions lists every stored transaction.
func (app *Application) Transactions(ctx context.Context) ([]record.Transaction, error) {
	if app.closed.Load() {
		return nil, ErrClosed
	}
	return app.store.List(ctx)
}

// Duplicates previews the duplicate groups currently in the store.
func (app *Application) Duplicates(ctx context.Context) ([]ledger.DuplicateGroup, error) {
	if app.closed.Load() {
		return nil, ErrClosed
	}
	return app.ledger.FindDuplicates(ctx)
}

// SweepDuplicates removes every redundant copy in one reversible
// batch. It returns the batch description and the number of removed
// rows; a clean store returns ("", 0, nil).
func (app *Application) SweepDuplicates(ctx context.Context) (string, int, error) {
	if app.closed.Load() {
		return "", 0, ErrClosed
	}
	batch, _, err := app.ledger.SweepDuplicates(ctx)
	if err != nil {
		return "", 0, NewOperationError("sweep duplicates", "", err)
	}
	if batch == nil {
		return "", 0, nil
	}
	if err := app.ExecuteCommand(ctx, batch); err != nil {
		return "", 0, err
	}
	return batch.Description(), batch.Len(), nil
}

// ImportJSON reads a JSON export from path and adds its transactions
// as one atomic reversible batch. Any rejected row aborts the whole
// import before anything is written.
func (app *Application) ImportJSON(ctx context.Context, path string) (string, int, error) {
	if app.closed.Load() {
		return "", 0, ErrClosed
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, NewOperationError("import", path, err)
	}
	txs, err := ledger.ParseImport(data, app.cfg.Project)
	if err != nil {
		return "", 0, NewOperationError("import", path, err)
	}
	if len(txs) == 0 {
		return "", 0, NewOperationError("import", path, errors.New("no transactions found"))
	}
	label := fmt.Sprintf("Import %d transactions", len(txs))
	if len(txs) == 1 {
		label = "Import 1 transaction"
	}
	desc, err := app.AddBatch(ctx, label, txs...)
	if err != nil {
		return "", 0, err
	}
	return desc, len(txs), nil
}

// ClearHistory drops both undo and redo stacks. The audit trail stays
// untouched.
func (app *Application) ClearHistory() {
	app.history.Clear()
	app.logger.Info("history cleared")
	app.snapshotHistory()
}

// Status is a point-in-time summary of the application state.
type Status struct {
	Project      string
	Backend      string
	Transactions int
	CanUndo      bool
	CanRedo      bool
	UndoCount    int
	RedoCount    int
	MaxEntries   int
}

// Status summarizes the store and history state.
func (app *Application) Status(ctx context.Context) (Status, error) {
	if app.closed.Load() {
		return Status{}, ErrClosed
	}
	txs, err := app.store.List(ctx)
	if err != nil {
		return Status{}, NewOperationError("status", "", err)
	}
	return Status{
		Project:      app.cfg.Project,
		Backend:      app.cfg.Store.Backend,
		Transactions: len(txs),
		CanUndo:      app.history.CanUndo(),
		CanRedo:      app.history.CanRedo(),
		UndoCount:    app.history.UndoCount(),
		RedoCount:    app.history.RedoCount(),
		MaxEntries:   app.history.MaxEntries(),
	}, nil
}
