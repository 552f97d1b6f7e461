package ledger

import (
	"context"
	"fmt"

	"github.com/ledesma/centavo/internal/engine/command"
	"github.com/ledesma/centavo/internal/record"
	"github.com/ledesma/centavo/internal/store"
)

// Ledger builds reversible commands against one transaction store.
type Ledger struct {
	store    store.Store
	currency string
}

// Option adjusts a Ledger.
type Option func(*Ledger)

// WithCurrency sets the currency symbol used in command descriptions.
func WithCurrency(symbol string) Option {
	return func(l *Ledger) {
		if symbol != "" {
			l.currency = symbol
		}
	}
}

// New returns a Ledger that mutates st.
func New(st store.Store, opts ...Option) *Ledger {
	l := &Ledger{store: st, currency: record.DefaultCurrency}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CreateCommand inserts one transaction on execute and removes it
// again on undo.
type CreateCommand struct {
	command.Lifecycle

	store store.Store
	tx    record.Transaction
	desc  string
	id    string
}

// Create validates tx and returns the command that will insert it.
func (l *Ledger) Create(tx record.Transaction) (*CreateCommand, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return &CreateCommand{
		store: l.store,
		tx:    tx,
		desc:  "Add transaction: " + tx.Label(l.currency),
	}, nil
}

// Execute inserts the transaction and remembers the assigned
// identifier.
func (c *CreateCommand) Execute(ctx context.Context) error {
	c.MustBeExecutable(c.desc)
	id, err := c.store.Create(ctx, c.tx)
	if err != nil {
		return &command.ExecutionError{Description: c.desc, Index: -1, Err: err}
	}
	c.id = id
	c.tx.ID = id
	c.MarkExecuted()
	return nil
}

// Undo deletes the inserted row.
func (c *CreateCommand) Undo(ctx context.Context) error {
	c.MustBeUndoable(c.desc)
	if err := c.store.Delete(ctx, c.id); err != nil {
		return &command.RollbackError{Description: c.desc, Index: -1, Err: err}
	}
	c.id = ""
	c.tx.ID = ""
	c.MarkUndone()
	return nil
}

// Description returns the human-readable command label.
func (c *CreateCommand) Description() string {
	return c.desc
}

// ID returns the identifier of the inserted row while the command is
// applied, and "" otherwise.
func (c *CreateCommand) ID() string {
	return c.id
}

// DeleteCommand removes one stored transaction on execute and
// re-inserts it on undo. It carries a full snapshot of the row so the
// revert can reconstruct it; the re-inserted row may receive a new
// identifier, which the command records so a later redo targets the
// right row.
type DeleteCommand struct {
	command.Lifecycle

	store store.Store
	tx    record.Transaction
	desc  string
	id    string
}

// Delete returns the command that will remove the stored transaction
// tx. The snapshot must carry the row's identifier.
func (l *Ledger) Delete(tx record.Transaction) (*DeleteCommand, error) {
	if tx.ID == "" {
		return nil, fmt.Errorf("delete command requires a stored transaction identifier")
	}
	return &DeleteCommand{
		store: l.store,
		tx:    tx,
		desc:  "Remove transaction: " + tx.Label(l.currency),
		id:    tx.ID,
	}, nil
}

// DeleteByID fetches the row's snapshot and returns the command that
// will remove it.
func (l *Ledger) DeleteByID(ctx context.Context, id string) (*DeleteCommand, error) {
	tx, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return l.Delete(tx)
}

// Execute removes the row.
func (c *DeleteCommand) Execute(ctx context.Context) error {
	c.MustBeExecutable(c.desc)
	if err := c.store.Delete(ctx, c.id); err != nil {
		return &command.ExecutionError{Description: c.desc, Index: -1, Err: err}
	}
	c.MarkExecuted()
	return nil
}

// Undo re-inserts the snapshot and records its new identifier.
func (c *DeleteCommand) Undo(ctx context.Context) error {
	c.MustBeUndoable(c.desc)
	id, err := c.store.Create(ctx, c.tx)
	if err != nil {
		return &command.RollbackError{Description: c.desc, Index: -1, Err: err}
	}
	c.id = id
	c.tx.ID = id
	c.MarkUndone()
	return nil
}

// Description returns the human-readable command label.
func (c *DeleteCommand) Description() string {
	return c.desc
}

// CreateBatch wraps one CreateCommand per transaction in a single
// atomic batch. An empty description defaults to "Add N transactions".
func (l *Ledger) CreateBatch(description string, txs ...record.Transaction) (*command.Batch, error) {
	if len(txs) == 0 {
		return nil, command.ErrEmptyBatch
	}
	cmds := make([]command.Command, 0, len(txs))
	for i, tx := range txs {
		cmd, err := l.Create(tx)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		cmds = append(cmds, cmd)
	}
	if description == "" {
		description = fmt.Sprintf("Add %d transactions", len(txs))
	}
	return command.NewBatch(description, cmds...)
}
