package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/ledesma/centavo/internal/audit"
	"github.com/ledesma/centavo/internal/engine/command"
	"github.com/ledesma/centavo/internal/engine/history"
	"github.com/ledesma/centavo/internal/ledger"
)

var errBackendDown = errors.New("backend down")

// failingCommand stands in for a write whose backend is unreachable.
type failingCommand struct {
	command.Lifecycle
}

func (c *failingCommand) Execute(ctx context.Context) error {
	c.MustBeExecutable(c.Description())
	return errBackendDown
}

func (c *failingCommand) Undo(ctx context.Context) error {
	c.MustBeUndoable(c.Description())
	c.MarkUndone()
	return nil
}

func (c *failingCommand) Description() string {
	return "unreachable write"
}

func newAuditedApp(t *testing.T) (*Application, *audit.MemorySink) {
	t.Helper()
	cfg := testConfig()
	sink := audit.NewMemorySink()
	application, err := New(Options{
		Config:    &cfg,
		LogOutput: io.Discard,
		AuditSink: sink,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = application.Close() })
	return application, sink
}

func TestBatchFailureLeavesNoTrace(t *testing.T) {
	application, sink := newAuditedApp(t)
	ctx := context.Background()

	led := ledger.New(application.Store())
	cmdA, err := led.Create(testTx(1, "rent"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	cmdB, err := led.Create(testTx(2, "groceries"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	batch, err := command.NewBatch("Add 3 transactions", cmdA, cmdB, &failingCommand{})
	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}

	err = application.ExecuteCommand(ctx, batch)
	if err == nil {
		t.Fatal("batch with a failing member executed cleanly")
	}
	var ee *command.ExecutionError
	if !errors.As(err, &ee) {
		t.Fatalf("error type = %T, expected *command.ExecutionError", err)
	}
	if ee.Index != 2 {
		t.Errorf("Index = %d, expected 2", ee.Index)
	}
	if !errors.Is(err, errBackendDown) {
		t.Errorf("error chain does not reach the cause: %v", err)
	}
	if len(ee.Rollback) != 0 {
		t.Errorf("Rollback holds %d errors, expected none", len(ee.Rollback))
	}

	// The first two writes were swept back and nothing reached the
	// history or the audit trail.
	txs, err := application.Transactions(ctx)
	if err != nil {
		t.Fatalf("Transactions failed: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("store holds %d rows after failed batch, expected 0", len(txs))
	}
	if application.CanUndo() {
		t.Error("CanUndo = true after failed batch")
	}
	if sink.Len() != 0 {
		t.Errorf("audit sink holds %d records after failed batch, expected 0", sink.Len())
	}
	if got := application.Metrics().Snapshot().FailureCount; got != 1 {
		t.Errorf("FailureCount = %d, expected 1", got)
	}
}

func TestUndoRedoAuditTrail(t *testing.T) {
	application, sink := newAuditedApp(t)
	ctx := context.Background()

	added, err := application.AddTransaction(ctx, testTx(10, "march salary"))
	if err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	if sink.Len() != 1 {
		t.Fatalf("audit sink holds %d records after add, expected 1", sink.Len())
	}

	if _, err := application.Undo(ctx); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	txs, err := application.Transactions(ctx)
	if err != nil {
		t.Fatalf("Transactions failed: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("store holds %d rows after undo, expected 0", len(txs))
	}

	if _, err := application.Redo(ctx); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	txs, err = application.Transactions(ctx)
	if err != nil {
		t.Fatalf("Transactions failed: %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("store holds %d rows after redo, expected 1", len(txs))
	}

	records, err := application.AuditTrail(ctx, 0)
	if err != nil {
		t.Fatalf("AuditTrail failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("trail holds %d records, expected 3", len(records))
	}
	directions := []audit.Direction{audit.Do, audit.Undo, audit.Redo}
	for i, rec := range records {
		if rec.Direction != directions[i] {
			t.Errorf("record %d direction = %q, expected %q", i, rec.Direction, directions[i])
		}
		if rec.Description != added {
			t.Errorf("record %d description = %q, expected %q", i, rec.Description, added)
		}
		if rec.Timestamp.IsZero() {
			t.Errorf("record %d has a zero timestamp", i)
		}
	}
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Before(records[i-1].Timestamp) {
			t.Errorf("record %d predates record %d", i, i-1)
		}
	}
}

func TestExecuteClearsRedo(t *testing.T) {
	application, _ := newAuditedApp(t)
	ctx := context.Background()

	if _, err := application.AddTransaction(ctx, testTx(10, "first")); err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	if _, err := application.Undo(ctx); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if !application.CanRedo() {
		t.Fatal("CanRedo = false after undo")
	}

	if _, err := application.AddTransaction(ctx, testTx(11, "second")); err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	if application.CanRedo() {
		t.Error("CanRedo = true after a fresh execute")
	}
	if _, err := application.Redo(ctx); !errors.Is(err, history.ErrNothingToRedo) {
		t.Errorf("Redo error = %v, expected ErrNothingToRedo", err)
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	application, _ := newAuditedApp(t)
	ctx := context.Background()

	total := history.DefaultMaxEntries + 5
	for i := 0; i < total; i++ {
		tx := testTx((i%27)+1, fmt.Sprintf("entry %d", i))
		if _, err := application.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("AddTransaction %d failed: %v", i, err)
		}
	}

	status, err := application.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.UndoCount != history.DefaultMaxEntries {
		t.Errorf("UndoCount = %d, expected %d", status.UndoCount, history.DefaultMaxEntries)
	}
	if status.Transactions != total {
		t.Errorf("Transactions = %d, expected %d", status.Transactions, total)
	}

	// The oldest entries fell off the bottom; the newest is still on top.
	snap := application.History().Snapshot()
	if len(snap.UndoDescriptions) != history.DefaultMaxEntries {
		t.Fatalf("snapshot holds %d descriptions, expected %d",
			len(snap.UndoDescriptions), history.DefaultMaxEntries)
	}
	top := snap.UndoDescriptions[len(snap.UndoDescriptions)-1]
	if want := fmt.Sprintf("entry %d", total-1); !strings.Contains(top, want) {
		t.Errorf("top of stack = %q, expected it to mention %q", top, want)
	}
	bottom := snap.UndoDescriptions[0]
	if want := fmt.Sprintf("entry %d", total-history.DefaultMaxEntries); !strings.Contains(bottom, want) {
		t.Errorf("bottom of stack = %q, expected it to mention %q", bottom, want)
	}
}
