package command

import (
	"context"
	"fmt"
)

// Batch groups an ordered sequence of commands as one atomic unit. The
// whole batch is pushed onto history stacks, never the individual
// sub-commands.
type Batch struct {
	Lifecycle

	desc string
	cmds []Command
}

// NewBatch creates a batch over the given commands. The sequence must be
// non-empty; insertion order is execution order. An empty description
// defaults to a count summary.
func NewBatch(description string, cmds ...Command) (*Batch, error) {
	if len(cmds) == 0 {
		return nil, ErrEmptyBatch
	}
	if description == "" {
		description = fmt.Sprintf("%d operations", len(cmds))
	}
	return &Batch{
		desc: description,
		cmds: append([]Command(nil), cmds...),
	}, nil
}

// Len returns the number of sub-commands.
func (b *Batch) Len() int {
	return len(b.cmds)
}

// Execute applies sub-commands in index order. On the first failure it
// sweeps every applied sub-command back in reverse order, attempting each
// one even when an earlier revert fails, and returns an *ExecutionError
// naming the failing index and carrying any sweep failures. Sub-commands
// already applied by a previous partially-swept attempt are skipped, so a
// resubmitted batch resumes instead of double-applying.
func (b *Batch) Execute(ctx context.Context) error {
	b.MustBeExecutable(b.desc)

	for i, cmd := range b.cmds {
		if cmd.State() == StateExecuted {
			continue
		}
		if err := cmd.Execute(ctx); err != nil {
			return &ExecutionError{
				Description: b.desc,
				Index:       i,
				Err:         err,
				Rollback:    b.sweepBack(ctx, i-1),
			}
		}
	}

	b.MarkExecuted()
	return nil
}

// sweepBack reverts applied sub-commands from index from down to 0.
// Best-effort: every applied sub-command is attempted.
func (b *Batch) sweepBack(ctx context.Context, from int) []error {
	var errs []error
	for j := from; j >= 0; j-- {
		if b.cmds[j].State() != StateExecuted {
			continue
		}
		if err := b.cmds[j].Undo(ctx); err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", j, err))
		}
	}
	return errs
}

// Undo reverts sub-commands in reverse index order, stopping at the first
// failure. The returned *RollbackError names the failing index and every
// sub-command still applied; those reverts are not retried here.
// Sub-commands already reverted by an earlier partial undo are skipped,
// so a retried undo resumes where the last attempt stopped.
func (b *Batch) Undo(ctx context.Context) error {
	b.MustBeUndoable(b.desc)

	for i := len(b.cmds) - 1; i >= 0; i-- {
		cmd := b.cmds[i]
		if cmd.State() == StateUndone {
			continue
		}
		if err := cmd.Undo(ctx); err != nil {
			return &RollbackError{
				Description: b.desc,
				Index:       i,
				Unreverted:  b.describeApplied(i),
				Err:         err,
			}
		}
	}

	b.MarkUndone()
	return nil
}

// describeApplied lists sub-commands at or below index that remain
// applied, lowest index first.
func (b *Batch) describeApplied(index int) []string {
	var still []string
	for j := 0; j <= index; j++ {
		if b.cmds[j].State() == StateExecuted {
			still = append(still, b.cmds[j].Description())
		}
	}
	return still
}

// Description returns the batch's summary description.
func (b *Batch) Description() string {
	return b.desc
}
