package ledger

import (
	"context"
	"fmt"

	"github.com/ledesma/centavo/internal/engine/command"
	"github.com/ledesma/centavo/internal/record"
)

// DuplicateGroup names one kept transaction and its redundant copies.
type DuplicateGroup struct {
	Keep   record.Transaction
	Extras []record.Transaction
}

// FindDuplicates scans the store and groups transactions whose date,
// normalized description, and amount match. The first row in List
// order is kept; later rows are the extras.
func (l *Ledger) FindDuplicates(ctx context.Context) ([]DuplicateGroup, error) {
	txs, err := l.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var order []string
	byPrint := make(map[string]*DuplicateGroup)
	for _, tx := range txs {
		print := tx.Fingerprint()
		group, ok := byPrint[print]
		if !ok {
			byPrint[print] = &DuplicateGroup{Keep: tx}
			order = append(order, print)
			continue
		}
		group.Extras = append(group.Extras, tx)
	}

	var groups []DuplicateGroup
	for _, print := range order {
		group := byPrint[print]
		if len(group.Extras) > 0 {
			groups = append(groups, *group)
		}
	}
	return groups, nil
}

// SweepDuplicates builds one reversible batch that removes every extra
// copy found by FindDuplicates, returning the groups alongside it so
// callers can preview what goes. A nil batch with a nil error means
// the store holds no duplicates.
func (l *Ledger) SweepDuplicates(ctx context.Context) (*command.Batch, []DuplicateGroup, error) {
	groups, err := l.FindDuplicates(ctx)
	if err != nil {
		return nil, nil, err
	}

	var cmds []command.Command
	for _, group := range groups {
		for _, extra := range group.Extras {
			cmd, err := l.Delete(extra)
			if err != nil {
				return nil, nil, err
			}
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil, groups, nil
	}

	label := fmt.Sprintf("Remove %d duplicate transactions", len(cmds))
	if len(cmds) == 1 {
		label = "Remove 1 duplicate transaction"
	}
	batch, err := command.NewBatch(label, cmds...)
	if err != nil {
		return nil, nil, err
	}
	return batch, groups, nil
}
