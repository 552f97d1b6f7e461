package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ledesma/centavo/internal/app"
	"github.com/ledesma/centavo/internal/engine/history"
	"github.com/ledesma/centavo/internal/record"
)

// errQuit signals a clean exit from the shell loop.
var errQuit = errors.New("quit")

// shellCommand binds one shell verb to its handler.
type shellCommand struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, args []string) error
}

// shell reads verbs from one line-oriented input stream and dispatches
// them against the application facade.
type shell struct {
	app      *app.Application
	in       io.Reader
	out      io.Writer
	commands map[string]*shellCommand
	order    []string
}

func newShell(application *app.Application, in io.Reader, out io.Writer) *shell {
	s := &shell{
		app:      application,
		in:       in,
		out:      out,
		commands: make(map[string]*shellCommand),
	}

	s.register(&shellCommand{
		name:    "add",
		usage:   "add <date> <income|expense> <amount> [cat:NAME] [acct:NAME] <description>",
		summary: "Record a transaction (date accepts today and yesterday)",
		run:     s.cmdAdd,
	})
	s.register(&shellCommand{
		name:    "rm",
		usage:   "rm <id>",
		summary: "Remove a transaction by identifier or unique prefix",
		run:     s.cmdRemove,
	})
	s.register(&shellCommand{
		name:    "list",
		usage:   "list",
		summary: "List stored transactions",
		run:     s.cmdList,
	})
	s.register(&shellCommand{
		name:    "undo",
		usage:   "undo",
		summary: "Revert the most recent operation",
		run:     s.cmdUndo,
	})
	s.register(&shellCommand{
		name:    "redo",
		usage:   "redo",
		summary: "Re-apply the most recently undone operation",
		run:     s.cmdRedo,
	})
	s.register(&shellCommand{
		name:    "history",
		usage:   "history [n]",
		summary: "Show the last n audit records (default 10)",
		run:     s.cmdHistory,
	})
	s.register(&shellCommand{
		name:    "dups",
		usage:   "dups",
		summary: "List groups of duplicate transactions",
		run:     s.cmdDuplicates,
	})
	s.register(&shellCommand{
		name:    "sweep",
		usage:   "sweep",
		summary: "Remove duplicate transactions as one reversible operation",
		run:     s.cmdSweep,
	})
	s.register(&shellCommand{
		name:    "import",
		usage:   "import <path>",
		summary: "Import transactions from a JSON export as one reversible operation",
		run:     s.cmdImport,
	})
	s.register(&shellCommand{
		name:    "status",
		usage:   "status",
		summary: "Show project, backend, and history state",
		run:     s.cmdStatus,
	})
	s.register(&shellCommand{
		name:    "clear",
		usage:   "clear",
		summary: "Drop both history stacks (stored rows are kept)",
		run:     s.cmdClear,
	})
	s.register(&shellCommand{
		name:    "help",
		usage:   "help",
		summary: "Show this list",
		run:     s.cmdHelp,
	})
	s.register(&shellCommand{
		name:    "quit",
		usage:   "quit",
		summary: "Leave the shell",
		run: func(ctx context.Context, args []string) error {
			return errQuit
		},
	})

	return s
}

func (s *shell) register(cmd *shellCommand) {
	s.commands[cmd.name] = cmd
	s.order = append(s.order, cmd.name)
}

// run loops until quit, EOF, or a read failure. Command errors are
// reported and the loop continues.
func (s *shell) run() error {
	ctx := context.Background()
	cfg := s.app.Config()
	fmt.Fprintf(s.out, "Centavo %s  project %q on %s\n", version, cfg.Project, cfg.Store.Backend)
	fmt.Fprintf(s.out, "Type 'help' for commands.\n")

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprintf(s.out, "centavo> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		name := strings.ToLower(fields[0])
		if name == "exit" {
			name = "quit"
		}
		cmd, ok := s.commands[name]
		if !ok {
			fmt.Fprintf(s.out, "Unknown command %q. Type 'help' for a list.\n", fields[0])
			continue
		}

		err := cmd.run(ctx, fields[1:])
		switch {
		case err == nil:
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, app.ErrClosed):
			return nil
		default:
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}
}

func (s *shell) cmdAdd(ctx context.Context, args []string) error {
	tx, err := parseAddArgs(args)
	if err != nil {
		return err
	}
	desc, err := s.app.AddTransaction(ctx, tx)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, desc)
	return nil
}

func (s *shell) cmdRemove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: rm <id>")
	}
	id, err := s.resolveID(ctx, args[0])
	if err != nil {
		return err
	}
	desc, err := s.app.RemoveTransaction(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, desc)
	return nil
}

func (s *shell) cmdList(ctx context.Context, args []string) error {
	txs, err := s.app.Transactions(ctx)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintln(s.out, "No transactions.")
		return nil
	}
	currency := s.app.Config().Currency
	for _, tx := range txs {
		fmt.Fprintf(s.out, "%-8s  %s  %-7s  %14s  %s\n",
			shortID(tx.ID),
			tx.Date.Format(record.DateLayout),
			tx.Kind,
			record.FormatAmount(currency, tx.Amount),
			tx.Description)
	}
	fmt.Fprintf(s.out, "%d transactions\n", len(txs))
	return nil
}

func (s *shell) cmdUndo(ctx context.Context, args []string) error {
	desc, err := s.app.Undo(ctx)
	if errors.Is(err, history.ErrNothingToUndo) {
		fmt.Fprintln(s.out, "Nothing to undo.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Undone: %s\n", desc)
	return nil
}

func (s *shell) cmdRedo(ctx context.Context, args []string) error {
	desc, err := s.app.Redo(ctx)
	if errors.Is(err, history.ErrNothingToRedo) {
		fmt.Fprintln(s.out, "Nothing to redo.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Redone: %s\n", desc)
	return nil
}

func (s *shell) cmdHistory(ctx context.Context, args []string) error {
	limit := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid count %q", args[0])
		}
		limit = n
	}
	records, err := s.app.AuditTrail(ctx, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(s.out, "No recorded operations.")
		return nil
	}
	for _, rec := range records {
		fmt.Fprintf(s.out, "%s  %-4s  %s\n",
			rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
			rec.Direction,
			rec.Description)
	}
	return nil
}

func (s *shell) cmdDuplicates(ctx context.Context, args []string) error {
	groups, err := s.app.Duplicates(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Fprintln(s.out, "No duplicates found.")
		return nil
	}
	currency := s.app.Config().Currency
	for _, g := range groups {
		fmt.Fprintf(s.out, "%s\n", g.Keep.Label(currency))
		fmt.Fprintf(s.out, "  keep   %s\n", shortID(g.Keep.ID))
		for _, extra := range g.Extras {
			fmt.Fprintf(s.out, "  extra  %s\n", shortID(extra.ID))
		}
	}
	return nil
}

func (s *shell) cmdSweep(ctx context.Context, args []string) error {
	desc, removed, err := s.app.SweepDuplicates(ctx)
	if err != nil {
		return err
	}
	if removed == 0 {
		fmt.Fprintln(s.out, "No duplicates found.")
		return nil
	}
	fmt.Fprintln(s.out, desc)
	return nil
}

func (s *shell) cmdImport(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: import <path>")
	}
	desc, _, err := s.app.ImportJSON(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, desc)
	return nil
}

func (s *shell) cmdStatus(ctx context.Context, args []string) error {
	status, err := s.app.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Project:      %s\n", status.Project)
	fmt.Fprintf(s.out, "Backend:      %s\n", status.Backend)
	fmt.Fprintf(s.out, "Transactions: %d\n", status.Transactions)
	fmt.Fprintf(s.out, "History:      %d undo, %d redo (max %d)\n",
		status.UndoCount, status.RedoCount, status.MaxEntries)
	metrics := s.app.Metrics().Snapshot()
	fmt.Fprintf(s.out, "Operations:   %d total, %d failed\n",
		metrics.TotalOps(), metrics.FailureCount)
	if desc, ok := s.app.PeekUndoDescription(); ok {
		fmt.Fprintf(s.out, "Next undo:    %s\n", desc)
	}
	if desc, ok := s.app.PeekRedoDescription(); ok {
		fmt.Fprintf(s.out, "Next redo:    %s\n", desc)
	}
	return nil
}

func (s *shell) cmdClear(ctx context.Context, args []string) error {
	s.app.ClearHistory()
	fmt.Fprintln(s.out, "History cleared.")
	return nil
}

func (s *shell) cmdHelp(ctx context.Context, args []string) error {
	for _, name := range s.order {
		cmd := s.commands[name]
		fmt.Fprintf(s.out, "  %-72s %s\n", cmd.usage, cmd.summary)
	}
	return nil
}

// resolveID expands an identifier prefix to the full stored identifier.
func (s *shell) resolveID(ctx context.Context, prefix string) (string, error) {
	txs, err := s.app.Transactions(ctx)
	if err != nil {
		return "", err
	}
	var match string
	for _, tx := range txs {
		if !strings.HasPrefix(tx.ID, prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("identifier %q is ambiguous", prefix)
		}
		match = tx.ID
	}
	if match == "" {
		return "", fmt.Errorf("no transaction matches %q", prefix)
	}
	return match, nil
}

// parseAddArgs builds a transaction from add's positional arguments.
// Tokens after the amount prefixed cat: or acct: set the category and
// account; everything else joins into the description.
func parseAddArgs(args []string) (record.Transaction, error) {
	if len(args) < 4 {
		return record.Transaction{}, errors.New("usage: add <date> <income|expense> <amount> <description>")
	}

	date, err := parseShellDate(args[0])
	if err != nil {
		return record.Transaction{}, err
	}
	kind, err := record.ParseKind(args[1])
	if err != nil {
		return record.Transaction{}, err
	}
	amount, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return record.Transaction{}, fmt.Errorf("invalid amount %q", args[2])
	}

	tx := record.Transaction{
		Date:   date,
		Kind:   kind,
		Amount: amount,
	}
	var desc []string
	for _, tok := range args[3:] {
		switch {
		case strings.HasPrefix(tok, "cat:"):
			tx.Category = strings.TrimPrefix(tok, "cat:")
		case strings.HasPrefix(tok, "acct:"):
			tx.Account = strings.TrimPrefix(tok, "acct:")
		default:
			desc = append(desc, tok)
		}
	}
	tx.Description = strings.Join(desc, " ")
	return tx, nil
}

func parseShellDate(raw string) (time.Time, error) {
	switch strings.ToLower(raw) {
	case "today":
		return dateOnly(time.Now()), nil
	case "yesterday":
		return dateOnly(time.Now().AddDate(0, 0, -1)), nil
	}
	date, err := time.Parse(record.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want %s, today, or yesterday)", raw, record.DateLayout)
	}
	return date, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
