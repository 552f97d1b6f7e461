// Package sqlite provides a SQLite-backed transaction store.
//
// The database lives in a single file whose schema is created on open.
// Dates are stored in their canonical day-precision text form so rows
// stay readable with any SQLite shell.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ledesma/centavo/internal/record"
	"github.com/ledesma/centavo/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id          TEXT PRIMARY KEY,
	project     TEXT NOT NULL,
	date        TEXT NOT NULL,
	amount      REAL NOT NULL,
	kind        TEXT NOT NULL,
	category    TEXT NOT NULL DEFAULT '',
	account     TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS transactions_date_idx ON transactions (date);
`

// Store persists transactions in a local SQLite database.
type Store struct {
	db *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens the database at path, creating the schema when missing.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts tx under a fresh identifier and returns it.
func (s *Store) Create(ctx context.Context, tx record.Transaction) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO transactions (
		   id, project, date, amount, kind, category, account, description, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		tx.Project,
		tx.Date.UTC().Format(record.DateLayout),
		tx.Amount,
		string(tx.Kind),
		tx.Category,
		tx.Account,
		tx.Description,
		toMillis(time.Now()),
	)
	if err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}
	return id, nil
}

// Delete removes the transaction with the given identifier.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Get returns the transaction with the given identifier.
func (s *Store) Get(ctx context.Context, id string) (record.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return record.Transaction{}, err
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, project, date, amount, kind, category, account, description
		   FROM transactions
		  WHERE id = ?`,
		id,
	)
	tx, err := scanTransaction(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record.Transaction{}, store.ErrNotFound
		}
		return record.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// List returns every stored transaction ordered by date, then
// identifier.
func (s *Store) List(ctx context.Context) ([]record.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, project, date, amount, kind, category, account, description
		   FROM transactions
		  ORDER BY date ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []record.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// scanTransaction reads one row through scan, which is either
// sql.Row.Scan or sql.Rows.Scan.
func scanTransaction(scan func(dest ...any) error) (record.Transaction, error) {
	var tx record.Transaction
	var date string
	var kind string
	if err := scan(
		&tx.ID,
		&tx.Project,
		&date,
		&tx.Amount,
		&kind,
		&tx.Category,
		&tx.Account,
		&tx.Description,
	); err != nil {
		return record.Transaction{}, err
	}
	parsed, err := time.Parse(record.DateLayout, date)
	if err != nil {
		return record.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	tx.Date = parsed
	tx.Kind = record.Kind(kind)
	return tx, nil
}
