// Package supabase provides a Supabase-backed transaction store.
//
// Rows live in a PostgREST table, "transactions" unless configured
// otherwise. Identifiers are generated client side so a create can be
// reverted without reading the insert response.
package supabase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	supabase "github.com/supabase-community/supabase-go"

	"github.com/ledesma/centavo/internal/record"
	"github.com/ledesma/centavo/internal/store"
)

// DefaultTable is the table used when Options.Table is empty.
const DefaultTable = "transactions"

// Options configure the Supabase connection.
type Options struct {
	URL   string
	Key   string
	Table string
}

// Store persists transactions in a Supabase table.
type Store struct {
	client *supabase.Client
	table  string
}

// txRow mirrors the transactions table schema.
type txRow struct {
	ID          string  `json:"id"`
	Project     string  `json:"project"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Kind        string  `json:"kind"`
	Category    string  `json:"category"`
	Account     string  `json:"account"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at,omitempty"` // String to handle Supabase timestamp format
}

// New connects to Supabase and returns a transaction store.
func New(opts Options) (*Store, error) {
	url := strings.TrimSpace(opts.URL)
	key := strings.TrimSpace(opts.Key)
	if url == "" || key == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	table := strings.TrimSpace(opts.Table)
	if table == "" {
		table = DefaultTable
	}
	return &Store{client: client, table: table}, nil
}

// Create inserts tx and returns the generated identifier.
func (s *Store) Create(ctx context.Context, tx record.Transaction) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	row := txRow{
		ID:          uuid.NewString(),
		Project:     tx.Project,
		Date:        tx.Date.UTC().Format(record.DateLayout),
		Amount:      tx.Amount,
		Kind:        string(tx.Kind),
		Category:    tx.Category,
		Account:     tx.Account,
		Description: tx.Description,
	}
	var result []txRow
	if _, err := s.client.From(s.table).Insert(row, false, "", "", "").ExecuteTo(&result); err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	return row.ID, nil
}

// Delete removes the row with the given identifier.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, _, err := s.client.From(s.table).
		Delete("representation", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if emptyResult(data) {
		return store.ErrNotFound
	}
	return nil
}

// Get returns the transaction with the given identifier.
func (s *Store) Get(ctx context.Context, id string) (record.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return record.Transaction{}, err
	}
	var rows []txRow
	_, err := s.client.From(s.table).
		Select("*", "", false).
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return record.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	if len(rows) == 0 {
		return record.Transaction{}, store.ErrNotFound
	}
	return rows[0].transaction()
}

// List returns every stored transaction ordered by date, then
// identifier.
func (s *Store) List(ctx context.Context) ([]record.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []txRow
	_, err := s.client.From(s.table).
		Select("*", "", false).
		Order("date", nil).
		Order("id", nil).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]record.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := row.transaction()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// Close is a no-op; the client holds no connection state.
func (s *Store) Close() error {
	return nil
}

func (r txRow) transaction() (record.Transaction, error) {
	date, err := time.Parse(record.DateLayout, r.Date)
	if err != nil {
		return record.Transaction{}, fmt.Errorf("parse stored date %q: %w", r.Date, err)
	}
	return record.Transaction{
		ID:          r.ID,
		Project:     r.Project,
		Date:        date,
		Amount:      r.Amount,
		Kind:        record.Kind(r.Kind),
		Category:    r.Category,
		Account:     r.Account,
		Description: r.Description,
	}, nil
}

// emptyResult reports whether a returning=representation payload holds
// no rows.
func emptyResult(data []byte) bool {
	trimmed := strings.TrimSpace(string(data))
	return trimmed == "" || trimmed == "[]"
}
