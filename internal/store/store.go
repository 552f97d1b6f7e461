// Package store defines the persistence contract shared by every
// transaction backend.
//
// A Store is a thin create/delete surface plus the read operations the
// maintenance tooling needs. Reversible commands consume only the
// create/delete pair: applying a command creates a row and remembers
// the identifier the backend assigned, reverting it deletes that row
// again. Backends live in the subpackages memory, sqlite, and supabase.
package store

import (
	"context"
	"errors"

	"github.com/ledesma/centavo/internal/record"
)

// ErrNotFound reports that no transaction exists under the given
// identifier.
var ErrNotFound = errors.New("transaction not found")

// Store persists ledger transactions.
//
// Create assigns identifiers itself; any identifier already set on the
// payload is ignored. Delete removes exactly one row and returns
// ErrNotFound for an unknown identifier, so callers can tell a failed
// removal from an already-gone row.
type Store interface {
	// Create persists tx under a freshly assigned identifier and
	// returns that identifier.
	Create(ctx context.Context, tx record.Transaction) (string, error)

	// Delete removes the transaction with the given identifier.
	Delete(ctx context.Context, id string) error

	// Get returns the transaction with the given identifier.
	Get(ctx context.Context, id string) (record.Transaction, error)

	// List returns every stored transaction ordered by date, then
	// identifier.
	List(ctx context.Context) ([]record.Transaction, error)

	// Close releases any resources held by the backend.
	Close() error
}
